package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"duescope/internal/domain"
	"duescope/internal/ports"
)

// ReportRepository

func (db *DB) Enqueue(ctx context.Context, params ports.ReportParams) (uuid.UUID, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return uuid.Nil, err
	}
	var id uuid.UUID
	err = db.Pool.QueryRow(ctx, `
        INSERT INTO report_runs (status, params)
        VALUES ('queued', $1)
        RETURNING id
    `, payload).Scan(&id)
	return id, err
}

// ClaimNext selects the next queued run using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (run ports.ReportRun, found bool, err error) {
	// Use explicit transaction to safely lock and transition state
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return run, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var payload []byte
	err = tx.QueryRow(ctx, `
        SELECT id, params, queued_at FROM report_runs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&run.ID, &payload, &run.QueuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return run, false, nil
	}
	if err != nil {
		return run, false, err
	}
	if err = json.Unmarshal(payload, &run.Params); err != nil {
		return run, false, err
	}

	if _, err = tx.Exec(ctx, `
        UPDATE report_runs SET status='running', started_at=now() WHERE id=$1
    `, run.ID); err != nil {
		return run, false, err
	}
	run.Status = "running"
	return run, true, nil
}

func (db *DB) SaveRow(ctx context.Context, row ports.ReportRow) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO report_rows (
            run_id, member_id, full_name,
            active_days, covered_days, gap_days, coverage_percent,
            unpaid_days, outstanding_amount,
            catchup_required, catchup_amount,
            gap_summary, catchup_summary, max_severity, error
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `,
		row.RunID, row.MemberID, row.FullName,
		row.ActiveDays, row.CoveredDays, row.GapDays, row.CoveragePercent,
		row.UnpaidDays, row.OutstandingAmount,
		row.CatchupRequired, row.CatchupAmount,
		row.GapSummary, row.CatchupSummary, string(row.MaxSeverity), row.Error,
	)
	return err
}

func (db *DB) MarkCompleted(ctx context.Context, runID uuid.UUID, memberCount, failedCount int) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE report_runs
        SET status='completed', member_count=$2, failed_count=$3, finished_at=now()
        WHERE id=$1
    `, runID, memberCount, failedCount)
	return err
}

func (db *DB) MarkFailed(ctx context.Context, runID uuid.UUID, reason string) error {
	_, err := db.Pool.Exec(ctx, `
        UPDATE report_runs SET status='failed', failure=$2, finished_at=now() WHERE id=$1
    `, runID, reason)
	return err
}

// ReportStore satisfies ports.ReportRepository. It embeds *DB so the run
// lifecycle methods are inherited, while its Get (by run ID) shadows the
// member Get on *DB, which has a conflicting signature.
type ReportStore struct {
	*DB
}

func (db ReportStore) Get(ctx context.Context, runID uuid.UUID) (ports.ReportRun, error) {
	var run ports.ReportRun
	var payload []byte
	var failure *string
	err := db.Pool.QueryRow(ctx, `
        SELECT id, status, params, member_count, failed_count, failure, queued_at, started_at, finished_at
        FROM report_runs
        WHERE id = $1
    `, runID).Scan(&run.ID, &run.Status, &payload, &run.MemberCount, &run.FailedCount, &failure, &run.QueuedAt, &run.StartedAt, &run.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return run, domain.ErrNotFound
	}
	if err != nil {
		return run, err
	}
	if failure != nil {
		run.Failure = *failure
	}
	if err := json.Unmarshal(payload, &run.Params); err != nil {
		return run, err
	}
	return run, nil
}

func (db *DB) ListRows(ctx context.Context, runID uuid.UUID, filter ports.RowFilter) ([]ports.ReportRow, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, run_id, member_id, full_name,
               active_days, covered_days, gap_days, coverage_percent,
               unpaid_days, outstanding_amount,
               catchup_required, catchup_amount,
               gap_summary, catchup_summary, max_severity, error
        FROM report_rows
        WHERE run_id = $1
        ORDER BY member_id
    `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.ReportRow
	for rows.Next() {
		var row ports.ReportRow
		var severity string
		if err := rows.Scan(
			&row.ID, &row.RunID, &row.MemberID, &row.FullName,
			&row.ActiveDays, &row.CoveredDays, &row.GapDays, &row.CoveragePercent,
			&row.UnpaidDays, &row.OutstandingAmount,
			&row.CatchupRequired, &row.CatchupAmount,
			&row.GapSummary, &row.CatchupSummary, &severity, &row.Error,
		); err != nil {
			return nil, err
		}
		row.MaxSeverity = domain.Severity(severity)
		if keepRow(row, filter) {
			out = append(out, row)
		}
	}
	return out, rows.Err()
}

// keepRow applies the filter in Go: severity ordering is a domain concern
// and the row sets are small enough that SQL-side filtering buys nothing.
func keepRow(row ports.ReportRow, filter ports.RowFilter) bool {
	if filter.OnlyGaps && row.GapDays == 0 {
		return false
	}
	if filter.OnlyCatchup && !row.CatchupRequired {
		return false
	}
	if filter.MinSeverity != "" {
		if row.MaxSeverity.Rank() < filter.MinSeverity.Rank() {
			return false
		}
	}
	return true
}
