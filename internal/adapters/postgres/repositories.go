package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"duescope/internal/domain"
)

// MemberRepository
func (db *DB) Get(ctx context.Context, memberID string) (domain.Member, error) {
	var m domain.Member
	err := db.Pool.QueryRow(ctx, `
        SELECT id, full_name, status, COALESCE(chapter, ''), COALESCE(billing_party, '')
        FROM members
        WHERE id = $1
    `, memberID).Scan(&m.ID, &m.FullName, &m.Status, &m.Chapter, &m.BillingParty)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Member{}, domain.ErrNotFound
	}
	return m, err
}

func (db *DB) List(ctx context.Context, chapter string, cadence domain.BillingCadence) ([]domain.Member, error) {
	query := `
        SELECT m.id, m.full_name, m.status, COALESCE(m.chapter, ''), COALESCE(m.billing_party, '')
        FROM members m
        WHERE m.status = 'Active'
    `
	args := []any{}
	if chapter != "" {
		args = append(args, chapter)
		query += ` AND m.chapter = $1`
	}
	if cadence != domain.CadenceUnknown {
		args = append(args, string(cadence))
		if len(args) == 1 {
			query += ` AND EXISTS (SELECT 1 FROM dues_schedules s WHERE s.member_id = m.id AND s.active AND s.cadence = $1)`
		} else {
			query += ` AND EXISTS (SELECT 1 FROM dues_schedules s WHERE s.member_id = m.id AND s.active AND s.cadence = $2)`
		}
	}
	query += ` ORDER BY m.id`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.FullName, &m.Status, &m.Chapter, &m.BillingParty); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MembershipRepository
func (db *DB) ListByMember(ctx context.Context, memberID string) ([]domain.MembershipRecord, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, member_id, COALESCE(membership_type, ''), start_date, cancellation_date, status
        FROM memberships
        WHERE member_id = $1
        ORDER BY start_date
    `, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MembershipRecord
	for rows.Next() {
		var rec domain.MembershipRecord
		if err := rows.Scan(&rec.ID, &rec.MemberID, &rec.MembershipType, &rec.Start, &rec.CancellationDate, &rec.Status); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InvoiceRepository. Payment status is derived in SQL so the engine never
// sees raw invoice accounting fields. Invoices missing either coverage date
// are excluded here rather than dropped downstream.
func (db *DB) ListCoverage(ctx context.Context, billingParty string, from, to time.Time) ([]domain.CoverageInterval, error) {
	query := `
        SELECT id, coverage_start, coverage_end,
               CASE
                   WHEN outstanding = 0 THEN 'Paid'
                   WHEN status = 'Overdue' THEN 'Overdue'
                   ELSE 'Outstanding'
               END,
               grand_total, outstanding, issued_on
        FROM invoices
        WHERE billing_party = $1
          AND status <> 'Cancelled'
          AND coverage_start IS NOT NULL
          AND coverage_end IS NOT NULL
    `
	args := []any{billingParty}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND coverage_end >= $2`
	}
	if !to.IsZero() {
		args = append(args, to)
		if len(args) == 2 {
			query += ` AND coverage_start <= $2`
		} else {
			query += ` AND coverage_start <= $3`
		}
	}
	query += ` ORDER BY coverage_start, issued_on`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CoverageInterval
	for rows.Next() {
		var c domain.CoverageInterval
		var status string
		if err := rows.Scan(&c.SourceID, &c.Start, &c.End, &status, &c.BilledAmount, &c.OutstandingAmount, &c.IssuedOn); err != nil {
			return nil, err
		}
		c.PaymentStatus = domain.PaymentStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DuesScheduleRepository
func (db *DB) ActiveSchedule(ctx context.Context, memberID string) (domain.DuesSchedule, bool, error) {
	var schedule domain.DuesSchedule
	var cadence string
	err := db.Pool.QueryRow(ctx, `
        SELECT cadence, rate
        FROM dues_schedules
        WHERE member_id = $1 AND active
        ORDER BY created_at DESC
        LIMIT 1
    `, memberID).Scan(&cadence, &schedule.Rate)
	if errors.Is(err, pgx.ErrNoRows) {
		return schedule, false, nil
	}
	if err != nil {
		return schedule, false, err
	}
	schedule.Cadence, err = domain.ParseCadence(cadence)
	if err != nil {
		return schedule, false, err
	}
	return schedule, true, nil
}

// CadenceResolver. The cadence in effect for a period comes from the
// membership type of the membership overlapping it. Missing configuration is
// not an error; the engine degrades to duration-only classification.
func (db *DB) Resolve(ctx context.Context, memberID string, periodStart, periodEnd time.Time) (domain.BillingCadence, error) {
	var cadence *string
	err := db.Pool.QueryRow(ctx, `
        SELECT t.billing_cadence
        FROM memberships ms
        JOIN membership_types t ON t.name = ms.membership_type
        WHERE ms.member_id = $1
          AND ms.start_date <= $3
          AND (ms.cancellation_date IS NULL OR ms.cancellation_date >= $2)
        ORDER BY ms.start_date DESC
        LIMIT 1
    `, memberID, periodStart, periodEnd).Scan(&cadence)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && cadence == nil) {
		return domain.CadenceUnknown, nil
	}
	if err != nil {
		return domain.CadenceUnknown, err
	}
	parsed, err := domain.ParseCadence(*cadence)
	if err != nil {
		return domain.CadenceUnknown, nil
	}
	return parsed, nil
}
