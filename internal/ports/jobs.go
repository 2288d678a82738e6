package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"duescope/internal/domain"
)

// ReportParams restrict the member population and window of a report run.
// Zero dates mean open-ended; empty chapter/cadence mean no filter.
type ReportParams struct {
	From    time.Time             `json:"from,omitempty"`
	To      time.Time             `json:"to,omitempty"`
	Chapter string                `json:"chapter,omitempty"`
	Cadence domain.BillingCadence `json:"cadence,omitempty"`
}

// ReportRun is one queued or executed batch reconciliation.
type ReportRun struct {
	ID          uuid.UUID    `json:"id"`
	Status      string       `json:"status"` // queued|running|completed|failed
	Params      ReportParams `json:"params"`
	MemberCount int          `json:"member_count"`
	FailedCount int          `json:"failed_count"`
	Failure     string       `json:"failure,omitempty"`
	QueuedAt    time.Time    `json:"queued_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty"`
}

// ReportRow is the per-member outcome of a report run. Error is set when the
// member's reconciliation failed; its stats are then all zero.
type ReportRow struct {
	ID                uuid.UUID       `json:"id"`
	RunID             uuid.UUID       `json:"run_id"`
	MemberID          string          `json:"member_id"`
	FullName          string          `json:"full_name"`
	ActiveDays        int             `json:"active_days"`
	CoveredDays       int             `json:"covered_days"`
	GapDays           int             `json:"gap_days"`
	CoveragePercent   float64         `json:"coverage_percent"`
	UnpaidDays        int             `json:"unpaid_days"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	CatchupRequired   bool            `json:"catchup_required"`
	CatchupAmount     decimal.Decimal `json:"catchup_amount"`
	GapSummary        string          `json:"gap_summary"`
	CatchupSummary    string          `json:"catchup_summary"`
	MaxSeverity       domain.Severity `json:"max_severity,omitempty"`
	Error             string          `json:"error,omitempty"`
}

// RowFilter narrows a run's rows when listing them.
type RowFilter struct {
	MinSeverity domain.Severity
	OnlyGaps    bool
	OnlyCatchup bool
}

// ReportRepository persists report runs and their rows, and supports
// claiming queued runs for background execution.
type ReportRepository interface {
	Enqueue(ctx context.Context, params ReportParams) (uuid.UUID, error)
	ClaimNext(ctx context.Context) (run ReportRun, found bool, err error)
	SaveRow(ctx context.Context, row ReportRow) error
	MarkCompleted(ctx context.Context, runID uuid.UUID, memberCount, failedCount int) error
	MarkFailed(ctx context.Context, runID uuid.UUID, reason string) error
	Get(ctx context.Context, runID uuid.UUID) (ReportRun, error)
	ListRows(ctx context.Context, runID uuid.UUID, filter RowFilter) ([]ReportRow, error)
}
