package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by repositories when a looked-up record does not
// exist. "No data" conditions inside the engine (no periods, no billing
// party) are not errors; they yield empty results.
var ErrNotFound = errors.New("not found")

// BillingCadence is the invoicing frequency expected for a member.
type BillingCadence string

const (
	CadenceDaily     BillingCadence = "Daily"
	CadenceMonthly   BillingCadence = "Monthly"
	CadenceQuarterly BillingCadence = "Quarterly"
	CadenceAnnual    BillingCadence = "Annual"
	CadenceCustom    BillingCadence = "Custom"
	CadenceUnknown   BillingCadence = ""
)

// ParseCadence validates a cadence name. The empty string is accepted and
// means "unknown".
func ParseCadence(value string) (BillingCadence, error) {
	switch BillingCadence(value) {
	case CadenceDaily, CadenceMonthly, CadenceQuarterly, CadenceAnnual, CadenceCustom, CadenceUnknown:
		return BillingCadence(value), nil
	}
	return CadenceUnknown, fmt.Errorf("invalid billing cadence: %s", value)
}

// Severity classifies how serious a coverage gap is.
type Severity string

const (
	SeverityMinor       Severity = "Minor"
	SeverityModerate    Severity = "Moderate"
	SeveritySignificant Severity = "Significant"
	SeverityCritical    Severity = "Critical"
)

// Rank orders severities: Minor < Moderate < Significant < Critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 0
	case SeverityModerate:
		return 1
	case SeveritySignificant:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

func ParseSeverity(value string) (Severity, error) {
	s := Severity(value)
	if s.Rank() < 0 {
		return "", fmt.Errorf("invalid gap severity: %s", value)
	}
	return s, nil
}

// PaymentStatus is derived from an invoice's outstanding amount and status.
type PaymentStatus string

const (
	PaymentPaid        PaymentStatus = "Paid"
	PaymentOutstanding PaymentStatus = "Outstanding"
	PaymentOverdue     PaymentStatus = "Overdue"
)

// GapKind distinguishes plain uncovered spans from gaps inferred out of
// anomalous billing patterns.
type GapKind string

const (
	GapUncovered      GapKind = "uncovered"
	GapPatternAnomaly GapKind = "pattern_anomaly"
)

// MembershipPeriod is one contiguous interval of active membership,
// derived on demand from a membership record and possibly clipped to a
// reporting window. Start <= End always holds.
type MembershipPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CoverageInterval is the span one invoice claims to cover. After mapping
// onto a membership period it lies entirely within that period and does not
// overlap any other retained interval.
type CoverageInterval struct {
	SourceID          string          `json:"source_id"`
	Start             time.Time       `json:"start"`
	End               time.Time       `json:"end"`
	PaymentStatus     PaymentStatus   `json:"payment_status"`
	BilledAmount      decimal.Decimal `json:"billed_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	IssuedOn          time.Time       `json:"issued_on"`
}

// Gap is a sub-interval of a membership period with no retained coverage,
// or (for pattern-anomaly gaps) the count of periodic invoices an oversized
// invoice is suspected of replacing. For uncovered gaps Days equals the
// inclusive day count of [Start, End].
type Gap struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Days            int       `json:"days"`
	Severity        Severity  `json:"severity"`
	Reason          string    `json:"reason"`
	Kind            GapKind   `json:"kind"`
	CoveringInvoice string    `json:"covering_invoice,omitempty"`
}

// CatchupPeriod is a calendar-aligned billing period proposed to close part
// of a gap. The amount is the flat per-period rate even when the period is
// clipped at a gap boundary (no pro-rating).
type CatchupPeriod struct {
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Amount  decimal.Decimal `json:"amount"`
	Cadence BillingCadence  `json:"cadence"`
}

// CoverageStats aggregates day counts and amounts over all membership
// periods of one member.
type CoverageStats struct {
	ActiveDays         int             `json:"active_days"`
	CoveredDays        int             `json:"covered_days"`
	GapDays            int             `json:"gap_days"`
	CoveragePercent    float64         `json:"coverage_percent"`
	UnpaidCoverageDays int             `json:"unpaid_coverage_days"`
	OutstandingAmount  decimal.Decimal `json:"outstanding_amount"`
}

// CatchupPlan is the set of periods needed to retroactively close every gap.
type CatchupPlan struct {
	Periods     []CatchupPeriod `json:"periods"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Required    bool            `json:"required"`
	Summary     string          `json:"summary"`
}

// TimelineResult is the full reconciliation output for one member.
type TimelineResult struct {
	Timeline []CoverageInterval `json:"timeline"`
	Gaps     []Gap              `json:"gaps"`
	Stats    CoverageStats      `json:"stats"`
	Catchup  CatchupPlan        `json:"catchup"`
}

// EmptyTimelineResult is the canonical all-zero result for members with no
// billing party or no membership periods.
func EmptyTimelineResult() TimelineResult {
	return TimelineResult{
		Timeline: []CoverageInterval{},
		Gaps:     []Gap{},
		Stats: CoverageStats{
			OutstandingAmount: decimal.Zero,
		},
		Catchup: CatchupPlan{
			Periods:     []CatchupPeriod{},
			TotalAmount: decimal.Zero,
			Summary:     "no analysis available",
		},
	}
}

// TimelineEvent is one entry of the merged coverage+gap feed used by
// timeline visualizations.
type TimelineEvent struct {
	Type     string           `json:"type"` // coverage | gap
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	Title    string           `json:"title"`
	Status   PaymentStatus    `json:"status,omitempty"`
	Invoice  string           `json:"invoice,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Severity Severity         `json:"severity,omitempty"`
	Days     int              `json:"days,omitempty"`
}

// Member is the association-management view of a person. BillingParty links
// to the identity invoices are issued against and may be empty.
type Member struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	Status       string `json:"status"`
	Chapter      string `json:"chapter,omitempty"`
	BillingParty string `json:"billing_party,omitempty"`
}

// MembershipRecord is one raw membership row. A nil CancellationDate means
// the membership is still running.
type MembershipRecord struct {
	ID               string
	MemberID         string
	MembershipType   string
	Start            time.Time
	CancellationDate *time.Time
	Status           string
}

// DuesSchedule carries the active billing cadence and per-period rate used
// to price catch-up periods.
type DuesSchedule struct {
	Cadence BillingCadence
	Rate    decimal.Decimal
}
