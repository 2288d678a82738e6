package coverage

import (
	"fmt"
	"strings"

	"duescope/internal/domain"
)

const dateLayout = "2006-01-02"

// FormatGaps renders a gap list as the one-line summary stored with report
// rows, e.g. "2023-02-01 to 2023-03-31 (59 days, Significant) - ...".
func FormatGaps(gaps []domain.Gap) string {
	if len(gaps) == 0 {
		return "No gaps"
	}
	parts := make([]string, 0, len(gaps))
	for _, gap := range gaps {
		part := fmt.Sprintf("%s to %s (%d days, %s)",
			gap.Start.Format(dateLayout), gap.End.Format(dateLayout), gap.Days, gap.Severity)
		if gap.Reason != "" {
			part += " - " + gap.Reason
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// FormatCatchupPeriods renders proposed catch-up periods for report rows.
func FormatCatchupPeriods(periods []domain.CatchupPeriod) string {
	if len(periods) == 0 {
		return "None required"
	}
	parts := make([]string, 0, len(periods))
	for _, period := range periods {
		parts = append(parts, fmt.Sprintf("%s to %s (%s)",
			period.Start.Format(dateLayout), period.End.Format(dateLayout), period.Amount.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}

// MaxSeverity returns the highest severity across gaps, or "" when there
// are none.
func MaxSeverity(gaps []domain.Gap) domain.Severity {
	var max domain.Severity
	for _, gap := range gaps {
		if max == "" || gap.Severity.Rank() > max.Rank() {
			max = gap.Severity
		}
	}
	return max
}

// TimelineEvents merges a result's coverage and gaps into one feed sorted
// by start date, for callers that render member timelines.
func TimelineEvents(result domain.TimelineResult) []domain.TimelineEvent {
	events := make([]domain.TimelineEvent, 0, len(result.Timeline)+len(result.Gaps))
	for _, cov := range result.Timeline {
		amount := cov.BilledAmount
		events = append(events, domain.TimelineEvent{
			Type:    "coverage",
			Start:   cov.Start,
			End:     cov.End,
			Status:  cov.PaymentStatus,
			Invoice: cov.SourceID,
			Amount:  &amount,
			Title:   fmt.Sprintf("Invoice %s - %s", cov.SourceID, cov.PaymentStatus),
		})
	}
	for _, gap := range result.Gaps {
		events = append(events, domain.TimelineEvent{
			Type:     "gap",
			Start:    gap.Start,
			End:      gap.End,
			Severity: gap.Severity,
			Days:     gap.Days,
			Title:    fmt.Sprintf("Gap: %d days (%s)", gap.Days, gap.Severity),
		})
	}
	sortEventsByStart(events)
	return events
}

func sortEventsByStart(events []domain.TimelineEvent) {
	// Insertion sort keeps coverage before its own pattern-anomaly gap when
	// both start the same day.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].Start.Before(events[j-1].Start); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}
