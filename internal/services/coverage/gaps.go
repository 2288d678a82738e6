package coverage

import (
	"fmt"
	"time"

	"duescope/internal/domain"
	"duescope/internal/interval"
)

// ClassifyGap maps an absolute gap length in days to a severity. Usable
// standalone, e.g. for report threshold legends.
func ClassifyGap(days int) domain.Severity {
	switch {
	case days <= 7:
		return domain.SeverityMinor
	case days <= 30:
		return domain.SeverityModerate
	case days <= 90:
		return domain.SeveritySignificant
	default:
		return domain.SeverityCritical
	}
}

// classifyWithCadence re-derives a gap's severity when the expected billing
// cadence is known. Daily and Monthly cadences get sharper thresholds; other
// cadences keep the base classification.
func classifyWithCadence(days int, cadence domain.BillingCadence, base domain.Severity) domain.Severity {
	switch cadence {
	case domain.CadenceDaily:
		switch {
		case days >= 14:
			return domain.SeverityCritical
		case days >= 7:
			return domain.SeveritySignificant
		case days >= 3:
			return domain.SeverityModerate
		default:
			return domain.SeverityMinor
		}
	case domain.CadenceMonthly:
		switch {
		case days >= 60:
			return domain.SeverityCritical
		case days >= 35:
			return domain.SeveritySignificant
		case days >= 14:
			return domain.SeverityModerate
		default:
			return domain.SeverityMinor
		}
	}
	return base
}

// gapReason words a gap in units of the expected cadence. The gap closing
// out a membership period is worded differently from interior gaps.
func gapReason(days int, cadence domain.BillingCadence, final bool) string {
	var reason string
	switch cadence {
	case domain.CadenceDaily:
		reason = fmt.Sprintf("missing %d day(s) of daily billing", days)
	case domain.CadenceMonthly:
		if days < 32 {
			reason = "partial month gap in monthly billing"
		} else {
			reason = fmt.Sprintf("missing ~%d month(s) of monthly billing", days/30)
		}
	case domain.CadenceQuarterly:
		if days < 90 {
			reason = "partial quarter gap in quarterly billing"
		} else {
			reason = fmt.Sprintf("missing ~%d quarter(s) of quarterly billing", days/90)
		}
	case domain.CadenceAnnual:
		if days < 365 {
			reason = "partial year gap in annual billing"
		} else {
			reason = fmt.Sprintf("missing ~%d year(s) of annual billing", days/365)
		}
	case domain.CadenceUnknown:
		if final {
			return "no coverage through end of membership period (unknown billing schedule)"
		}
		return "no coverage (unknown billing schedule)"
	default:
		reason = "coverage gap in custom billing"
	}
	if final {
		reason += " through period end"
	}
	return reason
}

// detectGaps walks a membership period against its deduplicated coverage
// and emits every uncovered sub-interval. coverage must be sorted by start
// and free of overlaps (mapCoverage output). Together the emitted gaps and
// the coverage tile the period exactly.
func detectGaps(period domain.MembershipPeriod, coverage []domain.CoverageInterval, cadence domain.BillingCadence) []domain.Gap {
	var gaps []domain.Gap
	cursor := period.Start

	emit := func(start, end time.Time, final bool) {
		days := interval.DaysInclusive(start, end)
		severity := ClassifyGap(days)
		if cadence != domain.CadenceUnknown {
			severity = classifyWithCadence(days, cadence, severity)
		}
		gaps = append(gaps, domain.Gap{
			Start:    start,
			End:      end,
			Days:     days,
			Severity: severity,
			Reason:   gapReason(days, cadence, final),
			Kind:     domain.GapUncovered,
		})
	}

	for _, cov := range coverage {
		if cursor.Before(cov.Start) {
			emit(cursor, cov.Start.AddDate(0, 0, -1), false)
		}
		next := cov.End.AddDate(0, 0, 1)
		if next.After(cursor) {
			cursor = next
		}
	}
	if !cursor.After(period.End) {
		emit(cursor, period.End, true)
	}
	return gaps
}
