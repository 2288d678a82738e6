package coverage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"duescope/internal/domain"
	"duescope/internal/interval"
)

// Upstream billing occasionally substitutes a manual correction invoice for
// a run of automated daily invoices. The plain gap walk cannot see that:
// the span is nominally covered. This pass flags retained intervals whose
// duration is inconsistent with daily billing and, when they look like
// adjustments, reports the daily invoices they silently replaced.

// adjustmentAmountCeiling: a multi-day invoice billed below this is assumed
// to be a correction rather than real dues.
var adjustmentAmountCeiling = decimal.NewFromInt(10)

const maxDailySpanDays = 7

// detectPatternAnomalies inspects deduplicated coverage under Daily cadence
// and emits one synthetic gap per suspected adjustment invoice. One day of
// each span is attributed to the adjustment invoice itself, so a 30-day
// adjustment yields a 29-day gap. Only Daily cadence is analyzed; callers
// must not invoke this for other cadences.
func detectPatternAnomalies(coverage []domain.CoverageInterval) []domain.Gap {
	var anomalies []domain.Gap

	for _, cov := range coverage {
		spanDays := interval.DaysInclusive(cov.Start, cov.End)
		if spanDays <= maxDailySpanDays {
			continue
		}

		// A genuine 1-2 day invoice inside the span means daily billing was
		// running and this long invoice is something legitimate on top.
		hasDailyInvoices := false
		for _, other := range coverage {
			if other.SourceID == cov.SourceID {
				continue
			}
			if !other.Start.Before(cov.Start) && !other.End.After(cov.End) &&
				interval.DaysInclusive(other.Start, other.End) <= 2 {
				hasDailyInvoices = true
				break
			}
		}
		if hasDailyInvoices {
			continue
		}

		if !isLikelyAdjustment(cov) {
			continue
		}

		missing := spanDays - 1
		if missing <= 0 {
			continue
		}
		anomalies = append(anomalies, domain.Gap{
			Start:    cov.Start,
			End:      cov.End,
			Days:     missing,
			Severity: classifyWithCadence(missing, domain.CadenceDaily, domain.SeverityModerate),
			Reason: fmt.Sprintf(
				"billing schedule misconfiguration: %d-day adjustment invoice %s instead of %d daily invoices (missing %d invoices)",
				spanDays, cov.SourceID, spanDays, missing),
			Kind:            domain.GapPatternAnomaly,
			CoveringInvoice: cov.SourceID,
		})
	}
	return anomalies
}

func isLikelyAdjustment(cov domain.CoverageInterval) bool {
	if cov.BilledAmount.LessThan(adjustmentAmountCeiling) {
		return true
	}
	id := strings.ToLower(cov.SourceID)
	return strings.Contains(id, "adjustment") || strings.Contains(id, "correction")
}
