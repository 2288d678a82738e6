package coverage

import (
	"time"

	"github.com/shopspring/decimal"

	"duescope/internal/domain"
	"duescope/internal/interval"
)

// ProposeCatchupPeriods generates the calendar-aligned billing periods
// needed to close a gap. Monthly, quarterly and annual cadences split the
// gap at calendar boundaries; daily, custom and unknown cadences yield a
// single period spanning the whole gap. Each period bills the flat
// per-period rate even when clipped at a gap boundary; partial periods are
// not pro-rated.
//
// The returned periods are ordered, contiguous, and exactly span
// [gap.Start, gap.End].
func ProposeCatchupPeriods(gap domain.Gap, cadence domain.BillingCadence, rate decimal.Decimal) []domain.CatchupPeriod {
	var bounds func(time.Time) (time.Time, time.Time)
	switch cadence {
	case domain.CadenceMonthly:
		bounds = interval.MonthBounds
	case domain.CadenceQuarterly:
		bounds = interval.QuarterBounds
	case domain.CadenceAnnual:
		bounds = interval.YearBounds
	default:
		return []domain.CatchupPeriod{{
			Start:   gap.Start,
			End:     gap.End,
			Amount:  rate,
			Cadence: cadence,
		}}
	}

	var periods []domain.CatchupPeriod
	for cursor := gap.Start; !cursor.After(gap.End); {
		calStart, calEnd := bounds(cursor)
		start := interval.MaxDate(calStart, gap.Start)
		end := interval.MinDate(calEnd, gap.End)
		periods = append(periods, domain.CatchupPeriod{
			Start:   start,
			End:     end,
			Amount:  rate,
			Cadence: cadence,
		})
		cursor = end.AddDate(0, 0, 1)
	}
	return periods
}
