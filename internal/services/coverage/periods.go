package coverage

import (
	"time"

	"duescope/internal/domain"
	"duescope/internal/interval"
)

// resolvePeriods turns raw membership rows into the member's active
// intervals, clipped to the reporting window. An unterminated membership
// runs through today. Records are treated independently: adjacent or
// overlapping memberships are not merged, and a hole between two
// memberships is not a billing gap.
func resolvePeriods(records []domain.MembershipRecord, from, to, today time.Time) []domain.MembershipPeriod {
	periods := make([]domain.MembershipPeriod, 0, len(records))
	for _, rec := range records {
		start := interval.DateOnly(rec.Start)
		end := today
		if rec.CancellationDate != nil {
			end = interval.DateOnly(*rec.CancellationDate)
		}
		if !from.IsZero() {
			start = interval.MaxDate(start, from)
		}
		if !to.IsZero() {
			end = interval.MinDate(end, to)
		}
		if start.After(end) {
			continue
		}
		periods = append(periods, domain.MembershipPeriod{Start: start, End: end})
	}
	return periods
}
