package coverage

import (
	"sort"

	"duescope/internal/domain"
	"duescope/internal/interval"
)

// mapCoverage clips raw invoice coverage to a membership period and drops
// overlapping intervals. The retained set is sorted by (start, issued_on)
// and built greedily: an interval is kept only if it overlaps nothing
// already kept, so earlier-starting (then earlier-issued) invoices win and
// later overlapping ones are dropped entirely. This is deliberate policy,
// not maximum-coverage packing; changing the tie-break changes reported
// outstanding amounts.
func mapCoverage(invoices []domain.CoverageInterval, period domain.MembershipPeriod) []domain.CoverageInterval {
	clipped := make([]domain.CoverageInterval, 0, len(invoices))
	for _, inv := range invoices {
		start, end, ok := interval.Clip(inv.Start, inv.End, period.Start, period.End)
		if !ok {
			continue
		}
		inv.Start = start
		inv.End = end
		clipped = append(clipped, inv)
	}

	sort.SliceStable(clipped, func(i, j int) bool {
		if !clipped[i].Start.Equal(clipped[j].Start) {
			return clipped[i].Start.Before(clipped[j].Start)
		}
		return clipped[i].IssuedOn.Before(clipped[j].IssuedOn)
	})

	retained := make([]domain.CoverageInterval, 0, len(clipped))
	for _, cov := range clipped {
		overlaps := false
		for _, kept := range retained {
			if interval.Overlaps(cov.Start, cov.End, kept.Start, kept.End) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			retained = append(retained, cov)
		}
	}
	return retained
}
