package coverage

import (
	"testing"

	"duescope/internal/domain"
	"duescope/internal/interval"
)

func TestMapCoverageDropsOverlapEntirely(t *testing.T) {
	period := domain.MembershipPeriod{Start: date(2024, 1, 1), End: date(2024, 1, 31)}
	raw := []domain.CoverageInterval{
		cov("SI-B", date(2024, 1, 10), date(2024, 1, 25), date(2024, 1, 5)),
		cov("SI-A", date(2024, 1, 1), date(2024, 1, 20), date(2024, 1, 1)),
	}

	retained := mapCoverage(raw, period)
	if len(retained) != 1 {
		t.Fatalf("expected 1 retained interval, got %d", len(retained))
	}
	if retained[0].SourceID != "SI-A" {
		t.Fatalf("expected earliest-starting invoice retained, got %s", retained[0].SourceID)
	}

	// The dropped invoice leaves an uncovered tail, not a partial merge.
	gaps := detectGaps(period, retained, domain.CadenceUnknown)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if !gaps[0].Start.Equal(date(2024, 1, 21)) || !gaps[0].End.Equal(date(2024, 1, 31)) {
		t.Fatalf("unexpected gap: %s..%s", gaps[0].Start, gaps[0].End)
	}
}

func TestMapCoverageTieBreakOnIssuedOn(t *testing.T) {
	period := domain.MembershipPeriod{Start: date(2024, 1, 1), End: date(2024, 1, 31)}
	raw := []domain.CoverageInterval{
		cov("SI-LATE", date(2024, 1, 1), date(2024, 1, 31), date(2024, 1, 15)),
		cov("SI-EARLY", date(2024, 1, 1), date(2024, 1, 31), date(2024, 1, 2)),
	}
	retained := mapCoverage(raw, period)
	if len(retained) != 1 || retained[0].SourceID != "SI-EARLY" {
		t.Fatalf("expected earliest-issued invoice to win, got %+v", retained)
	}
}

func TestMapCoverageClipsToPeriod(t *testing.T) {
	period := domain.MembershipPeriod{Start: date(2024, 2, 1), End: date(2024, 2, 29)}
	raw := []domain.CoverageInterval{
		cov("SI-1", date(2024, 1, 15), date(2024, 2, 10), date(2024, 1, 15)),
		cov("SI-2", date(2024, 3, 1), date(2024, 3, 31), date(2024, 3, 1)), // no overlap
	}
	retained := mapCoverage(raw, period)
	if len(retained) != 1 {
		t.Fatalf("expected 1 retained interval, got %d", len(retained))
	}
	if !retained[0].Start.Equal(date(2024, 2, 1)) || !retained[0].End.Equal(date(2024, 2, 10)) {
		t.Fatalf("expected clipped bounds, got %s..%s", retained[0].Start, retained[0].End)
	}
}

func TestMapCoverageIdempotent(t *testing.T) {
	period := domain.MembershipPeriod{Start: date(2024, 1, 1), End: date(2024, 6, 30)}
	raw := []domain.CoverageInterval{
		cov("SI-1", date(2024, 1, 1), date(2024, 1, 31), date(2024, 1, 1)),
		cov("SI-2", date(2024, 1, 20), date(2024, 2, 20), date(2024, 1, 25)),
		cov("SI-3", date(2024, 3, 1), date(2024, 3, 31), date(2024, 3, 1)),
		cov("SI-4", date(2024, 3, 15), date(2024, 4, 15), date(2024, 3, 20)),
	}

	first := mapCoverage(raw, period)
	second := mapCoverage(first, period)
	if len(first) != len(second) {
		t.Fatalf("dedup not idempotent: %d vs %d intervals", len(first), len(second))
	}
	for i := range first {
		if first[i].SourceID != second[i].SourceID {
			t.Fatalf("dedup not idempotent at %d: %s vs %s", i, first[i].SourceID, second[i].SourceID)
		}
	}

	for i := range first {
		for j := i + 1; j < len(first); j++ {
			if interval.Overlaps(first[i].Start, first[i].End, first[j].Start, first[j].End) {
				t.Fatalf("retained intervals overlap: %s and %s", first[i].SourceID, first[j].SourceID)
			}
		}
	}
}
