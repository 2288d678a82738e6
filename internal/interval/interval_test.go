package interval

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysInclusive(t *testing.T) {
	if got := DaysInclusive(date(2024, 1, 1), date(2024, 1, 1)); got != 1 {
		t.Fatalf("same-day interval: expected 1 day, got %d", got)
	}
	if got := DaysInclusive(date(2024, 1, 1), date(2024, 1, 31)); got != 31 {
		t.Fatalf("january: expected 31 days, got %d", got)
	}
	// 2024 is a leap year
	if got := DaysInclusive(date(2024, 2, 1), date(2024, 2, 29)); got != 29 {
		t.Fatalf("leap february: expected 29 days, got %d", got)
	}
	if got := DaysInclusive(date(2024, 2, 1), date(2024, 3, 31)); got != 60 {
		t.Fatalf("feb-mar 2024: expected 60 days, got %d", got)
	}
}

func TestClip(t *testing.T) {
	start, end, ok := Clip(date(2024, 1, 10), date(2024, 3, 10), date(2024, 1, 1), date(2024, 1, 31))
	if !ok {
		t.Fatal("expected overlap")
	}
	if !start.Equal(date(2024, 1, 10)) || !end.Equal(date(2024, 1, 31)) {
		t.Fatalf("unexpected clip: %s..%s", start, end)
	}

	if _, _, ok := Clip(date(2024, 2, 1), date(2024, 2, 10), date(2024, 3, 1), date(2024, 3, 31)); ok {
		t.Fatal("disjoint intervals should not clip")
	}

	// Touching at a single day still counts.
	start, end, ok = Clip(date(2024, 1, 31), date(2024, 2, 5), date(2024, 1, 1), date(2024, 1, 31))
	if !ok || !start.Equal(end) {
		t.Fatalf("expected single-day clip, got %s..%s ok=%v", start, end, ok)
	}
}

func TestOverlaps(t *testing.T) {
	if !Overlaps(date(2024, 1, 1), date(2024, 1, 20), date(2024, 1, 20), date(2024, 1, 25)) {
		t.Fatal("shared endpoint should overlap")
	}
	if Overlaps(date(2024, 1, 1), date(2024, 1, 20), date(2024, 1, 21), date(2024, 1, 25)) {
		t.Fatal("adjacent intervals should not overlap")
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(date(2024, 2, 15))
	if !start.Equal(date(2024, 2, 1)) || !end.Equal(date(2024, 2, 29)) {
		t.Fatalf("february 2024 bounds: %s..%s", start, end)
	}
	start, end = MonthBounds(date(2023, 12, 31))
	if !start.Equal(date(2023, 12, 1)) || !end.Equal(date(2023, 12, 31)) {
		t.Fatalf("december bounds: %s..%s", start, end)
	}
}

func TestQuarterBounds(t *testing.T) {
	cases := []struct {
		in         time.Time
		start, end time.Time
	}{
		{date(2024, 1, 15), date(2024, 1, 1), date(2024, 3, 31)},
		{date(2024, 5, 1), date(2024, 4, 1), date(2024, 6, 30)},
		{date(2024, 9, 30), date(2024, 7, 1), date(2024, 9, 30)},
		{date(2024, 11, 2), date(2024, 10, 1), date(2024, 12, 31)},
	}
	for _, tc := range cases {
		start, end := QuarterBounds(tc.in)
		if !start.Equal(tc.start) || !end.Equal(tc.end) {
			t.Fatalf("quarter of %s: expected %s..%s, got %s..%s", tc.in, tc.start, tc.end, start, end)
		}
	}
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(date(2024, 7, 4))
	if !start.Equal(date(2024, 1, 1)) || !end.Equal(date(2024, 12, 31)) {
		t.Fatalf("year bounds: %s..%s", start, end)
	}
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2024, 6, 1, 13, 45, 0, 0, time.FixedZone("CET", 3600))
	got := DateOnly(in)
	if !got.Equal(date(2024, 6, 1)) {
		t.Fatalf("expected midnight UTC, got %s", got)
	}
	if !DateOnly(time.Time{}).IsZero() {
		t.Fatal("zero time should stay zero")
	}
}
