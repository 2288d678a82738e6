// Package interval holds the date-interval primitives the reconciliation
// engine is built on. All functions treat dates as whole days; callers are
// expected to pass midnight-UTC times (see DateOnly).
package interval

import "time"

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInclusive returns the number of whole days in [start, end], counting
// both endpoints. Same-day intervals count as 1.
func DaysInclusive(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours()/24) + 1
}

// Overlaps reports whether [aStart, aEnd] and [bStart, bEnd] share at least
// one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// Clip bounds [start, end] to [boundStart, boundEnd]. ok is false when the
// clipped interval is inverted, i.e. the intervals do not overlap.
func Clip(start, end, boundStart, boundEnd time.Time) (clippedStart, clippedEnd time.Time, ok bool) {
	clippedStart = MaxDate(start, boundStart)
	clippedEnd = MinDate(end, boundEnd)
	return clippedStart, clippedEnd, !clippedStart.After(clippedEnd)
}

// MaxDate returns the later of two dates.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of two dates.
func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// MonthBounds returns the first and last day of t's calendar month.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// QuarterBounds returns the first and last day of t's calendar quarter
// (Jan-Mar, Apr-Jun, Jul-Sep, Oct-Dec).
func QuarterBounds(t time.Time) (time.Time, time.Time) {
	quarterStartMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	start := time.Date(t.Year(), quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, -1)
}

// YearBounds returns January 1 and December 31 of t's calendar year.
func YearBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
}
