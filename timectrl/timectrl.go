package timectrl

import "time"

// Clock abstracts access to the current time so commands that default to
// "now" stay testable.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now implements Clock.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// J2000 is the standard astronomical epoch, 2000-01-01 12:00 TT, taken here
// as UTC.
var J2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// julianJ2000 is the Julian date of J2000.
const julianJ2000 = 2451545.0

const day = 24 * time.Hour

// DaysSinceJ2000 returns fractional days elapsed since J2000.
func DaysSinceJ2000(t time.Time) float64 {
	return t.Sub(J2000).Seconds() / day.Seconds()
}

// JulianDate returns the Julian date of t.
func JulianDate(t time.Time) float64 {
	return julianJ2000 + DaysSinceJ2000(t)
}

// Range is a closed time interval with Start <= End.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange builds a Range, swapping the endpoints when a is after b.
func NewRange(a, b time.Time) Range {
	if a.After(b) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// Empty reports whether the range has zero length.
func (r Range) Empty() bool {
	return r.Start.Equal(r.End)
}

// Duration returns End - Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains reports whether t lies within the closed range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Steps returns Start, Start+step, Start+2*step, ... strictly before End,
// followed by End itself. The result always has at least two entries for a
// non-empty range. A non-positive step yields just the endpoints.
func (r Range) Steps(step time.Duration) []time.Time {
	if r.Empty() {
		return []time.Time{r.Start}
	}
	if step <= 0 {
		return []time.Time{r.Start, r.End}
	}

	out := make([]time.Time, 0, int(r.Duration()/step)+2)
	for t := r.Start; t.Before(r.End); t = t.Add(step) {
		out = append(out, t)
	}
	return append(out, r.End)
}
