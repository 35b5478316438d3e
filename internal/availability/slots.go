package availability

import "time"

// Interval is a half-open time range [Start, End) on a single calendar date.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals share at least one instant:
// startA < endB && endA > startB. Touching boundaries do not overlap. This is
// the only overlap predicate in the codebase; slot generation and booking
// validation both go through it.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Slots returns candidate start times on a fixed step grid within
// [open, close) where a booking of length duration would fit and not overlap
// any busy interval.
//
// The grid starts at open and is advanced in whole steps until it reaches now,
// so the current day never yields a slot in the past; for future days open is
// already past now and the clamp is a no-op. Generation stops at the first
// candidate whose end would exceed close.
//
// All times are expected to be in the same location.
func Slots(open, close time.Time, duration, step time.Duration, busy []Interval, now time.Time) []time.Time {
	if duration <= 0 || step <= 0 {
		return nil
	}
	if !close.After(open) {
		return nil
	}

	start := open
	for start.Before(now) {
		start = start.Add(step)
	}

	var slots []time.Time
	for t := start; !t.Add(duration).After(close); t = t.Add(step) {
		candidate := Interval{Start: t, End: t.Add(duration)}
		if !overlapsAny(candidate, busy) {
			slots = append(slots, t)
		}
	}
	return slots
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}
