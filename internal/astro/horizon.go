package astro

import "time"

// EventTimes holds the rise/set instants reported for one calendar day.
// A nil field means the event does not occur on that date, which is a
// normal outcome (polar conditions, monthly moonrise drift), not a fault.
type EventTimes struct {
	Sunrise  *time.Time `json:"sunrise,omitempty"`
	Sunset   *time.Time `json:"sunset,omitempty"`
	Moonrise *time.Time `json:"moonrise,omitempty"`
	Moonset  *time.Time `json:"moonset,omitempty"`
}

// HorizonIntervals converts one body's optional rise/set pair into the
// above-horizon intervals inside the day window. Results are clamped to the
// window; intervals that clamp to nothing are dropped.
//
// A rise at or after the set means the pair straddles midnight, so the
// presence splits into a tail reaching the end of the window and a head
// starting at midnight.
func HorizonIntervals(rise, set *time.Time, w DayWindow) []Interval {
	bound := w.Interval()
	var out []Interval

	appendClamped := func(start, end time.Time) {
		if clamped, ok := (Interval{Start: start, End: end}).Clamp(bound); ok {
			out = append(out, clamped)
		}
	}

	switch {
	case rise != nil && set != nil:
		if rise.Before(*set) {
			appendClamped(*rise, *set)
		} else {
			appendClamped(*rise, w.End)
			appendClamped(w.Start, *set)
		}
	case rise != nil:
		appendClamped(*rise, w.End)
	case set != nil:
		appendClamped(w.Start, *set)
	}

	return out
}
