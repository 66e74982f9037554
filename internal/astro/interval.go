package astro

import "time"

// Interval is a half-open time range [Start, End). An interval whose start
// is not strictly before its end carries no time and is treated as absent
// everywhere in this package.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsValid reports whether the interval holds any time at all.
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Clamp intersects i with bound. The second return value is false when the
// intersection is empty.
func (i Interval) Clamp(bound Interval) (Interval, bool) {
	if !i.IsValid() || !bound.IsValid() {
		return Interval{}, false
	}

	start := i.Start
	if bound.Start.After(start) {
		start = bound.Start
	}
	end := i.End
	if bound.End.Before(end) {
		end = bound.End
	}

	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Hours returns the interval length in hours. Invalid intervals report zero.
func (i Interval) Hours() float64 {
	if !i.IsValid() {
		return 0
	}
	return i.End.Sub(i.Start).Hours()
}
