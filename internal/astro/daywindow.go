package astro

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownTimezone marks a timezone identifier that could not be resolved.
var ErrUnknownTimezone = errors.New("unknown timezone")

// DayWindow is the local-time span from midnight of a calendar day to
// midnight of the next day. Immutable once built.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// NewDayWindow builds the window for the calendar day that contains date,
// read in the given timezone. The end is computed with AddDate so the window
// covers the full civil day even when a DST transition makes it 23 or 25
// hours long.
func NewDayWindow(date time.Time, timezone string) (DayWindow, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return DayWindow{}, fmt.Errorf("%w: %q", ErrUnknownTimezone, timezone)
	}

	local := date.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return DayWindow{Start: start, End: start.AddDate(0, 0, 1)}, nil
}

// Interval returns the window as a clampable interval.
func (w DayWindow) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// Hours returns the window length in hours (24 except on DST days).
func (w DayWindow) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}

// Contains reports whether t falls inside the window.
func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
