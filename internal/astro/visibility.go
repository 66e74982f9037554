package astro

import (
	"errors"
	"time"
)

// ErrNotComputable means no moon-above-horizon interval intersects the day.
// It is a distinct outcome, not a zero-hours result: callers that get it
// have no visibility figure to show at all.
var ErrNotComputable = errors.New("moon visibility not computable for this day")

// Visibility is the moon's time above the horizon for one day, in hours,
// split by whether the sun was also up.
type Visibility struct {
	Total float64 `json:"total_hours"`
	Day   float64 `json:"day_hours"`
	Night float64 `json:"night_hours"`
}

// ComputeVisibility computes the moon's visible hours for the calendar day
// containing date in the given timezone. It returns ErrUnknownTimezone for
// a bad timezone identifier and ErrNotComputable when the moon is never
// above the horizon inside the day window.
func ComputeVisibility(date time.Time, timezone string, events EventTimes) (Visibility, error) {
	window, err := NewDayWindow(date, timezone)
	if err != nil {
		return Visibility{}, err
	}

	moon := HorizonIntervals(events.Moonrise, events.Moonset, window)
	sun := HorizonIntervals(events.Sunrise, events.Sunset, window)
	return AggregateVisibility(moon, sun)
}

// AggregateVisibility splits the moon's above-horizon time by daylight.
// Both interval lists must already be clamped to the same day window.
// Intervals that merely touch (one's end equals the other's start) do not
// overlap.
func AggregateVisibility(moon, sun []Interval) (Visibility, error) {
	if len(moon) == 0 {
		return Visibility{}, ErrNotComputable
	}

	total := 0.0
	for _, m := range moon {
		total += m.Hours()
	}

	day := 0.0
	for _, m := range moon {
		for _, s := range sun {
			if overlap, ok := m.Clamp(s); ok {
				day += overlap.Hours()
			}
		}
	}

	// Rounding guards in both directions: intersection sums can drift a
	// hair past the total, and the subtraction can dip below zero.
	if day > total {
		day = total
	}
	if day < 0 {
		day = 0
	}
	night := total - day
	if night < 0 {
		night = 0
	}

	return Visibility{Total: total, Day: day, Night: night}, nil
}
