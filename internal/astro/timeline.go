package astro

import "sort"

// Segment is one slice of a day-wide on/off bar. Fraction is the share of
// the day window the slice covers; the fractions of a full timeline always
// sum to 1.
type Segment struct {
	On       bool    `json:"on"`
	Fraction float64 `json:"fraction"`
}

// BuildTimeline normalizes intervals against the day window into an ordered
// run of alternating on/off segments covering the whole window. Intervals
// are expected to be clamped and disjoint already, but overlapping input is
// harmless: the cursor only moves forward, so overlaps merge instead of
// double-counting.
func BuildTimeline(intervals []Interval, w DayWindow) []Segment {
	span := w.End.Sub(w.Start).Seconds()
	if span <= 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var segments []Segment
	cursor := 0.0

	for _, iv := range sorted {
		startFrac := clampUnit(iv.Start.Sub(w.Start).Seconds() / span)
		endFrac := clampUnit(iv.End.Sub(w.Start).Seconds() / span)
		if endFrac <= startFrac {
			continue
		}
		if startFrac > cursor {
			segments = append(segments, Segment{On: false, Fraction: startFrac - cursor})
			cursor = startFrac
		}
		if endFrac > cursor {
			segments = append(segments, Segment{On: true, Fraction: endFrac - cursor})
			cursor = endFrac
		}
	}

	if cursor < 1.0 {
		segments = append(segments, Segment{On: false, Fraction: 1.0 - cursor})
	}

	return segments
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
