package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fractionSum(segments []Segment) float64 {
	sum := 0.0
	for _, s := range segments {
		sum += s.Fraction
	}
	return sum
}

func TestBuildTimelineEmptyIsSingleOff(t *testing.T) {
	w := testWindow(t)
	got := BuildTimeline(nil, w)

	require.Len(t, got, 1)
	assert.False(t, got[0].On)
	assert.InDelta(t, 1.0, got[0].Fraction, 1e-9)
}

func TestBuildTimelineSingleInterval(t *testing.T) {
	w := testWindow(t)
	intervals := []Interval{{Start: *at(w, 6, 0), End: *at(w, 18, 0)}}
	got := BuildTimeline(intervals, w)

	require.Len(t, got, 3)
	assert.Equal(t, Segment{On: false, Fraction: 0.25}, got[0])
	assert.Equal(t, Segment{On: true, Fraction: 0.5}, got[1])
	assert.Equal(t, Segment{On: false, Fraction: 0.25}, got[2])
}

func TestBuildTimelineWraparoundPair(t *testing.T) {
	w := testWindow(t)
	// Segmenter input order must not matter.
	intervals := []Interval{
		{Start: *at(w, 22, 0), End: w.End},
		{Start: w.Start, End: *at(w, 4, 0)},
	}
	got := BuildTimeline(intervals, w)

	require.Len(t, got, 3)
	assert.True(t, got[0].On)
	assert.InDelta(t, 4.0/24.0, got[0].Fraction, 1e-9)
	assert.False(t, got[1].On)
	assert.InDelta(t, 18.0/24.0, got[1].Fraction, 1e-9)
	assert.True(t, got[2].On)
	assert.InDelta(t, 2.0/24.0, got[2].Fraction, 1e-9)
}

func TestBuildTimelineIntervalEndingAtMidnightHasNoTrailingOff(t *testing.T) {
	w := testWindow(t)
	got := BuildTimeline([]Interval{{Start: *at(w, 20, 0), End: w.End}}, w)

	require.Len(t, got, 2)
	assert.False(t, got[0].On)
	assert.True(t, got[1].On)
}

func TestBuildTimelineOverlappingIntervalsMerge(t *testing.T) {
	w := testWindow(t)
	intervals := []Interval{
		{Start: *at(w, 6, 0), End: *at(w, 12, 0)},
		{Start: *at(w, 10, 0), End: *at(w, 14, 0)},
	}
	got := BuildTimeline(intervals, w)

	assert.InDelta(t, 1.0, fractionSum(got), 1e-9)

	on := 0.0
	for _, s := range got {
		if s.On {
			on += s.Fraction
		}
	}
	assert.InDelta(t, 8.0/24.0, on, 1e-9)
}

func TestBuildTimelineFractionsAlwaysSumToOne(t *testing.T) {
	w := testWindow(t)
	cases := [][]Interval{
		nil,
		{{Start: *at(w, 0, 0), End: *at(w, 24, 0)}},
		{{Start: *at(w, 1, 13), End: *at(w, 2, 47)}, {Start: *at(w, 9, 0), End: *at(w, 21, 30)}},
		{{Start: *at(w, 5, 0), End: *at(w, 5, 0)}}, // degenerate, skipped
		{{Start: w.Start.Add(-3 * time.Hour), End: *at(w, 2, 0)}}, // unclamped input
	}

	for _, intervals := range cases {
		got := BuildTimeline(intervals, w)
		assert.InDelta(t, 1.0, fractionSum(got), 1e-9)
	}
}

func TestBuildTimelineDegenerateWindow(t *testing.T) {
	w := DayWindow{Start: time.Now(), End: time.Now().Add(-time.Hour)}
	assert.Nil(t, BuildTimeline(nil, w))
}
