package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeVisibilityNoMoonEvents(t *testing.T) {
	_, err := ComputeVisibility(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "UTC", EventTimes{})
	assert.ErrorIs(t, err, ErrNotComputable)
}

func TestComputeVisibilityBadTimezone(t *testing.T) {
	_, err := ComputeVisibility(time.Now(), "Not/A_Zone", EventTimes{})
	assert.ErrorIs(t, err, ErrUnknownTimezone)
}

func TestComputeVisibilityNightOnlyMoon(t *testing.T) {
	w := testWindow(t)
	ev := EventTimes{
		Sunrise:  at(w, 6, 0),
		Sunset:   at(w, 18, 0),
		Moonrise: at(w, 20, 0),
		Moonset:  at(w, 5, 0),
	}

	vis, err := ComputeVisibility(w.Start, "UTC", ev)
	require.NoError(t, err)

	assert.InDelta(t, 9.0, vis.Total, 1e-9)
	assert.InDelta(t, 0.0, vis.Day, 1e-9)
	assert.InDelta(t, 9.0, vis.Night, 1e-9)
}

func TestComputeVisibilityDaytimeMoon(t *testing.T) {
	w := testWindow(t)
	ev := EventTimes{
		Sunrise:  at(w, 6, 0),
		Sunset:   at(w, 18, 0),
		Moonrise: at(w, 10, 0),
		Moonset:  at(w, 16, 0),
	}

	vis, err := ComputeVisibility(w.Start, "UTC", ev)
	require.NoError(t, err)

	assert.InDelta(t, 6.0, vis.Total, 1e-9)
	assert.InDelta(t, 6.0, vis.Day, 1e-9)
	assert.InDelta(t, 0.0, vis.Night, 1e-9)
}

func TestComputeVisibilityStraddlesSunset(t *testing.T) {
	w := testWindow(t)
	ev := EventTimes{
		Sunrise:  at(w, 6, 0),
		Sunset:   at(w, 18, 0),
		Moonrise: at(w, 15, 0),
		Moonset:  at(w, 22, 0),
	}

	vis, err := ComputeVisibility(w.Start, "UTC", ev)
	require.NoError(t, err)

	assert.InDelta(t, 7.0, vis.Total, 1e-9)
	assert.InDelta(t, 3.0, vis.Day, 1e-9)
	assert.InDelta(t, 4.0, vis.Night, 1e-9)
}

func TestComputeVisibilityNoSunEvents(t *testing.T) {
	// Polar night: the moon is up but the sun never rises.
	w := testWindow(t)
	ev := EventTimes{
		Moonrise: at(w, 9, 0),
		Moonset:  at(w, 14, 0),
	}

	vis, err := ComputeVisibility(w.Start, "UTC", ev)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, vis.Total, 1e-9)
	assert.Zero(t, vis.Day)
	assert.InDelta(t, 5.0, vis.Night, 1e-9)
}

func TestComputeVisibilityMoonTouchingSunriseDoesNotOverlap(t *testing.T) {
	w := testWindow(t)
	ev := EventTimes{
		Sunrise:  at(w, 6, 0),
		Sunset:   at(w, 18, 0),
		Moonrise: at(w, 2, 0),
		Moonset:  at(w, 6, 0),
	}

	vis, err := ComputeVisibility(w.Start, "UTC", ev)
	require.NoError(t, err)

	assert.InDelta(t, 4.0, vis.Total, 1e-9)
	assert.Zero(t, vis.Day)
}

func TestComputeVisibilityDayPlusNightEqualsTotal(t *testing.T) {
	w := testWindow(t)
	cases := []EventTimes{
		{Sunrise: at(w, 6, 0), Sunset: at(w, 18, 0), Moonrise: at(w, 22, 0), Moonset: at(w, 4, 0)},
		{Sunrise: at(w, 5, 12), Sunset: at(w, 19, 48), Moonrise: at(w, 11, 7), Moonset: at(w, 23, 59)},
		{Sunrise: at(w, 8, 30), Sunset: at(w, 16, 30), Moonrise: at(w, 3, 15), Moonset: nil},
		{Sunrise: nil, Sunset: at(w, 15, 0), Moonrise: nil, Moonset: at(w, 9, 45)},
	}

	for _, ev := range cases {
		vis, err := ComputeVisibility(w.Start, "UTC", ev)
		require.NoError(t, err)
		assert.InDelta(t, vis.Total, vis.Day+vis.Night, 1e-9)
		assert.GreaterOrEqual(t, vis.Day, 0.0)
		assert.GreaterOrEqual(t, vis.Night, 0.0)
		assert.LessOrEqual(t, vis.Day, vis.Total+1e-9)
	}
}

func TestAggregateVisibilityWraparoundTotal(t *testing.T) {
	w := testWindow(t)
	moon := HorizonIntervals(at(w, 22, 0), at(w, 4, 0), w)
	sun := HorizonIntervals(at(w, 6, 0), at(w, 18, 0), w)

	vis, err := AggregateVisibility(moon, sun)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, vis.Total, 1e-9)
	assert.InDelta(t, 6.0, vis.Night, 1e-9)
}

func TestAggregateVisibilityEmptyMoon(t *testing.T) {
	w := testWindow(t)
	sun := HorizonIntervals(at(w, 6, 0), at(w, 18, 0), w)

	_, err := AggregateVisibility(nil, sun)
	assert.ErrorIs(t, err, ErrNotComputable)
}
