package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhaseAgeRange(t *testing.T) {
	for d := 0; d < 60; d++ {
		age := PhaseAge(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d))
		assert.GreaterOrEqual(t, age, 0.0)
		assert.Less(t, age, synodicMonth)
	}
}

func TestPhaseAgeKnownNewMoon(t *testing.T) {
	// New moon of 2024-01-11 11:57 UTC.
	age := PhaseAge(time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC))
	nearCycleEdge := age < 2.0 || age > synodicMonth-2.0
	assert.True(t, nearCycleEdge, "expected phase age near new moon, got %f", age)
}

func TestPhaseName(t *testing.T) {
	cases := []struct {
		age  float64
		name string
		icon string
	}{
		{0, "New Moon", "🌑"},
		{3, "Waxing Crescent", "🌒"},
		{7.4, "First Quarter", "🌓"},
		{11, "Waxing Gibbous", "🌔"},
		{14.77, "Full Moon", "🌕"},
		{18.5, "Waning Gibbous", "🌖"},
		{22.1, "Last Quarter", "🌗"},
		{26, "Waning Crescent", "🌘"},
		{29.2, "New Moon", "🌑"},
	}

	for _, tc := range cases {
		name, icon := PhaseName(tc.age)
		assert.Equal(t, tc.name, name, "age %f", tc.age)
		assert.Equal(t, tc.icon, icon, "age %f", tc.age)
	}
}

func TestIlluminationPercent(t *testing.T) {
	assert.InDelta(t, 0.0, IlluminationPercent(0), 1e-9)
	assert.InDelta(t, 50.0, IlluminationPercent(7), 1e-9)
	assert.InDelta(t, 100.0, IlluminationPercent(14), 1e-9)
}

func TestIdealDayNightHours(t *testing.T) {
	day, night := IdealDayNightHours(0)
	assert.InDelta(t, 24.0, day, 1e-9)
	assert.InDelta(t, 0.0, night, 1e-9)

	day, night = IdealDayNightHours(14)
	assert.InDelta(t, 0.0, day, 1e-9)
	assert.InDelta(t, 24.0, night, 1e-9)

	day, night = IdealDayNightHours(7)
	assert.InDelta(t, 12.0, day, 1e-9)
	assert.InDelta(t, 12.0, night, 1e-9)
}
