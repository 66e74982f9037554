package astro

import (
	"math"
	"time"
)

const (
	synodicMonth     = 29.53059  // average length of a synodic month in days
	newMoonReference = 2451549.5 // Julian date of a known new moon (Jan 6, 2000 18:14 UTC)
	fullPhaseAge     = 14.0      // phase age of a full moon, in days
)

// PhaseAge returns the moon's age in days since new moon for the given
// instant, in [0, synodicMonth).
func PhaseAge(date time.Time) float64 {
	days := julianDate(date) - newMoonReference
	age := math.Mod(days, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}
	return age
}

// PhaseName maps a phase age to the conventional eight-phase name and its
// emoji icon.
func PhaseName(age float64) (string, string) {
	fraction := math.Mod(age, synodicMonth) / synodicMonth
	switch {
	case fraction < 0.0625 || fraction >= 0.9375:
		return "New Moon", "🌑"
	case fraction < 0.1875:
		return "Waxing Crescent", "🌒"
	case fraction < 0.3125:
		return "First Quarter", "🌓"
	case fraction < 0.4375:
		return "Waxing Gibbous", "🌔"
	case fraction < 0.5625:
		return "Full Moon", "🌕"
	case fraction < 0.6875:
		return "Waning Gibbous", "🌖"
	case fraction < 0.8125:
		return "Last Quarter", "🌗"
	default:
		return "Waning Crescent", "🌘"
	}
}

// IlluminationPercent approximates the illuminated share of the moon's disc
// for a phase age, as a percentage in [0, 100].
func IlluminationPercent(age float64) float64 {
	illum := (1 - math.Cos(math.Pi*(age/fullPhaseAge))) / 2
	if illum < 0 {
		illum = 0
	}
	if illum > 1 {
		illum = 1
	}
	return illum * 100
}

// IdealDayNightHours is the idealized split of a 24-hour day: a new moon
// rides with the sun, a full moon is up all night.
func IdealDayNightHours(age float64) (float64, float64) {
	nightShare := (1 - math.Cos(math.Pi*(age/fullPhaseAge))) / 2
	if nightShare < 0 {
		nightShare = 0
	}
	if nightShare > 1 {
		nightShare = 1
	}
	night := 24 * nightShare
	return 24 - night, night
}

// julianDate converts a civil instant to a Julian date.
func julianDate(date time.Time) float64 {
	utc := date.UTC()
	year, month, day := utc.Date()
	hour, min, sec := utc.Clock()

	m := int(month)
	if m <= 2 {
		year--
		m += 12
	}

	a := year / 100
	b := 2 - a + a/4
	jdn := int(365.25*float64(year)) + int(30.6001*float64(m+1)) + day + 1720994 + b

	fracDay := (float64(hour) + float64(min)/60.0 + float64(sec)/3600.0) / 24.0
	return float64(jdn) + fracDay
}
