package storage

import (
	"time"

	"gorm.io/gorm"
)

// MoonReport is one day's computed moon visibility at the configured
// location. Reports are keyed by Date (local midnight) and upserted, so
// re-running a day replaces its figures.
type MoonReport struct {
	gorm.Model
	Date     time.Time `gorm:"index" json:"date"`
	Timezone string    `json:"timezone"`

	// Event times as reported by the provider; nil when the event does
	// not occur on the date.
	Sunrise  *time.Time `json:"sunrise,omitempty"`
	Sunset   *time.Time `json:"sunset,omitempty"`
	Moonrise *time.Time `json:"moonrise,omitempty"`
	Moonset  *time.Time `json:"moonset,omitempty"`

	// Visibility split, valid only when Computable.
	Computable bool    `json:"computable"`
	TotalHours float64 `json:"total_hours"`
	DayHours   float64 `json:"day_hours"`
	NightHours float64 `json:"night_hours"`

	// Phase
	PhaseAge     float64 `json:"phase_age_days"`
	PhaseName    string  `json:"phase_name"`
	PhaseIcon    string  `json:"phase_icon"`
	Illumination float64 `json:"illumination_percent"`

	// On/off timelines serialized as JSON segment arrays.
	MoonTimeline string `json:"moon_timeline"`
	SunTimeline  string `json:"sun_timeline"`
}

// MonthlySummary aggregates a calendar month of reports.
type MonthlySummary struct {
	Year           int     `json:"year"`
	Month          int     `json:"month"`
	ReportCount    int64   `json:"report_count"`
	ComputableDays int64   `json:"computable_days"`
	AvgNightHours  float64 `json:"avg_night_hours"`
	MaxTotalHours  float64 `json:"max_total_hours"`
}
