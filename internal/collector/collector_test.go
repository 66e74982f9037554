package collector

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"moonwatch/internal/astro"
	"moonwatch/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	events astro.EventTimes
	err    error
}

func (s *stubProvider) Events(ctx context.Context, date time.Time, loc *time.Location) (*astro.EventTimes, error) {
	if s.err != nil {
		return nil, s.err
	}
	ev := s.events
	return &ev, nil
}

func hourOn(day time.Time, hour int) *time.Time {
	t := day.Add(time.Duration(hour) * time.Hour)
	return &t
}

func TestComputeReport(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := &stubProvider{events: astro.EventTimes{
		Sunrise:  hourOn(day, 6),
		Sunset:   hourOn(day, 18),
		Moonrise: hourOn(day, 20),
		Moonset:  hourOn(day, 5),
	}}

	c := NewCollector(CollectorConfig{Provider: provider, Timezone: "UTC"})

	report, err := c.ComputeReport(context.Background(), day)
	require.NoError(t, err)

	assert.True(t, report.Computable)
	assert.InDelta(t, 9.0, report.TotalHours, 1e-9)
	assert.InDelta(t, 0.0, report.DayHours, 1e-9)
	assert.InDelta(t, 9.0, report.NightHours, 1e-9)
	assert.NotEmpty(t, report.PhaseName)

	var segments []astro.Segment
	require.NoError(t, json.Unmarshal([]byte(report.MoonTimeline), &segments))
	sum := 0.0
	for _, s := range segments {
		sum += s.Fraction
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestComputeReportNoMoonEvents(t *testing.T) {
	provider := &stubProvider{events: astro.EventTimes{}}
	c := NewCollector(CollectorConfig{Provider: provider, Timezone: "UTC"})

	report, err := c.ComputeReport(context.Background(), time.Now())
	require.NoError(t, err)

	assert.False(t, report.Computable)
	assert.Zero(t, report.TotalHours)

	var segments []astro.Segment
	require.NoError(t, json.Unmarshal([]byte(report.MoonTimeline), &segments))
	require.Len(t, segments, 1)
	assert.False(t, segments[0].On)
}

func TestComputeReportProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("api unreachable")}
	c := NewCollector(CollectorConfig{Provider: provider, Timezone: "UTC"})

	_, err := c.ComputeReport(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event times")
}

func TestComputeReportBadTimezone(t *testing.T) {
	c := NewCollector(CollectorConfig{Provider: &stubProvider{}, Timezone: "Nope/Nowhere"})

	_, err := c.ComputeReport(context.Background(), time.Now())
	assert.ErrorIs(t, err, astro.ErrUnknownTimezone)
}

func TestCollectOncePersists(t *testing.T) {
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := &stubProvider{events: astro.EventTimes{
		Moonrise: hourOn(day, 10),
		Moonset:  hourOn(day, 16),
	}}

	c := NewCollector(CollectorConfig{Provider: provider, Database: db, Timezone: "UTC"})

	report, err := c.CollectOnce(context.Background(), day)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, report.TotalHours, 1e-9)

	stored, err := db.GetReportByDate(day)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, stored.TotalHours, 1e-9)

	assert.Equal(t, report.Date.Format("2006-01-02"), c.GetLatestReport().Date.Format("2006-01-02"))
}

func TestUpdateLocation(t *testing.T) {
	c := NewCollector(CollectorConfig{Provider: &stubProvider{}, Timezone: "UTC"})

	require.Error(t, c.UpdateLocation(&stubProvider{}, "Bad/Zone"))
	require.NoError(t, c.UpdateLocation(&stubProvider{}, "Europe/Vienna"))
	assert.Nil(t, c.GetLatestReport())
}
