package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"moonwatch/internal/astro"
	"moonwatch/internal/ephemeris"
	"moonwatch/internal/mqtt"
	"moonwatch/internal/storage"

	"github.com/go-co-op/gocron"
)

// Collector runs the daily pipeline: fetch event times from the provider,
// compute the visibility split and timelines, persist the report, publish
// it over MQTT.
type Collector struct {
	provider  ephemeris.Provider
	db        *storage.Database
	publisher *mqtt.Publisher
	timezone  string
	cronExpr  string
	enabled   bool

	scheduler *gocron.Scheduler

	mu           sync.RWMutex
	latest       *storage.MoonReport
	isCollecting bool
}

type CollectorConfig struct {
	Provider  ephemeris.Provider
	Database  *storage.Database
	Publisher *mqtt.Publisher
	Timezone  string
	Cron      string
	Enabled   bool
}

func NewCollector(cfg CollectorConfig) *Collector {
	return &Collector{
		provider:  cfg.Provider,
		db:        cfg.Database,
		publisher: cfg.Publisher,
		timezone:  cfg.Timezone,
		cronExpr:  cfg.Cron,
		enabled:   cfg.Enabled,
	}
}

// Start collects once immediately, then on the configured cron schedule,
// until the context is cancelled.
func (c *Collector) Start(ctx context.Context) error {
	if !c.enabled {
		log.Println("Collector is disabled")
		return nil
	}

	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return fmt.Errorf("%w: %q", astro.ErrUnknownTimezone, c.timezone)
	}

	c.mu.Lock()
	c.isCollecting = true
	c.scheduler = gocron.NewScheduler(loc)
	c.mu.Unlock()

	log.Printf("Starting collector with schedule %q", c.cronExpr)

	c.collect(ctx)

	if _, err := c.scheduler.Cron(c.cronExpr).Do(func() { c.collect(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule collection: %w", err)
	}
	c.scheduler.StartAsync()

	<-ctx.Done()

	c.mu.Lock()
	c.isCollecting = false
	c.scheduler.Stop()
	c.mu.Unlock()

	log.Println("Collector stopped")
	return nil
}

func (c *Collector) collect(ctx context.Context) {
	report, err := c.CollectOnce(ctx, time.Now())
	if err != nil {
		log.Printf("Error collecting moon report: %v", err)
		return
	}

	if report.Computable {
		log.Printf("Collected: %s total=%.1fh day=%.1fh night=%.1fh phase=%s",
			report.Date.Format("2006-01-02"), report.TotalHours, report.DayHours,
			report.NightHours, report.PhaseName)
	} else {
		log.Printf("Collected: %s moon not visible", report.Date.Format("2006-01-02"))
	}
}

// CollectOnce computes, stores, and publishes the report for the calendar
// day containing date.
func (c *Collector) CollectOnce(ctx context.Context, date time.Time) (*storage.MoonReport, error) {
	report, err := c.ComputeReport(ctx, date)
	if err != nil {
		return nil, err
	}

	if c.db != nil {
		if err := c.db.SaveReport(report); err != nil {
			log.Printf("Error saving report: %v", err)
		}
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(report); err != nil {
			log.Printf("Error publishing to MQTT: %v", err)
		}
	}

	c.mu.Lock()
	c.latest = report
	c.mu.Unlock()

	return report, nil
}

// ComputeReport runs the visibility pipeline for the day containing date
// without touching storage or MQTT.
func (c *Collector) ComputeReport(ctx context.Context, date time.Time) (*storage.MoonReport, error) {
	c.mu.RLock()
	provider := c.provider
	timezone := c.timezone
	c.mu.RUnlock()

	if provider == nil {
		return nil, fmt.Errorf("no ephemeris provider configured")
	}

	window, err := astro.NewDayWindow(date, timezone)
	if err != nil {
		return nil, err
	}

	events, err := provider.Events(ctx, window.Start, window.Start.Location())
	if err != nil {
		return nil, fmt.Errorf("fetching event times: %w", err)
	}

	return BuildReport(window, timezone, *events), nil
}

// BuildReport assembles a report from already-fetched event times. Pure;
// shared by the collector, the API's on-demand endpoints, and the CLI.
func BuildReport(window astro.DayWindow, timezone string, events astro.EventTimes) *storage.MoonReport {
	moon := astro.HorizonIntervals(events.Moonrise, events.Moonset, window)
	sun := astro.HorizonIntervals(events.Sunrise, events.Sunset, window)

	age := astro.PhaseAge(window.Start)
	name, icon := astro.PhaseName(age)

	report := &storage.MoonReport{
		Date:         window.Start,
		Timezone:     timezone,
		Sunrise:      events.Sunrise,
		Sunset:       events.Sunset,
		Moonrise:     events.Moonrise,
		Moonset:      events.Moonset,
		PhaseAge:     age,
		PhaseName:    name,
		PhaseIcon:    icon,
		Illumination: astro.IlluminationPercent(age),
		MoonTimeline: marshalTimeline(astro.BuildTimeline(moon, window)),
		SunTimeline:  marshalTimeline(astro.BuildTimeline(sun, window)),
	}

	vis, err := astro.AggregateVisibility(moon, sun)
	if err != nil {
		if !errors.Is(err, astro.ErrNotComputable) {
			log.Printf("Error aggregating visibility: %v", err)
		}
		return report
	}

	report.Computable = true
	report.TotalHours = vis.Total
	report.DayHours = vis.Day
	report.NightHours = vis.Night
	return report
}

func marshalTimeline(segments []astro.Segment) string {
	data, err := json.Marshal(segments)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (c *Collector) GetLatestReport() *storage.MoonReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

func (c *Collector) IsCollecting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isCollecting
}

// UpdateLocation swaps the provider and timezone at runtime after a config
// change. The next scheduled run picks them up.
func (c *Collector) UpdateLocation(provider ephemeris.Provider, timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("%w: %q", astro.ErrUnknownTimezone, timezone)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = provider
	c.timezone = timezone
	c.latest = nil

	log.Printf("Collector location updated, timezone %s", timezone)
	return nil
}

func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	if c.publisher != nil {
		c.publisher.Close()
	}
	if c.db != nil {
		c.db.Close()
	}
}
