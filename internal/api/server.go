package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"moonwatch/config"
	"moonwatch/internal/astro"
	"moonwatch/internal/collector"
	"moonwatch/internal/ephemeris"
	"moonwatch/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type Server struct {
	router      *gin.Engine
	server      *http.Server
	collector   *collector.Collector
	db          *storage.Database
	port        int
	config      *config.Config
	configPath  string
	configMutex sync.RWMutex
}

type ServerConfig struct {
	Port       int
	Collector  *collector.Collector
	Database   *storage.Database
	Config     *config.Config
	ConfigPath string
}

func NewServer(cfg ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:     router,
		collector:  cfg.Collector,
		db:         cfg.Database,
		port:       cfg.Port,
		config:     cfg.Config,
		configPath: cfg.ConfigPath,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	{
		api.GET("/visibility", s.visibilityHandler)
		api.GET("/timeline", s.timelineHandler)
		api.GET("/phase", s.phaseHandler)

		api.GET("/reports", s.reportsHandler)
		api.GET("/reports/latest", s.latestReportHandler)
		api.GET("/reports/date/:date", s.reportByDateHandler)
		api.GET("/reports/summary", s.monthlySummaryHandler)

		api.GET("/config/location", s.getLocationConfigHandler)
		api.PUT("/config/location", s.updateLocationConfigHandler)
		api.GET("/config/provider", s.getProviderConfigHandler)
		api.PUT("/config/provider", s.updateProviderConfigHandler)
	}
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.router,
	}

	log.Printf("API server starting on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	hasReport := s.collector != nil && s.collector.GetLatestReport() != nil
	collecting := s.collector != nil && s.collector.IsCollecting()

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"collecting": collecting,
		"has_report": hasReport,
		"timestamp":  time.Now(),
	})
}

// requestedDay parses the optional ?date= query as a civil date in the
// configured timezone, anchored at noon so the result always lands inside
// the intended day window even across DST shifts.
func (s *Server) requestedDay(c *gin.Context) (time.Time, error) {
	s.configMutex.RLock()
	timezone := s.config.Location.Timezone
	s.configMutex.RUnlock()

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", astro.ErrUnknownTimezone, timezone)
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		dateStr = c.Param("date")
	}
	if dateStr == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, loc), nil
	}

	parsed, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", dateStr)
	}
	return parsed.Add(12 * time.Hour), nil
}

func (s *Server) visibilityHandler(c *gin.Context) {
	day, err := s.requestedDay(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.collector.ComputeReport(c.Request.Context(), day)
	if err != nil {
		if errors.Is(err, astro.ErrUnknownTimezone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) timelineHandler(c *gin.Context) {
	day, err := s.requestedDay(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := strings.ToLower(c.DefaultQuery("body", "moon"))
	if body != "moon" && body != "sun" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be 'moon' or 'sun'"})
		return
	}

	report, err := s.collector.ComputeReport(c.Request.Context(), day)
	if err != nil {
		if errors.Is(err, astro.ErrUnknownTimezone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	window, err := astro.NewDayWindow(day, report.Timezone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rise, set := report.Moonrise, report.Moonset
	if body == "sun" {
		rise, set = report.Sunrise, report.Sunset
	}
	intervals := astro.HorizonIntervals(rise, set, window)
	segments := astro.BuildTimeline(intervals, window)

	c.JSON(http.StatusOK, gin.H{
		"date":     window.Start.Format("2006-01-02"),
		"body":     body,
		"segments": segments,
	})
}

func (s *Server) phaseHandler(c *gin.Context) {
	day, err := s.requestedDay(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	age := astro.PhaseAge(day)
	name, icon := astro.PhaseName(age)
	idealDay, idealNight := astro.IdealDayNightHours(age)

	c.JSON(http.StatusOK, gin.H{
		"date":                 day.Format("2006-01-02"),
		"phase_age_days":       age,
		"phase_name":           name,
		"phase_icon":           icon,
		"illumination_percent": astro.IlluminationPercent(age),
		"ideal_day_hours":      idealDay,
		"ideal_night_hours":    idealNight,
	})
}

func (s *Server) reportsHandler(c *gin.Context) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	limitStr := c.DefaultQuery("limit", "30")

	var limit int
	fmt.Sscanf(limitStr, "%d", &limit)
	if limit <= 0 || limit > 366 {
		limit = 30
	}

	if fromStr != "" && toStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' date format"})
			return
		}
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' date format"})
			return
		}

		reports, err := s.db.GetReportsByRange(from, to.Add(24*time.Hour))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, reports)
		return
	}

	reports, err := s.db.GetReportsWithLimit(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) latestReportHandler(c *gin.Context) {
	if latest := s.collector.GetLatestReport(); latest != nil {
		c.JSON(http.StatusOK, latest)
		return
	}

	report, err := s.db.GetLatestReport()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No reports yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) reportByDateHandler(c *gin.Context) {
	day, err := s.requestedDay(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.db.GetReportByDate(day)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No report for this date"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) monthlySummaryHandler(c *gin.Context) {
	now := time.Now()
	year := now.Year()
	month := int(now.Month())
	fmt.Sscanf(c.DefaultQuery("year", fmt.Sprintf("%d", year)), "%d", &year)
	fmt.Sscanf(c.DefaultQuery("month", fmt.Sprintf("%d", month)), "%d", &month)

	if month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
		return
	}

	summary, err := s.db.GetMonthlySummary(year, time.Month(month))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type LocationConfigRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Timezone  string  `json:"timezone" binding:"required"`
}

type ProviderConfigRequest struct {
	Name      string `json:"name" binding:"required"`
	APIKey    string `json:"api_key"`
	UserAgent string `json:"user_agent"`
}

func (s *Server) getLocationConfigHandler(c *gin.Context) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()
	c.JSON(http.StatusOK, s.config.Location)
}

func (s *Server) updateLocationConfigHandler(c *gin.Context) {
	var req LocationConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Validate the timezone before touching anything.
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unknown timezone %q", req.Timezone),
		})
		return
	}

	s.configMutex.Lock()
	s.config.Location.Name = req.Name
	s.config.Location.Latitude = req.Latitude
	s.config.Location.Longitude = req.Longitude
	s.config.Location.Timezone = req.Timezone
	providerCfg := s.config.Provider
	location := s.config.Location
	s.configMutex.Unlock()

	provider, err := ephemeris.New(
		providerCfg.Name,
		providerCfg.APIKey,
		providerCfg.UserAgent,
		location.Latitude,
		location.Longitude,
		providerCfg.Timeout,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.collector.UpdateLocation(provider, req.Timezone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.saveConfigToFile(); err != nil {
		log.Printf("Warning: Failed to save config to file: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Configuration applied but not persisted to file",
			"warning": err.Error(),
		})
		return
	}

	log.Printf("Location updated: %s (%.4f, %.4f) %s", req.Name, req.Latitude, req.Longitude, req.Timezone)
	c.JSON(http.StatusOK, gin.H{"message": "Configuration updated successfully"})
}

func (s *Server) getProviderConfigHandler(c *gin.Context) {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"name":       s.config.Provider.Name,
		"user_agent": s.config.Provider.UserAgent,
		"has_key":    s.config.Provider.APIKey != "",
	})
}

func (s *Server) updateProviderConfigHandler(c *gin.Context) {
	var req ProviderConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.configMutex.Lock()
	s.config.Provider.Name = req.Name
	if req.APIKey != "" {
		s.config.Provider.APIKey = req.APIKey
	}
	if req.UserAgent != "" {
		s.config.Provider.UserAgent = req.UserAgent
	}
	providerCfg := s.config.Provider
	location := s.config.Location
	s.configMutex.Unlock()

	provider, err := ephemeris.New(
		providerCfg.Name,
		providerCfg.APIKey,
		providerCfg.UserAgent,
		location.Latitude,
		location.Longitude,
		providerCfg.Timeout,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.collector.UpdateLocation(provider, location.Timezone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := s.saveConfigToFile(); err != nil {
		log.Printf("Warning: Failed to save config to file: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"message": "Configuration applied but not persisted to file",
			"warning": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Provider configuration updated successfully"})
}

func (s *Server) saveConfigToFile() error {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()

	configPath := s.configPath
	if configPath == "" {
		configPath = "config.yaml"
	}

	viper.SetConfigFile(configPath)

	viper.Set("location.name", s.config.Location.Name)
	viper.Set("location.latitude", s.config.Location.Latitude)
	viper.Set("location.longitude", s.config.Location.Longitude)
	viper.Set("location.timezone", s.config.Location.Timezone)
	viper.Set("provider.name", s.config.Provider.Name)
	viper.Set("provider.api_key", s.config.Provider.APIKey)
	viper.Set("provider.user_agent", s.config.Provider.UserAgent)

	return viper.WriteConfig()
}
