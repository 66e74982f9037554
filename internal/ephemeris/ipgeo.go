package ephemeris

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moonwatch/internal/astro"
)

const ipgeoBaseURL = "https://api.ipgeolocation.io/astronomy"

// IPGeoClient reads sun and moon event times from the ipgeolocation.io
// astronomy endpoint. Needs an API key.
type IPGeoClient struct {
	apiKey    string
	latitude  float64
	longitude float64
	baseURL   string
	client    *http.Client
}

func NewIPGeoClient(apiKey string, latitude, longitude float64, timeout time.Duration) *IPGeoClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPGeoClient{
		apiKey:    apiKey,
		latitude:  latitude,
		longitude: longitude,
		baseURL:   ipgeoBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type ipgeoResponse struct {
	Date     string `json:"date"`
	Sunrise  string `json:"sunrise"`
	Sunset   string `json:"sunset"`
	Moonrise string `json:"moonrise"`
	Moonset  string `json:"moonset"`
}

func (c *IPGeoClient) Events(ctx context.Context, date time.Time, loc *time.Location) (*astro.EventTimes, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, fmt.Errorf("ipgeolocation api key is empty")
	}

	query := url.Values{}
	query.Set("apiKey", c.apiKey)
	query.Set("lat", fmt.Sprintf("%.4f", c.latitude))
	query.Set("long", fmt.Sprintf("%.4f", c.longitude))
	query.Set("date", date.In(loc).Format("2006-01-02"))

	endpoint := fmt.Sprintf("%s?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ipgeolocation request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipgeolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ipgeolocation bad status: %s", resp.Status)
	}

	var payload ipgeoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ipgeolocation decode: %w", err)
	}

	local := date.In(loc)
	return &astro.EventTimes{
		Sunrise:  parseIPGeoClock(payload.Sunrise, local, loc),
		Sunset:   parseIPGeoClock(payload.Sunset, local, loc),
		Moonrise: parseIPGeoClock(payload.Moonrise, local, loc),
		Moonset:  parseIPGeoClock(payload.Moonset, local, loc),
	}, nil
}

// parseIPGeoClock anchors an "HH:MM" local clock string to the requested
// date. The service reports "-:-" when an event does not occur that day.
func parseIPGeoClock(value string, date time.Time, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" || value == "-:-" {
		return nil
	}

	clock, err := time.Parse("15:04", value)
	if err != nil {
		return nil
	}

	t := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	return &t
}
