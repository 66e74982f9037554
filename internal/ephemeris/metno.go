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

const metnoBaseURL = "https://api.met.no/weatherapi/sunrise/3.0"

// MetNoClient reads sun and moon event times from the met.no sunrise/3.0
// service. The service is keyless but requires an identifying User-Agent.
type MetNoClient struct {
	latitude  float64
	longitude float64
	userAgent string
	baseURL   string
	client    *http.Client
}

func NewMetNoClient(latitude, longitude float64, userAgent string, timeout time.Duration) *MetNoClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "moonwatch/1.0"
	}
	return &MetNoClient{
		latitude:  latitude,
		longitude: longitude,
		userAgent: userAgent,
		baseURL:   metnoBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type metnoEvent struct {
	Time *string `json:"time"`
}

type metnoSunResponse struct {
	Properties struct {
		Sunrise metnoEvent `json:"sunrise"`
		Sunset  metnoEvent `json:"sunset"`
	} `json:"properties"`
}

type metnoMoonResponse struct {
	Properties struct {
		Moonrise metnoEvent `json:"moonrise"`
		Moonset  metnoEvent `json:"moonset"`
	} `json:"properties"`
}

func (c *MetNoClient) Events(ctx context.Context, date time.Time, loc *time.Location) (*astro.EventTimes, error) {
	var sun metnoSunResponse
	if err := c.fetch(ctx, "sun", date, loc, &sun); err != nil {
		return nil, err
	}

	var moon metnoMoonResponse
	if err := c.fetch(ctx, "moon", date, loc, &moon); err != nil {
		return nil, err
	}

	return &astro.EventTimes{
		Sunrise:  parseMetNoTime(sun.Properties.Sunrise.Time, loc),
		Sunset:   parseMetNoTime(sun.Properties.Sunset.Time, loc),
		Moonrise: parseMetNoTime(moon.Properties.Moonrise.Time, loc),
		Moonset:  parseMetNoTime(moon.Properties.Moonset.Time, loc),
	}, nil
}

func (c *MetNoClient) fetch(ctx context.Context, body string, date time.Time, loc *time.Location, out interface{}) error {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%.4f", c.latitude))
	query.Set("lon", fmt.Sprintf("%.4f", c.longitude))
	query.Set("date", date.In(loc).Format("2006-01-02"))
	query.Set("offset", date.In(loc).Format("-07:00"))

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, body, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("met.no request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("met.no request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("met.no bad status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("met.no decode: %w", err)
	}

	return nil
}

// parseMetNoTime turns a nullable event timestamp into an optional instant
// in the target timezone. met.no reports minute precision with a UTC offset.
func parseMetNoTime(value *string, loc *time.Location) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}

	layouts := []string{"2006-01-02T15:04Z07:00", time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, *value); err == nil {
			local := t.In(loc)
			return &local
		}
	}
	return nil
}
