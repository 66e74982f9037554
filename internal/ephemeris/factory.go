package ephemeris

import (
	"fmt"
	"strings"
	"time"
)

// New builds the provider named in the configuration.
func New(name, apiKey, userAgent string, latitude, longitude float64, timeout time.Duration) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "metno", "met.no", "met-no":
		return NewMetNoClient(latitude, longitude, userAgent, timeout), nil
	case "ipgeo", "ipgeolocation":
		return NewIPGeoClient(apiKey, latitude, longitude, timeout), nil
	default:
		return nil, fmt.Errorf("ephemeris provider not supported: %s", name)
	}
}
