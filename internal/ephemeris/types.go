package ephemeris

import (
	"context"
	"time"

	"moonwatch/internal/astro"
)

// Provider fetches the rise/set event times for one calendar day at a fixed
// location. A missing event (the moon simply not rising that day) is a nil
// field on the result, never an error; errors are reserved for transport
// and decoding failures.
type Provider interface {
	Events(ctx context.Context, date time.Time, loc *time.Location) (*astro.EventTimes, error)
}
