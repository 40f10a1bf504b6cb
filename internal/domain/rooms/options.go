package rooms

import (
	"time"

	"github.com/rcamargo/flexroom/pkg/logger"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithClock sets the time source. Tests inject a fake clock so sweep
// behavior is checked without real time passing.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator sets the room id generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// WithSweepInterval sets how often the stale sweep runs.
func WithSweepInterval(interval time.Duration) Option {
	return func(r *Registry) {
		if interval > 0 {
			r.sweepInterval = interval
		}
	}
}

// WithStaleTTL sets the age past which a room is evicted.
func WithStaleTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.staleTTL = ttl
		}
	}
}

// WithEventBuffer sets the change-event channel capacity.
func WithEventBuffer(size int) Option {
	return func(r *Registry) {
		if size > 0 {
			r.eventBuffer = size
		}
	}
}

// WithLogger sets a custom logger for the registry.
func WithLogger(log logger.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}
