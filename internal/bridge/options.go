package bridge

import "github.com/rcamargo/flexroom/pkg/logger"

// Option configures a Bridge.
type Option func(*Bridge)

// WithObserverBuffer sets the per-observer channel capacity.
func WithObserverBuffer(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithLogger replaces the default named logger.
func WithLogger(log logger.Logger) Option {
	return func(b *Bridge) {
		b.log = log
	}
}
