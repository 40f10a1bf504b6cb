package app

import (
	"github.com/rcamargo/flexroom/internal/bridge"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
	"github.com/rcamargo/flexroom/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRegistry sets the room registry. Required.
func WithRegistry(r *rooms.Registry) Option {
	return func(s *Service) {
		s.registry = r
	}
}

// WithClient sets the game-client adapter. Required.
func WithClient(c GameClient) Option {
	return func(s *Service) {
		s.client = c
	}
}

// WithBridge sets the notification bridge pumped by Start.
func WithBridge(b *bridge.Bridge) Option {
	return func(s *Service) {
		s.bridge = b
	}
}

// WithQueueID overrides the ranked queue used for remote lobbies.
func WithQueueID(id int) Option {
	return func(s *Service) {
		if id > 0 {
			s.queueID = id
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}
