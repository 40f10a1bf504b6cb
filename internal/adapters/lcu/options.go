package lcu

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rcamargo/flexroom/pkg/logger"
)

// LocatorOption applies a configuration option to the Locator.
type LocatorOption func(*Locator)

// WithLockfilePaths replaces the candidate lockfile paths, scanned in order.
func WithLockfilePaths(paths []string) LocatorOption {
	return func(l *Locator) {
		if len(paths) > 0 {
			l.paths = paths
		}
	}
}

// WithExtraLockfilePaths prepends additional candidate paths ahead of the
// platform defaults.
func WithExtraLockfilePaths(paths []string) LocatorOption {
	return func(l *Locator) {
		l.paths = append(append([]string(nil), paths...), l.paths...)
	}
}

// WithProcessProbe sets the process-list query. Tests substitute a fake.
func WithProcessProbe(probe ProcessProbe) LocatorOption {
	return func(l *Locator) {
		if probe != nil {
			l.probe = probe
		}
	}
}

// WithLocatorLogger sets a custom logger for the locator.
func WithLocatorLogger(log logger.Logger) LocatorOption {
	return func(l *Locator) {
		if log != nil {
			l.log = log
		}
	}
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithLocator sets the credential source.
func WithLocator(src CredentialSource) Option {
	return func(c *Client) {
		if src != nil {
			c.locator = src
		}
	}
}

// WithReconnectDelay sets the fixed delay between reconnect attempts.
// Tests shrink it so reconnection is observable without real time passing.
func WithReconnectDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.reconnectDelay = delay
		}
	}
}

// WithHTTPClient sets the REST channel's HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithDialer sets the event-socket dialer.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(c *Client) {
		if dialer != nil {
			c.dialer = dialer
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
