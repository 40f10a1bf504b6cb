package lcu

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rcamargo/flexroom/pkg/logger"
	"github.com/rcamargo/flexroom/pkg/metrics"
)

// Status is the connection state of the event socket.
type Status string

// Connection states. Transitions cycle Disconnected -> Connecting ->
// Connected -> Disconnected for as long as the client lives.
const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// Default client configuration.
const (
	defaultReconnectDelay = 5 * time.Second
	defaultStatusBuffer   = 8
	eventPrefix           = "OnJsonApiEvent"
	gameflowPhaseTopic    = "/lol-gameflow/v1/gameflow-phase"
)

// Handler receives an event frame's payload.
type Handler func(payload json.RawMessage)

// Subscription identifies one registered handler so it can be removed.
// Function values cannot be compared in Go, so removal works through an
// opaque handle rather than handler identity.
type Subscription struct {
	event string
	id    uint64
}

// Client owns the authenticated REST channel and the event socket. The TLS
// endpoint is a loopback self-signed certificate, so verification is
// disabled on both channels; this trust relaxation is scoped to loopback
// traffic only.
type Client struct {
	locator        CredentialSource
	httpc          *http.Client
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	log            logger.Logger

	mu         sync.Mutex
	wmu        sync.Mutex // serializes socket writes; gorilla allows one writer
	creds      Credentials
	conn       *websocket.Conn
	connecting bool
	handlers   map[string]map[uint64]Handler
	nextID     uint64
	status     Status
	statusCh   chan Status
	stopped    bool
	stop       chan struct{}
}

// NewClient creates a protocol client with configuration options.
func NewClient(opts ...Option) *Client {
	tlsConfig := &tls.Config{InsecureSkipVerify: true} //nolint:gosec // loopback self-signed endpoint
	c := &Client{
		locator:        NewLocator(),
		httpc:          &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}},
		dialer:         &websocket.Dialer{TLSClientConfig: tlsConfig},
		reconnectDelay: defaultReconnectDelay,
		handlers:       make(map[string]map[uint64]Handler),
		status:         StatusDisconnected,
		statusCh:       make(chan Status, defaultStatusBuffer),
		stop:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get()
	}
	return c
}

// StatusEvents returns the connectivity transition channel. Sends are
// non-blocking; a slow consumer misses intermediate transitions.
func (c *Client) StatusEvents() <-chan Status { return c.statusCh }

// Connected reports whether the event socket is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusConnected
}

// Initialize discovers credentials and opens the event socket. It never
// returns an error; failures are logged and yield false.
func (c *Client) Initialize(ctx context.Context) bool {
	creds, err := c.locator.Locate(ctx)
	if err != nil {
		c.log.Warn(ctx, "credential discovery failed", logger.Error(err))
		return false
	}

	c.mu.Lock()
	c.creds = creds
	alreadyConnected := c.status == StatusConnected
	c.mu.Unlock()
	if alreadyConnected {
		return true
	}

	if err := c.connect(ctx, creds); err != nil {
		c.log.Warn(ctx, "event socket connect failed", logger.Error(err))
		return false
	}
	return true
}

// Request issues an authenticated REST call. Non-2xx responses surface as a
// RemoteError; the client never retries, retry policy belongs to callers.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	c.mu.Lock()
	creds := c.creds
	c.mu.Unlock()
	if creds.BaseURL == "" {
		return nil, ErrNotInitialized
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, creds.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+creds.Token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.RecordLCURequest(method, "transport_error")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	metrics.RecordLCURequest(method, strconv.Itoa(resp.StatusCode))
	metrics.RecordLCURequestDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// Disconnect closes the event socket and suppresses further reconnection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	conn := c.conn
	c.conn = nil
	close(c.stop)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.setStatus(StatusDisconnected)
}

func (c *Client) setStatus(s Status) {
	c.mu.Lock()
	if c.status == s {
		c.mu.Unlock()
		return
	}
	c.status = s
	c.mu.Unlock()

	select {
	case c.statusCh <- s:
	default:
	}
}
