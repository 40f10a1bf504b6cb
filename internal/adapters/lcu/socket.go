package lcu

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rcamargo/flexroom/pkg/logger"
	"github.com/rcamargo/flexroom/pkg/metrics"
)

// Wire frame opcodes for the event socket.
const (
	frameSubscribe   = 5
	frameUnsubscribe = 6
	frameEvent       = 8
)

const framePreviewLimit = 200

// connect dials the event socket, re-issues subscriptions and starts the
// read loop. At most one attempt runs at a time, and an attempt that loses
// to an already-established socket closes its own connection rather than
// leaving two live ones dispatching every event twice.
func (c *Client) connect(ctx context.Context, creds Credentials) error {
	c.mu.Lock()
	if c.stopped || c.conn != nil || c.connecting {
		c.mu.Unlock()
		return nil
	}
	c.connecting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	c.setStatus(StatusConnecting)

	header := http.Header{"Authorization": {"Basic " + creds.Token}}
	conn, resp, err := c.dialer.DialContext(ctx, creds.SocketURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.setStatus(StatusDisconnected)
		return err
	}

	c.mu.Lock()
	if c.stopped || c.conn != nil {
		alive := !c.stopped
		c.mu.Unlock()
		conn.Close()
		if alive {
			// Another socket won while this attempt was dialing; the
			// Connecting transition above must not mask it.
			c.setStatus(StatusConnected)
		}
		return nil
	}
	c.conn = conn
	events := make([]string, 0, len(c.handlers)+1)
	events = append(events, eventPrefix+gameflowPhaseTopic)
	for name := range c.handlers {
		if name != eventPrefix+gameflowPhaseTopic {
			events = append(events, name)
		}
	}
	c.mu.Unlock()

	c.setStatus(StatusConnected)
	c.log.Info(ctx, "event socket connected")

	// The gameflow-phase subscription is always restored, plus every topic
	// a handler is still registered for.
	for _, name := range events {
		if err := c.writeFrame(conn, []any{frameSubscribe, name}); err != nil {
			c.log.Warn(ctx, "subscribe frame failed", logger.String("event", name), logger.Error(err))
		}
	}

	go c.readLoop(conn)
	return nil
}

// readLoop consumes frames until the socket fails, then hands control to
// the reconnect loop.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			stopped := c.stopped
			if c.conn == conn {
				c.conn = nil
			}
			c.mu.Unlock()

			c.setStatus(StatusDisconnected)
			if stopped {
				return
			}
			c.log.Warn(context.Background(), "event socket closed", logger.Error(err))
			go c.reconnectLoop()
			return
		}
		c.dispatch(data)
	}
}

// reconnectLoop retries indefinitely with a fixed delay. Credentials are
// re-discovered each attempt so a restarted client is picked up. A socket
// re-established elsewhere in the meantime, such as by CheckConnection
// re-initializing during the sleep, stands the loop down; the new socket's
// read loop owns any future reconnects.
func (c *Client) reconnectLoop() {
	for {
		select {
		case <-c.stop:
			return
		case <-time.After(c.reconnectDelay):
		}

		if c.Connected() {
			return
		}

		metrics.RecordSocketReconnect()
		ctx := context.Background()
		creds, err := c.locator.Locate(ctx)
		if err != nil {
			c.log.Warn(ctx, "reconnect: credential discovery failed", logger.Error(err))
			continue
		}
		c.mu.Lock()
		c.creds = creds
		c.mu.Unlock()

		if err := c.connect(ctx, creds); err != nil {
			c.log.Warn(ctx, "reconnect failed", logger.Error(err))
			continue
		}
		if c.Connected() {
			return
		}
	}
}

// dispatch parses one frame. Event frames have the 3-element array shape
// [8, eventName, payload]; anything else is logged and discarded, and a
// malformed frame never tears down the socket.
func (c *Client) dispatch(data []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		metrics.RecordSocketBadFrame()
		c.log.Warn(context.Background(), "non-JSON socket frame",
			logger.String("preview", preview(data)), logger.Error(err))
		return
	}
	if len(frame) < 2 {
		metrics.RecordSocketBadFrame()
		c.log.Debug(context.Background(), "short socket frame", logger.String("preview", preview(data)))
		return
	}

	var frameType int
	if err := json.Unmarshal(frame[0], &frameType); err != nil || frameType != frameEvent {
		// Acks and other control frames land here.
		c.log.Debug(context.Background(), "non-event socket frame", logger.String("preview", preview(data)))
		return
	}

	var eventName string
	if err := json.Unmarshal(frame[1], &eventName); err != nil {
		metrics.RecordSocketBadFrame()
		c.log.Warn(context.Background(), "event frame without a name", logger.String("preview", preview(data)))
		return
	}

	var payload json.RawMessage
	if len(frame) > 2 {
		payload = frame[2]
	}

	c.mu.Lock()
	registered := make([]Handler, 0, len(c.handlers[eventName]))
	for _, h := range c.handlers[eventName] {
		registered = append(registered, h)
	}
	c.mu.Unlock()

	for _, h := range registered {
		c.callHandler(eventName, h, payload)
	}
}

// callHandler invokes one handler, containing panics so a bad subscriber
// cannot abort dispatch to the rest or destabilize the socket.
func (c *Client) callHandler(event string, h Handler, payload json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(context.Background(), "event handler panicked",
				logger.String("event", event), logger.Any("panic", r))
		}
	}()
	metrics.RecordSocketEvent()
	h(payload)
}

// Subscribe sends a subscribe control frame for "OnJsonApiEvent"+topic and
// registers handler for the resulting event name. When the socket is not
// open the call is a silent no-op and the zero Subscription is returned.
func (c *Client) Subscribe(topic string, handler Handler) Subscription {
	eventName := eventPrefix + topic

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return Subscription{}
	}

	if err := c.writeFrame(conn, []any{frameSubscribe, eventName}); err != nil {
		c.log.Warn(context.Background(), "subscribe frame failed",
			logger.String("event", eventName), logger.Error(err))
	}
	if handler == nil {
		return Subscription{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	if c.handlers[eventName] == nil {
		c.handlers[eventName] = make(map[uint64]Handler)
	}
	c.handlers[eventName][c.nextID] = handler
	return Subscription{event: eventName, id: c.nextID}
}

// Unsubscribe removes the handler and eagerly sends an unsubscribe control
// frame, one frame per call even while other handlers remain registered.
func (c *Client) Unsubscribe(sub Subscription) {
	if sub.event == "" {
		return
	}

	c.mu.Lock()
	if set, ok := c.handlers[sub.event]; ok {
		delete(set, sub.id)
		if len(set) == 0 {
			delete(c.handlers, sub.event)
		}
	}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		if err := c.writeFrame(conn, []any{frameUnsubscribe, sub.event}); err != nil {
			c.log.Warn(context.Background(), "unsubscribe frame failed",
				logger.String("event", sub.event), logger.Error(err))
		}
	}
}

func (c *Client) writeFrame(conn *websocket.Conn, frame []any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return conn.WriteJSON(frame)
}

func preview(data []byte) string {
	if len(data) > framePreviewLimit {
		return string(data[:framePreviewLimit])
	}
	return string(data)
}
