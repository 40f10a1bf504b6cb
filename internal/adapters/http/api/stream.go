package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rcamargo/flexroom/internal/bridge"
	"github.com/rcamargo/flexroom/pkg/logger"
)

// StreamHandler pushes bridge messages to local WebSocket observers.
type StreamHandler struct {
	bridge   *bridge.Bridge
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewStreamHandler creates a new stream handler over the bridge.
func NewStreamHandler(b *bridge.Bridge) *StreamHandler {
	return &StreamHandler{
		bridge: b,
		// Observers are local processes, not browsers; origin checks would
		// only get in the way on a loopback listener.
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		log:      logger.Named("stream"),
	}
}

// HandleStream handles GET /stream requests. Each upgraded connection is an
// independent observer; it receives every message published after it
// attached and is dropped silently when it stops reading.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if h.bridge == nil {
		writeError(w, http.StatusServiceUnavailable, "stream_unavailable", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	id, messages := h.bridge.Attach()
	defer h.bridge.Detach(id)

	// The read side only detects the peer going away; observers never send.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
