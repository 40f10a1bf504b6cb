// Package api declares HTTP contracts and route registration helpers for
// the local control surface. The listener is loopback-only; callers are
// other processes on the same machine.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rcamargo/flexroom/internal/app"
	"github.com/rcamargo/flexroom/internal/bridge"
	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the orchestration service.
type Dependencies interface {
	CheckConnection(ctx context.Context) app.ConnectionInfo
	ListRooms(f rooms.Filter) []model.Room
	CreateRoom(ctx context.Context, in app.CreateRoomInput) (model.Room, error)
	JoinRoom(ctx context.Context, id string) (model.Room, error)
	LeaveRoom(ctx context.Context, id, displayName string) (model.Room, error)
	CancelRoom(ctx context.Context, id string) error
	ClearAllRooms(ctx context.Context) error
}

// Server wires HTTP routes for the control API.
type Server struct {
	healthHandler     *HealthHandler
	metricsHandler    *MetricsHandler
	connectionHandler *ConnectionHandler
	roomsHandler      *RoomsHandler
	streamHandler     *StreamHandler
}

// NewServer creates the API server with all handlers. The bridge may be nil
// when the event stream is not exposed.
func NewServer(deps Dependencies, b *bridge.Bridge) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		metricsHandler:    NewMetricsHandler(),
		connectionHandler: NewConnectionHandler(deps),
		roomsHandler:      NewRoomsHandler(deps),
		streamHandler:     NewStreamHandler(b),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.metricsHandler.HandleMetrics)
	mux.HandleFunc("/connection", MetricsMiddleware(s.connectionHandler.HandleConnection, "connection"))
	mux.HandleFunc("/rooms", MetricsMiddleware(s.roomsHandler.HandleCollection, "rooms"))
	mux.HandleFunc("/rooms/", MetricsMiddleware(s.roomsHandler.HandleRoom, "room"))
	// The stream endpoint hijacks the connection for the WebSocket upgrade,
	// so it bypasses the status-capturing middleware.
	mux.HandleFunc("/stream", s.streamHandler.HandleStream)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	writeError(w, status, code, err)
}
