package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rcamargo/flexroom/internal/app"
	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
	"github.com/rcamargo/flexroom/internal/domain/types"
)

// RoomsHandler serves the room collection and per-room actions.
type RoomsHandler struct {
	deps Dependencies
}

// NewRoomsHandler creates a new rooms handler.
func NewRoomsHandler(deps Dependencies) *RoomsHandler {
	return &RoomsHandler{deps: deps}
}

type roomListResponse struct {
	Rooms []model.Room `json:"rooms"`
}

type leaveRequest struct {
	DisplayName string `json:"display_name"`
}

// HandleCollection handles /rooms: GET lists open rooms, POST creates one,
// DELETE clears the registry.
func (h *RoomsHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodDelete:
		h.handleClear(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *RoomsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := rooms.Filter{}
	if elo := r.URL.Query().Get("elo"); elo != "" {
		filter.Elo = types.Tier(strings.ToUpper(elo))
	}
	if pos := r.URL.Query().Get("position"); pos != "" {
		filter.Position = types.NormalizePosition(pos)
	}

	list := h.deps.ListRooms(filter)
	if list == nil {
		list = []model.Room{}
	}
	writeJSON(w, http.StatusOK, roomListResponse{Rooms: list})
}

func (h *RoomsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in app.CreateRoomInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", errors.New("body is not valid JSON"))
		return
	}
	room, err := h.deps.CreateRoom(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomsHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ClearAllRooms(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRoom handles /rooms/{id} and /rooms/{id}/{action} requests.
func (h *RoomsHandler) HandleRoom(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/rooms/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "room_not_found", rooms.ErrRoomNotFound)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodDelete:
		h.handleCancel(w, r, id)
	case action == "join" && r.Method == http.MethodPost:
		h.handleJoin(w, r, id)
	case action == "leave" && r.Method == http.MethodPost:
		h.handleLeave(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}
}

func (h *RoomsHandler) handleCancel(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.deps.CancelRoom(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomsHandler) handleJoin(w http.ResponseWriter, r *http.Request, id string) {
	room, err := h.deps.JoinRoom(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *RoomsHandler) handleLeave(w http.ResponseWriter, r *http.Request, id string) {
	var req leaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", errors.New("display_name is required"))
		return
	}
	room, err := h.deps.LeaveRoom(r.Context(), id, req.DisplayName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
