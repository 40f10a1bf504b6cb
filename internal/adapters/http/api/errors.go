package api

import (
	"errors"
	"net/http"

	"github.com/rcamargo/flexroom/internal/adapters/lcu"
	"github.com/rcamargo/flexroom/internal/app"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
)

// errorStatus maps domain and transport errors to HTTP status codes.
func errorStatus(err error) (int, string) {
	var remote *lcu.RemoteError

	switch {
	case errors.Is(err, rooms.ErrRoomNotFound):
		return http.StatusNotFound, "room_not_found"
	case errors.Is(err, rooms.ErrPlayerNotInRoom):
		return http.StatusNotFound, "player_not_in_room"
	case errors.Is(err, rooms.ErrRoomNotOpen):
		return http.StatusConflict, "room_not_open"
	case errors.Is(err, rooms.ErrPositionNotNeeded):
		return http.StatusConflict, "position_not_needed"
	case errors.Is(err, app.ErrNotAuthorized):
		return http.StatusForbidden, "not_authorized"
	case errors.Is(err, app.ErrNotConnected):
		return http.StatusServiceUnavailable, "not_connected"
	case errors.Is(err, app.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.As(err, &remote):
		return http.StatusBadGateway, "remote_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
