package rooms

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomNotOpen       = errors.New("room is not open")
	ErrPositionNotNeeded = errors.New("position not needed")
	ErrPlayerNotInRoom   = errors.New("player not in room")
)
