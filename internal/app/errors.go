package app

import "errors"

// Service error kinds.
var (
	ErrNilRegistry   = errors.New("registry is required")
	ErrNilClient     = errors.New("client is required")
	ErrNotConnected  = errors.New("game client is not connected")
	ErrNotAuthorized = errors.New("player is not the room host")
	ErrInvalidInput  = errors.New("invalid room input")
)
