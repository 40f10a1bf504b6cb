package lcu

import (
	"errors"
	"fmt"
)

// Sentinel kinds for discovery and transport errors.
var (
	ErrProcessNotFound    = errors.New("game client process not running")
	ErrLockfileMissing    = errors.New("lockfile not found at any candidate path")
	ErrLockfileUnreadable = errors.New("lockfile could not be parsed")
	ErrNotInitialized     = errors.New("client has no credentials; call Initialize first")
)

// RemoteError carries a non-2xx response from the game client's REST API.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error: status %d: %s", e.Status, e.Body)
}
