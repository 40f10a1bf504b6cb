package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrLoadSnapshot    = errors.New("load snapshot failed")
	ErrSaveSnapshot    = errors.New("save snapshot failed")
	ErrCorruptSnapshot = errors.New("snapshot is not valid JSON")
)
