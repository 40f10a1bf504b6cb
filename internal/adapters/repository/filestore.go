package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rcamargo/flexroom/internal/domain/model"
)

// Default file configuration.
const (
	defaultSnapshotPath = "flexroom-rooms.json"
	defaultFileMode     = fs.FileMode(0o600)
)

// snapshot is the on-disk layout: a single record under the "rooms" key.
type snapshot struct {
	Rooms map[string]model.Room `json:"rooms"`
}

// FileStore persists the room snapshot as a JSON file. Writes go through a
// temp file and rename so a crash mid-write never truncates the snapshot.
type FileStore struct {
	path string
	mode fs.FileMode
}

// NewFileStore creates a file store with configuration options.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		path: defaultSnapshotPath,
		mode: defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the last persisted snapshot.
func (s *FileStore) Load(_ context.Context) (map[string]model.Room, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]model.Room{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadSnapshot, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if snap.Rooms == nil {
		snap.Rooms = map[string]model.Room{}
	}
	return snap.Rooms, nil
}

// Save replaces the persisted snapshot with rooms.
func (s *FileStore) Save(_ context.Context, rooms map[string]model.Room) error {
	data, err := json.MarshalIndent(snapshot{Rooms: rooms}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}
	if err := os.Chmod(tmpName, s.mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}
	return nil
}

// Clear removes the persisted snapshot file.
func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrSaveSnapshot, err)
	}
	return nil
}
