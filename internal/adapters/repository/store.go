// Package repository defines the room snapshot store interface and its
// file-backed implementation.
package repository

import (
	"context"

	"github.com/rcamargo/flexroom/internal/domain/model"
)

// Store provides durable access to the full room collection. Every write
// replaces the whole snapshot; there are no partial updates.
type Store interface {
	// Load reads the last persisted snapshot. A store that has never been
	// written loads as an empty collection, not an error.
	Load(ctx context.Context) (map[string]model.Room, error)

	// Save replaces the persisted snapshot with rooms.
	Save(ctx context.Context, rooms map[string]model.Room) error

	// Clear removes the persisted snapshot entirely.
	Clear(ctx context.Context) error
}
