package rooms

import "github.com/rcamargo/flexroom/internal/domain/model"

// EventType discriminates registry change events.
type EventType string

// Registry change events.
const (
	EventCreated  EventType = "roomCreated"
	EventUpdated  EventType = "roomUpdated"
	EventDeleted  EventType = "roomDeleted"
	EventCanceled EventType = "roomCanceled"
	EventCleared  EventType = "roomsCleared"
)

// Event is a registry change notification. Room carries the full entity for
// created/updated events; deletions and cancellations carry only the id.
type Event struct {
	Type   EventType   `json:"type"`
	RoomID string      `json:"roomId"`
	Room   *model.Room `json:"room,omitempty"`
}
