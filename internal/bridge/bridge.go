// Package bridge fans room and connection events out to attached observers.
// The registry and the game-client adapter each publish on a single channel;
// observers come and go as local clients connect to the stream endpoint, so
// the bridge multiplexes one-to-many without letting a slow observer stall
// the producers.
package bridge

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rcamargo/flexroom/internal/adapters/lcu"
	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
	"github.com/rcamargo/flexroom/pkg/logger"
	"github.com/rcamargo/flexroom/pkg/metrics"
)

const defaultObserverBuffer = 16

// Message is the envelope delivered to observers.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// TypeConnectionStatus marks messages describing the game-client link.
const TypeConnectionStatus = "connectionStatus"

type roomPayload struct {
	RoomID string      `json:"roomId"`
	Room   *model.Room `json:"room,omitempty"`
}

type statusPayload struct {
	Status lcu.Status `json:"status"`
}

// Bridge pumps room and status events to every attached observer.
type Bridge struct {
	roomEvents   <-chan rooms.Event
	statusEvents <-chan lcu.Status
	buffer       int
	log          logger.Logger

	mu        sync.Mutex
	observers map[uint64]chan Message
	nextID    uint64
}

// New builds a bridge over the given event sources. Either source may be
// nil, in which case that side is simply never pumped.
func New(roomEvents <-chan rooms.Event, statusEvents <-chan lcu.Status, opts ...Option) *Bridge {
	b := &Bridge{
		roomEvents:   roomEvents,
		statusEvents: statusEvents,
		buffer:       defaultObserverBuffer,
		log:          logger.Named("bridge"),
		observers:    map[uint64]chan Message{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach registers a new observer and returns its id together with the
// channel messages arrive on. The caller must Detach when done.
func (b *Bridge) Attach() (uint64, <-chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	ch := make(chan Message, b.buffer)
	b.observers[id] = ch
	metrics.UpdateObserverCount(len(b.observers))
	return id, ch
}

// Detach removes an observer and closes its channel. Detaching an unknown
// id is a no-op.
func (b *Bridge) Detach(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.observers[id]
	if !ok {
		return
	}
	delete(b.observers, id)
	close(ch)
	metrics.UpdateObserverCount(len(b.observers))
}

// ObserverCount reports how many observers are currently attached.
func (b *Bridge) ObserverCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// Broadcast delivers a message to every observer. Delivery never blocks:
// when an observer's buffer is full the message is dropped for that
// observer and counted.
func (b *Bridge) Broadcast(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.observers {
		select {
		case ch <- msg:
		default:
			metrics.RecordMessageDropped()
			b.log.Warn(context.Background(), "observer buffer full, dropping message",
				logger.Any("observer", id),
				logger.String("type", msg.Type))
		}
	}
}

// Run pumps both sources until the context is canceled or both sources are
// closed. It is intended to run on its own goroutine.
func (b *Bridge) Run(ctx context.Context) {
	roomEvents := b.roomEvents
	statusEvents := b.statusEvents

	for roomEvents != nil || statusEvents != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-roomEvents:
			if !ok {
				roomEvents = nil
				continue
			}
			b.Broadcast(roomMessage(ev))
		case status, ok := <-statusEvents:
			if !ok {
				statusEvents = nil
				continue
			}
			b.Broadcast(statusMessage(status))
		}
	}
}

func roomMessage(ev rooms.Event) Message {
	payload, _ := json.Marshal(roomPayload{RoomID: ev.RoomID, Room: ev.Room})
	return Message{Type: string(ev.Type), Payload: payload}
}

func statusMessage(status lcu.Status) Message {
	payload, _ := json.Marshal(statusPayload{Status: status})
	return Message{Type: TypeConnectionStatus, Payload: payload}
}
