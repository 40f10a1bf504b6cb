// Package rooms implements the shared matchmaking room registry: lifecycle
// rules, durable snapshots and change notifications.
package rooms

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rcamargo/flexroom/internal/adapters/repository"
	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/types"
	"github.com/rcamargo/flexroom/pkg/logger"
	"github.com/rcamargo/flexroom/pkg/metrics"
)

// Default registry configuration.
const (
	defaultSweepInterval = 60 * time.Second
	defaultStaleTTL      = 30 * time.Minute
	defaultEventBuffer   = 64
	maxPlayers           = 5
)

// Filter narrows ListOpen results. Zero values mean "no constraint".
type Filter struct {
	Elo      types.Tier
	Position types.Position
}

// Registry owns every room. All mutations persist the full snapshot before
// their change event is emitted, so durable state never lags notifications.
// A persistence failure reverts the in-memory change and fails the call.
type Registry struct {
	mu    sync.Mutex
	store repository.Store
	rooms map[string]model.Room

	events chan Event

	now           func() time.Time
	newID         func() string
	sweepInterval time.Duration
	staleTTL      time.Duration
	eventBuffer   int
	log           logger.Logger
}

// New builds a registry, loading the last durable snapshot from store.
func New(ctx context.Context, store repository.Store, opts ...Option) (*Registry, error) {
	r := &Registry{
		store:         store,
		now:           time.Now,
		newID:         uuid.NewString,
		sweepInterval: defaultSweepInterval,
		staleTTL:      defaultStaleTTL,
	}
	r.eventBuffer = defaultEventBuffer
	for _, opt := range opts {
		opt(r)
	}
	r.events = make(chan Event, r.eventBuffer)

	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	r.rooms = loaded
	r.updateOpenGauge()
	return r, nil
}

// Events returns the change notification channel. Sends are non-blocking;
// events are dropped when no consumer keeps up.
func (r *Registry) Events() <-chan Event { return r.events }

// Run drives the periodic stale-room sweep until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := r.SweepStale(ctx)
			if removed > 0 && r.log != nil {
				r.log.Info(ctx, "stale rooms removed", logger.Int("count", removed))
			}
		}
	}
}

// Create builds a room with owner as host and stores it. The needed-position
// set is reduced by the host's own primary and secondary positions.
func (r *Registry) Create(ctx context.Context, owner model.Summoner, minElo types.Tier, hostPos, secondaryPos types.Position, needed []types.Position) (model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := model.Room{
		ID:     r.newID(),
		MinElo: minElo,
		Status: types.RoomOpen,
		Players: []model.Player{{
			Summoner:          owner,
			Position:          hostPos,
			SecondaryPosition: secondaryPos,
		}},
		NeededPositions: neededMinusHost(needed, hostPos, secondaryPos),
		CreatedAt:       r.now(),
	}

	r.rooms[room.ID] = room
	if err := r.persist(ctx); err != nil {
		delete(r.rooms, room.ID)
		return model.Room{}, err
	}

	metrics.RecordRoomCreated()
	r.updateOpenGauge()
	r.emit(Event{Type: EventCreated, RoomID: room.ID, Room: roomPtr(room)})
	return room.Clone(), nil
}

// Get returns the room with the given id.
func (r *Registry) Get(id string) (model.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return model.Room{}, false
	}
	return room.Clone(), true
}

// ListOpen returns every open room, most recently created first. Rooms
// created in the same instant keep map iteration order; no secondary sort
// key is defined.
func (r *Registry) ListOpen() []model.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listOpenLocked()
}

func (r *Registry) listOpenLocked() []model.Room {
	out := make([]model.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		if room.Status == types.RoomOpen {
			out = append(out, room.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Filter returns the open rooms matching f, in ListOpen order.
func (r *Registry) Filter(f Filter) []model.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	open := r.listOpenLocked()
	out := open[:0]
	for _, room := range open {
		if f.Elo != "" && room.MinElo != f.Elo {
			continue
		}
		if f.Position != "" && !room.Needs(f.Position) {
			continue
		}
		out = append(out, room)
	}
	return out
}

// Join appends player to the room at the position they asked for. The
// player's display name is resolved from either an explicit display name or
// a game-name plus tag-line pair.
func (r *Registry) Join(ctx context.Context, id string, player model.Player) (model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	if room.Status != types.RoomOpen {
		return model.Room{}, ErrRoomNotOpen
	}
	if !room.Needs(player.Position) {
		return model.Room{}, ErrPositionNotNeeded
	}

	prev := room.Clone()

	player.Summoner.DisplayName = player.Summoner.Name()
	updated := room.Clone()
	updated.Players = append(updated.Players, player)
	updated.NeededPositions = withoutPosition(updated.NeededPositions, player.Position)
	if len(updated.Players) == maxPlayers {
		updated.Status = types.RoomFull
	}
	updated.UpdatedAt = r.now()

	r.rooms[id] = updated
	if err := r.persist(ctx); err != nil {
		r.rooms[id] = prev
		return model.Room{}, err
	}

	metrics.RecordRoomJoined()
	r.updateOpenGauge()
	r.emit(Event{Type: EventUpdated, RoomID: id, Room: roomPtr(updated)})
	return updated.Clone(), nil
}

// Leave removes the player with the given display name. An emptied room is
// deleted instead of updated. The departing player's position is not put
// back into the needed set; hosts re-open recruitment by canceling and
// creating a fresh room.
func (r *Registry) Leave(ctx context.Context, id, displayName string) (model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}

	idx := -1
	for i, p := range room.Players {
		if p.Summoner.DisplayName == displayName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Room{}, ErrPlayerNotInRoom
	}

	prev := room.Clone()
	updated := room.Clone()
	updated.Players = append(updated.Players[:idx], updated.Players[idx+1:]...)

	if len(updated.Players) == 0 {
		delete(r.rooms, id)
		if err := r.persist(ctx); err != nil {
			r.rooms[id] = prev
			return model.Room{}, err
		}
		metrics.RecordRoomLeft()
		r.updateOpenGauge()
		r.emit(Event{Type: EventDeleted, RoomID: id})
		return updated, nil
	}

	updated.Status = types.RoomOpen
	updated.UpdatedAt = r.now()
	r.rooms[id] = updated
	if err := r.persist(ctx); err != nil {
		r.rooms[id] = prev
		return model.Room{}, err
	}

	metrics.RecordRoomLeft()
	r.updateOpenGauge()
	r.emit(Event{Type: EventUpdated, RoomID: id, Room: roomPtr(updated)})
	return updated.Clone(), nil
}

// Cancel deletes the room unconditionally. Whether the caller is allowed to
// cancel is the orchestration layer's decision, not this one's.
func (r *Registry) Cancel(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return ErrRoomNotFound
	}

	delete(r.rooms, id)
	if err := r.persist(ctx); err != nil {
		r.rooms[id] = room
		return err
	}

	metrics.RecordRoomCanceled()
	r.updateOpenGauge()
	r.emit(Event{Type: EventCanceled, RoomID: id})
	return nil
}

// ClearAll empties the registry and the persisted snapshot.
func (r *Registry) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.rooms
	r.rooms = map[string]model.Room{}
	if err := r.store.Clear(ctx); err != nil {
		r.rooms = prev
		return err
	}

	r.updateOpenGauge()
	r.emit(Event{Type: EventCleared})
	return nil
}

// SweepStale deletes every room older than the stale TTL, emitting a deleted
// event per room, and persists once after the sweep. Returns the number of
// rooms removed.
func (r *Registry) SweepStale(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var removed []string
	for id, room := range r.rooms {
		if room.Age(now) > r.staleTTL {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return 0
	}

	backup := make(map[string]model.Room, len(removed))
	for _, id := range removed {
		backup[id] = r.rooms[id]
		delete(r.rooms, id)
	}
	if err := r.persist(ctx); err != nil {
		for id, room := range backup {
			r.rooms[id] = room
		}
		if r.log != nil {
			r.log.Error(ctx, "stale sweep persist failed", logger.Error(err))
		}
		return 0
	}

	for _, id := range removed {
		metrics.RecordRoomExpired()
		r.emit(Event{Type: EventDeleted, RoomID: id})
	}
	r.updateOpenGauge()
	return len(removed)
}

// persist writes the full snapshot. Callers hold the registry lock.
func (r *Registry) persist(ctx context.Context) error {
	return r.store.Save(ctx, r.rooms)
}

func (r *Registry) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
		metrics.RecordMessageDropped()
	}
}

func (r *Registry) updateOpenGauge() {
	open := 0
	for _, room := range r.rooms {
		if room.Status == types.RoomOpen {
			open++
		}
	}
	metrics.UpdateOpenRooms(open)
}

func neededMinusHost(needed []types.Position, hostPos, secondaryPos types.Position) []types.Position {
	out := make([]types.Position, 0, len(needed))
	for _, p := range needed {
		if p == types.PositionFill || p == hostPos {
			continue
		}
		if secondaryPos != types.PositionFill && p == secondaryPos {
			continue
		}
		out = append(out, p)
	}
	return out
}

func withoutPosition(set []types.Position, p types.Position) []types.Position {
	out := make([]types.Position, 0, len(set))
	for _, n := range set {
		if n != p {
			out = append(out, n)
		}
	}
	return out
}

func roomPtr(room model.Room) *model.Room {
	cp := room.Clone()
	return &cp
}
