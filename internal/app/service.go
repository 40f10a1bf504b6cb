// Package app wires the game-client adapter, the room registry and the
// notification bridge into the operations the local API exposes.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rcamargo/flexroom/internal/bridge"
	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/rooms"
	"github.com/rcamargo/flexroom/internal/domain/types"
	"github.com/rcamargo/flexroom/pkg/logger"
)

// Flex 5v5 ranked queue.
const defaultQueueID = 440

// GameClient is the slice of the protocol client the service depends on.
type GameClient interface {
	Initialize(ctx context.Context) bool
	Connected() bool
	Disconnect()
	CurrentSummoner(ctx context.Context) (model.Summoner, error)
	RankedStats(ctx context.Context) model.RankedStats
	CreateLobby(ctx context.Context, queueID int) error
	SetPositionPreferences(ctx context.Context, first, second string) error
	Invite(ctx context.Context, names []string) error
	DestroyLobby(ctx context.Context) error
}

// ConnectionInfo is the result of a connection probe.
type ConnectionInfo struct {
	Connected bool               `json:"isConnected"`
	Summoner  *model.Summoner    `json:"summoner,omitempty"`
	Ranked    *model.RankedStats `json:"rankedStats,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// CreateRoomInput carries the host's room parameters. Positions accept the
// casual aliases (top, jungle, mid, adc, sup, fill) as well as canonical
// names. An empty needed list recruits for every lane the host does not
// cover.
type CreateRoomInput struct {
	MinElo            string   `json:"minElo"`
	Position          string   `json:"position"`
	SecondaryPosition string   `json:"secondaryPosition"`
	NeededPositions   []string `json:"neededPositions"`
}

// Service orchestrates room operations against the local game client.
type Service struct {
	registry *rooms.Registry
	client   GameClient
	bridge   *bridge.Bridge
	queueID  int
	log      logger.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// New validates dependencies and builds a Service.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		queueID: defaultQueueID,
		log:     logger.Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		return nil, ErrNilRegistry
	}
	if s.client == nil {
		return nil, ErrNilClient
	}
	return s, nil
}

// Start launches the registry sweep and the bridge pump, then attempts the
// first connection to the game client. A failed first attempt is not an
// error; CheckConnection retries on demand.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.registry.Run(runCtx)
	if s.bridge != nil {
		go s.bridge.Run(runCtx)
	}

	if s.client.Initialize(ctx) {
		s.log.Info(ctx, "game client connected")
	} else {
		s.log.Warn(ctx, "game client unavailable, will retry on demand")
	}
}

// Stop tears down the background loops and the game-client connection.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.started = false
	s.cancel()
	s.client.Disconnect()
}

// CheckConnection reports connectivity, re-initializing the client when it
// is down, and bundles the local summoner with their ranked standing.
func (s *Service) CheckConnection(ctx context.Context) ConnectionInfo {
	if !s.client.Connected() && !s.client.Initialize(ctx) {
		return ConnectionInfo{Error: "game client is not running"}
	}

	summoner, err := s.client.CurrentSummoner(ctx)
	if err != nil {
		// A socket without a usable session is reported as not connected;
		// callers only care whether the client is ready to serve them.
		s.log.Warn(ctx, "summoner lookup failed", logger.Error(err))
		return ConnectionInfo{Error: err.Error()}
	}
	ranked := s.client.RankedStats(ctx)
	return ConnectionInfo{Connected: true, Summoner: &summoner, Ranked: &ranked}
}

// ListRooms returns open rooms matching the filter, newest first.
func (s *Service) ListRooms(f rooms.Filter) []model.Room {
	return s.registry.Filter(f)
}

// CreateRoom opens a remote lobby for the host and registers the room.
func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) (model.Room, error) {
	if !s.client.Connected() {
		return model.Room{}, ErrNotConnected
	}

	hostPos, err := parsePosition(in.Position)
	if err != nil {
		return model.Room{}, err
	}
	secondaryPos := types.PositionFill
	if in.SecondaryPosition != "" {
		if secondaryPos, err = parsePosition(in.SecondaryPosition); err != nil {
			return model.Room{}, err
		}
	}
	needed, err := parseNeeded(in.NeededPositions)
	if err != nil {
		return model.Room{}, err
	}

	summoner, err := s.client.CurrentSummoner(ctx)
	if err != nil {
		return model.Room{}, fmt.Errorf("summoner lookup: %w", err)
	}
	if err := s.client.CreateLobby(ctx, s.queueID); err != nil {
		return model.Room{}, fmt.Errorf("create lobby: %w", err)
	}
	if err := s.client.SetPositionPreferences(ctx, in.Position, in.SecondaryPosition); err != nil {
		s.log.Warn(ctx, "position preferences not applied", logger.Error(err))
	}

	minElo := types.Tier(strings.ToUpper(strings.TrimSpace(in.MinElo)))
	if minElo == "" {
		minElo = types.TierUnranked
	}
	return s.registry.Create(ctx, summoner, minElo, hostPos, secondaryPos, needed)
}

// JoinRoom invites the room's host into a shared lobby and takes the first
// position the room still needs.
func (s *Service) JoinRoom(ctx context.Context, id string) (model.Room, error) {
	if !s.client.Connected() {
		return model.Room{}, ErrNotConnected
	}

	room, ok := s.registry.Get(id)
	if !ok {
		return model.Room{}, rooms.ErrRoomNotFound
	}
	if len(room.NeededPositions) == 0 {
		return model.Room{}, rooms.ErrPositionNotNeeded
	}

	summoner, err := s.client.CurrentSummoner(ctx)
	if err != nil {
		return model.Room{}, fmt.Errorf("summoner lookup: %w", err)
	}
	host := room.Host()
	if err := s.client.Invite(ctx, []string{host.Summoner.Name()}); err != nil {
		s.log.Warn(ctx, "lobby invitation failed", logger.Error(err),
			logger.String("host", host.Summoner.Name()))
	}

	return s.registry.Join(ctx, id, model.Player{
		Summoner: summoner,
		Position: room.NeededPositions[0],
	})
}

// LeaveRoom removes a player from a room. This is a registry-only mutation;
// the player closes their own lobby client-side.
func (s *Service) LeaveRoom(ctx context.Context, id, displayName string) (model.Room, error) {
	return s.registry.Leave(ctx, id, displayName)
}

// CancelRoom tears the room down. Only the host may cancel; their remote
// lobby is destroyed as well.
func (s *Service) CancelRoom(ctx context.Context, id string) error {
	if !s.client.Connected() {
		return ErrNotConnected
	}

	room, ok := s.registry.Get(id)
	if !ok {
		return rooms.ErrRoomNotFound
	}

	summoner, err := s.client.CurrentSummoner(ctx)
	if err != nil {
		return fmt.Errorf("summoner lookup: %w", err)
	}
	if summoner.PUUID != room.Host().Summoner.PUUID {
		return ErrNotAuthorized
	}

	if err := s.client.DestroyLobby(ctx); err != nil {
		s.log.Warn(ctx, "remote lobby teardown failed", logger.Error(err))
	}
	return s.registry.Cancel(ctx, id)
}

// ClearAllRooms wipes the registry and its snapshot.
func (s *Service) ClearAllRooms(ctx context.Context) error {
	return s.registry.ClearAll(ctx)
}

func parsePosition(raw string) (types.Position, error) {
	pos := types.NormalizePosition(raw)
	if !types.ValidPosition(pos) {
		return "", fmt.Errorf("%w: position %q", ErrInvalidInput, raw)
	}
	return pos, nil
}

func parseNeeded(raw []string) ([]types.Position, error) {
	if len(raw) == 0 {
		return types.LanePositions(), nil
	}
	needed := make([]types.Position, 0, len(raw))
	for _, r := range raw {
		pos, err := parsePosition(r)
		if err != nil {
			return nil, err
		}
		needed = append(needed, pos)
	}
	return needed, nil
}
