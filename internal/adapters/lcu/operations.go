package lcu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rcamargo/flexroom/internal/domain/model"
	"github.com/rcamargo/flexroom/internal/domain/types"
	"github.com/rcamargo/flexroom/pkg/logger"
)

// Fixed lobby configuration for flex queue.
const (
	lobbyGameMode = "CLASSIC"
	lobbyTeamSize = 5
	lobbyMapID    = 11
)

// CurrentSummoner fetches the logged-in summoner, normalizing the display
// name from the riot-id pair when present, falling back to the legacy
// display name and then to the plain summoner name.
func (c *Client) CurrentSummoner(ctx context.Context) (model.Summoner, error) {
	data, err := c.Request(ctx, http.MethodGet, "/lol-summoner/v1/current-summoner", nil)
	if err != nil {
		return model.Summoner{}, fmt.Errorf("fetching current summoner: %w", err)
	}

	var raw struct {
		GameName     string `json:"gameName"`
		TagLine      string `json:"tagLine"`
		DisplayName  string `json:"displayName"`
		SummonerName string `json:"summonerName"`
		PUUID        string `json:"puuid"`
		SummonerID   int64  `json:"summonerId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Summoner{}, fmt.Errorf("decoding summoner: %w", err)
	}

	s := model.Summoner{
		PUUID:      raw.PUUID,
		SummonerID: raw.SummonerID,
		GameName:   raw.GameName,
		TagLine:    raw.TagLine,
	}
	switch {
	case raw.GameName != "" && raw.TagLine != "":
		s.DisplayName = raw.GameName + "#" + raw.TagLine
	case raw.DisplayName != "":
		s.DisplayName = raw.DisplayName
	default:
		s.DisplayName = raw.SummonerName
	}
	return s, nil
}

// RankedStats fetches solo and flex standings. Both queues are always
// present in the result: a failed call or an absent queue yields the
// unranked placeholder rather than an error.
func (c *Client) RankedStats(ctx context.Context) model.RankedStats {
	stats := model.RankedStats{QueueMap: map[types.QueueKey]model.RankedEntry{
		types.QueueSolo: model.UnrankedEntry(),
		types.QueueFlex: model.UnrankedEntry(),
	}}

	data, err := c.Request(ctx, http.MethodGet, "/lol-ranked/v1/current-ranked-stats", nil)
	if err != nil {
		c.log.Warn(ctx, "ranked stats unavailable, defaulting to unranked", logger.Error(err))
		return stats
	}

	var raw struct {
		Queues []struct {
			QueueType    string `json:"queueType"`
			Tier         string `json:"tier"`
			Division     string `json:"division"`
			LeaguePoints int    `json:"leaguePoints"`
		} `json:"queues"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		c.log.Warn(ctx, "ranked stats undecodable, defaulting to unranked", logger.Error(err))
		return stats
	}

	for _, q := range raw.Queues {
		key := types.QueueKey(q.QueueType)
		if key != types.QueueSolo && key != types.QueueFlex {
			continue
		}
		entry := model.UnrankedEntry()
		if q.Tier != "" {
			entry.Tier = types.Tier(q.Tier)
		}
		if q.Division != "" {
			entry.Division = q.Division
		}
		entry.LeaguePoints = q.LeaguePoints
		stats.QueueMap[key] = entry
	}
	return stats
}

// CreateLobby creates a lobby for the given queue with the fixed classic
// five-player configuration.
func (c *Client) CreateLobby(ctx context.Context, queueID int) error {
	body := map[string]any{
		"queueId":  queueID,
		"gameMode": lobbyGameMode,
		"teamSize": lobbyTeamSize,
		"mapId":    lobbyMapID,
	}
	if _, err := c.Request(ctx, http.MethodPost, "/lol-lobby/v2/lobby", body); err != nil {
		return fmt.Errorf("creating lobby: %w", err)
	}
	return nil
}

// SetPositionPreferences submits lane preferences, resolving casual aliases
// to canonical codes. An empty second preference defaults to FILL.
func (c *Client) SetPositionPreferences(ctx context.Context, first, second string) error {
	if second == "" {
		second = string(types.PositionFill)
	}
	body := map[string]any{
		"firstPreference":  types.NormalizePosition(first),
		"secondPreference": types.NormalizePosition(second),
	}
	_, err := c.Request(ctx, http.MethodPut,
		"/lol-lobby/v2/lobby/members/localMember/position-preferences", body)
	if err != nil {
		return fmt.Errorf("setting position preferences: %w", err)
	}
	return nil
}

// LobbyMember is one occupant of the active remote lobby.
type LobbyMember struct {
	SummonerID   int64  `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	PUUID        string `json:"puuid"`
}

// LobbyMembers lists the active lobby's occupants.
func (c *Client) LobbyMembers(ctx context.Context) ([]LobbyMember, error) {
	data, err := c.Request(ctx, http.MethodGet, "/lol-lobby/v2/lobby/members", nil)
	if err != nil {
		return nil, fmt.Errorf("listing lobby members: %w", err)
	}
	var members []LobbyMember
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("decoding lobby members: %w", err)
	}
	return members, nil
}

// Invite sends lobby invitations to the given display names.
func (c *Client) Invite(ctx context.Context, names []string) error {
	invitations := make([]map[string]string, len(names))
	for i, name := range names {
		invitations[i] = map[string]string{"toSummonerName": name}
	}
	body := map[string]any{"invitations": invitations}
	if _, err := c.Request(ctx, http.MethodPost, "/lol-lobby/v2/lobby/invitations", body); err != nil {
		return fmt.Errorf("sending invitations: %w", err)
	}
	return nil
}

// GameflowPhase reads the current gameflow phase ("None", "Lobby", ...).
func (c *Client) GameflowPhase(ctx context.Context) (string, error) {
	data, err := c.Request(ctx, http.MethodGet, "/lol-gameflow/v1/gameflow-phase", nil)
	if err != nil {
		return "", fmt.Errorf("reading gameflow phase: %w", err)
	}
	var phase string
	if err := json.Unmarshal(data, &phase); err != nil {
		return "", fmt.Errorf("decoding gameflow phase: %w", err)
	}
	return phase, nil
}

// DestroyLobby tears down the active lobby.
func (c *Client) DestroyLobby(ctx context.Context) error {
	if _, err := c.Request(ctx, http.MethodDelete, "/lol-lobby/v2/lobby", nil); err != nil {
		return fmt.Errorf("destroying lobby: %w", err)
	}
	return nil
}
