// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/rcamargo/flexroom/internal/domain/types"
)

// Summoner is a value snapshot of a player's account, sourced from the game
// client and never mutated locally.
type Summoner struct {
	DisplayName string `json:"displayName"`
	PUUID       string `json:"puuid"`
	SummonerID  int64  `json:"summonerId"`
	GameName    string `json:"gameName,omitempty"`
	TagLine     string `json:"tagLine,omitempty"`
}

// Name returns the display name, preferring the modern gameName#tagLine pair
// over a legacy display name.
func (s Summoner) Name() string {
	if s.GameName != "" && s.TagLine != "" {
		return s.GameName + "#" + s.TagLine
	}
	return s.DisplayName
}

// RankedEntry is one queue's standing for a summoner.
type RankedEntry struct {
	Tier         types.Tier `json:"tier"`
	Division     string     `json:"division"`
	LeaguePoints int        `json:"leaguePoints"`
}

// UnrankedEntry is the placeholder used when a queue has no standing.
func UnrankedEntry() RankedEntry {
	return RankedEntry{Tier: types.TierUnranked, Division: "NA", LeaguePoints: 0}
}

// RankedStats maps queue keys to their entries. Queues the player has never
// played are present with the unranked placeholder.
type RankedStats struct {
	QueueMap map[types.QueueKey]RankedEntry `json:"queueMap"`
}

// Player is a room occupant. SecondaryPosition is only set for the host.
type Player struct {
	Summoner          Summoner       `json:"summoner"`
	Position          types.Position `json:"position"`
	SecondaryPosition types.Position `json:"secondaryPosition,omitempty"`
}

// Room is a matchmaking lobby-seeking entry owned by the room registry.
// players[0] is the host; join order is preserved and never reordered.
type Room struct {
	ID              string           `json:"id"`
	MinElo          types.Tier       `json:"minElo"`
	Status          types.RoomStatus `json:"status"`
	Players         []Player         `json:"players"`
	NeededPositions []types.Position `json:"neededPositions"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt,omitzero"`
}

// Host returns the room owner.
func (r Room) Host() Player {
	return r.Players[0]
}

// Needs reports whether the room still needs p.
func (r Room) Needs(p types.Position) bool {
	for _, n := range r.NeededPositions {
		if n == p {
			return true
		}
	}
	return false
}

// Age is the time elapsed since the room was created.
func (r Room) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// Clone returns a deep copy so registry mutations can be reverted when the
// snapshot write fails.
func (r Room) Clone() Room {
	out := r
	out.Players = append([]Player(nil), r.Players...)
	out.NeededPositions = append([]types.Position(nil), r.NeededPositions...)
	return out
}
