// Package types contains enumerations shared across the application.
package types

import "strings"

// Position is a canonical lane assignment as the game client understands it.
type Position string

// Canonical positions.
const (
	PositionTop     Position = "TOP"
	PositionJungle  Position = "JUNGLE"
	PositionMiddle  Position = "MIDDLE"
	PositionBottom  Position = "BOTTOM"
	PositionUtility Position = "UTILITY"
	PositionFill    Position = "FILL"
)

// LanePositions lists every position a room can still need. FILL is not a
// lane and never appears in a needed-position set.
func LanePositions() []Position {
	return []Position{PositionTop, PositionJungle, PositionMiddle, PositionBottom, PositionUtility}
}

// positionAliases maps the casual names players use to canonical codes.
var positionAliases = map[string]Position{
	"top":    PositionTop,
	"jungle": PositionJungle,
	"mid":    PositionMiddle,
	"adc":    PositionBottom,
	"sup":    PositionUtility,
	"fill":   PositionFill,
}

// NormalizePosition resolves a casual alias ("mid", "adc", ...) to its
// canonical code, falling back to upper-casing the input when unknown.
func NormalizePosition(s string) Position {
	if p, ok := positionAliases[strings.ToLower(s)]; ok {
		return p
	}
	return Position(strings.ToUpper(s))
}

// ValidPosition reports whether p is one of the canonical codes.
func ValidPosition(p Position) bool {
	switch p {
	case PositionTop, PositionJungle, PositionMiddle, PositionBottom, PositionUtility, PositionFill:
		return true
	}
	return false
}

// Tier is a ranked ladder tier, used as a room's minimum-elo gate.
type Tier string

// Ranked tiers, lowest to highest, plus the unranked placeholder.
const (
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
	TierUnranked    Tier = "UNRANKED"
)

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

// Room states. A room is full exactly when it holds five players.
const (
	RoomOpen RoomStatus = "open"
	RoomFull RoomStatus = "full"
)

// QueueKey identifies a matchmaking queue in the ranked-stats API.
type QueueKey string

// Queue keys used by the ranked-stats API.
const (
	QueueSolo QueueKey = "RANKED_SOLO_5x5"
	QueueFlex QueueKey = "RANKED_FLEX_SR"
)
