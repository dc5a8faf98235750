// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// MatchStatus enumerates the lifecycle states of a match.
type MatchStatus string

const (
	StatusScheduled  MatchStatus = "scheduled"
	StatusInProgress MatchStatus = "in_progress"
	StatusFinished   MatchStatus = "finished"
	StatusCancelled  MatchStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s MatchStatus) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// TeamSide identifies one of the two sides of a match.
type TeamSide string

const (
	SideHome TeamSide = "home"
	SideAway TeamSide = "away"
)

// Valid reports whether the side is one of the two known values.
func (s TeamSide) Valid() bool { return s == SideHome || s == SideAway }

// EventKind enumerates the recordable in-game events.
type EventKind string

const (
	KindBasket2   EventKind = "basket2"
	KindBasket3   EventKind = "basket3"
	KindFreeThrow EventKind = "free_throw"
	KindFoul      EventKind = "foul"
	KindRebound   EventKind = "rebound"
	KindAssist    EventKind = "assist"
	KindSteal     EventKind = "steal"
	KindBlock     EventKind = "block"
)

// Known reports whether the kind is one of the recordable event kinds.
func (k EventKind) Known() bool {
	switch k {
	case KindBasket2, KindBasket3, KindFreeThrow, KindFoul, KindRebound, KindAssist, KindSteal, KindBlock:
		return true
	}
	return false
}

// Points returns the score value derived from the kind.
func (k EventKind) Points() int {
	switch k {
	case KindBasket2:
		return 2
	case KindBasket3:
		return 3
	case KindFreeThrow:
		return 1
	default:
		return 0
	}
}

// Match represents one contest between two teams, including its live fields.
// Live fields (score, period, clock, fouls, timeouts) change only through the
// engine; everything else is fixed at scheduling time.
type Match struct {
	ID            int64       `json:"id"`
	HomeTeamID    int64       `json:"home_team_id"`
	AwayTeamID    int64       `json:"away_team_id"`
	HomeTeamName  string      `json:"home_team_name"`
	AwayTeamName  string      `json:"away_team_name"`
	Venue         string      `json:"venue"`
	Date          time.Time   `json:"date"`
	Status        MatchStatus `json:"status"`
	HomeScore     int         `json:"home_score"`
	AwayScore     int         `json:"away_score"`
	Period        int         `json:"period"`
	TimeRemaining int         `json:"time_remaining"` // seconds left in the current period
	HomeFouls     int         `json:"home_fouls"`
	AwayFouls     int         `json:"away_fouls"`
	HomeTimeouts  int         `json:"home_timeouts"`
	AwayTimeouts  int         `json:"away_timeouts"`
	Description   string      `json:"description,omitempty"`
	HomeRoster    []int64     `json:"home_roster,omitempty"`
	AwayRoster    []int64     `json:"away_roster,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Side maps a team id to its side within the match.
func (m Match) Side(teamID int64) (TeamSide, bool) {
	switch teamID {
	case m.HomeTeamID:
		return SideHome, true
	case m.AwayTeamID:
		return SideAway, true
	}
	return "", false
}

// OnRoster reports whether the player is registered for either side.
func (m Match) OnRoster(playerID int64) bool {
	for _, id := range m.HomeRoster {
		if id == playerID {
			return true
		}
	}
	for _, id := range m.AwayRoster {
		if id == playerID {
			return true
		}
	}
	return false
}

// Event is a single recorded happening during a match, attributed to one
// player. Events are immutable once stored; the ledger is append-only and
// corrections are recorded as new events.
type Event struct {
	ID           int64     `json:"id"`
	MatchID      int64     `json:"match_id"`
	Seq          int64     `json:"seq"`
	PlayerID     int64     `json:"player_id"`
	TeamID       int64     `json:"team_id"`
	Kind         EventKind `json:"kind"`
	Points       int       `json:"points"`
	Period       int       `json:"period"`
	ClockSeconds int       `json:"clock_seconds"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// BoxScore accumulates per-player statistics for one match.
// Identity is the (match_id, player_id) pair; rows are created lazily on the
// first event referencing the player and only ever mutated by event application.
type BoxScore struct {
	ID                     int64     `json:"id"`
	MatchID                int64     `json:"match_id"`
	PlayerID               int64     `json:"player_id"`
	TeamID                 int64     `json:"team_id"`
	Minutes                int       `json:"minutes"`
	Points                 int       `json:"points"`
	Rebounds               int       `json:"rebounds"`
	Assists                int       `json:"assists"`
	Steals                 int       `json:"steals"`
	Blocks                 int       `json:"blocks"`
	Fouls                  int       `json:"fouls"`
	FieldGoalsMade         int       `json:"field_goals_made"`
	FieldGoalsAttempted    int       `json:"field_goals_attempted"`
	ThreePointersMade      int       `json:"three_pointers_made"`
	ThreePointersAttempted int       `json:"three_pointers_attempted"`
	FreeThrowsMade         int       `json:"free_throws_made"`
	FreeThrowsAttempted    int       `json:"free_throws_attempted"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// StatDelta is the per-field increment an event contributes to a box score.
type StatDelta struct {
	TeamID                 int64
	Points                 int
	Rebounds               int
	Assists                int
	Steals                 int
	Blocks                 int
	Fouls                  int
	FieldGoalsMade         int
	FieldGoalsAttempted    int
	ThreePointersMade      int
	ThreePointersAttempted int
	FreeThrowsMade         int
	FreeThrowsAttempted    int
}

// DeltaFor derives the box-score increment for an event kind.
// Three-pointers count toward field goals as well, matching how the stat
// sheet reads them.
func DeltaFor(kind EventKind, teamID int64) StatDelta {
	d := StatDelta{TeamID: teamID, Points: kind.Points()}
	switch kind {
	case KindBasket2:
		d.FieldGoalsMade, d.FieldGoalsAttempted = 1, 1
	case KindBasket3:
		d.ThreePointersMade, d.ThreePointersAttempted = 1, 1
		d.FieldGoalsMade, d.FieldGoalsAttempted = 1, 1
	case KindFreeThrow:
		d.FreeThrowsMade, d.FreeThrowsAttempted = 1, 1
	case KindRebound:
		d.Rebounds = 1
	case KindAssist:
		d.Assists = 1
	case KindSteal:
		d.Steals = 1
	case KindBlock:
		d.Blocks = 1
	case KindFoul:
		d.Fouls = 1
	}
	return d
}

// Snapshot is the externally visible summary of a match's live state.
// It is persisted as a whole (last-write-wins on the aggregate), never as
// partial field updates.
type Snapshot struct {
	MatchID       int64       `json:"match_id"`
	HomeScore     int         `json:"home_score"`
	AwayScore     int         `json:"away_score"`
	Period        int         `json:"period"`
	TimeRemaining int         `json:"time_remaining"`
	HomeFouls     int         `json:"home_fouls"`
	AwayFouls     int         `json:"away_fouls"`
	HomeTimeouts  int         `json:"home_timeouts"`
	AwayTimeouts  int         `json:"away_timeouts"`
	Status        MatchStatus `json:"status"`
	Tag           string      `json:"tag,omitempty"` // e.g. "paused", "final"
	CapturedAt    time.Time   `json:"captured_at"`
}
