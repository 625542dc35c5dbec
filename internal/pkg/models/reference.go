package models

import (
	"time"
)

// Competition is a canonical competition row (seed-owned, read-only to the pipeline).
type Competition struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Tier    int    `json:"tier"`
}

// Team is a canonical team row.
type Team struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// TeamAlias maps a normalized alias string to a canonical team.
// AliasNorm is produced by NormalizeAlias and is unique per team.
type TeamAlias struct {
	TeamID    string `json:"team_id"`
	AliasNorm string `json:"alias_norm"`
}

// Match is the canonical, deduplicated representation of a fixture.
type Match struct {
	ID            string    `json:"id"`
	CompetitionID string    `json:"competition_id"`
	HomeTeamID    string    `json:"home_team_id"`
	AwayTeamID    string    `json:"away_team_id"`
	KickoffUTC    time.Time `json:"kickoff_utc"`
	Status        string    `json:"status"` // SCHEDULED, FINISHED
}

// MatchRef is a loosely specified match reference to be resolved
// against canonical reference data.
type MatchRef struct {
	HomeText       string    `json:"home_text"`
	AwayText       string    `json:"away_text"`
	KickoffHintUTC time.Time `json:"kickoff_hint_utc"`
	WindowHours    int       `json:"window_hours"`
	CompetitionID  string    `json:"competition_id,omitempty"`
}
