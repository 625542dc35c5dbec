package models

import (
	"time"
)

// Odds1X2 holds decimal odds for the 1X2 market. All values must be > 0.
type Odds1X2 struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// OddsOU25 holds decimal odds for the over/under 2.5 goals market.
type OddsOU25 struct {
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

// OddsGGNG holds decimal odds for the both-teams-to-score market.
type OddsGGNG struct {
	GG float64 `json:"gg"`
	NG float64 `json:"ng"`
}

// Claim is one injury/news claim attached to a snapshot. Observational input
// to evidence quality; never a decision on its own.
type Claim struct {
	Source        string    `json:"source"`
	Kind          string    `json:"kind"` // INJURY, SUSPENSION, NEWS
	Text          string    `json:"text"`
	ObservedAtUTC time.Time `json:"observed_at_utc"`
}

// Snapshot is one immutable, timestamped observation of match facts
// produced by an ingestion connector. OU25/GGNG odds are optional; a missing
// market yields INSUFFICIENT_DATA_FOR_MARKET downstream.
type Snapshot struct {
	SourceRef     string    `json:"source_ref"`
	MatchID       string    `json:"match_id"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	Competition   string    `json:"competition"`
	KickoffUTC    time.Time `json:"kickoff_utc"`
	ObservedAtUTC time.Time `json:"observed_at_utc"`
	Status        string    `json:"status"`
	Odds1X2       Odds1X2   `json:"odds_1x2"`
	OddsOU25      *OddsOU25 `json:"odds_ou25,omitempty"`
	OddsGGNG      *OddsGGNG `json:"odds_ggng,omitempty"`
	Claims        []Claim   `json:"claims,omitempty"`
	Live          bool      `json:"live"`
}
