package ingestion

import (
	"fmt"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// ValidationError marks a malformed snapshot rejected at the adapter
// boundary, before it enters the pipeline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("snapshot validation failed: %s: %s", e.Field, e.Reason)
}

// ValidateSnapshot rejects snapshots with non-positive odds, a missing or
// non-UTC kickoff, or missing identity fields.
func ValidateSnapshot(s *models.Snapshot) error {
	if s == nil {
		return &ValidationError{Field: "snapshot", Reason: "nil"}
	}
	if s.MatchID == "" {
		return &ValidationError{Field: "match_id", Reason: "empty"}
	}
	if s.KickoffUTC.IsZero() {
		return &ValidationError{Field: "kickoff_utc", Reason: "missing"}
	}
	if _, offset := s.KickoffUTC.Zone(); offset != 0 {
		return &ValidationError{Field: "kickoff_utc", Reason: "not UTC"}
	}
	if s.ObservedAtUTC.IsZero() {
		return &ValidationError{Field: "observed_at_utc", Reason: "missing"}
	}
	if s.Odds1X2.Home <= 0 || s.Odds1X2.Draw <= 0 || s.Odds1X2.Away <= 0 {
		return &ValidationError{Field: "odds_1x2", Reason: "odds must be > 0"}
	}
	if s.OddsOU25 != nil && (s.OddsOU25.Over <= 0 || s.OddsOU25.Under <= 0) {
		return &ValidationError{Field: "odds_ou25", Reason: "odds must be > 0"}
	}
	if s.OddsGGNG != nil && (s.OddsGGNG.GG <= 0 || s.OddsGGNG.NG <= 0) {
		return &ValidationError{Field: "odds_ggng", Reason: "odds must be > 0"}
	}
	return nil
}

// ValidateFixtureSet rejects fixture sets containing duplicate match ids.
func ValidateFixtureSet(snapshots []*models.Snapshot) error {
	seen := make(map[string]bool, len(snapshots))
	for _, s := range snapshots {
		if err := ValidateSnapshot(s); err != nil {
			return err
		}
		if seen[s.MatchID] {
			return &ValidationError{Field: "match_id", Reason: fmt.Sprintf("duplicate %q in fixture set", s.MatchID)}
		}
		seen[s.MatchID] = true
	}
	return nil
}
