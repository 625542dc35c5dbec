package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// RecordedConnector serves pre-recorded snapshots keyed by match id.
// Deterministic by construction; the default connector for shadow runs.
type RecordedConnector struct {
	name      string
	snapshots map[string]models.Snapshot
}

// NewRecordedConnector creates a recorded connector over a fixed snapshot
// set. The fixture set is validated up front so duplicates or bad odds are
// rejected at construction, not at fetch time.
func NewRecordedConnector(name string, snapshots []models.Snapshot) (*RecordedConnector, error) {
	refs := make([]*models.Snapshot, len(snapshots))
	for i := range snapshots {
		refs[i] = &snapshots[i]
	}
	if err := ValidateFixtureSet(refs); err != nil {
		return nil, fmt.Errorf("recorded connector %q: %w", name, err)
	}
	byID := make(map[string]models.Snapshot, len(snapshots))
	for _, s := range snapshots {
		byID[s.MatchID] = s
	}
	return &RecordedConnector{name: name, snapshots: byID}, nil
}

func (c *RecordedConnector) Name() string { return c.name }
func (c *RecordedConnector) Live() bool   { return false }

// FetchMatchData returns a copy of the recorded snapshot for matchID.
func (c *RecordedConnector) FetchMatchData(_ context.Context, matchID string) (*models.Snapshot, error) {
	s, ok := c.snapshots[matchID]
	if !ok {
		return nil, fmt.Errorf("no recorded fixture for match %q", matchID)
	}
	cp := s
	return &cp, nil
}

// DefaultRecordedSnapshots is the built-in recorded fixture set used by the
// "recorded" connector. Kickoffs align with the canonical seed matches.
func DefaultRecordedSnapshots() []models.Snapshot {
	return []models.Snapshot{
		{
			SourceRef:     "recorded",
			MatchID:       "gr-1",
			HomeTeam:      "PAOK",
			AwayTeam:      "AEK",
			Competition:   "Super League Greece",
			KickoffUTC:    time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC),
			ObservedAtUTC: time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC),
			Status:        "SCHEDULED",
			Odds1X2:       models.Odds1X2{Home: 2.10, Draw: 3.20, Away: 3.40},
			OddsOU25:      &models.OddsOU25{Over: 2.05, Under: 1.78},
			OddsGGNG:      &models.OddsGGNG{GG: 1.95, NG: 1.85},
		},
		{
			SourceRef:     "recorded",
			MatchID:       "eng-1",
			HomeTeam:      "Manchester United",
			AwayTeam:      "Liverpool",
			Competition:   "Premier League",
			KickoffUTC:    time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC),
			ObservedAtUTC: time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC),
			Status:        "SCHEDULED",
			Odds1X2:       models.Odds1X2{Home: 2.90, Draw: 3.30, Away: 2.45},
			OddsOU25:      &models.OddsOU25{Over: 1.72, Under: 2.15},
		},
		{
			SourceRef:     "recorded",
			MatchID:       "es-1",
			HomeTeam:      "Barcelona",
			AwayTeam:      "Real Madrid",
			Competition:   "La Liga",
			KickoffUTC:    time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC),
			ObservedAtUTC: time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC),
			Status:        "SCHEDULED",
			Odds1X2:       models.Odds1X2{Home: 1.65, Draw: 4.10, Away: 4.80},
			OddsOU25:      &models.OddsOU25{Over: 1.60, Under: 2.35},
			OddsGGNG:      &models.OddsGGNG{GG: 1.62, NG: 2.25},
			Claims: []models.Claim{
				{Source: "recorded", Kind: "INJURY", Text: "starting keeper doubtful", ObservedAtUTC: time.Date(2026, 2, 12, 18, 0, 0, 0, time.UTC)},
			},
		},
	}
}
