package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

func validSnapshot() models.Snapshot {
	return models.Snapshot{
		SourceRef:     "test",
		MatchID:       "m1",
		HomeTeam:      "PAOK",
		AwayTeam:      "AEK",
		KickoffUTC:    time.Date(2026, 2, 1, 18, 0, 0, 0, time.UTC),
		ObservedAtUTC: time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC),
		Status:        "SCHEDULED",
		Odds1X2:       models.Odds1X2{Home: 2.10, Draw: 3.20, Away: 3.40},
	}
}

func TestValidateSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Snapshot)
		wantErr bool
	}{
		{"valid", func(*models.Snapshot) {}, false},
		{"missing match id", func(s *models.Snapshot) { s.MatchID = "" }, true},
		{"zero kickoff", func(s *models.Snapshot) { s.KickoffUTC = time.Time{} }, true},
		{"non-utc kickoff", func(s *models.Snapshot) {
			s.KickoffUTC = time.Date(2026, 2, 1, 18, 0, 0, 0, time.FixedZone("EET", 2*3600))
		}, true},
		{"zero observed", func(s *models.Snapshot) { s.ObservedAtUTC = time.Time{} }, true},
		{"zero home odd", func(s *models.Snapshot) { s.Odds1X2.Home = 0 }, true},
		{"negative draw odd", func(s *models.Snapshot) { s.Odds1X2.Draw = -1.5 }, true},
		{"bad optional ou odds", func(s *models.Snapshot) { s.OddsOU25 = &models.OddsOU25{Over: 0, Under: 1.8} }, true},
		{"bad optional gg odds", func(s *models.Snapshot) { s.OddsGGNG = &models.OddsGGNG{GG: 1.9, NG: 0} }, true},
		{"good optional odds", func(s *models.Snapshot) {
			s.OddsOU25 = &models.OddsOU25{Over: 2.0, Under: 1.8}
			s.OddsGGNG = &models.OddsGGNG{GG: 1.9, NG: 1.9}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSnapshot()
			tt.mutate(&s)
			err := ValidateSnapshot(&s)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSnapshotNil(t *testing.T) {
	if err := ValidateSnapshot(nil); err == nil {
		t.Error("nil snapshot must fail validation")
	}
}

func TestValidateFixtureSetRejectsDuplicates(t *testing.T) {
	a := validSnapshot()
	b := validSnapshot()
	if err := ValidateFixtureSet([]*models.Snapshot{&a, &b}); err == nil {
		t.Error("duplicate match ids must fail validation")
	}
}

func TestRecordedConnectorFetch(t *testing.T) {
	c, err := NewRecordedConnector("recorded", DefaultRecordedSnapshots())
	if err != nil {
		t.Fatalf("NewRecordedConnector failed: %v", err)
	}
	if c.Live() {
		t.Error("recorded connector must not be live")
	}

	s, err := c.FetchMatchData(context.Background(), "gr-1")
	if err != nil {
		t.Fatalf("FetchMatchData failed: %v", err)
	}
	if s.HomeTeam != "PAOK" || s.AwayTeam != "AEK" {
		t.Errorf("unexpected snapshot teams: %s vs %s", s.HomeTeam, s.AwayTeam)
	}

	// Mutating the returned snapshot must not leak into later fetches.
	s.Odds1X2.Home = 99
	again, err := c.FetchMatchData(context.Background(), "gr-1")
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if again.Odds1X2.Home != 2.10 {
		t.Errorf("fixture mutated across fetches: %f", again.Odds1X2.Home)
	}

	if _, err := c.FetchMatchData(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown match id")
	}
}

func TestNewRecordedConnectorRejectsBadFixtures(t *testing.T) {
	bad := validSnapshot()
	bad.Odds1X2.Home = 0
	if _, err := NewRecordedConnector("recorded", []models.Snapshot{bad}); err == nil {
		t.Error("expected construction to fail on invalid fixture")
	}
}

func TestConnectorSafeGatesLiveConnectors(t *testing.T) {
	recorded, err := NewRecordedConnector("safe-test-recorded", DefaultRecordedSnapshots())
	if err != nil {
		t.Fatalf("NewRecordedConnector failed: %v", err)
	}
	Register(recorded)
	Register(fakeLiveConnector{})

	off := configLive(false, false)
	if _, err := ConnectorSafe("safe-test-recorded", off); err != nil {
		t.Errorf("recorded connector must always be allowed: %v", err)
	}
	if _, err := ConnectorSafe("safe-test-live", off); err == nil {
		t.Error("live connector must be rejected without live IO flags")
	}
	if _, err := ConnectorSafe("safe-test-live", configLive(true, false)); err == nil {
		t.Error("live connector needs both flags, got only live_io_allowed")
	}
	if _, err := ConnectorSafe("safe-test-live", configLive(true, true)); err != nil {
		t.Errorf("live connector must be allowed with both flags: %v", err)
	}
	if _, err := ConnectorSafe("never-registered", off); err == nil {
		t.Error("expected error for unregistered connector")
	}
}
