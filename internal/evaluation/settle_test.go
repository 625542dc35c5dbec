package evaluation

import (
	"testing"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

func playDecision(market models.Market, pick string) models.MarketDecision {
	return models.MarketDecision{Market: market, Decision: pick, Reasons: []string{"TOP_OUTCOME_" + pick}}
}

func TestSettle(t *testing.T) {
	now := time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		decision models.MarketDecision
		home     int
		away     int
		wantHit  bool
	}{
		{"1x2 home win hits", playDecision(models.Market1X2, "HOME"), 2, 0, true},
		{"1x2 draw misses home pick", playDecision(models.Market1X2, "HOME"), 1, 1, false},
		{"1x2 draw pick hits", playDecision(models.Market1X2, "DRAW"), 0, 0, true},
		{"ou over hits at exactly three goals", playDecision(models.MarketOU25, "OVER"), 2, 1, true},
		{"ou under misses at three goals", playDecision(models.MarketOU25, "UNDER"), 2, 1, false},
		{"ggng gg hits", playDecision(models.MarketGGNG, "GG"), 1, 1, true},
		{"ggng ng hits on clean sheet", playDecision(models.MarketGGNG, "NG"), 3, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcomes := Settle("m1", []models.MarketDecision{tt.decision}, tt.home, tt.away, now)
			if len(outcomes) != 1 {
				t.Fatalf("expected 1 outcome, got %d", len(outcomes))
			}
			if outcomes[0].Hit != tt.wantHit {
				t.Errorf("hit = %t, want %t", outcomes[0].Hit, tt.wantHit)
			}
			if outcomes[0].Pick != tt.decision.Decision {
				t.Errorf("pick = %s, want %s", outcomes[0].Pick, tt.decision.Decision)
			}
		})
	}
}

func TestSettleSkipsNonPlays(t *testing.T) {
	decisions := []models.MarketDecision{
		{Market: models.Market1X2, Decision: models.DecisionNoBet, Reasons: []string{models.ReasonSeparationBelowThreshold}},
		{Market: models.MarketOU25, Decision: models.DecisionNoPrediction, Reasons: []string{models.ReasonInsufficientData}},
	}
	outcomes := Settle("m1", decisions, 1, 0, time.Now())
	if len(outcomes) != 0 {
		t.Errorf("NO_BET and NO_PREDICTION must not settle, got %d outcomes", len(outcomes))
	}
}
