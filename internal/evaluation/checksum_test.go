package evaluation

import (
	"testing"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

func TestChecksumStableAcrossRuns(t *testing.T) {
	payload := map[string]any{
		"b": []int{3, 1, 2},
		"a": map[string]any{"nested": "value", "count": 7},
	}

	first := MustChecksum(payload)
	for i := 0; i < 50; i++ {
		if got := MustChecksum(payload); got != first {
			t.Fatalf("checksum unstable on run %d: %s vs %s", i, got, first)
		}
	}
}

func TestChecksumIgnoresVolatileFields(t *testing.T) {
	base := models.PipelineReport{
		SchemaVersion: models.ReportSchemaVersion,
		CanonicalFlow: models.CanonicalFlow,
		RunID:         "run-a",
		GeneratedAt:   time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		MatchID:       "gr-1",
	}
	other := base
	other.RunID = "run-b"
	other.GeneratedAt = time.Date(2026, 5, 5, 23, 59, 0, 0, time.UTC)

	if MustChecksum(base) != MustChecksum(other) {
		t.Error("checksums must not depend on run_id or generated_at")
	}
}

func TestChecksumDetectsContentChange(t *testing.T) {
	base := models.MarketDecision{
		Market:   models.Market1X2,
		Decision: "HOME",
		Reasons:  []string{"TOP_OUTCOME_HOME"},
	}
	changed := base
	changed.Decision = "DRAW"

	if MustChecksum(base) == MustChecksum(changed) {
		t.Error("different decisions must checksum differently")
	}
}

func TestEvaluateGuardrailOnPickChange(t *testing.T) {
	cfg := analyzerTestConfig()
	current := []models.MarketDecision{{
		Market:        models.Market1X2,
		Decision:      "HOME",
		Probabilities: map[string]float64{"HOME": 0.5, "DRAW": 0.3, "AWAY": 0.2},
		Reasons:       []string{"TOP_OUTCOME_HOME"},
	}}
	prior := []models.MarketDecision{{
		Market:        models.Market1X2,
		Decision:      "AWAY",
		Probabilities: map[string]float64{"HOME": 0.2, "DRAW": 0.3, "AWAY": 0.5},
		Reasons:       []string{"TOP_OUTCOME_AWAY"},
	}}

	eval := Evaluate(current, prior, cfg)
	if !eval.Stability.GuardrailTriggered {
		t.Fatal("expected guardrail on pick change")
	}
	if len(eval.Stability.Notes) == 0 {
		t.Error("guardrail must explain itself")
	}
}

func TestEvaluateGuardrailOnProbabilityJump(t *testing.T) {
	cfg := analyzerTestConfig()
	current := []models.MarketDecision{{
		Market:        models.Market1X2,
		Decision:      "HOME",
		Probabilities: map[string]float64{"HOME": 0.80, "DRAW": 0.12, "AWAY": 0.08},
		Reasons:       []string{"TOP_OUTCOME_HOME"},
	}}
	prior := []models.MarketDecision{{
		Market:        models.Market1X2,
		Decision:      "HOME",
		Probabilities: map[string]float64{"HOME": 0.45, "DRAW": 0.30, "AWAY": 0.25},
		Reasons:       []string{"TOP_OUTCOME_HOME"},
	}}

	eval := Evaluate(current, prior, cfg)
	if !eval.Stability.GuardrailTriggered {
		t.Fatal("expected guardrail on probability jump above threshold")
	}
}

func TestEvaluateNoGuardrailOnStableDecisions(t *testing.T) {
	cfg := analyzerTestConfig()
	decisions := []models.MarketDecision{{
		Market:        models.Market1X2,
		Decision:      "HOME",
		Probabilities: map[string]float64{"HOME": 0.45, "DRAW": 0.30, "AWAY": 0.25},
		Reasons:       []string{"TOP_OUTCOME_HOME"},
	}}

	eval := Evaluate(decisions, decisions, cfg)
	if eval.Stability.GuardrailTriggered {
		t.Errorf("guardrail must not fire on identical decisions: %v", eval.Stability.Notes)
	}

	// And without a prior run there is nothing to compare against.
	if Evaluate(decisions, nil, cfg).Stability.GuardrailTriggered {
		t.Error("guardrail must not fire without a prior run")
	}
}

func TestEvaluateChecksumsFilled(t *testing.T) {
	eval := Evaluate([]models.MarketDecision{}, nil, analyzerTestConfig())
	cs := eval.Checksums
	if cs.OutputHash == "" || cs.ProposalChecksum == "" || cs.EvaluationReportChecksum == "" {
		t.Errorf("all checksums must be set, got %+v", cs)
	}
}
