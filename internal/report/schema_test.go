package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

func validReport() *models.PipelineReport {
	return &models.PipelineReport{
		SchemaVersion: models.ReportSchemaVersion,
		CanonicalFlow: models.CanonicalFlow,
		GeneratedAt:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		AppVersion:    "test",
		RunID:         "8d5a4f1e-0000-4000-8000-000000000000",
		MatchID:       "gr-1",
		Resolver: models.ResolverReport{
			Status:  models.ResolverResolved,
			MatchID: "gr-1",
			Notes:   []string{},
		},
		Analysis: models.AnalysisReport{
			LogicVersion:     "odds_implied_v1",
			SnapshotChecksum: "abc",
			Decisions: []models.MarketDecision{{
				Market:        models.Market1X2,
				Probabilities: map[string]float64{"HOME": 0.44, "DRAW": 0.29, "AWAY": 0.27},
				Separation:    0.15,
				Confidence:    0.76,
				Risk:          0.24,
				Decision:      "HOME",
				Reasons:       []string{"TOP_OUTCOME_HOME"},
			}},
		},
		Evaluation: models.EvaluationReport{
			Checksums: models.Checksums{
				EvaluationReportChecksum: "a",
				ProposalChecksum:         "b",
				OutputHash:               "c",
			},
		},
		Audit: models.AuditReport{
			SnapshotsChecksum: "d",
			PolicyChecksum:    "e",
			MatchesCount:      1,
		},
	}
}

func TestValidateAcceptsCompleteReport(t *testing.T) {
	if err := Validate(validReport()); err != nil {
		t.Fatalf("valid report rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.PipelineReport)
	}{
		{"wrong schema version", func(r *models.PipelineReport) { r.SchemaVersion = "report.v2" }},
		{"wrong canonical flow", func(r *models.PipelineReport) { r.CanonicalFlow = "/pipeline/live/run" }},
		{"empty run id", func(r *models.PipelineReport) { r.RunID = "" }},
		{"invalid resolver status", func(r *models.PipelineReport) { r.Resolver.Status = "MAYBE" }},
		{"decision without reasons", func(r *models.PipelineReport) {
			r.Analysis.Decisions[0].Reasons = []string{}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReport()
			tt.mutate(r)
			if err := Validate(r); err == nil {
				t.Error("expected schema violation")
			}
		})
	}
}

func TestBuildLiveAwareness(t *testing.T) {
	recordedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	liveAt := time.Date(2026, 2, 1, 9, 0, 30, 0, time.UTC)

	aw := BuildLiveAwareness([]*models.Snapshot{
		{MatchID: "a", ObservedAtUTC: recordedAt},
		{MatchID: "b", ObservedAtUTC: liveAt, Live: true},
		nil,
	})

	if !aw.HasLiveShadow {
		t.Error("expected live shadow flag")
	}
	if aw.LatestLiveObservedAtUTC == nil || !aw.LatestLiveObservedAtUTC.Equal(liveAt) {
		t.Errorf("latest live = %v", aw.LatestLiveObservedAtUTC)
	}
	if aw.ObservedGapMS == nil || *aw.ObservedGapMS != 30000 {
		t.Errorf("gap = %v, want 30000ms", aw.ObservedGapMS)
	}
}

func TestBuildLiveAwarenessRecordedOnly(t *testing.T) {
	aw := BuildLiveAwareness([]*models.Snapshot{
		{MatchID: "a", ObservedAtUTC: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
	})
	if aw.HasLiveShadow {
		t.Error("no live snapshots, flag must be false")
	}
	if aw.ObservedGapMS != nil {
		t.Error("gap needs both live and recorded observations")
	}
}

func TestWriteLiveAwareness(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	aw := BuildLiveAwareness([]*models.Snapshot{
		{MatchID: "a", ObservedAtUTC: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
	})

	if err := WriteLiveAwareness(dir, aw); err != nil {
		t.Fatalf("WriteLiveAwareness failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "live_awareness.json"))
	if err != nil {
		t.Fatalf("read json artifact: %v", err)
	}
	var decoded LiveAwareness
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "live_awareness.md")); err != nil {
		t.Errorf("markdown artifact missing: %v", err)
	}
}
