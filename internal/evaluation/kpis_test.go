package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
)

func analyzerTestConfig() config.AnalyzerConfig {
	return config.AnalyzerConfig{
		MinSeparation1X2: 0.10,
		MinSeparationOU:  0.08,
		MinSeparationGG:  0.08,
		MinConfidence:    0.62,
		RiskCap:          0.35,
		LogicVersion:     "odds_implied_v1",
	}
}

func outcomeAt(matchID string, hit bool, at time.Time) models.DecisionOutcome {
	return models.DecisionOutcome{
		MatchID:        matchID,
		Market:         models.Market1X2,
		Pick:           "HOME",
		Hit:            hit,
		EvaluatedAtUTC: at,
	}
}

func TestAggregateDay(t *testing.T) {
	store := storage.NewMemoryOutcomeStorage()
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mustRecord(t, store, outcomeAt("m1", true, day.Add(2*time.Hour)))
	mustRecord(t, store, outcomeAt("m2", true, day.Add(14*time.Hour)))
	mustRecord(t, store, outcomeAt("m3", false, day.Add(23*time.Hour)))
	// Outside the day.
	mustRecord(t, store, outcomeAt("m4", false, day.AddDate(0, 0, 1)))
	mustRecord(t, store, outcomeAt("m5", true, day.Add(-time.Minute)))

	record, err := Aggregate(ctx, store, models.PeriodDay, day.Add(9*time.Hour))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if record.Hits != 2 || record.Misses != 1 {
		t.Fatalf("expected 2 hits / 1 miss, got %d / %d", record.Hits, record.Misses)
	}
	if record.HitRate+record.MissRate != 1.0 {
		t.Errorf("hit_rate + miss_rate = %f, want 1", record.HitRate+record.MissRate)
	}
	if !record.ReferenceDateUTC.Equal(day) {
		t.Errorf("reference date %v, want %v", record.ReferenceDateUTC, day)
	}
}

func TestAggregateWeekStartsMonday(t *testing.T) {
	store := storage.NewMemoryOutcomeStorage()
	ctx := context.Background()

	// 2026-03-11 is a Wednesday; its ISO week runs 2026-03-09 .. 2026-03-16.
	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	mustRecord(t, store, outcomeAt("m1", true, monday))
	mustRecord(t, store, outcomeAt("m2", false, monday.AddDate(0, 0, 6).Add(23*time.Hour)))
	mustRecord(t, store, outcomeAt("m3", true, monday.Add(-time.Second))) // previous week

	record, err := Aggregate(ctx, store, models.PeriodWeek, time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if record.Hits != 1 || record.Misses != 1 {
		t.Fatalf("expected 1 hit / 1 miss, got %d / %d", record.Hits, record.Misses)
	}
	if !record.ReferenceDateUTC.Equal(monday) {
		t.Errorf("week must start on Monday, got %v", record.ReferenceDateUTC)
	}
}

func TestAggregateMonth(t *testing.T) {
	store := storage.NewMemoryOutcomeStorage()
	ctx := context.Background()

	first := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mustRecord(t, store, outcomeAt("m1", false, first))
	mustRecord(t, store, outcomeAt("m2", false, time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)))
	mustRecord(t, store, outcomeAt("m3", true, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))

	record, err := Aggregate(ctx, store, models.PeriodMonth, time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if record.Hits != 0 || record.Misses != 2 {
		t.Fatalf("expected 0 hits / 2 misses, got %d / %d", record.Hits, record.Misses)
	}
	if record.MissRate != 1.0 {
		t.Errorf("miss_rate = %f, want 1", record.MissRate)
	}
}

func TestAggregateEmptyPeriod(t *testing.T) {
	store := storage.NewMemoryOutcomeStorage()

	record, err := Aggregate(context.Background(), store, models.PeriodDay, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if record.Hits != 0 || record.Misses != 0 || record.HitRate != 0 || record.MissRate != 0 {
		t.Errorf("empty period must yield zero record, got %+v", record)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	store := storage.NewMemoryOutcomeStorage()
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mustRecord(t, store, outcomeAt("m1", true, day.Add(time.Hour)))

	first, err := Aggregate(ctx, store, models.PeriodDay, day)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Aggregate(ctx, store, models.PeriodDay, day)
		if err != nil {
			t.Fatalf("Aggregate failed: %v", err)
		}
		if again != first {
			t.Fatalf("aggregation not idempotent: %+v vs %+v", again, first)
		}
	}
}

func TestAggregateUnknownPeriod(t *testing.T) {
	store := storage.NewMemoryOutcomeStorage()
	if _, err := Aggregate(context.Background(), store, models.Period("YEAR"), time.Now()); err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func mustRecord(t *testing.T, store storage.OutcomeStore, o models.DecisionOutcome) {
	t.Helper()
	if err := store.RecordOutcome(context.Background(), o); err != nil {
		t.Fatalf("RecordOutcome failed: %v", err)
	}
}
