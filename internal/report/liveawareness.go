package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// LiveAwareness summarizes how fresh live observations are relative to the
// recorded baseline. Purely observational; nothing reads it back.
type LiveAwareness struct {
	GeneratedAt               time.Time  `json:"generated_at"`
	HasLiveShadow             bool       `json:"has_live_shadow"`
	LatestLiveObservedAtUTC   *time.Time `json:"latest_live_observed_at_utc"`
	LatestRecordedObservedUTC *time.Time `json:"latest_recorded_observed_at_utc"`
	ObservedGapMS             *int64     `json:"observed_gap_ms"`
}

// BuildLiveAwareness derives the live-awareness summary from the snapshots a
// run actually ingested.
func BuildLiveAwareness(snapshots []*models.Snapshot) LiveAwareness {
	aw := LiveAwareness{GeneratedAt: time.Now().UTC()}
	for _, s := range snapshots {
		if s == nil {
			continue
		}
		observed := s.ObservedAtUTC.UTC()
		if s.Live {
			aw.HasLiveShadow = true
			if aw.LatestLiveObservedAtUTC == nil || observed.After(*aw.LatestLiveObservedAtUTC) {
				t := observed
				aw.LatestLiveObservedAtUTC = &t
			}
		} else {
			if aw.LatestRecordedObservedUTC == nil || observed.After(*aw.LatestRecordedObservedUTC) {
				t := observed
				aw.LatestRecordedObservedUTC = &t
			}
		}
	}
	if aw.LatestLiveObservedAtUTC != nil && aw.LatestRecordedObservedUTC != nil {
		gap := aw.LatestLiveObservedAtUTC.Sub(*aw.LatestRecordedObservedUTC).Milliseconds()
		aw.ObservedGapMS = &gap
	}
	return aw
}

// WriteLiveAwareness writes live_awareness.json and a short markdown twin
// into dir, creating dir if needed.
func WriteLiveAwareness(dir string, aw LiveAwareness) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}

	data, err := json.MarshalIndent(aw, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal live awareness: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "live_awareness.json"), data, 0o644); err != nil {
		return fmt.Errorf("write live_awareness.json: %w", err)
	}

	md := renderLiveAwarenessMD(aw)
	if err := os.WriteFile(filepath.Join(dir, "live_awareness.md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("write live_awareness.md: %w", err)
	}
	return nil
}

func renderLiveAwarenessMD(aw LiveAwareness) string {
	fmtTime := func(t *time.Time) string {
		if t == nil {
			return "n/a"
		}
		return t.Format(time.RFC3339)
	}
	gap := "n/a"
	if aw.ObservedGapMS != nil {
		gap = fmt.Sprintf("%d ms", *aw.ObservedGapMS)
	}
	return fmt.Sprintf(`# Live awareness

- generated_at: %s
- has_live_shadow: %t
- latest_live_observed_at_utc: %s
- latest_recorded_observed_at_utc: %s
- observed_gap: %s
`,
		aw.GeneratedAt.Format(time.RFC3339),
		aw.HasLiveShadow,
		fmtTime(aw.LatestLiveObservedAtUTC),
		fmtTime(aw.LatestRecordedObservedUTC),
		gap,
	)
}
