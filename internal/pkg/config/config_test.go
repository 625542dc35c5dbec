package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Analyzer.MinSeparation1X2 != 0.10 {
		t.Errorf("min_separation_1x2 = %f", cfg.Analyzer.MinSeparation1X2)
	}
	if cfg.Analyzer.MinSeparationOU != 0.08 || cfg.Analyzer.MinSeparationGG != 0.08 {
		t.Errorf("ou/gg separation defaults wrong: %f / %f", cfg.Analyzer.MinSeparationOU, cfg.Analyzer.MinSeparationGG)
	}
	if cfg.Analyzer.MinConfidence != 0.62 {
		t.Errorf("min_confidence = %f", cfg.Analyzer.MinConfidence)
	}
	if cfg.Analyzer.RiskCap != 0.35 {
		t.Errorf("risk_cap = %f", cfg.Analyzer.RiskCap)
	}
	if cfg.Analyzer.LogicVersion != "odds_implied_v1" {
		t.Errorf("logic_version = %s", cfg.Analyzer.LogicVersion)
	}
	if len(cfg.Activation.Markets) != 1 || cfg.Activation.Markets[0] != "1X2" {
		t.Errorf("default markets = %v, want [1X2]", cfg.Activation.Markets)
	}
	if cfg.LiveIO.LiveIOAllowed || cfg.LiveIO.RealProviderLive {
		t.Error("live IO must default to off")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
activation:
  max_matches: 5
  markets:
    - "1X2"
    - "OU25"
  kill_switch: true
analyzer:
  min_confidence: 0.7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Activation.MaxMatches != 5 {
		t.Errorf("max_matches = %d", cfg.Activation.MaxMatches)
	}
	if !cfg.Activation.KillSwitch {
		t.Error("kill_switch should be true")
	}
	if len(cfg.Activation.Markets) != 2 {
		t.Errorf("markets = %v", cfg.Activation.Markets)
	}
	if cfg.Analyzer.MinConfidence != 0.7 {
		t.Errorf("min_confidence = %f", cfg.Analyzer.MinConfidence)
	}
	// Unset fields still get defaults.
	if cfg.Analyzer.MinSeparation1X2 != 0.10 {
		t.Errorf("min_separation_1x2 = %f", cfg.Analyzer.MinSeparation1X2)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMaxMatchesCeiling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("activation:\n  max_matches: 9999\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Activation.MaxMatches != HardMaxMatches {
		t.Errorf("max_matches = %d, want clamped to %d", cfg.Activation.MaxMatches, HardMaxMatches)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ACTIVATION_MAX_MATCHES", "7")
	t.Setenv("ACTIVATION_KILL_SWITCH", "true")
	t.Setenv("ACTIVATION_MARKETS", "1X2, OU25")
	t.Setenv("LIVE_IO_ALLOWED", "1")

	cfg := Default()
	if cfg.Activation.MaxMatches != 7 {
		t.Errorf("max_matches = %d", cfg.Activation.MaxMatches)
	}
	if !cfg.Activation.KillSwitch {
		t.Error("kill_switch should come from env")
	}
	if len(cfg.Activation.Markets) != 2 || cfg.Activation.Markets[1] != "OU25" {
		t.Errorf("markets = %v", cfg.Activation.Markets)
	}
	if !cfg.LiveIO.LiveIOAllowed {
		t.Error("live_io_allowed should come from env")
	}
}

func TestEnvCannotRaiseCeiling(t *testing.T) {
	t.Setenv("ACTIVATION_MAX_MATCHES", "1000")

	cfg := Default()
	if cfg.Activation.MaxMatches != HardMaxMatches {
		t.Errorf("max_matches = %d, env must not beat the compiled ceiling %d", cfg.Activation.MaxMatches, HardMaxMatches)
	}
}
