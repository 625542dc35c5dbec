// Package pipeline orchestrates a shadow run end to end: activation gate,
// ingestion, resolution, analysis, evaluation and audit, always ending in a
// complete report. A run never mutates reference data.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// RunPolicy is the activation policy for one run, captured once from
// configuration at construction. Business logic reads only this value, never
// the environment.
type RunPolicy struct {
	KillSwitch     bool            `json:"kill_switch"`
	MaxMatches     int             `json:"max_matches"`
	Markets        []models.Market `json:"markets"`
	ValidateStrict bool            `json:"validate_strict"`
}

// PolicyFromConfig builds the run policy. The compiled ceiling on match count
// is enforced here again so no caller can raise it past HardMaxMatches; a
// configured zero stays zero and blocks every run. Unsupported configured
// markets are dropped instead of silently becoming "allowed".
func PolicyFromConfig(cfg *config.Config) RunPolicy {
	maxMatches := cfg.Activation.MaxMatches
	if maxMatches < 0 {
		maxMatches = 0
	}
	if maxMatches > config.HardMaxMatches {
		maxMatches = config.HardMaxMatches
	}

	markets := make([]models.Market, 0, len(cfg.Activation.Markets))
	seen := make(map[models.Market]bool)
	for _, m := range cfg.Activation.Markets {
		market := models.Market(m)
		if !models.KnownMarket(market) {
			continue
		}
		if !seen[market] {
			seen[market] = true
			markets = append(markets, market)
		}
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i] < markets[j] })

	return RunPolicy{
		KillSwitch:     cfg.Activation.KillSwitch,
		MaxMatches:     maxMatches,
		Markets:        markets,
		ValidateStrict: cfg.Report.ValidateStrict,
	}
}

// GateError is an activation gate rejection. The gate runs before any
// ingestion IO; a rejection means no external call was made.
type GateError struct {
	Reason string
}

func (e *GateError) Error() string {
	return "activation gate rejected run: " + e.Reason
}

// Authorize checks a proposed run against the policy. matchCount is the
// number of matches the run would process; markets the set it would analyze.
func (p RunPolicy) Authorize(matchCount int, markets []models.Market) error {
	if p.KillSwitch {
		return &GateError{Reason: "kill switch engaged"}
	}
	if matchCount > p.MaxMatches {
		return &GateError{Reason: fmt.Sprintf("%d matches exceeds limit of %d", matchCount, p.MaxMatches)}
	}
	allowed := make(map[models.Market]bool, len(p.Markets))
	for _, m := range p.Markets {
		allowed[m] = true
	}
	for _, m := range markets {
		if !allowed[m] {
			return &GateError{Reason: fmt.Sprintf("market %s not enabled", m)}
		}
	}
	return nil
}
