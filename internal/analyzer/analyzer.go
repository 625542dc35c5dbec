// Package analyzer turns an ingested snapshot into per-market decisions by
// applying explicit, configured thresholds to estimator output. Everything
// here is deterministic: identical (snapshot, config) yields byte-identical
// decisions.
package analyzer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Result is the analyzer output for one snapshot.
type Result struct {
	LogicVersion string
	Decisions    []models.MarketDecision
	Flags        []string
}

// Analyzer applies the decision policy over an estimator.
type Analyzer struct {
	cfg       config.AnalyzerConfig
	estimator Estimator
}

// New creates an analyzer for the configured logic version.
func New(cfg config.AnalyzerConfig) (*Analyzer, error) {
	est, err := EstimatorFor(cfg.LogicVersion)
	if err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg, estimator: est}, nil
}

// Decide evaluates the requested markets in canonical order. A per-market
// failure becomes NO_PREDICTION for that market only and never aborts the
// others.
func (a *Analyzer) Decide(snapshot *models.Snapshot, markets []models.Market) Result {
	requested := make(map[models.Market]bool, len(markets))
	for _, m := range markets {
		requested[m] = true
	}

	quality := evidenceQuality(snapshot)

	result := Result{LogicVersion: a.estimator.Version()}
	for _, market := range models.CanonicalMarketOrder {
		if !requested[market] {
			continue
		}
		result.Decisions = append(result.Decisions, a.decideMarket(snapshot, market, quality))
	}

	// Unknown requested markets are reported after the canonical set, in
	// sorted order so the output stays deterministic.
	var unknown []models.Market
	for m := range requested {
		if !models.KnownMarket(m) {
			unknown = append(unknown, m)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	for _, m := range unknown {
		result.Decisions = append(result.Decisions, models.MarketDecision{
			Market:   m,
			Decision: models.DecisionNoPrediction,
			Reasons:  []string{models.ReasonUnknownMarket},
		})
	}

	for _, d := range result.Decisions {
		if !d.Play() {
			result.Flags = append(result.Flags, fmt.Sprintf("NO_PLAY_%s", d.Market))
		}
	}
	return result
}

func (a *Analyzer) decideMarket(snapshot *models.Snapshot, market models.Market, quality float64) models.MarketDecision {
	decision := models.MarketDecision{Market: market, Decision: models.DecisionNoBet}

	probs, err := a.estimator.Distribution(snapshot, market)
	if err != nil {
		var insufficient errInsufficientData
		decision.Decision = models.DecisionNoPrediction
		if errors.As(err, &insufficient) {
			decision.Reasons = []string{models.ReasonInsufficientData}
		} else {
			decision.Reasons = []string{models.ReasonEstimatorError, err.Error()}
		}
		return decision
	}

	decision.Probabilities = probs
	top, second := topTwo(probs)
	decision.Separation = probs[top] - probs[second]

	decision.Confidence = confidence(decision.Separation, quality)
	decision.Risk = risk(decision.Confidence, a.cfg.RiskCap)

	minSep := a.minSeparation(market)
	switch {
	case decision.Separation < minSep:
		decision.Reasons = append(decision.Reasons, models.ReasonSeparationBelowThreshold)
	case decision.Confidence < a.cfg.MinConfidence:
		decision.Reasons = append(decision.Reasons, models.ReasonConfidenceBelowThreshold)
	default:
		decision.Decision = top
		decision.Reasons = append(decision.Reasons, models.ReasonTopOutcomePrefix+top)
		if market == models.Market1X2 && top == "HOME" {
			decision.Reasons = append(decision.Reasons, models.ReasonHomeAdvantagePresent)
		}
	}
	if len(snapshot.Claims) > 0 {
		decision.Reasons = append(decision.Reasons, models.ReasonClaimsPresent)
	}
	return decision
}

func (a *Analyzer) minSeparation(market models.Market) float64 {
	switch market {
	case models.MarketOU25:
		return a.cfg.MinSeparationOU
	case models.MarketGGNG:
		return a.cfg.MinSeparationGG
	default:
		return a.cfg.MinSeparation1X2
	}
}

// topTwo returns the leading and runner-up outcome labels. Ties break by
// label order so the result never depends on map iteration.
func topTwo(probs map[string]float64) (string, string) {
	labels := make([]string, 0, len(probs))
	for l := range probs {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if probs[labels[i]] != probs[labels[j]] {
			return probs[labels[i]] > probs[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) < 2 {
		return labels[0], labels[0]
	}
	return labels[0], labels[1]
}

// confidence is a bounded pure function of distribution sharpness and
// evidence quality. Documented here because it is part of the audit
// contract: conf = 0.6*min(1, 4*separation) + 0.4*quality.
func confidence(separation, quality float64) float64 {
	sharpness := separation * 4
	if sharpness > 1 {
		sharpness = 1
	}
	c := 0.6*sharpness + 0.4*quality
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// risk is the complement of confidence, capped by policy.
func risk(conf, riskCap float64) float64 {
	r := 1 - conf
	if riskCap > 0 && r > riskCap {
		r = riskCap
	}
	return r
}

// evidenceQuality scores snapshot completeness in [0, 1]: full odds
// coverage scores 1.0, each missing optional market costs 0.1, unresolved
// claims cost 0.05 each up to 0.2.
func evidenceQuality(snapshot *models.Snapshot) float64 {
	q := 1.0
	if snapshot.OddsOU25 == nil {
		q -= 0.1
	}
	if snapshot.OddsGGNG == nil {
		q -= 0.1
	}
	claimPenalty := 0.05 * float64(len(snapshot.Claims))
	if claimPenalty > 0.2 {
		claimPenalty = 0.2
	}
	q -= claimPenalty
	if q < 0 {
		q = 0
	}
	return q
}
