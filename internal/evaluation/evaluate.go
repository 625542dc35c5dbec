package evaluation

import (
	"fmt"
	"math"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// guardrailJumpThreshold is the top-probability move (absolute) between two
// runs of the same match that counts as an unexplained jump.
const guardrailJumpThreshold = 0.25

// Evaluate computes checksums and the stability verdict for one run's
// decisions. prior is the decision set of the previous run for the same
// match, or nil. Guardrail firing is observational only; it never changes
// a decision.
func Evaluate(decisions []models.MarketDecision, prior []models.MarketDecision, analyzerCfg config.AnalyzerConfig) models.EvaluationReport {
	outputHash := MustChecksum(decisions)

	// The proposal payload is the per-market pick set under the active
	// thresholds; its checksum changes exactly when the picks change.
	proposal := make(map[string]string, len(decisions))
	for _, d := range decisions {
		proposal[string(d.Market)] = d.Decision
	}

	report := models.EvaluationReport{
		Checksums: models.Checksums{
			OutputHash:       outputHash,
			ProposalChecksum: MustChecksum(proposal),
			EvaluationReportChecksum: MustChecksum(map[string]any{
				"decisions": decisions,
				"thresholds": map[string]float64{
					"min_separation_1x2": analyzerCfg.MinSeparation1X2,
					"min_separation_ou":  analyzerCfg.MinSeparationOU,
					"min_separation_gg":  analyzerCfg.MinSeparationGG,
					"min_confidence":     analyzerCfg.MinConfidence,
				},
			}),
		},
	}
	report.Stability = checkStability(decisions, prior)
	return report
}

// checkStability flags unexplained decision jumps versus the prior run.
func checkStability(current, prior []models.MarketDecision) models.Stability {
	if len(prior) == 0 {
		return models.Stability{}
	}
	priorByMarket := make(map[models.Market]models.MarketDecision, len(prior))
	for _, d := range prior {
		priorByMarket[d.Market] = d
	}

	var stability models.Stability
	for _, d := range current {
		p, ok := priorByMarket[d.Market]
		if !ok {
			continue
		}
		if d.Decision != p.Decision {
			stability.GuardrailTriggered = true
			stability.Notes = append(stability.Notes,
				fmt.Sprintf("DECISION_CHANGED %s: %s -> %s", d.Market, p.Decision, d.Decision))
		}
		if jump := topProbabilityJump(d.Probabilities, p.Probabilities); jump > guardrailJumpThreshold {
			stability.GuardrailTriggered = true
			stability.Notes = append(stability.Notes,
				fmt.Sprintf("PROBABILITY_JUMP %s: %.3f", d.Market, jump))
		}
	}
	return stability
}

func topProbabilityJump(current, prior map[string]float64) float64 {
	max := 0.0
	for label, p := range current {
		if q, ok := prior[label]; ok {
			if jump := math.Abs(p - q); jump > max {
				max = jump
			}
		}
	}
	return max
}
