package evaluation

import (
	"time"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Settle compares play decisions against a final score and produces the
// realized outcomes KPI aggregation feeds on. NO_BET and NO_PREDICTION
// decisions settle to nothing.
func Settle(matchID string, decisions []models.MarketDecision, homeGoals, awayGoals int, evaluatedAt time.Time) []models.DecisionOutcome {
	var outcomes []models.DecisionOutcome
	for _, d := range decisions {
		if !d.Play() {
			continue
		}
		winner, ok := winningLabel(d.Market, homeGoals, awayGoals)
		if !ok {
			continue
		}
		outcomes = append(outcomes, models.DecisionOutcome{
			MatchID:        matchID,
			Market:         d.Market,
			Pick:           d.Decision,
			Hit:            d.Decision == winner,
			EvaluatedAtUTC: evaluatedAt.UTC(),
		})
	}
	return outcomes
}

// winningLabel maps a final score to the winning outcome label per market.
func winningLabel(market models.Market, homeGoals, awayGoals int) (string, bool) {
	switch market {
	case models.Market1X2:
		switch {
		case homeGoals > awayGoals:
			return "HOME", true
		case homeGoals < awayGoals:
			return "AWAY", true
		default:
			return "DRAW", true
		}
	case models.MarketOU25:
		if homeGoals+awayGoals >= 3 {
			return "OVER", true
		}
		return "UNDER", true
	case models.MarketGGNG:
		if homeGoals > 0 && awayGoals > 0 {
			return "GG", true
		}
		return "NG", true
	default:
		return "", false
	}
}
