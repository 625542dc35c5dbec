package analyzer

import (
	"fmt"
	"math"

	"github.com/fasterangels/shadowpipe/internal/pkg/models"
)

// Estimator derives a probability distribution for one market from a
// snapshot. Implementations are versioned and must be deterministic: the
// same snapshot always yields the same distribution.
type Estimator interface {
	Version() string
	Distribution(snapshot *models.Snapshot, market models.Market) (map[string]float64, error)
}

// errInsufficientData marks a market the snapshot carries no evidence for.
// The analyzer turns it into INSUFFICIENT_DATA_FOR_MARKET instead of
// failing the run.
type errInsufficientData struct{ market models.Market }

func (e errInsufficientData) Error() string {
	return fmt.Sprintf("no evidence for market %s", e.market)
}

// oddsImpliedV1 converts decimal odds to implied probabilities by
// normalizing inverse odds (removes the bookmaker overround).
type oddsImpliedV1 struct{}

// NewOddsImpliedV1 returns the v1 odds-implied estimator.
func NewOddsImpliedV1() Estimator { return oddsImpliedV1{} }

func (oddsImpliedV1) Version() string { return "odds_implied_v1" }

func (oddsImpliedV1) Distribution(snapshot *models.Snapshot, market models.Market) (map[string]float64, error) {
	switch market {
	case models.Market1X2:
		o := snapshot.Odds1X2
		return impliedFromOdds(map[string]float64{"HOME": o.Home, "DRAW": o.Draw, "AWAY": o.Away})
	case models.MarketOU25:
		if snapshot.OddsOU25 == nil {
			return nil, errInsufficientData{market}
		}
		return impliedFromOdds(map[string]float64{"OVER": snapshot.OddsOU25.Over, "UNDER": snapshot.OddsOU25.Under})
	case models.MarketGGNG:
		if snapshot.OddsGGNG == nil {
			return nil, errInsufficientData{market}
		}
		return impliedFromOdds(map[string]float64{"GG": snapshot.OddsGGNG.GG, "NG": snapshot.OddsGGNG.NG})
	default:
		return nil, fmt.Errorf("unknown market %q", market)
	}
}

func impliedFromOdds(odds map[string]float64) (map[string]float64, error) {
	total := 0.0
	for label, o := range odds {
		if o <= 0 || math.IsInf(o, 0) || math.IsNaN(o) {
			return nil, fmt.Errorf("invalid odds %v for outcome %s", o, label)
		}
		total += 1.0 / o
	}
	if total <= 0 {
		return nil, fmt.Errorf("degenerate odds set")
	}
	probs := make(map[string]float64, len(odds))
	for label, o := range odds {
		probs[label] = (1.0 / o) / total
	}
	return probs, nil
}

// EstimatorFor returns the estimator registered under logicVersion.
func EstimatorFor(logicVersion string) (Estimator, error) {
	switch logicVersion {
	case "", "odds_implied_v1":
		return NewOddsImpliedV1(), nil
	default:
		return nil, fmt.Errorf("unknown logic version %q", logicVersion)
	}
}
