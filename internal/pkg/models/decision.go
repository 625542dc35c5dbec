package models

// Market is one of the supported betting markets.
type Market string

const (
	Market1X2  Market = "1X2"
	MarketOU25 Market = "OU25"
	MarketGGNG Market = "GGNG"
)

// CanonicalMarketOrder is the fixed evaluation and report order for markets.
// Decision output order is part of the determinism contract.
var CanonicalMarketOrder = []Market{Market1X2, MarketOU25, MarketGGNG}

// KnownMarket reports whether m is one of the supported markets.
func KnownMarket(m Market) bool {
	for _, k := range CanonicalMarketOrder {
		if k == m {
			return true
		}
	}
	return false
}

// Decision outcomes. A play decision carries the leading outcome label
// (HOME, DRAW, AWAY, OVER, UNDER, GG, NG) instead of one of these.
const (
	DecisionNoBet        = "NO_BET"
	DecisionNoPrediction = "NO_PREDICTION"
)

// Reason codes emitted with market decisions.
const (
	ReasonSeparationBelowThreshold = "SEPARATION_BELOW_THRESHOLD"
	ReasonConfidenceBelowThreshold = "CONFIDENCE_BELOW_THRESHOLD"
	ReasonInsufficientData         = "INSUFFICIENT_DATA_FOR_MARKET"
	ReasonUnknownMarket            = "UNKNOWN_MARKET"
	ReasonEstimatorError           = "ESTIMATOR_ERROR"
	ReasonTopOutcomePrefix         = "TOP_OUTCOME_"
	ReasonHomeAdvantagePresent     = "HOME_ADVANTAGE_PRESENT"
	ReasonClaimsPresent            = "CLAIMS_PRESENT"
)

// MarketDecision is the analyzer output for a single market.
// Probabilities sum to 1 within epsilon; Decision is a pure function of
// (probabilities, separation, confidence, thresholds).
type MarketDecision struct {
	Market        Market             `json:"market"`
	Probabilities map[string]float64 `json:"probabilities"`
	Separation    float64            `json:"separation"`
	Confidence    float64            `json:"confidence"`
	Risk          float64            `json:"risk"`
	Decision      string             `json:"decision"`
	Reasons       []string           `json:"reasons"`
}

// Play reports whether the decision is an actual play (not NO_BET/NO_PREDICTION).
func (d MarketDecision) Play() bool {
	return d.Decision != DecisionNoBet && d.Decision != DecisionNoPrediction && d.Decision != ""
}
