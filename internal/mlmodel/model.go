package mlmodel

import (
	"math"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// featureWeights are the fitted logistic coefficients, indexed in feature
// declaration order. The fitting process is replaceable; the contract is
// that rating differential carries the largest positive weight so the
// probability stays monotone in home advantage.
var featureWeights = []float64{
	3.2,  // rating_diff
	1.8,  // pythagorean_diff
	0.6,  // momentum_diff
	0.9,  // confidence_diff
	0.0,  // rivalry_multiplier (scales attribution, not the logit)
	1.1,  // composite_diff
	0.4,  // rest_advantage
}

// ConfidenceLabel grades how far the model's probability sits from a coin
// flip.
type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "low"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceHigh   ConfidenceLabel = "high"
)

// ModelPrediction is the probability model's output for one feature vector.
type ModelPrediction struct {
	Probability float64         `json:"probability"`
	Confidence  float64         `json:"confidence"`
	Label       ConfidenceLabel `json:"label"`
}

// PredictWithConfidence maps a feature vector to a home win probability in
// (0,1) with a confidence label. The mapping is a logistic curve: monotone
// in rating differential, saturating smoothly at the extremes.
func PredictWithConfidence(features models.MLFeatures) ModelPrediction {
	z := logit(features)
	p := sigmoid(z)

	// Rivalry games are less predictable; pull the estimate toward 0.5
	// in proportion to the dampening multiplier.
	if features.RivalryMultiplier < 1.0 {
		p = 0.5 + (p-0.5)*features.RivalryMultiplier
	}

	// Keep strictly inside (0,1).
	p = math.Max(1e-6, math.Min(1-1e-6, p))

	confidence := 2 * math.Abs(p-0.5)
	return ModelPrediction{
		Probability: p,
		Confidence:  confidence,
		Label:       labelFor(confidence),
	}
}

// PredictSpread maps a win probability to a point spread using the sport's
// scoring scale. Positive spreads favor the home team.
func PredictSpread(probability float64, sport models.Sport) float64 {
	scale := sport.Params().SpreadScale
	return (probability - 0.5) * 2 * scale
}

// PredictTotal estimates combined scoring from both teams' offensive and
// defensive tendencies. Teams without a scoring record contribute the
// sport's typical half-total; playoff games run slightly lower scoring.
func PredictTotal(home, away *models.TeamState, gameCtx models.GameContext) float64 {
	params := gameCtx.Sport.Params()
	half := params.TypicalTotal / 2

	homeScoring := blendedScoring(home, away, half)
	awayScoring := blendedScoring(away, home, half)

	total := homeScoring + awayScoring
	if gameCtx.IsPlayoff {
		total *= 0.97
	}
	return total
}

// blendedScoring crosses a team's offense with its opponent's defense.
func blendedScoring(offense, defense *models.TeamState, fallback float64) float64 {
	scored := perGame(offense.PointsFor, offense.GamesPlayed(), fallback)
	allowed := perGame(defense.PointsAgainst, defense.GamesPlayed(), fallback)
	return (scored + allowed) / 2
}

// perGame guards the zero-games and zero-points cases with the fallback
// rather than letting a division by zero poison the total.
func perGame(points float64, games int, fallback float64) float64 {
	if games == 0 || points == 0 {
		return fallback
	}
	return points / float64(games)
}

func logit(features models.MLFeatures) float64 {
	vector := features.Vector()
	z := 0.0
	for i, w := range featureWeights {
		z += w * vector[i]
	}
	return z
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func labelFor(confidence float64) ConfidenceLabel {
	switch {
	case confidence >= 0.40:
		return ConfidenceHigh
	case confidence >= 0.15:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
