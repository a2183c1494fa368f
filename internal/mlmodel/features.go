// Package mlmodel implements feature extraction, the supervised win
// probability model, spread/total regression, and factor attribution.
package mlmodel

import (
	"math"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// ModelVersion tags every prediction produced by this model. Cache keys
// include it so a model bump invalidates stale records.
const ModelVersion = "v2.1.0"

// rivalryDampening shrinks signal reliability for rivalry games. Rivalries
// raise variance, so the multiplier attenuates rather than amplifies.
const rivalryDampening = 0.85

// ExtractFeatures derives the fixed-shape feature vector from two team
// states and a game context. It is a pure, total function: missing
// composite scores contribute a neutral zero differential, never an error.
func ExtractFeatures(home, away *models.TeamState, gameCtx models.GameContext, homeComposite, awayComposite *float64) models.MLFeatures {
	features := models.MLFeatures{
		RatingDiff:        rating(home) - rating(away),
		PythagoreanDiff:   home.PythagoreanExpectation - away.PythagoreanExpectation,
		MomentumDiff:      home.Momentum() - away.Momentum(),
		ConfidenceDiff:    home.Psych.Confidence - away.Psych.Confidence,
		RivalryMultiplier: 1.0,
	}

	if gameCtx.IsRivalry {
		features.RivalryMultiplier = rivalryDampening
	}
	if homeComposite != nil && awayComposite != nil {
		features.CompositeDiff = clampAbs(*homeComposite-*awayComposite, 1.0)
	}

	restDiff := float64(gameCtx.HomeRestDays - gameCtx.AwayRestDays)
	features.RestAdvantage = clampAbs(restDiff/7.0, 1.0)

	return features
}

// rating blends the points-based expectation with the observed record.
// Pythagorean dominates: records lie early in a season, scoring less so.
func rating(team *models.TeamState) float64 {
	return 0.65*team.PythagoreanExpectation + 0.35*team.WinRate()
}

func clampAbs(v, bound float64) float64 {
	return math.Max(-bound, math.Min(bound, v))
}
