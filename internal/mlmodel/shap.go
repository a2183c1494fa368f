package mlmodel

import (
	"math"
	"sort"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

var displayNames = map[string]string{
	"rating_diff":        "Overall rating edge",
	"pythagorean_diff":   "Scoring-based expectation edge",
	"momentum_diff":      "Recent form edge",
	"confidence_diff":    "Team confidence edge",
	"rivalry_multiplier": "Rivalry unpredictability",
	"composite_diff":     "Composite score edge",
	"rest_advantage":     "Rest advantage",
}

// CalculateShapValues decomposes the prediction into signed per-feature
// contributions that sum to the deviation from the 50% baseline. Linear
// attribution, not true Shapley values: each feature's share of the logit
// is scaled by the total probability shift. Sorted by magnitude descending,
// ties broken by feature declaration order.
func CalculateShapValues(features models.MLFeatures) []models.FactorAttribution {
	names := models.FeatureNames()
	vector := features.Vector()

	z := logit(features)
	shift := PredictWithConfidence(features).Probability - 0.5

	attributions := make([]models.FactorAttribution, len(names))
	for i, name := range names {
		contribution := 0.0
		if z != 0 {
			contribution = shift * (featureWeights[i] * vector[i]) / z
		}
		direction := models.DirectionPositive
		if contribution < 0 {
			direction = models.DirectionNegative
		}
		attributions[i] = models.FactorAttribution{
			Feature:     name,
			DisplayName: displayNames[name],
			Direction:   direction,
			Magnitude:   math.Abs(contribution),
		}
	}

	// SliceStable keeps declaration order for equal magnitudes.
	sort.SliceStable(attributions, func(a, b int) bool {
		return attributions[a].Magnitude > attributions[b].Magnitude
	})

	return attributions
}

// TopFactors returns the n largest attributions for an explanation.
func TopFactors(attributions []models.FactorAttribution, n int) []models.FactorAttribution {
	if len(attributions) <= n {
		return attributions
	}
	return attributions[:n]
}
