package mlmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

func TestShapValuesSumToDeviation(t *testing.T) {
	features := models.MLFeatures{
		RatingDiff:        0.25,
		PythagoreanDiff:   0.30,
		MomentumDiff:      -0.10,
		ConfidenceDiff:    0.05,
		RivalryMultiplier: 1.0,
	}
	prediction := PredictWithConfidence(features)
	attributions := CalculateShapValues(features)

	signedSum := 0.0
	for _, a := range attributions {
		if a.Direction == models.DirectionPositive {
			signedSum += a.Magnitude
		} else {
			signedSum -= a.Magnitude
		}
	}
	assert.InDelta(t, prediction.Probability-0.5, signedSum, 1e-9)
}

func TestShapValuesSortedByMagnitude(t *testing.T) {
	features := models.MLFeatures{
		RatingDiff:        0.30,
		PythagoreanDiff:   0.05,
		MomentumDiff:      -0.20,
		RivalryMultiplier: 1.0,
	}
	attributions := CalculateShapValues(features)
	require.Len(t, attributions, len(models.FeatureNames()))
	for i := 1; i < len(attributions); i++ {
		assert.GreaterOrEqual(t, attributions[i-1].Magnitude, attributions[i].Magnitude)
	}
}

func TestShapTopFactorForDominantHome(t *testing.T) {
	home := testTeam("MEM", 0.70, 0.7)
	away := testTeam("DAL", 0.40, 0.4)
	features := ExtractFeatures(home, away, models.GameContext{Sport: models.SportBasketball}, nil, nil)

	attributions := CalculateShapValues(features)
	top := TopFactors(attributions, 5)
	require.NotEmpty(t, top)
	assert.Equal(t, models.DirectionPositive, top[0].Direction)
}

func TestShapNeutralFeaturesAllZero(t *testing.T) {
	attributions := CalculateShapValues(models.MLFeatures{RivalryMultiplier: 1.0})
	for _, a := range attributions {
		assert.Equal(t, 0.0, a.Magnitude)
	}
	// Zero magnitudes keep declaration order.
	assert.Equal(t, models.FeatureNames()[0], attributions[0].Feature)
}
