// Package calibration scores stored predictions against real outcomes and
// flags model drift.
package calibration

import (
	"math"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// logLossEpsilon keeps predicted probabilities away from 0 and 1 so the
// log stays finite.
const logLossEpsilon = 1e-15

// BrierScore is the mean squared error between predicted probabilities and
// binary outcomes. 0 is perfect, 0.25 matches always predicting 50%.
func BrierScore(samples []models.PredictionSample) (float64, error) {
	if len(samples) == 0 {
		return 0, models.ErrEmptySample
	}
	sum := 0.0
	for _, s := range samples {
		sum += squaredError(s.PredictedProbability, s.HomeWon)
	}
	return sum / float64(len(samples)), nil
}

// LogLoss is the mean negative log likelihood of the observed outcomes.
// Probabilities are clipped to avoid infinities on confident misses.
func LogLoss(samples []models.PredictionSample) (float64, error) {
	if len(samples) == 0 {
		return 0, models.ErrEmptySample
	}
	sum := 0.0
	for _, s := range samples {
		p := math.Max(logLossEpsilon, math.Min(1-logLossEpsilon, s.PredictedProbability))
		if s.HomeWon {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(len(samples)), nil
}

// AccuracyAt50 is the fraction of samples where thresholding the
// probability at 50% picked the right side.
func AccuracyAt50(samples []models.PredictionSample) (float64, error) {
	if len(samples) == 0 {
		return 0, models.ErrEmptySample
	}
	correct := 0
	for _, s := range samples {
		if predictedCorrectly(s) {
			correct++
		}
	}
	return float64(correct) / float64(len(samples)), nil
}

func predictedCorrectly(s models.PredictionSample) bool {
	return (s.PredictedProbability >= 0.5) == s.HomeWon
}

func squaredError(p float64, homeWon bool) float64 {
	outcome := 0.0
	if homeWon {
		outcome = 1.0
	}
	diff := p - outcome
	return diff * diff
}
