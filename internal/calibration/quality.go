package calibration

import (
	"fmt"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// ValidateSamples screens a sample window before evaluation. A sample with
// a probability outside [0,1], an unsupported sport, or a zero timestamp
// indicates a corrupt row and fails the whole window rather than silently
// skewing the scores.
func ValidateSamples(samples []models.PredictionSample) error {
	if len(samples) == 0 {
		return models.ErrEmptySample
	}
	for i, s := range samples {
		if s.PredictedProbability < 0 || s.PredictedProbability > 1 {
			return fmt.Errorf("sample %d (%s): probability %f out of range: %w",
				i, s.GameID, s.PredictedProbability, models.ErrInvalidInput)
		}
		if !s.Sport.Valid() {
			return fmt.Errorf("sample %d (%s): %w: %q", i, s.GameID, models.ErrUnknownSport, s.Sport)
		}
		if s.PredictedAt.IsZero() {
			return fmt.Errorf("sample %d (%s): missing prediction timestamp: %w",
				i, s.GameID, models.ErrInvalidInput)
		}
		if s.MarketProbability != nil {
			if mp := *s.MarketProbability; mp < 0 || mp > 1 {
				return fmt.Errorf("sample %d (%s): market probability %f out of range: %w",
					i, s.GameID, mp, models.ErrInvalidInput)
			}
		}
	}
	return nil
}
