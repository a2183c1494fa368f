package engine

import "github.com/blazesportsintel/prediction-engine/internal/models"

// RedactForTier returns a tier-appropriate copy of a prediction. Free
// tier consumers lose the factor attribution breakdown. The input is
// never mutated: cached records are shared across callers.
func RedactForTier(prediction *models.GamePrediction, tier models.SubscriptionTier) *models.GamePrediction {
	redacted := *prediction
	if tier != models.TierPro {
		redacted.ShapSummary = nil
		redacted.RequiresSubscription = true
	}
	return &redacted
}
