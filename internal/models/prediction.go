package models

import (
	"time"

	"github.com/google/uuid"
)

// MinProbability and MaxProbability bound every blended win probability.
const (
	MinProbability = 0.03
	MaxProbability = 0.97
)

// SubscriptionTier controls how much prediction detail a consumer sees.
type SubscriptionTier string

const (
	TierFree SubscriptionTier = "free"
	TierPro  SubscriptionTier = "pro"
)

// MLFeatures is the fixed-shape numeric vector fed to the probability model.
// It is a pure function of two team states and a game context and is never
// mutated after extraction.
type MLFeatures struct {
	RatingDiff        float64 `json:"rating_diff"`
	PythagoreanDiff   float64 `json:"pythagorean_diff"`
	MomentumDiff      float64 `json:"momentum_diff"`
	ConfidenceDiff    float64 `json:"confidence_diff"`
	RivalryMultiplier float64 `json:"rivalry_multiplier"`
	CompositeDiff     float64 `json:"composite_diff"`
	RestAdvantage     float64 `json:"rest_advantage"`
}

// FeatureNames lists feature identifiers in declaration order. Attribution
// tie-breaks rely on this ordering being stable.
func FeatureNames() []string {
	return []string{
		"rating_diff",
		"pythagorean_diff",
		"momentum_diff",
		"confidence_diff",
		"rivalry_multiplier",
		"composite_diff",
		"rest_advantage",
	}
}

// Vector returns the features in declaration order.
func (f MLFeatures) Vector() []float64 {
	return []float64{
		f.RatingDiff,
		f.PythagoreanDiff,
		f.MomentumDiff,
		f.ConfidenceDiff,
		f.RivalryMultiplier,
		f.CompositeDiff,
		f.RestAdvantage,
	}
}

// AttributionDirection marks whether a factor pushed the prediction toward
// the home team (positive) or away team (negative).
type AttributionDirection string

const (
	DirectionPositive AttributionDirection = "positive"
	DirectionNegative AttributionDirection = "negative"
)

// FactorAttribution is one signed per-feature contribution to the
// prediction's deviation from the 50% baseline.
type FactorAttribution struct {
	Feature     string               `json:"feature"`
	DisplayName string               `json:"display_name"`
	Direction   AttributionDirection `json:"direction"`
	Magnitude   float64              `json:"magnitude"`
}

// ConfidenceInterval is a symmetric interval around a win probability.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// TeamSnapshot freezes the team inputs that produced a prediction.
type TeamSnapshot struct {
	TeamID                 string     `json:"team_id"`
	Record                 string     `json:"record"`
	Psych                  PsychState `json:"psych"`
	PythagoreanExpectation float64    `json:"pythagorean_expectation"`
	CompositeScore         *float64   `json:"composite_score,omitempty"`
}

// GamePrediction is the immutable output record of one predictGame call.
// A cache hit returns the same record, optionally redacted by tier.
type GamePrediction struct {
	ID                   uuid.UUID           `db:"id" json:"id"`
	GameID               string              `db:"game_id" json:"game_id" validate:"required"`
	Sport                Sport               `db:"sport" json:"sport" validate:"required"`
	PredictedAt          time.Time           `db:"predicted_at" json:"predicted_at"`
	Home                 TeamSnapshot        `db:"home" json:"home"`
	Away                 TeamSnapshot        `db:"away" json:"away"`
	HomeWinProbability   float64             `db:"home_win_probability" json:"home_win_probability" validate:"gte=0.03,lte=0.97"`
	AwayWinProbability   float64             `db:"away_win_probability" json:"away_win_probability" validate:"gte=0.03,lte=0.97"`
	Interval             ConfidenceInterval  `db:"interval" json:"confidence_interval"`
	PredictedSpread      float64             `db:"predicted_spread" json:"predicted_spread"`
	SpreadConfidence     float64             `db:"spread_confidence" json:"spread_confidence"`
	PredictedTotal       float64             `db:"predicted_total" json:"predicted_total"`
	Explanation          string              `db:"explanation" json:"explanation"`
	ShapSummary          []FactorAttribution `db:"shap_summary" json:"shap_summary,omitempty"`
	ModelVersion         string              `db:"model_version" json:"model_version"`
	SimulationCount      int                 `db:"simulation_count" json:"simulation_count"`
	ComputeTimeMS        int64               `db:"compute_time_ms" json:"compute_time_ms"`
	RequiresSubscription bool                `db:"-" json:"requires_subscription"`

	// Stored for later calibration joins, not part of the consumer payload.
	RatingDiff        float64  `db:"rating_diff" json:"-"`
	MarketProbability *float64 `db:"market_probability" json:"-"`
}

// Favored returns the team id the prediction leans toward.
func (p *GamePrediction) Favored() string {
	if p.HomeWinProbability >= 0.5 {
		return p.Home.TeamID
	}
	return p.Away.TeamID
}
