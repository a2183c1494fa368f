package models

import "time"

// PredictionSample pairs a stored predicted probability with the game's
// real outcome. This is the only shape the calibration engine shares with
// the orchestrator.
type PredictionSample struct {
	GameID               string    `db:"game_id" json:"game_id"`
	Sport                Sport     `db:"sport" json:"sport"`
	PredictedProbability float64   `db:"predicted_probability" json:"predicted_probability" validate:"gte=0,lte=1"`
	Confidence           float64   `db:"confidence" json:"confidence"`
	RatingDiff           float64   `db:"rating_diff" json:"rating_diff"`
	MarketProbability    *float64  `db:"market_probability" json:"market_probability,omitempty"`
	HomeWon              bool      `db:"home_won" json:"home_won"`
	PredictedAt          time.Time `db:"predicted_at" json:"predicted_at"`
}

// CalibrationBucket compares predicted confidence against observed win
// frequency inside one equal-width probability range.
type CalibrationBucket struct {
	RangeLow         float64 `json:"range_low"`
	RangeHigh        float64 `json:"range_high"`
	PredictedCount   int     `json:"predicted_count"`
	ActualWinRate    float64 `json:"actual_win_rate"`
	ExpectedWinRate  float64 `json:"expected_win_rate"`
	CalibrationError float64 `json:"calibration_error"`
}

// BenchmarkDeltas reports Brier improvement over reference predictors.
// Positive values mean the model beat the benchmark.
type BenchmarkDeltas struct {
	VsNaive       float64 `json:"vs_naive"`
	VsRatingOnly  float64 `json:"vs_rating_only"`
	VsMarket      float64 `json:"vs_market"`
	MarketSamples int     `json:"market_samples"`
}

// CalibrationResult aggregates scoring, bucketed reliability, and
// benchmark comparisons for one evaluation run. Always recomputed from a
// sample, never incrementally mutated.
type CalibrationResult struct {
	SampleSize       int                 `json:"sample_size"`
	BrierScore       float64             `json:"brier_score"`
	LogLoss          float64             `json:"log_loss"`
	AccuracyAt50     float64             `json:"accuracy_at_50"`
	CalibrationError float64             `json:"calibration_error"`
	Buckets          []CalibrationBucket `json:"buckets"`
	Benchmarks       BenchmarkDeltas     `json:"benchmarks"`
	ReliabilityIndex float64             `json:"reliability_index"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// DriftSeverity grades how badly recent calibration departs from baseline.
type DriftSeverity string

const (
	DriftSeverityInfo     DriftSeverity = "INFO"
	DriftSeverityWarning  DriftSeverity = "WARNING"
	DriftSeverityCritical DriftSeverity = "CRITICAL"
)

// DriftReport flags degradation of recent Brier score against a
// historical baseline.
type DriftReport struct {
	RecentBrier    float64       `json:"recent_brier"`
	BaselineBrier  float64       `json:"baseline_brier"`
	RelativeChange float64       `json:"relative_change"`
	Drifting       bool          `json:"drifting"`
	Severity       DriftSeverity `json:"severity"`
	Recommendation string        `json:"recommendation"`
	SampleSize     int           `json:"sample_size"`
	EvaluatedAt    time.Time     `json:"evaluated_at"`
}

// BacktestHighlight is one prediction surfaced for qualitative review.
type BacktestHighlight struct {
	GameID               string  `json:"game_id"`
	PredictedProbability float64 `json:"predicted_probability"`
	Confidence           float64 `json:"confidence"`
	HomeWon              bool    `json:"home_won"`
	Correct              bool    `json:"correct"`
}

// BacktestReport replays a historical window end to end.
type BacktestReport struct {
	Window      string              `json:"window"`
	Result      CalibrationResult   `json:"result"`
	Best        []BacktestHighlight `json:"best"`
	Worst       []BacktestHighlight `json:"worst"`
	GeneratedAt time.Time           `json:"generated_at"`
}
