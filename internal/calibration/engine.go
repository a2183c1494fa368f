package calibration

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// ratingOnlyCoefficient mirrors the probability model's rating weight so
// the rating-only benchmark is a fair ablation, not a strawman.
const ratingOnlyCoefficient = 3.2

// adequateSampleSize is the sample count at which the reliability index
// grants full sample-size credit. Twice the configured evaluation floor.
const adequateSampleSize = 100

// Engine computes calibration reports over stored prediction samples.
type Engine struct {
	log *logrus.Entry
	now func() time.Time
}

// NewEngine creates a calibration engine. A nil clock defaults to
// time.Now.
func NewEngine(log *logrus.Logger, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		log: log.WithField("component", "calibration"),
		now: now,
	}
}

// Evaluate produces the full calibration result for a sample: proper
// scores, the ten-bucket reliability curve, benchmark deltas, and the
// composite reliability index.
func (e *Engine) Evaluate(samples []models.PredictionSample) (models.CalibrationResult, error) {
	brier, err := BrierScore(samples)
	if err != nil {
		return models.CalibrationResult{}, err
	}
	logLoss, err := LogLoss(samples)
	if err != nil {
		return models.CalibrationResult{}, err
	}
	accuracy, err := AccuracyAt50(samples)
	if err != nil {
		return models.CalibrationResult{}, err
	}

	buckets := BuildBuckets(samples)
	calibrationError := OverallCalibrationError(buckets)

	result := models.CalibrationResult{
		SampleSize:       len(samples),
		BrierScore:       brier,
		LogLoss:          logLoss,
		AccuracyAt50:     accuracy,
		CalibrationError: calibrationError,
		Buckets:          buckets,
		Benchmarks:       e.benchmarks(samples, brier),
		ReliabilityIndex: ReliabilityIndex(brier, len(samples), calibrationError),
		GeneratedAt:      e.now(),
	}

	e.log.WithFields(logrus.Fields{
		"sample_size":       result.SampleSize,
		"brier_score":       result.BrierScore,
		"accuracy_at_50":    result.AccuracyAt50,
		"reliability_index": result.ReliabilityIndex,
	}).Info("calibration evaluation complete")

	return result, nil
}

// benchmarks compares the model's Brier score against three reference
// predictors. The market delta only covers samples with a stored market
// probability; MarketSamples says how many that was.
func (e *Engine) benchmarks(samples []models.PredictionSample, modelBrier float64) models.BenchmarkDeltas {
	naiveSum := 0.0
	ratingSum := 0.0
	marketSum := 0.0
	marketModelSum := 0.0
	marketN := 0

	for _, s := range samples {
		naiveSum += squaredError(0.5, s.HomeWon)
		ratingSum += squaredError(ratingOnlyProbability(s.RatingDiff), s.HomeWon)
		if s.MarketProbability != nil {
			marketSum += squaredError(*s.MarketProbability, s.HomeWon)
			marketModelSum += squaredError(s.PredictedProbability, s.HomeWon)
			marketN++
		}
	}

	n := float64(len(samples))
	deltas := models.BenchmarkDeltas{
		VsNaive:       naiveSum/n - modelBrier,
		VsRatingOnly:  ratingSum/n - modelBrier,
		MarketSamples: marketN,
	}
	if marketN > 0 {
		deltas.VsMarket = (marketSum - marketModelSum) / float64(marketN)
	}
	return deltas
}

// ReliabilityIndex collapses Brier score, sample adequacy, and calibration
// error into one [0,1] health score. The Brier component carries half the
// weight; it is normalized against 0.25, the score of a coin-flip
// predictor, so anything worse than a coin flip earns nothing there.
func ReliabilityIndex(brier float64, sampleSize int, calibrationError float64) float64 {
	brierComponent := clamp01(1 - brier/0.25)
	adequacy := math.Min(1, float64(sampleSize)/adequateSampleSize)
	calibrationComponent := clamp01(1 - calibrationError/0.10)
	return 0.5*brierComponent + 0.2*adequacy + 0.3*calibrationComponent
}

func ratingOnlyProbability(ratingDiff float64) float64 {
	return 1.0 / (1.0 + math.Exp(-ratingOnlyCoefficient*ratingDiff))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
