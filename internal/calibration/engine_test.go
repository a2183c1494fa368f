package calibration

import (
	"fmt"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

func testEngine() *Engine {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	fixed := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	return NewEngine(log, func() time.Time { return fixed })
}

func sample(gameID string, p float64, homeWon bool) models.PredictionSample {
	return models.PredictionSample{
		GameID:               gameID,
		Sport:                models.SportBasketball,
		PredictedProbability: p,
		Confidence:           2 * math.Abs(p-0.5),
		RatingDiff:           p - 0.5,
		HomeWon:              homeWon,
		PredictedAt:          time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBrierScorePerfectPredictions(t *testing.T) {
	samples := []models.PredictionSample{
		sample("g1", 1.0, true),
		sample("g2", 0.0, false),
		sample("g3", 1.0, true),
	}
	brier, err := BrierScore(samples)
	require.NoError(t, err)
	assert.Equal(t, 0.0, brier)

	accuracy, err := AccuracyAt50(samples)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
}

func TestBrierScoreCoinFlip(t *testing.T) {
	samples := []models.PredictionSample{
		sample("g1", 0.5, true),
		sample("g2", 0.5, false),
	}
	brier, err := BrierScore(samples)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, brier, 1e-12)
}

func TestLogLossFiniteOnConfidentMiss(t *testing.T) {
	samples := []models.PredictionSample{sample("g1", 1.0, false)}
	loss, err := LogLoss(samples)
	require.NoError(t, err)
	assert.False(t, math.IsInf(loss, 1))
	assert.Greater(t, loss, 10.0)
}

func TestEmptySampleRejected(t *testing.T) {
	_, err := BrierScore(nil)
	assert.ErrorIs(t, err, models.ErrEmptySample)
	_, err = testEngine().Evaluate(nil)
	assert.ErrorIs(t, err, models.ErrEmptySample)
}

func TestBucketsPartitionSample(t *testing.T) {
	var samples []models.PredictionSample
	probs := []float64{0.05, 0.15, 0.15, 0.55, 0.72, 0.95, 1.0}
	for i, p := range probs {
		samples = append(samples, sample(string(rune('a'+i)), p, p >= 0.5))
	}

	buckets := BuildBuckets(samples)
	require.Len(t, buckets, 10)

	total := 0
	for i, b := range buckets {
		total += b.PredictedCount
		assert.InDelta(t, float64(i)/10, b.RangeLow, 1e-12)
		assert.InDelta(t, float64(i+1)/10, b.RangeHigh, 1e-12)
	}
	assert.Equal(t, len(samples), total)

	// Probability 1.0 lands in the top bucket, not an eleventh.
	assert.Equal(t, 2, buckets[9].PredictedCount)
}

func TestBucketExpectedRateIsMidpoint(t *testing.T) {
	// Samples piled at the bottom edge of a bucket still compare against
	// its midpoint, not their own mean.
	var samples []models.PredictionSample
	for i := 0; i < 4; i++ {
		samples = append(samples, sample(string(rune('a'+i)), 0.81, i < 3))
	}
	buckets := BuildBuckets(samples)
	assert.InDelta(t, 0.85, buckets[8].ExpectedWinRate, 1e-12)
	assert.InDelta(t, 0.75, buckets[8].ActualWinRate, 1e-12)
	assert.InDelta(t, 0.10, buckets[8].CalibrationError, 1e-12)
}

func TestPerfectlyCalibatedBucketsHaveNoError(t *testing.T) {
	// 10 samples at 0.75, exactly 7.5 would be ideal; use 0.8 with 8 wins.
	var samples []models.PredictionSample
	for i := 0; i < 10; i++ {
		samples = append(samples, sample(string(rune('a'+i)), 0.85, i < 8))
	}
	buckets := BuildBuckets(samples)
	assert.InDelta(t, 0.05, OverallCalibrationError(buckets), 1e-9)
}

func TestEvaluateBenchmarksBeatNaiveWhenSkilled(t *testing.T) {
	var samples []models.PredictionSample
	for i := 0; i < 20; i++ {
		samples = append(samples, sample(string(rune('a'+i)), 0.9, true))
	}
	result, err := testEngine().Evaluate(samples)
	require.NoError(t, err)
	assert.Greater(t, result.Benchmarks.VsNaive, 0.0)
	assert.Equal(t, 0, result.Benchmarks.MarketSamples)
	assert.Equal(t, 0.0, result.Benchmarks.VsMarket)
	assert.GreaterOrEqual(t, result.ReliabilityIndex, 0.0)
	assert.LessOrEqual(t, result.ReliabilityIndex, 1.0)
}

func TestEvaluateMarketDeltaUsesOnlyPricedSamples(t *testing.T) {
	market := 0.6
	priced := sample("g1", 0.9, true)
	priced.MarketProbability = &market
	samples := []models.PredictionSample{priced, sample("g2", 0.8, true)}

	result, err := testEngine().Evaluate(samples)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Benchmarks.MarketSamples)
	// Model at 0.9 beats market at 0.6 on a home win.
	assert.Greater(t, result.Benchmarks.VsMarket, 0.0)
}

func TestReliabilityIndexWeighting(t *testing.T) {
	// Perfect scores with an adequate sample earn the full index.
	assert.InDelta(t, 1.0, ReliabilityIndex(0, adequateSampleSize, 0), 1e-12)

	// A coin-flip Brier of 0.25 zeroes the half-weight component, capping
	// the index at the 0.2 adequacy + 0.3 calibration remainder.
	assert.InDelta(t, 0.5, ReliabilityIndex(0.25, adequateSampleSize, 0), 1e-12)

	// Sample adequacy is linear up to the full-credit count.
	assert.InDelta(t, 0.1, ReliabilityIndex(0, adequateSampleSize/2, 0)-ReliabilityIndex(0, 0, 0), 1e-12)

	// Calibration error normalizes against 0.10.
	assert.InDelta(t, 0.85, ReliabilityIndex(0, adequateSampleSize, 0.05), 1e-12)
}

func TestEvaluateIndexRewardsLargerWindows(t *testing.T) {
	small := make([]models.PredictionSample, 0, 10)
	large := make([]models.PredictionSample, 0, 200)
	for i := 0; i < 200; i++ {
		s := sample(fmt.Sprintf("g%d", i), 0.8, i%5 != 0)
		if i < 10 {
			small = append(small, s)
		}
		large = append(large, s)
	}

	smallResult, err := testEngine().Evaluate(small)
	require.NoError(t, err)
	largeResult, err := testEngine().Evaluate(large)
	require.NoError(t, err)
	assert.Greater(t, largeResult.ReliabilityIndex, smallResult.ReliabilityIndex,
		"identical statistics over a thin window must score lower")
}

func TestDetectDriftSeverities(t *testing.T) {
	engine := testEngine()

	recent := []models.PredictionSample{sample("g1", 0.5, true), sample("g2", 0.5, false)}
	// Recent Brier is exactly 0.25.
	stable, err := engine.DetectDrift(recent, 0.24)
	require.NoError(t, err)
	assert.False(t, stable.Drifting)
	assert.Equal(t, models.DriftSeverityInfo, stable.Severity)

	warning, err := engine.DetectDrift(recent, 0.22)
	require.NoError(t, err)
	assert.True(t, warning.Drifting)
	assert.Equal(t, models.DriftSeverityWarning, warning.Severity)

	critical, err := engine.DetectDrift(recent, 0.20)
	require.NoError(t, err)
	assert.True(t, critical.Drifting)
	assert.Equal(t, models.DriftSeverityCritical, critical.Severity)
	assert.NotEmpty(t, critical.Recommendation)
}

func TestDetectDriftWithoutBaseline(t *testing.T) {
	report, err := testEngine().DetectDrift([]models.PredictionSample{sample("g1", 0.7, true)}, 0)
	require.NoError(t, err)
	assert.False(t, report.Drifting)
	assert.Contains(t, report.Recommendation, "baseline")
}

func TestBacktestHighlightsConfidentCallsAndMisses(t *testing.T) {
	var samples []models.PredictionSample
	for i := 0; i < 8; i++ {
		samples = append(samples, sample(string(rune('a'+i)), 0.55+float64(i)*0.05, true))
	}
	samples = append(samples, sample("miss-big", 0.95, false))
	samples = append(samples, sample("miss-small", 0.55, false))

	report, err := testEngine().Backtest("2025-regular", samples)
	require.NoError(t, err)
	require.Len(t, report.Best, 5)
	require.Len(t, report.Worst, 2)
	assert.Equal(t, "miss-big", report.Worst[0].GameID)
	assert.False(t, report.Worst[0].Correct)
	// Best list is ordered by confidence descending.
	for i := 1; i < len(report.Best); i++ {
		assert.GreaterOrEqual(t, report.Best[i-1].Confidence, report.Best[i].Confidence)
	}
	assert.Equal(t, "2025-regular", report.Window)
}

func TestValidateSamples(t *testing.T) {
	good := []models.PredictionSample{sample("g1", 0.6, true)}
	require.NoError(t, ValidateSamples(good))

	bad := sample("g2", 1.4, true)
	assert.ErrorIs(t, ValidateSamples([]models.PredictionSample{bad}), models.ErrInvalidInput)

	unknown := sample("g3", 0.5, true)
	unknown.Sport = "cricket"
	assert.ErrorIs(t, ValidateSamples([]models.PredictionSample{unknown}), models.ErrUnknownSport)

	assert.ErrorIs(t, ValidateSamples(nil), models.ErrEmptySample)
}
