package calibration

import (
	"math"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// bucketCount splits [0,1] into equal-width probability ranges.
const bucketCount = 10

// BuildBuckets groups samples into ten equal-width probability ranges and
// compares each bucket's midpoint, the expected win rate, against the
// observed win rate. A probability of exactly 1.0 lands in the top bucket.
// Empty buckets are returned with zero counts so the reliability curve
// always has ten points.
func BuildBuckets(samples []models.PredictionSample) []models.CalibrationBucket {
	buckets := make([]models.CalibrationBucket, bucketCount)
	wins := make([]int, bucketCount)

	for i := range buckets {
		buckets[i].RangeLow = float64(i) / bucketCount
		buckets[i].RangeHigh = float64(i+1) / bucketCount
	}

	for _, s := range samples {
		idx := bucketIndex(s.PredictedProbability)
		buckets[idx].PredictedCount++
		if s.HomeWon {
			wins[idx]++
		}
	}

	for i := range buckets {
		n := buckets[i].PredictedCount
		if n == 0 {
			continue
		}
		buckets[i].ExpectedWinRate = (buckets[i].RangeLow + buckets[i].RangeHigh) / 2
		buckets[i].ActualWinRate = float64(wins[i]) / float64(n)
		buckets[i].CalibrationError = math.Abs(buckets[i].ActualWinRate - buckets[i].ExpectedWinRate)
	}
	return buckets
}

// OverallCalibrationError is the sample-weighted mean of the per-bucket
// errors, i.e. the expected calibration error.
func OverallCalibrationError(buckets []models.CalibrationBucket) float64 {
	total := 0
	weighted := 0.0
	for _, b := range buckets {
		total += b.PredictedCount
		weighted += float64(b.PredictedCount) * b.CalibrationError
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}

func bucketIndex(p float64) int {
	idx := int(p * bucketCount)
	if idx >= bucketCount {
		idx = bucketCount - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}
