// Package logger provides prediction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for prediction operations.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPredictionRequest logs a completed prediction request.
func (pl *PredictionLogger) LogPredictionRequest(gameID string, sport string, probability float64, cacheHit bool, latencyMs int64) {
	pl.WithFields(logrus.Fields{
		"game_id":     gameID,
		"sport":       sport,
		"probability": probability,
		"cache_hit":   cacheHit,
		"latency_ms":  latencyMs,
	}).Info("Prediction request completed")
}

// LogSeasonProjection logs a season projection run.
func (pl *PredictionLogger) LogSeasonProjection(teamID string, sport string, runs int, meanWins float64, playoffProbability float64) {
	pl.WithFields(logrus.Fields{
		"team_id":             teamID,
		"sport":               sport,
		"runs":                runs,
		"mean_wins":           meanWins,
		"playoff_probability": playoffProbability,
	}).Info("Season projection completed")
}

// LogStateUpdate logs a post-game team state update.
func (pl *PredictionLogger) LogStateUpdate(teamID string, won bool, wasUpset bool, confidenceDelta float64) {
	pl.WithFields(logrus.Fields{
		"team_id":          teamID,
		"won":              won,
		"was_upset":        wasUpset,
		"confidence_delta": confidenceDelta,
	}).Info("Team state updated")
}

// LogCalibrationRun logs a calibration evaluation.
func (pl *PredictionLogger) LogCalibrationRun(sport string, sampleSize int, brier float64, reliabilityIndex float64, drifting bool) {
	pl.WithFields(logrus.Fields{
		"sport":             sport,
		"sample_size":       sampleSize,
		"brier_score":       brier,
		"reliability_index": reliabilityIndex,
		"drifting":          drifting,
	}).Info("Calibration evaluation completed")
}

// LogPredictionError logs a failed prediction.
func (pl *PredictionLogger) LogPredictionError(gameID string, stage string, err error) {
	pl.WithFields(logrus.Fields{
		"game_id": gameID,
		"stage":   stage,
	}).WithError(err).Error("Prediction failed")
}
