package calibration

import (
	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

const (
	// driftWarningThreshold is the relative Brier degradation that marks
	// the model as drifting.
	driftWarningThreshold = 0.10
	// driftCriticalThreshold escalates the drift to critical.
	driftCriticalThreshold = 0.15
)

// DetectDrift compares the Brier score of a recent sample window against a
// historical baseline Brier. Degradation beyond 10% flags drift; beyond
// 15% it is critical. A non-positive baseline cannot be compared and
// yields an informational report.
func (e *Engine) DetectDrift(recent []models.PredictionSample, baselineBrier float64) (models.DriftReport, error) {
	recentBrier, err := BrierScore(recent)
	if err != nil {
		return models.DriftReport{}, err
	}

	report := models.DriftReport{
		RecentBrier:   recentBrier,
		BaselineBrier: baselineBrier,
		Severity:      models.DriftSeverityInfo,
		SampleSize:    len(recent),
		EvaluatedAt:   e.now(),
	}

	if baselineBrier <= 0 {
		report.Recommendation = "baseline Brier unavailable; collect a baseline window before monitoring drift"
		return report, nil
	}

	report.RelativeChange = (recentBrier - baselineBrier) / baselineBrier
	switch {
	case report.RelativeChange >= driftCriticalThreshold:
		report.Drifting = true
		report.Severity = models.DriftSeverityCritical
		report.Recommendation = "retrain the model; recent accuracy has degraded well beyond baseline"
	case report.RelativeChange >= driftWarningThreshold:
		report.Drifting = true
		report.Severity = models.DriftSeverityWarning
		report.Recommendation = "review recent feature inputs and consider refreshing model weights"
	default:
		report.Recommendation = "calibration within tolerance; no action needed"
	}

	if report.Drifting {
		e.log.WithFields(logrus.Fields{
			"recent_brier":    report.RecentBrier,
			"baseline_brier":  report.BaselineBrier,
			"relative_change": report.RelativeChange,
			"severity":        report.Severity,
		}).Warn("model drift detected")
	}

	return report, nil
}
