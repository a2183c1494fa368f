// Package metrics provides the centralized Prometheus registry for the
// prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blaze_intel",
		Name:      "predictions_total",
		Help:      "Total number of game predictions computed",
	}, []string{"sport"})
	PredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blaze_intel",
		Name:      "prediction_errors_total",
		Help:      "Total number of failed prediction requests",
	}, []string{"stage"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_intel",
		Name:      "prediction_cache_hits_total",
		Help:      "Total number of prediction cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_intel",
		Name:      "prediction_cache_misses_total",
		Help:      "Total number of prediction cache misses",
	})
	SeasonProjectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_intel",
		Name:      "season_projections_total",
		Help:      "Total number of season projection runs",
	})
	StateUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blaze_intel",
		Name:      "team_state_updates_total",
		Help:      "Total number of post-game team state updates",
	})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blaze_intel",
		Name:      "prediction_cache_hit_ratio",
		Help:      "Ratio of cache hits to total cache lookups",
	})
	ReliabilityIndex = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blaze_intel",
		Name:      "calibration_reliability_index",
		Help:      "Composite calibration health score per sport",
	}, []string{"sport"})
	RecentBrierScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blaze_intel",
		Name:      "calibration_recent_brier_score",
		Help:      "Brier score of the most recent calibration window per sport",
	}, []string{"sport"})
	ModelDrifting = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blaze_intel",
		Name:      "model_drifting",
		Help:      "1 when the model is flagged as drifting for a sport, else 0",
	}, []string{"sport"})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blaze_intel",
		Name:      "prediction_latency_seconds",
		Help:      "End-to-end latency of single game predictions in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blaze_intel",
		Name:      "simulation_duration_seconds",
		Help:      "Duration of Monte Carlo simulation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SeasonProjectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "blaze_intel",
		Name:      "season_projection_duration_seconds",
		Help:      "Duration of season projection runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(SeasonProjectionsTotal)
		registry.MustRegister(StateUpdatesTotal)

		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(ReliabilityIndex)
		registry.MustRegister(RecentBrierScore)
		registry.MustRegister(ModelDrifting)

		registry.MustRegister(PredictionLatency)
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(SeasonProjectionDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a completed prediction with its latency.
func RecordPrediction(sport string, durationSeconds float64) {
	PredictionsTotal.WithLabelValues(sport).Inc()
	PredictionLatency.Observe(durationSeconds)
}

// RecordPredictionError records a failed prediction by pipeline stage.
func RecordPredictionError(stage string) {
	PredictionErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordCacheHit records a prediction cache hit.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a prediction cache miss.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordSeasonProjection records a season projection run.
func RecordSeasonProjection(durationSeconds float64) {
	SeasonProjectionsTotal.Inc()
	SeasonProjectionDuration.Observe(durationSeconds)
}

// RecordStateUpdate records a post-game team state update.
func RecordStateUpdate() {
	StateUpdatesTotal.Inc()
}

// UpdateCalibration publishes a calibration run's health to the gauges.
func UpdateCalibration(sport string, reliabilityIndex, recentBrier float64, drifting bool) {
	ReliabilityIndex.WithLabelValues(sport).Set(reliabilityIndex)
	RecentBrierScore.WithLabelValues(sport).Set(recentBrier)
	if drifting {
		ModelDrifting.WithLabelValues(sport).Set(1)
	} else {
		ModelDrifting.WithLabelValues(sport).Set(0)
	}
}
