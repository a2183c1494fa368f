package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blazesportsintel/prediction-engine/internal/health"
	"github.com/blazesportsintel/prediction-engine/internal/metrics"
	"github.com/blazesportsintel/prediction-engine/internal/mlmodel"
	"github.com/blazesportsintel/prediction-engine/internal/models"
	"github.com/blazesportsintel/prediction-engine/internal/psychology"
	"github.com/blazesportsintel/prediction-engine/internal/repository"
	"github.com/blazesportsintel/prediction-engine/internal/scheduler"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduled calibration and decay jobs",
	Long:  `Runs as a daemon: nightly calibration evaluation, the off-season decay pass, and health/metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func runDaemon() error {
	if !cfg.Scheduler.Enabled {
		return fmt.Errorf("scheduler is disabled in configuration")
	}
	metrics.InitRegistry()
	teamStates := repository.NewPostgresTeamStateRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthServer := health.NewServer(health.Config{
		ServiceName:  cfg.App.Name,
		ModelVersion: mlmodel.ModelVersion,
		Logger:       appLog,
		DB:           db,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("starting health server: %w", err)
	}
	if cfg.Metrics.Enabled {
		startMetricsServer(ctx)
	}

	sched := scheduler.NewScheduler(appLog)
	if err := sched.AddJob("calibration-evaluation", cfg.Scheduler.CalibrationSchedule, calibrationJob()); err != nil {
		return err
	}
	if err := sched.AddJob("offseason-decay", cfg.Scheduler.DecaySchedule, decayJob(teamStates)); err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"sport":    sportName,
		"next_run": sched.NextRun(),
	}).Info("Calibration daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Scheduler shutdown error")
	}
	cancel()
	return nil
}

// startMetricsServer exposes the Prometheus registry on the configured
// metrics port.
func startMetricsServer(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

// calibrationJob evaluates the recent window and publishes the results to
// the Prometheus gauges.
func calibrationJob() scheduler.Job {
	return func(ctx context.Context) error {
		window, err := recentSamples(ctx)
		if err != nil {
			return err
		}
		result, err := engine.Evaluate(window)
		if err != nil {
			return err
		}

		drifting := false
		baseline, err := baselineBrier(ctx)
		if err == nil && baseline > 0 {
			report, derr := engine.DetectDrift(window, baseline)
			if derr == nil {
				drifting = report.Drifting
				if drifting {
					appLog.WithFields(logrus.Fields{
						"severity":       report.Severity,
						"recommendation": report.Recommendation,
					}).Warn("Model drift detected")
				}
			}
		}
		metrics.UpdateCalibration(sportName, result.ReliabilityIndex, result.BrierScore, drifting)
		return nil
	}
}

// decayJob rolls every stored team state for the configured sport into the
// next season, in one transaction so a partial pass never leaves the sport
// half-decayed. The decay season is the calendar year at run time; running
// the job twice is harmless because the decayed state is keyed to the new
// season.
func decayJob(teamStates repository.TeamStateRepository) scheduler.Job {
	return func(ctx context.Context) error {
		season := time.Now().UTC().Year() - 1
		states, err := teamStates.ListBySportAndSeason(ctx, models.Sport(sportName), season)
		if err != nil {
			return fmt.Errorf("listing team states for season %d: %w", season, err)
		}

		decayed := make([]*models.TeamState, len(states))
		for i, state := range states {
			decayed[i] = psychology.ApplyOffseasonDecay(state)
		}
		if err := teamStates.UpsertMany(ctx, decayed); err != nil {
			return fmt.Errorf("saving decayed states for season %d: %w", season, err)
		}
		appLog.WithFields(logrus.Fields{
			"season": season,
			"teams":  len(decayed),
		}).Info("Off-season decay pass complete")
		return nil
	}
}
