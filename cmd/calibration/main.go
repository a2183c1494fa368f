// Package main provides the calibration CLI: evaluation reports, drift
// checks, and historical backtests over stored prediction samples.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blazesportsintel/prediction-engine/internal/calibration"
	"github.com/blazesportsintel/prediction-engine/internal/config"
	"github.com/blazesportsintel/prediction-engine/internal/database"
	"github.com/blazesportsintel/prediction-engine/internal/logger"
	"github.com/blazesportsintel/prediction-engine/internal/metrics"
	"github.com/blazesportsintel/prediction-engine/internal/models"
	"github.com/blazesportsintel/prediction-engine/internal/repository"
)

var (
	configFile string
	sportName  string

	cfg     *config.Config
	appLog  *logrus.Logger
	db      *database.DB
	samples repository.SampleRepository
	engine  *calibration.Engine
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&sportName, "sport", "s", "basketball", "Sport: baseball, football, basketball")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(driftCmd)
	rootCmd.AddCommand(backtestCmd)
}

var rootCmd = &cobra.Command{
	Use:   "calibration",
	Short: "Evaluate prediction calibration",
	Long:  `Scores stored predictions against recorded outcomes: calibration reports, drift detection, and historical backtests.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		if !models.Sport(sportName).Valid() {
			return fmt.Errorf("%w: %q", models.ErrUnknownSport, sportName)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Evaluate the recent prediction window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		window, err := recentSamples(ctx)
		if err != nil {
			return err
		}
		result, err := engine.Evaluate(window)
		if err != nil {
			return fmt.Errorf("evaluating calibration: %w", err)
		}

		drifting := false
		if baseline, err := baselineBrier(ctx); err == nil && baseline > 0 {
			report, derr := engine.DetectDrift(window, baseline)
			if derr == nil {
				drifting = report.Drifting
			}
		}
		metrics.UpdateCalibration(sportName, result.ReliabilityIndex, result.BrierScore, drifting)
		logger.NewPredictionLogger(appLog).LogCalibrationRun(sportName, result.SampleSize, result.BrierScore, result.ReliabilityIndex, drifting)

		return printJSON(result)
	},
}

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Compare recent calibration against the historical baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		window, err := recentSamples(ctx)
		if err != nil {
			return err
		}
		baseline, err := baselineBrier(ctx)
		if err != nil {
			return fmt.Errorf("computing baseline: %w", err)
		}

		report, err := engine.DetectDrift(window, baseline)
		if err != nil {
			return fmt.Errorf("detecting drift: %w", err)
		}
		return printJSON(report)
	},
}

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a historical window and surface best/worst predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return fmt.Errorf("invalid end date %q: %w", endDate, err)
		}

		window, err := samples.GetByDateRange(ctx, models.Sport(sportName), start, end)
		if err != nil {
			return fmt.Errorf("loading samples: %w", err)
		}
		if err := calibration.ValidateSamples(window); err != nil {
			return fmt.Errorf("rejecting sample window: %w", err)
		}

		label := fmt.Sprintf("%s..%s", startDate, endDate)
		report, err := engine.Backtest(label, window)
		if err != nil {
			return fmt.Errorf("running backtest: %w", err)
		}
		return printJSON(report)
	},
}

var (
	startDate string
	endDate   string
)

func init() {
	backtestCmd.Flags().StringVar(&startDate, "start-date", "", "Window start (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&endDate, "end-date", "", "Window end (YYYY-MM-DD)")
	_ = backtestCmd.MarkFlagRequired("start-date")
	_ = backtestCmd.MarkFlagRequired("end-date")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func setup() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("loading secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)

	db, err = database.NewDB(context.Background(), &cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	samples = repository.NewPostgresSampleRepository(db)
	engine = calibration.NewEngine(appLog, nil)
	return nil
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// recentSamples loads and screens the configured recent window.
func recentSamples(ctx context.Context) ([]models.PredictionSample, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -cfg.Calibration.RecentWindowDays)
	window, err := samples.GetByDateRange(ctx, models.Sport(sportName), start, end)
	if err != nil {
		return nil, fmt.Errorf("loading recent samples: %w", err)
	}
	if err := calibration.ValidateSamples(window); err != nil {
		return nil, fmt.Errorf("rejecting sample window: %w", err)
	}
	if len(window) < cfg.Calibration.MinSampleSize {
		appLog.WithFields(logrus.Fields{
			"samples": len(window),
			"minimum": cfg.Calibration.MinSampleSize,
		}).Warn("Sample window below configured minimum, results may be noisy")
	}
	return window, nil
}

// baselineBrier scores the long baseline window that drift detection
// compares against. The recent window is excluded so a fresh regression
// cannot hide inside its own baseline.
func baselineBrier(ctx context.Context) (float64, error) {
	recentStart := time.Now().UTC().AddDate(0, 0, -cfg.Calibration.RecentWindowDays)
	baselineStart := time.Now().UTC().AddDate(0, 0, -cfg.Calibration.BaselineDays)
	window, err := samples.GetByDateRange(ctx, models.Sport(sportName), baselineStart, recentStart)
	if err != nil {
		return 0, err
	}
	if len(window) == 0 {
		return 0, nil
	}
	return calibration.BrierScore(window)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
