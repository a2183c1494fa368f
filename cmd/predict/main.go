// Package main provides the entry point for the game prediction CLI.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/prediction-engine/internal/config"
	"github.com/blazesportsintel/prediction-engine/internal/database"
	"github.com/blazesportsintel/prediction-engine/internal/engine"
	"github.com/blazesportsintel/prediction-engine/internal/logger"
	"github.com/blazesportsintel/prediction-engine/internal/models"
	"github.com/blazesportsintel/prediction-engine/internal/provider"
	"github.com/blazesportsintel/prediction-engine/internal/repository"
	"github.com/blazesportsintel/prediction-engine/internal/simulation"
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "Path to config file")
		gameID     = flag.String("game-id", "", "Game identifier")
		sport      = flag.String("sport", "basketball", "Sport: baseball, football, basketball")
		homeTeam   = flag.String("home", "", "Home team identifier")
		awayTeam   = flag.String("away", "", "Away team identifier")
		season     = flag.Int("season", time.Now().Year(), "Season year")
		rivalry    = flag.Bool("rivalry", false, "Mark the game as a rivalry matchup")
		playoff    = flag.Bool("playoff", false, "Mark the game as a playoff game")
		homeRest   = flag.Int("home-rest", 0, "Home team rest days")
		awayRest   = flag.Int("away-rest", 0, "Away team rest days")
		tier       = flag.String("tier", "pro", "Subscription tier: free, pro")
		batchFile  = flag.String("batch", "", "Path to a JSON file with an array of prediction requests")
		offline    = flag.Bool("offline", false, "Use in-memory storage instead of Postgres")
	)
	flag.Parse()

	cfg := loadConfigWithSecrets(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	ctx := context.Background()

	e, cleanup := buildEngine(ctx, cfg, appLog, *offline)
	defer cleanup()

	if *batchFile != "" {
		runBatch(ctx, e, *batchFile, appLog)
		return
	}

	if *gameID == "" || *homeTeam == "" || *awayTeam == "" {
		appLog.Fatal("-game-id, -home, and -away are required (or use -batch)")
	}

	req := engine.PredictionRequest{
		HomeTeamID: *homeTeam,
		AwayTeamID: *awayTeam,
		Game: models.GameContext{
			GameID:       *gameID,
			Sport:        models.Sport(*sport),
			Season:       *season,
			IsRivalry:    *rivalry,
			IsPlayoff:    *playoff,
			HomeRestDays: *homeRest,
			AwayRestDays: *awayRest,
		},
		Tier: models.SubscriptionTier(*tier),
	}

	predLog := logger.NewPredictionLogger(appLog)
	start := time.Now()
	prediction, err := e.PredictGame(ctx, req)
	if errors.Is(err, models.ErrNotPersisted) {
		// The prediction is still usable; the save can be retried later.
		appLog.WithError(err).Warn("Prediction computed but not saved")
	} else if err != nil {
		predLog.LogPredictionError(req.Game.GameID, "predict", err)
		os.Exit(1)
	}
	cacheHit := prediction.PredictedAt.Before(start)
	predLog.LogPredictionRequest(req.Game.GameID, string(req.Game.Sport), prediction.HomeWinProbability, cacheHit, time.Since(start).Milliseconds())
	printJSON(prediction, appLog)
}

func runBatch(ctx context.Context, e *engine.Engine, path string, appLog *logrus.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to read batch file")
	}
	var requests []engine.PredictionRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		appLog.WithError(err).Fatal("Failed to parse batch file")
	}

	appLog.WithField("games", len(requests)).Info("Starting batch prediction")
	predictions, err := e.PredictBatch(ctx, requests)
	if err != nil {
		appLog.WithError(err).Fatal("Batch prediction failed")
	}
	printJSON(predictions, appLog)
}

func loadConfigWithSecrets(path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			logrus.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			logrus.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildEngine(ctx context.Context, cfg *config.Config, appLog *logrus.Logger, offline bool) (*engine.Engine, func()) {
	repos, cleanup := buildRepositories(ctx, cfg, appLog, offline)
	composite, market := buildProviders(cfg, appLog)

	engineCfg := engine.Config{
		MonteCarloWeight: cfg.Engine.MonteCarloWeight,
		ModelWeight:      cfg.Engine.ModelWeight,
		PsychologyWeight: cfg.Engine.PsychologyWeight,
		CacheTTL:         time.Duration(cfg.Engine.CacheTTLSeconds) * time.Second,
		CacheMaxSize:     cfg.Engine.CacheMaxSize,
		BatchParallelism: cfg.Engine.BatchParallelism,
		Simulation: simulation.Config{
			Iterations: cfg.Simulation.Iterations,
			Seed:       cfg.Simulation.Seed,
			HomeEdge:   cfg.Simulation.HomeEdge,
		},
	}
	return engine.NewEngine(engineCfg, repos, composite, market, appLog, nil), cleanup
}

func buildRepositories(ctx context.Context, cfg *config.Config, appLog *logrus.Logger, offline bool) (repository.Repositories, func()) {
	if offline {
		appLog.Info("Running with in-memory storage")
		predictions := repository.NewMemoryPredictionRepository()
		return repository.Repositories{
			TeamStates:  repository.NewMemoryTeamStateRepository(),
			Predictions: predictions,
			Samples:     predictions,
		}, func() {}
	}

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	return repository.Repositories{
		TeamStates:  repository.NewPostgresTeamStateRepository(db),
		Predictions: repository.NewPostgresPredictionRepository(db),
		Samples:     repository.NewPostgresSampleRepository(db),
	}, db.Close
}

func buildProviders(cfg *config.Config, appLog *logrus.Logger) (provider.CompositeScoreProvider, provider.MarketLineProvider) {
	var (
		composite provider.CompositeScoreProvider
		market    provider.MarketLineProvider
	)
	if cfg.Providers.CompositeBaseURL == "" && cfg.Providers.OddsBaseURL == "" {
		return nil, nil
	}

	clientCfg := provider.DefaultHTTPClientConfig()
	if cfg.Providers.RequestsPerSecond > 0 {
		clientCfg.RateLimit = cfg.Providers.RequestsPerSecond
	}
	if cfg.Providers.TimeoutSeconds > 0 {
		clientCfg.Timeout = time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	}
	client := provider.NewRateLimitedHTTPClient(clientCfg, appLog)

	if cfg.Providers.CompositeBaseURL != "" {
		composite = provider.NewHTTPCompositeProvider(client, cfg.Providers.CompositeBaseURL, cfg.Providers.CompositeAPIKey, appLog)
	}
	if cfg.Providers.OddsBaseURL != "" && cfg.Engine.MarketLinesEnabled {
		market = provider.NewHTTPMarketProvider(client, cfg.Providers.OddsBaseURL, cfg.Providers.OddsAPIKey, appLog)
	}
	return composite, market
}

func printJSON(v interface{}, appLog *logrus.Logger) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		appLog.WithError(err).Fatal("Failed to encode output")
	}
	fmt.Println(string(out))
}
