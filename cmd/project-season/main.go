// Package main provides the entry point for the season projection CLI.
package main

import (
	"context"
	"encoding/json"
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
	"github.com/blazesportsintel/prediction-engine/internal/repository"
	"github.com/blazesportsintel/prediction-engine/internal/simulation"
)

func main() {
	var (
		configPath   = flag.String("config", "config/config.yaml", "Path to config file")
		teamID       = flag.String("team", "", "Team identifier")
		sport        = flag.String("sport", "basketball", "Sport: baseball, football, basketball")
		season       = flag.Int("season", time.Now().Year(), "Season year")
		scheduleFile = flag.String("schedule", "", "Path to a JSON file with the team's schedule")
		seasons      = flag.Int("seasons", 1, "Number of seasons to project (chained through off-season decay)")
		runs         = flag.Int("runs", 0, "Override simulation run count")
	)
	flag.Parse()

	if *teamID == "" {
		logrus.Fatal("-team is required")
	}

	cfg := loadConfig(*configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	ctx := context.Background()

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	teamStates := repository.NewPostgresTeamStateRepository(db)
	predictions := repository.NewPostgresPredictionRepository(db)
	repos := repository.Repositories{
		TeamStates:  teamStates,
		Predictions: predictions,
		Samples:     repository.NewPostgresSampleRepository(db),
	}

	team, err := teamStates.GetByTeamAndSeason(ctx, *teamID, models.Sport(*sport), *season)
	if err != nil {
		appLog.WithError(err).WithField("team_id", *teamID).Fatal("Failed to load team state")
	}

	schedule := loadSchedule(*scheduleFile, appLog)
	opponents := loadOpponents(ctx, teamStates, schedule, models.Sport(*sport), *season, appLog)

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
	if *runs > 0 {
		engineCfg.Simulation.Iterations = *runs
	}
	e := engine.NewEngine(engineCfg, repos, nil, nil, appLog, nil)

	appLog.WithFields(logrus.Fields{
		"team_id": *teamID,
		"season":  *season,
		"seasons": *seasons,
		"runs":    engineCfg.Simulation.Iterations,
	}).Info("Starting season projection")

	if *seasons > 1 {
		result, err := e.ProjectMultiSeason(ctx, team, schedule, opponents, *seasons)
		if err != nil {
			appLog.WithError(err).Fatal("Multi-season projection failed")
		}
		printJSON(result, appLog)
		return
	}

	projection, err := e.ProjectSeason(ctx, team, schedule, opponents)
	if err != nil {
		appLog.WithError(err).Fatal("Season projection failed")
	}
	logger.NewPredictionLogger(appLog).LogSeasonProjection(
		projection.TeamID, string(projection.Sport), projection.Runs,
		projection.Wins.Mean, projection.PlayoffProbability)
	printJSON(projection, appLog)
}

func loadConfig(path string) *config.Config {
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

func loadSchedule(path string, appLog *logrus.Logger) []models.ScheduledGame {
	if path == "" {
		appLog.Fatal("-schedule is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to read schedule file")
	}
	var schedule []models.ScheduledGame
	if err := json.Unmarshal(data, &schedule); err != nil {
		appLog.WithError(err).Fatal("Failed to parse schedule file")
	}
	return schedule
}

// loadOpponents resolves every scheduled opponent's state. Opponents with
// no stored state are simulated as league-average.
func loadOpponents(ctx context.Context, teamStates repository.TeamStateRepository, schedule []models.ScheduledGame, sport models.Sport, season int, appLog *logrus.Logger) map[string]*models.TeamState {
	opponents := make(map[string]*models.TeamState)
	for _, game := range schedule {
		if game.Completed {
			continue
		}
		if _, ok := opponents[game.OpponentID]; ok {
			continue
		}
		state, err := teamStates.GetByTeamAndSeason(ctx, game.OpponentID, sport, season)
		if err != nil {
			appLog.WithField("opponent_id", game.OpponentID).Debug("No stored state for opponent, using league average")
			continue
		}
		opponents[game.OpponentID] = state
	}
	return opponents
}

func printJSON(v interface{}, appLog *logrus.Logger) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		appLog.WithError(err).Fatal("Failed to encode output")
	}
	fmt.Println(string(out))
}
