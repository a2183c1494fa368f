package simulation

import (
	"context"
	"testing"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

func buildSchedule(opponentID string, remaining, completed int) []models.ScheduledGame {
	schedule := make([]models.ScheduledGame, 0, remaining+completed)
	for i := 0; i < completed; i++ {
		schedule = append(schedule, models.ScheduledGame{
			GameID:     "done",
			OpponentID: opponentID,
			Completed:  true,
			Result:     models.ResultWin,
		})
	}
	for i := 0; i < remaining; i++ {
		schedule = append(schedule, models.ScheduledGame{
			GameID:     "future",
			OpponentID: opponentID,
			IsHome:     i%2 == 0,
		})
	}
	return schedule
}

func TestSimulateSeasonBanksCompletedGames(t *testing.T) {
	team := teamWithPyth("MEM", 0.60)
	team.Wins = 30
	team.Losses = 10
	opponent := teamWithPyth("OPP", 0.50)

	schedule := buildSchedule("OPP", 10, 40)
	opponents := map[string]*models.TeamState{"OPP": opponent}

	result, err := SimulateSeason(context.Background(), team, schedule, opponents, DefaultSeasonThresholds(), Config{Iterations: 2000, Seed: 11})
	if err != nil {
		t.Fatalf("SimulateSeason failed: %v", err)
	}
	if result.GamesRemaining != 10 {
		t.Fatalf("expected 10 remaining games, got %d", result.GamesRemaining)
	}
	// Banked wins bound the distribution from below; remaining games bound it above.
	if result.Percentile(0.05) < 30 {
		t.Fatalf("simulated wins fell below banked total: %f", result.Percentile(0.05))
	}
	if result.Percentile(0.95) > 40 {
		t.Fatalf("simulated wins exceeded schedule capacity: %f", result.Percentile(0.95))
	}
}

func TestSimulateSeasonCancellation(t *testing.T) {
	team := teamWithPyth("MEM", 0.55)
	schedule := buildSchedule("OPP", 50, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SimulateSeason(ctx, team, schedule, nil, DefaultSeasonThresholds(), Config{Iterations: 100000, Seed: 3})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestSimulateSeasonMissingOpponentIsNeutral(t *testing.T) {
	team := teamWithPyth("MEM", 0.55)
	schedule := buildSchedule("GHOST", 20, 0)

	result, err := SimulateSeason(context.Background(), team, schedule, map[string]*models.TeamState{}, DefaultSeasonThresholds(), Config{Iterations: 1000, Seed: 5})
	if err != nil {
		t.Fatalf("SimulateSeason failed: %v", err)
	}
	if result.Runs != 1000 {
		t.Fatalf("expected 1000 runs, got %d", result.Runs)
	}
	if result.MeanWins() <= 0 {
		t.Fatal("expected some simulated wins against neutral opponents")
	}
}

func TestEventRates(t *testing.T) {
	sim := &SeasonSimulation{Runs: 200, PlayoffCount: 100, ChampionshipCount: 20}
	if rate := sim.EventRate(sim.PlayoffCount); rate != 0.5 {
		t.Fatalf("expected playoff rate 0.5, got %f", rate)
	}
	if rate := sim.EventRate(sim.ChampionshipCount); rate != 0.1 {
		t.Fatalf("expected championship rate 0.1, got %f", rate)
	}
}
