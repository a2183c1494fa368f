package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/blazesportsintel/prediction-engine/internal/metrics"
	"github.com/blazesportsintel/prediction-engine/internal/models"
	"github.com/blazesportsintel/prediction-engine/internal/psychology"
	"github.com/blazesportsintel/prediction-engine/internal/simulation"
)

// ProjectSeason simulates the remainder of a team's season and returns the
// win distribution and season event probabilities.
func (e *Engine) ProjectSeason(ctx context.Context, team *models.TeamState, schedule []models.ScheduledGame, opponents map[string]*models.TeamState) (*models.SeasonProjection, error) {
	started := e.now()

	sim, err := simulation.SimulateSeason(ctx, team, schedule, opponents, simulation.DefaultSeasonThresholds(), e.cfg.Simulation)
	if err != nil {
		return nil, fmt.Errorf("simulating season for %s: %w", team.TeamID, err)
	}

	projection := &models.SeasonProjection{
		TeamID:         team.TeamID,
		Sport:          team.Sport,
		Season:         team.Season,
		Runs:           sim.Runs,
		GamesRemaining: sim.GamesRemaining,
		Wins: models.WinDistribution{
			Mean:   sim.MeanWins(),
			P5:     sim.Percentile(0.05),
			Median: sim.Percentile(0.50),
			P95:    sim.Percentile(0.95),
		},
		PlayoffProbability:      sim.EventRate(sim.PlayoffCount),
		DivisionProbability:     sim.EventRate(sim.DivisionCount),
		ConferenceProbability:   sim.EventRate(sim.ConferenceCount),
		ChampionshipProbability: sim.EventRate(sim.ChampionshipCount),
		GeneratedAt:             e.now(),
	}

	metrics.RecordSeasonProjection(e.now().Sub(started).Seconds())
	e.log.WithFields(logrus.Fields{
		"team_id":      team.TeamID,
		"season":       team.Season,
		"mean_wins":    projection.Wins.Mean,
		"playoff_prob": projection.PlayoffProbability,
	}).Info("season projection computed")

	return projection, nil
}

// ProjectMultiSeason projects the current season, then chains future
// seasons by applying off-season decay and simulating a synthetic
// full-length schedule against league-average opposition. Uncertainty
// compounds: each decay step pulls the team toward the mean, so far-out
// seasons regress toward a .500 projection.
func (e *Engine) ProjectMultiSeason(ctx context.Context, team *models.TeamState, schedule []models.ScheduledGame, opponents map[string]*models.TeamState, seasons int) (*models.MultiSeasonProjection, error) {
	if seasons < 1 {
		return nil, fmt.Errorf("%w: seasons must be at least 1", models.ErrInvalidInput)
	}

	result := &models.MultiSeasonProjection{
		TeamID:      team.TeamID,
		Seasons:     make([]models.SeasonProjection, 0, seasons),
		GeneratedAt: e.now(),
	}

	current := team
	currentSchedule := schedule
	currentOpponents := opponents
	for i := 0; i < seasons; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		projection, err := e.ProjectSeason(ctx, current, currentSchedule, currentOpponents)
		if err != nil {
			return nil, fmt.Errorf("season %d: %w", current.Season, err)
		}
		result.Seasons = append(result.Seasons, *projection)

		if i == seasons-1 {
			break
		}
		current = psychology.ApplyOffseasonDecay(current)
		currentSchedule = syntheticSchedule(current)
		currentOpponents = nil
	}

	return result, nil
}

// syntheticSchedule builds a full-length schedule of alternating home and
// away games against placeholder opponents. Opponents absent from the
// lookup map are simulated as league-average, which is exactly the
// assumption we want for seasons that have not been scheduled yet.
func syntheticSchedule(team *models.TeamState) []models.ScheduledGame {
	length := team.Sport.Params().SeasonLength
	schedule := make([]models.ScheduledGame, length)
	for i := range schedule {
		schedule[i] = models.ScheduledGame{
			GameID:     fmt.Sprintf("%s-s%d-g%d", team.TeamID, team.Season, i+1),
			OpponentID: fmt.Sprintf("league-average-%d", i+1),
			IsHome:     i%2 == 0,
		}
	}
	return schedule
}
