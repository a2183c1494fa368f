package simulation

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// SeasonThresholds define the win-fraction cutoffs for sample-level season
// events. Each is a fraction of the sport's season length.
type SeasonThresholds struct {
	Playoff      float64
	Division     float64
	Conference   float64
	Championship float64
}

// DefaultSeasonThresholds returns cutoffs that track typical qualification
// lines across the supported sports.
func DefaultSeasonThresholds() SeasonThresholds {
	return SeasonThresholds{
		Playoff:      0.55,
		Division:     0.62,
		Conference:   0.70,
		Championship: 0.75,
	}
}

// SeasonSimulation accumulates per-run win totals and event tallies over n
// full-season runs.
type SeasonSimulation struct {
	Runs              int
	GamesRemaining    int
	WinTotals         []float64
	PlayoffCount      int
	DivisionCount     int
	ConferenceCount   int
	ChampionshipCount int
}

// SimulateSeason repeats the single-game trial across every unplayed game
// in the schedule for n full-season runs. Completed games contribute their
// real outcome with zero variance. Opponents missing from the map are
// treated as league-average.
func SimulateSeason(ctx context.Context, team *models.TeamState, schedule []models.ScheduledGame, opponents map[string]*models.TeamState, thresholds SeasonThresholds, cfg Config) (*SeasonSimulation, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	bankedWins := team.Wins
	remaining := make([]float64, 0, len(schedule))
	for _, game := range schedule {
		if game.Completed {
			continue
		}
		opponent, ok := opponents[game.OpponentID]
		if !ok {
			opponent = models.NewTeamState(game.OpponentID, team.Sport, team.Season)
		}
		p := matchupProbability(team, opponent, game, cfg.HomeEdge)
		remaining = append(remaining, p)
	}

	seasonLength := team.Sport.Params().SeasonLength
	result := &SeasonSimulation{
		Runs:           cfg.Iterations,
		GamesRemaining: len(remaining),
		WinTotals:      make([]float64, cfg.Iterations),
	}

	for run := 0; run < cfg.Iterations; run++ {
		if run%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		wins := bankedWins
		for _, p := range remaining {
			if rng.Float64() < p {
				wins++
			}
		}
		result.WinTotals[run] = float64(wins)

		winPct := float64(wins) / float64(seasonLength)
		if winPct >= thresholds.Playoff {
			result.PlayoffCount++
		}
		if winPct >= thresholds.Division {
			result.DivisionCount++
		}
		if winPct >= thresholds.Conference {
			result.ConferenceCount++
		}
		if winPct >= thresholds.Championship {
			result.ChampionshipCount++
		}
	}

	return result, nil
}

// matchupProbability is the per-game win probability for one schedule slot.
func matchupProbability(team, opponent *models.TeamState, game models.ScheduledGame, homeEdge float64) float64 {
	gameCtx := models.GameContext{
		GameID: game.GameID,
		Sport:  team.Sport,
		Season: team.Season,
	}
	if game.IsHome {
		return WinProbability(team, opponent, gameCtx, homeEdge)
	}
	return 1 - WinProbability(opponent, team, gameCtx, homeEdge)
}

// Percentile returns the q-quantile of the per-run win totals.
func (s *SeasonSimulation) Percentile(q float64) float64 {
	if len(s.WinTotals) == 0 {
		return 0
	}
	sorted := append([]float64{}, s.WinTotals...)
	sort.Float64s(sorted)
	idx := int(q * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// MeanWins returns the average simulated win total.
func (s *SeasonSimulation) MeanWins() float64 {
	if len(s.WinTotals) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range s.WinTotals {
		sum += w
	}
	return sum / float64(len(s.WinTotals))
}

// EventRate converts an event tally into a sample probability.
func (s *SeasonSimulation) EventRate(count int) float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(count) / float64(s.Runs)
}
