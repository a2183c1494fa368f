// Package simulation implements the Monte Carlo game and season simulator.
package simulation

import (
	"math"
	"math/rand"
	"time"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// Config configures a simulation run.
type Config struct {
	Iterations int
	Seed       int64
	HomeEdge   float64
}

// DefaultIterations is the trial count used when none is configured.
const DefaultIterations = 10000

// zScore95 is the normal critical value for a 95% interval.
const zScore95 = 1.96

// AggregatedSimulation summarizes n independent trials of a single game.
type AggregatedSimulation struct {
	Iterations         int     `json:"iterations"`
	HomeWinProbability float64 `json:"home_win_probability"`
	SpreadMean         float64 `json:"spread_mean"`
	SpreadStdDev       float64 `json:"spread_std_dev"`
	TotalMean          float64 `json:"total_mean"`
	TotalStdDev        float64 `json:"total_std_dev"`
}

// SimulateGame runs n iid stochastic trials of a single game parameterized
// by both teams' win-rate estimates. Each trial samples home and away
// scores from the sport's scoring model; the home team "wins" a trial when
// its sampled score is higher.
func SimulateGame(home, away *models.TeamState, gameCtx models.GameContext, cfg Config) AggregatedSimulation {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	params := gameCtx.Sport.Params()
	expectedSpread, expectedTotal := gameExpectations(home, away, gameCtx, cfg.HomeEdge)

	homeWins := 0
	spreads := make([]float64, cfg.Iterations)
	totals := make([]float64, cfg.Iterations)

	scoreSigma := params.TotalStdDev / math.Sqrt2
	for i := 0; i < cfg.Iterations; i++ {
		homeScore := (expectedTotal+expectedSpread)/2 + rng.NormFloat64()*scoreSigma
		awayScore := (expectedTotal-expectedSpread)/2 + rng.NormFloat64()*scoreSigma
		if homeScore < 0 {
			homeScore = 0
		}
		if awayScore < 0 {
			awayScore = 0
		}
		if homeScore > awayScore {
			homeWins++
		}
		spreads[i] = homeScore - awayScore
		totals[i] = homeScore + awayScore
	}

	spreadMean, spreadStd := meanStd(spreads)
	totalMean, totalStd := meanStd(totals)

	return AggregatedSimulation{
		Iterations:         cfg.Iterations,
		HomeWinProbability: float64(homeWins) / float64(cfg.Iterations),
		SpreadMean:         spreadMean,
		SpreadStdDev:       spreadStd,
		TotalMean:          totalMean,
		TotalStdDev:        totalStd,
	}
}

// WinProbability returns the closed-form single-game home win estimate the
// trial model is centered on. Used by the season simulator, where sampling
// scores per game would be wasted work.
func WinProbability(home, away *models.TeamState, gameCtx models.GameContext, homeEdge float64) float64 {
	hw := adjustedWinRate(home, gameCtx, true, homeEdge)
	aw := adjustedWinRate(away, gameCtx, false, homeEdge)
	return log5(hw, aw)
}

// ConfidenceInterval returns a symmetric normal-approximation binomial
// interval around probability p at the given trial count. The interval
// widens as n decreases and is clipped at the [0,1] boundary.
func ConfidenceInterval(p float64, n int) models.ConfidenceInterval {
	if n <= 0 {
		return models.ConfidenceInterval{Lower: 0, Upper: 1}
	}
	se := math.Sqrt(p * (1 - p) / float64(n))
	margin := zScore95 * se
	return models.ConfidenceInterval{
		Lower: math.Max(0, p-margin),
		Upper: math.Min(1, p+margin),
	}
}

// gameExpectations derives the expected spread and total for one matchup
// from both teams' scoring tendencies and the game context.
func gameExpectations(home, away *models.TeamState, gameCtx models.GameContext, homeEdge float64) (spread, total float64) {
	params := gameCtx.Sport.Params()
	p := WinProbability(home, away, gameCtx, homeEdge)
	spread = (p - 0.5) * 2 * params.SpreadScale

	homeOffense := perGameScoring(home, params.TypicalTotal)
	awayOffense := perGameScoring(away, params.TypicalTotal)
	total = homeOffense + awayOffense
	return spread, total
}

// perGameScoring estimates a team's scoring per game, falling back to half
// the sport's typical total when no scoring record exists.
func perGameScoring(team *models.TeamState, typicalTotal float64) float64 {
	played := team.GamesPlayed()
	if played == 0 || team.PointsFor == 0 {
		return typicalTotal / 2
	}
	return team.PointsFor / float64(played)
}

func adjustedWinRate(team *models.TeamState, gameCtx models.GameContext, isHome bool, homeEdge float64) float64 {
	rate := team.PythagoreanExpectation
	if isHome {
		rate += homeEdge
	}
	rest := gameCtx.AwayRestDays
	if isHome {
		rest = gameCtx.HomeRestDays
	}
	// Short rest is a mild drag; anything past 3 days is neutral.
	if rest > 0 && rest < 3 {
		rate -= 0.01 * float64(3-rest)
	}
	// Long trips drag the visitor, capped at two points of win rate.
	if !isHome && gameCtx.TravelMiles > 0 {
		rate -= math.Min(0.02, gameCtx.TravelMiles/100000)
	}
	return math.Max(0.01, math.Min(0.99, rate))
}

// log5 is the standard head-to-head probability from two win rates.
func log5(a, b float64) float64 {
	denom := a*(1-b) + b*(1-a)
	if denom == 0 {
		return 0.5
	}
	return a * (1 - b) / denom
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
