// Package psychology implements the team-psychology adjustment and the
// post-game state update.
package psychology

import (
	"math"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

const (
	// Learning rates per scalar. Confidence swings fastest; leadership
	// influence is the slowest-moving and most context-sensitive.
	confidenceRate = 0.20
	focusRate      = 0.10
	cohesionRate   = 0.08
	leadershipRate = 0.04

	// Upsets and large expectation gaps amplify the confidence move.
	upsetMultiplier = 1.5

	// Playoff and rivalry games amplify the leadership move.
	leadershipContextBoost = 2.0

	// rivalryAttenuation shrinks the adjustment magnitude for rivalry
	// games: rivalry raises unpredictability, it does not shift the
	// probability toward either side.
	rivalryAttenuation = 0.5

	// maxAdjustment bounds the raw adjustment before weighting.
	maxAdjustment = 0.5

	// offseasonBlend is how far each scalar regresses toward the
	// neutral midpoint between seasons.
	offseasonBlend = 0.35
)

// Adjustment returns a bounded scalar in [-0.5, 0.5] describing how much
// the blended probability should shift toward the team with the stronger
// composite psychological state. Positive favors home.
func Adjustment(homePsych, awayPsych models.PsychState, gameCtx models.GameContext) float64 {
	diff := homePsych.Composite() - awayPsych.Composite()

	// Composite lives in [0,1] so diff lives in [-1,1]; map into the
	// bounded adjustment range.
	adjustment := diff * maxAdjustment
	if gameCtx.IsRivalry {
		adjustment *= rivalryAttenuation
	}
	return math.Max(-maxAdjustment, math.Min(maxAdjustment, adjustment))
}

// UpdateState computes the next psych 4-tuple from a completed game. Wins
// raise confidence and losses lower it, with extra movement when the
// outcome deviated from expectation. Focus and cohesion track performance
// more slowly; leadership moves least, except in playoff and rivalry games.
// Every output is clamped to [0,1].
func UpdateState(current models.PsychState, outcome models.GameOutcome) models.PsychState {
	direction := -1.0
	if outcome.Won() {
		direction = 1.0
	}

	surprise := 1.0 + math.Min(1.0, math.Abs(outcome.ExpectationGap)/20.0)
	if outcome.WasUpset {
		surprise *= upsetMultiplier
	}

	// Beating strong opponents moves the needle more than beating weak ones.
	strengthWeight := 0.5 + outcome.OpponentStrength

	next := current
	next.Confidence += direction * confidenceRate * surprise * strengthWeight

	// Focus and cohesion follow how well the team actually played, not
	// just the binary result.
	performanceShift := outcome.PerformanceRating - 0.5
	next.Focus += focusRate * (direction*0.5 + performanceShift)
	next.Cohesion += cohesionRate * (direction*0.5 + performanceShift)

	leadershipShift := direction * leadershipRate
	if outcome.IsPlayoff || outcome.IsRivalry {
		leadershipShift *= leadershipContextBoost
	}
	next.LeadershipInfluence += leadershipShift

	return next.Clamped()
}

// ApplyOffseasonDecay regresses every psychological scalar toward the
// neutral midpoint and resets the record, streak, and recent-form fields.
// Identity fields survive; season-to-season regression is a strict
// contraction toward 0.5.
func ApplyOffseasonDecay(state *models.TeamState) *models.TeamState {
	next := *state
	next.Season = state.Season + 1
	next.Psych = models.PsychState{
		Confidence:          decayToward(state.Psych.Confidence),
		Focus:               decayToward(state.Psych.Focus),
		Cohesion:            decayToward(state.Psych.Cohesion),
		LeadershipInfluence: decayToward(state.Psych.LeadershipInfluence),
	}
	next.Wins = 0
	next.Losses = 0
	next.PointsFor = 0
	next.PointsAgainst = 0
	next.RecentForm = []string{}
	next.Streak = models.Streak{}

	// The points-based expectation regresses the same way: last season's
	// strength persists, diluted.
	next.PythagoreanExpectation = decayToward(state.PythagoreanExpectation)
	return &next
}

func decayToward(v float64) float64 {
	return v + (0.5-v)*offseasonBlend
}

// ApplyGameToRecord folds a completed game into the running record,
// streak, and recent form. Kept separate from UpdateState so the psych
// update stays a pure 4-tuple transform.
func ApplyGameToRecord(state *models.TeamState, outcome models.GameOutcome) {
	result := string(models.StreakLoss)
	if outcome.Won() {
		state.Wins++
		result = string(models.StreakWin)
	} else {
		state.Losses++
	}
	state.PointsFor += outcome.PointsScored
	state.PointsAgainst += outcome.PointsAllowed
	state.RecomputePythagorean()

	if string(state.Streak.Type) == result {
		state.Streak.Length++
	} else {
		state.Streak = models.Streak{Type: models.StreakType(result), Length: 1}
	}

	state.RecentForm = append(state.RecentForm, result)
	if len(state.RecentForm) > 10 {
		state.RecentForm = state.RecentForm[len(state.RecentForm)-10:]
	}
}
