package psychology

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

func TestAdjustmentBoundedAndSigned(t *testing.T) {
	confident := models.PsychState{Confidence: 1.0, Focus: 1.0, Cohesion: 1.0, LeadershipInfluence: 1.0}
	shaken := models.PsychState{}

	adj := Adjustment(confident, shaken, models.GameContext{})
	assert.Greater(t, adj, 0.0)
	assert.LessOrEqual(t, adj, 0.5)

	reversed := Adjustment(shaken, confident, models.GameContext{})
	assert.InDelta(t, -adj, reversed, 1e-12)
}

func TestAdjustmentNeutralStatesAreZero(t *testing.T) {
	neutral := models.NeutralPsychState()
	assert.Equal(t, 0.0, Adjustment(neutral, neutral, models.GameContext{}))
}

func TestAdjustmentRivalryAttenuates(t *testing.T) {
	strong := models.PsychState{Confidence: 0.9, Focus: 0.8, Cohesion: 0.7, LeadershipInfluence: 0.8}
	weak := models.PsychState{Confidence: 0.3, Focus: 0.4, Cohesion: 0.4, LeadershipInfluence: 0.3}

	plain := Adjustment(strong, weak, models.GameContext{})
	rivalry := Adjustment(strong, weak, models.GameContext{IsRivalry: true})
	assert.Less(t, math.Abs(rivalry), math.Abs(plain))
	assert.Equal(t, math.Signbit(plain), math.Signbit(rivalry))
}

func TestUpdateStateWinRaisesConfidence(t *testing.T) {
	current := models.NeutralPsychState()
	outcome := models.GameOutcome{
		Result:            models.ResultWin,
		Margin:            10,
		ExpectationGap:    2,
		PerformanceRating: 0.7,
		OpponentStrength:  0.5,
		PointsScored:      105,
		PointsAllowed:     95,
	}

	next := UpdateState(current, outcome)
	assert.Greater(t, next.Confidence, current.Confidence)
	assert.Greater(t, next.Focus, current.Focus)

	loss := outcome
	loss.Result = models.ResultLoss
	loss.PerformanceRating = 0.3
	after := UpdateState(current, loss)
	assert.Less(t, after.Confidence, current.Confidence)
}

func TestUpdateStateUpsetMovesConfidenceMore(t *testing.T) {
	current := models.NeutralPsychState()
	base := models.GameOutcome{
		Result:            models.ResultWin,
		Margin:            20,
		ExpectationGap:    2, // expected margin 18
		PerformanceRating: 0.8,
		OpponentStrength:  0.6,
	}
	upset := base
	upset.WasUpset = true
	upset.ExpectationGap = 25 // won big when expected to lose

	plain := UpdateState(current, base)
	surprising := UpdateState(current, upset)
	assert.Greater(t, surprising.Confidence-current.Confidence, plain.Confidence-current.Confidence)
}

func TestUpdateStateAlwaysClamped(t *testing.T) {
	nearCeiling := models.PsychState{Confidence: 0.98, Focus: 0.97, Cohesion: 0.99, LeadershipInfluence: 0.96}
	blowout := models.GameOutcome{
		Result:            models.ResultWin,
		Margin:            40,
		WasUpset:          true,
		ExpectationGap:    45,
		PerformanceRating: 1.0,
		OpponentStrength:  1.0,
		IsPlayoff:         true,
	}

	next := UpdateState(nearCeiling, blowout)
	for _, v := range []float64{next.Confidence, next.Focus, next.Cohesion, next.LeadershipInfluence} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestUpdateStateLeadershipMovesMoreInPlayoffs(t *testing.T) {
	current := models.NeutralPsychState()
	regular := models.GameOutcome{Result: models.ResultWin, PerformanceRating: 0.6, OpponentStrength: 0.5}
	playoff := regular
	playoff.IsPlayoff = true

	regularNext := UpdateState(current, regular)
	playoffNext := UpdateState(current, playoff)
	assert.Greater(t,
		playoffNext.LeadershipInfluence-current.LeadershipInfluence,
		regularNext.LeadershipInfluence-current.LeadershipInfluence)
}

func TestOffseasonDecayContractsTowardNeutral(t *testing.T) {
	state := models.NewTeamState("MEM", models.SportBasketball, 2025)
	state.Wins = 55
	state.Losses = 27
	state.PointsFor = 9300
	state.PointsAgainst = 8800
	state.Psych = models.PsychState{Confidence: 0.85, Focus: 0.3, Cohesion: 0.7, LeadershipInfluence: 0.9}
	state.RecentForm = []string{"W", "W", "L", "W"}
	state.Streak = models.Streak{Type: models.StreakWin, Length: 3}
	state.RecomputePythagorean()

	decayed := ApplyOffseasonDecay(state)

	require.Equal(t, state.Season+1, decayed.Season)
	require.Equal(t, state.TeamID, decayed.TeamID)
	assert.Zero(t, decayed.Wins)
	assert.Zero(t, decayed.Losses)
	assert.Zero(t, decayed.PointsFor)
	assert.Zero(t, decayed.PointsAgainst)
	assert.Empty(t, decayed.RecentForm)
	assert.Zero(t, decayed.Streak.Length)

	pairs := [][2]float64{
		{state.Psych.Confidence, decayed.Psych.Confidence},
		{state.Psych.Focus, decayed.Psych.Focus},
		{state.Psych.Cohesion, decayed.Psych.Cohesion},
		{state.Psych.LeadershipInfluence, decayed.Psych.LeadershipInfluence},
		{state.PythagoreanExpectation, decayed.PythagoreanExpectation},
	}
	for _, p := range pairs {
		before, after := p[0], p[1]
		assert.LessOrEqual(t, math.Abs(after-0.5), math.Abs(before-0.5))
		if before != 0.5 {
			assert.Less(t, math.Abs(after-0.5), math.Abs(before-0.5))
		}
	}
}

func TestOffseasonDecayNeutralIsFixedPoint(t *testing.T) {
	state := models.NewTeamState("DAL", models.SportFootball, 2025)
	decayed := ApplyOffseasonDecay(state)
	assert.Equal(t, models.NeutralPsychState(), decayed.Psych)
	assert.Equal(t, 0.5, decayed.PythagoreanExpectation)
}

func TestApplyGameToRecordTracksStreaks(t *testing.T) {
	state := models.NewTeamState("MEM", models.SportBasketball, 2025)
	win := models.GameOutcome{Result: models.ResultWin, PointsScored: 110, PointsAllowed: 100}
	loss := models.GameOutcome{Result: models.ResultLoss, PointsScored: 95, PointsAllowed: 102}

	ApplyGameToRecord(state, win)
	ApplyGameToRecord(state, win)
	require.Equal(t, models.StreakWin, state.Streak.Type)
	require.Equal(t, 2, state.Streak.Length)

	ApplyGameToRecord(state, loss)
	require.Equal(t, models.StreakLoss, state.Streak.Type)
	require.Equal(t, 1, state.Streak.Length)

	assert.Equal(t, 2, state.Wins)
	assert.Equal(t, 1, state.Losses)
	assert.Greater(t, state.PythagoreanExpectation, 0.5)
	assert.Len(t, state.RecentForm, 3)
}
