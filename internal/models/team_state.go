package models

import (
	"math"
	"time"
)

// Sport identifies the sport a team or game belongs to.
type Sport string

const (
	SportBaseball   Sport = "baseball"
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
)

// SportParams holds sport-specific scoring characteristics used by the
// probability model and the simulator.
type SportParams struct {
	PythagoreanExponent float64
	SpreadScale         float64
	TypicalTotal        float64
	TotalStdDev         float64
	SeasonLength        int
}

var sportParams = map[Sport]SportParams{
	SportBaseball:   {PythagoreanExponent: 1.83, SpreadScale: 3.5, TypicalTotal: 8.5, TotalStdDev: 3.0, SeasonLength: 162},
	SportFootball:   {PythagoreanExponent: 2.37, SpreadScale: 14.0, TypicalTotal: 45.0, TotalStdDev: 10.0, SeasonLength: 17},
	SportBasketball: {PythagoreanExponent: 13.91, SpreadScale: 12.0, TypicalTotal: 225.0, TotalStdDev: 18.0, SeasonLength: 82},
}

// Params returns the scoring parameters for a sport, falling back to
// basketball-like defaults for unknown sports.
func (s Sport) Params() SportParams {
	if p, ok := sportParams[s]; ok {
		return p
	}
	return SportParams{PythagoreanExponent: 2.0, SpreadScale: 10.0, TypicalTotal: 100.0, TotalStdDev: 12.0, SeasonLength: 82}
}

// Valid reports whether the sport is one of the supported values.
func (s Sport) Valid() bool {
	_, ok := sportParams[s]
	return ok
}

// StreakType distinguishes winning from losing streaks.
type StreakType string

const (
	StreakWin  StreakType = "W"
	StreakLoss StreakType = "L"
)

// Streak is the team's current run of consecutive results.
type Streak struct {
	Type   StreakType `db:"streak_type" json:"type"`
	Length int        `db:"streak_length" json:"length"`
}

// PsychState is the 4-tuple of psychological scalars tracked per team.
// All values live in [0,1]; 0.5 is the neutral baseline.
type PsychState struct {
	Confidence          float64 `db:"confidence" json:"confidence"`
	Focus               float64 `db:"focus" json:"focus"`
	Cohesion            float64 `db:"cohesion" json:"cohesion"`
	LeadershipInfluence float64 `db:"leadership_influence" json:"leadership_influence"`
}

// NeutralPsychState returns the neutral baseline used when no prior
// record exists for a team.
func NeutralPsychState() PsychState {
	return PsychState{Confidence: 0.5, Focus: 0.5, Cohesion: 0.5, LeadershipInfluence: 0.5}
}

// Composite collapses the 4-tuple into a single scalar in [0,1].
// Confidence dominates; leadership matters least game to game.
func (p PsychState) Composite() float64 {
	return 0.40*p.Confidence + 0.25*p.Focus + 0.20*p.Cohesion + 0.15*p.LeadershipInfluence
}

// Clamped returns a copy with every scalar clamped into [0,1].
func (p PsychState) Clamped() PsychState {
	return PsychState{
		Confidence:          clamp01(p.Confidence),
		Focus:               clamp01(p.Focus),
		Cohesion:            clamp01(p.Cohesion),
		LeadershipInfluence: clamp01(p.LeadershipInfluence),
	}
}

// TeamState is the long-lived per-team record. It is mutated only through
// the psychology update path after a completed game.
type TeamState struct {
	TeamID                 string     `db:"team_id" json:"team_id" validate:"required"`
	Sport                  Sport      `db:"sport" json:"sport" validate:"required"`
	Season                 int        `db:"season" json:"season" validate:"required"`
	Wins                   int        `db:"wins" json:"wins" validate:"gte=0"`
	Losses                 int        `db:"losses" json:"losses" validate:"gte=0"`
	PointsFor              float64    `db:"points_for" json:"points_for" validate:"gte=0"`
	PointsAgainst          float64    `db:"points_against" json:"points_against" validate:"gte=0"`
	Psych                  PsychState `db:"psych" json:"psych"`
	PythagoreanExpectation float64    `db:"pythagorean_expectation" json:"pythagorean_expectation"`
	RecentForm             []string   `db:"recent_form" json:"recent_form"`
	Streak                 Streak     `db:"streak" json:"streak"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// NewTeamState creates a team record with neutral defaults.
func NewTeamState(teamID string, sport Sport, season int) *TeamState {
	return &TeamState{
		TeamID:                 teamID,
		Sport:                  sport,
		Season:                 season,
		Psych:                  NeutralPsychState(),
		PythagoreanExpectation: 0.5,
		RecentForm:             []string{},
	}
}

// GamesPlayed returns the number of completed games on record.
func (t *TeamState) GamesPlayed() int {
	return t.Wins + t.Losses
}

// WinRate returns the observed win rate, 0.5 when no games are on record.
func (t *TeamState) WinRate() float64 {
	played := t.GamesPlayed()
	if played == 0 {
		return 0.5
	}
	return float64(t.Wins) / float64(played)
}

// RecomputePythagorean derives the points-based win-rate estimate from the
// scoring record. Zero points on both sides yields the neutral 0.5 rather
// than a divide-by-zero.
func (t *TeamState) RecomputePythagorean() float64 {
	exp := t.Sport.Params().PythagoreanExponent
	pf := math.Pow(t.PointsFor, exp)
	pa := math.Pow(t.PointsAgainst, exp)
	if pf+pa == 0 {
		t.PythagoreanExpectation = 0.5
		return 0.5
	}
	t.PythagoreanExpectation = pf / (pf + pa)
	return t.PythagoreanExpectation
}

// Momentum summarizes recent form as a value in [-1,1]: +1 for all recent
// wins, -1 for all recent losses, 0 with no form on record.
func (t *TeamState) Momentum() float64 {
	if len(t.RecentForm) == 0 {
		return 0
	}
	score := 0.0
	for _, r := range t.RecentForm {
		if r == string(StreakWin) {
			score++
		} else {
			score--
		}
	}
	return score / float64(len(t.RecentForm))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
