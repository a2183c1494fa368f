package models

import "time"

// WinDistribution holds percentile cuts of the simulated per-run win totals.
type WinDistribution struct {
	Mean   float64 `json:"mean"`
	P5     float64 `json:"p5"`
	Median float64 `json:"median"`
	P95    float64 `json:"p95"`
}

// SeasonProjection is the aggregated output of a full-season simulation.
type SeasonProjection struct {
	TeamID                  string          `db:"team_id" json:"team_id"`
	Sport                   Sport           `db:"sport" json:"sport"`
	Season                  int             `db:"season" json:"season"`
	Runs                    int             `db:"runs" json:"runs"`
	GamesRemaining          int             `db:"games_remaining" json:"games_remaining"`
	Wins                    WinDistribution `db:"wins" json:"wins"`
	PlayoffProbability      float64         `db:"playoff_probability" json:"playoff_probability"`
	DivisionProbability     float64         `db:"division_probability" json:"division_probability"`
	ConferenceProbability   float64         `db:"conference_probability" json:"conference_probability"`
	ChampionshipProbability float64         `db:"championship_probability" json:"championship_probability"`
	GeneratedAt             time.Time       `db:"generated_at" json:"generated_at"`
}

// MultiSeasonProjection chains season projections through off-season decay.
type MultiSeasonProjection struct {
	TeamID      string             `json:"team_id"`
	Seasons     []SeasonProjection `json:"seasons"`
	GeneratedAt time.Time          `json:"generated_at"`
}
