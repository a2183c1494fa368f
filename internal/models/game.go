package models

// GameContext carries the immutable per-game context supplied with each
// prediction request.
type GameContext struct {
	GameID       string  `json:"game_id" validate:"required"`
	Sport        Sport   `json:"sport" validate:"required"`
	Season       int     `json:"season"`
	IsRivalry    bool    `json:"is_rivalry"`
	IsPlayoff    bool    `json:"is_playoff"`
	HomeRestDays int     `json:"home_rest_days"`
	AwayRestDays int     `json:"away_rest_days"`
	TravelMiles  float64 `json:"travel_miles"`
}

// GameResult is the binary outcome of a completed game from one team's
// perspective.
type GameResult string

const (
	ResultWin  GameResult = "W"
	ResultLoss GameResult = "L"
)

// GameOutcome describes a completed game as input to the psychology state
// update. ExpectationGap is actual margin minus expected margin, signed from
// the updating team's perspective.
type GameOutcome struct {
	Result            GameResult `json:"result" validate:"required,oneof=W L"`
	Margin            float64    `json:"margin"`
	WasUpset          bool       `json:"was_upset"`
	ExpectationGap    float64    `json:"expectation_gap"`
	PerformanceRating float64    `json:"performance_rating" validate:"gte=0,lte=1"`
	OpponentStrength  float64    `json:"opponent_strength" validate:"gte=0,lte=1"`
	IsPlayoff         bool       `json:"is_playoff"`
	IsRivalry         bool       `json:"is_rivalry"`
	PointsScored      float64    `json:"points_scored"`
	PointsAllowed     float64    `json:"points_allowed"`
}

// Won reports whether the outcome was a win.
func (o GameOutcome) Won() bool {
	return o.Result == ResultWin
}

// ScheduledGame is one entry in a team's season schedule.
type ScheduledGame struct {
	GameID         string     `json:"game_id"`
	OpponentID     string     `json:"opponent_id" validate:"required"`
	IsHome         bool       `json:"is_home"`
	Completed      bool       `json:"completed"`
	Result         GameResult `json:"result,omitempty"`
	IsDivisionGame bool       `json:"is_division_game"`
}
