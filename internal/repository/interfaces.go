// Package repository provides data access for team states, predictions,
// and calibration samples.
package repository

import (
	"context"
	"time"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// TeamStateRepository defines the interface for team state data access.
type TeamStateRepository interface {
	GetByTeamAndSeason(ctx context.Context, teamID string, sport models.Sport, season int) (*models.TeamState, error)
	Upsert(ctx context.Context, state *models.TeamState) error
	UpsertMany(ctx context.Context, states []*models.TeamState) error
	ListBySportAndSeason(ctx context.Context, sport models.Sport, season int) ([]*models.TeamState, error)
}

// PredictionRepository defines the interface for prediction data access.
type PredictionRepository interface {
	Insert(ctx context.Context, prediction *models.GamePrediction) error
	GetLatestByGameID(ctx context.Context, gameID string) (*models.GamePrediction, error)
	RecordOutcome(ctx context.Context, gameID string, homeWon bool) error
}

// SampleRepository defines the interface for calibration sample access.
// Samples are predictions joined with recorded outcomes.
type SampleRepository interface {
	GetByDateRange(ctx context.Context, sport models.Sport, start, end time.Time) ([]models.PredictionSample, error)
	GetRecent(ctx context.Context, sport models.Sport, limit int) ([]models.PredictionSample, error)
}

// Repositories bundles every repository behind one handle.
type Repositories struct {
	TeamStates  TeamStateRepository
	Predictions PredictionRepository
	Samples     SampleRepository
}
