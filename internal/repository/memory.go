package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// MemoryTeamStateRepository is an in-memory TeamStateRepository used by
// offline CLI runs and tests.
type MemoryTeamStateRepository struct {
	mu     sync.RWMutex
	states map[string]*models.TeamState
}

// NewMemoryTeamStateRepository creates an empty in-memory store.
func NewMemoryTeamStateRepository() *MemoryTeamStateRepository {
	return &MemoryTeamStateRepository{states: make(map[string]*models.TeamState)}
}

func teamKey(teamID string, sport models.Sport, season int) string {
	return teamID + "|" + string(sport) + "|" + strconv.Itoa(season)
}

// GetByTeamAndSeason retrieves a stored state, models.ErrNotFound when absent.
func (r *MemoryTeamStateRepository) GetByTeamAndSeason(ctx context.Context, teamID string, sport models.Sport, season int) (*models.TeamState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[teamKey(teamID, sport, season)]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *state
	return &copied, nil
}

// Upsert stores a copy of the state.
func (r *MemoryTeamStateRepository) Upsert(ctx context.Context, state *models.TeamState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *state
	copied.UpdatedAt = time.Now()
	r.states[teamKey(state.TeamID, state.Sport, state.Season)] = &copied
	return nil
}

// UpsertMany stores copies of every state under one lock.
func (r *MemoryTeamStateRepository) UpsertMany(ctx context.Context, states []*models.TeamState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, state := range states {
		copied := *state
		copied.UpdatedAt = time.Now()
		r.states[teamKey(state.TeamID, state.Sport, state.Season)] = &copied
	}
	return nil
}

// ListBySportAndSeason returns every stored state for a sport's season.
func (r *MemoryTeamStateRepository) ListBySportAndSeason(ctx context.Context, sport models.Sport, season int) ([]*models.TeamState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var states []*models.TeamState
	for _, s := range r.states {
		if s.Sport == sport && s.Season == season {
			copied := *s
			states = append(states, &copied)
		}
	}
	sort.Slice(states, func(a, b int) bool { return states[a].TeamID < states[b].TeamID })
	return states, nil
}

// MemoryPredictionRepository is an in-memory PredictionRepository and
// SampleRepository used by offline CLI runs and tests.
type MemoryPredictionRepository struct {
	mu          sync.RWMutex
	predictions []storedPrediction
}

type storedPrediction struct {
	prediction models.GamePrediction
	homeWon    *bool
}

// NewMemoryPredictionRepository creates an empty in-memory store.
func NewMemoryPredictionRepository() *MemoryPredictionRepository {
	return &MemoryPredictionRepository{}
}

// Insert stores a copy of the prediction.
func (r *MemoryPredictionRepository) Insert(ctx context.Context, p *models.GamePrediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predictions = append(r.predictions, storedPrediction{prediction: *p})
	return nil
}

// GetLatestByGameID retrieves the most recent prediction for a game.
func (r *MemoryPredictionRepository) GetLatestByGameID(ctx context.Context, gameID string) (*models.GamePrediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.GamePrediction
	for i := range r.predictions {
		p := &r.predictions[i].prediction
		if p.GameID != gameID {
			continue
		}
		if latest == nil || p.PredictedAt.After(latest.PredictedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

// RecordOutcome marks the real result for every prediction of a game.
func (r *MemoryPredictionRepository) RecordOutcome(ctx context.Context, gameID string, homeWon bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for i := range r.predictions {
		if r.predictions[i].prediction.GameID == gameID {
			won := homeWon
			r.predictions[i].homeWon = &won
			found = true
		}
	}
	if !found {
		return models.ErrNotFound
	}
	return nil
}

// GetByDateRange returns scored samples inside a window.
func (r *MemoryPredictionRepository) GetByDateRange(ctx context.Context, sport models.Sport, start, end time.Time) ([]models.PredictionSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var samples []models.PredictionSample
	for _, sp := range r.predictions {
		p := sp.prediction
		if sp.homeWon == nil || p.Sport != sport {
			continue
		}
		if p.PredictedAt.Before(start) || !p.PredictedAt.Before(end) {
			continue
		}
		samples = append(samples, toSample(p, *sp.homeWon))
	}
	sort.Slice(samples, func(a, b int) bool { return samples[a].PredictedAt.Before(samples[b].PredictedAt) })
	return samples, nil
}

// GetRecent returns the newest scored samples.
func (r *MemoryPredictionRepository) GetRecent(ctx context.Context, sport models.Sport, limit int) ([]models.PredictionSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var samples []models.PredictionSample
	for _, sp := range r.predictions {
		if sp.homeWon == nil || sp.prediction.Sport != sport {
			continue
		}
		samples = append(samples, toSample(sp.prediction, *sp.homeWon))
	}
	sort.Slice(samples, func(a, b int) bool { return samples[a].PredictedAt.After(samples[b].PredictedAt) })
	if len(samples) > limit {
		samples = samples[:limit]
	}
	return samples, nil
}

func toSample(p models.GamePrediction, homeWon bool) models.PredictionSample {
	confidence := p.HomeWinProbability - 0.5
	if confidence < 0 {
		confidence = -confidence
	}
	return models.PredictionSample{
		GameID:               p.GameID,
		Sport:                p.Sport,
		PredictedProbability: p.HomeWinProbability,
		Confidence:           confidence * 2,
		RatingDiff:           p.RatingDiff,
		MarketProbability:    p.MarketProbability,
		HomeWon:              homeWon,
		PredictedAt:          p.PredictedAt,
	}
}
