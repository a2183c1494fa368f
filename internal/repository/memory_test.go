package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

func TestMemoryTeamStateRoundTrip(t *testing.T) {
	repo := NewMemoryTeamStateRepository()
	ctx := context.Background()

	_, err := repo.GetByTeamAndSeason(ctx, "MEM", models.SportBasketball, 2025)
	assert.ErrorIs(t, err, models.ErrNotFound)

	state := models.NewTeamState("MEM", models.SportBasketball, 2025)
	state.Wins = 10
	require.NoError(t, repo.Upsert(ctx, state))

	got, err := repo.GetByTeamAndSeason(ctx, "MEM", models.SportBasketball, 2025)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Wins)

	// Mutating the returned copy must not touch the stored state.
	got.Wins = 99
	again, err := repo.GetByTeamAndSeason(ctx, "MEM", models.SportBasketball, 2025)
	require.NoError(t, err)
	assert.Equal(t, 10, again.Wins)
}

func TestMemoryTeamStateListSorted(t *testing.T) {
	repo := NewMemoryTeamStateRepository()
	ctx := context.Background()
	for _, id := range []string{"DAL", "ATL", "MEM"} {
		require.NoError(t, repo.Upsert(ctx, models.NewTeamState(id, models.SportBasketball, 2025)))
	}
	require.NoError(t, repo.Upsert(ctx, models.NewTeamState("HOU", models.SportBaseball, 2025)))

	states, err := repo.ListBySportAndSeason(ctx, models.SportBasketball, 2025)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.Equal(t, "ATL", states[0].TeamID)
	assert.Equal(t, "MEM", states[2].TeamID)
}

func TestMemoryTeamStateUpsertMany(t *testing.T) {
	repo := NewMemoryTeamStateRepository()
	ctx := context.Background()

	batch := []*models.TeamState{
		models.NewTeamState("MEM", models.SportBasketball, 2026),
		models.NewTeamState("DAL", models.SportBasketball, 2026),
	}
	batch[0].Wins = 50
	require.NoError(t, repo.UpsertMany(ctx, batch))

	states, err := repo.ListBySportAndSeason(ctx, models.SportBasketball, 2026)
	require.NoError(t, err)
	require.Len(t, states, 2)

	mem, err := repo.GetByTeamAndSeason(ctx, "MEM", models.SportBasketball, 2026)
	require.NoError(t, err)
	assert.Equal(t, 50, mem.Wins)
}

func storedPredictionFor(gameID string, p float64, at time.Time) *models.GamePrediction {
	return &models.GamePrediction{
		ID:                 uuid.New(),
		GameID:             gameID,
		Sport:              models.SportBasketball,
		PredictedAt:        at,
		HomeWinProbability: p,
		AwayWinProbability: 1 - p,
	}
}

func TestMemoryPredictionLatestByGame(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx := context.Background()
	base := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, storedPredictionFor("g1", 0.6, base)))
	require.NoError(t, repo.Insert(ctx, storedPredictionFor("g1", 0.65, base.Add(time.Hour))))

	latest, err := repo.GetLatestByGameID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 0.65, latest.HomeWinProbability)

	_, err = repo.GetLatestByGameID(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemorySamplesRequireRecordedOutcome(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx := context.Background()
	base := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, storedPredictionFor("g1", 0.7, base)))
	require.NoError(t, repo.Insert(ctx, storedPredictionFor("g2", 0.4, base.Add(time.Hour))))

	samples, err := repo.GetRecent(ctx, models.SportBasketball, 10)
	require.NoError(t, err)
	assert.Empty(t, samples, "unscored predictions are not samples")

	require.NoError(t, repo.RecordOutcome(ctx, "g1", true))
	samples, err = repo.GetRecent(ctx, models.SportBasketball, 10)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "g1", samples[0].GameID)
	assert.True(t, samples[0].HomeWon)
	assert.InDelta(t, 0.4, samples[0].Confidence, 1e-9)

	assert.ErrorIs(t, repo.RecordOutcome(ctx, "missing", false), models.ErrNotFound)
}

func TestMemorySamplesDateRange(t *testing.T) {
	repo := NewMemoryPredictionRepository()
	ctx := context.Background()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		p := storedPredictionFor("g"+string(rune('1'+i)), 0.6, base.AddDate(0, 0, i))
		require.NoError(t, repo.Insert(ctx, p))
		require.NoError(t, repo.RecordOutcome(ctx, p.GameID, true))
	}

	samples, err := repo.GetByDateRange(ctx, models.SportBasketball, base.AddDate(0, 0, 1), base.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.True(t, samples[0].PredictedAt.Before(samples[2].PredictedAt))
}
