package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/blazesportsintel/prediction-engine/internal/database"
	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL.
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository.
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Insert stores one prediction record. Snapshots and attributions are kept
// as JSONB so the stored record replays exactly what the caller saw.
func (r *PostgresPredictionRepository) Insert(ctx context.Context, p *models.GamePrediction) error {
	query := `
		INSERT INTO predictions (id, game_id, sport, predicted_at, home_snapshot, away_snapshot,
		                         home_win_probability, away_win_probability, interval_lower, interval_upper,
		                         predicted_spread, spread_confidence, predicted_total,
		                         explanation, shap_summary, model_version, simulation_count, compute_time_ms,
		                         rating_diff, market_probability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	home, err := json.Marshal(p.Home)
	if err != nil {
		return fmt.Errorf("failed to encode home snapshot: %w", err)
	}
	away, err := json.Marshal(p.Away)
	if err != nil {
		return fmt.Errorf("failed to encode away snapshot: %w", err)
	}
	shap, err := json.Marshal(p.ShapSummary)
	if err != nil {
		return fmt.Errorf("failed to encode attributions: %w", err)
	}

	_, err = r.db.GetPool().Exec(ctx, query,
		p.ID, p.GameID, p.Sport, p.PredictedAt, home, away,
		p.HomeWinProbability, p.AwayWinProbability, p.Interval.Lower, p.Interval.Upper,
		p.PredictedSpread, p.SpreadConfidence, p.PredictedTotal,
		p.Explanation, shap, p.ModelVersion, p.SimulationCount, p.ComputeTimeMS,
		p.RatingDiff, p.MarketProbability,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicateKey
		}
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// GetLatestByGameID retrieves the most recent prediction for a game.
func (r *PostgresPredictionRepository) GetLatestByGameID(ctx context.Context, gameID string) (*models.GamePrediction, error) {
	query := `
		SELECT id, game_id, sport, predicted_at, home_snapshot, away_snapshot,
		       home_win_probability, away_win_probability, interval_lower, interval_upper,
		       predicted_spread, spread_confidence, predicted_total,
		       explanation, shap_summary, model_version, simulation_count, compute_time_ms
		FROM predictions
		WHERE game_id = $1
		ORDER BY predicted_at DESC
		LIMIT 1
	`

	p := &models.GamePrediction{}
	var home, away, shap []byte
	err := r.db.GetPool().QueryRow(ctx, query, gameID).Scan(
		&p.ID, &p.GameID, &p.Sport, &p.PredictedAt, &home, &away,
		&p.HomeWinProbability, &p.AwayWinProbability, &p.Interval.Lower, &p.Interval.Upper,
		&p.PredictedSpread, &p.SpreadConfidence, &p.PredictedTotal,
		&p.Explanation, &shap, &p.ModelVersion, &p.SimulationCount, &p.ComputeTimeMS,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	if err := json.Unmarshal(home, &p.Home); err != nil {
		return nil, fmt.Errorf("failed to decode home snapshot: %w", err)
	}
	if err := json.Unmarshal(away, &p.Away); err != nil {
		return nil, fmt.Errorf("failed to decode away snapshot: %w", err)
	}
	if err := json.Unmarshal(shap, &p.ShapSummary); err != nil {
		return nil, fmt.Errorf("failed to decode attributions: %w", err)
	}
	return p, nil
}

// RecordOutcome marks the real result against every stored prediction for
// a game, turning them into calibration samples.
func (r *PostgresPredictionRepository) RecordOutcome(ctx context.Context, gameID string, homeWon bool) error {
	query := `UPDATE predictions SET home_won = $2, outcome_recorded_at = NOW() WHERE game_id = $1`

	tag, err := r.db.GetPool().Exec(ctx, query, gameID, homeWon)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PostgresSampleRepository implements SampleRepository for PostgreSQL.
type PostgresSampleRepository struct {
	db *database.DB
}

// NewPostgresSampleRepository creates a new sample repository.
func NewPostgresSampleRepository(db *database.DB) SampleRepository {
	return &PostgresSampleRepository{db: db}
}

const sampleColumns = `
	SELECT p.game_id, p.sport, p.home_win_probability,
	       ABS(p.home_win_probability - 0.5) * 2 AS confidence,
	       COALESCE(p.rating_diff, 0), p.market_probability, p.home_won, p.predicted_at
	FROM predictions p
	WHERE p.home_won IS NOT NULL
`

// GetByDateRange retrieves scored samples for a sport inside a window.
func (r *PostgresSampleRepository) GetByDateRange(ctx context.Context, sport models.Sport, start, end time.Time) ([]models.PredictionSample, error) {
	query := sampleColumns + ` AND p.sport = $1 AND p.predicted_at >= $2 AND p.predicted_at < $3 ORDER BY p.predicted_at`

	rows, err := r.db.GetPool().Query(ctx, query, sport, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows)
}

// GetRecent retrieves the newest scored samples for a sport.
func (r *PostgresSampleRepository) GetRecent(ctx context.Context, sport models.Sport, limit int) ([]models.PredictionSample, error) {
	query := sampleColumns + ` AND p.sport = $1 ORDER BY p.predicted_at DESC LIMIT $2`

	rows, err := r.db.GetPool().Query(ctx, query, sport, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent samples: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows)
}

func scanSamples(rows pgx.Rows) ([]models.PredictionSample, error) {
	var samples []models.PredictionSample
	for rows.Next() {
		var s models.PredictionSample
		err := rows.Scan(
			&s.GameID, &s.Sport, &s.PredictedProbability, &s.Confidence,
			&s.RatingDiff, &s.MarketProbability, &s.HomeWon, &s.PredictedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
