package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/blazesportsintel/prediction-engine/internal/database"
	"github.com/blazesportsintel/prediction-engine/internal/models"
)

const errScanTeamState = "failed to scan team state: %w"

// PostgresTeamStateRepository implements TeamStateRepository for PostgreSQL.
type PostgresTeamStateRepository struct {
	db *database.DB
}

// NewPostgresTeamStateRepository creates a new team state repository.
func NewPostgresTeamStateRepository(db *database.DB) TeamStateRepository {
	return &PostgresTeamStateRepository{db: db}
}

// GetByTeamAndSeason retrieves one team's state for a season.
func (r *PostgresTeamStateRepository) GetByTeamAndSeason(ctx context.Context, teamID string, sport models.Sport, season int) (*models.TeamState, error) {
	query := `
		SELECT team_id, sport, season, wins, losses, points_for, points_against,
		       confidence, focus, cohesion, leadership_influence,
		       pythagorean_expectation, recent_form, streak_type, streak_length, updated_at
		FROM team_states
		WHERE team_id = $1 AND sport = $2 AND season = $3
	`

	state := &models.TeamState{}
	var recentForm []byte
	err := r.db.GetPool().QueryRow(ctx, query, teamID, sport, season).Scan(
		&state.TeamID, &state.Sport, &state.Season, &state.Wins, &state.Losses,
		&state.PointsFor, &state.PointsAgainst,
		&state.Psych.Confidence, &state.Psych.Focus, &state.Psych.Cohesion, &state.Psych.LeadershipInfluence,
		&state.PythagoreanExpectation, &recentForm, &state.Streak.Type, &state.Streak.Length, &state.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team state: %w", err)
	}

	if err := json.Unmarshal(recentForm, &state.RecentForm); err != nil {
		return nil, fmt.Errorf("failed to decode recent form: %w", err)
	}
	return state, nil
}

const upsertTeamStateQuery = `
	INSERT INTO team_states (team_id, sport, season, wins, losses, points_for, points_against,
	                         confidence, focus, cohesion, leadership_influence,
	                         pythagorean_expectation, recent_form, streak_type, streak_length, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
	ON CONFLICT (team_id, sport, season) DO UPDATE SET
		wins = EXCLUDED.wins,
		losses = EXCLUDED.losses,
		points_for = EXCLUDED.points_for,
		points_against = EXCLUDED.points_against,
		confidence = EXCLUDED.confidence,
		focus = EXCLUDED.focus,
		cohesion = EXCLUDED.cohesion,
		leadership_influence = EXCLUDED.leadership_influence,
		pythagorean_expectation = EXCLUDED.pythagorean_expectation,
		recent_form = EXCLUDED.recent_form,
		streak_type = EXCLUDED.streak_type,
		streak_length = EXCLUDED.streak_length,
		updated_at = NOW()
`

// Upsert inserts or replaces a team's state for a season.
func (r *PostgresTeamStateRepository) Upsert(ctx context.Context, state *models.TeamState) error {
	args, err := upsertTeamStateArgs(state)
	if err != nil {
		return err
	}
	if _, err := r.db.GetPool().Exec(ctx, upsertTeamStateQuery, args...); err != nil {
		return fmt.Errorf("failed to upsert team state: %w", err)
	}
	return nil
}

// UpsertMany replaces a batch of team states inside one transaction, so a
// season-wide pass like off-season decay lands for every team or none.
func (r *PostgresTeamStateRepository) UpsertMany(ctx context.Context, states []*models.TeamState) error {
	if len(states) == 0 {
		return nil
	}
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, state := range states {
			args, err := upsertTeamStateArgs(state)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, upsertTeamStateQuery, args...); err != nil {
				return fmt.Errorf("failed to upsert team state %s: %w", state.TeamID, err)
			}
		}
		return nil
	})
}

func upsertTeamStateArgs(state *models.TeamState) ([]interface{}, error) {
	recentForm, err := json.Marshal(state.RecentForm)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recent form: %w", err)
	}
	return []interface{}{
		state.TeamID, state.Sport, state.Season, state.Wins, state.Losses,
		state.PointsFor, state.PointsAgainst,
		state.Psych.Confidence, state.Psych.Focus, state.Psych.Cohesion, state.Psych.LeadershipInfluence,
		state.PythagoreanExpectation, recentForm, state.Streak.Type, state.Streak.Length,
	}, nil
}

// ListBySportAndSeason retrieves every team state for a sport's season.
func (r *PostgresTeamStateRepository) ListBySportAndSeason(ctx context.Context, sport models.Sport, season int) ([]*models.TeamState, error) {
	query := `
		SELECT team_id, sport, season, wins, losses, points_for, points_against,
		       confidence, focus, cohesion, leadership_influence,
		       pythagorean_expectation, recent_form, streak_type, streak_length, updated_at
		FROM team_states
		WHERE sport = $1 AND season = $2
		ORDER BY team_id
	`

	rows, err := r.db.GetPool().Query(ctx, query, sport, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query team states: %w", err)
	}
	defer rows.Close()

	var states []*models.TeamState
	for rows.Next() {
		state := &models.TeamState{}
		var recentForm []byte
		err := rows.Scan(
			&state.TeamID, &state.Sport, &state.Season, &state.Wins, &state.Losses,
			&state.PointsFor, &state.PointsAgainst,
			&state.Psych.Confidence, &state.Psych.Focus, &state.Psych.Cohesion, &state.Psych.LeadershipInfluence,
			&state.PythagoreanExpectation, &recentForm, &state.Streak.Type, &state.Streak.Length, &state.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanTeamState, err)
		}
		if err := json.Unmarshal(recentForm, &state.RecentForm); err != nil {
			return nil, fmt.Errorf("failed to decode recent form: %w", err)
		}
		states = append(states, state)
	}

	return states, rows.Err()
}
