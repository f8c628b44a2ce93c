package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// UserStore applies submit-time counter increments to the users table. Rows
// are upserted so a first submit does not need a separate registration step.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) IncrementStats(ctx context.Context, userID string, attempts, correct, incorrect int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, total_attempts, correct_answers, incorrect_answers)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			total_attempts    = users.total_attempts + EXCLUDED.total_attempts,
			correct_answers   = users.correct_answers + EXCLUDED.correct_answers,
			incorrect_answers = users.incorrect_answers + EXCLUDED.incorrect_answers`,
		userID, attempts, correct, incorrect)
	if err != nil {
		return fmt.Errorf("increment stats: %w", err)
	}
	return nil
}

func (s *UserStore) IncrementPoints(ctx context.Context, userID string, points int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, rank_points, weekly_points)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO UPDATE SET
			rank_points   = users.rank_points + EXCLUDED.rank_points,
			weekly_points = users.weekly_points + EXCLUDED.weekly_points`,
		userID, points)
	if err != nil {
		return fmt.Errorf("increment points: %w", err)
	}
	return nil
}
