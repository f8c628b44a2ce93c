package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"quiz-attempt-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists grading results with the per-question breakdown as
// JSONB.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.GradingResult) error {
	content, err := json.Marshal(result.Content)
	if err != nil {
		return fmt.Errorf("marshal result content: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_results (quiz_id, user_id, submitted_at, obtained_points, time_taken_seconds, content)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		result.QuizID, result.UserID, result.SubmittedAt, result.ObtainedPoints, result.TimeTakenSeconds, content)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}
