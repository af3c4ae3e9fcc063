package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/hskvocab/pkg/models"
	"github.com/jmoiron/sqlx"
)

// QuizResultRepository handles database operations for completed quizzes
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Create inserts a new quiz result
func (r *QuizResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO quiz_results (user_id, hsk_level, total, correct, completed_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query,
		result.UserID,
		result.Tier,
		result.Total,
		result.Correct,
		result.CompletedAt,
	).Scan(&result.ID)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// ListByUser returns the most recent quiz results of a user, newest first.
// limit <= 0 returns all of them.
func (r *QuizResultRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]models.QuizResult, error) {
	var results []models.QuizResult

	query := `
		SELECT id, user_id, hsk_level, total, correct, completed_at
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY completed_at DESC, id DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	if err := r.db.SelectContext(ctx, &results, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}
