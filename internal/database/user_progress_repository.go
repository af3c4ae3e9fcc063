package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/hskvocab/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ProgressRepository handles database operations for learned-word progress
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// HasLearned reports whether the user already marked the word as learned
func (r *ProgressRepository) HasLearned(ctx context.Context, userID, vocabID int64) (bool, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM progress WHERE user_id = ? AND vocab_id = ?")
	if err := r.db.GetContext(ctx, &count, query, userID, vocabID); err != nil {
		return false, fmt.Errorf("failed to check progress: %w", err)
	}
	return count > 0, nil
}

// MarkLearned records the word as learned. It is idempotent: the UNIQUE
// (user_id, vocab_id) constraint swallows duplicates and created is false.
func (r *ProgressRepository) MarkLearned(ctx context.Context, userID, vocabID int64) (created bool, err error) {
	query := r.db.Rebind(`
		INSERT INTO progress (user_id, vocab_id, learned, learned_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT (user_id, vocab_id) DO NOTHING
	`)
	result, err := r.db.ExecContext(ctx, query, userID, vocabID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("failed to mark vocabulary %d as learned: %w", vocabID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListByUser returns all progress records of a user, oldest first
func (r *ProgressRepository) ListByUser(ctx context.Context, userID int64) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	query := r.db.Rebind(`
		SELECT id, user_id, vocab_id, learned_at
		FROM progress
		WHERE user_id = ?
		ORDER BY id ASC
	`)
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return records, nil
}
