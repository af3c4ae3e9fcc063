package database

import (
	"context"
	"fmt"

	"github.com/example/hskvocab/pkg/models"
	"github.com/jmoiron/sqlx"
)

// StatisticsRepository aggregates a user's progress across tiers
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// ProgressByTier returns, for every known tier, how many words it holds and
// how many of them the user has learned. Empty tiers report 0 percent.
func (r *StatisticsRepository) ProgressByTier(ctx context.Context, userID int64) ([]models.TierProgress, error) {
	var rows []models.TierProgress
	query := r.db.Rebind(`
		SELECT v.hsk_level, COUNT(*) AS total, COUNT(p.vocab_id) AS learned
		FROM vocabulary v
		LEFT JOIN progress p ON p.vocab_id = v.id AND p.user_id = ? AND p.learned = 1
		GROUP BY v.hsk_level
	`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get progress statistics: %w", err)
	}

	byTier := make(map[int]models.TierProgress, len(rows))
	for _, row := range rows {
		byTier[row.Tier] = row
	}

	progress := make([]models.TierProgress, 0, models.MaxTier)
	for tier := models.MinTier; tier <= models.MaxTier; tier++ {
		row := byTier[tier]
		row.Tier = tier
		row.Percent = percent(row.Learned, row.Total)
		progress = append(progress, row)
	}
	return progress, nil
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return part * 100 / total
}
