package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/hskvocab/pkg/models"
	"github.com/jmoiron/sqlx"
)

const vocabularyColumns = "id, hanzi, pinyin, meaning, hsk_level"

// VocabularyRepository handles database operations for vocabulary
type VocabularyRepository struct {
	db *sqlx.DB
}

// NewVocabularyRepository creates a new repository instance
func NewVocabularyRepository(db *sqlx.DB) *VocabularyRepository {
	return &VocabularyRepository{db: db}
}

// ListByTier returns every word of a tier ordered by id ascending
func (r *VocabularyRepository) ListByTier(ctx context.Context, tier int) ([]models.Vocabulary, error) {
	var words []models.Vocabulary
	query := r.db.Rebind("SELECT " + vocabularyColumns + " FROM vocabulary WHERE hsk_level = ? ORDER BY id ASC")
	if err := r.db.SelectContext(ctx, &words, query, tier); err != nil {
		return nil, fmt.Errorf("failed to list vocabulary for level %d: %w", tier, err)
	}
	return words, nil
}

// CountByTier returns the number of words in a tier
func (r *VocabularyRepository) CountByTier(ctx context.Context, tier int) (int, error) {
	var count int
	query := r.db.Rebind("SELECT COUNT(*) FROM vocabulary WHERE hsk_level = ?")
	if err := r.db.GetContext(ctx, &count, query, tier); err != nil {
		return 0, fmt.Errorf("failed to count vocabulary for level %d: %w", tier, err)
	}
	return count, nil
}

// Count returns the total number of words
func (r *VocabularyRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM vocabulary"); err != nil {
		return 0, fmt.Errorf("failed to count vocabulary: %w", err)
	}
	return count, nil
}

// CountsByTier returns the word count of every known tier, including empty ones
func (r *VocabularyRepository) CountsByTier(ctx context.Context) ([]models.TierCount, error) {
	var rows []models.TierCount
	err := r.db.SelectContext(ctx, &rows,
		"SELECT hsk_level, COUNT(*) AS count FROM vocabulary GROUP BY hsk_level")
	if err != nil {
		return nil, fmt.Errorf("failed to count vocabulary by level: %w", err)
	}

	byTier := make(map[int]int, len(rows))
	for _, row := range rows {
		byTier[row.Tier] = row.Count
	}

	counts := make([]models.TierCount, 0, models.MaxTier)
	for tier := models.MinTier; tier <= models.MaxTier; tier++ {
		counts = append(counts, models.TierCount{Tier: tier, Count: byTier[tier]})
	}
	return counts, nil
}

// GetByID returns a word by ID
func (r *VocabularyRepository) GetByID(ctx context.Context, id int64) (*models.Vocabulary, error) {
	var word models.Vocabulary
	query := r.db.Rebind("SELECT " + vocabularyColumns + " FROM vocabulary WHERE id = ?")
	err := r.db.GetContext(ctx, &word, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vocabulary %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vocabulary by ID: %w", err)
	}
	return &word, nil
}

// Search returns the words of a tier whose hanzi, pinyin or meaning contain
// the query (case-insensitive), flagged with whether userID learned them.
// An empty query lists the whole tier; userID 0 means an anonymous viewer.
func (r *VocabularyRepository) Search(ctx context.Context, tier int, search string, userID int64) ([]models.VocabularyEntry, error) {
	var (
		entries []models.VocabularyEntry
		b       strings.Builder
		args    = []interface{}{userID, tier}
	)

	b.WriteString(`
		SELECT v.id, v.hanzi, v.pinyin, v.meaning, v.hsk_level,
		       CASE WHEN p.vocab_id IS NOT NULL THEN 1 ELSE 0 END AS learned
		FROM vocabulary v
		LEFT JOIN progress p ON p.vocab_id = v.id AND p.user_id = ?
		WHERE v.hsk_level = ?`)

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		b.WriteString(" AND (LOWER(v.hanzi) LIKE ? OR LOWER(v.pinyin) LIKE ? OR LOWER(v.meaning) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	b.WriteString(" ORDER BY v.id ASC")

	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(b.String()), args...); err != nil {
		return nil, fmt.Errorf("failed to search vocabulary: %w", err)
	}
	return entries, nil
}

// Create inserts a new word and sets its ID
func (r *VocabularyRepository) Create(ctx context.Context, word *models.Vocabulary) error {
	query := r.db.Rebind(`
		INSERT INTO vocabulary (hanzi, pinyin, meaning, hsk_level)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := r.db.QueryRowxContext(ctx, query, word.Hanzi, word.Pinyin, word.Meaning, word.Tier).Scan(&word.ID)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary: %w", err)
	}
	return nil
}

// CreateAll inserts words in one transaction and sets their IDs. Nothing is
// stored when any insert fails.
func (r *VocabularyRepository) CreateAll(ctx context.Context, words []*models.Vocabulary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	query := tx.Rebind(`
		INSERT INTO vocabulary (hanzi, pinyin, meaning, hsk_level)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	ids := make([]int64, len(words))
	for i, word := range words {
		if err := tx.QueryRowxContext(ctx, query, word.Hanzi, word.Pinyin, word.Meaning, word.Tier).Scan(&ids[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to create vocabulary %q: %w", word.Hanzi, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	for i, word := range words {
		word.ID = ids[i]
	}
	return nil
}
