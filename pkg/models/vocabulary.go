package models

// Vocabulary represents a single HSK word as seeded into the store
type Vocabulary struct {
	ID      int64  `json:"id" db:"id"`
	Hanzi   string `json:"hanzi" db:"hanzi"`
	Pinyin  string `json:"pinyin" db:"pinyin"`
	Meaning string `json:"meaning" db:"meaning"`
	Tier    int    `json:"hsk_level" db:"hsk_level"` // 1-6
}

// VocabularyEntry is a vocabulary row annotated with the viewer's learned flag
type VocabularyEntry struct {
	Vocabulary
	Learned bool `json:"learned" db:"learned"`
}

// MinTier and MaxTier bound the HSK levels the application knows about
const (
	MinTier = 1
	MaxTier = 6
)

// ValidTier reports whether tier is one of the known HSK levels
func ValidTier(tier int) bool {
	return tier >= MinTier && tier <= MaxTier
}
