package models

import "time"

// ProgressRecord marks a vocabulary item as learned by a user.
// There is at most one record per (UserID, VocabID) pair.
type ProgressRecord struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	VocabID   int64     `json:"vocab_id" db:"vocab_id"`
	LearnedAt time.Time `json:"learned_at" db:"learned_at"`
}

// TierProgress summarizes how much of a tier a user has learned
type TierProgress struct {
	Tier    int `json:"hsk_level" db:"hsk_level"`
	Total   int `json:"total" db:"total"`
	Learned int `json:"learned" db:"learned"`
	Percent int `json:"percent"`
}
