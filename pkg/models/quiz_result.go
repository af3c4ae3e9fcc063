package models

import "time"

// QuizResult records the outcome of a completed quiz
type QuizResult struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Tier        int       `json:"hsk_level" db:"hsk_level"`
	Total       int       `json:"total" db:"total"`
	Correct     int       `json:"correct" db:"correct"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// TierCount is the number of vocabulary items in a tier
type TierCount struct {
	Tier  int `json:"hsk_level" db:"hsk_level"`
	Count int `json:"count" db:"count"`
}
