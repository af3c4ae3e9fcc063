package models

import (
	"database/sql"
	"time"
)

// User represents an account that can record progress.
// Web users sign up with an email, Telegram users are keyed by their chat user id.
type User struct {
	ID           int64          `json:"id" db:"id"`
	Email        sql.NullString `json:"-" db:"email"`
	PasswordHash string         `json:"-" db:"password_hash"`
	TelegramID   sql.NullInt64  `json:"-" db:"telegram_id"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
