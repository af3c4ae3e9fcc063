package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/hskvocab/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ErrEmailTaken is returned when signing up with an email that already has an account
var ErrEmailTaken = errors.New("email already registered")

const userColumns = "id, email, password_hash, telegram_id, created_at"

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a web user. The email is normalized to lower case.
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	email = NormalizeEmail(email)

	if _, err := r.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Email:        sql.NullString{String: email, Valid: true},
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	query := r.db.Rebind(`
		INSERT INTO users (email, password_hash, created_at)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	if err := r.db.QueryRowxContext(ctx, query, user.Email, user.PasswordHash, user.CreatedAt).Scan(&user.ID); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail returns a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", NormalizeEmail(email))
}

// GetOrCreateByTelegramID returns the user bound to a Telegram account, creating it on first contact
func (r *UserRepository) GetOrCreateByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := r.db.Rebind(`
		INSERT INTO users (telegram_id, created_at)
		VALUES (?, ?)
		ON CONFLICT (telegram_id) DO NOTHING
	`)
	if _, err := r.db.ExecContext(ctx, query, telegramID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to create telegram user: %w", err)
	}
	return r.getOne(ctx, "telegram_id = ?", telegramID)
}

func (r *UserRepository) getOne(ctx context.Context, condition string, arg interface{}) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + condition)
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
