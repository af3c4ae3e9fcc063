package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/hskvocab/pkg/models"
)

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	user, err := repo.Create(ctx, " Learner@Example.com ", "hash")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.ID <= 0 {
		t.Error("Expected positive ID after insert")
	}

	if _, err := repo.Create(ctx, "learner@example.com", "other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	got, err := repo.GetByEmail(ctx, "LEARNER@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != user.ID || got.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestGetOrCreateByTelegramIDIsStable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	first, err := repo.GetOrCreateByTelegramID(ctx, 777)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := repo.GetOrCreateByTelegramID(ctx, 777)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("telegram user ids differ: %d vs %d", first.ID, second.ID)
	}
	if !second.TelegramID.Valid || second.TelegramID.Int64 != 777 {
		t.Errorf("unexpected telegram id: %+v", second.TelegramID)
	}
	if second.Email.Valid {
		t.Error("telegram user should not have an email")
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQuizResultsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, err := NewUserRepository(db).Create(ctx, "quiz@example.com", "hash")
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	repo := NewQuizResultRepository(db)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, correct := range []int{3, 5, 8} {
		result := &models.QuizResult{
			UserID:      user.ID,
			Tier:        1,
			Total:       10,
			Correct:     correct,
			CompletedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, result); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if result.ID <= 0 {
			t.Fatalf("result %d has no id", i)
		}
	}

	results, err := repo.ListByUser(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Correct != 8 || results[1].Correct != 5 {
		t.Errorf("unexpected order: %+v", results)
	}
}
