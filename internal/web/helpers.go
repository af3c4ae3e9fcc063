package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/hskvocab/internal/database"
	"github.com/example/hskvocab/internal/flashcard"
	"github.com/example/hskvocab/internal/quiz"
	"github.com/example/hskvocab/pkg/models"
	"github.com/gorilla/mux"
)

var (
	errUnauthorized       = errors.New("login required")
	errInvalidCredentials = errors.New("invalid email or password")
)

func writeServiceError(w http.ResponseWriter, err error) {
	var (
		sizeErr  *quiz.QuizSizeError
		stateErr *quiz.StateError
	)
	switch {
	case errors.As(err, &sizeErr):
		maxCount := sizeErr.Max
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: sizeErr.Error(), Max: &maxCount})
	case errors.Is(err, quiz.ErrNotStarted):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), State: quiz.NotStarted.String()})
	case errors.As(err, &stateErr):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), State: stateErr.State.String()})
	case errors.Is(err, quiz.ErrStaleAnswer):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), State: quiz.InProgress.String()})
	case errors.Is(err, quiz.ErrInsufficientDistractors), errors.Is(err, quiz.ErrWordMissing):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, database.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, database.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, errUnauthorized), errors.Is(err, errInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func parseTier(r *http.Request) (int, error) {
	tier, err := strconv.Atoi(mux.Vars(r)["tier"])
	if err != nil || !models.ValidTier(tier) {
		return 0, errors.New("hsk level must be between 1 and 6")
	}
	return tier, nil
}

func parseIntParam(r *http.Request, key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return parsed, nil
}

// parseCursor reads the flashcard cursor from ?next= or ?prev=
func parseCursor(r *http.Request) (int64, flashcard.Direction, error) {
	q := r.URL.Query()
	for _, key := range []string{"next", "prev"} {
		value := strings.TrimSpace(q.Get(key))
		if value == "" {
			continue
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return 0, flashcard.DirectionNone, errors.New(key + " must be a vocabulary id")
		}
		dir, _ := flashcard.ParseDirection(key)
		return id, dir, nil
	}
	return 0, flashcard.DirectionNone, nil
}

// paginate returns the items of page (1-based) and the page count
func paginate(items []models.VocabularyEntry, page, perPage int) ([]models.VocabularyEntry, int) {
	totalPages := (len(items) + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start >= len(items) {
		return []models.VocabularyEntry{}, totalPages
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}

func toFlashcardResponse(tier int, card *flashcard.Card) flashcardResponse {
	return flashcardResponse{
		Tier:      tier,
		Item:      card.Item,
		PrevID:    card.PrevID,
		NextID:    card.NextID,
		Learned:   card.Learned,
		EndOfTier: card.EndOfTier(),
	}
}

func toQuestionResponse(q *quiz.Question) questionResponse {
	resp := questionResponse{
		State:    quiz.InProgress,
		Tier:     q.Tier,
		Position: q.Position,
		Total:    q.Total,
		Prompt:   &promptResponse{Hanzi: q.Prompt(), Pinyin: q.Target.Pinyin},
		Options:  make([]optionResponse, 0, len(q.Options)),
	}
	for _, opt := range q.Options {
		resp.Options = append(resp.Options, optionResponse{ID: opt.ID, Meaning: opt.Meaning})
	}
	return resp
}
