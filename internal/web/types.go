package web

import (
	"github.com/example/hskvocab/internal/quiz"
	"github.com/example/hskvocab/pkg/models"
)

type errorResponse struct {
	Error string `json:"error"`
	State string `json:"state,omitempty"`
	Max   *int   `json:"max,omitempty"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type tiersResponse struct {
	Tiers []models.TierCount `json:"tiers"`
}

type vocabularyResponse struct {
	Tier       int                      `json:"hsk_level"`
	Search     string                   `json:"search"`
	Page       int                      `json:"page"`
	TotalPages int                      `json:"total_pages"`
	Total      int                      `json:"total"`
	Items      []models.VocabularyEntry `json:"items"`
}

type flashcardResponse struct {
	Tier      int                `json:"hsk_level"`
	Item      *models.Vocabulary `json:"item,omitempty"`
	PrevID    *int64             `json:"prev_id,omitempty"`
	NextID    *int64             `json:"next_id,omitempty"`
	Learned   bool               `json:"learned"`
	EndOfTier bool               `json:"end_of_tier"`
}

type markLearnedRequest struct {
	VocabID int64 `json:"vocab_id"`
}

type markLearnedResponse struct {
	Recorded bool              `json:"recorded"`
	Next     flashcardResponse `json:"next"`
}

type startQuizRequest struct {
	Count int `json:"count"`
}

type promptResponse struct {
	Hanzi  string `json:"hanzi"`
	Pinyin string `json:"pinyin"`
}

type optionResponse struct {
	ID      int64  `json:"id"`
	Meaning string `json:"meaning"`
}

type questionResponse struct {
	State     quiz.State       `json:"state"`
	Completed bool             `json:"completed"`
	Tier      int              `json:"hsk_level,omitempty"`
	Position  int              `json:"position,omitempty"`
	Total     int              `json:"total,omitempty"`
	Prompt    *promptResponse  `json:"prompt,omitempty"`
	Options   []optionResponse `json:"options,omitempty"`
}

type answerRequest struct {
	// Position of the question being answered, as in questionResponse
	Position int   `json:"position"`
	Answer   int64 `json:"answer"`
}

type answerResponse struct {
	Feedback *quiz.Feedback `json:"feedback"`
	Status   quiz.Status    `json:"status"`
}

type progressResponse struct {
	Tiers         []models.TierProgress `json:"tiers"`
	RecentQuizzes []models.QuizResult   `json:"recent_quizzes"`
}
