// Package web exposes the trainer as a JSON API over HTTP.
package web

import (
	"github.com/example/hskvocab/internal/database"
	"github.com/example/hskvocab/internal/flashcard"
	"github.com/example/hskvocab/internal/quiz"
	"github.com/example/hskvocab/internal/session"
	"github.com/jmoiron/sqlx"
)

const (
	defaultQuizSize = 10
	vocabularyPage  = 10
	recentQuizzes   = 10
)

// API holds the dependencies of every HTTP handler
type API struct {
	db       *sqlx.DB
	vocab    *database.VocabularyRepository
	users    *database.UserRepository
	stats    *database.StatisticsRepository
	results  *database.QuizResultRepository
	engine   *quiz.Engine
	cards    *flashcard.Navigator
	sessions *session.Store

	quizSize int
}

// NewAPI wires the handlers to the database and session store.
// rnd may be nil for a time-seeded source.
func NewAPI(db *sqlx.DB, sessions *session.Store, rnd quiz.Rand, quizSize int) *API {
	if quizSize <= 0 {
		quizSize = defaultQuizSize
	}
	vocab := database.NewVocabularyRepository(db)
	return &API{
		db:       db,
		vocab:    vocab,
		users:    database.NewUserRepository(db),
		stats:    database.NewStatisticsRepository(db),
		results:  database.NewQuizResultRepository(db),
		engine:   quiz.NewEngine(vocab, rnd),
		cards:    flashcard.NewNavigator(vocab, database.NewProgressRepository(db)),
		sessions: sessions,
		quizSize: quizSize,
	}
}
