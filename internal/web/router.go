package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the HTTP handler of the application
func NewRouter(api *API) http.Handler {
	r := mux.NewRouter()
	r.Use(RecoverMiddleware, LoggingMiddleware)

	r.HandleFunc("/health", api.HandleHealth).Methods(http.MethodGet)

	s := r.PathPrefix("/api").Subrouter()
	s.Use(api.SessionMiddleware)

	s.HandleFunc("/signup", api.HandleSignup).Methods(http.MethodPost)
	s.HandleFunc("/login", api.HandleLogin).Methods(http.MethodPost)
	s.HandleFunc("/logout", api.HandleLogout).Methods(http.MethodPost)

	s.HandleFunc("/tiers", api.HandleTiers).Methods(http.MethodGet)
	s.HandleFunc("/tiers/{tier:[0-9]+}/vocabulary", api.HandleVocabulary).Methods(http.MethodGet)
	s.HandleFunc("/tiers/{tier:[0-9]+}/flashcards", api.HandleFlashcard).Methods(http.MethodGet)
	s.HandleFunc("/tiers/{tier:[0-9]+}/flashcards/learned", api.HandleMarkLearned).Methods(http.MethodPost)
	s.HandleFunc("/tiers/{tier:[0-9]+}/quiz", api.HandleStartQuiz).Methods(http.MethodPost)

	s.HandleFunc("/quiz", api.HandleQuizStatus).Methods(http.MethodGet)
	s.HandleFunc("/quiz", api.HandleAbandonQuiz).Methods(http.MethodDelete)
	s.HandleFunc("/quiz/question", api.HandleQuestion).Methods(http.MethodGet)
	s.HandleFunc("/quiz/answer", api.HandleAnswer).Methods(http.MethodPost)
	s.HandleFunc("/quiz/next", api.HandleNext).Methods(http.MethodPost)
	s.HandleFunc("/quiz/result", api.HandleResult).Methods(http.MethodGet)

	s.HandleFunc("/progress", api.HandleProgress).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return r
}
