package web

import (
	"log"
	"net/http"

	"github.com/example/hskvocab/pkg/models"
)

func (a *API) HandleStartQuiz(w http.ResponseWriter, r *http.Request) {
	tier, err := parseTier(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	req := startQuizRequest{Count: a.quizSize}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	qs := sessionFrom(r).Quiz
	if err := a.engine.Start(r.Context(), qs, tier, req.Count); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, qs.Status())
}

func (a *API) HandleQuizStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Quiz.Status())
}

func (a *API) HandleQuestion(w http.ResponseWriter, r *http.Request) {
	qs := sessionFrom(r).Quiz
	q, err := a.engine.CurrentQuestion(r.Context(), qs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if q == nil {
		st := qs.Status()
		writeJSON(w, http.StatusOK, questionResponse{State: st.State, Completed: true, Tier: st.Tier, Total: st.Total})
		return
	}
	writeJSON(w, http.StatusOK, toQuestionResponse(q))
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	qs := sessionFrom(r).Quiz
	fb, err := a.engine.SubmitAnswer(r.Context(), qs, req.Position, req.Answer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Feedback: fb, Status: qs.Status()})
}

func (a *API) HandleNext(w http.ResponseWriter, r *http.Request) {
	qs := sessionFrom(r).Quiz
	if _, err := a.engine.Advance(qs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qs.Status())
}

func (a *API) HandleResult(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	res, err := a.engine.Result(sess.Quiz)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if userID := sess.UserID(); userID != 0 {
		record := &models.QuizResult{UserID: userID, Tier: res.Tier, Total: res.Total, Correct: res.Correct}
		if err := a.results.Create(r.Context(), record); err != nil {
			log.Printf("failed to save quiz result for user %d: %v", userID, err)
		}
	}

	writeJSON(w, http.StatusOK, res)
}

func (a *API) HandleAbandonQuiz(w http.ResponseWriter, r *http.Request) {
	a.engine.Abandon(sessionFrom(r).Quiz)
	w.WriteHeader(http.StatusNoContent)
}
