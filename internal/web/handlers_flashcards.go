package web

import (
	"net/http"
)

func (a *API) HandleFlashcard(w http.ResponseWriter, r *http.Request) {
	tier, err := parseTier(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	cursor, dir, err := parseCursor(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	card, err := a.cards.NavigateFor(r.Context(), sessionFrom(r).UserID(), tier, cursor, dir)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFlashcardResponse(tier, card))
}

func (a *API) HandleMarkLearned(w http.ResponseWriter, r *http.Request) {
	tier, err := parseTier(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req markLearnedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.VocabID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "vocab_id is required"})
		return
	}

	userID := sessionFrom(r).UserID()
	if userID != 0 {
		// the word must exist before a progress row can reference it
		if _, err := a.vocab.GetByID(r.Context(), req.VocabID); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	card, recorded, err := a.cards.MarkLearnedAndNext(r.Context(), userID, tier, req.VocabID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, markLearnedResponse{
		Recorded: recorded,
		Next:     toFlashcardResponse(tier, card),
	})
}
