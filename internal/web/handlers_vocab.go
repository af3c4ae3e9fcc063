package web

import (
	"net/http"
	"strings"

	"github.com/example/hskvocab/pkg/models"
)

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) HandleTiers(w http.ResponseWriter, r *http.Request) {
	counts, err := a.vocab.CountsByTier(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tiersResponse{Tiers: counts})
}

func (a *API) HandleVocabulary(w http.ResponseWriter, r *http.Request) {
	tier, err := parseTier(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	page, err := parseIntParam(r, "page", 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	entries, err := a.vocab.Search(r.Context(), tier, search, sessionFrom(r).UserID())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items, totalPages := paginate(entries, page, vocabularyPage)
	writeJSON(w, http.StatusOK, vocabularyResponse{
		Tier:       tier,
		Search:     search,
		Page:       page,
		TotalPages: totalPages,
		Total:      len(entries),
		Items:      items,
	})
}

func (a *API) HandleProgress(w http.ResponseWriter, r *http.Request) {
	userID := sessionFrom(r).UserID()
	if userID == 0 {
		writeServiceError(w, errUnauthorized)
		return
	}

	tiers, err := a.stats.ProgressByTier(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	results, err := a.results.ListByUser(r.Context(), userID, recentQuizzes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if results == nil {
		results = []models.QuizResult{}
	}

	writeJSON(w, http.StatusOK, progressResponse{Tiers: tiers, RecentQuizzes: results})
}
