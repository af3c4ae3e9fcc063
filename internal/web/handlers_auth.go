package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/hskvocab/internal/database"
	"golang.org/x/crypto/bcrypt"
)

func (a *API) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	email := database.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := a.users.Create(r.Context(), email, string(hash))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email.String})
}

func (a *API) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	user, err := a.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, database.ErrNotFound) {
		writeServiceError(w, errInvalidCredentials)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeServiceError(w, errInvalidCredentials)
		return
	}

	sess := sessionFrom(r)
	sess.SignIn(user.ID, req.Remember)
	a.setSessionCookie(w, r, sess)

	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email.String})
}

func (a *API) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.SignOut()
	a.setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
