// Package session keeps per-browser state: the signed-in user and the
// active quiz.
package session

import (
	"sync"
	"time"

	"github.com/example/hskvocab/internal/quiz"
	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session id
const CookieName = "hsk_session"

// Session is the state attached to one session id
type Session struct {
	ID   string
	Quiz *quiz.Session

	mu       sync.Mutex
	userID   int64
	remember bool
	lastSeen time.Time
}

// UserID returns the signed-in user, 0 for anonymous sessions
func (s *Session) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Remembered reports whether the session uses the long remember-me lifetime
func (s *Session) Remembered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remember
}

// SignIn binds the session to a user
func (s *Session) SignIn(userID int64, remember bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.remember = remember
}

// SignOut drops the user and any quiz in progress
func (s *Session) SignOut() {
	s.mu.Lock()
	s.userID = 0
	s.remember = false
	s.mu.Unlock()

	s.Quiz.Reset()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, idle, remember time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ttl := idle
	if s.remember {
		ttl = remember
	}
	return now.Sub(s.lastSeen) > ttl
}

// Store is an in-memory session registry with idle expiry
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idleTTL     time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// NewStore creates a store whose sessions expire after idleTTL without
// requests, or rememberTTL for remember-me sessions.
func NewStore(idleTTL, rememberTTL time.Duration) *Store {
	return &Store{
		sessions:    make(map[string]*Session),
		idleTTL:     idleTTL,
		rememberTTL: rememberTTL,
		now:         time.Now,
	}
}

// Create registers a new anonymous session
func (st *Store) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Quiz:     quiz.NewSession(),
		lastSeen: st.now(),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the live session for id and refreshes its idle timer
func (st *Store) Get(id string) (*Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := st.now()
	if s.expired(now, st.idleTTL, st.rememberTTL) {
		st.Delete(id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Delete removes a session
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Sweep removes every session expired at now and returns how many were dropped
func (st *Store) Sweep(now time.Time) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.expired(now, st.idleTTL, st.rememberTTL) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of sessions held, expired or not
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// MaxAge is the cookie lifetime matching the session's expiry policy
func (st *Store) MaxAge(s *Session) time.Duration {
	if s.Remembered() {
		return st.rememberTTL
	}
	return st.idleTTL
}
