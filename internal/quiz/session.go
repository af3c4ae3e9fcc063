package quiz

import (
	"fmt"
	"sync"

	"github.com/example/hskvocab/pkg/models"
)

// State is the position of a Session in the quiz lifecycle
type State int

const (
	NotStarted State = iota
	InProgress
	AwaitingNext
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case AwaitingNext:
		return "awaiting_next"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText lets State appear as its name in JSON payloads
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name produced by MarshalText
func (s *State) UnmarshalText(text []byte) error {
	for st := NotStarted; st <= Completed; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown quiz state %q", text)
}

// Session holds the state of one user's quiz. The zero value is a
// NotStarted session ready for Start. All Engine operations lock it, so a
// Session may be shared between concurrent requests.
type Session struct {
	mu sync.Mutex

	state    State
	tier     int
	words    []int64
	cursor   int
	correct  int
	question *Question
	feedback *Feedback
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{}
}

// Question is one multiple-choice question: the target word and four
// options (the target plus three distractors from the same tier) in
// presentation order.
type Question struct {
	Target   models.Vocabulary   `json:"-"`
	Options  []models.Vocabulary `json:"options"`
	Position int                 `json:"position"` // 1-based
	Total    int                 `json:"total"`
	Tier     int                 `json:"hsk_level"`
}

// Prompt is what the learner is asked to recognize
func (q *Question) Prompt() string {
	return q.Target.Hanzi
}

func (q *Question) clone() *Question {
	c := *q
	c.Options = append([]models.Vocabulary(nil), q.Options...)
	return &c
}

// Feedback is the grading of a submitted answer
type Feedback struct {
	Correct   bool   `json:"correct"`
	Message   string `json:"message"`
	ChosenID  int64  `json:"chosen_id"`
	CorrectID int64  `json:"correct_id"`
}

// Result is the summary of a completed quiz
type Result struct {
	Tier    int `json:"hsk_level"`
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// Status is a read-only snapshot of a Session
type Status struct {
	State    State     `json:"state"`
	Tier     int       `json:"hsk_level,omitempty"`
	Total    int       `json:"total"`
	Cursor   int       `json:"cursor"`
	Correct  int       `json:"correct"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// Status returns a snapshot of the session
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:   s.state,
		Tier:    s.tier,
		Total:   len(s.words),
		Cursor:  s.cursor,
		Correct: s.correct,
	}
	if s.feedback != nil {
		fb := *s.feedback
		st.Feedback = &fb
	}
	return st
}

// Words returns a copy of the word sequence fixed at Start
func (s *Session) Words() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.words...)
}

// Reset discards any quiz held by the session
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.state = NotStarted
	s.tier = 0
	s.words = nil
	s.cursor = 0
	s.correct = 0
	s.question = nil
	s.feedback = nil
}

// guard reports the error for running op when the session is not in want
func (s *Session) guard(op string, want State) error {
	if s.state == want {
		return nil
	}
	if s.state == NotStarted {
		return ErrNotStarted
	}
	return &StateError{Op: op, State: s.state}
}
