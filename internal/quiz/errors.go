package quiz

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuizSize is returned by Start when the requested question
	// count is not a positive multiple of QuestionStep or exceeds the tier.
	ErrInvalidQuizSize = errors.New("invalid quiz size")
	// ErrInsufficientDistractors is returned when a tier holds fewer than
	// OptionCount words, so a question cannot be built.
	ErrInsufficientDistractors = errors.New("not enough words in tier to build a question")
	// ErrNotStarted is returned by every operation except Start and Abandon
	// while the session has no active quiz.
	ErrNotStarted = errors.New("no active quiz")
	// ErrWordMissing is returned when a word picked at Start has since left the tier.
	ErrWordMissing = errors.New("quiz word no longer available")
	// ErrStaleAnswer is returned when an answer names a question other than
	// the current one.
	ErrStaleAnswer = errors.New("answer is for another question")
)

// QuizSizeError describes a rejected quiz size together with the largest
// count the tier can serve.
type QuizSizeError struct {
	Requested int
	Max       int
}

func (e *QuizSizeError) Error() string {
	if e.Max < QuestionStep {
		return fmt.Sprintf("invalid quiz size %d: the tier has only %d words, at least %d are needed",
			e.Requested, e.Max, QuestionStep)
	}
	return fmt.Sprintf("invalid quiz size %d: choose a multiple of %d, max allowed is %d",
		e.Requested, QuestionStep, e.Max)
}

func (e *QuizSizeError) Unwrap() error {
	return ErrInvalidQuizSize
}

// StateError is returned when an operation is not allowed in the session's current state
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while quiz is %s", e.Op, e.State)
}
