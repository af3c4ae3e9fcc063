// Package quiz implements the multiple-choice quiz state machine.
package quiz

import (
	"context"
	"fmt"

	"github.com/example/hskvocab/pkg/models"
)

const (
	// QuestionStep is the granularity of quiz sizes
	QuestionStep = 5
	// OptionCount is the number of options of every question
	OptionCount = 4
)

// VocabularyStore is the read access the engine needs to the vocabulary
type VocabularyStore interface {
	ListByTier(ctx context.Context, tier int) ([]models.Vocabulary, error)
	CountByTier(ctx context.Context, tier int) (int, error)
}

// Engine drives Sessions through the quiz lifecycle
type Engine struct {
	store VocabularyStore
	rnd   Rand
}

// NewEngine creates a new quiz engine
func NewEngine(store VocabularyStore, rnd Rand) *Engine {
	if rnd == nil {
		rnd = NewTimeRand()
	}
	return &Engine{store: store, rnd: rnd}
}

// Start begins a quiz of count words sampled from tier. Any quiz already in
// the session is discarded.
func (e *Engine) Start(ctx context.Context, s *Session, tier, count int) error {
	available, err := e.store.CountByTier(ctx, tier)
	if err != nil {
		return fmt.Errorf("failed to count level %d: %w", tier, err)
	}
	if err := validateSize(count, available); err != nil {
		return err
	}

	words, err := e.store.ListByTier(ctx, tier)
	if err != nil {
		return fmt.Errorf("failed to load level %d: %w", tier, err)
	}
	if err := validateSize(count, len(words)); err != nil {
		return err
	}

	ids := make([]int64, 0, count)
	for _, i := range sample(e.rnd, len(words), count) {
		ids = append(ids, words[i].ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	s.state = InProgress
	s.tier = tier
	s.words = ids
	return nil
}

func validateSize(count, available int) error {
	if count <= 0 || count%QuestionStep != 0 || count > available {
		return &QuizSizeError{Requested: count, Max: available}
	}
	return nil
}

// CurrentQuestion returns the question at the cursor. Once every word has
// been asked the session moves to Completed and a nil question is returned.
// Repeated calls before an answer return the same question.
func (e *Engine) CurrentQuestion(ctx context.Context, s *Session) (*Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Completed {
		return nil, nil
	}
	if err := s.guard("show a question", InProgress); err != nil {
		return nil, err
	}
	if s.cursor >= len(s.words) {
		s.state = Completed
		s.question = nil
		return nil, nil
	}
	if s.question != nil {
		return s.question.clone(), nil
	}

	// The tier is reloaded for every question so that words removed since
	// Start are noticed here instead of producing a broken question.
	pool, err := e.store.ListByTier(ctx, s.tier)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %d: %w", s.tier, err)
	}
	if len(pool) < OptionCount {
		return nil, fmt.Errorf("level %d has %d words: %w", s.tier, len(pool), ErrInsufficientDistractors)
	}

	targetID := s.words[s.cursor]
	targetIdx := -1
	for i := range pool {
		if pool[i].ID == targetID {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return nil, fmt.Errorf("word %d: %w", targetID, ErrWordMissing)
	}

	others := make([]models.Vocabulary, 0, len(pool)-1)
	others = append(others, pool[:targetIdx]...)
	others = append(others, pool[targetIdx+1:]...)

	options := make([]models.Vocabulary, 0, OptionCount)
	for _, i := range sample(e.rnd, len(others), OptionCount-1) {
		options = append(options, others[i])
	}
	options = append(options, pool[targetIdx])
	e.rnd.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	s.question = &Question{
		Target:   pool[targetIdx],
		Options:  options,
		Position: s.cursor + 1,
		Total:    len(s.words),
		Tier:     s.tier,
	}
	return s.question.clone(), nil
}

// SubmitAnswer grades chosenID as the answer to the question at position
// (1-based, as in Question.Position). Answers for any other position are
// rejected with ErrStaleAnswer. The cursor stays put until Advance.
func (e *Engine) SubmitAnswer(ctx context.Context, s *Session, position int, chosenID int64) (*Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard("answer", InProgress); err != nil {
		return nil, err
	}
	if s.cursor >= len(s.words) {
		s.state = Completed
		return nil, &StateError{Op: "answer", State: s.state}
	}
	if position != s.cursor+1 {
		return nil, fmt.Errorf("question %d, current is %d: %w", position, s.cursor+1, ErrStaleAnswer)
	}

	correctID := s.words[s.cursor]
	fb := &Feedback{ChosenID: chosenID, CorrectID: correctID}
	if chosenID == correctID {
		s.correct++
		fb.Correct = true
		fb.Message = "Correct!"
	} else {
		hanzi, err := e.hanzi(ctx, s, correctID)
		if err != nil {
			return nil, err
		}
		fb.Message = "Wrong! Correct answer: " + hanzi
	}

	s.feedback = fb
	s.state = AwaitingNext
	return fb, nil
}

// hanzi resolves the script form of a quiz word, preferring the question
// already shown.
func (e *Engine) hanzi(ctx context.Context, s *Session, id int64) (string, error) {
	if s.question != nil && s.question.Target.ID == id {
		return s.question.Target.Hanzi, nil
	}
	pool, err := e.store.ListByTier(ctx, s.tier)
	if err != nil {
		return "", fmt.Errorf("failed to load level %d: %w", s.tier, err)
	}
	for _, w := range pool {
		if w.ID == id {
			return w.Hanzi, nil
		}
	}
	return "", fmt.Errorf("word %d: %w", id, ErrWordMissing)
}

// Advance moves past the answered question and returns the new state
func (e *Engine) Advance(s *Session) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard("advance", AwaitingNext); err != nil {
		return s.state, err
	}

	s.cursor++
	s.question = nil
	s.feedback = nil
	if s.cursor >= len(s.words) {
		s.state = Completed
	} else {
		s.state = InProgress
	}
	return s.state, nil
}

// Result returns the summary of a completed quiz and resets the session
func (e *Engine) Result(s *Session) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard("show the result", Completed); err != nil {
		return nil, err
	}

	res := &Result{Tier: s.tier, Total: len(s.words), Correct: s.correct}
	s.reset()
	return res, nil
}

// Abandon discards the quiz in any state
func (e *Engine) Abandon(s *Session) {
	s.Reset()
}
