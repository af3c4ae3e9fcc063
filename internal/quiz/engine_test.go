package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/example/hskvocab/pkg/models"
)

type fakeStore struct {
	mu    sync.Mutex
	tiers map[int][]models.Vocabulary
}

func newFakeStore() *fakeStore {
	return &fakeStore{tiers: make(map[int][]models.Vocabulary)}
}

// fill adds n words to tier with ids continuing after the current maximum
func (f *fakeStore) fill(tier, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var next int64 = 1
	for _, words := range f.tiers {
		for _, w := range words {
			if w.ID >= next {
				next = w.ID + 1
			}
		}
	}
	for i := 0; i < n; i++ {
		id := next + int64(i)
		f.tiers[tier] = append(f.tiers[tier], models.Vocabulary{
			ID:      id,
			Hanzi:   fmt.Sprintf("字%d", id),
			Pinyin:  fmt.Sprintf("zi%d", id),
			Meaning: fmt.Sprintf("word %d", id),
			Tier:    tier,
		})
	}
}

func (f *fakeStore) keep(tier int, ids ...int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var kept []models.Vocabulary
	for _, w := range f.tiers[tier] {
		if want[w.ID] {
			kept = append(kept, w)
		}
	}
	f.tiers[tier] = kept
}

func (f *fakeStore) ListByTier(_ context.Context, tier int) ([]models.Vocabulary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Vocabulary(nil), f.tiers[tier]...), nil
}

func (f *fakeStore) CountByTier(_ context.Context, tier int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tiers[tier]), nil
}

func newTestEngine(seed int64) (*Engine, *fakeStore) {
	store := newFakeStore()
	store.fill(1, 12)
	store.fill(2, 30)
	return NewEngine(store, NewRand(seed)), store
}

func TestStartValidatesSize(t *testing.T) {
	engine, _ := newTestEngine(1)
	ctx := context.Background()

	if err := engine.Start(ctx, NewSession(), 1, 10); err != nil {
		t.Fatalf("Start(1, 10) failed: %v", err)
	}

	tests := []struct {
		count int
		max   int
	}{
		{count: 15, max: 12},
		{count: 7, max: 12},
		{count: 0, max: 12},
		{count: -5, max: 12},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("count=%d", tc.count), func(t *testing.T) {
			s := NewSession()
			err := engine.Start(ctx, s, 1, tc.count)
			if !errors.Is(err, ErrInvalidQuizSize) {
				t.Fatalf("expected ErrInvalidQuizSize, got %v", err)
			}
			var sizeErr *QuizSizeError
			if !errors.As(err, &sizeErr) {
				t.Fatalf("expected *QuizSizeError, got %T", err)
			}
			if sizeErr.Max != tc.max {
				t.Errorf("max = %d, want %d", sizeErr.Max, tc.max)
			}
			if !strings.Contains(err.Error(), "max allowed is 12") {
				t.Errorf("error message should state the maximum: %q", err.Error())
			}
			if st := s.Status().State; st != NotStarted {
				t.Errorf("state after failed start = %s, want not_started", st)
			}
		})
	}
}

func TestStartSamplesDistinctWordsFromTier(t *testing.T) {
	ctx := context.Background()

	for seed := int64(0); seed < 50; seed++ {
		engine, store := newTestEngine(seed)
		tierWords, _ := store.ListByTier(ctx, 2)
		inTier := make(map[int64]bool, len(tierWords))
		for _, w := range tierWords {
			inTier[w.ID] = true
		}

		for _, count := range []int{5, 10, 30} {
			s := NewSession()
			if err := engine.Start(ctx, s, 2, count); err != nil {
				t.Fatalf("seed %d: Start(2, %d) failed: %v", seed, count, err)
			}

			words := s.Words()
			if len(words) != count {
				t.Fatalf("seed %d: got %d words, want %d", seed, len(words), count)
			}
			seen := make(map[int64]bool, len(words))
			for _, id := range words {
				if seen[id] {
					t.Fatalf("seed %d: duplicate word %d", seed, id)
				}
				if !inTier[id] {
					t.Fatalf("seed %d: word %d not in tier", seed, id)
				}
				seen[id] = true
			}

			st := s.Status()
			if st.State != InProgress || st.Cursor != 0 || st.Correct != 0 || st.Total != count {
				t.Errorf("seed %d: unexpected status after start: %+v", seed, st)
			}
		}
	}
}

func TestStartIsDeterministicForSeed(t *testing.T) {
	ctx := context.Background()

	first, _ := newTestEngine(42)
	second, _ := newTestEngine(42)

	a, b := NewSession(), NewSession()
	if err := first.Start(ctx, a, 2, 10); err != nil {
		t.Fatal(err)
	}
	if err := second.Start(ctx, b, 2, 10); err != nil {
		t.Fatal(err)
	}

	wa, wb := a.Words(), b.Words()
	for i := range wa {
		if wa[i] != wb[i] {
			t.Fatalf("same seed produced different sequences: %v vs %v", wa, wb)
		}
	}
}

func TestCurrentQuestionOptions(t *testing.T) {
	ctx := context.Background()

	for seed := int64(0); seed < 20; seed++ {
		engine, store := newTestEngine(seed)
		tierWords, _ := store.ListByTier(ctx, 1)
		inTier := make(map[int64]bool, len(tierWords))
		for _, w := range tierWords {
			inTier[w.ID] = true
		}

		s := NewSession()
		if err := engine.Start(ctx, s, 1, 10); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		words := s.Words()

		for pos := 0; pos < len(words); pos++ {
			q, err := engine.CurrentQuestion(ctx, s)
			if err != nil {
				t.Fatalf("seed %d pos %d: CurrentQuestion failed: %v", seed, pos, err)
			}
			if q.Target.ID != words[pos] {
				t.Fatalf("target = %d, want %d", q.Target.ID, words[pos])
			}
			if q.Position != pos+1 || q.Total != len(words) {
				t.Errorf("position %d/%d, want %d/%d", q.Position, q.Total, pos+1, len(words))
			}
			if len(q.Options) != OptionCount {
				t.Fatalf("got %d options, want %d", len(q.Options), OptionCount)
			}

			seen := make(map[int64]bool, OptionCount)
			targets := 0
			for _, opt := range q.Options {
				if seen[opt.ID] {
					t.Fatalf("duplicate option %d", opt.ID)
				}
				seen[opt.ID] = true
				if !inTier[opt.ID] {
					t.Fatalf("option %d is not from tier 1", opt.ID)
				}
				if opt.ID == q.Target.ID {
					targets++
				}
			}
			if targets != 1 {
				t.Fatalf("target appears %d times among options", targets)
			}

			if _, err := engine.SubmitAnswer(ctx, s, q.Position, q.Target.ID); err != nil {
				t.Fatalf("SubmitAnswer failed: %v", err)
			}
			if _, err := engine.Advance(s); err != nil {
				t.Fatalf("Advance failed: %v", err)
			}
		}
	}
}

func TestCurrentQuestionIsStableUntilAnswered(t *testing.T) {
	engine, _ := newTestEngine(7)
	ctx := context.Background()

	s := NewSession()
	if err := engine.Start(ctx, s, 2, 5); err != nil {
		t.Fatal(err)
	}

	first, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	again, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Options {
		if first.Options[i].ID != again.Options[i].ID {
			t.Fatalf("options changed between calls: %v vs %v", first.Options, again.Options)
		}
	}
}

func TestFullQuizRun(t *testing.T) {
	engine, _ := newTestEngine(3)
	ctx := context.Background()

	s := NewSession()
	if err := engine.Start(ctx, s, 2, 10); err != nil {
		t.Fatal(err)
	}

	wantCorrect := 0
	for i := 0; i < 10; i++ {
		q, err := engine.CurrentQuestion(ctx, s)
		if err != nil {
			t.Fatalf("question %d: %v", i, err)
		}

		chosen := q.Target.ID
		if i%3 == 0 {
			for _, opt := range q.Options {
				if opt.ID != q.Target.ID {
					chosen = opt.ID
					break
				}
			}
		}

		before := s.Status().Correct
		fb, err := engine.SubmitAnswer(ctx, s, q.Position, chosen)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		after := s.Status()

		if chosen == q.Target.ID {
			wantCorrect++
			if !fb.Correct || fb.Message != "Correct!" {
				t.Errorf("unexpected feedback for correct answer: %+v", fb)
			}
			if after.Correct != before+1 {
				t.Errorf("correct went from %d to %d, want +1", before, after.Correct)
			}
		} else {
			if fb.Correct || fb.Message != "Wrong! Correct answer: "+q.Target.Hanzi {
				t.Errorf("unexpected feedback for wrong answer: %+v", fb)
			}
			if after.Correct != before {
				t.Errorf("wrong answer changed correct from %d to %d", before, after.Correct)
			}
		}
		if after.State != AwaitingNext || after.Cursor != i {
			t.Errorf("after answer: state %s cursor %d", after.State, after.Cursor)
		}

		next, err := engine.Advance(s)
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}

		st := s.Status()
		if st.Correct > st.Cursor || st.Cursor > st.Total {
			t.Fatalf("invariant broken: %+v", st)
		}
		if i < 9 && next != InProgress {
			t.Errorf("state after advance %d = %s, want in_progress", i, next)
		}
		if i == 9 && next != Completed {
			t.Errorf("state after last advance = %s, want completed", next)
		}
	}

	if q, err := engine.CurrentQuestion(ctx, s); err != nil || q != nil {
		t.Errorf("CurrentQuestion on completed quiz = (%v, %v), want (nil, nil)", q, err)
	}

	res, err := engine.Result(s)
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if res.Total != 10 || res.Correct != wantCorrect || res.Tier != 2 {
		t.Errorf("result = %+v, want total 10 correct %d tier 2", res, wantCorrect)
	}
	if st := s.Status(); st.State != NotStarted || st.Total != 0 {
		t.Errorf("session not reset after Result: %+v", st)
	}
	if _, err := engine.Result(s); !errors.Is(err, ErrNotStarted) {
		t.Errorf("second Result should report ErrNotStarted, got %v", err)
	}
}

func TestOperationsRequireStartedQuiz(t *testing.T) {
	engine, _ := newTestEngine(1)
	ctx := context.Background()
	s := NewSession()

	if _, err := engine.CurrentQuestion(ctx, s); !errors.Is(err, ErrNotStarted) {
		t.Errorf("CurrentQuestion: expected ErrNotStarted, got %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, s, 1, 1); !errors.Is(err, ErrNotStarted) {
		t.Errorf("SubmitAnswer: expected ErrNotStarted, got %v", err)
	}
	if _, err := engine.Advance(s); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Advance: expected ErrNotStarted, got %v", err)
	}
	if _, err := engine.Result(s); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Result: expected ErrNotStarted, got %v", err)
	}
}

func TestOperationsInWrongState(t *testing.T) {
	engine, _ := newTestEngine(1)
	ctx := context.Background()
	s := NewSession()

	if err := engine.Start(ctx, s, 1, 5); err != nil {
		t.Fatal(err)
	}

	var stateErr *StateError
	if _, err := engine.Advance(s); !errors.As(err, &stateErr) || stateErr.State != InProgress {
		t.Errorf("Advance before answering: expected StateError(in_progress), got %v", err)
	}
	if _, err := engine.Result(s); !errors.As(err, &stateErr) {
		t.Errorf("Result before completion: expected StateError, got %v", err)
	}

	q, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.SubmitAnswer(ctx, s, q.Position, q.Target.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.SubmitAnswer(ctx, s, q.Position, q.Target.ID); !errors.As(err, &stateErr) || stateErr.State != AwaitingNext {
		t.Errorf("second answer: expected StateError(awaiting_next), got %v", err)
	}
	if _, err := engine.CurrentQuestion(ctx, s); !errors.As(err, &stateErr) {
		t.Errorf("question while awaiting next: expected StateError, got %v", err)
	}
	if got := s.Status().Correct; got != 1 {
		t.Errorf("correct = %d after rejected double submit, want 1", got)
	}
}

func TestInsufficientDistractorsAfterTierShrinks(t *testing.T) {
	engine, store := newTestEngine(5)
	ctx := context.Background()
	s := NewSession()

	if err := engine.Start(ctx, s, 1, 5); err != nil {
		t.Fatal(err)
	}
	words := s.Words()
	store.keep(1, words[0], words[1], words[2])

	if _, err := engine.CurrentQuestion(ctx, s); !errors.Is(err, ErrInsufficientDistractors) {
		t.Fatalf("expected ErrInsufficientDistractors, got %v", err)
	}
	if st := s.Status().State; st != InProgress {
		t.Errorf("state = %s, want in_progress", st)
	}
}

func TestCurrentQuestionWordRemoved(t *testing.T) {
	engine, store := newTestEngine(5)
	ctx := context.Background()
	s := NewSession()

	if err := engine.Start(ctx, s, 2, 5); err != nil {
		t.Fatal(err)
	}
	words := s.Words()

	var rest []int64
	all, _ := store.ListByTier(ctx, 2)
	for _, w := range all {
		if w.ID != words[0] {
			rest = append(rest, w.ID)
		}
	}
	store.keep(2, rest...)

	if _, err := engine.CurrentQuestion(ctx, s); !errors.Is(err, ErrWordMissing) {
		t.Fatalf("expected ErrWordMissing, got %v", err)
	}
}

func TestStartReplacesAndAbandonResets(t *testing.T) {
	engine, _ := newTestEngine(9)
	ctx := context.Background()
	s := NewSession()

	if err := engine.Start(ctx, s, 1, 5); err != nil {
		t.Fatal(err)
	}
	q, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.SubmitAnswer(ctx, s, q.Position, q.Target.ID); err != nil {
		t.Fatal(err)
	}

	if err := engine.Start(ctx, s, 2, 10); err != nil {
		t.Fatal(err)
	}
	st := s.Status()
	if st.State != InProgress || st.Tier != 2 || st.Total != 10 || st.Correct != 0 || st.Feedback != nil {
		t.Errorf("restart did not replace the quiz: %+v", st)
	}

	engine.Abandon(s)
	if st := s.Status(); st.State != NotStarted || st.Total != 0 {
		t.Errorf("abandon did not reset: %+v", st)
	}
}

func TestAnswerForAnotherQuestionIsRejected(t *testing.T) {
	engine, _ := newTestEngine(5)
	ctx := context.Background()
	s := NewSession()

	if err := engine.Start(ctx, s, 1, 5); err != nil {
		t.Fatal(err)
	}
	first, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.SubmitAnswer(ctx, s, first.Position, first.Target.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Advance(s); err != nil {
		t.Fatal(err)
	}

	// the first question's answer arrives again while the second is current
	if _, err := engine.SubmitAnswer(ctx, s, first.Position, first.Target.ID); !errors.Is(err, ErrStaleAnswer) {
		t.Fatalf("expected ErrStaleAnswer, got %v", err)
	}
	if _, err := engine.SubmitAnswer(ctx, s, 3, first.Target.ID); !errors.Is(err, ErrStaleAnswer) {
		t.Errorf("answer for a future question: expected ErrStaleAnswer, got %v", err)
	}
	st := s.Status()
	if st.State != InProgress || st.Cursor != 1 || st.Correct != 1 || st.Feedback != nil {
		t.Errorf("rejected answer changed the session: %+v", st)
	}

	second, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if fb, err := engine.SubmitAnswer(ctx, s, second.Position, second.Target.ID); err != nil || !fb.Correct {
		t.Errorf("current answer = (%+v, %v)", fb, err)
	}
}

func TestCurrentQuestionReturnsCopy(t *testing.T) {
	engine, _ := newTestEngine(9)
	ctx := context.Background()
	s := NewSession()

	if err := engine.Start(ctx, s, 1, 5); err != nil {
		t.Fatal(err)
	}
	q, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	want := q.Options[0]
	q.Options[0], q.Options[3] = q.Options[3], q.Options[0]
	q.Position = 99

	again, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if again.Options[0] != want || again.Position != 1 {
		t.Errorf("caller changes leaked into the session: %+v", again)
	}
	if again.Prompt() != again.Target.Hanzi {
		t.Errorf("Prompt = %q, want %q", again.Prompt(), again.Target.Hanzi)
	}
}

func TestConcurrentAnswersAreSerialized(t *testing.T) {
	engine, _ := newTestEngine(11)
	ctx := context.Background()
	s := NewSession()

	if err := engine.Start(ctx, s, 2, 5); err != nil {
		t.Fatal(err)
	}
	q, err := engine.CurrentQuestion(ctx, s)
	if err != nil {
		t.Fatal(err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.SubmitAnswer(ctx, s, q.Position, q.Target.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("%d concurrent answers accepted, want 1", succeeded)
	}
	if st := s.Status(); st.Correct != 1 || st.State != AwaitingNext {
		t.Errorf("unexpected status: %+v", st)
	}
}
