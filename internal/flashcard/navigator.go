// Package flashcard walks the words of a tier one card at a time.
package flashcard

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/hskvocab/pkg/models"
)

// Direction selects which neighbour of the cursor Navigate resolves
type Direction int

const (
	// DirectionNone resolves the first word of the tier
	DirectionNone Direction = iota
	DirectionNext
	DirectionPrev
)

func (d Direction) String() string {
	switch d {
	case DirectionNext:
		return "next"
	case DirectionPrev:
		return "prev"
	default:
		return ""
	}
}

// ParseDirection maps "next", "prev" or "" to a Direction
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "":
		return DirectionNone, nil
	case "next":
		return DirectionNext, nil
	case "prev":
		return DirectionPrev, nil
	default:
		return DirectionNone, fmt.Errorf("unknown direction %q", s)
	}
}

// VocabularyStore lists the words of a tier ordered by id ascending
type VocabularyStore interface {
	ListByTier(ctx context.Context, tier int) ([]models.Vocabulary, error)
}

// ProgressTracker records learned words
type ProgressTracker interface {
	HasLearned(ctx context.Context, userID, vocabID int64) (bool, error)
	MarkLearned(ctx context.Context, userID, vocabID int64) (bool, error)
}

// Card is the result of a navigation step. A card without Item means the
// end (or start) of the tier was reached.
type Card struct {
	Item    *models.Vocabulary `json:"item,omitempty"`
	PrevID  *int64             `json:"prev_id,omitempty"`
	NextID  *int64             `json:"next_id,omitempty"`
	Learned bool               `json:"learned"`
}

// EndOfTier reports whether navigation ran past the words of the tier
func (c *Card) EndOfTier() bool {
	return c.Item == nil
}

// Navigator resolves flashcards and records learned words
type Navigator struct {
	words    VocabularyStore
	progress ProgressTracker
}

// NewNavigator creates a new flashcard navigator
func NewNavigator(words VocabularyStore, progress ProgressTracker) *Navigator {
	return &Navigator{words: words, progress: progress}
}

// Navigate returns the card next to cursor in the given direction.
// With DirectionNone or a zero cursor the first word of the tier is returned.
func (n *Navigator) Navigate(ctx context.Context, tier int, cursor int64, dir Direction) (*Card, error) {
	words, err := n.words.ListByTier(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %d: %w", tier, err)
	}

	idx := locate(words, cursor, dir)
	if idx < 0 {
		return &Card{}, nil
	}

	item := words[idx]
	card := &Card{Item: &item}
	if idx > 0 {
		prev := words[idx-1].ID
		card.PrevID = &prev
	}
	if idx < len(words)-1 {
		next := words[idx+1].ID
		card.NextID = &next
	}
	return card, nil
}

// NavigateFor is Navigate with the Learned flag filled in for userID.
// userID 0 is an anonymous viewer.
func (n *Navigator) NavigateFor(ctx context.Context, userID int64, tier int, cursor int64, dir Direction) (*Card, error) {
	card, err := n.Navigate(ctx, tier, cursor, dir)
	if err != nil || card.EndOfTier() || userID == 0 {
		return card, err
	}

	learned, err := n.progress.HasLearned(ctx, userID, card.Item.ID)
	if err != nil {
		return nil, err
	}
	card.Learned = learned
	return card, nil
}

// locate returns the index of the word to show, or -1 when there is none
func locate(words []models.Vocabulary, cursor int64, dir Direction) int {
	if len(words) == 0 {
		return -1
	}
	if dir == DirectionNone || cursor == 0 {
		return 0
	}

	// first word with ID > cursor
	after := sort.Search(len(words), func(i int) bool { return words[i].ID > cursor })
	switch dir {
	case DirectionNext:
		if after == len(words) {
			return -1
		}
		return after
	case DirectionPrev:
		// first word with ID >= cursor, the one before it is the answer
		at := sort.Search(len(words), func(i int) bool { return words[i].ID >= cursor })
		return at - 1
	}
	return -1
}

// MarkLearned records vocabID as learned by userID. Anonymous users
// (userID 0) are ignored, as are words already marked. recorded reports
// whether a new record was created.
func (n *Navigator) MarkLearned(ctx context.Context, userID, vocabID int64) (recorded bool, err error) {
	if userID == 0 {
		return false, nil
	}
	return n.progress.MarkLearned(ctx, userID, vocabID)
}

// MarkLearnedAndNext marks vocabID learned and returns the card after it
func (n *Navigator) MarkLearnedAndNext(ctx context.Context, userID int64, tier int, vocabID int64) (*Card, bool, error) {
	recorded, err := n.MarkLearned(ctx, userID, vocabID)
	if err != nil {
		return nil, false, err
	}
	card, err := n.NavigateFor(ctx, userID, tier, vocabID, DirectionNext)
	if err != nil {
		return nil, recorded, err
	}
	return card, recorded, nil
}
