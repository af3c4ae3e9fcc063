package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/hskvocab/internal/flashcard"
	"github.com/example/hskvocab/internal/quiz"
	"github.com/example/hskvocab/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Welcome to the HSK vocabulary trainer! 🇨🇳

Available commands:
/tiers - Show HSK levels and their word counts
/cards <level> - Study flashcards of a level
/quiz <level> [count] - Start a quiz (count is a multiple of 5)
/stop - Abandon the current quiz
/progress - Show your learned words per level
/help - Show this help`

// HandleCommand processes commands sent to the bot
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start", "help":
		return b.sendText(chatID, helpText, b.MainMenuButtons())
	case "tiers":
		return b.handleTiers(ctx, chatID)
	case "cards":
		args, err := parseCommandInts(message.CommandArguments())
		if err != nil || len(args) != 1 {
			return b.sendText(chatID, "Usage: /cards <level>, for example /cards 1", nil)
		}
		return b.handleCards(ctx, message.From, chatID, 0, args[0], 0, flashcard.DirectionNone)
	case "quiz":
		args, err := parseCommandInts(message.CommandArguments())
		if err != nil || len(args) < 1 || len(args) > 2 {
			return b.sendText(chatID, "Usage: /quiz <level> [count], for example /quiz 1 10", nil)
		}
		count := b.config.DefaultQuizSize
		if len(args) == 2 {
			count = args[1]
		}
		return b.handleStartQuiz(ctx, message.From, chatID, args[0], count)
	case "stop":
		if message.From != nil {
			qs := b.quizFor(message.From.ID)
			b.engine.Abandon(qs)
			b.dropQuiz(message.From.ID, qs)
		}
		return b.sendText(chatID, "Quiz abandoned.", b.MainMenuButtons())
	case "progress":
		return b.handleProgress(ctx, message.From, chatID)
	default:
		return b.sendText(chatID, "Unknown command. Use /help to see the commands.", b.MainMenuButtons())
	}
}

// HandleCallback handles presses of inline buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Warning: Failed to answer callback: %v", err)
	}

	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	action, args, err := parseCallback(callback.Data)
	if err != nil {
		return err
	}

	switch {
	case action == callbackTiers:
		return b.handleTiers(ctx, chatID)
	case action == callbackProgress:
		return b.handleProgress(ctx, callback.From, chatID)
	case action == callbackCards && len(args) == 1:
		return b.handleCards(ctx, callback.From, chatID, 0, int(args[0]), 0, flashcard.DirectionNone)
	case action == callbackCardNext && len(args) == 2:
		return b.handleCards(ctx, callback.From, chatID, messageID, int(args[0]), args[1], flashcard.DirectionNext)
	case action == callbackCardPrev && len(args) == 2:
		return b.handleCards(ctx, callback.From, chatID, messageID, int(args[0]), args[1], flashcard.DirectionPrev)
	case action == callbackLearned && len(args) == 2:
		return b.handleLearned(ctx, callback.From, chatID, messageID, int(args[0]), args[1])
	case action == callbackQuiz && len(args) == 2:
		return b.handleStartQuiz(ctx, callback.From, chatID, int(args[0]), int(args[1]))
	case action == callbackAnswer && len(args) == 2:
		return b.handleAnswer(ctx, callback.From, chatID, int(args[0]), args[1])
	case action == callbackAdvance:
		return b.handleAdvance(ctx, callback.From, chatID)
	case action == callbackAbandon:
		qs := b.quizFor(callback.From.ID)
		b.engine.Abandon(qs)
		b.dropQuiz(callback.From.ID, qs)
		return b.sendText(chatID, "Quiz abandoned.", b.MainMenuButtons())
	default:
		return b.sendText(chatID, "⚠️ Unknown action", b.MainMenuButtons())
	}
}

func (b *Bot) handleTiers(ctx context.Context, chatID int64) error {
	counts, err := b.vocab.CountsByTier(ctx)
	if err != nil {
		return err
	}

	var text strings.Builder
	text.WriteString("📚 HSK levels\n\n")
	var buttons [][]MenuButton
	for _, c := range counts {
		fmt.Fprintf(&text, "HSK %d: %d words\n", c.Tier, c.Count)
		if c.Count == 0 {
			continue
		}
		row := []MenuButton{{Text: fmt.Sprintf("🃏 HSK %d cards", c.Tier), CallbackData: callbackData(callbackCards, int64(c.Tier))}}
		if c.Count >= quiz.QuestionStep {
			size := b.config.DefaultQuizSize
			if size > c.Count {
				size = c.Count - c.Count%quiz.QuestionStep
			}
			row = append(row, MenuButton{
				Text:         fmt.Sprintf("❓ Quiz (%d)", size),
				CallbackData: callbackData(callbackQuiz, int64(c.Tier), int64(size)),
			})
		}
		buttons = append(buttons, row)
	}
	return b.sendText(chatID, text.String(), buttons)
}

// handleCards shows a flashcard. A zero messageID sends a new message,
// otherwise the card message is edited in place.
func (b *Bot) handleCards(ctx context.Context, from *tgbotapi.User, chatID int64, messageID int, tier int, cursor int64, dir flashcard.Direction) error {
	if !models.ValidTier(tier) {
		return b.sendText(chatID, "HSK level must be between 1 and 6.", nil)
	}
	userID, err := b.userID(ctx, from)
	if err != nil {
		return err
	}

	card, err := b.cards.NavigateFor(ctx, userID, tier, cursor, dir)
	if err != nil {
		return err
	}

	text, buttons := renderCard(tier, card)
	if messageID == 0 {
		return b.sendText(chatID, text, buttons)
	}
	return b.editText(chatID, messageID, text, buttons)
}

func (b *Bot) handleLearned(ctx context.Context, from *tgbotapi.User, chatID int64, messageID int, tier int, vocabID int64) error {
	userID, err := b.userID(ctx, from)
	if err != nil {
		return err
	}
	if _, err := b.vocab.GetByID(ctx, vocabID); err != nil {
		return err
	}

	card, _, err := b.cards.MarkLearnedAndNext(ctx, userID, tier, vocabID)
	if err != nil {
		return err
	}
	text, buttons := renderCard(tier, card)
	return b.editText(chatID, messageID, text, buttons)
}

func renderCard(tier int, card *flashcard.Card) (string, [][]MenuButton) {
	if card.EndOfTier() {
		return fmt.Sprintf("🎉 You reached the end of HSK %d.", tier), [][]MenuButton{
			{
				{Text: "🔁 Start over", CallbackData: callbackData(callbackCards, int64(tier))},
				{Text: "📚 Levels", CallbackData: callbackTiers},
			},
		}
	}

	item := card.Item
	text := fmt.Sprintf("🃏 HSK %d\n\n%s\n%s\n%s", tier, item.Hanzi, item.Pinyin, item.Meaning)
	if card.Learned {
		text += "\n\n✅ Learned"
	}

	var nav []MenuButton
	if card.PrevID != nil {
		nav = append(nav, MenuButton{Text: "◀️ Prev", CallbackData: callbackData(callbackCardPrev, int64(tier), item.ID)})
	}
	if card.NextID != nil {
		nav = append(nav, MenuButton{Text: "Next ▶️", CallbackData: callbackData(callbackCardNext, int64(tier), item.ID)})
	}
	return text, [][]MenuButton{
		nav,
		{{Text: "✅ Learned", CallbackData: callbackData(callbackLearned, int64(tier), item.ID)}},
	}
}

func (b *Bot) handleStartQuiz(ctx context.Context, from *tgbotapi.User, chatID int64, tier, count int) error {
	if from == nil {
		return nil
	}
	if !models.ValidTier(tier) {
		return b.sendText(chatID, "HSK level must be between 1 and 6.", nil)
	}

	qs := b.quizFor(from.ID)
	if err := b.engine.Start(ctx, qs, tier, count); err != nil {
		var sizeErr *quiz.QuizSizeError
		if errors.As(err, &sizeErr) {
			return b.sendText(chatID, "❌ "+sizeErr.Error(), nil)
		}
		return err
	}
	return b.sendQuestion(ctx, from, chatID, qs)
}

func (b *Bot) sendQuestion(ctx context.Context, from *tgbotapi.User, chatID int64, qs *quiz.Session) error {
	q, err := b.engine.CurrentQuestion(ctx, qs)
	if err != nil {
		return b.sendQuizError(chatID, err)
	}
	if q == nil {
		return b.sendResult(ctx, from, chatID, qs)
	}

	text := fmt.Sprintf("❓ Question %d/%d\n\nWhat does %s (%s) mean?", q.Position, q.Total, q.Prompt(), q.Target.Pinyin)
	buttons := make([][]MenuButton, 0, len(q.Options)+1)
	for _, opt := range q.Options {
		buttons = append(buttons, []MenuButton{{Text: opt.Meaning, CallbackData: callbackData(callbackAnswer, int64(q.Position), opt.ID)}})
	}
	buttons = append(buttons, []MenuButton{{Text: "✖️ Stop quiz", CallbackData: callbackAbandon}})
	return b.sendText(chatID, text, buttons)
}

func (b *Bot) handleAnswer(ctx context.Context, from *tgbotapi.User, chatID int64, position int, chosenID int64) error {
	qs := b.quizFor(from.ID)
	fb, err := b.engine.SubmitAnswer(ctx, qs, position, chosenID)
	if err != nil {
		return b.sendQuizError(chatID, err)
	}

	icon := "✅ "
	if !fb.Correct {
		icon = "❌ "
	}
	return b.sendText(chatID, icon+fb.Message, [][]MenuButton{
		{{Text: "Next ▶️", CallbackData: callbackAdvance}},
	})
}

func (b *Bot) handleAdvance(ctx context.Context, from *tgbotapi.User, chatID int64) error {
	qs := b.quizFor(from.ID)
	state, err := b.engine.Advance(qs)
	if err != nil {
		return b.sendQuizError(chatID, err)
	}
	if state == quiz.Completed {
		return b.sendResult(ctx, from, chatID, qs)
	}
	return b.sendQuestion(ctx, from, chatID, qs)
}

func (b *Bot) sendResult(ctx context.Context, from *tgbotapi.User, chatID int64, qs *quiz.Session) error {
	res, err := b.engine.Result(qs)
	if err != nil {
		return b.sendQuizError(chatID, err)
	}
	b.dropQuiz(from.ID, qs)

	if userID, err := b.userID(ctx, from); err != nil {
		log.Printf("Error resolving telegram user %d: %v", from.ID, err)
	} else if userID != 0 {
		record := &models.QuizResult{UserID: userID, Tier: res.Tier, Total: res.Total, Correct: res.Correct}
		if err := b.results.Create(ctx, record); err != nil {
			log.Printf("Error saving quiz result for user %d: %v", userID, err)
		}
	}

	text := fmt.Sprintf("🏁 Quiz finished!\n\nYou scored %d/%d on HSK %d.", res.Correct, res.Total, res.Tier)
	return b.sendText(chatID, text, [][]MenuButton{
		{
			{Text: "🔁 Again", CallbackData: callbackData(callbackQuiz, int64(res.Tier), int64(res.Total))},
			{Text: "📚 Levels", CallbackData: callbackTiers},
		},
	})
}

func (b *Bot) sendQuizError(chatID int64, err error) error {
	var stateErr *quiz.StateError
	switch {
	case errors.Is(err, quiz.ErrNotStarted):
		return b.sendText(chatID, "No active quiz. Use /quiz <level> [count] to start one.", b.MainMenuButtons())
	case errors.As(err, &stateErr), errors.Is(err, quiz.ErrStaleAnswer):
		return b.sendText(chatID, "⚠️ That button is no longer active.", nil)
	case errors.Is(err, quiz.ErrInsufficientDistractors), errors.Is(err, quiz.ErrWordMissing):
		return b.sendText(chatID, "❌ The vocabulary of this level changed, please start a new quiz.", b.MainMenuButtons())
	default:
		return err
	}
}

func (b *Bot) handleProgress(ctx context.Context, from *tgbotapi.User, chatID int64) error {
	userID, err := b.userID(ctx, from)
	if err != nil {
		return err
	}
	progress, err := b.stats.ProgressByTier(ctx, userID)
	if err != nil {
		return err
	}

	var text strings.Builder
	text.WriteString("📊 Your progress\n\n")
	for _, p := range progress {
		fmt.Fprintf(&text, "HSK %d: %d/%d learned (%d%%)\n", p.Tier, p.Learned, p.Total, p.Percent)
	}

	results, err := b.results.ListByUser(ctx, userID, 5)
	if err != nil {
		return err
	}
	if len(results) > 0 {
		text.WriteString("\nRecent quizzes:\n")
		for _, r := range results {
			fmt.Fprintf(&text, "HSK %d: %d/%d (%s)\n", r.Tier, r.Correct, r.Total, r.CompletedAt.Format("2006-01-02"))
		}
	}
	return b.sendText(chatID, text.String(), b.MainMenuButtons())
}
