package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/hskvocab/internal/database"
	"github.com/example/hskvocab/internal/flashcard"
	"github.com/example/hskvocab/internal/quiz"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmoiron/sqlx"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		if len(row) == 0 {
			continue
		}
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot talks to
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot represents the Telegram front end of the trainer
type Bot struct {
	api    sender
	botAPI *tgbotapi.BotAPI
	token  string
	config *BotConfig

	users   *database.UserRepository
	vocab   *database.VocabularyRepository
	stats   *database.StatisticsRepository
	results *database.QuizResultRepository
	engine  *quiz.Engine
	cards   *flashcard.Navigator

	mu      sync.Mutex
	quizzes map[int64]*chatQuiz // by Telegram user id
	now     func() time.Time
}

type chatQuiz struct {
	session  *quiz.Session
	lastSeen time.Time
}

// New creates a new bot instance
func New(token string, db *sqlx.DB, rnd quiz.Rand, config *BotConfig) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if db == nil {
		return nil, fmt.Errorf("database connection is not established")
	}
	return newBot(nil, token, db, rnd, config), nil
}

func newBot(api sender, token string, db *sqlx.DB, rnd quiz.Rand, config *BotConfig) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	vocab := database.NewVocabularyRepository(db)
	return &Bot{
		api:     api,
		token:   token,
		config:  config,
		users:   database.NewUserRepository(db),
		vocab:   vocab,
		stats:   database.NewStatisticsRepository(db),
		results: database.NewQuizResultRepository(db),
		engine:  quiz.NewEngine(vocab, rnd),
		cards:   flashcard.NewNavigator(vocab, database.NewProgressRepository(db)),
		quizzes: make(map[int64]*chatQuiz),
		now:     time.Now,
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.botAPI = botAPI
	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			botAPI.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop stops receiving updates
func (b *Bot) Stop() {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.sendText(update.Message.Chat.ID, "I don't understand. Use /help to see the commands.", b.MainMenuButtons())
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		log.Printf("Error handling update %d: %v", update.UpdateID, err)
	}
}

// quizFor returns the quiz session of a Telegram user
func (b *Bot) quizFor(telegramID int64) *quiz.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.quizzes[telegramID]
	if !ok {
		q = &chatQuiz{session: quiz.NewSession()}
		b.quizzes[telegramID] = q
	}
	q.lastSeen = b.now()
	return q.session
}

// dropQuiz forgets the finished or abandoned quiz s of a Telegram user. A
// quiz started again in the meantime is kept.
func (b *Bot) dropQuiz(telegramID int64, s *quiz.Session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if q, ok := b.quizzes[telegramID]; ok && q.session == s && s.Status().State == quiz.NotStarted {
		delete(b.quizzes, telegramID)
	}
}

// Sweep drops quizzes idle for longer than QuizIdleTTL and returns how many
// were removed
func (b *Bot) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for id, q := range b.quizzes {
		if now.Sub(q.lastSeen) > b.config.QuizIdleTTL {
			delete(b.quizzes, id)
			removed++
		}
	}
	return removed
}

// userID maps a Telegram account to the trainer's user id
func (b *Bot) userID(ctx context.Context, from *tgbotapi.User) (int64, error) {
	if from == nil {
		return 0, nil
	}
	user, err := b.users.GetOrCreateByTelegramID(ctx, from.ID)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (b *Bot) sendText(chatID int64, text string, buttons [][]MenuButton) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editText(chatID int64, messageID int, text string, buttons [][]MenuButton) error {
	var edit tgbotapi.EditMessageTextConfig
	if len(buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, createKeyboard(buttons))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	_, err := b.api.Send(edit)
	return err
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📚 Levels", CallbackData: callbackTiers},
			{Text: "📊 Progress", CallbackData: callbackProgress},
		},
	}
}

// Callback data is an action followed by colon separated integer arguments,
// e.g. "learned:1:42". Telegram limits it to 64 bytes.
const (
	callbackTiers    = "tiers"
	callbackProgress = "progress"
	callbackCards    = "cards"   // tier
	callbackCardNext = "next"    // tier, cursor
	callbackCardPrev = "prev"    // tier, cursor
	callbackLearned  = "learned" // tier, vocab id
	callbackQuiz     = "quiz"    // tier, count
	callbackAnswer   = "answer"  // question position, vocab id
	callbackAdvance  = "advance"
	callbackAbandon  = "abandon"
)

func callbackData(action string, args ...int64) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, action)
	for _, arg := range args {
		parts = append(parts, strconv.FormatInt(arg, 10))
	}
	return strings.Join(parts, ":")
}

func parseCallback(data string) (string, []int64, error) {
	parts := strings.Split(data, ":")
	args := make([]int64, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("invalid callback argument %q in %q", p, data)
		}
		args = append(args, n)
	}
	return parts[0], args, nil
}

// parseCommandInts parses the whitespace separated integer arguments of a command
func parseCommandInts(arguments string) ([]int, error) {
	fields := strings.Fields(arguments)
	values := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", f)
		}
		values = append(values, n)
	}
	return values, nil
}
