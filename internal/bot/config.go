package bot

import "time"

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of questions of a quiz started from the tier menu
	DefaultQuizSize int
	// Long polling timeout in seconds
	UpdateTimeout int
	// Quizzes untouched for longer are dropped by Sweep
	QuizIdleTTL time.Duration
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DefaultQuizSize: 10,
		UpdateTimeout:   60,
		QuizIdleTTL:     24 * time.Hour,
	}
}
