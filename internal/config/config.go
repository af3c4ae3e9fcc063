// Package config reads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/hskvocab/internal/database"
	"github.com/example/hskvocab/internal/quiz"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the application
type Config struct {
	// sqlite or postgres (postgresql)
	DBType string
	// SQLite file path
	DatabasePath string
	// Postgres connection string
	DatabaseURL string

	Port string

	// Import SeedFile when the vocabulary table is empty
	AutoSeed bool
	SeedFile string

	SessionTTL    time.Duration
	RememberTTL   time.Duration
	SweepInterval time.Duration

	// Empty disables the Telegram front end
	TelegramToken   string
	DefaultQuizSize int
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		DBType:          "sqlite",
		DatabasePath:    "data/hsk.db",
		Port:            "8080",
		AutoSeed:        true,
		SeedFile:        "data/hsk_vocabulary.csv",
		SessionTTL:      24 * time.Hour,
		RememberTTL:     30 * 24 * time.Hour,
		SweepInterval:   10 * time.Minute,
		DefaultQuizSize: 10,
	}
}

// DSN returns the data source for the configured database type
func (c *Config) DSN() string {
	if database.IsPostgres(c.DBType) {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// Load reads the given .env files (default ".env"), ignoring missing ones,
// and overrides the defaults with environment variables.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := Default()
	var err error

	cfg.DBType = stringEnv("DB_TYPE", cfg.DBType)
	cfg.DatabasePath = stringEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = stringEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Port = stringEnv("PORT", cfg.Port)
	cfg.SeedFile = stringEnv("SEED_FILE", cfg.SeedFile)
	cfg.TelegramToken = stringEnv("TELEGRAM_BOT_TOKEN", cfg.TelegramToken)

	if cfg.AutoSeed, err = boolEnv("AUTO_SEED", cfg.AutoSeed); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", cfg.SessionTTL); err != nil {
		return nil, err
	}
	if cfg.RememberTTL, err = durationEnv("REMEMBER_TTL", cfg.RememberTTL); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationEnv("SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return nil, err
	}
	if cfg.DefaultQuizSize, err = intEnv("DEFAULT_QUIZ_SIZE", cfg.DefaultQuizSize); err != nil {
		return nil, err
	}

	if cfg.DefaultQuizSize <= 0 || cfg.DefaultQuizSize%quiz.QuestionStep != 0 {
		return nil, fmt.Errorf("DEFAULT_QUIZ_SIZE must be a positive multiple of %d, got %d", quiz.QuestionStep, cfg.DefaultQuizSize)
	}
	if database.IsPostgres(cfg.DBType) && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required when DB_TYPE=postgres")
	}
	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
