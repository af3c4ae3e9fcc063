package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var configKeys = []string{
	"DB_TYPE", "DATABASE_PATH", "DATABASE_URL", "PORT", "AUTO_SEED", "SEED_FILE",
	"SESSION_TTL", "REMEMBER_TTL", "SWEEP_INTERVAL", "TELEGRAM_BOT_TOKEN", "DEFAULT_QUIZ_SIZE",
}

// clearEnv unsets every config key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
	if cfg.DSN() != "data/hsk.db" {
		t.Errorf("DSN = %q", cfg.DSN())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AUTO_SEED", "0")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("DEFAULT_QUIZ_SIZE", "20")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/hsk?sslmode=disable")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" || cfg.AutoSeed || cfg.SessionTTL != 90*time.Minute || cfg.DefaultQuizSize != 20 {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.DSN() != "postgres://localhost/hsk?sslmode=disable" {
		t.Errorf("DSN = %q", cfg.DSN())
	}
}

func TestLoadFromDotEnvFile(t *testing.T) {
	clearEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "PORT=7070\nTELEGRAM_BOT_TOKEN=abc:123\nSWEEP_INTERVAL=1m\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "7070" || cfg.TelegramToken != "abc:123" || cfg.SweepInterval != time.Minute {
		t.Errorf(".env not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"AUTO_SEED":         "maybe",
		"SESSION_TTL":       "forever",
		"DEFAULT_QUIZ_SIZE": "ten",
	}
	sizes := []string{"7", "0", "-5"}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("expected error for %s=%q", key, value)
			}
		})
	}

	for _, size := range sizes {
		t.Run("DEFAULT_QUIZ_SIZE="+size, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEFAULT_QUIZ_SIZE", size)

			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("expected error for quiz size %s", size)
			}
		})
	}
}

func TestLoadRequiresPostgresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TYPE", "postgres")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestPostgresAliases(t *testing.T) {
	for _, dbType := range []string{"postgres", "postgresql", "PostgreSQL"} {
		t.Run(dbType, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_TYPE", dbType)

			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Errorf("DB_TYPE=%s without DATABASE_URL should fail", dbType)
			}

			t.Setenv("DATABASE_URL", "postgres://localhost/hsk")
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.DSN() != "postgres://localhost/hsk" {
				t.Errorf("DSN = %q, want the postgres URL", cfg.DSN())
			}
		})
	}
}
