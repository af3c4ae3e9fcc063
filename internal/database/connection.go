package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Driver names understood by Open
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// IsPostgres reports whether dbType selects the Postgres backend
func IsPostgres(dbType string) bool {
	return strings.EqualFold(dbType, "postgres") || strings.EqualFold(dbType, "postgresql")
}

// Open establishes a connection to the database and initializes the schema.
// dbType is "postgres" or anything else for SQLite, in which case dsn is a file path.
func Open(dbType, dsn string) (*sqlx.DB, error) {
	driver := DriverSQLite
	if IsPostgres(dbType) {
		driver = DriverPostgres
	}

	if driver == DriverSQLite {
		if dsn == "" {
			dsn = filepath.Join("data", "hsk.db")
		}
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := sqliteSchema
	if db.DriverName() == DriverPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		telegram_id INTEGER UNIQUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hanzi TEXT NOT NULL,
		pinyin TEXT NOT NULL DEFAULT '',
		meaning TEXT NOT NULL DEFAULT '',
		hsk_level INTEGER NOT NULL CHECK (hsk_level BETWEEN 1 AND 6)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vocabulary_level ON vocabulary(hsk_level, id)`,
	`CREATE TABLE IF NOT EXISTS progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		vocab_id INTEGER NOT NULL,
		learned INTEGER NOT NULL DEFAULT 1,
		learned_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (vocab_id) REFERENCES vocabulary(id),
		UNIQUE(user_id, vocab_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		hsk_level INTEGER NOT NULL,
		total INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		completed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results(user_id, completed_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		telegram_id BIGINT UNIQUE,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS vocabulary (
		id BIGSERIAL PRIMARY KEY,
		hanzi TEXT NOT NULL,
		pinyin TEXT NOT NULL DEFAULT '',
		meaning TEXT NOT NULL DEFAULT '',
		hsk_level INTEGER NOT NULL CHECK (hsk_level BETWEEN 1 AND 6)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vocabulary_level ON vocabulary(hsk_level, id)`,
	`CREATE TABLE IF NOT EXISTS progress (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		vocab_id BIGINT NOT NULL REFERENCES vocabulary(id),
		learned INTEGER NOT NULL DEFAULT 1,
		learned_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(user_id, vocab_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		hsk_level INTEGER NOT NULL,
		total INTEGER NOT NULL,
		correct INTEGER NOT NULL,
		completed_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results(user_id, completed_at)`,
}
