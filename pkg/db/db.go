package db

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database connection configuration
type Config struct {
	// Path is the SQLite database file
	Path string
	// LogLevel enables SQL query logging when set to "debug"
	LogLevel string
}

// DSN returns the go-sqlite3 connection string for path with the pragmas
// the application relies on: foreign keys, WAL journaling, NORMAL
// synchronous mode and a busy timeout. A read-only DSN opens the file with
// mode=ro and leaves the journal mode alone.
func DSN(path string, readOnly bool) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", "5000")
	if readOnly {
		q.Set("mode", "ro")
	} else {
		q.Set("_journal_mode", "WAL")
		q.Set("_synchronous", "NORMAL")
	}
	return "file:" + path + "?" + q.Encode()
}

// Connect opens the SQLite database, creating its parent directory if
// needed.
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("DB_FILE is required")
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Default to silent logging unless LOG_LEVEL=debug is set
	logMode := logger.Silent
	if cfg.LogLevel == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		sqlite.Open(DSN(cfg.Path, false)),
		&gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Checkpoint flushes the WAL into the main database file so that a byte
// copy of the file is a complete snapshot.
func Checkpoint(db *gorm.DB) error {
	return db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
}

// Ping verifies database connectivity
func Ping(db *gorm.DB) error {
	return db.Exec("SELECT 1").Error
}
