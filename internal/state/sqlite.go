package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ivancheban/salary-bot/internal/config"
)

const keyLastNotified = "last_notified"

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (and migrates) the database at path.
// Use ":memory:" for an in-memory database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreMigrate, err)
	}

	slog.Debug(config.MsgStateStore,
		config.LogKeyComponent, config.CompState,
		config.LogKeyFile, path,
	)
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS commands (
		user_id INTEGER PRIMARY KEY,
		last_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) LastNotified(ctx context.Context) (string, error) {
	var day string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, keyLastNotified).Scan(&day)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	return day, nil
}

func (s *SQLite) SetLastNotified(ctx context.Context, day string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, keyLastNotified, day)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	return nil
}

func (s *SQLite) TouchCommand(ctx context.Context, userID int64, now time.Time, cooldown time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastAt int64
	err := s.db.QueryRowContext(ctx, `SELECT last_at FROM commands WHERE user_id = ?`, userID).Scan(&lastAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	case now.Sub(time.Unix(0, lastAt)) < cooldown:
		return false, nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commands (user_id, last_at) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET last_at = excluded.last_at
	`, userID, now.UnixNano())
	if err != nil {
		return false, fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	return true, nil
}
