package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite stores the session id and its handoff flag in a key/value table.
type SQLite struct {
	db  *sql.DB
	key string
}

// NewSQLite opens (and if needed creates) the database at dbPath.
func NewSQLite(dbPath, key string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLite{db: db, key: key}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLite) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS widget_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get returns the stored id.
func (s *SQLite) Get(ctx context.Context) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM widget_storage WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read session id: %w", err)
	}
	return value, true, nil
}

// Set stores id.
func (s *SQLite) Set(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO widget_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, id, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write session id: %w", err)
	}
	return nil
}

// Remove deletes the stored id and its handoff flag.
func (s *SQLite) Remove(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM widget_storage WHERE key IN (?, ?)`, s.key, handoffKey(s.key))
	if err != nil {
		return fmt.Errorf("delete session id: %w", err)
	}
	return nil
}

// HandoffActive reports the stored handoff flag.
func (s *SQLite) HandoffActive(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM widget_storage WHERE key = ?`, handoffKey(s.key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read handoff flag: %w", err)
	}
	return value == handoffValue, nil
}

// SetHandoffActive stores the handoff flag; false deletes the row.
func (s *SQLite) SetHandoffActive(ctx context.Context, active bool) error {
	var err error
	if active {
		_, err = s.db.ExecContext(ctx, `
		INSERT INTO widget_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			handoffKey(s.key), handoffValue, time.Now().Unix())
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM widget_storage WHERE key = ?`, handoffKey(s.key))
	}
	if err != nil {
		return fmt.Errorf("write handoff flag: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
