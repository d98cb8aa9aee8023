// ABOUTME: SQLite storage backend for durable key-value blobs
// ABOUTME: Survives restarts; the default backend for job, chat and settings state

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
)

const (
	getQuery    = "SELECT value FROM kv_store WHERE key = ?"
	setQuery    = "INSERT OR REPLACE INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)"
	deleteQuery = "DELETE FROM kv_store WHERE key = ?"
)

// Storage implements interfaces.Storage on a SQLite file
type Storage struct {
	db       *sql.DB
	filePath string
	logger   interfaces.Logger
}

// NewStorage opens (or creates) the database at filePath
func NewStorage(filePath string, logger interfaces.Logger) (*Storage, error) {
	if filePath == "" {
		filePath = "capture.db"
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// a single writer avoids "database is locked" under concurrent persists
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	s := &Storage{
		db:       db,
		filePath: filePath,
		logger:   logger,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_store (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`
	_, err := s.db.Exec(query)
	return err
}

// Get retrieves the value stored under key
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key, s.logger); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.QueryRowContext(ctx, getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get value: %w", err)
	}

	return value, nil
}

// Set stores value under key, replacing any previous value
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := ValidateKey(key, s.logger); err != nil {
		return err
	}
	if err := ValidateValue(value); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	if _, err := s.db.ExecContext(ctx, setQuery, key, value, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key, s.logger); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Stats returns storage statistics
func (s *Storage) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM kv_store").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_keys"] = count

	var pageCount, pageSize int
	if err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err == nil {
			stats["db_size_bytes"] = pageCount * pageSize
		}
	}

	stats["file_path"] = s.filePath
	return stats, nil
}
