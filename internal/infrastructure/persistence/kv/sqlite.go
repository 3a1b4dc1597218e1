package kv

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
)

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore is a Store backed by SQLite, or by a remote Turso database when
// credentials are configured.
type SQLiteStore struct {
	conn     *sql.DB
	useTurso bool
}

// Config carries the connection options for NewSQLiteStore.
type Config struct {
	SQLitePath    string
	TursoDatabase string
	TursoToken    string
}

// NewSQLiteStore opens the backing database. Turso is tried first when
// credentials are available; local SQLite is the fallback.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	var conn *sql.DB
	var err error
	var useTurso bool

	if cfg.TursoDatabase != "" && cfg.TursoToken != "" {
		connStr := cfg.TursoDatabase + "?authToken=" + cfg.TursoToken
		conn, err = sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				useTurso = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}

		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite store ping failed: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize kv schema: %w", err)
	}

	return &SQLiteStore{conn: conn, useTurso: useTurso}, nil
}

// Get returns the value stored under key, reporting presence.
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key, replacing any existing entry.
func (s *SQLiteStore) Set(key, value string) error {
	_, err := s.conn.Exec(
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the backing connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// ConnectionInfo describes the active backend for startup logging.
func (s *SQLiteStore) ConnectionInfo() string {
	if s.useTurso {
		return "Turso"
	}
	return "SQLite"
}
