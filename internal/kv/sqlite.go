package kv

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLite keeps every key in one table of a WAL-mode database so several
// processes can share it.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating when needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(key string) (Record, error) {
	if s == nil || s.db == nil {
		return Record{}, ErrClosed
	}
	var rec Record
	err := s.db.QueryRow(`SELECT value, rev FROM kv WHERE key = ?`, key).Scan(&rec.Value, &rec.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("get %s: %w", key, err)
	}
	return rec, nil
}

func (s *SQLite) Put(key string, value []byte) (Revision, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	var rev Revision
	err := s.db.QueryRow(
		`INSERT INTO kv (key, value, rev, updated_at) VALUES (?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET
		    value = excluded.value,
		    rev = kv.rev + 1,
		    updated_at = excluded.updated_at
		 RETURNING rev`,
		key, value, time.Now().UTC().UnixMilli(),
	).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	return rev, nil
}

func (s *SQLite) Revision(key string) (Revision, error) {
	if s == nil || s.db == nil {
		return 0, ErrClosed
	}
	var rev Revision
	err := s.db.QueryRow(`SELECT rev FROM kv WHERE key = ?`, key).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("revision %s: %w", key, err)
	}
	return rev, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
