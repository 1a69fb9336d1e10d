package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Storer backed by a single SQLite database.
// Use ":memory:" for an in-memory database, or a file path for
// persistent storage.
type SQLiteStore[T ValidatingSpec] struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewSQLiteStore[T ValidatingSpec](path string) (*SQLiteStore[T], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	s := &SQLiteStore[T]{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore[T]) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		spec BLOB NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore[T]) Save(id string, o T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spec, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshalling spec: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO snapshots (id, version, spec) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET version = excluded.version, spec = excluded.spec",
		id, 1, spec,
	)
	if err != nil {
		return fmt.Errorf("upserting snapshot: %w", err)
	}

	return nil
}

func (s *SQLiteStore[T]) Get(id string) T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var nilVal T

	var spec []byte
	err := s.db.QueryRow("SELECT spec FROM snapshots WHERE id = ?", id).Scan(&spec)
	if err == sql.ErrNoRows {
		return nilVal
	}
	if err != nil {
		slog.Warn("reading snapshot", "id", id, "error", err)
		return nilVal
	}

	val, err := s.decode(spec)
	if err != nil {
		slog.Warn("decoding snapshot", "id", id, "error", err)
		return nilVal
	}

	return val
}

func (s *SQLiteStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := map[string]T{}

	rows, err := s.db.Query("SELECT id, spec FROM snapshots")
	if err != nil {
		slog.Warn("listing snapshots", "error", err)
		return vals
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var spec []byte
		if err := rows.Scan(&id, &spec); err != nil {
			slog.Warn("scanning snapshot row", "error", err)
			continue
		}

		val, err := s.decode(spec)
		if err != nil {
			slog.Warn("decoding snapshot", "id", id, "error", err)
			continue
		}
		vals[id] = val
	}

	return vals
}

func (s *SQLiteStore[T]) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore[T]) decode(spec []byte) (T, error) {
	var val T
	if err := json.Unmarshal(spec, &val); err != nil {
		return val, err
	}
	if err := val.Validate(); err != nil {
		return val, fmt.Errorf("validating: %w", err)
	}
	return val, nil
}
