// Package store records reasoning sessions in SQLite: the events memory
// emits, the answers to input questions and snapshots of the beliefs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	_ "github.com/mattn/go-sqlite3" // cgo driver "sqlite3"
	_ "modernc.org/sqlite"          // pure Go driver "sqlite"

	"narsgo/internal/config"
	"narsgo/internal/logging"
)

// Store is a SQLite trace database. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	dbPath string
	driver string
}

// Open opens or creates the database described by cfg. A DatabasePath of
// ":memory:" keeps everything in memory.
func Open(cfg config.StoreConfig) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	if !slices.Contains(config.ValidDrivers, cfg.Driver) {
		return nil, fmt.Errorf("unknown sqlite driver %q (want one of %v)", cfg.Driver, config.ValidDrivers)
	}
	path := cfg.DatabasePath
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			logging.Get(logging.CategoryStore).Error("Failed to create directory for %s: %v", path, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(cfg.Driver, path)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: an in-memory database exists per connection, and
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
		}
		if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
			logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
		}
	}

	s := &Store{db: db, dbPath: path, driver: cfg.Driver}
	if err := s.ensureSchema(); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to initialize schema: %v", err)
		db.Close()
		return nil, fmt.Errorf("failed to ensure trace schema: %w", err)
	}
	logging.Store("trace store opened at %s (driver %s)", path, cfg.Driver)
	return s, nil
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		cycles INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		cycle INTEGER NOT NULL,
		type TEXT NOT NULL,
		term TEXT,
		sentence TEXT,
		message TEXT
	);

	CREATE TABLE IF NOT EXISTS answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		cycle INTEGER NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		frequency REAL,
		confidence REAL
	);

	CREATE TABLE IF NOT EXISTS beliefs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		cycle INTEGER NOT NULL,
		term TEXT NOT NULL,
		frequency REAL NOT NULL,
		confidence REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, id);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
	CREATE INDEX IF NOT EXISTS idx_answers_session ON answers(session_id);
	CREATE INDEX IF NOT EXISTS idx_beliefs_session ON beliefs(session_id, cycle);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path is the database location.
func (s *Store) Path() string { return s.dbPath }

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
