// Package state persists ingested record sets so they can be listed and
// summarized without re-parsing the observation archive.
//
// Two backends share one schema: SQLite (pure Go, the default) migrated
// with goose, and DuckDB for analytical use, initialized from schema.sql.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // SQLite driver (pure Go)
)

// Backend names a database engine.
type Backend string

// Supported backends.
const (
	BackendSQLite Backend = "sqlite"
	BackendDuckDB Backend = "duckdb"
)

// Backends lists every supported backend.
var Backends = []Backend{BackendSQLite, BackendDuckDB}

// RunStatus is the state of an ingest run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one ingest of an archive.
type Run struct {
	ID          string     `json:"id" yaml:"id"`
	Root        string     `json:"root" yaml:"root"`
	Status      RunStatus  `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Executions  int        `json:"executions" yaml:"executions"`
	Rows        int        `json:"rows" yaml:"rows"`
	Skipped     int        `json:"skipped" yaml:"skipped"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunCounts are the totals recorded when a run completes.
type RunCounts struct {
	Executions int
	Rows       int
	Skipped    int
}

// Skip is an observation left out of a run.
type Skip struct {
	RunID  string `json:"run_id" yaml:"run_id"`
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Store is a persisted record set.
type Store struct {
	db      *sql.DB
	backend Backend
	logger  *slog.Logger
}

// Open connects to the database at path and brings its schema up to date.
// Use ":memory:" (sqlite) or "" (duckdb) for an in-memory database.
func Open(ctx context.Context, backend Backend, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var (
		driver string
		dsn    = path
	)
	switch backend {
	case BackendSQLite:
		driver = "sqlite"
		if path != ":memory:" {
			dsn = path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
		} else {
			dsn = ":memory:?_pragma=foreign_keys(1)"
		}
	case BackendDuckDB:
		driver = "duckdb"
		if path == ":memory:" {
			dsn = ""
		}
	default:
		return nil, fmt.Errorf("unsupported state backend %q", backend)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if dsn == "" || path == ":memory:" {
		// Every connection to an in-memory database is a new database.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	s := New(db, backend, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("opened state store", "backend", string(backend), "path", path)
	return s, nil
}

// New wraps an already-open database without migrating it.
func New(db *sql.DB, backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, backend: backend, logger: logger}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Backend returns the engine behind the store.
func (s *Store) Backend() Backend {
	return s.backend
}

func generateID() string {
	return uuid.New().String()
}

// timeLayout is fixed width so stored times sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
