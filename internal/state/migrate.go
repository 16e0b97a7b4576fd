package state

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

//go:embed schema.sql
var schemaSQL string

// Migrate brings the schema up to date. SQLite is versioned with goose;
// DuckDB, which goose has no dialect for, applies the idempotent schema.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	switch s.backend {
	case BackendSQLite:
		goose.SetBaseFS(migrations)
		goose.SetLogger(goose.NopLogger())
		if err := goose.SetDialect("sqlite"); err != nil {
			return fmt.Errorf("failed to set dialect: %w", err)
		}
		if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	case BackendDuckDB:
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	default:
		return fmt.Errorf("unsupported state backend %q", s.backend)
	}
	return nil
}

// MigrationVersion returns the applied goose version of a SQLite store.
func (s *Store) MigrationVersion(ctx context.Context) (int64, error) {
	if s.backend != BackendSQLite {
		return 0, fmt.Errorf("migration versions are only tracked for sqlite")
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite"); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, s.db)
}
