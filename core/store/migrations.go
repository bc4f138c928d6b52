package store

import (
	"context"
	"embed"
	"fmt"

	"incidents-dashboard/core/utils"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// ApplyMigrations runs every pending goose migration for the db dialect.
func ApplyMigrations(ctx context.Context, db *DB, logger *utils.Logger) error {
	dialect, dir := "sqlite3", "migrations/sqlite"
	if db.Dialect == DialectPostgres {
		dialect, dir = "postgres", "migrations/postgres"
	}
	goose.SetBaseFS(migrationsFS)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the current goose version, used by the healthz route.
func SchemaVersion(ctx context.Context, db *DB) (int64, error) {
	dialect := "sqlite3"
	if db.Dialect == DialectPostgres {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db.DB)
}
