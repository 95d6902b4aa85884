package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"

	"gdpr-backend/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

func init() {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(goose.NopLogger())
}

// RunMigrations applies pending migrations for the users, config and
// entity tables and logs the resulting schema version. A nil database is a
// no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, migrationsDir); err != nil {
		return err
	}
	version, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return err
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}
