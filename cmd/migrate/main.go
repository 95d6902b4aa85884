// Command migrate applies the embedded schema migrations to DATABASE_URL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gdpr-backend/internal/shared/config"
	"gdpr-backend/internal/shared/storage/db"
	"gdpr-backend/internal/shared/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Load()); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(db.ProfileCLI))
	if err != nil {
		return err
	}
	defer pool.Close()
	return db.RunMigrations(ctx, pool)
}
