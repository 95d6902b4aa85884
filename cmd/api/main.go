package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gdpr-backend/internal/bootstrap"
	"gdpr-backend/internal/shared/config"
	"gdpr-backend/internal/shared/server"
	"gdpr-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Start(ctx); err != nil {
		telemetry.Error("bootstrap.start_failed", map[string]any{"error": err})
		os.Exit(1)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr, "env": cfg.Env, "export_root": cfg.ExportRoot})
	if err := app.Router.Run(addr); err != nil {
		telemetry.Error("server.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}
