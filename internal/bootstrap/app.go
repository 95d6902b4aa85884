package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "gdpr-backend/internal/auth"
	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/exportlink"
	"gdpr-backend/internal/exports"
	"gdpr-backend/internal/services/health"
	"gdpr-backend/internal/settings"
	"gdpr-backend/internal/shared/config"
	"gdpr-backend/internal/shared/server"
	"gdpr-backend/internal/shared/server/middleware"
	"gdpr-backend/internal/shared/storage/db"
	"gdpr-backend/internal/shared/storage/object"
	localstore "gdpr-backend/internal/shared/storage/object/local"
	s3store "gdpr-backend/internal/shared/storage/object/s3"
	"gdpr-backend/internal/shared/telemetry"
	"gdpr-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config            config.Config
	Router            *gin.Engine
	DB                *sql.DB
	Archives          object.ObjectStore
	Settings          settings.Store
	SettingsFile      *settings.FileStore
	Entities          entities.Source
	UsersRepo         users.Repo
	UsersService      *users.Service
	ExportService     *exports.Service
	Janitor           *exports.Janitor
	UsersHandler      *users.Handler
	ExportHandler     *exports.Handler
	ExportLinkHandler *exportlink.Handler
	SettingsHandler   *settings.Handler
	GoogleAuth        *googleauth.GoogleService
	Health            *health.Service
}

// Build prepares dependencies and routes. Background work is started by Start.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archives, err := buildArchiveStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Archives: archives,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            app.Config,
		Health:            app.Health,
		ExportHandler:     app.ExportHandler,
		ExportLinkHandler: app.ExportLinkHandler,
		SettingsHandler:   app.SettingsHandler,
		UserHandler:       app.UsersHandler,
		GoogleAuth:        app.GoogleAuth,
		RateLimiter:       middleware.NewRateLimiter(nil),
	})

	return app, nil
}

// Start launches the retention janitor and the settings file watcher. Both
// stop when ctx is canceled.
func (a *App) Start(ctx context.Context) error {
	if a.Janitor != nil && a.Config.ExportRetentionSchedule != "" {
		if err := a.Janitor.Start(ctx, a.Config.ExportRetentionSchedule); err != nil {
			return err
		}
	}
	if a.SettingsFile != nil {
		go func() {
			if err := a.SettingsFile.Watch(ctx); err != nil {
				telemetry.Error("settings.watch_failed", map[string]any{"path": a.SettingsFile.Path(), "error": err})
			}
		}()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	profile := db.DetectProfile()
	if profile == db.ProfileLambda {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFor(profile))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

// buildArchiveStore returns the store finished archives are served from. The
// local store is rooted at the export root so archives are served in place.
func buildArchiveStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.ExportRoot), nil
	}
}

func buildSettingsStore(app *App) (settings.Store, error) {
	if path := strings.TrimSpace(app.Config.ExportSettingsFile); path != "" {
		fileStore, err := settings.NewFileStore(path, true)
		if err != nil {
			return nil, err
		}
		app.SettingsFile = fileStore
		return fileStore, nil
	}
	if app.DB != nil {
		return &settings.PGStore{DB: app.DB}, nil
	}
	return settings.NewMemoryStore(), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var (
		userRepo users.Repo
		source   entities.Source
	)
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		source = &entities.PGSource{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		source = entities.NewMemorySource()
	}

	settingsStore, err := buildSettingsStore(app)
	if err != nil {
		return err
	}

	userSvc := users.NewService(userRepo)
	exportSvc := &exports.Service{
		Users:      userSvc,
		Settings:   settingsStore,
		Resolver:   exports.NewResolver(source),
		Writer:     exports.NewCSVWriter(source),
		Archiver:   exports.NewArchiveBuilder(),
		ExportRoot: app.Config.ExportRoot,
		Archives:   app.Archives,
		Publish:    app.Config.ObjectStoreType == "s3",
	}

	app.Settings = settingsStore
	app.Entities = source
	app.UsersRepo = userRepo
	app.UsersService = userSvc
	app.ExportService = exportSvc
	app.Janitor = exports.NewJanitor(app.Config.ExportRoot, app.Config.ExportRetention)
	app.UsersHandler = users.NewHandler(userSvc)
	app.ExportHandler = exports.NewHandler(exportSvc)
	app.ExportLinkHandler = exportlink.NewHandler(settingsStore)
	app.SettingsHandler = settings.NewHandler(settingsStore, source)
	app.GoogleAuth = googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:     app.Config.GoogleClientID,
		ClientSecret: app.Config.GoogleClientSecret,
		RedirectURL:  app.Config.GoogleRedirectURL,
		UIRedirect:   app.Config.UIRedirectURL,
	}, userSvc)
	app.Health = health.NewService(app.DB, app.Config.ExportRoot)
	return nil
}
