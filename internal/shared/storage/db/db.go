package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"gdpr-backend/internal/shared/telemetry"
)

// Options controls the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

// Profile names a pool preset for a kind of process.
type Profile string

const (
	ProfileServer Profile = "server"
	ProfileLambda Profile = "lambda"
	ProfileCLI    Profile = "cli"
)

var profiles = map[Profile]Options{
	ProfileServer: {MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
	ProfileLambda: {MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: 15 * time.Minute, ConnMaxIdleTime: 30 * time.Second, PingTimeout: 3 * time.Second},
	ProfileCLI:    {MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetime: time.Hour, ConnMaxIdleTime: 2 * time.Minute, PingTimeout: 5 * time.Second},
}

var ErrNoDatabaseURL = errors.New("DATABASE_URL is empty")

var openDB = sql.Open

// DetectProfile returns ProfileLambda inside AWS Lambda, ProfileServer otherwise.
func DetectProfile() Profile {
	if strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != "" {
		return ProfileLambda
	}
	return ProfileServer
}

// OptionsFor returns the preset for p with DB_MAX_OPEN_CONNS,
// DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME, DB_CONN_MAX_IDLE_TIME and
// DB_PING_TIMEOUT applied on top. Unknown profiles use the server preset.
func OptionsFor(p Profile) Options {
	opts, ok := profiles[p]
	if !ok {
		opts = profiles[ProfileServer]
	}
	envInt("DB_MAX_OPEN_CONNS", &opts.MaxOpenConns)
	envInt("DB_MAX_IDLE_CONNS", &opts.MaxIdleConns)
	envDuration("DB_CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	envDuration("DB_CONN_MAX_IDLE_TIME", &opts.ConnMaxIdleTime)
	envDuration("DB_PING_TIMEOUT", &opts.PingTimeout)
	return opts
}

// Connect opens a pgx-backed pool and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}
	pool, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(pool, opts)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return pool, nil
}

var shared struct {
	mu   sync.Mutex
	pool *sql.DB
}

// Shared returns one pool per process, connecting on first use. A failed
// connect is retried by the next caller. Lambda handlers use it so warm
// invocations keep their connections.
func Shared(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	if shared.pool != nil {
		return shared.pool, nil
	}
	pool, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	shared.pool = pool
	return pool, nil
}

func configurePool(pool *sql.DB, opts Options) {
	def := profiles[ProfileServer]
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = def.MaxOpenConns
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = def.MaxIdleConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = def.ConnMaxLifetime
	}
	pool.SetMaxOpenConns(opts.MaxOpenConns)
	pool.SetMaxIdleConns(opts.MaxIdleConns)
	pool.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		pool.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func envInt(key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = v
}

func envDuration(key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = v
}
