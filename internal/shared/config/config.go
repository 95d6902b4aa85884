package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gdpr-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	DatabaseURL     string

	// Archive storage.
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	// Export generation and retention.
	ExportRoot              string
	ExportSettingsFile      string
	ExportRetention         time.Duration
	ExportRetentionSchedule string
	AdminUserIDs            []string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from the environment, after filling unset
// variables from .env and cmd/.env when present.
func Load() Config {
	loadEnvFiles(".env", "cmd/.env")

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       os.Getenv("AWS_REGION"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Prefix:        os.Getenv("S3_PREFIX"),
		SSEKMSKeyID:     os.Getenv("SSE_KMS_KEY_ID"),

		ExportRoot:              getEnv("EXPORT_ROOT", "./data/gdpr/csv_exports"),
		ExportSettingsFile:      os.Getenv("EXPORT_SETTINGS_FILE"),
		ExportRetention:         getDuration("EXPORT_RETENTION", 24*time.Hour),
		ExportRetentionSchedule: getEnv("EXPORT_RETENTION_SCHEDULE", "@hourly"),
		AdminUserIDs:            splitList(os.Getenv("ADMIN_USER_IDS")),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		UIRedirectURL:      os.Getenv("UI_REDIRECT_URL"),
	}
	telemetry.SetLevel(telemetry.ParseLevel(cfg.LogLevel))
	return cfg
}

// Validate reports settings that cannot work together. Only production
// requires a database.
func (c Config) Validate() error {
	var errs []error
	if c.Env == "production" && strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	if c.ObjectStoreType == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("OBJECT_STORE=s3 requires S3_BUCKET"))
	}
	if strings.TrimSpace(c.ExportRoot) == "" {
		errs = append(errs, errors.New("EXPORT_ROOT must not be empty"))
	}
	if c.ExportRetention < 0 {
		errs = append(errs, fmt.Errorf("EXPORT_RETENTION must not be negative, got %s", c.ExportRetention))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "value": raw, "default": def.String()})
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging", "stage":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "s3") {
		return "s3"
	}
	return "local"
}
