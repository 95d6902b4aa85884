package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"EXPORT_ROOT", "EXPORT_RETENTION", "ADMIN_USER_IDS", "OBJECT_STORE", "ENV"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ExportRoot != "./data/gdpr/csv_exports" {
		t.Fatalf("unexpected export root: %s", cfg.ExportRoot)
	}
	if cfg.ExportRetention != 24*time.Hour {
		t.Fatalf("unexpected retention: %s", cfg.ExportRetention)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("unexpected object store: %s", cfg.ObjectStoreType)
	}
	if cfg.Env != "dev" {
		t.Fatalf("unexpected env: %s", cfg.Env)
	}
	if len(cfg.AdminUserIDs) != 0 {
		t.Fatalf("expected no admins, got %v", cfg.AdminUserIDs)
	}
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EXPORT_ROOT", "/var/exports")
	t.Setenv("EXPORT_RETENTION", "90m")
	t.Setenv("ADMIN_USER_IDS", " 1, 2 ,,")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("ENV", "prod")

	cfg := Load()
	if cfg.ExportRoot != "/var/exports" {
		t.Fatalf("unexpected export root: %s", cfg.ExportRoot)
	}
	if cfg.ExportRetention != 90*time.Minute {
		t.Fatalf("unexpected retention: %s", cfg.ExportRetention)
	}
	if len(cfg.AdminUserIDs) != 2 || cfg.AdminUserIDs[0] != "1" || cfg.AdminUserIDs[1] != "2" {
		t.Fatalf("unexpected admins: %v", cfg.AdminUserIDs)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("unexpected object store: %s", cfg.ObjectStoreType)
	}
	if cfg.Env != "production" {
		t.Fatalf("unexpected env: %s", cfg.Env)
	}
}

func TestLoadInvalidRetentionFallsBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EXPORT_RETENTION", "soon")

	if got := Load().ExportRetention; got != 24*time.Hour {
		t.Fatalf("expected default retention, got %s", got)
	}
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("EXPORT_ROOT=/from/file\nPORT=9090\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("EXPORT_ROOT", "/from/env")
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg := Load()
	if cfg.ExportRoot != "/from/env" {
		t.Fatalf("expected env to win, got %s", cfg.ExportRoot)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port from .env, got %s", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	ok := Config{Env: "dev", ObjectStoreType: "local", ExportRoot: "./exports", ExportRetention: time.Hour}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	bad := ok
	bad.Env = "production"
	bad.ObjectStoreType = "s3"
	bad.ExportRoot = " "
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected errors")
	}
	for _, want := range []string{"DATABASE_URL", "S3_BUCKET", "EXPORT_ROOT"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %v", want, err)
		}
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
