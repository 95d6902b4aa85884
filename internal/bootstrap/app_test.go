package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gdpr-backend/internal/settings"
	sharedauth "gdpr-backend/internal/shared/auth"
	"gdpr-backend/internal/shared/config"
	"gdpr-backend/internal/users"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")
	return config.Config{
		Env:                     "dev",
		ObjectStoreType:         "local",
		ExportRoot:              t.TempDir(),
		ExportRetention:         time.Hour,
		ExportRetentionSchedule: "@hourly",
		AdminUserIDs:            []string{"google:1"},
	}
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{Sub: sub})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

func TestBuildServesExport(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx := context.Background()
	if err := app.UsersRepo.Upsert(ctx, users.User{ID: "google:42", Email: "a@example.com"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := app.Settings.SaveExportConfig(ctx, settings.ExportConfig{
		IncludeUser: true,
		UserFields:  []settings.FieldToggle{{Key: "email", Enabled: true}},
	}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/google:42", nil)
	req.Header.Set("Authorization", bearer(t, "google:42"))
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.HasPrefix(resp.Header().Get("Content-Disposition"), "attachment; filename=export_") {
		t.Fatalf("expected attachment, got headers %v", resp.Header())
	}
}

func TestBuildRoutes(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	cases := []struct {
		name    string
		method  string
		path    string
		auth    string
		rawAuth string
		want    int
	}{
		{name: "health", method: http.MethodGet, path: "/api/v1/health", want: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", want: http.StatusOK},
		{name: "export without identity", method: http.MethodGet, path: "/api/v1/export/google:42", want: http.StatusNotFound},
		{name: "export with invalid token", method: http.MethodGet, path: "/api/v1/export/google:42", rawAuth: "Bearer garbage", want: http.StatusNotFound},
		{name: "export of anonymous id", method: http.MethodGet, path: "/api/v1/export/0", want: http.StatusNotFound},
		{name: "export link without identity", method: http.MethodGet, path: "/api/v1/export-link", want: http.StatusNoContent},
		{name: "me without identity", method: http.MethodGet, path: "/api/v1/me", want: http.StatusUnauthorized},
		{name: "admin settings without identity", method: http.MethodGet, path: "/api/v1/admin/export-settings", want: http.StatusUnauthorized},
		{name: "export of another user", method: http.MethodGet, path: "/api/v1/export/google:7", auth: "google:42", want: http.StatusNotFound},
		{name: "admin settings as user", method: http.MethodGet, path: "/api/v1/admin/export-settings", auth: "google:42", want: http.StatusForbidden},
		{name: "admin settings as admin", method: http.MethodGet, path: "/api/v1/admin/export-settings", auth: "google:1", want: http.StatusOK},
		{name: "export link without label", method: http.MethodGet, path: "/api/v1/export-link", auth: "google:42", want: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", bearer(t, tc.auth))
			}
			if tc.rawAuth != "" {
				req.Header.Set("Authorization", tc.rawAuth)
			}
			resp := httptest.NewRecorder()
			app.Router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, resp.Code, resp.Body.String())
			}
		})
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected missing DATABASE_URL to fail in production")
	}
}

func TestStartSchedulesJanitor(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := app.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	app.Janitor.Stop()
}

func TestBuildRejectsS3WithoutBucket(t *testing.T) {
	cfg := testConfig(t)
	cfg.ObjectStoreType = "s3"
	if _, err := Build(cfg); err == nil || !strings.Contains(err.Error(), "S3_BUCKET") {
		t.Fatalf("expected S3_BUCKET error, got %v", err)
	}
}

func TestBuildExportLinkHiddenFromAnonymousViewers(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := app.Settings.SaveLinkSettings(context.Background(), settings.LinkSettings{LinkLabel: "Download my data"}); err != nil {
		t.Fatalf("seed link settings: %v", err)
	}

	for _, header := range []string{"", "Bearer garbage"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/export-link", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		app.Router.ServeHTTP(resp, req)
		if resp.Code != http.StatusNoContent {
			t.Fatalf("authorization %q: expected 204, got %d: %s", header, resp.Code, resp.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export-link", nil)
	req.Header.Set("Authorization", bearer(t, "google:42"))
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "/api/v1/export/google:42") {
		t.Fatalf("expected link for viewer, got %d: %s", resp.Code, resp.Body.String())
	}
}
