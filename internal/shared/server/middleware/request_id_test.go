package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gdpr-backend/internal/shared/telemetry"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected generated uuid, got %q", id)
	}
	if w.Body.String() != id {
		t.Fatalf("context id %q does not match header %q", w.Body.String(), id)
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("expected caller id to be kept, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("a", 500))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); len(got) > maxRequestIDLen {
		t.Fatalf("expected oversized id to be replaced")
	}
}

func TestRecoveryLogsRunID(t *testing.T) {
	var buf bytes.Buffer
	prev := telemetry.Output
	telemetry.Output = &buf
	defer func() { telemetry.Output = prev }()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/api/v1/export/:uid", func(c *gin.Context) {
		c.Set("exportRunId", "run-1")
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/export/42", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error.Code != "internal" {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}
	if !strings.Contains(buf.String(), `"export_run_id":"run-1"`) {
		t.Fatalf("expected run id in panic log, got %s", buf.String())
	}
}
