package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/telemetry"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := telemetry.Output
	telemetry.Output = &buf
	t.Cleanup(func() { telemetry.Output = prev })
	return &buf
}

func TestErrorEnvelopeAndLogLevel(t *testing.T) {
	logs := captureLogs(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/missing", func(c *gin.Context) {
		c.Set("exportRunId", "run-9")
		Error(c, http.StatusNotFound, "not_found", "not found", nil)
	})
	r.GET("/broken", func(c *gin.Context) {
		Error(c, http.StatusServiceUnavailable, "export_unavailable", "retry", gin.H{"attempt": 1})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusNotFound || body.Error.Code != "not_found" || body.Error.Details != nil {
		t.Fatalf("unexpected response %d %+v", w.Code, body)
	}
	if !strings.Contains(logs.String(), `"level":"warn"`) || !strings.Contains(logs.String(), `"export_run_id":"run-9"`) {
		t.Fatalf("unexpected log: %s", logs.String())
	}

	logs.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(logs.String(), `"level":"error"`) {
		t.Fatalf("expected error level, got %s", logs.String())
	}
}

func TestAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/file", func(c *gin.Context) {
		Attachment(c, "export_1.zip", "application/zip", 3, strings.NewReader("abc"))
	})
	r.GET("/quoted", func(c *gin.Context) {
		Attachment(c, "my export.zip", "application/zip", 3, strings.NewReader("abc"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/file", nil))
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=export_1.zip" {
		t.Fatalf("unexpected disposition %q", got)
	}
	if w.Header().Get("Content-Type") != "application/zip" || w.Body.String() != "abc" {
		t.Fatalf("unexpected response %q %q", w.Header().Get("Content-Type"), w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quoted", nil))
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="my export.zip"` {
		t.Fatalf("unexpected disposition %q", got)
	}
}

func TestEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/empty", func(c *gin.Context) { Empty(c, http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/empty", nil))
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
}
