package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/telemetry"
)

// Logging writes one request.complete line per request. Export requests
// also carry the run id and outcome set by the export handler. Preflight
// requests are not logged.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"path":        c.Request.URL.Path,
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
			"client_ip":   c.ClientIP(),
		}
		if id := UserIDFromContext(c); id != "" {
			fields["user_id"] = id
			fields["is_guest"] = IsGuest(c)
		}
		if runID := c.GetString("exportRunId"); runID != "" {
			fields["export_run_id"] = runID
			fields["export_outcome"] = c.GetString("exportOutcome")
		}

		if status >= http.StatusInternalServerError {
			telemetry.Warn("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
