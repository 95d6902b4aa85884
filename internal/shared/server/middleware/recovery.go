package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/server/respond"
	"gdpr-backend/internal/shared/telemetry"
)

// Recovery turns a panic into a logged 500 with the standard error body.
// A panic during an export also reports the run id.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		fields := map[string]any{
			"request_id": RequestIDFromContext(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"error":      rec,
			"stack":      string(debug.Stack()),
		}
		if runID := c.GetString("exportRunId"); runID != "" {
			fields["export_run_id"] = runID
		}
		telemetry.Error("panic", fields)
		respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
	})
}
