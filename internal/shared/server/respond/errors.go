package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/telemetry"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error aborts the request with the error envelope and logs it. Server
// errors log at error level, client errors at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("requestId"),
	}
	for ctxKey, field := range map[string]string{
		"userId":      "user_id",
		"exportRunId": "export_run_id",
	} {
		if v := c.GetString(ctxKey); v != "" {
			fields[field] = v
		}
	}
	if guest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = guest
	}

	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message, Details: details}})
}
