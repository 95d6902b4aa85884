package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Methods":     "GET, PUT, OPTIONS",
	"Access-Control-Allow-Headers":     "Authorization, Content-Type, X-Guest-Id, X-Request-Id",
	"Access-Control-Expose-Headers":    "Content-Disposition, Retry-After, X-Request-Id",
	"Access-Control-Max-Age":           "600",
}

// CORS answers preflight requests itself and sets CORS headers for listed
// origins. Archive downloads need Content-Disposition exposed to read the
// file name.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); allowed[origin] {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			for k, v := range corsHeaders {
				h.Set(k, v)
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
