package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/auth"
	"gdpr-backend/internal/shared/server/respond"
)

const (
	userIDKey  = "userId"
	isGuestKey = "isGuest"

	guestHeader = "X-Guest-Id"
	guestPrefix = "guest:"
)

// Auth resolves the caller from a Bearer token or, failing that, the
// X-Guest-Id header. Guests are marked with isGuest and cannot own exports.
// Requests without a usable identity get 401.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if msg, ok := identify(c); !ok {
			unauthorized(c, msg)
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the caller like Auth but lets requests without a
// usable identity through anonymously, with no user id set.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		identify(c)
		c.Next()
	}
}

// identify stores the caller identity on c. On failure nothing is stored and
// the returned message says why.
func identify(c *gin.Context) (string, bool) {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		token, ok := bearerToken(header)
		if !ok {
			return "missing or invalid token", false
		}
		claims, err := auth.VerifyJWT(token)
		if err != nil {
			return "missing or invalid token", false
		}
		c.Set(userIDKey, claims.Sub)
		c.Set(isGuestKey, false)
		return "", true
	}

	guestID := strings.TrimSpace(c.GetHeader(guestHeader))
	if guestID == "" {
		return "Missing identity", false
	}
	c.Set(userIDKey, guestPrefix+guestID)
	c.Set(isGuestKey, true)
	return "", true
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(c *gin.Context, msg string) {
	respond.Error(c, http.StatusUnauthorized, "unauthorized", msg, nil)
}

// UserIDFromContext returns the caller id stored by Auth.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
