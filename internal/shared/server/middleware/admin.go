package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/server/respond"
)

// RequireAdmin rejects requests whose authenticated user is not listed in adminIDs.
func RequireAdmin(adminIDs []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			allowed[id] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		if IsGuest(c) {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin access required", nil)
			return
		}
		if _, ok := allowed[UserIDFromContext(c)]; !ok {
			respond.Error(c, http.StatusForbidden, "forbidden", "admin access required", nil)
			return
		}
		c.Next()
	}
}

// IsGuest reports whether the request identity came from a guest header.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	val, ok := c.Get(isGuestKey)
	if !ok {
		return false
	}
	guest, _ := val.(bool)
	return guest
}
