package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "gdpr-backend/internal/auth"
	"gdpr-backend/internal/exportlink"
	"gdpr-backend/internal/exports"
	"gdpr-backend/internal/services/health"
	"gdpr-backend/internal/settings"
	"gdpr-backend/internal/shared/config"
	"gdpr-backend/internal/shared/metrics"
	"gdpr-backend/internal/shared/server/middleware"
	"gdpr-backend/internal/shared/server/respond"
	"gdpr-backend/internal/users"
)

const exportRoute = "/api/v1/export/:uid"

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config            config.Config
	Health            *health.Service
	ExportHandler     *exports.Handler
	ExportLinkHandler *exportlink.Handler
	SettingsHandler   *settings.Handler
	UserHandler       *users.Handler
	GoogleAuth        *googleauth.GoogleService
	RateLimiter       *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		report := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: middleware.RateGroupDefault,
		GroupFor:     rateLimitGroup,
		Limiter:      deps.RateLimiter,
		Rules: map[string]middleware.RateLimitRule{
			middleware.RateGroupDefault: {Rate: 5, Burst: 20},
			middleware.RateGroupExport:  {Rate: 1.0 / 60.0, Burst: 3},
		},
	})

	// Export routes answer anonymous callers themselves: 404 for the
	// archive, 204 for the link.
	exportRoutes := api.Group("", middleware.OptionalAuth(), limit)
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(exportRoutes)
	}
	if deps.ExportLinkHandler != nil {
		deps.ExportLinkHandler.RegisterRoutes(exportRoutes)
	}

	authed := api.Group("", middleware.Auth(), limit)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}

	admin := authed.Group("/admin", middleware.RequireAdmin(deps.Config.AdminUserIDs))
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.RegisterRoutes(admin)
	}
	if deps.ExportLinkHandler != nil {
		deps.ExportLinkHandler.RegisterAdminRoutes(admin)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.FullPath() == exportRoute {
		return middleware.RateGroupExport
	}
	return middleware.RateGroupDefault
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
