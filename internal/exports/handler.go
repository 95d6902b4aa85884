package exports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/server/middleware"
	"gdpr-backend/internal/shared/server/respond"
	"gdpr-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export/:uid", h.export)
}

func (h *Handler) export(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}

	requester := ""
	if !middleware.IsGuest(c) {
		requester = middleware.UserIDFromContext(c)
	}

	ctx := c.Request.Context()
	res, err := h.Svc.Export(ctx, Request{RequesterID: requester, TargetID: c.Param("uid")})
	c.Set("exportRunId", res.RunID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.Set("exportOutcome", "not_found")
			respond.Error(c, http.StatusNotFound, "not_found", "not found", nil)
		case errors.Is(err, ErrArchiveUnavailable):
			c.Set("exportOutcome", "unavailable")
			respond.Error(c, http.StatusServiceUnavailable, "export_unavailable", "export failed, please retry", nil)
		default:
			c.Set("exportOutcome", "error")
			respond.Error(c, http.StatusInternalServerError, "internal_error", "export failed", nil)
		}
		return
	}

	if res.Archive == nil {
		c.Set("exportOutcome", "empty")
		respond.Empty(c, http.StatusOK)
		return
	}

	body, err := h.Svc.Open(ctx, res.Archive)
	if err != nil {
		telemetry.Error("export.open_failed", map[string]any{
			"run_id":      res.RunID,
			"storage_key": res.Archive.StorageKey,
			"error":       err,
		})
		c.Set("exportOutcome", "unavailable")
		respond.Error(c, http.StatusServiceUnavailable, "export_unavailable", "export failed, please retry", nil)
		return
	}
	defer body.Close()

	c.Set("exportOutcome", "archive")
	respond.Attachment(c, res.Archive.Filename, "application/zip", res.Archive.SizeBytes, body)
}
