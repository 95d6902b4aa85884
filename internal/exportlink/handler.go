package exportlink

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/settings"
	"gdpr-backend/internal/shared/server/middleware"
	"gdpr-backend/internal/shared/server/respond"
)

type Handler struct {
	Store settings.Store
}

func NewHandler(store settings.Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes mounts the viewer-facing link route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export-link", h.render)
}

// RegisterAdminRoutes mounts the link settings routes. rg must already require an admin.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/export-link", h.getSettings)
	rg.PUT("/export-link", h.putSettings)
}

func (h *Handler) render(c *gin.Context) {
	ls, err := h.Store.GetLinkSettings(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load export link", nil)
		return
	}

	viewer := ""
	if !middleware.IsGuest(c) {
		viewer = middleware.UserIDFromContext(c)
	}
	link, ok := Formatter{Classes: ls.Classes}.Render(Field{LinkLabel: ls.LinkLabel}, viewer)
	if !ok {
		respond.Empty(c, http.StatusNoContent)
		return
	}
	respond.OK(c, link)
}

func (h *Handler) getSettings(c *gin.Context) {
	ls, err := h.Store.GetLinkSettings(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load export link", nil)
		return
	}
	respond.OK(c, gin.H{
		"settings": ls,
		"summary":  summaryOrEmpty(Formatter{Classes: ls.Classes}.Summary()),
	})
}

func (h *Handler) putSettings(c *gin.Context) {
	var ls settings.LinkSettings
	if err := c.ShouldBindJSON(&ls); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid export link settings", gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.SaveLinkSettings(c.Request.Context(), ls); err != nil {
		if errors.Is(err, settings.ErrReadOnly) {
			respond.Error(c, http.StatusConflict, "read_only", "export settings are managed by a file", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save export link", nil)
		return
	}
	respond.OK(c, gin.H{
		"settings": ls,
		"summary":  summaryOrEmpty(Formatter{Classes: ls.Classes}.Summary()),
	})
}

func summaryOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
