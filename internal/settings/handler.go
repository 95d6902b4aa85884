package settings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/entities"
	"gdpr-backend/internal/shared/server/middleware"
	"gdpr-backend/internal/shared/server/respond"
	"gdpr-backend/internal/shared/telemetry"
)

// Handler serves the admin export settings API. Routes are expected to be
// mounted behind middleware.RequireAdmin.
type Handler struct {
	Store  Store
	Source entities.Source
}

func NewHandler(store Store, source entities.Source) *Handler {
	return &Handler{Store: store, Source: source}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export-settings", h.get)
	rg.PUT("/export-settings", h.put)
	rg.GET("/export-settings/catalog", h.catalog)
}

func (h *Handler) get(c *gin.Context) {
	cfg, err := h.Store.GetExportConfig(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load export settings", nil)
		return
	}
	respond.OK(c, cfg)
}

func (h *Handler) put(c *gin.Context) {
	var cfg ExportConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid export settings", gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	issues, err := Validate(ctx, cfg, h.Source)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to validate export settings", nil)
		return
	}
	if err := h.Store.SaveExportConfig(ctx, cfg); err != nil {
		if errors.Is(err, ErrReadOnly) {
			respond.Error(c, http.StatusConflict, "read_only", "export settings are managed by a file", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save export settings", nil)
		return
	}

	telemetry.Info("settings.export_saved", map[string]any{
		"user_id":         middleware.UserIDFromContext(c),
		"include_user":    cfg.IncludeUser,
		"linked_entities": len(cfg.LinkedEntities),
		"issues":          len(issues),
	})
	if issues == nil {
		issues = []Issue{}
	}
	respond.OK(c, gin.H{"config": cfg, "issues": issues})
}

func (h *Handler) catalog(c *gin.Context) {
	catalog, err := BuildCatalog(c.Request.Context(), h.Source)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load entity catalog", nil)
		return
	}
	respond.OK(c, catalog)
}
