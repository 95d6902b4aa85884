package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gdpr-backend/internal/shared/server/middleware"
	"gdpr-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

// ProfileField is one labelled value of the caller's own account, as it
// would appear in the user export unit.
type ProfileField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

func (h *Handler) me(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
		return
	case err != nil:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}

	defs := FieldDefinitions()
	fields := make([]ProfileField, 0, len(defs))
	for _, def := range defs {
		value, _ := FieldValue(user, def.Key)
		fields = append(fields, ProfileField{Key: def.Key, Label: def.Label, Value: value})
	}
	respond.JSON(c, http.StatusOK, gin.H{"user": user, "fields": fields})
}
