package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ragserve/internal/model"
	"ragserve/internal/transport/http/response"
)

// SettingsStore is the durable settings repository; SettingsInvalidator is
// the cache layer in front of it.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*model.RAGSettings, error)
	SaveSettings(ctx context.Context, settings *model.RAGSettings) error
}

type SettingsInvalidator interface {
	Invalidate(ctx context.Context) error
}

type SettingsHandler struct {
	store       SettingsStore
	invalidator SettingsInvalidator
}

type UpdateSettingsRequest struct {
	Enabled                 *bool `json:"enabled"`
	WorkspaceUploadsEnabled *bool `json:"workspace_uploads_enabled"`
	ChatUploadsEnabled      *bool `json:"chat_uploads_enabled"`
}

func NewSettingsHandler(store SettingsStore, invalidator SettingsInvalidator) *SettingsHandler {
	return &SettingsHandler{store: store, invalidator: invalidator}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read settings failed")
		return
	}
	response.OK(c, settings)
}

// Update applies only the fields present in the request, so a caller can
// flip one flag without restating the others.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read settings failed")
		return
	}

	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.WorkspaceUploadsEnabled != nil {
		settings.WorkspaceUploadsEnabled = *req.WorkspaceUploadsEnabled
	}
	if req.ChatUploadsEnabled != nil {
		settings.ChatUploadsEnabled = *req.ChatUploadsEnabled
	}

	if err := h.store.SaveSettings(c.Request.Context(), settings); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save settings failed")
		return
	}
	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(c.Request.Context()); err != nil {
			// stale cache entry expires on its own TTL
			response.OK(c, settings)
			return
		}
	}
	response.OK(c, settings)
}
