package users

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plana-app/backend/internal/middleware"
	"github.com/plana-app/backend/internal/models"
	"github.com/plana-app/backend/pkg/response"
)

// SettingsStore updates a user's own profile fields.
type SettingsStore interface {
	UpdateSettings(ctx context.Context, id primitive.ObjectID, firstName, lastName string, darkMode bool) (*models.User, error)
}

// SettingsRequest is the body for PUT /api/users/settings.
type SettingsRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DarkMode  bool   `json:"darkMode"`
}

// Handler handles user settings endpoints.
type Handler struct {
	store SettingsStore
}

// NewHandler creates a user settings handler.
func NewHandler(store SettingsStore) *Handler {
	return &Handler{store: store}
}

// UpdateSettings handles PUT /api/users/settings (bearer). The target user
// is the caller, taken from the session token and never from the body.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.store.UpdateSettings(c.Request.Context(), middleware.UserID(c), req.FirstName, req.LastName, req.DarkMode)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to update settings")
		return
	}
	response.OK(c, gin.H{"user": user.ToPublic()})
}
