package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/famvault/server/internal/domain/user"
	"github.com/famvault/server/internal/shared/response"
	"github.com/famvault/server/internal/utils/middleware"
)

// UserHandler handles profile and consent requests.
type UserHandler struct {
	users *user.Service
}

// NewUserHandler creates a user handler.
func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes registers user routes on an authenticated group.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	me := r.Group("/users/me")
	{
		me.GET("", h.GetProfile)
		me.PUT("", h.UpdateProfile)
		me.GET("/consent", h.GetConsent)
		me.PUT("/consent", h.UpdateConsent)
	}
}

// profilePayload is a user profile on the wire.
type profilePayload struct {
	ID         uuid.UUID            `json:"id"`
	Email      string               `json:"email"`
	Name       string               `json:"name"`
	Role       string               `json:"role"`
	MFAEnabled bool                 `json:"mfaEnabled"`
	Consent    user.ConsentSettings `json:"consent"`
	CreatedAt  time.Time            `json:"createdAt"`
}

func toProfilePayload(u *user.User) profilePayload {
	return profilePayload{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		MFAEnabled: u.MFAEnabled,
		Consent:    u.Consent,
		CreatedAt:  u.CreatedAt,
	}
}

// GetProfile returns the caller's profile.
//
//	@Summary		Get profile
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	profilePayload
//	@Router			/users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfilePayload(u))
}

// UpdateProfileRequest is the profile update body.
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateProfile changes the caller's display name.
//
//	@Summary		Update profile
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		UpdateProfileRequest	true	"Profile"
//	@Success		200		{object}	profilePayload
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/users/me [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.users.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfilePayload(u))
}

// GetConsent returns the caller's consent settings as a flat flag object.
//
//	@Summary		Get consent settings
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	user.ConsentSettings
//	@Router			/users/me/consent [get]
func (h *UserHandler) GetConsent(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Consent)
}

// UpdateConsent replaces the caller's consent settings. The body is a flat
// map of flags; unknown keys are preserved as extensions.
//
//	@Summary		Update consent settings
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		user.ConsentSettings	true	"Consent flags"
//	@Success		200		{object}	user.ConsentSettings
//	@Router			/users/me/consent [put]
func (h *UserHandler) UpdateConsent(c *gin.Context) {
	var consent user.ConsentSettings
	if err := c.ShouldBindJSON(&consent); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.users.UpdateConsent(c.Request.Context(), middleware.GetUserID(c), consent)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, u.Consent)
}
