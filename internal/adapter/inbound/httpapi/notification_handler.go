package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/famvault/server/internal/domain/notification"
	"github.com/famvault/server/internal/shared/response"
	"github.com/famvault/server/internal/utils/middleware"
)

// NotificationHandler handles in-app notification requests.
type NotificationHandler struct {
	notifications *notification.Service
}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes registers notification routes on an authenticated group.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	n := r.Group("/notifications")
	{
		n.GET("", h.List)
		n.GET("/unread-count", h.UnreadCount)
		n.POST("/:id/read", h.MarkRead)
		n.POST("/read-all", h.MarkAllRead)
		n.DELETE("/:id", h.Delete)
	}
}

// notificationPayload is a notification on the wire.
type notificationPayload struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns the caller's notifications, newest first.
//
//	@Summary		List notifications
//	@Tags			Notifications
//	@Produce		json
//	@Security		BearerAuth
//	@Param			unread	query	bool	false	"Only unread"
//	@Param			limit	query	int		false	"Page size"
//	@Param			offset	query	int		false	"Page offset"
//	@Success		200		{array}	notificationPayload
//	@Router			/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var query struct {
		Unread bool `form:"unread"`
		Limit  int  `form:"limit"`
		Offset int  `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "invalid query")
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), middleware.GetUserID(c), query.Unread, query.Limit, query.Offset)
	if err != nil {
		handleError(c, err)
		return
	}

	payloads := make([]notificationPayload, len(notifications))
	for i, n := range notifications {
		payloads[i] = notificationPayload{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, payloads)
}

// UnreadCount returns the caller's unread notification count.
//
//	@Summary		Unread count
//	@Tags			Notifications
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]int64
//	@Router			/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.notifications.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead marks one notification read.
//
//	@Summary		Mark notification read
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Notification ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification ID")
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead marks every notification of the caller read.
//
//	@Summary		Mark all notifications read
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Success		204
//	@Router			/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes one notification.
//
//	@Summary		Delete notification
//	@Tags			Notifications
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Notification ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid notification ID")
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
