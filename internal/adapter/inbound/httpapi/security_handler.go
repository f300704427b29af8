package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/famvault/server/internal/module/security"
	"github.com/famvault/server/internal/shared/response"
)

// SecurityHandler exposes sliding-window security counters to operators.
type SecurityHandler struct {
	events security.EventRecorder
}

// NewSecurityHandler creates a security handler.
func NewSecurityHandler(events security.EventRecorder) *SecurityHandler {
	return &SecurityHandler{events: events}
}

// RegisterRoutes registers security routes on an admin group.
func (h *SecurityHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/security/events", h.Count)
	r.DELETE("/security/events", h.Clear)
}

// Count returns a subject's in-window event count.
//
//	@Summary		Security event count
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			kind	query		string	true	"Event kind (failed_auth, suspicious_ip)"
//	@Param			subject	query		string	true	"Subject (email or IP)"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/admin/security/events [get]
func (h *SecurityHandler) Count(c *gin.Context) {
	kind, subject, ok := eventQuery(c)
	if !ok {
		return
	}

	count, err := h.events.Count(c.Request.Context(), kind, subject)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"kind":    kind,
		"subject": subject,
		"count":   count,
	})
}

// Clear drops a subject's counter.
//
//	@Summary		Clear security counter
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			kind	query	string	true	"Event kind"
//	@Param			subject	query	string	true	"Subject"
//	@Success		204
//	@Router			/admin/security/events [delete]
func (h *SecurityHandler) Clear(c *gin.Context) {
	kind, subject, ok := eventQuery(c)
	if !ok {
		return
	}

	if err := h.events.Clear(c.Request.Context(), kind, subject); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func eventQuery(c *gin.Context) (security.EventKind, string, bool) {
	kind := security.EventKind(c.Query("kind"))
	subject := c.Query("subject")
	if kind != security.EventFailedAuth && kind != security.EventSuspiciousIP {
		response.BadRequest(c, "unknown event kind")
		return "", "", false
	}
	if subject == "" {
		response.BadRequest(c, "subject is required")
		return "", "", false
	}
	return kind, subject, true
}
