package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/famvault/server/internal/domain/ai"
	"github.com/famvault/server/internal/domain/family"
	"github.com/famvault/server/internal/domain/notification"
	"github.com/famvault/server/internal/domain/record"
	"github.com/famvault/server/internal/domain/user"
	"github.com/famvault/server/internal/shared/response"
)

// handleError maps domain sentinels to HTTP statuses. Anything unmapped
// falls through to the shared AppError / status mapping, defaulting to 500.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, family.ErrAccessDenied),
		errors.Is(err, family.ErrInvitationNotYours):
		response.Forbidden(c, err.Error())

	case errors.Is(err, record.ErrRecordNotFound),
		errors.Is(err, record.ErrDocumentNotFound),
		errors.Is(err, family.ErrMemberNotFound),
		errors.Is(err, family.ErrInvitationNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, notification.ErrNotificationNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, family.ErrAlreadyMember),
		errors.Is(err, family.ErrInvitationPending),
		errors.Is(err, family.ErrInvitationConsumed):
		response.Error(c, http.StatusConflict, err.Error())

	case errors.Is(err, record.ErrInvalidCategory),
		errors.Is(err, record.ErrTitleRequired),
		errors.Is(err, family.ErrInvalidPermission),
		errors.Is(err, family.ErrSelfEdge),
		errors.Is(err, user.ErrNameRequired):
		response.Error(c, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, family.ErrEmailRequired),
		errors.Is(err, family.ErrInvitationExpired),
		errors.Is(err, ai.ErrEmptyMessages),
		errors.Is(err, ai.ErrUnknownProvider):
		response.BadRequest(c, err.Error())

	default:
		response.FromError(c, err)
	}
}
