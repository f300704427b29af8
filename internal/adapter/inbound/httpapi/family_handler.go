package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/adapter/outbound/notify"
	"github.com/famvault/server/internal/domain/family"
	"github.com/famvault/server/internal/shared/response"
	"github.com/famvault/server/internal/utils/middleware"
)

// FamilyHandler handles family membership and invitation requests.
type FamilyHandler struct {
	domain *family.Domain
	users  family.UserLookup
	sink   *notify.Sink
	logger *zap.Logger
}

// NewFamilyHandler creates a family handler. sink may be nil.
func NewFamilyHandler(domain *family.Domain, users family.UserLookup, sink *notify.Sink, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{domain: domain, users: users, sink: sink, logger: logger}
}

// RegisterRoutes registers family routes on an authenticated group.
func (h *FamilyHandler) RegisterRoutes(r *gin.RouterGroup) {
	fam := r.Group("/family")
	{
		fam.POST("/invitations", h.Invite)
		fam.GET("/invitations", h.ListInvitations)
		fam.GET("/invitations/pending", h.PendingInvitations)
		fam.POST("/invitations/accept", h.Accept)
		fam.POST("/invitations/reject", h.Reject)
		fam.DELETE("/invitations/:id", h.Revoke)

		fam.GET("/members", h.ListMembers)
		fam.GET("/memberships", h.ListMemberships)
		fam.PUT("/members/:id", h.UpdatePermission)
		fam.DELETE("/members/:id", h.RemoveMember)
	}
}

// invitationPayload is an invitation on the wire. The token is only exposed
// to the inviter, who relays it out of band.
type invitationPayload struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Permission string    `json:"permission"`
	Token      string    `json:"token,omitempty"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Accepted   bool      `json:"accepted"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toInvitationPayload(inv *family.Invitation, includeToken bool) invitationPayload {
	p := invitationPayload{
		ID:         inv.ID,
		Email:      inv.Email,
		Permission: inv.Permission.String(),
		ExpiresAt:  inv.ExpiresAt,
		Accepted:   inv.Accepted,
		CreatedAt:  inv.CreatedAt,
	}
	if includeToken {
		p.Token = inv.Token
	}
	return p
}

// memberPayload is a membership edge with user details.
type memberPayload struct {
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	Permission string    `json:"permission"`
	Since      time.Time `json:"since"`
}

// InviteRequest is the invitation body.
type InviteRequest struct {
	Email      string `json:"email" binding:"required"`
	Permission string `json:"permission" binding:"required"`
}

// Invite creates a pending invitation.
//
//	@Summary		Invite a family member
//	@Tags			Family
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		InviteRequest	true	"Invitation"
//	@Success		201		{object}	invitationPayload
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/family/invitations [post]
func (h *FamilyHandler) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	inviterID := middleware.GetUserID(c)

	inv, err := h.domain.Invite(c.Request.Context(), inviterID, req.Email, req.Permission)
	if err != nil {
		handleError(c, err)
		return
	}

	h.notifyInvitee(c, inv, inviterID)

	c.JSON(http.StatusCreated, toInvitationPayload(inv, true))
}

// notifyInvitee drops an in-app notification when the invitee already has an
// account. Best effort.
func (h *FamilyHandler) notifyInvitee(c *gin.Context, inv *family.Invitation, inviterID uuid.UUID) {
	if h.sink == nil {
		return
	}
	invitee, err := h.users.GetByEmail(c.Request.Context(), inv.Email)
	if err != nil {
		return
	}
	if err := h.sink.FamilyInvited(c.Request.Context(), invitee.ID, inviterID, inv.Permission.String()); err != nil {
		h.logger.Warn("invitation notification failed",
			zap.String("invitation_id", inv.ID.String()),
			zap.Error(err),
		)
	}
}

// ListInvitations lists invitations the caller has sent.
//
//	@Summary		List sent invitations
//	@Tags			Family
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	invitationPayload
//	@Router			/family/invitations [get]
func (h *FamilyHandler) ListInvitations(c *gin.Context) {
	invitations, err := h.domain.ListInvitations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	payloads := make([]invitationPayload, len(invitations))
	for i, inv := range invitations {
		payloads[i] = toInvitationPayload(inv, true)
	}
	c.JSON(http.StatusOK, payloads)
}

// PendingInvitations lists open invitations addressed to the caller.
//
//	@Summary		List received invitations
//	@Tags			Family
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	invitationPayload
//	@Router			/family/invitations/pending [get]
func (h *FamilyHandler) PendingInvitations(c *gin.Context) {
	invitations, err := h.domain.PendingForEmail(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		handleError(c, err)
		return
	}

	payloads := make([]invitationPayload, len(invitations))
	for i, inv := range invitations {
		// Recipients act through the token; it is theirs to see.
		payloads[i] = toInvitationPayload(inv, true)
	}
	c.JSON(http.StatusOK, payloads)
}

// TokenRequest carries an invitation token.
type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Accept consumes an invitation and joins the inviter's circle.
//
//	@Summary		Accept invitation
//	@Tags			Family
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		TokenRequest	true	"Invitation token"
//	@Success		200		{object}	memberPayload
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/family/invitations/accept [post]
func (h *FamilyHandler) Accept(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.domain.Accept(c.Request.Context(), middleware.GetUserID(c), req.Token)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberPayload{
		UserID:     member.PrimaryUserID,
		Permission: member.Permission.String(),
		Since:      member.CreatedAt,
	})
}

// Reject declines an invitation addressed to the caller.
//
//	@Summary		Reject invitation
//	@Tags			Family
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	TokenRequest	true	"Invitation token"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/family/invitations/reject [post]
func (h *FamilyHandler) Reject(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.domain.Reject(c.Request.Context(), middleware.GetUserID(c), req.Token); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Revoke withdraws a pending invitation the caller sent.
//
//	@Summary		Revoke invitation
//	@Tags			Family
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/family/invitations/{id} [delete]
func (h *FamilyHandler) Revoke(c *gin.Context) {
	invitationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid invitation ID")
		return
	}

	if err := h.domain.Revoke(c.Request.Context(), middleware.GetUserID(c), invitationID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMembers lists the caller's family circle.
//
//	@Summary		List family members
//	@Tags			Family
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	memberPayload
//	@Router			/family/members [get]
func (h *FamilyHandler) ListMembers(c *gin.Context) {
	members, err := h.domain.ListMembers(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, membersToPayloads(members, false))
}

// ListMemberships lists the circles the caller belongs to.
//
//	@Summary		List memberships
//	@Tags			Family
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	memberPayload
//	@Router			/family/memberships [get]
func (h *FamilyHandler) ListMemberships(c *gin.Context) {
	memberships, err := h.domain.ListMemberships(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, membersToPayloads(memberships, true))
}

// membersToPayloads renders edges. For memberships the interesting user is
// the primary, not the member.
func membersToPayloads(members []*family.MemberWithUser, primarySide bool) []memberPayload {
	payloads := make([]memberPayload, len(members))
	for i, m := range members {
		userID := m.Member.MemberUserID
		if primarySide {
			userID = m.Member.PrimaryUserID
		}
		payloads[i] = memberPayload{
			UserID:     userID,
			Email:      m.Email,
			Name:       m.Name,
			Permission: m.Member.Permission.String(),
			Since:      m.Member.CreatedAt,
		}
	}
	return payloads
}

// PermissionRequest carries a tier change.
type PermissionRequest struct {
	Permission string `json:"permission" binding:"required"`
}

// UpdatePermission changes a member's tier on the caller's circle.
//
//	@Summary		Update member permission
//	@Tags			Family
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Member user ID"
//	@Param			request	body		PermissionRequest	true	"New tier"
//	@Success		200		{object}	memberPayload
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		422		{object}	response.ErrorResponse
//	@Router			/family/members/{id} [put]
func (h *FamilyHandler) UpdatePermission(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member ID")
		return
	}
	var req PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	edge, err := h.domain.UpdatePermission(c.Request.Context(), middleware.GetUserID(c), memberID, req.Permission)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberPayload{
		UserID:     edge.MemberUserID,
		Permission: edge.Permission.String(),
		Since:      edge.CreatedAt,
	})
}

// RemoveMember removes a member from the caller's circle.
//
//	@Summary		Remove family member
//	@Tags			Family
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Member user ID"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/family/members/{id} [delete]
func (h *FamilyHandler) RemoveMember(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid member ID")
		return
	}

	if err := h.domain.RemoveMember(c.Request.Context(), middleware.GetUserID(c), memberID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
