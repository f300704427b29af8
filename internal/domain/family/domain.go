package family

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/utils/random"
)

// Config holds family module configuration.
type Config struct {
	InvitationTTL    time.Duration
	TokenBytes       int
	MaxFamilyMembers int
}

// DefaultConfig returns the default family configuration.
func DefaultConfig() *Config {
	return &Config{
		InvitationTTL:    7 * 24 * time.Hour,
		TokenBytes:       32,
		MaxFamilyMembers: 20,
	}
}

// Domain implements the family invitation and membership logic.
type Domain struct {
	edges       EdgeRepository
	invitations InvitationRepository
	users       UserLookup
	cfg         *Config
	logger      *zap.Logger
}

// NewDomain creates a new family domain.
func NewDomain(edges EdgeRepository, invitations InvitationRepository, users UserLookup, cfg *Config, logger *zap.Logger) *Domain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Domain{
		edges:       edges,
		invitations: invitations,
		users:       users,
		cfg:         cfg,
		logger:      logger,
	}
}

// Invite creates a pending invitation from inviterID to the given email at
// the requested tier. Inviting yourself, an existing member, or an email
// that already has a pending invitation is rejected.
func (d *Domain) Invite(ctx context.Context, inviterID uuid.UUID, email string, tier string) (*Invitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	permission, err := ParsePermission(tier)
	if err != nil {
		return nil, err
	}

	inviter, err := d.users.GetByID(ctx, inviterID)
	if err != nil {
		return nil, fmt.Errorf("look up inviter: %w", err)
	}
	if strings.EqualFold(inviter.Email, email) {
		return nil, ErrSelfEdge
	}

	// The invitee may not have an account yet; that only blocks the
	// membership check, not the invitation itself.
	invitee, err := d.users.GetByEmail(ctx, email)
	if err == nil && invitee != nil {
		if _, err := d.edges.Find(ctx, inviterID, invitee.ID); err == nil {
			return nil, ErrAlreadyMember
		} else if !errors.Is(err, ErrMemberNotFound) {
			return nil, err
		}
	}

	if _, err := d.invitations.FindPendingByEmail(ctx, inviterID, email); err == nil {
		return nil, ErrInvitationPending
	} else if !errors.Is(err, ErrInvitationNotFound) {
		return nil, err
	}

	token, err := random.Token(d.cfg.TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}

	invitation := NewInvitation(inviterID, email, permission, token, d.cfg.InvitationTTL)
	if err := d.invitations.Create(ctx, invitation); err != nil {
		return nil, err
	}

	d.logger.Info("family invitation created",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("inviter_id", inviterID.String()),
		zap.String("permission", permission.String()),
	)
	return invitation, nil
}

// Accept consumes an invitation token and creates the member edge. The token
// must be pending, unexpired, and addressed to the accepting user's email.
// A consumed token behaves exactly like a missing one.
func (d *Domain) Accept(ctx context.Context, actorID uuid.UUID, token string) (*Member, error) {
	invitation, err := d.invitations.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation.Accepted {
		return nil, ErrInvitationNotFound
	}
	if invitation.IsExpired() {
		return nil, ErrInvitationExpired
	}

	actor, err := d.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("look up accepting user: %w", err)
	}
	if !invitation.IsForEmail(actor.Email) {
		return nil, ErrInvitationNotYours
	}

	member, err := NewMember(invitation.InviterID, actorID, invitation.Permission)
	if err != nil {
		return nil, err
	}

	if _, err := d.edges.Find(ctx, invitation.InviterID, actorID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}

	if err := d.edges.Create(ctx, member); err != nil {
		return nil, err
	}
	if err := d.invitations.MarkAccepted(ctx, invitation.ID); err != nil {
		// The edge exists; an unconsumed token would allow a duplicate
		// accept, which the unique (primary, member) pair still blocks.
		d.logger.Error("invitation accepted but not marked consumed",
			zap.String("invitation_id", invitation.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	d.logger.Info("family invitation accepted",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("primary_user_id", invitation.InviterID.String()),
		zap.String("member_user_id", actorID.String()),
		zap.String("permission", invitation.Permission.String()),
	)
	return member, nil
}

// Reject deletes a pending invitation addressed to the actor.
func (d *Domain) Reject(ctx context.Context, actorID uuid.UUID, token string) error {
	invitation, err := d.invitations.FindByToken(ctx, token)
	if err != nil {
		return err
	}

	actor, err := d.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("look up rejecting user: %w", err)
	}
	if !invitation.IsForEmail(actor.Email) {
		return ErrInvitationNotYours
	}

	return d.invitations.Delete(ctx, invitation.ID)
}

// Revoke deletes a pending invitation the inviter no longer wants open.
func (d *Domain) Revoke(ctx context.Context, inviterID, invitationID uuid.UUID) error {
	invitation, err := d.invitations.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if invitation.InviterID != inviterID {
		return ErrInvitationNotFound
	}
	if invitation.Accepted {
		return ErrInvitationConsumed
	}
	return d.invitations.Delete(ctx, invitationID)
}

// UpdatePermission changes the tier on an existing edge. Only the primary
// user manages their own edges; handlers enforce that by passing their
// identity as primaryUserID.
func (d *Domain) UpdatePermission(ctx context.Context, primaryUserID, memberUserID uuid.UUID, tier string) (*Member, error) {
	permission, err := ParsePermission(tier)
	if err != nil {
		return nil, err
	}

	edge, err := d.edges.Find(ctx, primaryUserID, memberUserID)
	if err != nil {
		return nil, err
	}

	if err := d.edges.UpdatePermission(ctx, primaryUserID, memberUserID, permission); err != nil {
		return nil, err
	}
	edge.Permission = permission
	edge.UpdatedAt = time.Now()

	d.logger.Info("family permission updated",
		zap.String("primary_user_id", primaryUserID.String()),
		zap.String("member_user_id", memberUserID.String()),
		zap.String("permission", permission.String()),
	)
	return edge, nil
}

// RemoveMember deletes the edge from the primary user to the member.
func (d *Domain) RemoveMember(ctx context.Context, primaryUserID, memberUserID uuid.UUID) error {
	if _, err := d.edges.Find(ctx, primaryUserID, memberUserID); err != nil {
		return err
	}
	if err := d.edges.Delete(ctx, primaryUserID, memberUserID); err != nil {
		return err
	}

	d.logger.Info("family member removed",
		zap.String("primary_user_id", primaryUserID.String()),
		zap.String("member_user_id", memberUserID.String()),
	)
	return nil
}

// ListMembers lists the user's own family circle.
func (d *Domain) ListMembers(ctx context.Context, primaryUserID uuid.UUID) ([]*MemberWithUser, error) {
	return d.edges.ListByPrimary(ctx, primaryUserID)
}

// ListMemberships lists the circles the user belongs to.
func (d *Domain) ListMemberships(ctx context.Context, memberUserID uuid.UUID) ([]*MemberWithUser, error) {
	return d.edges.ListByMember(ctx, memberUserID)
}

// ListInvitations lists invitations the user has sent.
func (d *Domain) ListInvitations(ctx context.Context, inviterID uuid.UUID) ([]*Invitation, error) {
	return d.invitations.ListByInviter(ctx, inviterID)
}

// PendingForEmail lists pending invitations addressed to an email.
func (d *Domain) PendingForEmail(ctx context.Context, email string) ([]*Invitation, error) {
	return d.invitations.ListByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
