package family

import (
	"context"

	"github.com/google/uuid"
)

// EdgeRepository persists family-member edges.
type EdgeRepository interface {
	// Create inserts a new edge. Returns ErrAlreadyMember when the ordered
	// (primary, member) pair already exists.
	Create(ctx context.Context, member *Member) error

	// Find retrieves the edge for the ordered pair, or ErrMemberNotFound.
	Find(ctx context.Context, primaryUserID, memberUserID uuid.UUID) (*Member, error)

	// ListByPrimary lists edges where the user is the primary, with member
	// user details.
	ListByPrimary(ctx context.Context, primaryUserID uuid.UUID) ([]*MemberWithUser, error)

	// ListByMember lists edges where the user is the member, with primary
	// user details.
	ListByMember(ctx context.Context, memberUserID uuid.UUID) ([]*MemberWithUser, error)

	// UpdatePermission changes the tier on an existing edge.
	UpdatePermission(ctx context.Context, primaryUserID, memberUserID uuid.UUID, permission Permission) error

	// Delete removes the edge.
	Delete(ctx context.Context, primaryUserID, memberUserID uuid.UUID) error
}

// InvitationRepository persists family invitations.
type InvitationRepository interface {
	// Create inserts a new invitation.
	Create(ctx context.Context, invitation *Invitation) error

	// FindByID retrieves an invitation by ID, or ErrInvitationNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Invitation, error)

	// FindByToken retrieves a pending (not yet accepted) invitation by
	// token, or ErrInvitationNotFound. Consumed tokens resolve to nothing.
	FindByToken(ctx context.Context, token string) (*Invitation, error)

	// FindPendingByEmail retrieves a pending invitation from an inviter to
	// an email, or ErrInvitationNotFound.
	FindPendingByEmail(ctx context.Context, inviterID uuid.UUID, email string) (*Invitation, error)

	// ListByInviter lists invitations the user has sent.
	ListByInviter(ctx context.Context, inviterID uuid.UUID) ([]*Invitation, error)

	// ListByEmail lists pending invitations addressed to an email.
	ListByEmail(ctx context.Context, email string) ([]*Invitation, error)

	// MarkAccepted flags the invitation as consumed.
	MarkAccepted(ctx context.Context, id uuid.UUID) error

	// Delete removes an invitation (reject or revoke).
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserLookup resolves minimal user details for invitations and member lists.
// Implemented by the user module.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
}

// UserInfo is the minimal user projection the family module needs.
type UserInfo struct {
	ID    uuid.UUID
	Email string
	Name  string
}
