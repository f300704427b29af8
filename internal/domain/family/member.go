package family

import (
	"time"

	"github.com/google/uuid"
)

// Member is a directed edge from a primary user to a member user, carrying
// the permission tier the member holds over the primary's records. Edges are
// unique per ordered (primary, member) pair.
type Member struct {
	PrimaryUserID uuid.UUID
	MemberUserID  uuid.UUID
	Permission    Permission
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewMember creates an edge. Self-edges are invalid.
func NewMember(primaryUserID, memberUserID uuid.UUID, permission Permission) (*Member, error) {
	if primaryUserID == memberUserID {
		return nil, ErrSelfEdge
	}
	if !permission.IsValid() {
		return nil, ErrInvalidPermission
	}
	now := time.Now()
	return &Member{
		PrimaryUserID: primaryUserID,
		MemberUserID:  memberUserID,
		Permission:    permission,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MemberWithUser pairs an edge with the member's user details for listing.
type MemberWithUser struct {
	Member *Member
	Email  string
	Name   string
}
