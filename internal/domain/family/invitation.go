package family

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Invitation is a pending offer to join a user's family circle. The token is
// opaque and single-use: once accepted the invitation is consumed and the
// token resolves to nothing.
type Invitation struct {
	ID         uuid.UUID
	InviterID  uuid.UUID
	Email      string
	Permission Permission
	Token      string
	ExpiresAt  time.Time
	Accepted   bool
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

// NewInvitation creates a pending invitation.
func NewInvitation(inviterID uuid.UUID, email string, permission Permission, token string, ttl time.Duration) *Invitation {
	now := time.Now()
	return &Invitation{
		ID:         uuid.New(),
		InviterID:  inviterID,
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Permission: permission,
		Token:      token,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
}

// IsExpired reports whether the invitation's window has passed.
func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsForEmail checks the invitation against the accepting user's email.
func (i *Invitation) IsForEmail(email string) bool {
	return strings.EqualFold(i.Email, strings.TrimSpace(email))
}

// MarkAccepted consumes the invitation.
func (i *Invitation) MarkAccepted() {
	now := time.Now()
	i.Accepted = true
	i.AcceptedAt = &now
}
