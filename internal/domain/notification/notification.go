package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification for client rendering.
type Type string

const (
	TypeRecordCreated Type = "record_created"
	TypeRecordUpdated Type = "record_updated"
	TypeRecordDeleted Type = "record_deleted"
	TypeFamilyInvite  Type = "family_invite"
)

// Notification is an in-app message addressed to one user. Created as a
// fire-and-forget side effect; delivery mechanics live elsewhere.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      Type
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// New creates an unread notification for the user.
func New(userID uuid.UUID, typ Type, title, message string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

// Repository persists notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, error)

	// CountUnread returns the user's unread count.
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkRead marks one notification read, scoped to its owner.
	MarkRead(ctx context.Context, userID, id uuid.UUID) error

	// MarkAllRead marks every notification of the user read.
	MarkAllRead(ctx context.Context, userID uuid.UUID) error

	// Delete removes one notification, scoped to its owner.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
