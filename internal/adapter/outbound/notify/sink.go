package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/domain/family"
	"github.com/famvault/server/internal/domain/notification"
	"github.com/famvault/server/internal/domain/record"
)

// Sink persists owner-facing notifications for record mutations and family
// invitations. All creates are fire-and-forget from the caller's view; this
// type only shapes and stores the rows.
type Sink struct {
	repo   notification.Repository
	users  family.UserLookup
	logger *zap.Logger
}

// NewSink creates a notification sink.
func NewSink(repo notification.Repository, users family.UserLookup, logger *zap.Logger) *Sink {
	return &Sink{repo: repo, users: users, logger: logger}
}

var _ record.NotificationSink = (*Sink)(nil)

// RecordMutated notifies the owner that a family member touched one of their
// records. Never called for owner self-mutations.
func (s *Sink) RecordMutated(ctx context.Context, ownerID, actorID uuid.UUID, action record.Action, rec *record.HealthRecord) error {
	actorName := s.actorName(ctx, actorID)

	var typ notification.Type
	switch action {
	case record.ActionCreated:
		typ = notification.TypeRecordCreated
	case record.ActionDeleted:
		typ = notification.TypeRecordDeleted
	default:
		typ = notification.TypeRecordUpdated
	}

	title := fmt.Sprintf("Health record %s", action)
	message := fmt.Sprintf("%s %s %q in your %s records.", actorName, action, rec.Title, rec.Category)

	return s.repo.Create(ctx, notification.New(ownerID, typ, title, message))
}

// FamilyInvited notifies an existing user that someone invited them into a
// family circle.
func (s *Sink) FamilyInvited(ctx context.Context, inviteeID, inviterID uuid.UUID, tier string) error {
	inviterName := s.actorName(ctx, inviterID)

	title := "Family invitation"
	message := fmt.Sprintf("%s invited you to their family circle with %s access.", inviterName, tier)

	return s.repo.Create(ctx, notification.New(inviteeID, notification.TypeFamilyInvite, title, message))
}

// actorName resolves a display name, degrading to a neutral label when the
// lookup fails.
func (s *Sink) actorName(ctx context.Context, actorID uuid.UUID) string {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		s.logger.Debug("actor lookup failed for notification",
			zap.String("actor_id", actorID.String()),
			zap.Error(err),
		)
		return "A family member"
	}
	if actor.Name != "" {
		return actor.Name
	}
	return actor.Email
}
