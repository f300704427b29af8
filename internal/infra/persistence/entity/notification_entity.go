package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/famvault/server/internal/domain/notification"
)

// NotificationEntity is the GORM entity for notifications.
type NotificationEntity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"not null"`
	Title     string    `gorm:"not null"`
	Message   string
	Read      bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// TableName returns the table name.
func (NotificationEntity) TableName() string {
	return "notifications"
}

// ToDomain converts to domain entity.
func (e *NotificationEntity) ToDomain() *notification.Notification {
	return &notification.Notification{
		ID:        e.ID,
		UserID:    e.UserID,
		Type:      notification.Type(e.Type),
		Title:     e.Title,
		Message:   e.Message,
		Read:      e.Read,
		CreatedAt: e.CreatedAt,
	}
}

// FromDomainNotification converts from domain entity.
func FromDomainNotification(n *notification.Notification) *NotificationEntity {
	return &NotificationEntity{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
