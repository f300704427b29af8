package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/famvault/server/internal/domain/user"
)

// UserEntity is the GORM entity for users.
type UserEntity struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email      string    `gorm:"uniqueIndex;not null"`
	Name       string    `gorm:"not null"`
	Role       string    `gorm:"not null;default:standard"`
	Consent    []byte    `gorm:"type:jsonb"`
	MFAEnabled bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name.
func (UserEntity) TableName() string {
	return "users"
}

// ToDomain converts to domain entity.
func (e *UserEntity) ToDomain() (*user.User, error) {
	u := &user.User{
		ID:         e.ID,
		Email:      e.Email,
		Name:       e.Name,
		Role:       user.Role(e.Role),
		MFAEnabled: e.MFAEnabled,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if len(e.Consent) > 0 {
		if err := json.Unmarshal(e.Consent, &u.Consent); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// FromDomainUser converts from domain entity.
func FromDomainUser(u *user.User) (*UserEntity, error) {
	consent, err := json.Marshal(u.Consent)
	if err != nil {
		return nil, err
	}
	return &UserEntity{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		Consent:    consent,
		MFAEnabled: u.MFAEnabled,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}, nil
}
