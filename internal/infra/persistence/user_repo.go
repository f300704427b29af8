package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famvault/server/internal/domain/user"
	"github.com/famvault/server/internal/infra/persistence/entity"
)

// UserRepository implements user.Repository.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	e, err := entity.FromDomainUser(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var e entity.UserEntity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by ID: %w", err)
	}
	return e.ToDomain()
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var e entity.UserEntity
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return e.ToDomain()
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now()
	e, err := entity.FromDomainUser(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	result := r.db.WithContext(ctx).
		Model(&entity.UserEntity{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":        e.Name,
			"consent":     e.Consent,
			"mfa_enabled": e.MFAEnabled,
			"updated_at":  e.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
