package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/domain/family"
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user, or ErrUserNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByEmail retrieves a user by email, or ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, u *User) error
}

// Service exposes profile and consent operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a user service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// UpdateProfile changes the display name.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = name
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateConsent replaces the user's consent settings. Extension flags the
// caller did not send are preserved from the stored settings.
func (s *Service) UpdateConsent(ctx context.Context, id uuid.UUID, consent ConsentSettings) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := u.Consent.Extensions
	if len(consent.Extensions) > 0 {
		if merged == nil {
			merged = make(map[string]bool, len(consent.Extensions))
		}
		for k, v := range consent.Extensions {
			merged[k] = v
		}
	}
	consent.Extensions = merged

	u.Consent = consent
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("consent updated",
		zap.String("user_id", id.String()),
		zap.Bool("analytics", consent.Analytics),
		zap.Bool("ai_processing", consent.AIProcessing),
	)
	return u, nil
}

// AllowsAIProcessing reports whether the user has consented to AI use of
// their data.
func (s *Service) AllowsAIProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u.Consent.AIProcessing, nil
}

// FamilyLookup adapts the user service to the family module's lookup port.
type FamilyLookup struct {
	svc *Service
}

// NewFamilyLookup wraps a user service for the family module.
func NewFamilyLookup(svc *Service) *FamilyLookup {
	return &FamilyLookup{svc: svc}
}

func (l *FamilyLookup) GetByID(ctx context.Context, id uuid.UUID) (*family.UserInfo, error) {
	u, err := l.svc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &family.UserInfo{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

func (l *FamilyLookup) GetByEmail(ctx context.Context, email string) (*family.UserInfo, error) {
	u, err := l.svc.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &family.UserInfo{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}
