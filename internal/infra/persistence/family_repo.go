package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famvault/server/internal/domain/family"
	"github.com/famvault/server/internal/infra/persistence/entity"
)

// FamilyEdgeRepository implements family.EdgeRepository.
type FamilyEdgeRepository struct {
	db *gorm.DB
}

// NewFamilyEdgeRepository creates a new family edge repository.
func NewFamilyEdgeRepository(db *gorm.DB) *FamilyEdgeRepository {
	return &FamilyEdgeRepository{db: db}
}

var _ family.EdgeRepository = (*FamilyEdgeRepository)(nil)

func (r *FamilyEdgeRepository) Create(ctx context.Context, member *family.Member) error {
	e := entity.FromDomainMember(member)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return family.ErrAlreadyMember
		}
		return fmt.Errorf("create family edge: %w", err)
	}
	return nil
}

func (r *FamilyEdgeRepository) Find(ctx context.Context, primaryUserID, memberUserID uuid.UUID) (*family.Member, error) {
	var e entity.FamilyMemberEntity
	err := r.db.WithContext(ctx).
		Where("primary_user_id = ? AND member_user_id = ?", primaryUserID, memberUserID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, family.ErrMemberNotFound
		}
		return nil, fmt.Errorf("find family edge: %w", err)
	}
	return e.ToDomain(), nil
}

func (r *FamilyEdgeRepository) ListByPrimary(ctx context.Context, primaryUserID uuid.UUID) ([]*family.MemberWithUser, error) {
	var rows []entity.MemberWithUserRow
	err := r.db.WithContext(ctx).
		Table("family_members").
		Select("family_members.*, users.email, users.name").
		Joins("JOIN users ON users.id = family_members.member_user_id").
		Where("family_members.primary_user_id = ?", primaryUserID).
		Order("family_members.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}

	members := make([]*family.MemberWithUser, len(rows))
	for i := range rows {
		members[i] = rows[i].ToDomain()
	}
	return members, nil
}

func (r *FamilyEdgeRepository) ListByMember(ctx context.Context, memberUserID uuid.UUID) ([]*family.MemberWithUser, error) {
	var rows []entity.MemberWithUserRow
	err := r.db.WithContext(ctx).
		Table("family_members").
		Select("family_members.*, users.email, users.name").
		Joins("JOIN users ON users.id = family_members.primary_user_id").
		Where("family_members.member_user_id = ?", memberUserID).
		Order("family_members.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list family memberships: %w", err)
	}

	members := make([]*family.MemberWithUser, len(rows))
	for i := range rows {
		members[i] = rows[i].ToDomain()
	}
	return members, nil
}

func (r *FamilyEdgeRepository) UpdatePermission(ctx context.Context, primaryUserID, memberUserID uuid.UUID, permission family.Permission) error {
	result := r.db.WithContext(ctx).
		Model(&entity.FamilyMemberEntity{}).
		Where("primary_user_id = ? AND member_user_id = ?", primaryUserID, memberUserID).
		Updates(map[string]any{
			"permission": permission.String(),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update family permission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return family.ErrMemberNotFound
	}
	return nil
}

func (r *FamilyEdgeRepository) Delete(ctx context.Context, primaryUserID, memberUserID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("primary_user_id = ? AND member_user_id = ?", primaryUserID, memberUserID).
		Delete(&entity.FamilyMemberEntity{})
	if result.Error != nil {
		return fmt.Errorf("delete family edge: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return family.ErrMemberNotFound
	}
	return nil
}

// FamilyInvitationRepository implements family.InvitationRepository.
type FamilyInvitationRepository struct {
	db *gorm.DB
}

// NewFamilyInvitationRepository creates a new invitation repository.
func NewFamilyInvitationRepository(db *gorm.DB) *FamilyInvitationRepository {
	return &FamilyInvitationRepository{db: db}
}

var _ family.InvitationRepository = (*FamilyInvitationRepository)(nil)

func (r *FamilyInvitationRepository) Create(ctx context.Context, invitation *family.Invitation) error {
	e := entity.FromDomainInvitation(invitation)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *FamilyInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*family.Invitation, error) {
	var e entity.FamilyInvitationEntity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, family.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("find invitation: %w", err)
	}
	return e.ToDomain(), nil
}

// FindByToken only resolves pending invitations; a consumed token behaves
// like a missing one.
func (r *FamilyInvitationRepository) FindByToken(ctx context.Context, token string) (*family.Invitation, error) {
	var e entity.FamilyInvitationEntity
	err := r.db.WithContext(ctx).
		Where("token = ? AND accepted = false", token).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, family.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("find invitation by token: %w", err)
	}
	return e.ToDomain(), nil
}

func (r *FamilyInvitationRepository) FindPendingByEmail(ctx context.Context, inviterID uuid.UUID, email string) (*family.Invitation, error) {
	var e entity.FamilyInvitationEntity
	err := r.db.WithContext(ctx).
		Where("inviter_id = ? AND email = ? AND accepted = false AND expires_at > ?", inviterID, email, time.Now()).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, family.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("find pending invitation: %w", err)
	}
	return e.ToDomain(), nil
}

func (r *FamilyInvitationRepository) ListByInviter(ctx context.Context, inviterID uuid.UUID) ([]*family.Invitation, error) {
	var entities []entity.FamilyInvitationEntity
	err := r.db.WithContext(ctx).
		Where("inviter_id = ?", inviterID).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list invitations by inviter: %w", err)
	}

	invitations := make([]*family.Invitation, len(entities))
	for i := range entities {
		invitations[i] = entities[i].ToDomain()
	}
	return invitations, nil
}

func (r *FamilyInvitationRepository) ListByEmail(ctx context.Context, email string) ([]*family.Invitation, error) {
	var entities []entity.FamilyInvitationEntity
	err := r.db.WithContext(ctx).
		Where("email = ? AND accepted = false AND expires_at > ?", email, time.Now()).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list invitations by email: %w", err)
	}

	invitations := make([]*family.Invitation, len(entities))
	for i := range entities {
		invitations[i] = entities[i].ToDomain()
	}
	return invitations, nil
}

// MarkAccepted consumes the invitation; a second accept finds zero pending
// rows and reports the invitation gone.
func (r *FamilyInvitationRepository) MarkAccepted(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&entity.FamilyInvitationEntity{}).
		Where("id = ? AND accepted = false", id).
		Updates(map[string]any{
			"accepted":    true,
			"accepted_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("mark invitation accepted: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return family.ErrInvitationNotFound
	}
	return nil
}

func (r *FamilyInvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.FamilyInvitationEntity{})
	if result.Error != nil {
		return fmt.Errorf("delete invitation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return family.ErrInvitationNotFound
	}
	return nil
}
