package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/famvault/server/internal/domain/family"
)

// FamilyMemberEntity is the GORM entity for family-member edges. The
// composite primary key enforces uniqueness per ordered (primary, member)
// pair.
type FamilyMemberEntity struct {
	PrimaryUserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	MemberUserID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Permission    string    `gorm:"not null;default:view"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name.
func (FamilyMemberEntity) TableName() string {
	return "family_members"
}

// ToDomain converts to domain entity.
func (e *FamilyMemberEntity) ToDomain() *family.Member {
	return &family.Member{
		PrimaryUserID: e.PrimaryUserID,
		MemberUserID:  e.MemberUserID,
		Permission:    family.Permission(e.Permission),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// FromDomainMember converts from domain entity.
func FromDomainMember(m *family.Member) *FamilyMemberEntity {
	return &FamilyMemberEntity{
		PrimaryUserID: m.PrimaryUserID,
		MemberUserID:  m.MemberUserID,
		Permission:    m.Permission.String(),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// MemberWithUserRow is the join result of an edge with user details.
type MemberWithUserRow struct {
	FamilyMemberEntity
	Email string
	Name  string
}

// ToDomain converts to domain entity.
func (r *MemberWithUserRow) ToDomain() *family.MemberWithUser {
	return &family.MemberWithUser{
		Member: r.FamilyMemberEntity.ToDomain(),
		Email:  r.Email,
		Name:   r.Name,
	}
}

// FamilyInvitationEntity is the GORM entity for family invitations.
type FamilyInvitationEntity struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InviterID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Email      string    `gorm:"not null;index"`
	Permission string    `gorm:"not null;default:view"`
	Token      string    `gorm:"uniqueIndex;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	Accepted   bool      `gorm:"not null;default:false"`
	AcceptedAt *time.Time
	CreatedAt  time.Time
}

// TableName returns the table name.
func (FamilyInvitationEntity) TableName() string {
	return "family_invitations"
}

// ToDomain converts to domain entity.
func (e *FamilyInvitationEntity) ToDomain() *family.Invitation {
	return &family.Invitation{
		ID:         e.ID,
		InviterID:  e.InviterID,
		Email:      e.Email,
		Permission: family.Permission(e.Permission),
		Token:      e.Token,
		ExpiresAt:  e.ExpiresAt,
		Accepted:   e.Accepted,
		AcceptedAt: e.AcceptedAt,
		CreatedAt:  e.CreatedAt,
	}
}

// FromDomainInvitation converts from domain entity.
func FromDomainInvitation(i *family.Invitation) *FamilyInvitationEntity {
	return &FamilyInvitationEntity{
		ID:         i.ID,
		InviterID:  i.InviterID,
		Email:      i.Email,
		Permission: i.Permission.String(),
		Token:      i.Token,
		ExpiresAt:  i.ExpiresAt,
		Accepted:   i.Accepted,
		AcceptedAt: i.AcceptedAt,
		CreatedAt:  i.CreatedAt,
	}
}
