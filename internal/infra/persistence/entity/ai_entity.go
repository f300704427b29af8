package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/famvault/server/internal/domain/ai"
)

// AIInteractionEntity is the GORM entity for chat interactions. Append-only.
type AIInteractionEntity struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index:idx_interactions_user_created"`
	Query            string    `gorm:"not null"`
	Response         string    `gorm:"not null"`
	Model            string    `gorm:"not null"`
	Provider         string    `gorm:"not null"`
	Cost             float64   `gorm:"type:numeric(12,8);not null"`
	PromptTokens     int       `gorm:"not null"`
	CompletionTokens int       `gorm:"not null"`
	TotalTokens      int       `gorm:"not null"`
	ComplexityScore  *float64
	CreatedAt        time.Time `gorm:"index:idx_interactions_user_created"`
}

// TableName returns the table name.
func (AIInteractionEntity) TableName() string {
	return "ai_interactions"
}

// ToDomain converts to domain entity.
func (e *AIInteractionEntity) ToDomain() *ai.Interaction {
	return &ai.Interaction{
		ID:               e.ID,
		UserID:           e.UserID,
		Query:            e.Query,
		Response:         e.Response,
		Model:            e.Model,
		Provider:         ai.ProviderName(e.Provider),
		Cost:             e.Cost,
		PromptTokens:     e.PromptTokens,
		CompletionTokens: e.CompletionTokens,
		TotalTokens:      e.TotalTokens,
		ComplexityScore:  e.ComplexityScore,
		CreatedAt:        e.CreatedAt,
	}
}

// FromDomainInteraction converts from domain entity.
func FromDomainInteraction(i *ai.Interaction) *AIInteractionEntity {
	return &AIInteractionEntity{
		ID:               i.ID,
		UserID:           i.UserID,
		Query:            i.Query,
		Response:         i.Response,
		Model:            i.Model,
		Provider:         i.Provider.String(),
		Cost:             i.Cost,
		PromptTokens:     i.PromptTokens,
		CompletionTokens: i.CompletionTokens,
		TotalTokens:      i.TotalTokens,
		ComplexityScore:  i.ComplexityScore,
		CreatedAt:        i.CreatedAt,
	}
}

// AIUsageStatsEntity is the GORM entity for per-user usage aggregates. One
// row per user, upserted with atomic increments.
type AIUsageStatsEntity struct {
	UserID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	TotalCost  float64   `gorm:"type:numeric(14,8);not null;default:0"`
	TokenCount int64     `gorm:"not null;default:0"`
	UsageCount int64     `gorm:"not null;default:0"`
	LastUsedAt time.Time `gorm:"not null"`
}

// TableName returns the table name.
func (AIUsageStatsEntity) TableName() string {
	return "ai_usage_stats"
}

// ToDomain converts to domain entity.
func (e *AIUsageStatsEntity) ToDomain() *ai.UsageStats {
	return &ai.UsageStats{
		UserID:     e.UserID,
		TotalCost:  e.TotalCost,
		TokenCount: e.TokenCount,
		UsageCount: e.UsageCount,
		LastUsedAt: e.LastUsedAt,
	}
}
