package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/famvault/server/internal/domain/ai"
	"github.com/famvault/server/internal/infra/persistence/entity"
)

// InteractionRepository implements ai.InteractionRepository.
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository.
func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

var _ ai.InteractionRepository = (*InteractionRepository)(nil)

func (r *InteractionRepository) Create(ctx context.Context, interaction *ai.Interaction) error {
	e := entity.FromDomainInteraction(interaction)
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*ai.Interaction, error) {
	if limit <= 0 {
		limit = 5
	}

	var entities []entity.AIInteractionEntity
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("list recent interactions: %w", err)
	}

	interactions := make([]*ai.Interaction, len(entities))
	for i := range entities {
		interactions[i] = entities[i].ToDomain()
	}
	return interactions, nil
}

// UsageStatsRepository implements ai.UsageRepository.
type UsageStatsRepository struct {
	db *gorm.DB
}

// NewUsageStatsRepository creates a new usage stats repository.
func NewUsageStatsRepository(db *gorm.DB) *UsageStatsRepository {
	return &UsageStatsRepository{db: db}
}

var _ ai.UsageRepository = (*UsageStatsRepository)(nil)

// IncrementStats upserts the user's aggregate in one statement. The
// conflict-update increments run inside the database, so concurrent chat
// turns for the same user cannot lose updates.
func (r *UsageStatsRepository) IncrementStats(ctx context.Context, userID uuid.UUID, delta ai.UsageDelta) error {
	now := time.Now()
	row := entity.AIUsageStatsEntity{
		UserID:     userID,
		TotalCost:  delta.Cost,
		TokenCount: delta.Tokens,
		UsageCount: 1,
		LastUsedAt: now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"total_cost":   gorm.Expr("ai_usage_stats.total_cost + ?", delta.Cost),
			"token_count":  gorm.Expr("ai_usage_stats.token_count + ?", delta.Tokens),
			"usage_count":  gorm.Expr("ai_usage_stats.usage_count + 1"),
			"last_used_at": now,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("increment usage stats: %w", err)
	}
	return nil
}

// GetStats returns nil without error when the user has no row yet.
func (r *UsageStatsRepository) GetStats(ctx context.Context, userID uuid.UUID) (*ai.UsageStats, error) {
	var e entity.AIUsageStatsEntity
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usage stats: %w", err)
	}
	return e.ToDomain(), nil
}

// DailyUsage aggregates interactions per calendar day, ascending by date.
func (r *UsageStatsRepository) DailyUsage(ctx context.Context, userID uuid.UUID) ([]ai.DailyUsage, error) {
	var rows []struct {
		Day   time.Time
		Cost  float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.AIInteractionEntity{}).
		Select("date_trunc('day', created_at) AS day, SUM(cost) AS cost, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate daily usage: %w", err)
	}

	usage := make([]ai.DailyUsage, len(rows))
	for i, row := range rows {
		usage[i] = ai.DailyUsage{Date: row.Day, Cost: row.Cost, Count: row.Count}
	}
	return usage, nil
}

// ModelDistribution aggregates interactions per model, descending by count.
func (r *UsageStatsRepository) ModelDistribution(ctx context.Context, userID uuid.UUID) ([]ai.ModelUsage, error) {
	var rows []struct {
		Model string
		Cost  float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.AIInteractionEntity{}).
		Select("model, SUM(cost) AS cost, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("model").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate model distribution: %w", err)
	}

	usage := make([]ai.ModelUsage, len(rows))
	for i, row := range rows {
		usage[i] = ai.ModelUsage{Model: row.Model, Cost: row.Cost, Count: row.Count}
	}
	return usage, nil
}
