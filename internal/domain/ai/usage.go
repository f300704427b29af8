package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UsageStats is the per-user running aggregate, one row per user.
type UsageStats struct {
	UserID     uuid.UUID `json:"userId"`
	TotalCost  float64   `json:"totalCost"`
	TokenCount int64     `json:"tokenCount"`
	UsageCount int64     `json:"usageCount"`
	LastUsedAt time.Time `json:"lastUsedAt"`
}

// UsageDelta is one interaction's contribution to the aggregate.
type UsageDelta struct {
	Cost   float64
	Tokens int64
}

// DailyUsage is one calendar day's aggregated cost and call count.
type DailyUsage struct {
	Date  time.Time `json:"date"`
	Cost  float64   `json:"cost"`
	Count int64     `json:"count"`
}

// ModelUsage is one model's share of a user's interactions.
type ModelUsage struct {
	Model string  `json:"model"`
	Cost  float64 `json:"cost"`
	Count int64   `json:"count"`
}

// UsageRepository persists usage aggregates. IncrementStats must be a single
// atomic upsert; concurrent chat turns for one user must not lose updates.
type UsageRepository interface {
	IncrementStats(ctx context.Context, userID uuid.UUID, delta UsageDelta) error
	GetStats(ctx context.Context, userID uuid.UUID) (*UsageStats, error)
	DailyUsage(ctx context.Context, userID uuid.UUID) ([]DailyUsage, error)
	ModelDistribution(ctx context.Context, userID uuid.UUID) ([]ModelUsage, error)
}

// Tracker records completed interactions against the user's running totals
// and serves the read-side aggregations.
type Tracker struct {
	stats        UsageRepository
	interactions InteractionRepository
	logger       *zap.Logger
}

// NewTracker creates a usage tracker.
func NewTracker(stats UsageRepository, interactions InteractionRepository, logger *zap.Logger) *Tracker {
	return &Tracker{stats: stats, interactions: interactions, logger: logger}
}

// Record persists one completed chat turn and folds it into the user's
// aggregate. Only called after a successful provider call; failed calls must
// never be recorded.
func (t *Tracker) Record(ctx context.Context, userID uuid.UUID, query string, res *RouteResult) error {
	interaction := NewInteraction(userID, query, res)
	if err := t.interactions.Create(ctx, interaction); err != nil {
		return fmt.Errorf("create interaction: %w", err)
	}

	delta := UsageDelta{Cost: res.Cost, Tokens: int64(res.Usage.Total)}
	if err := t.stats.IncrementStats(ctx, userID, delta); err != nil {
		// The provider cost is already incurred; an aggregate that lags one
		// interaction is preferable to failing the chat turn.
		t.logger.Error("usage stats increment failed",
			zap.String("user_id", userID.String()),
			zap.Float64("cost", res.Cost),
			zap.Error(err),
		)
		return fmt.Errorf("increment usage stats: %w", err)
	}
	return nil
}

// Stats returns the user's running aggregate, zero-valued if absent.
func (t *Tracker) Stats(ctx context.Context, userID uuid.UUID) (*UsageStats, error) {
	stats, err := t.stats.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &UsageStats{UserID: userID}, nil
	}
	return stats, nil
}

// DailyUsage returns per-day cost and counts, ascending by date.
func (t *Tracker) DailyUsage(ctx context.Context, userID uuid.UUID) ([]DailyUsage, error) {
	return t.stats.DailyUsage(ctx, userID)
}

// ModelDistribution returns per-model cost and counts, descending by count.
func (t *Tracker) ModelDistribution(ctx context.Context, userID uuid.UUID) ([]ModelUsage, error) {
	return t.stats.ModelDistribution(ctx, userID)
}
