package ai

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Interaction is one completed chat turn, append-only. Read back for chat
// context construction and usage aggregation.
type Interaction struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Query            string
	Response         string
	Model            string
	Provider         ProviderName
	Cost             float64
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ComplexityScore  *float64
	CreatedAt        time.Time
}

// NewInteraction creates an interaction from a routed result.
func NewInteraction(userID uuid.UUID, query string, res *RouteResult) *Interaction {
	in := &Interaction{
		ID:               uuid.New(),
		UserID:           userID,
		Query:            query,
		Response:         res.Response,
		Model:            res.Model,
		Provider:         res.Provider,
		Cost:             res.Cost,
		PromptTokens:     res.Usage.Prompt,
		CompletionTokens: res.Usage.Completion,
		TotalTokens:      res.Usage.Total,
		CreatedAt:        time.Now(),
	}
	if res.Complexity != nil {
		score := res.Complexity.Score
		in.ComplexityScore = &score
	}
	return in
}

// InteractionRepository persists chat turns.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *Interaction) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*Interaction, error)
}
