package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// contextTurns is how many prior interactions are replayed into a new
	// chat turn.
	contextTurns = 5

	systemPrompt = "You are a careful health assistant for a family " +
		"health-record application. Answer questions about symptoms, " +
		"medications, appointments and lab results in plain language. You " +
		"are not a doctor: recommend professional care for anything urgent " +
		"or uncertain, and never invent values the user did not provide."
)

// RecordSummarizer supplies a short free-text summary of the user's recent
// health records for chat grounding. Implemented by the record domain.
type RecordSummarizer interface {
	Summarize(ctx context.Context, userID uuid.UUID, limit int) (string, error)
}

// ChatService orchestrates one chat turn: context construction, routing,
// and usage tracking.
type ChatService struct {
	router       *Router
	tracker      *Tracker
	interactions InteractionRepository
	records      RecordSummarizer
	logger       *zap.Logger
}

// NewChatService creates a chat service. records may be nil when record
// grounding is disabled.
func NewChatService(router *Router, tracker *Tracker, interactions InteractionRepository, records RecordSummarizer, logger *zap.Logger) *ChatService {
	return &ChatService{
		router:       router,
		tracker:      tracker,
		interactions: interactions,
		records:      records,
		logger:       logger,
	}
}

// Chat runs one turn for the user. Provider failures propagate as
// ErrProviderFailure; the transport layer substitutes the canned fallback.
// Tracking failures are logged, not surfaced: the reply is already paid for.
func (s *ChatService) Chat(ctx context.Context, userID uuid.UUID, message string, opts Options) (*RouteResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessages
	}

	messages, err := s.buildMessages(ctx, userID, message)
	if err != nil {
		return nil, err
	}

	system := s.buildSystemPrompt(ctx, userID)

	result, err := s.router.RouteChat(ctx, messages, system, opts)
	if err != nil {
		return nil, err
	}

	if err := s.tracker.Record(ctx, userID, message, result); err != nil {
		s.logger.Warn("chat turn completed but was not recorded",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	return result, nil
}

// buildMessages replays the last few interactions ahead of the new message.
func (s *ChatService) buildMessages(ctx context.Context, userID uuid.UUID, message string) ([]ChatMessage, error) {
	recent, err := s.interactions.ListRecent(ctx, userID, contextTurns)
	if err != nil {
		return nil, fmt.Errorf("load chat context: %w", err)
	}

	// ListRecent returns newest first; replay oldest first.
	messages := make([]ChatMessage, 0, len(recent)*2+1)
	for i := len(recent) - 1; i >= 0; i-- {
		messages = append(messages,
			ChatMessage{Role: RoleUser, Content: recent[i].Query},
			ChatMessage{Role: RoleAssistant, Content: recent[i].Response},
		)
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: message})
	return messages, nil
}

// buildSystemPrompt optionally appends a record summary to the base prompt.
// Summary failures degrade to the base prompt; they never block the turn.
func (s *ChatService) buildSystemPrompt(ctx context.Context, userID uuid.UUID) string {
	if s.records == nil {
		return systemPrompt
	}
	summary, err := s.records.Summarize(ctx, userID, 10)
	if err != nil {
		s.logger.Debug("record summary unavailable for chat grounding",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return systemPrompt
	}
	if summary == "" {
		return systemPrompt
	}
	return systemPrompt + "\n\nThe user's recent health records:\n" + summary
}
