package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/domain/ai"
	"github.com/famvault/server/internal/shared/response"
	"github.com/famvault/server/internal/utils/metrics"
	"github.com/famvault/server/internal/utils/middleware"
)

// chatFallbackText is returned in place of a model reply when the provider
// call fails. The turn is not billed and not recorded.
const chatFallbackText = "I'm sorry, the assistant is temporarily unavailable. " +
	"Please try again in a few minutes."

// ChatRunner runs one chat turn. Implemented by ai.ChatService.
type ChatRunner interface {
	Chat(ctx context.Context, userID uuid.UUID, message string, opts ai.Options) (*ai.RouteResult, error)
}

// UsageReader serves usage aggregations. Implemented by ai.Tracker.
type UsageReader interface {
	Stats(ctx context.Context, userID uuid.UUID) (*ai.UsageStats, error)
	DailyUsage(ctx context.Context, userID uuid.UUID) ([]ai.DailyUsage, error)
	ModelDistribution(ctx context.Context, userID uuid.UUID) ([]ai.ModelUsage, error)
}

// ConsentChecker gates AI processing on user consent. Implemented by
// user.Service.
type ConsentChecker interface {
	AllowsAIProcessing(ctx context.Context, id uuid.UUID) (bool, error)
}

// ChatHandler handles chat and usage-stats requests.
type ChatHandler struct {
	chat    ChatRunner
	usage   UsageReader
	consent ConsentChecker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewChatHandler creates a chat handler. metrics may be nil.
func NewChatHandler(chat ChatRunner, usage UsageReader, consent ConsentChecker, m *metrics.Metrics, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, usage: usage, consent: consent, metrics: m, logger: logger}
}

// RegisterRoutes registers chat routes on an authenticated group.
func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/chat", h.Chat)
	r.GET("/usage-stats", h.UsageStats)
	r.GET("/usage-stats/daily", h.DailyUsage)
	r.GET("/usage-stats/models", h.ModelDistribution)
}

// ChatRequest is the chat request body.
type ChatRequest struct {
	Message     string   `json:"message" binding:"required"`
	MaxTokens   int      `json:"maxTokens"`
	Temperature *float64 `json:"temperature"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
}

// ChatResponse is the chat response body. Error is set only on the fallback
// path, alongside the canned response text.
type ChatResponse struct {
	Response   string          `json:"response"`
	Model      string          `json:"model,omitempty"`
	Provider   ai.ProviderName `json:"provider,omitempty"`
	Tokens     *ai.TokenUsage  `json:"tokens,omitempty"`
	Cost       *float64        `json:"cost,omitempty"`
	Complexity *ai.Assessment  `json:"complexity,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// Chat runs one chat turn.
//
//	@Summary		Send a chat message
//	@Description	Route a health question to an AI model and return the reply with cost accounting
//	@Tags			AI
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		ChatRequest	true	"Chat request"
//	@Success		200		{object}	ChatResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		401		{object}	response.ErrorResponse
//	@Failure		403		{object}	response.ErrorResponse
//	@Router			/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	userID := middleware.GetUserID(c)

	allowed, err := h.consent.AllowsAIProcessing(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	if !allowed {
		response.Forbidden(c, "ai processing is disabled in your consent settings")
		return
	}

	opts := ai.Options{
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		ForceProvider: ai.ProviderName(req.Provider),
		ForceModel:    req.Model,
	}

	start := time.Now()
	result, err := h.chat.Chat(c.Request.Context(), userID, req.Message, opts)
	if err != nil {
		if errors.Is(err, ai.ErrProviderFailure) {
			// Degrade to the canned reply. Nothing is recorded or billed.
			h.recordChatMetrics(req.Provider, req.Model, "fallback", start, nil)
			h.logger.Warn("chat degraded to fallback response",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			c.JSON(http.StatusOK, ChatResponse{
				Response: chatFallbackText,
				Error:    "ai provider unavailable",
			})
			return
		}
		handleError(c, err)
		return
	}

	h.recordChatMetrics(result.Provider.String(), result.Model, "success", start, result)

	c.JSON(http.StatusOK, ChatResponse{
		Response:   result.Response,
		Model:      result.Model,
		Provider:   result.Provider,
		Tokens:     &result.Usage,
		Cost:       &result.Cost,
		Complexity: result.Complexity,
	})
}

func (h *ChatHandler) recordChatMetrics(provider, model, status string, start time.Time, result *ai.RouteResult) {
	if h.metrics == nil {
		return
	}
	if provider == "" {
		provider = "auto"
	}
	if model == "" {
		model = "auto"
	}
	h.metrics.RecordAIRequest(provider, model, status, time.Since(start))
	if result != nil {
		h.metrics.RecordAITokens(provider, model, result.Usage.Prompt, result.Usage.Completion)
		h.metrics.RecordAICost(provider, model, result.Cost)
	}
}

// UsageStats returns the caller's running usage aggregate.
//
//	@Summary		Usage totals
//	@Tags			AI
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	ai.UsageStats
//	@Router			/usage-stats [get]
func (h *ChatHandler) UsageStats(c *gin.Context) {
	stats, err := h.usage.Stats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DailyUsage returns per-day cost and counts, ascending by date.
//
//	@Summary		Daily usage breakdown
//	@Tags			AI
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	ai.DailyUsage
//	@Router			/usage-stats/daily [get]
func (h *ChatHandler) DailyUsage(c *gin.Context) {
	daily, err := h.usage.DailyUsage(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, daily)
}

// ModelDistribution returns per-model cost and counts, descending by count.
//
//	@Summary		Model usage distribution
//	@Tags			AI
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	ai.ModelUsage
//	@Router			/usage-stats/models [get]
func (h *ChatHandler) ModelDistribution(c *gin.Context) {
	models, err := h.usage.ModelDistribution(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, models)
}
