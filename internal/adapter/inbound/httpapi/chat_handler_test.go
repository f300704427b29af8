package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/famvault/server/internal/domain/ai"
	"github.com/famvault/server/internal/utils/middleware"
)

type stubChatRunner struct {
	result *ai.RouteResult
	err    error
	calls  int
}

func (s *stubChatRunner) Chat(_ context.Context, _ uuid.UUID, _ string, _ ai.Options) (*ai.RouteResult, error) {
	s.calls++
	return s.result, s.err
}

type stubUsageReader struct {
	stats  *ai.UsageStats
	daily  []ai.DailyUsage
	models []ai.ModelUsage
}

func (s *stubUsageReader) Stats(_ context.Context, _ uuid.UUID) (*ai.UsageStats, error) {
	return s.stats, nil
}

func (s *stubUsageReader) DailyUsage(_ context.Context, _ uuid.UUID) ([]ai.DailyUsage, error) {
	return s.daily, nil
}

func (s *stubUsageReader) ModelDistribution(_ context.Context, _ uuid.UUID) ([]ai.ModelUsage, error) {
	return s.models, nil
}

type stubConsent struct {
	allowed bool
}

func (s *stubConsent) AllowsAIProcessing(_ context.Context, _ uuid.UUID) (bool, error) {
	return s.allowed, nil
}

func chatTestRouter(t *testing.T, runner ChatRunner, usage UsageReader, consent ConsentChecker, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	handler := NewChatHandler(runner, usage, consent, nil, zap.NewNop())
	handler.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postChat(t *testing.T, r *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatSuccess(t *testing.T) {
	runner := &stubChatRunner{result: &ai.RouteResult{
		Response: "Drink water and rest.",
		Model:    "gpt-5.1",
		Provider: ai.ProviderOpenAI,
		Usage:    ai.TokenUsage{Prompt: 40, Completion: 60, Total: 100},
		Cost:     0.0042,
	}}
	r := chatTestRouter(t, runner, &stubUsageReader{}, &stubConsent{allowed: true}, uuid.New())

	w := postChat(t, r, ChatRequest{Message: "I have a headache"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Drink water and rest.", resp.Response)
	assert.Equal(t, "gpt-5.1", resp.Model)
	assert.Equal(t, ai.ProviderOpenAI, resp.Provider)
	require.NotNil(t, resp.Cost)
	assert.InDelta(t, 0.0042, *resp.Cost, 1e-9)
	assert.Empty(t, resp.Error)
}

func TestChatProviderFailureDegradesToFallback(t *testing.T) {
	runner := &stubChatRunner{err: fmt.Errorf("chat via openai: %w: connection refused", ai.ErrProviderFailure)}
	r := chatTestRouter(t, runner, &stubUsageReader{}, &stubConsent{allowed: true}, uuid.New())

	w := postChat(t, r, ChatRequest{Message: "I have a headache"})

	// Degraded turns still answer 200 with the canned text and an error marker.
	require.Equal(t, http.StatusOK, w.Code)
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, chatFallbackText, resp.Response)
	assert.Equal(t, "ai provider unavailable", resp.Error)
	assert.Empty(t, resp.Model)
	assert.Nil(t, resp.Tokens)
	assert.Nil(t, resp.Cost)
}

func TestChatConsentDenied(t *testing.T) {
	runner := &stubChatRunner{}
	r := chatTestRouter(t, runner, &stubUsageReader{}, &stubConsent{allowed: false}, uuid.New())

	w := postChat(t, r, ChatRequest{Message: "hello"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, runner.calls, "consent denial must short-circuit before routing")
}

func TestChatMissingMessage(t *testing.T) {
	r := chatTestRouter(t, &stubChatRunner{}, &stubUsageReader{}, &stubConsent{allowed: true}, uuid.New())

	w := postChat(t, r, map[string]any{"maxTokens": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatEmptyMessagesError(t *testing.T) {
	runner := &stubChatRunner{err: ai.ErrEmptyMessages}
	r := chatTestRouter(t, runner, &stubUsageReader{}, &stubConsent{allowed: true}, uuid.New())

	w := postChat(t, r, ChatRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUsageStatsEndpoint(t *testing.T) {
	userID := uuid.New()
	usage := &stubUsageReader{
		stats: &ai.UsageStats{UserID: userID, TotalCost: 1.25, TokenCount: 5000, UsageCount: 12},
		daily: []ai.DailyUsage{{Cost: 0.5, Count: 3}},
		models: []ai.ModelUsage{
			{Model: "gpt-5.1", Cost: 1.0, Count: 9},
			{Model: "claude-sonnet-4-5", Cost: 0.25, Count: 3},
		},
	}
	r := chatTestRouter(t, &stubChatRunner{}, usage, &stubConsent{allowed: true}, userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/usage-stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats ai.UsageStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(12), stats.UsageCount)
	assert.InDelta(t, 1.25, stats.TotalCost, 1e-9)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/usage-stats/models", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var models []ai.ModelUsage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &models))
	require.Len(t, models, 2)
	assert.Equal(t, "gpt-5.1", models[0].Model)
}
