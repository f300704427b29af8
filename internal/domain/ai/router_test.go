package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider echoes the requested model and canned usage, or fails.
// resolveModel, when set, rewrites the reported model id the way real
// providers resolve aliases.
type fakeProvider struct {
	name         ProviderName
	err          error
	lastReq      *ChatRequest
	response     string
	resolveModel func(string) string
}

func (p *fakeProvider) Name() ProviderName { return p.name }

func (p *fakeProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	response := p.response
	if response == "" {
		response = "ok"
	}
	model := req.Model
	if p.resolveModel != nil {
		model = p.resolveModel(req.Model)
	}
	return &ChatResult{
		Response: response,
		Model:    model,
		Usage:    TokenUsage{Prompt: 100, Completion: 50, Total: 150},
	}, nil
}

func testRouter(provider Provider) *Router {
	registry := NewRegistry()
	registry.Register(provider)
	prices := NewPriceTableWith(map[string]Rate{
		"standard": {Prompt: 0.001, Completion: 0.002},
		"advanced": {Prompt: 0.01, Completion: 0.03},
		"forced":   {Prompt: 0.005, Completion: 0.005},
	})
	return NewRouter(registry, prices, RouterConfig{
		DefaultProvider: ProviderOpenAI,
		StandardModel:   "standard",
		AdvancedModel:   "advanced",
		RequestTimeout:  time.Second,
		MaxTokens:       256,
	}, zap.NewNop())
}

func TestRouteChatSimpleMessageUsesStandardTier(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI}
	router := testRouter(provider)

	res, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system", Options{})
	require.NoError(t, err)

	assert.Equal(t, "standard", res.Model)
	assert.Equal(t, ProviderOpenAI, res.Provider)
	require.NotNil(t, res.Complexity)
	assert.Less(t, res.Complexity.Score, advancedScoreThreshold)
	assert.Greater(t, res.Cost, 0.0)
	assert.Equal(t, 150, res.Usage.Total)
}

func TestRouteChatComplexConversationUsesAdvancedTier(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI}
	router := testRouter(provider)

	content := strings.Repeat("diabetes insulin hypertension medication dosage glucose ", 20) +
		"compare metformin versus insulin? is it safe together with ibuprofen?"
	messages := make([]ChatMessage, 0, 24)
	for i := 0; i < 12; i++ {
		messages = append(messages,
			ChatMessage{Role: RoleUser, Content: content},
			ChatMessage{Role: RoleAssistant, Content: content},
		)
	}

	res, err := router.RouteChat(context.Background(), messages, "system", Options{})
	require.NoError(t, err)
	assert.Equal(t, "advanced", res.Model)
	require.NotNil(t, res.Complexity)
	assert.GreaterOrEqual(t, res.Complexity.Score, advancedScoreThreshold)
}

func TestModelForScoreBoundaryInclusiveHigh(t *testing.T) {
	router := testRouter(&fakeProvider{name: ProviderOpenAI})
	assert.Equal(t, "advanced", router.modelForScore(7.0))
	assert.Equal(t, "advanced", router.modelForScore(10.0))
	assert.Equal(t, "standard", router.modelForScore(6.999))
	assert.Equal(t, "standard", router.modelForScore(0))
}

func TestRouteChatForceModelOverridesPolicyKeepsComplexity(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI}
	router := testRouter(provider)

	res, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system",
		Options{ForceModel: "forced"})
	require.NoError(t, err)

	assert.Equal(t, "forced", res.Model)
	assert.NotNil(t, res.Complexity, "complexity stays attached for observability")
}

func TestRouteChatForceProviderSkipsAssessment(t *testing.T) {
	provider := &fakeProvider{name: ProviderAnthropic}
	registry := NewRegistry()
	registry.Register(provider)
	registry.Register(&fakeProvider{name: ProviderOpenAI})
	prices := NewPriceTableWith(map[string]Rate{"standard": {Prompt: 0.001, Completion: 0.002}})
	router := NewRouter(registry, prices, RouterConfig{
		DefaultProvider: ProviderOpenAI,
		StandardModel:   "standard",
		AdvancedModel:   "advanced",
	}, zap.NewNop())

	res, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system",
		Options{ForceProvider: ProviderAnthropic})
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, res.Provider)
	assert.Nil(t, res.Complexity)
	assert.NotNil(t, provider.lastReq, "forced provider must receive the call")
}

func TestRouteChatPricesRequestedModelWhenResolvedIDUnpriced(t *testing.T) {
	provider := &fakeProvider{
		name:         ProviderOpenAI,
		resolveModel: func(m string) string { return m + "-2024-07-18" },
	}
	router := testRouter(provider)

	res, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system", Options{})
	require.NoError(t, err)

	// The snapshot id is reported, but billing uses the requested alias.
	assert.Equal(t, "standard-2024-07-18", res.Model)
	expected := 100.0/1000*0.001 + 50.0/1000*0.002
	assert.InDelta(t, expected, res.Cost, 1e-12)
}

func TestRouteChatPricesResolvedModelWhenKnown(t *testing.T) {
	provider := &fakeProvider{
		name:         ProviderOpenAI,
		resolveModel: func(string) string { return "advanced" },
	}
	router := testRouter(provider)

	res, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system", Options{})
	require.NoError(t, err)

	assert.Equal(t, "advanced", res.Model)
	expected := 100.0/1000*0.01 + 50.0/1000*0.03
	assert.InDelta(t, expected, res.Cost, 1e-12)
}

func TestRouteChatUnpricedResolvedAndRequestedFailsClosed(t *testing.T) {
	provider := &fakeProvider{
		name:         ProviderOpenAI,
		resolveModel: func(string) string { return "experimental-preview" },
	}
	router := testRouter(provider)

	_, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system",
		Options{ForceModel: "unpriced-model"})
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestRouteChatForcedProviderUsesProviderDefaultModel(t *testing.T) {
	anthropic := &fakeProvider{name: ProviderAnthropic}
	registry := NewRegistry()
	registry.Register(anthropic)
	registry.Register(&fakeProvider{name: ProviderOpenAI})
	prices := NewPriceTableWith(map[string]Rate{
		"standard":       {Prompt: 0.001, Completion: 0.002},
		"claude-default": {Prompt: 0.003, Completion: 0.015},
		"claude-forced":  {Prompt: 0.003, Completion: 0.015},
	})
	router := NewRouter(registry, prices, RouterConfig{
		DefaultProvider: ProviderOpenAI,
		StandardModel:   "standard",
		AdvancedModel:   "advanced",
		ProviderDefaults: map[ProviderName]string{
			ProviderAnthropic: "claude-default",
		},
	}, zap.NewNop())
	messages := []ChatMessage{{Role: RoleUser, Content: "hi"}}

	// Forcing a provider alone swaps in that provider's default model; the
	// tier models belong to the default provider.
	res, err := router.RouteChat(context.Background(), messages, "system",
		Options{ForceProvider: ProviderAnthropic})
	require.NoError(t, err)
	require.NotNil(t, anthropic.lastReq)
	assert.Equal(t, "claude-default", anthropic.lastReq.Model)
	assert.Equal(t, "claude-default", res.Model)

	// An explicit model still wins over the provider default.
	res, err = router.RouteChat(context.Background(), messages, "system",
		Options{ForceProvider: ProviderAnthropic, ForceModel: "claude-forced"})
	require.NoError(t, err)
	assert.Equal(t, "claude-forced", res.Model)
}

func TestRouteChatProviderFailureIsTyped(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI, err: errors.New("connection reset")}
	router := testRouter(provider)

	res, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system", Options{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestRouteChatUnknownProvider(t *testing.T) {
	router := testRouter(&fakeProvider{name: ProviderOpenAI})

	_, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system",
		Options{ForceProvider: ProviderName("palantir")})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRouteChatUnknownForcedModelFailsClosed(t *testing.T) {
	router := testRouter(&fakeProvider{name: ProviderOpenAI})

	_, err := router.RouteChat(context.Background(),
		[]ChatMessage{{Role: RoleUser, Content: "hi"}}, "system",
		Options{ForceModel: "unpriced-model"})
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestRouteChatEmptyMessages(t *testing.T) {
	router := testRouter(&fakeProvider{name: ProviderOpenAI})
	_, err := router.RouteChat(context.Background(), nil, "system", Options{})
	assert.ErrorIs(t, err, ErrEmptyMessages)
}

func TestRouteChatBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI, err: errors.New("timeout")}
	registry := NewRegistry()
	registry.Register(provider)
	router := NewRouter(registry, NewPriceTable(), RouterConfig{
		DefaultProvider:  ProviderOpenAI,
		StandardModel:    "gpt-4o-mini",
		AdvancedModel:    "gpt-4o",
		FailureThreshold: 2,
		CircuitTimeout:   time.Minute,
	}, zap.NewNop())

	messages := []ChatMessage{{Role: RoleUser, Content: "hi"}}
	for i := 0; i < 3; i++ {
		_, err := router.RouteChat(context.Background(), messages, "system", Options{})
		assert.ErrorIs(t, err, ErrProviderFailure)
	}

	// Breaker is now open: the provider is no longer invoked but the error
	// still surfaces as a provider failure.
	provider.lastReq = nil
	_, err := router.RouteChat(context.Background(), messages, "system", Options{})
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Nil(t, provider.lastReq)
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeProvider{name: ProviderOpenAI})
	registry.Register(&fakeProvider{name: ProviderAnthropic})

	p, err := registry.Get(ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p.Name())

	_, err = registry.Get(ProviderName("missing"))
	assert.ErrorIs(t, err, ErrUnknownProvider)

	assert.Equal(t, []ProviderName{ProviderAnthropic, ProviderOpenAI}, registry.Names())
}
