package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// advancedScoreThreshold is the complexity score at which routing switches to
// the advanced model tier. The boundary is inclusive: a score of exactly 7
// routes high.
const advancedScoreThreshold = 7.0

// RouterConfig holds routing policy configuration.
type RouterConfig struct {
	DefaultProvider ProviderName
	StandardModel   string
	AdvancedModel   string

	// ProviderDefaults maps a provider to the model used when the caller
	// forces that provider without naming a model. The tier models belong
	// to the default provider and do not transfer across providers.
	ProviderDefaults map[ProviderName]string

	RequestTimeout   time.Duration
	MaxTokens        int
	FailureThreshold uint32
	CircuitTimeout   time.Duration
}

// Options are per-request routing overrides. ForceProvider bypasses
// complexity assessment entirely; ForceModel overrides the selected model but
// the assessment is still computed and attached.
type Options struct {
	MaxTokens     int
	Temperature   *float64
	ForceProvider ProviderName
	ForceModel    string
}

// RouteResult is a completed chat turn with its accounting metadata.
type RouteResult struct {
	Response   string       `json:"response"`
	Model      string       `json:"model"`
	Provider   ProviderName `json:"provider"`
	Usage      TokenUsage   `json:"tokens"`
	Cost       float64      `json:"cost"`
	Complexity *Assessment  `json:"complexity,omitempty"`
}

// Router selects a provider and model for each chat turn, invokes the
// provider through a circuit breaker, and attaches cost and complexity
// metadata. Provider failures propagate as ErrProviderFailure; degrading to a
// canned response is the caller's decision.
type Router struct {
	registry *Registry
	prices   *PriceTable
	cfg      RouterConfig
	breaker  *gobreaker.CircuitBreaker[*ChatResult]
	logger   *zap.Logger
}

// NewRouter creates a router over the given registry and price table.
func NewRouter(registry *Registry, prices *PriceTable, cfg RouterConfig, logger *zap.Logger) *Router {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 45 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.CircuitTimeout <= 0 {
		cfg.CircuitTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*ChatResult](gobreaker.Settings{
		Name:    "ai-provider",
		Timeout: cfg.CircuitTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ai circuit state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Router{
		registry: registry,
		prices:   prices,
		cfg:      cfg,
		breaker:  breaker,
		logger:   logger,
	}
}

// modelForScore applies the two-bucket threshold policy.
func (r *Router) modelForScore(score float64) string {
	if score >= advancedScoreThreshold {
		return r.cfg.AdvancedModel
	}
	return r.cfg.StandardModel
}

// RouteChat routes one chat turn.
func (r *Router) RouteChat(ctx context.Context, messages []ChatMessage, system string, opts Options) (*RouteResult, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyMessages
	}

	providerName := r.cfg.DefaultProvider
	model := r.cfg.StandardModel
	var assessment *Assessment

	if opts.ForceProvider != "" {
		// Caller override always wins and skips assessment.
		providerName = opts.ForceProvider
		if fallback, ok := r.cfg.ProviderDefaults[providerName]; ok {
			model = fallback
		}
	} else {
		a := Assess(messages)
		assessment = &a
		model = r.modelForScore(a.Score)
	}
	if opts.ForceModel != "" {
		model = opts.ForceModel
	}

	provider, err := r.registry.Get(providerName)
	if err != nil {
		return nil, err
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = r.cfg.MaxTokens
	}

	req := &ChatRequest{
		Messages:    messages,
		System:      system,
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := r.breaker.Execute(func() (*ChatResult, error) {
		return provider.Chat(callCtx, req)
	})
	if err != nil {
		r.logger.Warn("ai provider call failed",
			zap.String("provider", providerName.String()),
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("chat via %s: %w: %w", providerName, ErrProviderFailure, err)
	}

	// Providers may resolve aliases; report what actually ran. OpenAI
	// resolves alias requests to dated snapshot ids the rate table does not
	// key, so pricing falls back to the requested model when the resolved id
	// has no rate. Unknown on both sides still fails closed.
	usedModel := result.Model
	if usedModel == "" {
		usedModel = model
	}
	priceModel := usedModel
	if !r.prices.Knows(priceModel) && r.prices.Knows(model) {
		priceModel = model
	}

	cost, err := r.prices.Cost(priceModel, result.Usage)
	if err != nil {
		return nil, err
	}

	return &RouteResult{
		Response:   result.Response,
		Model:      usedModel,
		Provider:   providerName,
		Usage:      result.Usage,
		Cost:       cost,
		Complexity: assessment,
	}, nil
}
