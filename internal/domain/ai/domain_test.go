package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock implementations

type mockUsageDB struct {
	mock.Mock
}

func (m *mockUsageDB) IncrementStats(ctx context.Context, userID uuid.UUID, delta UsageDelta) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

func (m *mockUsageDB) GetStats(ctx context.Context, userID uuid.UUID) (*UsageStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*UsageStats), args.Error(1)
}

func (m *mockUsageDB) DailyUsage(ctx context.Context, userID uuid.UUID) ([]DailyUsage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DailyUsage), args.Error(1)
}

func (m *mockUsageDB) ModelDistribution(ctx context.Context, userID uuid.UUID) ([]ModelUsage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ModelUsage), args.Error(1)
}

type mockInteractionDB struct {
	mock.Mock
}

func (m *mockInteractionDB) Create(ctx context.Context, interaction *Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *mockInteractionDB) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*Interaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Interaction), args.Error(1)
}

// accumulatingUsageDB sums deltas in memory to exercise interleaving.
type accumulatingUsageDB struct {
	mu    sync.Mutex
	stats map[uuid.UUID]*UsageStats
}

func newAccumulatingUsageDB() *accumulatingUsageDB {
	return &accumulatingUsageDB{stats: make(map[uuid.UUID]*UsageStats)}
}

func (db *accumulatingUsageDB) IncrementStats(ctx context.Context, userID uuid.UUID, delta UsageDelta) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	s, ok := db.stats[userID]
	if !ok {
		s = &UsageStats{UserID: userID}
		db.stats[userID] = s
	}
	s.TotalCost += delta.Cost
	s.TokenCount += delta.Tokens
	s.UsageCount++
	s.LastUsedAt = time.Now()
	return nil
}

func (db *accumulatingUsageDB) GetStats(ctx context.Context, userID uuid.UUID) (*UsageStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.stats[userID], nil
}

func (db *accumulatingUsageDB) DailyUsage(ctx context.Context, userID uuid.UUID) ([]DailyUsage, error) {
	return nil, nil
}

func (db *accumulatingUsageDB) ModelDistribution(ctx context.Context, userID uuid.UUID) ([]ModelUsage, error) {
	return nil, nil
}

// Tracker tests

func TestTrackerRecord(t *testing.T) {
	usageDB := new(mockUsageDB)
	interactionDB := new(mockInteractionDB)
	tracker := NewTracker(usageDB, interactionDB, zap.NewNop())
	userID := uuid.New()

	res := &RouteResult{
		Response: "answer",
		Model:    "gpt-4o-mini",
		Provider: ProviderOpenAI,
		Usage:    TokenUsage{Prompt: 100, Completion: 50, Total: 150},
		Cost:     0.0005,
	}

	interactionDB.On("Create", mock.Anything, mock.MatchedBy(func(in *Interaction) bool {
		return in.UserID == userID && in.Query == "question" && in.TotalTokens == 150
	})).Return(nil)
	usageDB.On("IncrementStats", mock.Anything, userID, UsageDelta{Cost: 0.0005, Tokens: 150}).Return(nil)

	err := tracker.Record(context.Background(), userID, "question", res)
	require.NoError(t, err)
	usageDB.AssertExpectations(t)
	interactionDB.AssertExpectations(t)
}

func TestTrackerRecordStatsFailureSurfaces(t *testing.T) {
	usageDB := new(mockUsageDB)
	interactionDB := new(mockInteractionDB)
	tracker := NewTracker(usageDB, interactionDB, zap.NewNop())
	userID := uuid.New()

	interactionDB.On("Create", mock.Anything, mock.Anything).Return(nil)
	usageDB.On("IncrementStats", mock.Anything, userID, mock.Anything).Return(errors.New("db down"))

	err := tracker.Record(context.Background(), userID, "q", &RouteResult{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}

func TestTrackerAccumulationUnderInterleaving(t *testing.T) {
	db := newAccumulatingUsageDB()
	interactionDB := new(mockInteractionDB)
	interactionDB.On("Create", mock.Anything, mock.Anything).Return(nil)
	tracker := NewTracker(db, interactionDB, zap.NewNop())
	userID := uuid.New()

	costs := []float64{0.001, 0.002, 0.003}
	var wg sync.WaitGroup
	for _, cost := range costs {
		wg.Add(1)
		go func(c float64) {
			defer wg.Done()
			res := &RouteResult{
				Model: "gpt-4o-mini",
				Usage: TokenUsage{Prompt: 10, Completion: 10, Total: 20},
				Cost:  c,
			}
			require.NoError(t, tracker.Record(context.Background(), userID, "q", res))
		}(cost)
	}
	wg.Wait()

	stats, err := tracker.Stats(context.Background(), userID)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.006, stats.TotalCost, 1e-12)
	assert.Equal(t, int64(3), stats.UsageCount)
	assert.Equal(t, int64(60), stats.TokenCount)
}

func TestTrackerStatsAbsentUserIsZeroValued(t *testing.T) {
	usageDB := new(mockUsageDB)
	tracker := NewTracker(usageDB, new(mockInteractionDB), zap.NewNop())
	userID := uuid.New()

	usageDB.On("GetStats", mock.Anything, userID).Return(nil, nil)

	stats, err := tracker.Stats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, stats.UserID)
	assert.Zero(t, stats.UsageCount)
	assert.Zero(t, stats.TotalCost)
}

// ChatService tests

func chatServiceFixture(provider Provider, interactionDB *mockInteractionDB, usageDB UsageRepository) *ChatService {
	registry := NewRegistry()
	registry.Register(provider)
	prices := NewPriceTableWith(map[string]Rate{
		"standard": {Prompt: 0.001, Completion: 0.002},
		"advanced": {Prompt: 0.01, Completion: 0.03},
	})
	router := NewRouter(registry, prices, RouterConfig{
		DefaultProvider: ProviderOpenAI,
		StandardModel:   "standard",
		AdvancedModel:   "advanced",
	}, zap.NewNop())
	tracker := NewTracker(usageDB, interactionDB, zap.NewNop())
	return NewChatService(router, tracker, interactionDB, nil, zap.NewNop())
}

func TestChatRecordsUsage(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI, response: "rest and fluids"}
	interactionDB := new(mockInteractionDB)
	db := newAccumulatingUsageDB()
	svc := chatServiceFixture(provider, interactionDB, db)
	userID := uuid.New()

	interactionDB.On("ListRecent", mock.Anything, userID, contextTurns).Return([]*Interaction{}, nil)
	interactionDB.On("Create", mock.Anything, mock.Anything).Return(nil)

	res, err := svc.Chat(context.Background(), userID, "What does a headache with fever mean?", Options{})
	require.NoError(t, err)
	assert.Equal(t, "rest and fluids", res.Response)
	require.NotNil(t, res.Complexity)
	assert.Greater(t, res.Cost, 0.0)

	stats, err := NewTracker(db, interactionDB, zap.NewNop()).Stats(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UsageCount)
}

func TestChatProviderFailureDoesNotRecordUsage(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI, err: errors.New("deadline exceeded")}
	interactionDB := new(mockInteractionDB)
	db := newAccumulatingUsageDB()
	svc := chatServiceFixture(provider, interactionDB, db)
	userID := uuid.New()

	interactionDB.On("ListRecent", mock.Anything, userID, contextTurns).Return([]*Interaction{}, nil)

	_, err := svc.Chat(context.Background(), userID, "hello", Options{})
	assert.ErrorIs(t, err, ErrProviderFailure)

	stats, err := db.GetStats(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, stats, "failed calls must not touch usage stats")
	interactionDB.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestChatReplaysRecentContextOldestFirst(t *testing.T) {
	provider := &fakeProvider{name: ProviderOpenAI}
	interactionDB := new(mockInteractionDB)
	svc := chatServiceFixture(provider, interactionDB, newAccumulatingUsageDB())
	userID := uuid.New()

	// Newest first, as the repository returns them.
	recent := []*Interaction{
		{Query: "second question", Response: "second answer"},
		{Query: "first question", Response: "first answer"},
	}
	interactionDB.On("ListRecent", mock.Anything, userID, contextTurns).Return(recent, nil)
	interactionDB.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Chat(context.Background(), userID, "third question", Options{})
	require.NoError(t, err)

	require.NotNil(t, provider.lastReq)
	msgs := provider.lastReq.Messages
	require.Len(t, msgs, 5)
	assert.Equal(t, "first question", msgs[0].Content)
	assert.Equal(t, "first answer", msgs[1].Content)
	assert.Equal(t, "second question", msgs[2].Content)
	assert.Equal(t, "second answer", msgs[3].Content)
	assert.Equal(t, "third question", msgs[4].Content)
}

func TestChatRejectsBlankMessage(t *testing.T) {
	svc := chatServiceFixture(&fakeProvider{name: ProviderOpenAI}, new(mockInteractionDB), newAccumulatingUsageDB())
	_, err := svc.Chat(context.Background(), uuid.New(), "   ", Options{})
	assert.ErrorIs(t, err, ErrEmptyMessages)
}
