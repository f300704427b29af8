package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostExactArithmetic(t *testing.T) {
	table := NewPriceTableWith(map[string]Rate{
		"test-model": {Prompt: 0.003, Completion: 0.015},
	})

	cost, err := table.Cost("test-model", TokenUsage{Prompt: 2000, Completion: 500, Total: 2500})
	require.NoError(t, err)
	// 2000/1000*0.003 + 500/1000*0.015
	assert.InEpsilon(t, 0.0135, cost, 1e-12)
}

func TestCostZeroTokens(t *testing.T) {
	table := NewPriceTable()
	cost, err := table.Cost("gpt-4o", TokenUsage{})
	require.NoError(t, err)
	assert.Zero(t, cost)
}

func TestCostUnknownModelFailsClosed(t *testing.T) {
	table := NewPriceTable()
	cost, err := table.Cost("gpt-99-turbo", TokenUsage{Prompt: 100, Completion: 100})
	assert.ErrorIs(t, err, ErrUnknownModel)
	assert.Zero(t, cost)
}

func TestDefaultTableKnowsConfiguredTiers(t *testing.T) {
	table := NewPriceTable()
	for _, model := range []string{"gpt-4o", "gpt-4o-mini", "claude-3-5-sonnet-20241022", "claude-3-haiku-20240307"} {
		assert.True(t, table.Knows(model), model)
	}
	assert.False(t, table.Knows(""))
}
