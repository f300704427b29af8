package ai

import "fmt"

// Rate holds per-1K-token prices in USD for one model.
type Rate struct {
	Prompt     float64
	Completion float64
}

// defaultRates is the static rate table. Prices are USD per 1K tokens.
var defaultRates = map[string]Rate{
	"gpt-4o":                     {Prompt: 0.0025, Completion: 0.01},
	"gpt-4o-mini":                {Prompt: 0.00015, Completion: 0.0006},
	"claude-3-5-sonnet-20241022": {Prompt: 0.003, Completion: 0.015},
	"claude-3-haiku-20240307":    {Prompt: 0.00025, Completion: 0.00125},
}

// PriceTable maps model identifiers to token rates.
type PriceTable struct {
	rates map[string]Rate
}

// NewPriceTable returns a table with the built-in rates.
func NewPriceTable() *PriceTable {
	return NewPriceTableWith(defaultRates)
}

// NewPriceTableWith returns a table with the given rates.
func NewPriceTableWith(rates map[string]Rate) *PriceTable {
	copied := make(map[string]Rate, len(rates))
	for model, rate := range rates {
		copied[model] = rate
	}
	return &PriceTable{rates: copied}
}

// Cost computes the monetary cost of one call. Unknown models return
// ErrUnknownModel rather than a zero cost.
func (t *PriceTable) Cost(model string, usage TokenUsage) (float64, error) {
	rate, ok := t.rates[model]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	return float64(usage.Prompt)/1000*rate.Prompt +
		float64(usage.Completion)/1000*rate.Completion, nil
}

// Knows reports whether the table has a rate for the model.
func (t *PriceTable) Knows(model string) bool {
	_, ok := t.rates[model]
	return ok
}
