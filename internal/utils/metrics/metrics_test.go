package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return New("test", prometheus.NewRegistry())
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordHTTPRequest("GET", "/api/v1/records", 200, 100*time.Millisecond)
	m.RecordHTTPRequest("POST", "/api/v1/chat", 401, 50*time.Millisecond)
	m.RecordHTTPRequest("DELETE", "/api/v1/records/:id", 500, 200*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/records", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/chat", "4xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("DELETE", "/api/v1/records/:id", "5xx")))
}

func TestRecordAIRequest(t *testing.T) {
	m := newTestMetrics()

	m.RecordAIRequest("openai", "gpt-4o", "success", 2*time.Second)
	m.RecordAIRequest("anthropic", "claude-sonnet-4-20250514", "error", 500*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AIRequestsTotal.WithLabelValues("openai", "gpt-4o", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AIRequestsTotal.WithLabelValues("anthropic", "claude-sonnet-4-20250514", "error")))
}

func TestRecordAITokens(t *testing.T) {
	m := newTestMetrics()

	t.Run("records input and output tokens", func(t *testing.T) {
		m.RecordAITokens("openai", "gpt-4o", 100, 50)

		assert.Equal(t, float64(100), testutil.ToFloat64(m.AITokensTotal.WithLabelValues("openai", "gpt-4o", "input")))
		assert.Equal(t, float64(50), testutil.ToFloat64(m.AITokensTotal.WithLabelValues("openai", "gpt-4o", "output")))
	})

	t.Run("skips zero tokens", func(t *testing.T) {
		m.RecordAITokens("openai", "gpt-4o-mini", 0, 0)

		assert.Equal(t, float64(0), testutil.ToFloat64(m.AITokensTotal.WithLabelValues("openai", "gpt-4o-mini", "input")))
		assert.Equal(t, float64(0), testutil.ToFloat64(m.AITokensTotal.WithLabelValues("openai", "gpt-4o-mini", "output")))
	})
}

func TestRecordAICost(t *testing.T) {
	m := newTestMetrics()

	m.RecordAICost("openai", "gpt-4o", 0.0125)
	m.RecordAICost("openai", "gpt-4o", 0.0075)
	m.RecordAICost("openai", "gpt-4o", 0) // ignored

	assert.InDelta(t, 0.02, testutil.ToFloat64(m.AICostTotal.WithLabelValues("openai", "gpt-4o")), 1e-9)
}

func TestRecordAccessDecision(t *testing.T) {
	m := newTestMetrics()

	m.RecordAccessDecision("record_delete", false)
	m.RecordAccessDecision("record_view", true)
	m.RecordAccessDecision("record_view", true)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AccessDecisionsTotal.WithLabelValues("record_delete", "denied")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AccessDecisionsTotal.WithLabelValues("record_view", "allowed")))
}

func TestStatusCodeToString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{200, "2xx"},
		{299, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{422, "4xx"},
		{500, "5xx"},
		{502, "5xx"},
		{100, "unknown"},
		{0, "unknown"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusCodeToString(tt.code))
		})
	}
}
