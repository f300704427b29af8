package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// AI metrics
	AIRequestsTotal   *prometheus.CounterVec
	AIRequestDuration *prometheus.HistogramVec
	AITokensTotal     *prometheus.CounterVec
	AICostTotal       *prometheus.CounterVec

	// Permission metrics
	AccessDecisionsTotal *prometheus.CounterVec

	// Security metrics
	SecurityEventsTotal *prometheus.CounterVec
}

// New creates a Metrics instance registered against reg. A nil reg uses the
// default prometheus registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "famvault"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		AIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "requests_total",
				Help:      "Total number of AI chat requests",
			},
			[]string{"provider", "model", "status"},
		),
		AIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "request_duration_seconds",
				Help:      "AI chat request duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"provider", "model"},
		),
		AITokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "tokens_total",
				Help:      "Total number of tokens processed",
			},
			[]string{"provider", "model", "type"}, // type: input, output
		),
		AICostTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ai",
				Name:      "cost_dollars_total",
				Help:      "Accumulated AI spend in dollars",
			},
			[]string{"provider", "model"},
		),

		AccessDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "family",
				Name:      "access_decisions_total",
				Help:      "Record access decisions by outcome",
			},
			[]string{"operation", "decision"}, // decision: allowed, denied
		),

		SecurityEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "security",
				Name:      "events_total",
				Help:      "Total number of security events",
			},
			[]string{"kind"},
		),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAIRequest records a routed chat turn.
func (m *Metrics) RecordAIRequest(provider, model, status string, duration time.Duration) {
	m.AIRequestsTotal.WithLabelValues(provider, model, status).Inc()
	m.AIRequestDuration.WithLabelValues(provider, model).Observe(duration.Seconds())
}

// RecordAITokens records token usage.
func (m *Metrics) RecordAITokens(provider, model string, inputTokens, outputTokens int) {
	if inputTokens > 0 {
		m.AITokensTotal.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.AITokensTotal.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	}
}

// RecordAICost adds one turn's cost to the spend counter.
func (m *Metrics) RecordAICost(provider, model string, cost float64) {
	if cost > 0 {
		m.AICostTotal.WithLabelValues(provider, model).Add(cost)
	}
}

// RecordAccessDecision records a permission resolver outcome.
func (m *Metrics) RecordAccessDecision(operation string, allowed bool) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	m.AccessDecisionsTotal.WithLabelValues(operation, decision).Inc()
}

// RecordSecurityEvent records a security event.
func (m *Metrics) RecordSecurityEvent(kind string) {
	m.SecurityEventsTotal.WithLabelValues(kind).Inc()
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
