// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OEmbedRequests counts oEmbed requests by outcome
	// ("ok", "invalid_request", "not_found", "unsupported_format", "error").
	OEmbedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oembed_requests_total",
			Help: "Total number of oEmbed requests by outcome",
		},
		[]string{"outcome"},
	)

	// OEmbedResolutions counts successful URL resolutions by the pattern source that matched.
	OEmbedResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oembed_resolutions_total",
			Help: "Total number of chart URLs resolved, by pattern source",
		},
		[]string{"source"}, // "canonical", "provider", "path_fallback"
	)

	// OEmbedRejections counts access guard rejections by internal reason.
	// The reason never reaches the HTTP response.
	OEmbedRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oembed_access_rejections_total",
			Help: "Total number of resolved charts rejected by the access guard",
		},
		[]string{"reason"},
	)

	// PatternProviderFailures counts pattern provider invocations that failed, panicked or
	// were skipped by an open provider circuit.
	PatternProviderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oembed_pattern_provider_failures_total",
			Help: "Total number of pattern provider invocations that contributed nothing because of a failure",
		},
		[]string{"provider", "reason"}, // reason: "error", "panic", "circuit_open"
	)

	// PatternCompileErrors counts URL patterns rejected by the regexp compiler.
	PatternCompileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "oembed_pattern_compile_errors_total",
			Help: "Total number of URL patterns that failed to compile",
		},
	)

	// CircuitBreakerState tracks the chart store breaker state.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chart_store_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTransitions counts chart store breaker state changes.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_store_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// RateLimitedRequests counts requests rejected with 429.
	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
