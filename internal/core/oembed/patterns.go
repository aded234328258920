package oembed

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/iter"

	"ChartEmbed/internal/metrics"
)

// PatternProvider contributes chart URL patterns. It is invoked on every
// resolution that the canonical pattern did not settle, so providers backed
// by storage see changes without a restart.
type PatternProvider func(ctx context.Context) ([]string, error)

type registration struct {
	provide PatternProvider
	name    string
}

// Registry holds the pattern providers contributed by independent modules.
// Providers are registered at start-up; Collect is safe for concurrent use.
type Registry struct {
	breaker   *circuitBreaker
	providers []registration
	mu        sync.RWMutex
}

// NewRegistry creates an empty pattern registry
func NewRegistry() *Registry {
	return &Registry{breaker: newCircuitBreaker()}
}

// Register appends a provider. Registration order is the priority order of
// the patterns it yields. A nil provider is ignored.
func (r *Registry) Register(name string, provider PatternProvider) {
	if provider == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		name = fmt.Sprintf("provider-%d", len(r.providers)+1)
	}
	r.providers = append(r.providers, registration{name: name, provide: provider})
}

// Len returns the number of registered providers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Collect invokes every provider concurrently and returns their patterns
// flattened in registration order. A provider that fails, panics or is
// short-circuited contributes nothing.
func (r *Registry) Collect(ctx context.Context) []string {
	r.mu.RLock()
	regs := slices.Clone(r.providers)
	r.mu.RUnlock()

	if len(regs) == 0 {
		return nil
	}

	sets := iter.Map(regs, func(reg *registration) []string {
		return r.invoke(ctx, reg)
	})

	var patterns []string
	for _, set := range sets {
		patterns = append(patterns, set...)
	}
	return patterns
}

func (r *Registry) invoke(ctx context.Context, reg *registration) (patterns []string) {
	if ok, err := r.breaker.canAttempt(reg.name); !ok {
		slog.Debug("[OEMBED] skipping pattern provider", "provider", reg.name, "error", err)
		metrics.PatternProviderFailures.WithLabelValues(reg.name, "circuit_open").Inc()
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.breaker.recordFailure(reg.name, fmt.Errorf("pattern provider panicked: %v", rec))
			metrics.PatternProviderFailures.WithLabelValues(reg.name, "panic").Inc()
			patterns = nil
		}
	}()

	raw, err := reg.provide(ctx)
	if err != nil {
		r.breaker.recordFailure(reg.name, err)
		metrics.PatternProviderFailures.WithLabelValues(reg.name, "error").Inc()
		return nil
	}
	r.breaker.recordSuccess(reg.name)

	patterns = make([]string, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p) != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}
