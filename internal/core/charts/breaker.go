package charts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"ChartEmbed/internal/metrics"
)

// BreakerOption configures a BreakerRepository
type BreakerOption func(*gobreaker.Settings)

// WithBreakerTimeout sets how long the breaker stays open before probing the store again
func WithBreakerTimeout(d time.Duration) BreakerOption {
	return func(s *gobreaker.Settings) {
		s.Timeout = d
	}
}

// WithBreakerThreshold sets the number of consecutive store failures that opens the breaker
func WithBreakerThreshold(n uint32) BreakerOption {
	return func(s *gobreaker.Settings) {
		s.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= n
		}
	}
}

type breakerRepository struct {
	next Repository
	cb   *gobreaker.CircuitBreaker[*Chart]
}

// NewBreakerRepository wraps a Repository so that a failing store is short-circuited
// instead of being hit by every request. ErrChartNotFound and ErrInvalidMetadata
// describe a single row, not the store, and count as successes.
func NewBreakerRepository(next Repository, opts ...BreakerOption) Repository {
	name := "chart-store"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrChartNotFound) ||
				errors.Is(err, ErrInvalidMetadata) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("[CHART-STORE] circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}

	return &breakerRepository{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*Chart](settings),
	}
}

func (r *breakerRepository) GetByID(ctx context.Context, id string) (*Chart, error) {
	return r.cb.Execute(func() (*Chart, error) {
		return r.next.GetByID(ctx, id)
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
