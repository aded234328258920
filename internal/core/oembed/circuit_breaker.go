package oembed

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// circuitState represents the state of a provider circuit
type circuitState int

const (
	stateClosed   circuitState = iota // Provider is invoked normally
	stateOpen                         // Provider keeps failing and is skipped
	stateHalfOpen                     // One invocation allowed to test recovery
)

func (s circuitState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// circuitBreaker tracks consecutive failures per pattern provider and stops
// invoking a provider that keeps failing
type circuitBreaker struct {
	failures         map[string]int
	lastFailure      map[string]time.Time
	state            map[string]circuitState
	lastStateLog     map[string]time.Time
	now              func() time.Time
	failureThreshold int
	openDuration     time.Duration
	mu               sync.Mutex
}

func newCircuitBreaker() *circuitBreaker {
	return &circuitBreaker{
		failureThreshold: 3,               // Open after 3 consecutive failures
		openDuration:     5 * time.Minute, // Skip the provider for 5 minutes
		failures:         make(map[string]int),
		lastFailure:      make(map[string]time.Time),
		state:            make(map[string]circuitState),
		lastStateLog:     make(map[string]time.Time),
		now:              time.Now,
	}
}

// canAttempt reports whether the provider may be invoked.
// An open circuit moves to half-open once the open period has elapsed.
func (cb *circuitBreaker) canAttempt(provider string) (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.getState(provider) {
	case stateOpen:
		lastFail := cb.lastFailure[provider]
		if cb.now().Sub(lastFail) > cb.openDuration {
			cb.state[provider] = stateHalfOpen
			cb.logStateChange(provider, stateHalfOpen)
			return true, nil
		}
		return false, fmt.Errorf(
			"circuit open for pattern provider '%s' (failures: %d, next retry: %s)",
			provider,
			cb.failures[provider],
			lastFail.Add(cb.openDuration).Format("15:04:05"),
		)
	default:
		return true, nil
	}
}

// recordSuccess resets the provider's failure tracking
func (cb *circuitBreaker) recordSuccess(provider string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.getState(provider)

	delete(cb.failures, provider)
	delete(cb.lastFailure, provider)
	cb.state[provider] = stateClosed

	if oldState != stateClosed {
		cb.logStateChange(provider, stateClosed)
	}
}

// recordFailure counts a failed invocation and opens the circuit at the threshold.
// A failure while half-open reopens the circuit immediately.
func (cb *circuitBreaker) recordFailure(provider string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[provider]++
	cb.lastFailure[provider] = cb.now()
	failCount := cb.failures[provider]
	oldState := cb.getState(provider)

	if failCount >= cb.failureThreshold || oldState == stateHalfOpen {
		cb.state[provider] = stateOpen
		if oldState != stateOpen {
			slog.Warn("[OEMBED-CIRCUIT] opening circuit for pattern provider",
				"provider", provider,
				"failures", failCount,
				"error", err,
			)
			cb.lastStateLog[provider] = cb.now()
		}
		return
	}

	slog.Warn("[OEMBED-CIRCUIT] pattern provider failed",
		"provider", provider,
		"failures", failCount,
		"threshold", cb.failureThreshold,
		"error", err,
	)
}

// getState returns the current state (must be called with lock held)
func (cb *circuitBreaker) getState(provider string) circuitState {
	if state, exists := cb.state[provider]; exists {
		return state
	}
	return stateClosed
}

// logStateChange logs a transition at most once per minute per provider
// (must be called with lock held)
func (cb *circuitBreaker) logStateChange(provider string, newState circuitState) {
	lastLog, exists := cb.lastStateLog[provider]
	if exists && cb.now().Sub(lastLog) < time.Minute {
		return
	}

	slog.Info("[OEMBED-CIRCUIT] pattern provider circuit changed state",
		"provider", provider,
		"state", newState.String(),
	)
	cb.lastStateLog[provider] = cb.now()
}
