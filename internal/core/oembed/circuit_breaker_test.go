package oembed

import (
	"fmt"
	"testing"
	"time"
)

func TestCircuitBreaker_Basic(t *testing.T) {
	cb := newCircuitBreaker()
	provider := "test-provider"

	// Should start closed (allow attempts)
	canAttempt, err := cb.canAttempt(provider)
	if !canAttempt {
		t.Errorf("Expected circuit to be closed initially, but got error: %v", err)
	}

	cb.recordSuccess(provider)
	canAttempt, _ = cb.canAttempt(provider)
	if !canAttempt {
		t.Error("Expected circuit to remain closed after success")
	}
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	cb := newCircuitBreaker()
	provider := "failing-provider"

	for i := 0; i < cb.failureThreshold; i++ {
		cb.recordFailure(provider, fmt.Errorf("test error %d", i))
	}

	canAttempt, err := cb.canAttempt(provider)
	if canAttempt {
		t.Error("Expected circuit to be open after threshold failures")
	}
	if err == nil {
		t.Error("Expected error when circuit is open")
	}
}

func TestCircuitBreaker_RecoveryAfterSuccess(t *testing.T) {
	cb := newCircuitBreaker()
	provider := "recovery-provider"

	cb.recordFailure(provider, fmt.Errorf("error 1"))
	cb.recordFailure(provider, fmt.Errorf("error 2"))
	cb.recordSuccess(provider)

	canAttempt, err := cb.canAttempt(provider)
	if !canAttempt {
		t.Errorf("Expected circuit to be closed after success, but got error: %v", err)
	}
	if count := cb.failures[provider]; count != 0 {
		t.Errorf("Expected failure count to be reset to 0, got %d", count)
	}
}

func TestCircuitBreaker_HalfOpenTransition(t *testing.T) {
	cb := newCircuitBreaker()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	provider := "half-open-provider"

	for i := 0; i < cb.failureThreshold; i++ {
		cb.recordFailure(provider, fmt.Errorf("error %d", i))
	}
	if canAttempt, _ := cb.canAttempt(provider); canAttempt {
		t.Fatal("Expected circuit to be open")
	}

	now = now.Add(cb.openDuration + time.Second)

	canAttempt, err := cb.canAttempt(provider)
	if !canAttempt {
		t.Fatalf("Expected circuit to be half-open after open duration, got error: %v", err)
	}
	if state := cb.getState(provider); state != stateHalfOpen {
		t.Errorf("Expected half-open state, got %s", state)
	}

	// A failure while half-open reopens immediately
	cb.recordFailure(provider, fmt.Errorf("still failing"))
	if canAttempt, _ := cb.canAttempt(provider); canAttempt {
		t.Error("Expected circuit to reopen after a half-open failure")
	}
}

func TestCircuitBreaker_IndependentProviders(t *testing.T) {
	cb := newCircuitBreaker()

	for i := 0; i < cb.failureThreshold; i++ {
		cb.recordFailure("broken", fmt.Errorf("error %d", i))
	}

	if canAttempt, _ := cb.canAttempt("broken"); canAttempt {
		t.Error("Expected broken provider circuit to be open")
	}
	if canAttempt, err := cb.canAttempt("healthy"); !canAttempt {
		t.Errorf("Expected healthy provider to be unaffected, got error: %v", err)
	}
}
