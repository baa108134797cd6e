// Package breaker implements a process-wide circuit breaker that guards
// LLM summarisation calls against cascading failures.
package breaker

import (
	"fmt"
	"sync/atomic"
	"time"
)

// State is the circuit breaker's current mode.
type State int

const (
	// Closed allows requests through normally.
	Closed State = iota
	// Open blocks requests until the cooldown elapses.
	Open
	// HalfOpen allows requests through after cooldown; the next recorded
	// success closes the breaker and the next failure reopens it.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Config tunes the breaker's thresholds.
type Config struct {
	FailureThreshold uint32
	CooldownDuration time.Duration
}

// DefaultConfig matches the values used throughout the Orchestrator: three
// consecutive failures opens the circuit for five minutes.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		CooldownDuration: 5 * time.Minute,
	}
}

// Breaker is a thread-safe, in-memory circuit breaker. State does not
// survive a process restart.
type Breaker struct {
	consecutiveFailures atomic.Uint32
	openedAtMillis      atomic.Uint64
	config              Config
}

// New builds a Breaker with the default configuration.
func New() *Breaker {
	return WithConfig(DefaultConfig())
}

// WithConfig builds a Breaker with a custom configuration.
func WithConfig(cfg Config) *Breaker {
	return &Breaker{config: cfg}
}

// State reports the breaker's current mode, resolving Open to HalfOpen once
// the cooldown has elapsed since it tripped.
func (b *Breaker) State() State {
	failures := b.consecutiveFailures.Load()
	if failures < b.config.FailureThreshold {
		return Closed
	}

	openedAt := b.openedAtMillis.Load()
	if openedAt == 0 {
		return Open
	}

	elapsed := time.Duration(nowMillis()-openedAt) * time.Millisecond
	if elapsed >= b.config.CooldownDuration {
		return HalfOpen
	}
	return Open
}

// AllowRequest returns nil when a call may proceed (Closed or HalfOpen), or
// an error describing the remaining cooldown when the circuit is Open.
func (b *Breaker) AllowRequest() error {
	switch b.State() {
	case Closed, HalfOpen:
		return nil
	default:
		openedAt := b.openedAtMillis.Load()
		elapsed := time.Duration(nowMillis()-openedAt) * time.Millisecond
		remaining := b.config.CooldownDuration - elapsed
		if remaining < 0 {
			remaining = 0
		}
		return fmt.Errorf(
			"llm circuit breaker is open due to %d consecutive failures; will retry in %d seconds (log entries manually with \"perth pane log\" in the meantime)",
			b.consecutiveFailures.Load(), int(remaining.Seconds()),
		)
	}
}

// RecordSuccess resets the failure counter and closes the circuit.
func (b *Breaker) RecordSuccess() {
	b.consecutiveFailures.Store(0)
	b.openedAtMillis.Store(0)
}

// RecordFailure increments the failure counter, stamping a fresh open time
// whenever the count is at or past the threshold. A failure recorded while
// HalfOpen (count already >= threshold) must re-stamp too, or State would
// keep computing elapsed against the stale timestamp and never leave
// HalfOpen.
func (b *Breaker) RecordFailure() {
	newCount := b.consecutiveFailures.Add(1)
	if newCount >= b.config.FailureThreshold {
		b.openedAtMillis.Store(nowMillis())
	}
}

// FailureCount returns the number of consecutive failures recorded.
func (b *Breaker) FailureCount() uint32 {
	return b.consecutiveFailures.Load()
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
