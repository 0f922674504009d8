package backoff

import (
	"math"
	"time"
)

// Strategy computes reconnection timing, decoupled from any specific
// connection so manager-level and connection-level retry policies can differ.
type Strategy interface {
	// NextDelay returns the wait before attempt n (0-based).
	NextDelay(attempt int) time.Duration

	// ShouldStop reports whether retrying should stop at attempt n.
	ShouldStop(attempt int) bool

	// Reset clears any internal counters. Called after a successful
	// reconnection so the next failure starts the curve from zero.
	Reset()
}

// Exponential grows the delay by a constant factor per attempt, capped at Max.
type Exponential struct {
	Base        time.Duration
	Factor      float64
	Max         time.Duration
	MaxAttempts int
}

// NewExponential returns an exponential strategy with the common defaults:
// 1s base, 1.5x growth, 30s cap, 10 attempts.
func NewExponential() *Exponential {
	return &Exponential{
		Base:        time.Second,
		Factor:      1.5,
		Max:         30 * time.Second,
		MaxAttempts: 10,
	}
}

// NextDelay returns min(Base * Factor^attempt, Max).
func (e *Exponential) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(e.Base) * math.Pow(e.Factor, float64(attempt))
	if d > float64(e.Max) {
		return e.Max
	}
	return time.Duration(d)
}

// ShouldStop reports true once attempt reaches MaxAttempts.
func (e *Exponential) ShouldStop(attempt int) bool {
	return attempt >= e.MaxAttempts
}

// Reset is a no-op; the exponential strategy keeps no internal state.
func (e *Exponential) Reset() {}

// Linear grows the delay by a constant increment per attempt, capped at Max.
type Linear struct {
	Base        time.Duration
	Increment   time.Duration
	Max         time.Duration
	MaxAttempts int
}

// NewLinear returns a linear strategy: 1s base, 1s increment, 30s cap,
// 10 attempts.
func NewLinear() *Linear {
	return &Linear{
		Base:        time.Second,
		Increment:   time.Second,
		Max:         30 * time.Second,
		MaxAttempts: 10,
	}
}

// NextDelay returns min(Base + Increment*attempt, Max).
func (l *Linear) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := l.Base + l.Increment*time.Duration(attempt)
	if d > l.Max {
		return l.Max
	}
	return d
}

// ShouldStop reports true once attempt reaches MaxAttempts.
func (l *Linear) ShouldStop(attempt int) bool {
	return attempt >= l.MaxAttempts
}

// Reset is a no-op; the linear strategy keeps no internal state.
func (l *Linear) Reset() {}
