package p2p

import (
	"errors"
	"time"

	"github.com/newsapps/p2p-go/internal/backoff"
)

// RetryPolicy decides whether a failed attempt is re-run and how long to
// wait first. The policy only ever sees classified errors; it re-attempts
// members of the retryable subtree (Forbidden, Timeout) and passes everything
// else through unchanged. Retry decisions are uniform by error kind, not by
// HTTP verb — the service's documented behavior, preserved deliberately.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) (time.Duration, bool)
}

// BackoffStrategy selects the delay curve for DefaultRetryPolicy.
type BackoffStrategy int

const (
	// ExponentialJitter doubles the delay each attempt with uniform jitter.
	ExponentialJitter BackoffStrategy = iota
	// DecorrelatedJitter draws each delay from a widening uniform range.
	DecorrelatedJitter
)

// DefaultRetryPolicy retries retryable error kinds up to a fixed budget with
// increasing delays.
type DefaultRetryPolicy struct {
	maxRetries int
	calc       *backoff.Calculator
}

// NewDefaultRetryPolicy builds the standard policy.
func NewDefaultRetryPolicy(maxRetries int, initial, max time.Duration, multiplier, jitter float64) *DefaultRetryPolicy {
	return NewDefaultRetryPolicyWithStrategy(maxRetries, initial, max, multiplier, jitter, ExponentialJitter)
}

// NewDefaultRetryPolicyWithStrategy builds the standard policy with an
// explicit backoff curve.
func NewDefaultRetryPolicyWithStrategy(maxRetries int, initial, max time.Duration, multiplier, jitter float64, strategy BackoffStrategy) *DefaultRetryPolicy {
	var s backoff.Strategy
	switch strategy {
	case DecorrelatedJitter:
		s = backoff.DecorrelatedJitter{}
	default:
		s = backoff.ExponentialJitter{}
	}
	return &DefaultRetryPolicy{
		maxRetries: maxRetries,
		calc:       backoff.NewCalculator(s, initial, max, multiplier, jitter),
	}
}

// ShouldRetry implements RetryPolicy.
func (p *DefaultRetryPolicy) ShouldRetry(err error, attempt int) (time.Duration, bool) {
	if attempt >= p.maxRetries {
		return 0, false
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Retryable() {
		return 0, false
	}
	return p.calc.Delay(attempt), true
}

// MaxRetries reports the retry budget.
func (p *DefaultRetryPolicy) MaxRetries() int { return p.maxRetries }
