package backoff

import "time"

// Calculator binds a Strategy to the retry policy's tunables so callers hold
// a single value instead of five parameters.
type Calculator struct {
	strategy   Strategy
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
}

// NewCalculator creates a calculator for the given strategy and tunables.
func NewCalculator(strategy Strategy, initial, max time.Duration, multiplier, jitter float64) *Calculator {
	return &Calculator{
		strategy:   strategy,
		initial:    initial,
		max:        max,
		multiplier: multiplier,
		jitter:     jitter,
	}
}

// Delay returns the backoff duration before the given attempt.
func (c *Calculator) Delay(attempt int) time.Duration {
	return c.strategy.Calculate(attempt, c.initial, c.max, c.multiplier, c.jitter)
}
