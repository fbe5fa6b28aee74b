package resilience

import (
	"math"
	"time"
)

// Config drives both the retry loop and the per-operation circuit breaker.
type Config struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	RetryMultiplier     float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// DefaultConfig is the answer generation policy: one provider call per chat turn, and a
// breaker that opens once 3 of the last 5 calls failed and probes again after 30s.
func DefaultConfig() Config {
	return Config{
		RetryMaxAttempts:    1,
		RetryInitialBackoff: 200 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Second,
		RetryMultiplier:     2.0,

		BreakerEnabled:          true,
		BreakerMinRequests:      5,
		BreakerFailureRatio:     0.6,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}
}

// ForGeneration overrides the attempt count and breaker switch of DefaultConfig.
// A non-positive maxAttempts keeps the single attempt.
func ForGeneration(maxAttempts int, breakerEnabled bool) Config {
	cfg := DefaultConfig()
	if maxAttempts > 0 {
		cfg.RetryMaxAttempts = maxAttempts
	}
	cfg.BreakerEnabled = breakerEnabled
	return cfg
}

// backoff is the wait after the given failed attempt, counted from 1.
func (c Config) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	wait := float64(c.RetryInitialBackoff) * math.Pow(c.RetryMultiplier, float64(attempt-1))
	if wait >= float64(c.RetryMaxBackoff) {
		return c.RetryMaxBackoff
	}
	return time.Duration(wait)
}

// normalize replaces unusable values with the defaults so the executor never divides
// by zero, sleeps forever or retries without bound.
func (c Config) normalize() Config {
	def := DefaultConfig()
	out := c

	out.RetryMaxAttempts = positiveOr(out.RetryMaxAttempts, def.RetryMaxAttempts)
	out.RetryInitialBackoff = positiveOr(out.RetryInitialBackoff, def.RetryInitialBackoff)
	out.RetryMaxBackoff = max(positiveOr(out.RetryMaxBackoff, def.RetryMaxBackoff), out.RetryInitialBackoff)
	if out.RetryMultiplier < 1.0 {
		out.RetryMultiplier = def.RetryMultiplier
	}

	out.BreakerMinRequests = positiveOr(out.BreakerMinRequests, def.BreakerMinRequests)
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	out.BreakerOpenTimeout = positiveOr(out.BreakerOpenTimeout, def.BreakerOpenTimeout)
	out.BreakerHalfOpenMaxCalls = positiveOr(out.BreakerHalfOpenMaxCalls, def.BreakerHalfOpenMaxCalls)
	return out
}

func positiveOr[T int | uint32 | time.Duration](value, fallback T) T {
	if value <= 0 {
		return fallback
	}
	return value
}
