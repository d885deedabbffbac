package retry

import (
	"math"
	"math/rand"
	"time"
)

// BackoffStrategy selects how the delay grows across attempts.
type BackoffStrategy string

const (
	BackoffFixed       BackoffStrategy = "FIXED"
	BackoffLinear      BackoffStrategy = "LINEAR"
	BackoffExponential BackoffStrategy = "EXPONENTIAL"
	BackoffFibonacci   BackoffStrategy = "FIBONACCI"
)

// String returns the string representation of the strategy.
func (s BackoffStrategy) String() string {
	return string(s)
}

// IsValid checks whether the strategy is a known value.
func (s BackoffStrategy) IsValid() bool {
	switch s {
	case BackoffFixed, BackoffLinear, BackoffExponential, BackoffFibonacci:
		return true
	default:
		return false
	}
}

// jitterFraction bounds the random jitter to ±10% of the clamped delay.
const jitterFraction = 0.1

// GetBackoffDelay computes the wait before the next try. All schemes
// are seeded from BaseDelay, clamped to MaxDelay, then jittered by up
// to ±10%. The result is never negative. Attempt numbers start at 1;
// unknown strategies fall back to exponential.
func GetBackoffDelay(attempt int, strategy BackoffStrategy, cfg Config) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := cfg.BaseDelay
	var delay time.Duration
	switch strategy {
	case BackoffFixed:
		delay = base
	case BackoffLinear:
		delay = base * time.Duration(attempt)
	case BackoffFibonacci:
		delay = base * time.Duration(fibonacci(attempt))
	default:
		// Wide shifts wrap, sometimes to a small positive value, so the
		// exponent is checked before shifting rather than the result after.
		shift := uint(attempt - 1)
		if base > 0 && (shift > 62 || base > math.MaxInt64>>shift) {
			delay = cfg.MaxDelay
		} else {
			delay = base << shift
		}
	}

	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if delay < 0 {
		// Multiplication overflow on large attempts lands at the ceiling.
		delay = cfg.MaxDelay
	}

	jitter := time.Duration((rand.Float64()*2 - 1) * jitterFraction * float64(delay))
	delay += jitter
	if delay < 0 {
		delay = 0
	}
	return delay
}

// fibonacci returns fib(n) with fib(1)=fib(2)=1.
func fibonacci(n int) int64 {
	if n <= 2 {
		return 1
	}
	var a, b int64 = 1, 1
	for i := 3; i <= n; i++ {
		a, b = b, a+b
	}
	return b
}
