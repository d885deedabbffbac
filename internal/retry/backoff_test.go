package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func backoffConfig(strategy BackoffStrategy) Config {
	return Config{
		Strategy:  strategy,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  10 * time.Second,
	}
}

// withinJitter checks the delay is inside [expected-10%, expected+10%].
func withinJitter(t *testing.T, expected, got time.Duration) {
	t.Helper()
	low := time.Duration(float64(expected) * (1 - jitterFraction))
	high := time.Duration(float64(expected) * (1 + jitterFraction))
	assert.GreaterOrEqual(t, got, low)
	assert.LessOrEqual(t, got, high)
}

func TestGetBackoffDelayFixed(t *testing.T) {
	cfg := backoffConfig(BackoffFixed)
	for attempt := 1; attempt <= 5; attempt++ {
		withinJitter(t, cfg.BaseDelay, GetBackoffDelay(attempt, BackoffFixed, cfg))
	}
}

func TestGetBackoffDelayLinear(t *testing.T) {
	cfg := backoffConfig(BackoffLinear)
	for attempt := 1; attempt <= 5; attempt++ {
		withinJitter(t, cfg.BaseDelay*time.Duration(attempt), GetBackoffDelay(attempt, BackoffLinear, cfg))
	}
}

func TestGetBackoffDelayExponential(t *testing.T) {
	cfg := backoffConfig(BackoffExponential)
	withinJitter(t, 100*time.Millisecond, GetBackoffDelay(1, BackoffExponential, cfg))
	withinJitter(t, 200*time.Millisecond, GetBackoffDelay(2, BackoffExponential, cfg))
	withinJitter(t, 400*time.Millisecond, GetBackoffDelay(3, BackoffExponential, cfg))
	withinJitter(t, 800*time.Millisecond, GetBackoffDelay(4, BackoffExponential, cfg))
}

func TestGetBackoffDelayFibonacci(t *testing.T) {
	cfg := backoffConfig(BackoffFibonacci)
	expected := []time.Duration{100, 100, 200, 300, 500, 800}
	for i, want := range expected {
		withinJitter(t, want*time.Millisecond, GetBackoffDelay(i+1, BackoffFibonacci, cfg))
	}
}

func TestGetBackoffDelayClampedToMaxDelay(t *testing.T) {
	cfg := Config{
		Strategy:  BackoffExponential,
		BaseDelay: time.Second,
		MaxDelay:  5 * time.Second,
	}

	for _, attempt := range []int{10, 20, 40, 63} {
		got := GetBackoffDelay(attempt, BackoffExponential, cfg)
		high := time.Duration(float64(cfg.MaxDelay) * (1 + jitterFraction))
		assert.LessOrEqual(t, got, high, "attempt %d", attempt)
		assert.GreaterOrEqual(t, got, time.Duration(0))
	}
}

func TestGetBackoffDelayWideShiftLandsAtCeiling(t *testing.T) {
	cfg := Config{
		Strategy:  BackoffExponential,
		BaseDelay: 100 * time.Millisecond,
		MaxDelay:  30 * time.Second,
	}

	// Shifts this wide wrap, sometimes to a small positive value; the
	// delay must still land at the ceiling.
	for _, attempt := range []int{58, 64, 100, 1 << 20} {
		withinJitter(t, cfg.MaxDelay, GetBackoffDelay(attempt, BackoffExponential, cfg))
	}
}

func TestGetBackoffDelayUnknownStrategyFallsBack(t *testing.T) {
	cfg := backoffConfig(BackoffStrategy("STAIRCASE"))
	withinJitter(t, 400*time.Millisecond, GetBackoffDelay(3, cfg.Strategy, cfg))
}

func TestGetBackoffDelayNeverNegative(t *testing.T) {
	cfg := Config{Strategy: BackoffFixed, BaseDelay: 0, MaxDelay: 0}
	for attempt := 1; attempt <= 3; attempt++ {
		assert.GreaterOrEqual(t, GetBackoffDelay(attempt, BackoffFixed, cfg), time.Duration(0))
	}
}

func TestFibonacciSeries(t *testing.T) {
	want := []int64{1, 1, 2, 3, 5, 8, 13, 21}
	for i, w := range want {
		assert.Equal(t, w, fibonacci(i+1))
	}
}

func TestBackoffStrategyIsValid(t *testing.T) {
	for _, s := range []BackoffStrategy{BackoffFixed, BackoffLinear, BackoffExponential, BackoffFibonacci} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, BackoffStrategy("STAIRCASE").IsValid())
}
