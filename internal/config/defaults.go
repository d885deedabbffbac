package config

import "time"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Planner: PlannerConfig{
			MaxParallelTasks:       3,
			DurationWarningCeiling: 960,
		},
		Retry: RetryConfig{
			MaxAttempts:             3,
			Strategy:                "EXPONENTIAL",
			BaseDelay:               100 * time.Millisecond,
			MaxDelay:                30 * time.Second,
			CircuitBreakerThreshold: 5,
			OpenTimeout:             30 * time.Second,
		},
		Recovery: RecoveryConfig{
			CheckpointCapacity: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:  false,
			Endpoint: "",
		},
	}
}
