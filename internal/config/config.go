// Package config loads and validates the engine configuration from
// YAML files, with environment variable interpolation and defaults.
package config

import (
	"time"
)

// Config is the root configuration for the planning engine.
type Config struct {
	Planner  PlannerConfig  `mapstructure:"planner" yaml:"planner" validate:"required"`
	Retry    RetryConfig    `mapstructure:"retry" yaml:"retry" validate:"required"`
	Recovery RecoveryConfig `mapstructure:"recovery" yaml:"recovery" validate:"required"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Tracing  TracingConfig  `mapstructure:"tracing" yaml:"tracing"`
}

// PlannerConfig tunes plan generation and scheduling.
type PlannerConfig struct {
	// MaxParallelTasks caps how many tasks a schedule assumes can run
	// at once.
	MaxParallelTasks int `mapstructure:"max_parallel_tasks" yaml:"max_parallel_tasks" validate:"min=1,max=64"`

	// DurationWarningCeiling is the plan duration in minutes above
	// which validation emits a warning.
	DurationWarningCeiling int `mapstructure:"duration_warning_ceiling" yaml:"duration_warning_ceiling" validate:"min=1"`
}

// RetryConfig tunes the retry manager defaults.
type RetryConfig struct {
	MaxAttempts             int           `mapstructure:"max_attempts" yaml:"max_attempts" validate:"min=0,max=20"`
	Strategy                string        `mapstructure:"strategy" yaml:"strategy" validate:"oneof=FIXED LINEAR EXPONENTIAL FIBONACCI"`
	BaseDelay               time.Duration `mapstructure:"base_delay" yaml:"base_delay" validate:"min=1ms"`
	MaxDelay                time.Duration `mapstructure:"max_delay" yaml:"max_delay" validate:"min=1ms"`
	CircuitBreakerThreshold int           `mapstructure:"circuit_breaker_threshold" yaml:"circuit_breaker_threshold" validate:"min=1,max=100"`
	OpenTimeout             time.Duration `mapstructure:"open_timeout" yaml:"open_timeout" validate:"min=1s"`
}

// RecoveryConfig tunes error handling and checkpointing.
type RecoveryConfig struct {
	// CheckpointCapacity bounds the checkpoint ring buffer.
	CheckpointCapacity int `mapstructure:"checkpoint_capacity" yaml:"checkpoint_capacity" validate:"min=1,max=1000"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=json text"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
}
