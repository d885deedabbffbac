package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conductor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(DefaultConfig()))
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfigFile(t, `
planner:
  max_parallel_tasks: 5
  duration_warning_ceiling: 480
retry:
  max_attempts: 4
  strategy: FIBONACCI
  base_delay: 250ms
  max_delay: 10s
  circuit_breaker_threshold: 3
  open_timeout: 15s
recovery:
  checkpoint_capacity: 50
logging:
  level: debug
  format: text
tracing:
  enabled: true
  endpoint: http://localhost:4318
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Planner.MaxParallelTasks)
	assert.Equal(t, 480, cfg.Planner.DurationWarningCeiling)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, "FIBONACCI", cfg.Retry.Strategy)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 3, cfg.Retry.CircuitBreakerThreshold)
	assert.Equal(t, 50, cfg.Recovery.CheckpointCapacity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadPartialConfigInheritsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
planner:
  max_parallel_tasks: 8
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 8, cfg.Planner.MaxParallelTasks)
	assert.Equal(t, def.Planner.DurationWarningCeiling, cfg.Planner.DurationWarningCeiling)
	assert.Equal(t, def.Retry.Strategy, cfg.Retry.Strategy)
	assert.Equal(t, def.Recovery.CheckpointCapacity, cfg.Recovery.CheckpointCapacity)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := NewLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := NewLoader(NewValidator()).LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadInvalidStrategyFails(t *testing.T) {
	path := writeConfigFile(t, `
retry:
  strategy: STAIRCASE
`)

	_, err := NewLoader(NewValidator()).Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry.strategy")
}

func TestLoadOutOfRangeValuesFail(t *testing.T) {
	path := writeConfigFile(t, `
planner:
  max_parallel_tasks: 500
`)

	_, err := NewLoader(NewValidator()).Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner.max_parallel_tasks")
}

func TestValidateMaxDelayBelowBaseDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Retry.BaseDelay = 5 * time.Second
	cfg.Retry.MaxDelay = time.Second

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry.max_delay")
}

func TestValidateNilConfig(t *testing.T) {
	assert.Error(t, NewValidator().Validate(nil))
}

func TestLoadInterpolatesEnvVars(t *testing.T) {
	t.Setenv("CONDUCTOR_LOG_LEVEL", "warn")

	path := writeConfigFile(t, `
logging:
  level: ${CONDUCTOR_LOG_LEVEL}
`)

	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadLeavesUnresolvedEnvVars(t *testing.T) {
	path := writeConfigFile(t, `
tracing:
  endpoint: ${CONDUCTOR_UNSET_ENDPOINT_VALUE}
`)

	_, err := NewLoader(NewValidator()).Load(path)
	// An unresolved reference is not a URL, so validation rejects it.
	assert.Error(t, err)
}
