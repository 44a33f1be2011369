package wisp

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := GetWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.PoolWorkers)
	assert.Equal(t, 16, cfg.FrameIntervalMillis)
	assert.Equal(t, 20, cfg.FixedIntervalMillis)
	assert.Assert(t, cfg.WorldID != "")
}

func TestConfigReadsEnvironment(t *testing.T) {
	t.Setenv("WISP_WORLD_ID", "arena-7")
	t.Setenv("WISP_LOG_LEVEL", "debug")
	t.Setenv("WISP_POOL_WORKERS", "8")
	t.Setenv("WISP_FIXED_INTERVAL_MILLIS", "10")

	cfg, err := GetWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, "arena-7", cfg.WorldID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.PoolWorkers)
	assert.Equal(t, 10, cfg.FixedIntervalMillis)
}

func TestConfigRejectsBadLogLevel(t *testing.T) {
	t.Setenv("WISP_LOG_LEVEL", "shouting")
	_, err := GetWorldConfig()
	assert.Assert(t, err != nil)
}

func TestConfigClampsNonsenseValues(t *testing.T) {
	t.Setenv("WISP_POOL_WORKERS", "-3")
	t.Setenv("WISP_FRAME_INTERVAL_MILLIS", "0")

	cfg, err := GetWorldConfig()
	assert.NilError(t, err)
	assert.Equal(t, 1, cfg.PoolWorkers)
	assert.Equal(t, 1, cfg.FrameIntervalMillis)
}
