package wisp

import (
	"time"

	"github.com/JeremyLoy/config"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// WorldConfig is loaded from the environment. Every field has a usable
// default so a zero-config world runs.
type WorldConfig struct {
	WorldID             string `config:"WISP_WORLD_ID"`
	LogLevel            string `config:"WISP_LOG_LEVEL"`
	LogPretty           bool   `config:"WISP_LOG_PRETTY"`
	StatsdAddress       string `config:"WISP_STATSD_ADDRESS"`
	PoolWorkers         int    `config:"WISP_POOL_WORKERS"`
	FrameIntervalMillis int    `config:"WISP_FRAME_INTERVAL_MILLIS"`
	FixedIntervalMillis int    `config:"WISP_FIXED_INTERVAL_MILLIS"`
}

func defaultConfig() WorldConfig {
	return WorldConfig{
		WorldID:             uuid.New().String(),
		LogLevel:            "info",
		PoolWorkers:         4,
		FrameIntervalMillis: 16,
		FixedIntervalMillis: 20,
	}
}

// GetWorldConfig loads the world config from WISP_* environment variables,
// filling unset fields with defaults.
func GetWorldConfig() (WorldConfig, error) {
	cfg := defaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load world config from environment")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, eris.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	if cfg.PoolWorkers < 1 {
		cfg.PoolWorkers = 1
	}
	if cfg.FrameIntervalMillis < 1 {
		cfg.FrameIntervalMillis = 1
	}
	if cfg.FixedIntervalMillis < 1 {
		cfg.FixedIntervalMillis = 1
	}
	return cfg, nil
}

// FrameInterval returns the target duration of one frame.
func (c WorldConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMillis) * time.Millisecond
}

// FixedInterval returns the fixed timestep duration.
func (c WorldConfig) FixedInterval() time.Duration {
	return time.Duration(c.FixedIntervalMillis) * time.Millisecond
}
