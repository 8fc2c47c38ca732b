// Package config loads runtime configuration from AGENTBOARD_*
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr            string        `envconfig:"ADDR" default:"127.0.0.1:27420"`
	DBPath          string        `envconfig:"DB_PATH"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	HeartbeatTimeoutMs       int64 `envconfig:"HEARTBEAT_TIMEOUT_MS" default:"300000"`
	HeartbeatCheckIntervalMs int64 `envconfig:"HEARTBEAT_CHECK_INTERVAL_MS" default:"30000"`
	RetentionDays            int   `envconfig:"RETENTION_DAYS" default:"7"`
	RetentionSweepIntervalMs int64 `envconfig:"RETENTION_SWEEP_INTERVAL_MS" default:"3600000"`

	// OTelEndpoint empty leaves metrics export disabled.
	OTelEndpoint string `envconfig:"OTEL_ENDPOINT"`
	OTelInsecure bool   `envconfig:"OTEL_INSECURE" default:"true"`
}

// Load reads configuration from the environment. DBPath falls back to
// ~/.agentboard/sessions.db when unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("AGENTBOARD", &cfg); err != nil {
		return nil, err
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = filepath.Join(home, ".agentboard", "sessions.db")
	}
	return &cfg, nil
}

func (c *Config) HeartbeatTimeout() time.Duration {
	return time.Duration(c.HeartbeatTimeoutMs) * time.Millisecond
}

func (c *Config) HeartbeatCheckInterval() time.Duration {
	return time.Duration(c.HeartbeatCheckIntervalMs) * time.Millisecond
}

func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func (c *Config) RetentionSweepInterval() time.Duration {
	return time.Duration(c.RetentionSweepIntervalMs) * time.Millisecond
}
