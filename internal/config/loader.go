package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FLEXROOM_CONFIG is set
//  3. env (prefix FLEXROOM_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("FLEXROOM_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Map env keys like FLEXROOM_QUEUE_ID -> queue_id to match the koanf
	// tags on the struct.
	envProvider := env.Provider("FLEXROOM_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "flexroom_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SnapshotPath == "":
		return fmt.Errorf("%w: snapshot_path must not be empty", ErrInvalidConfig)
	case c.ReconnectDelayMS <= 0:
		return fmt.Errorf("%w: reconnect_delay_ms must be positive", ErrInvalidConfig)
	case c.SweepIntervalS <= 0:
		return fmt.Errorf("%w: sweep_interval_s must be positive", ErrInvalidConfig)
	case c.StaleTTLMin <= 0:
		return fmt.Errorf("%w: stale_ttl_min must be positive", ErrInvalidConfig)
	case c.QueueID <= 0:
		return fmt.Errorf("%w: queue_id must be positive", ErrInvalidConfig)
	}
	return nil
}
