// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address. The control surface is meant
	// for processes on the same machine, so the default binds loopback only.
	Addr string `koanf:"addr"`

	// SnapshotPath locates the room snapshot file.
	SnapshotPath string `koanf:"snapshot_path"`

	// LockfilePaths overrides the candidate lockfile locations. Empty means
	// the platform defaults.
	LockfilePaths []string `koanf:"lockfile_paths"`

	// ReconnectDelayMS is the fixed pause between socket reconnect attempts.
	ReconnectDelayMS int `koanf:"reconnect_delay_ms"`

	// SweepIntervalS sets how often stale rooms are swept.
	SweepIntervalS int `koanf:"sweep_interval_s"`

	// StaleTTLMin is the age past which an untouched room is removed.
	StaleTTLMin int `koanf:"stale_ttl_min"`

	// QueueID selects the ranked queue for created lobbies.
	QueueID int `koanf:"queue_id"`

	// ObserverBuffer bounds each stream observer's message backlog.
	ObserverBuffer int `koanf:"observer_buffer"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             "127.0.0.1:8553",
		SnapshotPath:     "flexroom-rooms.json",
		ReconnectDelayMS: 5000,
		SweepIntervalS:   60,
		StaleTTLMin:      30,
		QueueID:          440,
		ObserverBuffer:   16,
	}
}
