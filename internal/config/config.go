// Package config provides configuration management for airwave.
package config

import (
	"time"
)

// Config is the root configuration structure for airwave.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Recorder  RecorderConfig  `mapstructure:"recorder"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// DatabaseConfig holds database settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string `mapstructure:"path"`

	// Enable WAL mode (recommended)
	WALMode bool `mapstructure:"wal_mode"`

	// Cache size in KB (negative for KB, positive for pages)
	CacheSize int `mapstructure:"cache_size"`

	// Busy timeout in milliseconds
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`

	// Enable foreign keys
	ForeignKeys bool `mapstructure:"foreign_keys"`

	// Maximum open connections
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// Maximum idle connections
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// Connection max lifetime
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RecorderConfig holds settings for the external recorder binary.
type RecorderConfig struct {
	// Binary is the path to the recorder executable.
	Binary string `mapstructure:"binary"`

	// OutputDir is the directory the recorder writes artifacts into.
	// The artifact path derivation (catalog.ArtifactPath) is rooted here.
	OutputDir string `mapstructure:"output_dir"`

	// Timeout is the wall-clock ceiling for one recording process.
	Timeout time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig holds trigger scheduler settings.
type SchedulerConfig struct {
	// Timezone is the IANA timezone recurrence expressions are evaluated in.
	Timezone string `mapstructure:"timezone"`
}

// CatalogConfig holds catalog reconciliation settings.
type CatalogConfig struct {
	// Watch enables the fsnotify watcher on the recorder output directory.
	Watch bool `mapstructure:"watch"`

	// WatchDebounce coalesces bursts of file events for the same path.
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: debug, info, warn, error
	Level string `mapstructure:"level"`

	// Format: console or json
	Format string `mapstructure:"format"`

	// Include caller information
	Caller bool `mapstructure:"caller"`

	// Include timestamps
	Timestamp bool `mapstructure:"timestamp"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Enabled starts a /metrics listener when true.
	Enabled bool `mapstructure:"enabled"`

	// Addr is the listen address, e.g. "127.0.0.1:9190".
	Addr string `mapstructure:"addr"`
}
