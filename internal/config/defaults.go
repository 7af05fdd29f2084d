package config

import "time"

// Default configuration values.
const (
	// Database defaults.
	DefaultDBPath       = "airwave.db"
	DefaultCacheSize    = -64000 // 64MB
	DefaultBusyTimeout  = 5 * time.Second
	DefaultMaxOpenConns = 1 // SQLite works best with single writer
	DefaultMaxIdleConns = 1

	// Recorder defaults.
	DefaultRecorderBinary  = "myradiko"
	DefaultOutputDir       = "output/radio"
	DefaultRecorderTimeout = 2 * time.Hour

	// Scheduler defaults.
	DefaultTimezone = "Asia/Tokyo"

	// Catalog defaults.
	DefaultWatchDebounce = 2 * time.Second

	// Logging defaults.
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	// Metrics defaults.
	DefaultMetricsAddr = "127.0.0.1:9190"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         DefaultDBPath,
			WALMode:      true,
			CacheSize:    DefaultCacheSize,
			BusyTimeout:  DefaultBusyTimeout,
			ForeignKeys:  true,
			MaxOpenConns: DefaultMaxOpenConns,
			MaxIdleConns: DefaultMaxIdleConns,
		},
		Recorder: RecorderConfig{
			Binary:    DefaultRecorderBinary,
			OutputDir: DefaultOutputDir,
			Timeout:   DefaultRecorderTimeout,
		},
		Scheduler: SchedulerConfig{
			Timezone: DefaultTimezone,
		},
		Catalog: CatalogConfig{
			Watch:         false,
			WatchDebounce: DefaultWatchDebounce,
		},
		Logging: LoggingConfig{
			Level:     DefaultLogLevel,
			Format:    DefaultLogFormat,
			Timestamp: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
	}
}
