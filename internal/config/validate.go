package config

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

func Validate(cfg *Config) error {
	var errs ValidationErrors

	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateRecorder(&cfg.Recorder)...)
	errs = append(errs, validateScheduler(&cfg.Scheduler)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDatabase(cfg *DatabaseConfig) ValidationErrors {
	var errs ValidationErrors

	if cfg.Path == "" {
		errs = append(errs, ValidationError{"database.path", "must not be empty"})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, ValidationError{"database.busy_timeout", "must not be negative"})
	}
	if cfg.MaxOpenConns < 1 {
		errs = append(errs, ValidationError{"database.max_open_conns", "must be at least 1"})
	}

	return errs
}

func validateRecorder(cfg *RecorderConfig) ValidationErrors {
	var errs ValidationErrors

	if cfg.Binary == "" {
		errs = append(errs, ValidationError{"recorder.binary", "must not be empty"})
	}
	if cfg.OutputDir == "" {
		errs = append(errs, ValidationError{"recorder.output_dir", "must not be empty"})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, ValidationError{"recorder.timeout", "must be positive"})
	}
	if cfg.Timeout > 24*time.Hour {
		errs = append(errs, ValidationError{"recorder.timeout", "must not exceed 24h"})
	}

	return errs
}

func validateScheduler(cfg *SchedulerConfig) ValidationErrors {
	var errs ValidationErrors

	if cfg.Timezone == "" {
		errs = append(errs, ValidationError{"scheduler.timezone", "must not be empty"})
	} else if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, ValidationError{"scheduler.timezone", fmt.Sprintf("unknown timezone %q", cfg.Timezone)})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	switch cfg.Level {
	case "debug", "info", "warn", "error", "":
	default:
		errs = append(errs, ValidationError{"logging.level", fmt.Sprintf("unknown level %q", cfg.Level)})
	}

	switch cfg.Format {
	case "console", "json", "":
	default:
		errs = append(errs, ValidationError{"logging.format", fmt.Sprintf("unknown format %q", cfg.Format)})
	}

	return errs
}

func validateMetrics(cfg *MetricsConfig) ValidationErrors {
	var errs ValidationErrors

	if cfg.Enabled && cfg.Addr == "" {
		errs = append(errs, ValidationError{"metrics.addr", "must not be empty when metrics are enabled"})
	}

	return errs
}
