package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures environment driven configuration values for the scheduler.
type Config struct {
	SQLiteDSN       string
	LogLevel        string
	LogFormat       string
	PlenaryCap      int
	DefaultCapacity int
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// provided values and reporting every invalid entry at once.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:       "file:sessions.db?_foreign_keys=on",
		LogLevel:        "info",
		LogFormat:       "console",
		PlenaryCap:      0,
		DefaultCapacity: 0,
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("SCHEDULER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if level := strings.TrimSpace(os.Getenv("SCHEDULER_LOG_LEVEL")); level != "" {
		switch strings.ToLower(level) {
		case "trace", "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(level)
		default:
			invalid = append(invalid, "SCHEDULER_LOG_LEVEL")
		}
	}

	if format := strings.TrimSpace(os.Getenv("SCHEDULER_LOG_FORMAT")); format != "" {
		switch strings.ToLower(format) {
		case "console", "json":
			cfg.LogFormat = strings.ToLower(format)
		default:
			invalid = append(invalid, "SCHEDULER_LOG_FORMAT")
		}
	}

	if capValue := strings.TrimSpace(os.Getenv("SCHEDULER_PLENARY_CAP")); capValue != "" {
		n, err := strconv.Atoi(capValue)
		if err != nil || n < 0 {
			invalid = append(invalid, "SCHEDULER_PLENARY_CAP")
		} else {
			cfg.PlenaryCap = n
		}
	}

	if capacityValue := strings.TrimSpace(os.Getenv("SCHEDULER_DEFAULT_CAPACITY")); capacityValue != "" {
		n, err := strconv.Atoi(capacityValue)
		if err != nil || n < 0 {
			invalid = append(invalid, "SCHEDULER_DEFAULT_CAPACITY")
		} else {
			cfg.DefaultCapacity = n
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
