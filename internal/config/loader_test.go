package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SCHEDULER_SQLITE_DSN",
		"SCHEDULER_LOG_LEVEL",
		"SCHEDULER_LOG_FORMAT",
		"SCHEDULER_PLENARY_CAP",
		"SCHEDULER_DEFAULT_CAPACITY",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file:sessions.db?_foreign_keys=on", cfg.SQLiteDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Zero(t, cfg.PlenaryCap)
	assert.Zero(t, cfg.DefaultCapacity)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULER_SQLITE_DSN", "file:other.db")
	t.Setenv("SCHEDULER_LOG_LEVEL", "DEBUG")
	t.Setenv("SCHEDULER_LOG_FORMAT", "JSON")
	t.Setenv("SCHEDULER_PLENARY_CAP", "3")
	t.Setenv("SCHEDULER_DEFAULT_CAPACITY", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file:other.db", cfg.SQLiteDSN)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3, cfg.PlenaryCap)
	assert.Equal(t, 25, cfg.DefaultCapacity)
}

func TestLoadReportsEveryInvalidVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULER_LOG_LEVEL", "verbose")
	t.Setenv("SCHEDULER_PLENARY_CAP", "-1")
	t.Setenv("SCHEDULER_DEFAULT_CAPACITY", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULER_LOG_LEVEL")
	assert.Contains(t, err.Error(), "SCHEDULER_PLENARY_CAP")
	assert.Contains(t, err.Error(), "SCHEDULER_DEFAULT_CAPACITY")
}

func TestLoadRejectsBadFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULER_LOG_FORMAT", "xml")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULER_LOG_FORMAT")
}
