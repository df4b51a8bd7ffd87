package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), *cfg)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EVENTBOARD_ADDR", ":9090")
	t.Setenv("EVENTBOARD_DB_PATH", "/tmp/events.db")
	t.Setenv("EVENTBOARD_SECURE_COOKIES", "true")
	t.Setenv("EVENTBOARD_SESSION_TTL", "2h")
	t.Setenv("EVENTBOARD_LOG_LEVEL", "debug")
	t.Setenv("EVENTBOARD_LOGIN_BURST", "10")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/events.db", cfg.DBPath)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10, cfg.LoginBurst)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EVENTBOARD_LOG_LEVEL", "verbose")

	_, err := loadConfig()
	assert.ErrorContains(t, err, "validating config")
}
