package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "EVENTBOARD_"

// Config is populated from EVENTBOARD_* environment variables, e.g.
// EVENTBOARD_DB_PATH -> db_path.
type Config struct {
	Addr          string        `koanf:"addr" validate:"required"`
	DBPath        string        `koanf:"db_path" validate:"required"`
	SecureCookies bool          `koanf:"secure_cookies"`
	SessionTTL    time.Duration `koanf:"session_ttl" validate:"gt=0"`
	LogLevel      string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat     string        `koanf:"log_format" validate:"oneof=console json"`
	LogFile       string        `koanf:"log_file"`
	LoginRate     float64       `koanf:"login_rate" validate:"gt=0"`
	LoginBurst    int           `koanf:"login_burst" validate:"gt=0"`
}

func defaultConfig() Config {
	return Config{
		Addr:       ":8080",
		DBPath:     "eventboard.db",
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",
		LogFormat:  "console",
		LoginRate:  1,
		LoginBurst: 5,
	}
}

// loadConfig reads an optional .env file, then overlays the environment on
// top of the defaults.
func loadConfig() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	k := koanf.New(".")
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
