// Package config loads application settings from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, with defaults for local development.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	StorePath string `env:"STORE_PATH" envDefault:"eventlog.db"`
	WebDir    string `env:"WEB_DIR" envDefault:"./web"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
