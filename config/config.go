// Package config loads process configuration from the environment. Backend
// selection for both stores happens once here, not per call.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config carries the process-wide settings. All variables use the
// FEATURE_STORE_ prefix, e.g. FEATURE_STORE_OFFLINE_DRIVER.
type Config struct {
	// Offline (historical) store: sqlite, postgres or mysql.
	OfflineDriver string `env:"OFFLINE_DRIVER" envDefault:"sqlite"`
	OfflineDSN    string `env:"OFFLINE_DSN" envDefault:"file:feature_store.db?_pragma=journal_mode(WAL)"`

	// Online store: redis or memory.
	OnlineBackend string `env:"ONLINE_BACKEND" envDefault:"redis"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RegistryPath string `env:"REGISTRY_PATH" envDefault:"registry/feature_views.yaml"`
}

// Parse reads the configuration from environment variables.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "FEATURE_STORE_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
