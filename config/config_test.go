package config

import (
	"testing"

	"fortio.org/assert"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "sqlite", cfg.OfflineDriver)
	assert.Equal(t, "redis", cfg.OnlineBackend)
	assert.Equal(t, "registry/feature_views.yaml", cfg.RegistryPath)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("FEATURE_STORE_OFFLINE_DRIVER", "postgres")
	t.Setenv("FEATURE_STORE_ONLINE_BACKEND", "memory")
	t.Setenv("FEATURE_STORE_REDIS_DB", "3")

	cfg, err := Parse()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "postgres", cfg.OfflineDriver)
	assert.Equal(t, "memory", cfg.OnlineBackend)
	assert.Equal(t, 3, cfg.RedisDB)
}
