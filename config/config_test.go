package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("CACHE_MAX_AGE_DAYS", "")
	t.Setenv("ROUTE_TARGET", "")
	t.Setenv("MAX_CONCURRENCY", "")

	cfg := Load()
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, 30, cfg.CacheMaxAgeDays)
	assert.Equal(t, 30*24*time.Hour, cfg.CacheMaxAge())
	assert.Equal(t, "google", cfg.RouteTarget)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, "https://api.mapbox.com", cfg.MapboxAPIURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATA_SOURCE", "fixture")
	t.Setenv("CACHE_MAX_AGE_DAYS", "7")
	t.Setenv("MAX_CONCURRENCY", "not-a-number")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "6543")

	cfg := Load()
	assert.Equal(t, "fixture", cfg.DataSource)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheMaxAge())
	assert.Equal(t, 8, cfg.MaxConcurrency, "bad ints fall back to the default")
	assert.Contains(t, cfg.DSN(), "host=db port=6543")
}
