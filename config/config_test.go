package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"STOCK_PORT", "STOCK_DB", "STOCK_REDIS_URL", "STOCK_SEED", "STOCK_CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "stock.db", cfg.DBPath)
	assert.Empty(t, cfg.RedisURL)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STOCK_PORT", "9090")
	t.Setenv("STOCK_DB", ":memory:")
	t.Setenv("STOCK_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("STOCK_SEED", "demo")
	t.Setenv("STOCK_CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
	assert.Equal(t, "demo", cfg.Seed)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_BadPortFallsBack(t *testing.T) {
	t.Setenv("STOCK_PORT", "eighty")
	assert.Equal(t, 8080, Load().Port)
}
