package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "dev", cfg.Server.Environment)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FLAGGATE_SERVER_PORT", ":9090")
	t.Setenv("FLAGGATE_CACHE_TTL", "30s")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}
