package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_CAPACITY", "")
	t.Setenv("GEOCODER_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "default-secret-change-in-production", cfg.JWTSecret)
	assert.Equal(t, 20, cfg.RateLimit.Capacity)
	assert.Equal(t, 5*time.Second, cfg.GeocoderTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("GEOCODER_TIMEOUT", "750ms")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, 750*time.Millisecond, cfg.GeocoderTimeout)
	assert.Equal(t, 0, cfg.RedisDB)
}
