package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.StoreDriver, "auto resolves to sqlite")
	assert.Equal(t, 3, cfg.BreakerFailureThreshold)
	assert.Equal(t, 8*time.Second, cfg.BreakerReset())
	assert.False(t, cfg.NudgesEnabled)
	assert.Equal(t, "0 8 * * *", cfg.MorningNudgeCron)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COACH_HTTP_PORT", "9090")
	t.Setenv("COACH_STORE_DRIVER", "redis")
	t.Setenv("COACH_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("COACH_BREAKER_RESET_MS", "2000")
	t.Setenv("COACH_NUDGES_ENABLED", "true")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.Equal(t, "redis.internal:6379", cfg.RedisAddr)
	assert.Equal(t, 2*time.Second, cfg.BreakerReset())
	assert.True(t, cfg.NudgesEnabled)
}

func TestHTTPDriverRequiresURL(t *testing.T) {
	t.Setenv("COACH_STORE_DRIVER", "http")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COACH_STORE_URL")

	t.Setenv("COACH_STORE_URL", "https://memory.example.com")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.StoreDriver)
}

func TestUnsupportedDriverRejected(t *testing.T) {
	t.Setenv("COACH_STORE_DRIVER", "dynamo")
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported STORE_DRIVER")
}

func TestBreakerSettingsValidated(t *testing.T) {
	t.Setenv("COACH_BREAKER_FAILURE_THRESHOLD", "0")
	_, err := New()
	assert.Error(t, err)
}
