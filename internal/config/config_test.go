package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "STORAGE_BACKEND", "DATABASE_DSN", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "STORAGE_KEY_PREFIX", "SEED_DONORS_CSV", "INITIAL_INVENTORY_UNITS",
	"SHUTDOWN_TIMEOUT", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "bloodflow.db", cfg.DatabaseDSN)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Nil(t, cfg.InitialUnits)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("STORAGE_KEY_PREFIX", "bank1:")
	t.Setenv("INITIAL_INVENTORY_UNITS", "12")
	t.Setenv("SHUTDOWN_TIMEOUT", "10s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "", cfg.DatabaseDSN)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "bank1:", cfg.KeyPrefix)
	require.NotNil(t, cfg.InitialUnits)
	assert.Equal(t, int64(12), *cfg.InitialUnits)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("STORAGE_BACKEND", "mongo")
	t.Setenv("REDIS_DB", "-1")
	t.Setenv("INITIAL_INVENTORY_UNITS", "-4")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Nil(t, cfg.InitialUnits)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}
