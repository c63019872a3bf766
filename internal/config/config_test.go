package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.False(t, cfg.Migrate)
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, time.Hour, cfg.MySQL.ConnMaxLifetime)
	assert.Equal(t, "error", cfg.MySQL.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "ledger.events", cfg.EventsChannel)
	assert.Equal(t, 100, cfg.RateRPS)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("STORAGE_DRIVER", "mysql")
	t.Setenv("MYSQL_PORT", "3307")
	t.Setenv("APP_MIGRATE", "true")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "mysql", cfg.StorageDriver)
	assert.Equal(t, 3307, cfg.MySQL.Port)
	assert.True(t, cfg.Migrate)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "info", cfg.MySQL.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_PORT=9090\nSTORAGE_DRIVER=memory\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "memory", cfg.StorageDriver)
}

func TestLoad_UnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORAGE_DRIVER")
}
