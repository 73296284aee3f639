package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Redis.MaxRetries)
	assert.Equal(t, "dojo_smash", cfg.Mongo.Database)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionDuration)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "UTC", cfg.Server.Timezone)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := []byte(`
server:
  port: 9000
  read_timeout: 5s
storage:
  type: redis
redis:
  url: redis://cache:6379/1
auth:
  admin_key: pendejo
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("DOJO_REDIS_POOL_SIZE", "42")
	t.Setenv("DOJO_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, 42, cfg.Redis.PoolSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "pendejo", cfg.Auth.AdminKey)
}

func TestPortEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "10000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.Server.Port)

	t.Setenv("DOJO_SERVER_PORT", "8080")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port, "explicit override wins over PORT")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"storage", func(c *Config) { c.Storage.Type = "postgres" }},
		{"format", func(c *Config) { c.Log.Format = "xml" }},
		{"level", func(c *Config) { c.Log.Level = "loud" }},
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"timezone", func(c *Config) { c.Server.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Server:  ServerConfig{Port: 3001},
				Log:     LogConfig{Level: "info", Format: "json"},
				Storage: StorageConfig{Type: "memory"},
			}
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestServerLocation(t *testing.T) {
	loc, err := ServerConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = ServerConfig{Timezone: "America/Mexico_City"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())

	_, err = ServerConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}
