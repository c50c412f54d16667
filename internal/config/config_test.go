package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"HOST":                      "127.0.0.1",
		"PORT":                      "9090",
		"STORAGE_TYPE":              "Redis",
		"REDIS_URL":                 "redis://localhost:6379/0",
		"LOBBY_TTL":                 "2h",
		"LOG_LEVEL":                 "debug",
		"LOBBY_IDLE_TIMEOUT":        "10m",
		"JANITOR_INTERVAL":          "30s",
		"LEAVE_ON_DISCONNECT_GRACE": "15s",
		"ALLOWED_ORIGINS":           "https://a.example, https://b.example ,",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, StorageRedis, cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 2*time.Hour, cfg.LobbyTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.JanitorInterval)
	assert.Equal(t, 15*time.Second, cfg.LeaveGrace)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestFromLookup_ReportsEveryBadValue(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{
		"PORT":             "eighty",
		"JANITOR_INTERVAL": "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "JANITOR_INTERVAL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{name: "redis needs url", mutate: func(c *Config) { c.StorageType = StorageRedis }, wantErr: "REDIS_URL"},
		{name: "unknown storage", mutate: func(c *Config) { c.StorageType = "postgres" }, wantErr: "STORAGE_TYPE"},
		{name: "port range", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "PORT"},
		{name: "idle timeout", mutate: func(c *Config) { c.IdleTimeout = 0 }, wantErr: "LOBBY_IDLE_TIMEOUT"},
		{name: "negative grace", mutate: func(c *Config) { c.LeaveGrace = -time.Second }, wantErr: "LEAVE_ON_DISCONNECT_GRACE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=7070\nLOG_LEVEL=warn\n"), 0o600))

	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("PORT"))
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=7070\n"), 0o600))

	t.Setenv("PORT", "6060")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Port)
}

func TestLoad_MissingFileIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
