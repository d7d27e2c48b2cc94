package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
llm:
  base_url: https://api.example.com/v1
  model: test-model
channels:
  telegram:
    enabled: true
    token: tg-token
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.True(t, cfg.Channels.Telegram.Enabled)

	// Defaults survive where the file stays silent.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "coach.db", cfg.Database.Path)
	assert.True(t, cfg.Channels.WebChat.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "secret-key")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("DISCORD_TOKEN", "dc-token")

	path := writeConfig(t, `
llm:
  base_url: https://api.example.com/v1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.LLM.APIKey)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Channels.Discord.Enabled)
	assert.Equal(t, "dc-token", cfg.Channels.Discord.Token)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }, "port"},
		{"missing base url", func(c *Config) { c.LLM.BaseURL = "" }, "base_url"},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"telegram without token", func(c *Config) { c.Channels.Telegram.Enabled = true }, "telegram"},
		{"discord without token", func(c *Config) { c.Channels.Discord.Enabled = true }, "discord"},
		{"bad webchat port", func(c *Config) { c.Channels.WebChat.Port = 0 }, "webchat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.LLM.BaseURL = "https://api.example.com/v1"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
