package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Telegram.BotToken = "123456:test-token"
	cfg.AI.APIKey = "test-key"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 8080, cfg.Health.Port)
	assert.Equal(t, 20, cfg.Session.MaxHistory)
	assert.Equal(t, 60, cfg.Telegram.UpdateTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_MissingBotToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.BotToken = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot token")
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestValidate_InvalidProvider(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Provider = "cohere"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AI provider")
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Health.Port = 0

	assert.Error(t, cfg.Validate())

	cfg.Health.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestValidate_OddMaxHistory(t *testing.T) {
	cfg := validConfig()
	cfg.Session.MaxHistory = 15

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "even")
}

func TestString_IsJSON(t *testing.T) {
	out := validConfig().String()
	assert.Contains(t, out, `"provider": "gemini"`)
}
