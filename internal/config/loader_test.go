package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 8080, cfg.Health.Port)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mira.json")
	content := `{
		"telegram": {"bot_token": "file-token"},
		"ai": {"provider": "gemini", "api_key": "file-key", "model": "gemini-2.0-flash"},
		"health": {"port": 9090}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Telegram.BotToken)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, 9090, cfg.Health.Port)
	// Defaults survive for fields the file omits
	assert.Equal(t, 20, cfg.Session.MaxHistory)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PORT", "9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, 9999, cfg.Health.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mira.json")
	content := `{"telegram": {"bot_token": "file-token"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
}

func TestLoad_InvalidPortEnvIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Health.Port)
}

func TestGetConfigPath(t *testing.T) {
	loader := NewLoader("/tmp/custom.json")
	assert.Equal(t, "/tmp/custom.json", loader.GetConfigPath())

	defaultLoader := NewLoader("")
	assert.Contains(t, defaultLoader.GetConfigPath(), ".mira")
}
