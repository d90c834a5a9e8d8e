package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the main Mira configuration
type Config struct {
	// Telegram
	Telegram TelegramConfig `json:"telegram" mapstructure:"telegram"`

	// AI provider
	AI AIConfig `json:"ai" mapstructure:"ai"`

	// Health endpoint
	Health HealthConfig `json:"health" mapstructure:"health"`

	// Session memory
	Session SessionConfig `json:"session" mapstructure:"session"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string `json:"bot_token" mapstructure:"bot_token"`
	// UpdateTimeout is the long-poll timeout in seconds
	UpdateTimeout int `json:"update_timeout" mapstructure:"update_timeout"`
}

// AIConfig holds AI provider configuration
type AIConfig struct {
	Provider    string `json:"provider" mapstructure:"provider"` // gemini, openai, anthropic
	APIKey      string `json:"api_key" mapstructure:"api_key"`
	Model       string `json:"model" mapstructure:"model"`
	VisionModel string `json:"vision_model" mapstructure:"vision_model"`
}

// HealthConfig holds health endpoint configuration
type HealthConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// SessionConfig holds conversation memory configuration
type SessionConfig struct {
	MaxHistory int `json:"max_history" mapstructure:"max_history"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file" mapstructure:"file"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			UpdateTimeout: 60,
		},
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			VisionModel: "gemini-2.0-flash",
		},
		Health: HealthConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Session: SessionConfig{
			MaxHistory: 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}

	if c.AI.APIKey == "" {
		return fmt.Errorf("AI provider API key is required")
	}

	validProviders := []string{"gemini", "openai", "anthropic"}
	valid := false
	for _, vp := range validProviders {
		if c.AI.Provider == vp {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid AI provider %s (must be: gemini, openai, anthropic)", c.AI.Provider)
	}

	if c.AI.Model == "" {
		return fmt.Errorf("AI model is required")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("invalid health port %d", c.Health.Port)
	}

	if c.Session.MaxHistory < 2 {
		return fmt.Errorf("session max_history must be at least 2")
	}
	if c.Session.MaxHistory%2 != 0 {
		return fmt.Errorf("session max_history must be even to keep user/assistant pairs intact")
	}

	return nil
}
