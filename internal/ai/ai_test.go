package ai

import (
	"context"
	"testing"

	"github.com/harun/mira/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.AIConfig{
		Provider: "cohere",
		APIKey:   "key",
	}, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown AI provider")
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(config.AIConfig{Provider: "openai"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewOpenAI_DefaultModels(t *testing.T) {
	p, err := NewOpenAI(config.AIConfig{Provider: "openai", APIKey: "key"}, zerolog.Nop())
	require.NoError(t, err)

	assert.NotEmpty(t, p.model)
	assert.Equal(t, p.model, p.visionModel)
	assert.Contains(t, p.Name(), "openai:")
	assert.NoError(t, p.Close())
}

func TestNewOpenAI_ExplicitVisionModel(t *testing.T) {
	p, err := NewOpenAI(config.AIConfig{
		Provider:    "openai",
		APIKey:      "key",
		Model:       "gpt-4o-mini",
		VisionModel: "gpt-4o",
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", p.model)
	assert.Equal(t, "gpt-4o", p.visionModel)
}

func TestNewAnthropic_RequiresKey(t *testing.T) {
	_, err := NewAnthropic(config.AIConfig{Provider: "anthropic"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewAnthropic_DefaultModels(t *testing.T) {
	p, err := NewAnthropic(config.AIConfig{Provider: "anthropic", APIKey: "key"}, zerolog.Nop())
	require.NoError(t, err)

	assert.NotEmpty(t, p.model)
	assert.Equal(t, p.model, p.visionModel)
	assert.Contains(t, p.Name(), "anthropic:")
	assert.NoError(t, p.Close())
}
