package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/harun/mira/internal/config"
	"github.com/harun/mira/internal/session"
	"github.com/rs/zerolog"
)

const anthropicMaxTokens = 4096

// Anthropic generates replies using the Anthropic messages API
type Anthropic struct {
	client      anthropic.Client
	model       string
	visionModel string
	logger      zerolog.Logger
}

// NewAnthropic creates a new Anthropic provider
func NewAnthropic(cfg config.AIConfig, logger zerolog.Logger) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_0)
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}

	return &Anthropic{
		client:      anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       model,
		visionModel: visionModel,
		logger:      logger.With().Str("component", "ai").Str("provider", "anthropic").Logger(),
	}, nil
}

// Generate produces a reply to text given the prior conversation history
func (a *Anthropic) Generate(ctx context.Context, history []session.Turn, text string) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, turn := range history {
		block := anthropic.NewTextBlock(turn.Content)
		if turn.Role == session.RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate failed: %w", err)
	}

	reply := collectText(msg)
	if reply == "" {
		return "", fmt.Errorf("anthropic returned an empty reply")
	}

	a.logger.Debug().
		Str("model", a.model).
		Int("history", len(history)).
		Msg("Generated text reply")

	return reply, nil
}

// GenerateVision produces a reply to text about an image
func (a *Anthropic) GenerateVision(ctx context.Context, text string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	encoded := base64.StdEncoding.EncodeToString(image)

	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.visionModel),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(text),
				anthropic.NewImageBlockBase64(mimeType, encoded),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic vision generate failed: %w", err)
	}

	reply := collectText(msg)
	if reply == "" {
		return "", fmt.Errorf("anthropic returned an empty reply")
	}

	a.logger.Debug().
		Str("model", a.visionModel).
		Int("image_bytes", len(image)).
		Msg("Generated vision reply")

	return reply, nil
}

// collectText concatenates the text blocks of a response
func collectText(msg *anthropic.Message) string {
	var out string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	return out
}

// Name returns the provider name
func (a *Anthropic) Name() string {
	return fmt.Sprintf("anthropic:%s", a.model)
}

// Close releases provider resources
func (a *Anthropic) Close() error {
	return nil
}
