package ai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/harun/mira/internal/config"
	"github.com/harun/mira/internal/session"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// OpenAI generates replies using the OpenAI chat completions API
type OpenAI struct {
	client      openai.Client
	model       string
	visionModel string
	logger      zerolog.Logger
}

// NewOpenAI creates a new OpenAI provider
func NewOpenAI(cfg config.AIConfig, logger zerolog.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}

	return &OpenAI{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       model,
		visionModel: visionModel,
		logger:      logger.With().Str("component", "ai").Str("provider", "openai").Logger(),
	}, nil
}

// Generate produces a reply to text given the prior conversation history
func (o *OpenAI) Generate(ctx context.Context, history []session.Turn, text string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	for _, turn := range history {
		if turn.Role == session.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(text))

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai generate failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	o.logger.Debug().
		Str("model", o.model).
		Int("history", len(history)).
		Msg("Generated text reply")

	return completion.Choices[0].Message.Content, nil
}

// GenerateVision produces a reply to text about an image
func (o *OpenAI) GenerateVision(ctx context.Context, text string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(text),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(parts),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai vision generate failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	o.logger.Debug().
		Str("model", o.visionModel).
		Int("image_bytes", len(image)).
		Msg("Generated vision reply")

	return completion.Choices[0].Message.Content, nil
}

// Name returns the provider name
func (o *OpenAI) Name() string {
	return fmt.Sprintf("openai:%s", o.model)
}

// Close releases provider resources
func (o *OpenAI) Close() error {
	return nil
}
