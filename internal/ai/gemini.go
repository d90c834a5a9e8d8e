package ai

import (
	"context"
	"fmt"

	"github.com/harun/mira/internal/config"
	"github.com/harun/mira/internal/session"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Gemini generates replies using Google's Gemini API
type Gemini struct {
	client      *genai.Client
	model       string
	visionModel string
	logger      zerolog.Logger
}

// NewGemini creates a new Gemini provider
func NewGemini(ctx context.Context, cfg config.AIConfig, logger zerolog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}

	return &Gemini{
		client:      client,
		model:       model,
		visionModel: visionModel,
		logger:      logger.With().Str("component", "ai").Str("provider", "gemini").Logger(),
	}, nil
}

// Generate produces a reply to text given the prior conversation history
func (g *Gemini) Generate(ctx context.Context, history []session.Turn, text string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		var role genai.Role = genai.RoleUser
		if turn.Role == session.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	reply := result.Text()
	if reply == "" {
		return "", fmt.Errorf("gemini returned an empty reply")
	}

	g.logger.Debug().
		Str("model", g.model).
		Int("history", len(history)).
		Msg("Generated text reply")

	return reply, nil
}

// GenerateVision produces a reply to text about an image
func (g *Gemini) GenerateVision(ctx context.Context, text string, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromText(text),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.visionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini vision generate failed: %w", err)
	}

	reply := result.Text()
	if reply == "" {
		return "", fmt.Errorf("gemini returned an empty reply")
	}

	g.logger.Debug().
		Str("model", g.visionModel).
		Int("image_bytes", len(image)).
		Msg("Generated vision reply")

	return reply, nil
}

// Name returns the provider name
func (g *Gemini) Name() string {
	return fmt.Sprintf("gemini:%s", g.model)
}

// Close closes the Gemini client. genai.Client has no Close method;
// its underlying HTTP client does not require explicit shutdown.
func (g *Gemini) Close() error {
	return nil
}
