// Package ai provides the completion providers Mira can relay to. All
// providers implement Completer; the dispatcher never sees a concrete SDK.
package ai

import (
	"context"
	"fmt"

	"github.com/harun/mira/internal/config"
	"github.com/harun/mira/internal/session"
	"github.com/rs/zerolog"
)

// Completer generates replies from a completion service
type Completer interface {
	// Generate produces a reply to text given the prior conversation history
	Generate(ctx context.Context, history []session.Turn, text string) (string, error)

	// GenerateVision produces a reply to text about an image
	GenerateVision(ctx context.Context, text string, image []byte, mimeType string) (string, error)

	// Name returns the provider name for logging
	Name() string

	// Close releases provider resources
	Close() error
}

// New creates the completion provider selected by the configuration
func New(ctx context.Context, cfg config.AIConfig, logger zerolog.Logger) (Completer, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg, logger)
	case "openai":
		return NewOpenAI(cfg, logger)
	case "anthropic":
		return NewAnthropic(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}
