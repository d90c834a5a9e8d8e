// Package dispatch orchestrates one inbound message: classification, the
// completion call, and session bookkeeping.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harun/mira/internal/ai"
	"github.com/harun/mira/internal/metrics"
	"github.com/harun/mira/internal/session"
	"github.com/rs/zerolog"
)

// errorReply is what users see when the completion service fails. Failures
// never propagate past the dispatcher.
const errorReply = "Sorry, I couldn't generate a response right now. Please try again."

// Dispatcher routes messages between the session store and the completion
// provider
type Dispatcher struct {
	store     *session.Store
	completer ai.Completer
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// New creates a new dispatcher
func New(store *session.Store, completer ai.Completer, m *metrics.Metrics, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		completer: completer,
		metrics:   m,
		logger:    logger.With().Str("component", "dispatch").Logger(),
	}
}

// HandleText handles an inbound text message and returns the reply to
// deliver. Provider failures are converted into a user-facing error string
// and leave the session history untouched.
func (d *Dispatcher) HandleText(ctx context.Context, userID int64, text string) string {
	traceID := uuid.NewString()
	logger := d.logger.With().Str("trace_id", traceID).Int64("user_id", userID).Logger()

	kind := d.store.Classify(userID, text)
	d.metrics.MessagesReceivedTotal.WithLabelValues("text").Inc()

	logger.Debug().Str("kind", kind.String()).Msg("Message classified")

	var reply string
	var err error

	start := time.Now()
	if img := d.store.ImageContext(userID); kind == session.ImageFollowUp && img != nil {
		prompt := followUpPrompt(img.Descriptor, text)
		reply, err = d.completer.GenerateVision(ctx, prompt, img.Data, img.MIMEType)
	} else {
		reply, err = d.completer.Generate(ctx, d.store.History(userID), text)
	}
	d.metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		d.metrics.GenerationsTotal.WithLabelValues("error").Inc()
		d.metrics.GenerationErrorsTotal.Inc()
		logger.Error().Err(err).Msg("Generation failed")
		return errorReply
	}
	d.metrics.GenerationsTotal.WithLabelValues("ok").Inc()

	// Both branches record the literal user text so later plain-text turns
	// keep continuity, even when the call used image data.
	d.store.AppendExchange(userID, text, reply)
	d.metrics.SessionsActive.Set(float64(d.store.Count()))

	logger.Debug().Int("reply_len", len(reply)).Msg("Reply generated")

	return reply
}

// HandleImage handles an inbound image and returns the reply to deliver. The
// stored image context is replaced so follow-up questions refer to this image.
func (d *Dispatcher) HandleImage(ctx context.Context, userID int64, image []byte, mimeType, caption string) string {
	traceID := uuid.NewString()
	logger := d.logger.With().Str("trace_id", traceID).Int64("user_id", userID).Logger()

	d.metrics.MessagesReceivedTotal.WithLabelValues("image").Inc()

	if caption == "" {
		caption = "Describe this image."
	}

	// The new image replaces any prior context up front, so follow-ups refer
	// to it even if this generation attempt fails.
	d.store.SetImageContext(userID, image, mimeType, caption)

	start := time.Now()
	reply, err := d.completer.GenerateVision(ctx, caption, image, mimeType)
	d.metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		d.metrics.GenerationsTotal.WithLabelValues("error").Inc()
		d.metrics.GenerationErrorsTotal.Inc()
		logger.Error().Err(err).Msg("Vision generation failed")
		return errorReply
	}
	d.metrics.GenerationsTotal.WithLabelValues("ok").Inc()

	d.store.AppendExchange(userID, fmt.Sprintf("[Sent an image with caption: %s]", caption), reply)
	d.metrics.SessionsActive.Set(float64(d.store.Count()))

	logger.Debug().
		Int("image_bytes", len(image)).
		Int("reply_len", len(reply)).
		Msg("Image reply generated")

	return reply
}

// followUpPrompt combines the stored image descriptor with the new question
func followUpPrompt(descriptor, text string) string {
	if descriptor == "" {
		return text
	}
	return fmt.Sprintf("The user previously sent this image with the caption %q. They now ask: %s", descriptor, text)
}
