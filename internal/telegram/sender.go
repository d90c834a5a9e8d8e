package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/mira/internal/metrics"
	"github.com/rs/zerolog"
)

// ChunkLimit is the maximum segment size. It leaves a safety margin under
// Telegram's hard 4096-character message cap.
const ChunkLimit = 4000

// messageSender is the part of the bot API the sender needs. Satisfied by
// *tgbotapi.BotAPI.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender splits long replies into transport-safe segments and delivers them
// in order
type Sender struct {
	api     messageSender
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewSender creates a new chunked sender
func NewSender(api messageSender, m *metrics.Metrics, logger zerolog.Logger) *Sender {
	return &Sender{
		api:     api,
		metrics: m,
		logger:  logger.With().Str("module", "sender").Logger(),
	}
}

// Send rewrites markup, splits the text into segments, and delivers them in
// order. A segment rejected with Markdown formatting is retried once as plain
// text; formatting failure is never fatal to delivery.
func (s *Sender) Send(chatID int64, text string) error {
	text = RewriteMarkup(text)
	segments := SplitMessage(text, ChunkLimit)

	for i, segment := range segments {
		msg := tgbotapi.NewMessage(chatID, segment)
		msg.ParseMode = tgbotapi.ModeMarkdown

		if _, err := s.api.Send(msg); err != nil {
			s.logger.Debug().
				Err(err).
				Int64("chat_id", chatID).
				Int("segment", i).
				Msg("Markdown send rejected, retrying as plain text")

			msg.ParseMode = ""
			if _, err := s.api.Send(msg); err != nil {
				return fmt.Errorf("failed to send segment %d/%d: %w", i+1, len(segments), err)
			}
		}

		s.metrics.ChunksSentTotal.Inc()
	}

	s.metrics.RepliesSentTotal.Inc()

	s.logger.Debug().
		Int64("chat_id", chatID).
		Int("segments", len(segments)).
		Msg("Reply delivered")

	return nil
}

// RewriteMarkup translates lightweight markup into Telegram's Markdown
// syntax: double-star bold becomes single-star, dash bullets become bullet
// points.
func RewriteMarkup(text string) string {
	text = strings.ReplaceAll(text, "**", "*")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "- ") {
			lines[i] = "• " + line[2:]
		}
	}

	return strings.Join(lines, "\n")
}

// SplitMessage splits text into ordered segments of at most limit bytes.
// Lines are accumulated greedily; a line longer than the limit falls back to
// a greedy split on word boundaries. Concatenating the segments reproduces
// the text, though newline placement at segment boundaries may change.
func SplitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var segments []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			segments = append(segments, buf.String())
			buf.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if len(line) > limit {
			flush()
			segments = append(segments, splitWords(line, limit)...)
			continue
		}

		if buf.Len() > 0 && buf.Len()+1+len(line) > limit {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	flush()

	return segments
}

// splitWords greedily packs words into segments. A single token longer than
// the limit is hard-cut at a rune boundary.
func splitWords(line string, limit int) []string {
	var segments []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			segments = append(segments, buf.String())
			buf.Reset()
		}
	}

	for _, word := range strings.Split(line, " ") {
		for len(word) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(word[cut]) {
				cut--
			}
			segments = append(segments, word[:cut])
			word = word[cut:]
		}

		if buf.Len() > 0 && buf.Len()+1+len(word) > limit {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(word)
	}
	flush()

	return segments
}
