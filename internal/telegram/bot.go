package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/mira/internal/config"
	"github.com/harun/mira/internal/dispatch"
	"github.com/harun/mira/internal/logger"
	"github.com/harun/mira/internal/metrics"
	"github.com/harun/mira/internal/session"
	"github.com/rs/zerolog"
)

const welcomeText = "👋 Hello! I'm Mira, your AI assistant. Send me a message or a photo and I'll respond."

const helpText = `Here are the available commands:
/start - Start the bot
/help - Show this help message
/clear - Forget our conversation so far

Simply send any message or photo, and I'll respond!`

// Bot receives Telegram updates and relays them through the dispatcher
type Bot struct {
	api        *tgbotapi.BotAPI
	config     *config.TelegramConfig
	store      *session.Store
	dispatcher *dispatch.Dispatcher
	sender     *Sender
	media      *Media
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	// State
	running bool
	updates tgbotapi.UpdatesChannel
	fatal   chan error
	done    chan struct{}
}

// New creates a new Telegram bot instance
func New(cfg *config.TelegramConfig, store *session.Store, dispatcher *dispatch.Dispatcher, m *metrics.Metrics, log *logger.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telegram config is required")
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	componentLogger := log.GetZerolog().With().Str("component", "telegram").Logger()

	bot := &Bot{
		api:        api,
		config:     cfg,
		store:      store,
		dispatcher: dispatcher,
		sender:     NewSender(api, m, componentLogger),
		metrics:    m,
		logger:     componentLogger,
		fatal:      make(chan error, 1),
		done:       make(chan struct{}),
	}
	bot.media = NewMedia(api, componentLogger)

	bot.logger.Info().
		Str("username", api.Self.UserName).
		Int64("id", api.Self.ID).
		Msg("Telegram bot authenticated")

	return bot, nil
}

// Start starts the bot and begins processing updates
func (b *Bot) Start() error {
	if b.running {
		return fmt.Errorf("bot is already running")
	}

	b.logger.Info().Msg("Starting Telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.UpdateTimeout

	b.updates = b.api.GetUpdatesChan(u)
	b.running = true

	go b.processUpdates()

	b.logger.Info().Msg("Telegram bot started")

	return nil
}

// Stop stops the bot. New inbound messages are no longer accepted.
func (b *Bot) Stop() error {
	if !b.running {
		return fmt.Errorf("bot is not running")
	}

	b.logger.Info().Msg("Stopping Telegram bot")

	b.running = false
	b.api.StopReceivingUpdates()
	<-b.done

	b.logger.Info().Msg("Telegram bot stopped")

	return nil
}

// Fatal surfaces unrecoverable transport failures to the supervisor
func (b *Bot) Fatal() <-chan error {
	return b.fatal
}

// processUpdates processes incoming updates sequentially
func (b *Bot) processUpdates() {
	defer close(b.done)

	for update := range b.updates {
		if !b.running {
			break
		}

		b.handleUpdateSafe(update)
	}

	// The updates channel closing while we still expect traffic means the
	// transport connection is gone.
	if b.running {
		b.fatal <- fmt.Errorf("telegram updates channel closed unexpectedly")
	}
}

// handleUpdateSafe isolates one update's failure from the rest of the loop
func (b *Bot) handleUpdateSafe(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Int("update_id", update.UpdateID).
				Msg("Panic while handling update")
		}
	}()

	if err := b.handleUpdate(update); err != nil {
		b.logger.Error().
			Err(err).
			Int("update_id", update.UpdateID).
			Msg("Failed to handle update")
	}
}

// handleUpdate routes an update to the appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		return b.handleCommand(msg)
	}

	if len(msg.Photo) > 0 {
		return b.handlePhoto(msg)
	}

	if msg.Text != "" {
		return b.handleText(msg)
	}

	return nil
}

// handleCommand handles /start, /help, and /clear
func (b *Bot) handleCommand(msg *tgbotapi.Message) error {
	command := msg.Command()

	b.logger.Debug().
		Int64("chat_id", msg.Chat.ID).
		Str("command", command).
		Msg("Command received")

	switch command {
	case "start":
		return b.sender.Send(msg.Chat.ID, welcomeText)
	case "help":
		return b.sender.Send(msg.Chat.ID, helpText)
	case "clear":
		b.store.Clear(msg.From.ID)
		b.metrics.SessionsActive.Set(float64(b.store.Count()))
		return b.sender.Send(msg.Chat.ID, "Conversation cleared. Let's start fresh!")
	default:
		return b.sender.Send(msg.Chat.ID, fmt.Sprintf("Unknown command: /%s", command))
	}
}

// handleText handles a plain text message
func (b *Bot) handleText(msg *tgbotapi.Message) error {
	b.sendTyping(msg.Chat.ID)

	reply := b.dispatcher.HandleText(context.Background(), msg.From.ID, msg.Text)

	return b.sender.Send(msg.Chat.ID, reply)
}

// handlePhoto handles a photo message, downloading the largest size
func (b *Bot) handlePhoto(msg *tgbotapi.Message) error {
	b.sendTyping(msg.Chat.ID)

	fileID := msg.Photo[len(msg.Photo)-1].FileID

	data, mimeType, err := b.media.DownloadPhoto(fileID)
	if err != nil {
		b.logger.Error().
			Err(err).
			Str("file_id", fileID).
			Msg("Failed to download photo")
		return b.sender.Send(msg.Chat.ID, "Sorry, I couldn't download that image. Please try again.")
	}

	reply := b.dispatcher.HandleImage(context.Background(), msg.From.ID, data, mimeType, msg.Caption)

	return b.sender.Send(msg.Chat.ID, reply)
}

// sendTyping sends a typing chat action; failure is not worth surfacing
func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		b.logger.Debug().Err(err).Int64("chat_id", chatID).Msg("Failed to send typing action")
	}
}

// IsRunning returns whether the bot is running
func (b *Bot) IsRunning() bool {
	return b.running
}
