package telegram

import (
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	// MaxMediaSize caps downloads; the vision providers reject larger payloads anyway
	MaxMediaSize = 5 * 1024 * 1024 // 5MB
)

// Media downloads files from Telegram
type Media struct {
	api    *tgbotapi.BotAPI
	logger zerolog.Logger
}

// NewMedia creates a new media handler
func NewMedia(api *tgbotapi.BotAPI, logger zerolog.Logger) *Media {
	return &Media{
		api:    api,
		logger: logger.With().Str("module", "media").Logger(),
	}
}

// DownloadPhoto downloads a photo into memory and returns its bytes and MIME
// type. Telegram serves photos as JPEG.
func (m *Media) DownloadPhoto(fileID string) ([]byte, string, error) {
	file, err := m.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file info: %w", err)
	}

	if file.FileSize > MaxMediaSize {
		return nil, "", fmt.Errorf("file size %d exceeds maximum %d", file.FileSize, MaxMediaSize)
	}

	url := file.Link(m.api.Token)

	resp, err := http.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxMediaSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > MaxMediaSize {
		return nil, "", fmt.Errorf("file exceeds maximum size %d", MaxMediaSize)
	}

	m.logger.Debug().
		Str("file_id", fileID).
		Int("size", len(data)).
		Msg("Photo downloaded")

	return data, "image/jpeg", nil
}
