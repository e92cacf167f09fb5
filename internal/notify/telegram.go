// Package notify delivers generated reports to managers over Telegram.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// DocumentSender is the slice of the Telegram API the notifier needs.
type DocumentSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier fans a document out to every configured manager chat.
type TelegramNotifier struct {
	bot      DocumentSender
	managers []int64
	logger   *zerolog.Logger
}

// NewTelegramNotifier connects to the Telegram API. Returns nil without error
// when token is empty or there are no managers, so callers can wire it
// unconditionally.
func NewTelegramNotifier(token string, managers []int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" || len(managers) == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	return &TelegramNotifier{bot: bot, managers: managers, logger: logger}, nil
}

// NewTelegramNotifierWithSender wires a notifier over an existing sender.
func NewTelegramNotifierWithSender(bot DocumentSender, managers []int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, managers: managers, logger: logger}
}

// SendDocument delivers one file to all managers. A failed delivery to one
// manager is logged and does not stop the rest.
func (n *TelegramNotifier) SendDocument(ctx context.Context, filename string, data io.Reader, caption string) error {
	payload, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	var lastErr error
	sent := 0
	for _, chatID := range n.managers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileReader{
			Name:   filename,
			Reader: bytes.NewReader(payload),
		})
		doc.Caption = caption

		if _, err := n.bot.Send(doc); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Str("filename", filename).Msg("report delivery failed")
			lastErr = err
			continue
		}
		sent++
	}

	if sent == 0 && lastErr != nil {
		return fmt.Errorf("send document to %d managers: %w", len(n.managers), lastErr)
	}
	return nil
}
