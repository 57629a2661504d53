// Package notify pushes booking activity to the administrator's Telegram
// chat. It is a plain event-bus subscriber; nothing in the core depends on
// it being configured.
package notify

import (
	"encoding/json"
	"fmt"

	"openhouse/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// Attach subscribes the notifier to booking events on the bus.
func (n *TelegramNotifier) Attach(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
}

func (n *TelegramNotifier) handleBookingCreated(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("failed to decode booking event")
		return err
	}

	text := fmt.Sprintf(
		"New viewing booked\n%s at %s\n%s\n%s / %s",
		payload.Date,
		payload.Time,
		payload.VisitorName,
		payload.Email,
		payload.Phone,
	)
	if payload.Notes != "" {
		text += "\nNote: " + payload.Notes
	}

	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		n.logger.Error().Err(err).Str("booking_id", payload.BookingID).Msg("telegram notification failed")
		return err
	}

	return nil
}
