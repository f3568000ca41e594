package telegram

//go:generate go run go.uber.org/mock/mockgen -source=./telegram.go -destination=./mocks/telegram_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/shared/constant"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Notifier sends plain text messages to the staff chats.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type notifier struct {
	bot   *tgbotapi.BotAPI
	chats []int64
	otel  otel.Otel
}

// New connects to the Bot API. Without a bot token the notifier only logs what it would send.
func New(cfg *config.Config, otel otel.Otel) (Notifier, error) {
	n := &notifier{
		chats: cfg.External.Telegram.StaffChats,
		otel:  otel,
	}

	if cfg.External.Telegram.BotToken == constant.Empty {
		log.Warn().Msg("telegram bot token not set, staff notifications will only be logged")

		return n, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.External.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}

	log.Info().Str("bot", bot.Self.UserName).Int("chats", len(n.chats)).Msg("telegram bot connected")

	n.bot = bot

	return n, nil
}

func (n *notifier) Notify(ctx context.Context, text string) (err error) {
	_, scope := n.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".TelegramNotify")
	defer scope.End()
	defer scope.TraceIfError(err)

	if n.bot == nil {
		log.Info().Str("text", text).Msg("staff notification")

		return nil
	}

	var errs []error

	for _, chatID := range n.chats {
		if _, sendErr := n.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, sendErr))
		}
	}

	return errors.Join(errs...)
}
