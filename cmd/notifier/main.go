package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/infras/rabbitmq"
	"hotel/infras/telegram"
	"hotel/internal/domains/booking/event"
	"hotel/shared/logger"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// The notifier drains booking events: RabbitMQ notifications go to the staff Telegram chats
// and the Kafka stream goes to the audit log.
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.RabbitMQ.Enable && !cfg.Kafka.Enable {
		log.Warn().Msg("Neither rabbitmq nor kafka is enabled, nothing to consume")

		return
	}

	ot := otel.New(cfg)

	notifier, err := telegram.New(cfg, ot)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize telegram notifier")
	}

	group, ctx := errgroup.WithContext(ctx)

	if cfg.RabbitMQ.Enable {
		broker := rabbitmq.New(cfg, ot)
		defer broker.Close()

		group.Go(func() error {
			return broker.Consume(ctx, cfg.RabbitMQ.Queues.BookingNotifications, event.NotificationHandler(notifier))
		})
	}

	if cfg.Kafka.Enable {
		stream := kafka.New(cfg, ot)
		defer stream.Close()

		group.Go(func() error {
			return stream.Consume(ctx, cfg.Kafka.ConsumerGroup, cfg.Kafka.Topics.BookingEvents, event.AuditHandler())
		})
	}

	log.Info().
		Bool("rabbitmq", cfg.RabbitMQ.Enable).
		Bool("kafka", cfg.Kafka.Enable).
		Msg("Booking notifier started")

	if err := group.Wait(); err != nil {
		log.Error().Err(err).Msg("Booking notifier stopped with error")

		return
	}

	log.Info().Msg("Booking notifier stopped")
}
