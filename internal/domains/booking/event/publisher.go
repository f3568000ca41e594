package event

//go:generate go run go.uber.org/mock/mockgen -source=./publisher.go -destination=../mocks/publisher_mock.go -package=mocks

import (
	"context"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/infras/rabbitmq"
	"hotel/internal/domains/booking/model/dto"
	"hotel/shared/constant"

	"github.com/rs/zerolog/log"
)

const (
	TypeCreated   = "booking.created"
	TypeCancelled = "booking.cancelled"
	TypeUpdated   = "booking.updated"
)

// Publisher fans booking events out to the audit stream and the staff notification queue.
// Delivery is best effort; failures are logged and never reach the caller.
type Publisher interface {
	// Publish hands the event to a background delivery and returns at once.
	Publish(ctx context.Context, event dto.Event)
	// Deliver sends the event to every enabled transport before returning.
	Deliver(ctx context.Context, event dto.Event)
}

type publisherImpl struct {
	cfg      *config.Config
	kafka    kafka.Client
	rabbitmq rabbitmq.Client
	otel     otel.Otel
}

func New(cfg *config.Config, kafka kafka.Client, rabbitmq rabbitmq.Client, otel otel.Otel) Publisher {
	return &publisherImpl{
		cfg:      cfg,
		kafka:    kafka,
		rabbitmq: rabbitmq,
		otel:     otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, event dto.Event) {
	go p.Deliver(context.WithoutCancel(ctx), event)
}

func (p *publisherImpl) Deliver(ctx context.Context, event dto.Event) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Deliver")
	defer scope.End()

	scope.SetAttribute("event.type", event.Type)

	if p.cfg.Kafka.Enable {
		message := kafka.Message{Key: event.Booking.ID, Value: event}

		if err := p.kafka.SendMessages(ctx, p.cfg.Kafka.Topics.BookingEvents, message); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("event", event.String()).Msg("failed to publish booking event to kafka")
		}
	}

	if p.cfg.RabbitMQ.Enable {
		if err := p.rabbitmq.Publish(ctx, p.cfg.RabbitMQ.Queues.BookingNotifications, event); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("event", event.String()).Msg("failed to publish booking notification")
		}
	}
}
