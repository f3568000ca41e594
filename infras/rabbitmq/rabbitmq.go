package rabbitmq

//go:generate go run go.uber.org/mock/mockgen -source=./rabbitmq.go -destination=./mocks/rabbitmq_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/shared/constant"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	prefetchCount = 20
	minBackoff    = time.Second
	maxBackoff    = 30 * time.Second

	deadLetterSuffix = ".dead"
)

var errDeliveriesClosed = errors.New("deliveries channel closed")

// Handler processes one delivery. A failed message is requeued once, and a second failure
// moves it to the queue's dead-letter queue.
type Handler func(ctx context.Context, body []byte) error

// DeadLetterQueue names the queue that collects messages queue gave up on.
func DeadLetterQueue(queue string) string {
	return queue + deadLetterSuffix
}

type Client interface {
	Publish(ctx context.Context, queue string, value any) error
	Consume(ctx context.Context, queue string, handler Handler) error
	Close() error
}

type client struct {
	url  string
	otel otel.Otel

	mu   sync.Mutex
	conn *amqp.Connection
}

func New(cfg *config.Config, otel otel.Otel) Client {
	return &client{
		url:  cfg.RabbitMQ.URL,
		otel: otel,
	}
}

// connection returns the shared connection, dialing again when the broker dropped it.
func (c *client) connection() (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn, nil
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	c.conn = conn

	return conn, nil
}

func (c *client) channel(queue string) (*amqp.Channel, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	dead := DeadLetterQueue(queue)

	if _, err = ch.QueueDeclare(dead, true, false, false, false, nil); err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("failed to declare queue %s: %w", dead, err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dead,
	}

	if _, err = ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return ch, nil
}

// Publish sends value as a persistent JSON message to queue through the default exchange.
func (c *client) Publish(ctx context.Context, queue string, value any) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelQueueScopeName, constant.OtelQueueScopeName+".Publish")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute("queue", queue)

	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	ch, err := c.channel(queue)
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	return nil
}

// backoff is the exponential reconnect delay. It starts over once a consumer gets going.
type backoff struct {
	delay time.Duration
}

// next returns the wait before the following attempt. started reports whether the attempt
// that just ended had begun consuming.
func (b *backoff) next(started bool) time.Duration {
	if started || b.delay == 0 {
		b.delay = minBackoff
	}

	wait := b.delay
	b.delay = min(b.delay*2, maxBackoff)

	return wait
}

// Consume delivers messages from queue to handler until ctx is cancelled, reconnecting with
// exponential backoff whenever the broker connection is lost.
func (c *client) Consume(ctx context.Context, queue string, handler Handler) error {
	var retry backoff

	for {
		started, err := c.consume(ctx, queue, handler)
		if ctx.Err() != nil {
			return nil
		}

		wait := retry.next(started)

		log.Warn().Err(err).Str("queue", queue).Dur("retry_in", wait).Msg("rabbitmq consumer stopped, reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (c *client) consume(ctx context.Context, queue string, handler Handler) (bool, error) {
	ch, err := c.channel(queue)
	if err != nil {
		return false, err
	}
	defer ch.Close()

	if err = ch.Qos(prefetchCount, 0, false); err != nil {
		log.Warn().Err(err).Msg("failed to set rabbitmq qos")
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		return false, fmt.Errorf("failed to consume %s: %w", queue, err)
	}

	log.Info().Str("queue", queue).Msg("rabbitmq consumer started")

	for delivery := range deliveries {
		settle(delivery, handler(ctx, delivery.Body), queue)
	}

	return true, errDeliveriesClosed
}

// settle acks a handled delivery. A failure is requeued on first delivery and dead-lettered
// once the broker reports it as redelivered.
func settle(delivery amqp.Delivery, handleErr error, queue string) {
	if handleErr == nil {
		if err := delivery.Ack(false); err != nil {
			log.Warn().Err(err).Str("queue", queue).Msg("failed to ack message")
		}

		return
	}

	requeue := !delivery.Redelivered

	log.Error().Err(handleErr).Str("queue", queue).Bool("requeue", requeue).Msg("failed to handle message")

	if err := delivery.Nack(false, requeue); err != nil {
		log.Warn().Err(err).Str("queue", queue).Msg("failed to nack message")
	}
}

func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}

	return nil
}
