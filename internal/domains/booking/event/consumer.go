package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hotel/infras/kafka"
	"hotel/infras/rabbitmq"
	"hotel/infras/telegram"
	"hotel/internal/domains/booking/model/dto"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

var titles = map[string]string{
	TypeCreated:   "New booking",
	TypeCancelled: "Booking cancelled",
	TypeUpdated:   "Booking updated",
}

// Message renders a booking event for the staff chat.
func Message(event dto.Event) string {
	title, ok := titles[event.Type]
	if !ok {
		title = event.Type
	}

	booking := event.Booking

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", title, booking.Reference)
	fmt.Fprintf(&b, "Room: %s (#%d)\n", booking.Room.Name, booking.Room.ID)
	fmt.Fprintf(&b, "Stay: %s to %s, %d night(s)\n", booking.CheckIn, booking.CheckOut, booking.Nights)
	fmt.Fprintf(&b, "Guest: %s %s <%s>\n", booking.GuestFirstName, booking.GuestLastName, booking.GuestEmail)
	fmt.Fprintf(&b, "Status: %s, payment %s", booking.Status, booking.PaymentStatus)

	return b.String()
}

// NotificationHandler forwards queued booking notifications to the staff chats.
func NotificationHandler(notifier telegram.Notifier) rabbitmq.Handler {
	return func(ctx context.Context, body []byte) error {
		var event dto.Event

		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("failed to decode booking notification: %w", err)
		}

		if err := notifier.Notify(ctx, Message(event)); err != nil {
			return fmt.Errorf("failed to notify staff: %w", err)
		}

		return nil
	}
}

// AuditHandler writes every booking event from the stream to the audit log.
func AuditHandler() kafka.Handler {
	return func(_ context.Context, msg kafkaGo.Message) error {
		event, err := kafka.Decode[dto.Event](msg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().
			Str("event", event.Type).
			Str("booking_id", event.Booking.ID).
			Str("reference", event.Booking.Reference).
			Str("status", event.Booking.Status).
			Str("actor", event.Actor).
			Str("at", event.Timestamp).
			Int64("offset", msg.Offset).
			Msg("booking audit")

		return nil
	}
}
