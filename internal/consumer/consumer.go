package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"restaurant-service/internal/entity"
	"restaurant-service/internal/notify"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type Consumer struct {
	reader    MessageReader
	mailer    notify.Mailer
	recipient string
	backoff   time.Duration
}

func NewConsumer(reader MessageReader, mailer notify.Mailer, recipient string) *Consumer {
	return &Consumer{reader: reader, mailer: mailer, recipient: recipient, backoff: time.Second}
}

// Run reads restaurant events until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Msgf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			log.Error().Str("key", string(msg.Key)).Msgf("Error processing message: %v", err)
		}
	}
}

// processMessage handles one event. Only created events trigger a mail.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	// key -> "restaurant.created.12" or "restaurant.deleted.12"
	eventType, id, err := entity.ParseEventKey(string(msg.Key))
	if err != nil {
		return err
	}

	switch eventType {
	case entity.EventCreated:
		var event entity.RestaurantEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return err
		}
		if c.recipient == "" {
			log.Warn().Msgf("No notification recipient configured, skipping restaurant %d", id)
			return nil
		}
		if err := c.mailer.Send(ctx, notify.NewRestaurantMessage(c.recipient, event.Restaurant)); err != nil {
			return err
		}
		log.Info().Msgf("Sent new restaurant notification for restaurant %d", id)
	case entity.EventUpdated, entity.EventDeleted:
		log.Debug().Msgf("Ignoring %s event for restaurant %d", eventType, id)
	default:
		return errors.New("unknown restaurant event type: " + eventType)
	}
	return nil
}
