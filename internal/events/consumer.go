package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog/log"
)

// EventHandler processes one decoded todo event. Returning an error
// redelivers the message.
type EventHandler func(ctx context.Context, event models.TodoEvent) error

// EventConsumer reads todo events from a Pulsar subscription. Messages that
// keep failing end up on the "<topic>-dlq" topic.
type EventConsumer struct {
	client   pulsar.Client
	consumer pulsar.Consumer
}

// NewEventConsumer subscribes to topic with a shared subscription.
func NewEventConsumer(pulsarURL, topic, subscription string) (*EventConsumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: subscription,
		Type:             pulsar.Shared,
		DLQ: &pulsar.DLQPolicy{
			MaxDeliveries:   3,
			DeadLetterTopic: topic + "-dlq",
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar consumer: %w", err)
	}

	log.Info().Str("topic", topic).Str("subscription", subscription).Msg("Pulsar consumer subscribed")
	return &EventConsumer{client: client, consumer: consumer}, nil
}

// Consume passes every event to handle until ctx is cancelled. Handled
// events are acked; undecodable or failed ones are nacked.
func (c *EventConsumer) Consume(ctx context.Context, handle EventHandler) error {
	for {
		msg, err := c.consumer.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error().Err(err).Msg("Error receiving message")
			continue
		}

		event, err := DecodeEvent(msg.Payload())
		if err != nil {
			log.Error().Err(err).Str("key", msg.Key()).Msg("Discarding malformed event")
			c.consumer.Nack(msg)
			continue
		}

		if err := handle(ctx, event); err != nil {
			log.Warn().Err(err).Str("action", event.Action).Str("name", event.Name).Msg("Event handler failed")
			c.consumer.Nack(msg)
			continue
		}

		if err := c.consumer.Ack(msg); err != nil {
			log.Warn().Err(err).Str("name", event.Name).Msg("Failed to ack event")
		}
	}
}

// Close cleans up the Pulsar consumer and client.
func (c *EventConsumer) Close() {
	c.consumer.Close()
	c.client.Close()
}

// DecodeEvent parses a message payload produced by EventPublisher.
func DecodeEvent(payload []byte) (models.TodoEvent, error) {
	var event models.TodoEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return models.TodoEvent{}, fmt.Errorf("could not decode todo event: %w", err)
	}
	if event.Action == "" || event.Name == "" {
		return models.TodoEvent{}, fmt.Errorf("todo event is missing action or name")
	}
	return event, nil
}
