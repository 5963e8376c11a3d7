package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog/log"
)

// Notifier publishes todo change events.
type Notifier interface {
	Notify(ctx context.Context, event models.TodoEvent) error
	Close()
}

type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
}

// NewEventPublisher initializes the Pulsar client and producer.
func NewEventPublisher(pulsarURL, topic string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	log.Info().Str("topic", topic).Msg("Pulsar client and producer initialized successfully")
	return &EventPublisher{
		client:   client,
		producer: producer,
	}, nil
}

// Notify publishes an event to Pulsar, keyed by user name so events for one
// user stay ordered.
func (p *EventPublisher) Notify(ctx context.Context, event models.TodoEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not serialize event payload: %w", err)
	}

	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     event.Name,
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}

	log.Debug().RawJSON("event", message).Msg("Event sent to Pulsar")
	return nil
}

// Close closes the Pulsar producer and client
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
	log.Info().Msg("Pulsar client and producer closed successfully")
}

// NopNotifier drops every event. It is used when Pulsar is not configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.TodoEvent) error { return nil }

func (NopNotifier) Close() {}
