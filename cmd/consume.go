package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/EO-DataHub/eodhp-todo-services/internal/events"
	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Run the Pulsar consumer to log todo change events",
	Run: func(cmd *cobra.Command, args []string) {

		cfg := commonSetUp()
		if cfg.Pulsar.URL == "" || cfg.Pulsar.TopicConsumer == "" {
			log.Fatal().Msg("pulsar.url and pulsar.topicConsumer must be set")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		consumer, err := events.NewEventConsumer(cfg.Pulsar.URL, cfg.Pulsar.TopicConsumer, cfg.Pulsar.Subscription)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		if err := consumer.Consume(ctx, logEvent); err != nil {
			log.Error().Err(err).Msg("Consumer failed")
		}
		log.Info().Msg("Consumer stopped")
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
}

func logEvent(ctx context.Context, event models.TodoEvent) error {
	log.Info().
		Str("action", event.Action).
		Str("name", event.Name).
		Str("todo", event.Todo).
		Int64("timestamp", event.Timestamp).
		Msg("Todo event received")
	return nil
}
