package cmd

import (
	"context"
	"fmt"

	"github.com/EO-DataHub/eodhp-todo-services/db"
	"github.com/EO-DataHub/eodhp-todo-services/internal/appconfig"
	awsclient "github.com/EO-DataHub/eodhp-todo-services/internal/aws"
	"github.com/EO-DataHub/eodhp-todo-services/internal/events"
	"github.com/EO-DataHub/eodhp-todo-services/store"
	"github.com/rs/zerolog/log"
)

// commonSetUp sets the log level and loads the config. Without --config the
// defaults are used.
func commonSetUp() *appconfig.Config {
	setLogging(logLevel)

	if configPath == "" {
		log.Info().Msg("No config file given, using defaults")
		return appconfig.Default()
	}

	cfg, err := appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load config")
	}
	return cfg
}

// databaseSource returns the configured DSN, fetching it from Secrets
// Manager when a secret name is set.
func databaseSource(ctx context.Context, cfg *appconfig.Config) (string, error) {
	if cfg.Database.SecretName == "" {
		return cfg.Database.Source, nil
	}

	awsCfg, err := awsclient.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return "", err
	}

	return awsclient.GetSecretString(ctx, awsclient.NewSecretsManagerClient(awsCfg), cfg.Database.SecretName)
}

// openTodoDB connects to the PostgreSQL database named in the config.
func openTodoDB(ctx context.Context, cfg *appconfig.Config) (*db.TodoDB, error) {
	source, err := databaseSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database source: %w", err)
	}
	return db.NewTodoDB(cfg.Database.Driver, source, &log.Logger)
}

// newStore builds the configured store backend. The returned close function
// releases any connection it holds.
func newStore(ctx context.Context, cfg *appconfig.Config) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case appconfig.BackendPostgres:
		todoDB, err := openTodoDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return todoDB, func() { todoDB.Close() }, nil
	default:
		return store.NewFileStore(cfg.Store.Path, &log.Logger), func() {}, nil
	}
}

// newNotifier publishes to Pulsar when a URL and producer topic are
// configured and drops events otherwise.
func newNotifier(cfg *appconfig.Config) (events.Notifier, error) {
	if cfg.Pulsar.URL == "" || cfg.Pulsar.TopicProducer == "" {
		log.Info().Msg("Pulsar is not configured, change events are disabled")
		return events.NopNotifier{}, nil
	}
	return events.NewEventPublisher(cfg.Pulsar.URL, cfg.Pulsar.TopicProducer)
}
