package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/EO-DataHub/eodhp-todo-services/store"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// TodoDB is a PostgreSQL backed store.Store.
type TodoDB struct {
	DB  *sql.DB
	Log *zerolog.Logger
}

// NewTodoDB opens a connection to the database at source and checks it is
// reachable.
func NewTodoDB(driver, source string, log *zerolog.Logger) (*TodoDB, error) {
	if source == "" {
		log.Error().Msg("database source is not set")
		return nil, fmt.Errorf("database source is not set")
	}
	if driver == "" {
		driver = "postgres"
	}

	// Open the database connection
	db, err := sql.Open(driver, source)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open database connection")
		return nil, err
	}

	// Check we are actually connected
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed during ping")
		db.Close()
		return nil, err
	}

	return &TodoDB{
		DB:  db,
		Log: log,
	}, nil
}

func (t *TodoDB) Close() error {
	if err := t.DB.Close(); err != nil {
		return err
	}
	t.Log.Info().Msg("database connection closed")
	return nil
}

// Migrate runs the embedded goose migrations.
func (t *TodoDB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, t.DB, "migrations"); err != nil {
		t.Log.Error().Err(err).Msg("Failed to run migrations")
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	t.Log.Info().Msg("Migrations complete")
	return nil
}

// Initialize checks the connection and brings the schema up to date.
func (t *TodoDB) Initialize(ctx context.Context) error {
	if err := t.DB.PingContext(ctx); err != nil {
		t.Log.Error().Err(err).Msg("Database connection ping failed")
		return fmt.Errorf("%w: %w", store.ErrDataFileAccess, err)
	}

	t.Log.Debug().Msg("Database connection is healthy, starting migrations")

	if err := t.Migrate(ctx); err != nil {
		return fmt.Errorf("%w: %w", store.ErrDataFileCreate, err)
	}
	return nil
}
