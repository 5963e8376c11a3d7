package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/EO-DataHub/eodhp-todo-services/api/handlers"
	"github.com/EO-DataHub/eodhp-todo-services/api/middleware"
	"github.com/EO-DataHub/eodhp-todo-services/api/services"
	docs "github.com/EO-DataHub/eodhp-todo-services/docs"
	"github.com/EO-DataHub/eodhp-todo-services/internal/appconfig"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title EODHP Todo Services API
// @version v1
// @description Multi-user todo lists kept in a JSON data file.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {

		cfg := commonSetUp()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, closeStore, err := newStore(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize store")
		}
		defer closeStore()

		if err := st.Initialize(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize data file")
		}

		notifier, err := newNotifier(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer notifier.Close()

		r := newRouter(cfg, services.NewTodoService(st, notifier))

		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Server shutdown failed")
			}
		}()

		log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("could not start server")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}

// newRouter wires the API, docs, health, metrics and static routes.
func newRouter(cfg *appconfig.Config, svc *services.TodoService) *mux.Router {
	r := mux.NewRouter().UseEncodedPath()

	r.Use(middleware.WithLogger)
	if cfg.Metrics.Enabled {
		metrics := middleware.NewMetrics()
		r.Use(metrics.Middleware)
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	}

	r.HandleFunc("/healthz", handlers.Health()).Methods(http.MethodGet)

	// Register the routes
	api := r
	if cfg.BasePath != "" {
		api = r.PathPrefix(cfg.BasePath).Subrouter()
	}
	handlers.RegisterTodoRoutes(api, svc)

	// Docs
	docs.SwaggerInfo.Host = cfg.Host
	docs.SwaggerInfo.BasePath = cfg.BasePath
	r.PathPrefix(cfg.DocsPath).Handler(httpSwagger.Handler(
		httpSwagger.URL(path.Join(cfg.DocsPath, "/doc.json")),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	)).Methods(http.MethodGet)

	// Front end, registered last so it never shadows the API
	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).
			Methods(http.MethodGet, http.MethodHead)
	}

	return r
}
