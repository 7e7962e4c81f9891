package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"propradar/internal/api"
	"propradar/internal/api/handlers"
	"propradar/internal/config"
	"propradar/internal/domain/services"
	"propradar/internal/infrastructure/store"
	"propradar/internal/streaming"
	"propradar/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting PropRadar")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the key-value store backend
	st, redisClient := initStore(ctx, cfg, log)
	defer closeStore(st, log)

	// Initialize event publishing
	var publisher *streaming.Publisher
	if cfg.Events.Enabled {
		publisher, err = streaming.NewPublisher(cfg.Events, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, continuing without events")
			publisher = nil
		}
	}
	defer publisher.Close()

	// Initialize services
	stats := services.NewEngineStats()
	analyzer := services.NewAnalyzer(services.DefaultRuleTable())
	scorer := services.NewScorer(cfg.Scoring)
	scans := services.NewScanService(analyzer, scorer, stats, log)
	properties := services.NewPropertyService(st, analyzer, scorer, publisher, stats, log)
	alerts := services.NewAlertService(st, publisher, stats, log)

	// Initialize handlers
	h := handlers.NewHandlers(handlers.Dependencies{
		Store:      st,
		Scans:      scans,
		Properties: properties,
		Alerts:     alerts,
		Stats:      stats,
		Version:    cfg.App.Version,
		Logger:     log,
	})

	// Create router
	router := api.NewRouter(*cfg, h, redisClient, log)

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Str("store", st.Name()).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initStore builds the configured store backend. Connection failures
// fall back to the in-memory store so the service still comes up, in a
// degraded, non-durable mode. The redis client is returned separately
// for the rate limiter; it is nil for other backends.
func initStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, *redis.Client) {
	switch cfg.Store.Backend {
	case "redis":
		rs, err := store.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, falling back to in-memory store")
			return store.NewMemory(), nil
		}
		return rs, rs.Client()
	case "postgres":
		ps, err := store.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, falling back to in-memory store")
			return store.NewMemory(), nil
		}
		return ps, nil
	default:
		log.Warn().Msg("using in-memory store, data will not survive restarts")
		return store.NewMemory(), nil
	}
}

func closeStore(st store.Store, log *logger.Logger) {
	type closer interface{ Close() error }
	switch c := st.(type) {
	case *store.Postgres:
		c.Close()
	case closer:
		if err := c.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}
}
