package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"insights/api"
	analyticsapp "insights/internal/analytics/application"
	catalogapp "insights/internal/catalog/application"
	cataloginfra "insights/internal/catalog/infrastructure"
	"insights/internal/config"
	"insights/internal/events"
	exportapp "insights/internal/export/application"
	"insights/internal/logging"
	"insights/internal/metrics"
	sharedinfra "insights/internal/shared/infrastructure"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := cataloginfra.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer closeStore()
	logger.Info("store ready", zap.String("backend", cfg.Store.Backend))

	cache, err := openCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	defer cache.Close()

	publisher := openPublisher(cfg.Kafka)
	defer publisher.Close()

	reg := metrics.NewRegistry()
	responses := analyticsapp.NewResponseCache(cache, cfg.Cache.TTL(), logger, reg)
	analytics := analyticsapp.NewAnalyticsService(store, logger, reg, cfg.Analytics.TrendStep)
	catalog := catalogapp.NewCatalogService(store, publisher, responses, logger)
	exports := exportapp.NewExportService(analytics, logger)

	handlers := api.NewHandlers(analytics, catalog, exports, responses, logger, api.PageLimits{
		Default: cfg.Analytics.DefaultPageSize,
		Max:     cfg.Analytics.MaxPageSize,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(handlers, logger, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openCache construit le cache des réponses choisi par la configuration
func openCache(cfg config.CacheConfig) (sharedinfra.Cache, error) {
	switch cfg.Backend {
	case "pebble":
		return sharedinfra.NewPebbleCache(cfg.PebbleDir)
	case "none":
		return sharedinfra.NoopCache{}, nil
	default:
		return sharedinfra.NewShardedCache(16), nil
	}
}

// openPublisher retourne le publisher Kafka si des brokers sont configurés
func openPublisher(cfg config.KafkaConfig) events.Publisher {
	if !cfg.Enabled() {
		return events.NoopPublisher{}
	}
	return events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}
