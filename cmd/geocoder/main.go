package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/locationiq-geocoder/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/locationiq-geocoder/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/locationiq-geocoder/internal/adapter/kafka"
	"github.com/couchcryptid/locationiq-geocoder/internal/adapter/locationiq"
	"github.com/couchcryptid/locationiq-geocoder/internal/adapter/transport"
	"github.com/couchcryptid/locationiq-geocoder/internal/config"
	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/couchcryptid/locationiq-geocoder/internal/observability"
	"github.com/couchcryptid/locationiq-geocoder/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	fetcher := transport.New(cfg.LocationIQTimeout, logger,
		transport.WithRateLimit(cfg.LocationIQRateLimit, 1),
		transport.WithMetrics(metrics),
	)
	provider, err := locationiq.New(fetcher, cfg.LocationIQAPIKey, locationiq.Region(cfg.LocationIQRegion),
		locationiq.WithLogger(logger),
		locationiq.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error("failed to create locationiq provider", "error", err)
		os.Exit(1)
	}
	logger.Info("locationiq provider ready", "region", provider.Region(), "rate_limit", cfg.LocationIQRateLimit)

	store, ready, closers, err := newStore(cfg, logger)
	if err != nil {
		logger.Error("failed to create cache", "error", err)
		os.Exit(1)
	}
	var geocoder domain.Geocoder = cache.NewCachedGeocoder(provider, store, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start batch lookup pipeline (feature-flagged via KAFKA_ENABLED).
	pipelineDone := make(chan struct{})
	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, namedCloser{"kafka reader", reader}, namedCloser{"kafka writer", writer})

		p := pipeline.New(reader, pipeline.NewTransformer(geocoder, logger), writer, logger, metrics, cfg.BatchSize)
		ready = append(ready, p)

		go func() {
			defer close(pipelineDone)
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		close(pipelineDone)
		logger.Info("kafka lookup pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, geocoder, ready, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Error(c.name+" close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

type namedCloser struct {
	name string
	io.Closer
}

// newStore builds the configured cache backend along with its readiness
// checks and resources to release on shutdown.
func newStore(cfg *config.Config, logger *slog.Logger) (cache.Store, observability.ReadinessChecks, []namedCloser, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		store := cache.NewRedisStore(redis.NewClient(opt), cfg.CacheTTL)
		logger.Info("geocode cache enabled", "backend", cfg.CacheBackend, "addr", opt.Addr, "ttl", cfg.CacheTTL)
		return store, observability.ReadinessChecks{store}, []namedCloser{{"redis", store}}, nil
	case config.CacheNone:
		logger.Info("geocode cache disabled")
		return cache.Noop{}, observability.ReadinessChecks{}, nil, nil
	default:
		logger.Info("geocode cache enabled", "backend", cfg.CacheBackend, "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
		return cache.NewMemoryStore(cfg.CacheSize, cfg.CacheTTL, nil), observability.ReadinessChecks{}, nil, nil
	}
}
