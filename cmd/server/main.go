package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Claudio1052/Limpeza/internal/api"
	"github.com/Claudio1052/Limpeza/internal/config"
	"github.com/Claudio1052/Limpeza/internal/database"
	"github.com/Claudio1052/Limpeza/internal/domain"
	"github.com/Claudio1052/Limpeza/internal/events"
	"github.com/Claudio1052/Limpeza/internal/logging"
	"github.com/Claudio1052/Limpeza/internal/metrics"
	"github.com/Claudio1052/Limpeza/internal/repository"
	"github.com/Claudio1052/Limpeza/internal/service"
	"github.com/Claudio1052/Limpeza/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}
	logger := baseLogger.With().Str("component", "server-main").Logger()

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := domain.RealClock{}
	cacheTTL := time.Duration(cfg.Dashboard.CacheTTL) * time.Second

	cache, sessions, pruner := initStores(ctx, cfg, clock, cacheTTL, &logger)

	eventBus := events.NewEventBus()
	subscribeRequestEvents(eventBus, &logger)

	svc := service.NewRequestService(db, cache, eventBus, clock, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	janitor := worker.NewJanitor(cfg.Exports, cfg.Backup, pruner, clock, &logger)
	go janitor.Start(ctx)

	server := api.NewHTTPServer(cfg, svc, sessions, &logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// initStores picks the cache and session backends. With Redis enabled both
// are Redis-backed and list results survive restarts; the cache still falls
// back to memory if Redis goes away. Without Redis everything is in-process.
func initStores(ctx context.Context, cfg *config.Config, clock domain.Clock, cacheTTL time.Duration, logger *zerolog.Logger) (domain.ResultCache, domain.SessionRepository, worker.SessionPruner) {
	memCache := repository.NewMemoryResultCache(cacheTTL, clock)

	if !cfg.Redis.Enabled {
		memSessions := repository.NewMemorySessionRepository(clock)
		return memCache, memSessions, memSessions
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("Redis unreachable at startup, cache will fail over")
	}

	cache := repository.NewFailoverResultCache(
		repository.NewRedisResultCache(client, cacheTTL),
		memCache,
		logger,
	)
	return cache, repository.NewRedisSessionRepository(client), nil
}

func subscribeRequestEvents(bus *events.EventBus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventRequestCreated,
		events.EventRequestUpdated,
		events.EventRequestDeleted,
	} {
		bus.Subscribe(eventType, func(event *events.Event) error {
			logger.Info().
				Str("event", event.Type).
				RawJSON("payload", event.Payload).
				Msg("Request event")
			return nil
		})
	}
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info().Str("addr", addr).Msg("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server error")
	}
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." && cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Msg("Failed to create database directory")
			return err
		}
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("Failed to create exports directory")
		return err
	}
	return nil
}
