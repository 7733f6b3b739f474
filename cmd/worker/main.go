package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"docworker/internal/config"
	"docworker/internal/extractor"
	"docworker/internal/handler"
	"docworker/internal/lease"
	"docworker/internal/logger"
	"docworker/internal/repository/postgres"
	"docworker/internal/router"
	"docworker/internal/service"
	"docworker/internal/storage"
	"docworker/internal/summarizer"
	"docworker/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.Log, "docworker", os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, &cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	repo := postgres.NewDocumentRepo(db)

	blobs, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Provider, err)
	}

	ext, err := extractor.New(&cfg.Extractor, log.With().Str("component", "extractor").Logger())
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	sum, err := summarizer.New(&cfg.Summarizer, log.With().Str("component", "summarizer").Logger())
	if err != nil {
		return fmt.Errorf("failed to initialize summarizer: %w", err)
	}

	processor := service.NewDocumentProcessor(
		blobs,
		telemetry.NewExtractor(ext),
		telemetry.NewSummarizer(sum),
		log.With().Str("component", "processor").Logger(),
	)

	opts := []service.WorkerOption{service.WithMetrics(metrics)}
	if cfg.Redis.Enabled {
		client, err := lease.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		opts = append(opts, service.WithLease(lease.NewRedisLease(client, cfg.Redis.LeaseKey, cfg.Redis.LeaseTTL)))
	}

	worker, err := service.NewProcessingWorker(repo, processor, service.WorkerConfig{
		PollInterval:    cfg.Queue.PollInterval,
		DocumentTimeout: cfg.Queue.DocumentTimeout,
		StaleAfter:      cfg.Queue.StaleAfter,
		Logger:          log.With().Str("component", "worker").Logger(),
	}, opts...)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	srv := healthServer(cfg, repo, worker, log)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("health server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server failed")
			stop()
		}
	}()

	worker.Run(ctx)

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("health server shutdown failed")
	}
	return nil
}

func healthServer(cfg *config.Config, repo handler.Pinger, worker handler.WorkerStatusProvider, log zerolog.Logger) *http.Server {
	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.Setup(handler.NewHealthHandler(repo, worker), log.With().Str("component", "http").Logger())

	return &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
