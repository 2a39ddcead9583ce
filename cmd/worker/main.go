package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/pkg/database"
	"github.com/llmtrace/llmtrace/internal/pkg/logger"
	chrepo "github.com/llmtrace/llmtrace/internal/repository/clickhouse"
	pgrepo "github.com/llmtrace/llmtrace/internal/repository/postgres"
	"github.com/llmtrace/llmtrace/internal/service"
	"github.com/llmtrace/llmtrace/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.Log
	defer func() { _ = logger.Sync() }()

	if cfg.Storage.Backend != config.StorageBackendPostgres {
		log.Fatal("worker requires the postgres storage backend",
			zap.String("storage_backend", cfg.Storage.Backend))
	}

	log.Info("starting worker service")

	// Initialize dependencies
	ingestion, cleanup, err := initIngestionService(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer cleanup()

	workerServer := worker.NewServer(log, cfg, ingestion)

	// Start worker in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- workerServer.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down worker...")
		workerServer.Stop()
	case err := <-errCh:
		if err != nil {
			log.Error("worker server error", zap.Error(err))
		}
	}

	log.Info("worker stopped")
}

// initIngestionService wires the ingestion pipeline onto PostgreSQL and ClickHouse
func initIngestionService(cfg *config.Config, log *zap.Logger) (*service.IngestionService, func(), error) {
	ctx := context.Background()

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	chDB, err := database.NewClickHouse(ctx, cfg.ClickHouse)
	if err != nil {
		pgDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize ClickHouse: %w", err)
	}

	cleanup := func() {
		pgDB.Close()
		_ = chDB.Close()
	}

	entities := pgrepo.NewEntityRepository(pgDB.SQL, log)
	logs := chrepo.NewLogRepository(chDB, log)

	return service.NewIngestionService(log, entities, logs, cfg.Ingestion.EventTimeout), cleanup, nil
}
