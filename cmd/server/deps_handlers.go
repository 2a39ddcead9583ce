package main

import (
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/handler"
	"github.com/llmtrace/llmtrace/internal/worker"
)

// Handlers holds all handler instances
type Handlers struct {
	Health    *handler.HealthHandler
	Ingestion *handler.IngestionHandler
	Analytics *handler.AnalyticsHandler
}

// initHandlers initializes all handlers. Analytics is nil when the storage
// backend cannot execute SQL.
func initHandlers(cfg *config.Config, dbs *Databases, svcs *Services, logger *zap.Logger) *Handlers {
	health := handler.NewHealthHandler(appVersion)
	if dbs.Postgres != nil {
		health.AddCheck("postgres", dbs.Postgres)
	}
	if dbs.ClickHouse != nil {
		health.AddCheck("clickhouse", dbs.ClickHouse)
	}
	if dbs.Redis != nil {
		health.AddCheck("redis", dbs.Redis)
	}

	var enqueuer handler.BatchEnqueuer
	if dbs.AsynqClient != nil {
		enqueuer = worker.NewQueueEnqueuer(dbs.AsynqClient, cfg.Worker.QueueCritical)
	}

	h := &Handlers{
		Health:    health,
		Ingestion: handler.NewIngestionHandler(svcs.Ingestion, enqueuer, cfg.Ingestion.MaxBatchSize, logger),
	}
	if svcs.Analytics != nil {
		h.Analytics = handler.NewAnalyticsHandler(svcs.Analytics, logger)
	}
	return h
}
