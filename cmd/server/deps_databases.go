package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/pkg/database"
	"github.com/llmtrace/llmtrace/internal/worker"
)

// Databases holds all database connections. Connections the configuration
// does not need stay nil.
type Databases struct {
	Postgres    *database.PostgresDB
	ClickHouse  *database.ClickHouseDB
	Redis       *database.RedisDB
	AsynqClient *asynq.Client
}

// initDatabases initializes the connections required by the storage backend
// and ingestion mode
func initDatabases(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Databases, error) {
	dbs := &Databases{}

	if cfg.Storage.Backend == config.StorageBackendPostgres {
		pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		dbs.Postgres = pgDB

		chDB, err := database.NewClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			dbs.Close()
			return nil, fmt.Errorf("failed to initialize ClickHouse: %w", err)
		}
		dbs.ClickHouse = chDB
	} else {
		logger.Warn("using in-memory storage; data is lost on restart")
	}

	if cfg.Ingestion.Queued() {
		redisDB, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			dbs.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		dbs.Redis = redisDB
		dbs.AsynqClient = asynq.NewClient(worker.RedisOpt(cfg.Redis))
	}

	return dbs, nil
}

// Close closes all database connections
func (d *Databases) Close() {
	if d.Postgres != nil {
		d.Postgres.Close()
	}
	if d.ClickHouse != nil {
		_ = d.ClickHouse.Close()
	}
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.AsynqClient != nil {
		_ = d.AsynqClient.Close()
	}
}
