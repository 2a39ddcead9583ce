package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/repository/clickhouse"
	"github.com/llmtrace/llmtrace/internal/repository/memory"
	"github.com/llmtrace/llmtrace/internal/repository/postgres"
	"github.com/llmtrace/llmtrace/internal/service"
)

// Repositories holds the storage implementations chosen by the backend
type Repositories struct {
	Entities  service.EntityRepository
	Logs      service.LogRepository
	Analytics service.AnalyticsExecutor
}

// initRepositories creates repositories and applies schema migrations.
// The memory backend has no SQL engine, so Analytics stays nil.
func initRepositories(ctx context.Context, dbs *Databases, logger *zap.Logger) (*Repositories, error) {
	if dbs.Postgres == nil {
		return &Repositories{
			Entities: memory.NewEntityRepository(),
			Logs:     memory.NewLogRepository(),
		}, nil
	}

	if err := postgres.Migrate(ctx, dbs.Postgres.SQL); err != nil {
		return nil, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
	}

	logRepo := clickhouse.NewLogRepository(dbs.ClickHouse, logger)
	if err := logRepo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate ClickHouse: %w", err)
	}

	return &Repositories{
		Entities:  postgres.NewEntityRepository(dbs.Postgres.SQL, logger),
		Logs:      logRepo,
		Analytics: postgres.NewAnalyticsExecutor(dbs.Postgres.Pool),
	}, nil
}
