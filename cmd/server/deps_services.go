package main

import (
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/service"
)

// Services holds all service instances
type Services struct {
	Ingestion *service.IngestionService
	Analytics *service.AnalyticsService
}

// initServices initializes all services
func initServices(cfg *config.Config, repos *Repositories, logger *zap.Logger) *Services {
	svcs := &Services{
		Ingestion: service.NewIngestionService(logger, repos.Entities, repos.Logs, cfg.Ingestion.EventTimeout),
	}
	if repos.Analytics != nil {
		svcs.Analytics = service.NewAnalyticsService(logger, repos.Analytics)
	}
	return svcs
}
