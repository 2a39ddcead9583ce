package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/middleware"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	Databases    *Databases
	Repositories *Repositories
	Services     *Services
	Handlers     *Handlers

	AuthMiddleware *middleware.AuthMiddleware
}

// initDependencies initializes all dependencies
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	keys, err := middleware.NewAPIKeyStore(cfg.Auth.APIKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to load api keys: %w", err)
	}
	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("no api keys configured; every public request will be rejected")
	}

	dbs, err := initDatabases(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	repos, err := initRepositories(ctx, dbs, logger)
	if err != nil {
		dbs.Close()
		return nil, err
	}

	svcs := initServices(cfg, repos, logger)

	return &Dependencies{
		Config:         cfg,
		Logger:         logger,
		Databases:      dbs,
		Repositories:   repos,
		Services:       svcs,
		Handlers:       initHandlers(cfg, dbs, svcs, logger),
		AuthMiddleware: middleware.NewAuthMiddleware(keys),
	}, nil
}

// Close releases all connections
func (d *Dependencies) Close() {
	d.Databases.Close()
}
