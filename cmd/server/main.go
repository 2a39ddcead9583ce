package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/middleware"
	"github.com/llmtrace/llmtrace/internal/pkg/logger"
)

const appVersion = "0.1.0"

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
	log := logger.Log.Named("server")
	defer func() { _ = logger.Sync() }()

	// Initialize Sentry if a DSN is configured
	sentryEnabled, err := middleware.InitSentry(middleware.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Server.Env,
		Release:     "llmtrace@" + appVersion,
		SampleRate:  1.0,
	})
	if err != nil {
		log.Error("failed to initialize Sentry", zap.Error(err))
	}
	if sentryEnabled {
		log.Info("Sentry initialized", zap.String("environment", cfg.Server.Env))
		defer middleware.FlushSentry(5 * time.Second)
	}

	// Initialize dependencies
	deps, err := initDependencies(context.Background(), cfg, logger.Log)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "llmtrace API",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          errorHandler(log, sentryEnabled),
	})

	// Apply global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.NewLoggerMiddleware(middleware.DefaultLoggerConfig(logger.Log)).Handler())
	app.Use(middleware.RecoverWithSentry(logger.Log, sentryEnabled))
	app.Use(middleware.NewMetricsMiddleware(middleware.DefaultMetricsConfig()).Handler())

	// Register routes
	registerRoutes(app, deps)

	// Start server
	go func() {
		addr := cfg.Server.Addr()
		log.Info("starting server",
			zap.String("addr", addr),
			zap.String("storage_backend", cfg.Storage.Backend),
			zap.String("ingestion_mode", cfg.Ingestion.Mode),
		)
		if err := app.Listen(addr); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}

// errorHandler creates a custom error handler
func errorHandler(log *zap.Logger, sentryEnabled bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		log.Error("request error",
			zap.Int("status", code),
			zap.String("error", err.Error()),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
		)

		// Report to Sentry for 5xx errors
		if sentryEnabled && code >= fiber.StatusInternalServerError {
			middleware.CaptureError(c, err)
		}

		return c.Status(code).JSON(fiber.Map{
			"error":   message,
			"message": message,
		})
	}
}
