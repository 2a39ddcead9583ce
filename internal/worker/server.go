package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
)

// Server is the worker server
type Server struct {
	logger *zap.Logger
	config *config.Config
	server *asynq.Server
	mux    *asynq.ServeMux
}

// RedisOpt builds the asynq connection options from config
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewServer creates a new worker server
func NewServer(
	logger *zap.Logger,
	cfg *config.Config,
	processor BatchProcessor,
) *Server {
	logger = logger.Named("worker")

	server := asynq.NewServer(
		RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				cfg.Worker.QueueCritical: 6,
				cfg.Worker.QueueDefault:  3,
				cfg.Worker.QueueLow:      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task processing failed",
					zap.String("type", task.Type()),
					zap.Error(err),
				)
			}),
			Logger: &asynqLogger{logger: logger},
		},
	)

	return &Server{
		logger: logger,
		config: cfg,
		server: server,
		mux:    NewServeMux(logger, processor),
	}
}

// NewServeMux registers every task handler
func NewServeMux(logger *zap.Logger, processor BatchProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeIngestionBatch, NewIngestionWorker(logger, processor).ProcessTask)
	return mux
}

// Start starts the worker server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("starting worker server",
		zap.Int("concurrency", s.config.Worker.Concurrency),
	)

	if err := s.server.Run(s.mux); err != nil {
		return fmt.Errorf("worker server stopped: %w", err)
	}
	return nil
}

// Stop stops the worker server
func (s *Server) Stop() {
	s.server.Shutdown()
}

// asynqLogger adapts zap.Logger to asynq.Logger
type asynqLogger struct {
	logger *zap.Logger
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
