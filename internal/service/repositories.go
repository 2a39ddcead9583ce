package service

import (
	"context"

	"github.com/llmtrace/llmtrace/internal/analytics"
	"github.com/llmtrace/llmtrace/internal/domain"
)

// EntityRepository persists traces, observations and scores.
// Entity ids are unique across projects; loaded entities carry their owning
// project so callers can detect cross-tenant access.
// Get methods return an apperrors NotFound error when the id does not exist.
// All methods must be safe for concurrent use.
type EntityRepository interface {
	// GetTrace loads a trace by id.
	GetTrace(ctx context.Context, id string) (*domain.Trace, error)
	// UpsertTrace inserts the trace or replaces the stored row with the same id.
	UpsertTrace(ctx context.Context, trace *domain.Trace) error
	// GetObservation loads an observation by id.
	GetObservation(ctx context.Context, id string) (*domain.Observation, error)
	// UpsertObservation inserts the observation or replaces the stored row.
	UpsertObservation(ctx context.Context, obs *domain.Observation) error
	// GetScore loads a score by id.
	GetScore(ctx context.Context, id string) (*domain.Score, error)
	// UpsertScore inserts the score or replaces the stored row.
	UpsertScore(ctx context.Context, score *domain.Score) error
	// WithEntityLock runs fn while holding an exclusive lock on key, so that
	// the load-merge-write in fn is atomic with respect to other writers of
	// the same entity. Repository calls made with the ctx passed to fn take
	// part in the same unit of work. Writers holding different keys never
	// block each other.
	WithEntityLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// LogRepository stores append-only SDK log records
type LogRepository interface {
	// AppendLogRecord persists one log record. Records are never merged.
	AppendLogRecord(ctx context.Context, record *domain.LogRecord) error
}

// AnalyticsExecutor runs compiled analytics statements
type AnalyticsExecutor interface {
	// ExecuteCompiledQuery runs stmt with its bound arguments and returns raw
	// driver values keyed by output column name.
	ExecuteCompiledQuery(ctx context.Context, stmt analytics.Statement) ([]map[string]any, error)
}
