package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/analytics"
	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
	"github.com/llmtrace/llmtrace/internal/pkg/metrics"
	"github.com/llmtrace/llmtrace/internal/validator"
)

// AnalyticsService answers declarative analytics queries.
//
// A request is validated, scoped to the caller's project, compiled into a
// single parameterized statement, executed, and its rows coerced to
// numbers, strings, timestamps and nulls. Compile and coercion failures fail
// the whole request.
type AnalyticsService struct {
	executor AnalyticsExecutor
	logger   *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(logger *zap.Logger, executor AnalyticsExecutor) *AnalyticsService {
	return &AnalyticsService{
		executor: executor,
		logger:   logger.Named("analytics"),
	}
}

// Execute runs req for projectID and returns rows keyed by output alias.
//
// Parameters:
//   - ctx: Context for cancellation
//   - projectID: Tenant of the authenticated caller
//   - req: Declarative query request
//
// Returns the coerced rows, or a VALIDATION_ERROR, COMPILE_ERROR,
// UNSUPPORTED_TYPE or storage error.
func (s *AnalyticsService) Execute(ctx context.Context, projectID uuid.UUID, req *domain.QueryRequest) (*domain.QueryResult, error) {
	table := string(req.From)
	if _, err := analytics.LookupTable(req.From); err != nil {
		table = "unknown"
	}

	result, err := s.execute(ctx, projectID, req)
	if err != nil {
		metrics.RecordAnalyticsQuery(table, apperrors.GetCode(err))
		return nil, err
	}
	metrics.RecordAnalyticsQuery(table, "success")
	return result, nil
}

func (s *AnalyticsService) execute(ctx context.Context, projectID uuid.UUID, req *domain.QueryRequest) (*domain.QueryResult, error) {
	if err := validator.Validate(req); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	stmt, err := analytics.CompileForProject(projectID.String(), *req)
	if err != nil {
		s.logger.Warn("query compilation failed",
			zap.String("project_id", projectID.String()),
			zap.String("table", string(req.From)),
			zap.Error(err),
		)
		return nil, err
	}

	rows, err := s.executor.ExecuteCompiledQuery(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("execute analytics query: %w", err)
	}

	coerced, err := analytics.CoerceRows(rows)
	if err != nil {
		s.logger.Error("result coercion failed", zap.String("table", string(req.From)), zap.Error(err))
		return nil, err
	}

	return &domain.QueryResult{Rows: coerced}, nil
}
