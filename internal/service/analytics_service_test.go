package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/analytics"
	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// MockAnalyticsExecutor is a mock implementation of AnalyticsExecutor
type MockAnalyticsExecutor struct {
	mock.Mock
}

func (m *MockAnalyticsExecutor) ExecuteCompiledQuery(ctx context.Context, stmt analytics.Statement) ([]map[string]any, error) {
	args := m.Called(ctx, stmt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

func countTraces() *domain.QueryRequest {
	count := domain.AggregateCount
	return &domain.QueryRequest{
		From:   domain.TableTraces,
		Select: []domain.SelectColumn{{Column: "traceId", Agg: &count}},
	}
}

func TestAnalyticsService_Execute(t *testing.T) {
	executor := new(MockAnalyticsExecutor)
	svc := NewAnalyticsService(zap.NewNop(), executor)
	projectID := uuid.New()

	executor.On("ExecuteCompiledQuery", mock.Anything, mock.MatchedBy(func(stmt analytics.Statement) bool {
		return stmt.SQL == `SELECT COUNT(t."id") AS "countTraceId" FROM traces t WHERE t."project_id" = $1` &&
			len(stmt.Args) == 1 && stmt.Args[0] == projectID.String()
	})).Return([]map[string]any{{"countTraceId": int64(7)}}, nil)

	result, err := svc.Execute(context.Background(), projectID, countTraces())
	require.NoError(t, err)

	assert.Equal(t, []map[string]any{{"countTraceId": 7.0}}, result.Rows)
	executor.AssertExpectations(t)
}

func TestAnalyticsService_CompileErrorNeverExecutes(t *testing.T) {
	executor := new(MockAnalyticsExecutor)
	svc := NewAnalyticsService(zap.NewNop(), executor)

	req := countTraces()
	req.Select = append(req.Select, domain.SelectColumn{Column: "nope"})

	_, err := svc.Execute(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsCompile(err))
	executor.AssertNotCalled(t, "ExecuteCompiledQuery", mock.Anything, mock.Anything)
}

func TestAnalyticsService_ValidationError(t *testing.T) {
	executor := new(MockAnalyticsExecutor)
	svc := NewAnalyticsService(zap.NewNop(), executor)

	_, err := svc.Execute(context.Background(), uuid.New(), &domain.QueryRequest{From: domain.TableTraces})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	executor.AssertNotCalled(t, "ExecuteCompiledQuery", mock.Anything, mock.Anything)
}

func TestAnalyticsService_UnsupportedType(t *testing.T) {
	executor := new(MockAnalyticsExecutor)
	svc := NewAnalyticsService(zap.NewNop(), executor)

	executor.On("ExecuteCompiledQuery", mock.Anything, mock.Anything).
		Return([]map[string]any{{"countTraceId": true}}, nil)

	_, err := svc.Execute(context.Background(), uuid.New(), countTraces())
	require.Error(t, err)
	assert.True(t, apperrors.IsUnsupportedType(err))
}

func TestAnalyticsService_ExecutorError(t *testing.T) {
	executor := new(MockAnalyticsExecutor)
	svc := NewAnalyticsService(zap.NewNop(), executor)

	dbErr := errors.New("connection refused")
	executor.On("ExecuteCompiledQuery", mock.Anything, mock.Anything).Return(nil, dbErr)

	_, err := svc.Execute(context.Background(), uuid.New(), countTraces())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}
