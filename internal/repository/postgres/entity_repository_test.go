package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/analytics"
	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
	"github.com/llmtrace/llmtrace/internal/pkg/id"
)

func strPtr(s string) *string { return &s }

func newTestTrace(projectID uuid.UUID, now time.Time) *domain.Trace {
	return &domain.Trace{
		ID:        id.NewTraceID(),
		ProjectID: projectID,
		Timestamp: now,
		Name:      strPtr("chat-request"),
		UserID:    strPtr("user-1"),
		Tags:      []string{"prod", "v2"},
		Metadata:  map[string]any{"region": "eu", "nested": map[string]any{"a": float64(1)}},
		Input:     "hello",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEntityRepository_TraceRoundTrip(t *testing.T) {
	db := getTestDB(t)
	repo := NewEntityRepository(db.SQL, zap.NewNop())
	ctx := context.Background()
	projectID := uuid.New()
	defer cleanupProject(t, db, projectID.String())

	now := time.Now().UTC().Truncate(time.Microsecond)
	trace := newTestTrace(projectID, now)
	require.NoError(t, repo.UpsertTrace(ctx, trace))

	fetched, err := repo.GetTrace(ctx, trace.ID)
	require.NoError(t, err)
	assert.Equal(t, projectID, fetched.ProjectID)
	assert.Equal(t, "chat-request", *fetched.Name)
	assert.Equal(t, []string{"prod", "v2"}, fetched.Tags)
	assert.Equal(t, trace.Metadata, fetched.Metadata)
	assert.Equal(t, "hello", fetched.Input)
	assert.Nil(t, fetched.Output)
	assert.True(t, now.Equal(fetched.Timestamp))

	trace.Name = strPtr("renamed")
	trace.Tags = nil
	require.NoError(t, repo.UpsertTrace(ctx, trace))

	fetched, err = repo.GetTrace(ctx, trace.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", *fetched.Name)
	assert.Equal(t, []string{}, fetched.Tags)
}

func TestEntityRepository_ObservationAndScoreRoundTrip(t *testing.T) {
	db := getTestDB(t)
	repo := NewEntityRepository(db.SQL, zap.NewNop())
	ctx := context.Background()
	projectID := uuid.New()
	defer cleanupProject(t, db, projectID.String())

	now := time.Now().UTC().Truncate(time.Microsecond)
	end := now.Add(1500 * time.Millisecond)
	trace := newTestTrace(projectID, now)
	require.NoError(t, repo.UpsertTrace(ctx, trace))

	obs := &domain.Observation{
		ID:                uuid.NewString(),
		TraceID:           trace.ID,
		ProjectID:         projectID,
		Type:              domain.ObservationTypeGeneration,
		StartTime:         now,
		EndTime:           &end,
		StartTimeExplicit: true,
		Level:             domain.LevelDefault,
		Model:             strPtr("gpt-4o"),
		ModelParameters:   map[string]any{"temperature": 0.2},
		Usage:             domain.Usage{Unit: domain.UsageUnitTokens, PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, repo.UpsertObservation(ctx, obs))

	fetchedObs, err := repo.GetObservation(ctx, obs.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ObservationTypeGeneration, fetchedObs.Type)
	assert.Equal(t, obs.Usage, fetchedObs.Usage)
	assert.True(t, end.Equal(*fetchedObs.EndTime))
	assert.Nil(t, fetchedObs.CompletionStartTime)
	assert.True(t, fetchedObs.StartTimeExplicit)
	assert.Equal(t, obs.ModelParameters, fetchedObs.ModelParameters)

	score := &domain.Score{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		TraceID:       trace.ID,
		ObservationID: &obs.ID,
		Name:          "accuracy",
		Value:         0.75,
		Timestamp:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repo.UpsertScore(ctx, score))

	fetchedScore, err := repo.GetScore(ctx, score.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.75, fetchedScore.Value)
	assert.Equal(t, obs.ID, *fetchedScore.ObservationID)
	assert.Nil(t, fetchedScore.Comment)
}

func TestEntityRepository_NotFound(t *testing.T) {
	db := getTestDB(t)
	repo := NewEntityRepository(db.SQL, zap.NewNop())
	ctx := context.Background()

	_, err := repo.GetTrace(ctx, "missing-"+uuid.NewString())
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetObservation(ctx, "missing-"+uuid.NewString())
	assert.True(t, apperrors.IsNotFound(err))

	_, err = repo.GetScore(ctx, "missing-"+uuid.NewString())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEntityRepository_WithEntityLockRollsBack(t *testing.T) {
	db := getTestDB(t)
	repo := NewEntityRepository(db.SQL, zap.NewNop())
	ctx := context.Background()
	projectID := uuid.New()
	defer cleanupProject(t, db, projectID.String())

	trace := newTestTrace(projectID, time.Now().UTC())
	boom := errors.New("boom")

	err := repo.WithEntityLock(ctx, "trace:"+trace.ID, func(ctx context.Context) error {
		require.NoError(t, repo.UpsertTrace(ctx, trace))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetTrace(ctx, trace.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEntityRepository_WithEntityLockSerializesWriters(t *testing.T) {
	db := getTestDB(t)
	repo := NewEntityRepository(db.SQL, zap.NewNop())
	ctx := context.Background()
	projectID := uuid.New()
	defer cleanupProject(t, db, projectID.String())

	trace := newTestTrace(projectID, time.Now().UTC())
	trace.Tags = []string{}
	require.NoError(t, repo.UpsertTrace(ctx, trace))

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithEntityLock(ctx, "trace:"+trace.ID, func(ctx context.Context) error {
				current, err := repo.GetTrace(ctx, trace.ID)
				if err != nil {
					return err
				}
				current.Tags = append(current.Tags, uuid.NewString())
				return repo.UpsertTrace(ctx, current)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	fetched, err := repo.GetTrace(ctx, trace.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Tags, writers)
}

func TestAnalyticsExecutor_ExecutesCompiledQuery(t *testing.T) {
	db := getTestDB(t)
	repo := NewEntityRepository(db.SQL, zap.NewNop())
	executor := NewAnalyticsExecutor(db.Pool)
	ctx := context.Background()
	projectID := uuid.New()
	defer cleanupProject(t, db, projectID.String())

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.UpsertTrace(ctx, newTestTrace(projectID, now)))
	}

	count := domain.AggregateCount
	stmt, err := analytics.CompileForProject(projectID.String(), domain.QueryRequest{
		From:   domain.TableTraces,
		Select: []domain.SelectColumn{{Column: "traceId", Agg: &count}},
		Filter: []domain.Filter{{
			Type:     domain.FilterTypeString,
			Column:   "userId",
			Operator: "=",
			Value:    "user-1'; DROP TABLE traces; --",
		}},
	})
	require.NoError(t, err)

	rows, err := executor.ExecuteCompiledQuery(ctx, stmt)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	coerced, err := analytics.CoerceRows(rows)
	require.NoError(t, err)
	assert.Equal(t, float64(0), coerced[0]["countTraceId"])
}
