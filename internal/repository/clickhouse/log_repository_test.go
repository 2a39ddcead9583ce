package clickhouse

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/domain"
	"github.com/llmtrace/llmtrace/internal/pkg/circuitbreaker"
	"github.com/llmtrace/llmtrace/internal/pkg/database"
)

func TestLogRepository_OpenBreakerFailsFast(t *testing.T) {
	ctx := context.Background()
	breaker := circuitbreaker.New(circuitbreaker.Config{Name: "test_logs", MaxFailures: 1, Timeout: time.Hour})
	_ = breaker.Execute(ctx, func(context.Context) error { return errors.New("connection refused") })
	require.Equal(t, circuitbreaker.StateOpen, breaker.State())

	// db is nil: an open breaker must reject before touching the connection
	repo := &LogRepository{breaker: breaker}
	err := repo.AppendLogRecord(ctx, &domain.LogRecord{
		ID:        uuid.NewString(),
		ProjectID: uuid.New(),
		Log:       "dropped",
		Timestamp: time.Now().UTC(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
}

// getTestDB returns a database connection for integration tests.
// Skips the test if the database is not available.
func getTestDB(t *testing.T) *database.ClickHouseDB {
	t.Helper()

	if os.Getenv("CLICKHOUSE_TEST_HOST") == "" {
		t.Skip("Skipping integration test: CLICKHOUSE_TEST_HOST not set")
		return nil
	}

	cfg := config.ClickHouseConfig{
		Host:     os.Getenv("CLICKHOUSE_TEST_HOST"),
		Port:     9000,
		Database: os.Getenv("CLICKHOUSE_TEST_DB"),
		User:     os.Getenv("CLICKHOUSE_TEST_USER"),
		Password: os.Getenv("CLICKHOUSE_TEST_PASS"),
	}

	if cfg.Database == "" {
		cfg.Database = "test_llmtrace"
	}

	db, err := database.NewClickHouse(context.Background(), cfg)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to ClickHouse: %v", err)
		return nil
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLogRepository_AppendIsNeverMerged(t *testing.T) {
	db := getTestDB(t)
	repo := NewLogRepository(db, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, repo.Migrate(ctx))

	projectID := uuid.New()
	traceID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i, msg := range []string{"first", "second"} {
		require.NoError(t, repo.AppendLogRecord(ctx, &domain.LogRecord{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			EventID:   "event-1",
			TraceID:   &traceID,
			Log:       map[string]any{"message": msg},
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
		}))
	}

	records, err := repo.ListByTrace(ctx, projectID, traceID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, map[string]any{"message": "first"}, records[0].Log)
	assert.Equal(t, map[string]any{"message": "second"}, records[1].Log)
	assert.Equal(t, "event-1", records[1].EventID)
	assert.Nil(t, records[0].ObservationID)
}
