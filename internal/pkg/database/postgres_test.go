package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTruncateSQL(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		maxLen   int
		expected string
	}{
		{"short SQL unchanged", "SELECT * FROM traces", 100, "SELECT * FROM traces"},
		{"exactly at max length", "SELECT * FROM traces", 20, "SELECT * FROM traces"},
		{"truncated with ellipsis", "SELECT * FROM traces WHERE id = $1", 20, "SELECT * FROM traces..."},
		{"empty string", "", 10, ""},
		{"max length of 0", "SELECT", 0, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateSQL(tt.sql, tt.maxLen))
		})
	}
}

func TestQueryOperation(t *testing.T) {
	tests := []struct {
		sql      string
		expected string
	}{
		{"SELECT 1", "select"},
		{"  WITH date_series AS (SELECT 1) SELECT 2", "with"},
		{"INSERT INTO traces (id) VALUES ($1)", "insert"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, QueryOperation(tt.sql))
		})
	}
}

func startedContext(sql string, startedAt time.Time) context.Context {
	ctx := context.WithValue(context.Background(), queryStartKey{}, startedAt)
	ctx = context.WithValue(ctx, querySQLKey{}, sql)
	return context.WithValue(ctx, queryArgsKey{}, 0)
}

func TestQueryTracerTraceQueryStart(t *testing.T) {
	tracer := newQueryTracer(false)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{
		SQL:  "SELECT * FROM traces WHERE id = $1 AND project_id = $2",
		Args: []any{"t-1", "p-1"},
	})

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	assert.True(t, ok)
	assert.False(t, start.IsZero())
	assert.Equal(t, "SELECT * FROM traces WHERE id = $1 AND project_id = $2", ctx.Value(querySQLKey{}))
	assert.Equal(t, 2, ctx.Value(queryArgsKey{}))
}

func TestQueryTracerTraceQueryEnd(t *testing.T) {
	t.Run("counts successful queries", func(t *testing.T) {
		tracer := newQueryTracer(true)
		tracer.TraceQueryEnd(startedContext("SELECT 1", time.Now()), nil, pgx.TraceQueryEndData{CommandTag: pgconn.CommandTag{}})

		m := tracer.GetMetrics()
		assert.Equal(t, int64(1), m.TotalQueries)
		assert.Equal(t, int64(0), m.FailedQueries)
	})

	t.Run("counts failed queries", func(t *testing.T) {
		tracer := newQueryTracer(false)
		tracer.TraceQueryEnd(startedContext("SELECT 1", time.Now()), nil, pgx.TraceQueryEndData{Err: errors.New("connection refused")})

		m := tracer.GetMetrics()
		assert.Equal(t, int64(1), m.TotalQueries)
		assert.Equal(t, int64(1), m.FailedQueries)
	})

	t.Run("counts slow queries and duration", func(t *testing.T) {
		tracer := newQueryTracer(false)
		tracer.TraceQueryEnd(startedContext("SELECT pg_sleep(1)", time.Now().Add(-150*time.Millisecond)), nil, pgx.TraceQueryEndData{})

		m := tracer.GetMetrics()
		assert.Equal(t, int64(1), m.SlowQueries)
		assert.GreaterOrEqual(t, m.TotalDurationMs, int64(150))
	})

	t.Run("ignores queries without a start time", func(t *testing.T) {
		tracer := newQueryTracer(false)
		tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

		assert.Equal(t, QueryMetrics{}, tracer.GetMetrics())
	})
}

func TestPostgresDBClose(t *testing.T) {
	db := &PostgresDB{}
	assert.NotPanics(t, db.Close)
	assert.Equal(t, QueryMetrics{}, db.Metrics())
}
