package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/llmtrace/llmtrace/internal/pkg/database"
	"github.com/llmtrace/llmtrace/internal/pkg/metrics"
)

// instrumentedQuerier records every statement run through sqlx in the same
// database metrics the pgx pool tracer feeds
type instrumentedQuerier struct {
	sqlx.ExtContext
}

func (q instrumentedQuerier) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := q.ExtContext.ExecContext(ctx, query, args...)
	observeQuery(query, start, err)
	return res, err
}

func (q instrumentedQuerier) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := q.ExtContext.QueryContext(ctx, query, args...)
	observeQuery(query, start, err)
	return rows, err
}

func (q instrumentedQuerier) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	start := time.Now()
	rows, err := q.ExtContext.QueryxContext(ctx, query, args...)
	observeQuery(query, start, err)
	return rows, err
}

func (q instrumentedQuerier) QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row {
	start := time.Now()
	row := q.ExtContext.QueryRowxContext(ctx, query, args...)
	observeQuery(query, start, row.Err())
	return row
}

func observeQuery(query string, start time.Time, err error) {
	operation := database.QueryOperation(query)
	metrics.RecordDBQuery("postgres", operation, time.Since(start))
	if err != nil {
		metrics.RecordDBError("postgres", operation)
	}
}
