package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/llmtrace/llmtrace/internal/analytics"
)

// AnalyticsExecutor runs compiled analytics statements on the pgx pool
type AnalyticsExecutor struct {
	pool *pgxpool.Pool
}

// NewAnalyticsExecutor creates a new analytics executor
func NewAnalyticsExecutor(pool *pgxpool.Pool) *AnalyticsExecutor {
	return &AnalyticsExecutor{pool: pool}
}

// ExecuteCompiledQuery runs stmt and returns one map per row keyed by the
// statement's output column names
func (e *AnalyticsExecutor) ExecuteCompiledQuery(ctx context.Context, stmt analytics.Statement) ([]map[string]any, error) {
	rows, err := e.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute analytics query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := make([]map[string]any, 0)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read analytics row: %w", err)
		}

		row := make(map[string]any, len(fields))
		for i, field := range fields {
			row[field.Name] = driverValue(field.DataTypeOID, values[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analytics rows: %w", err)
	}
	return result, nil
}

// driverValue renders identifier columns as strings. Every other value is
// passed through for the result coercer.
func driverValue(oid uint32, v any) any {
	if oid != pgtype.UUIDOID {
		return v
	}
	switch id := v.(type) {
	case [16]byte:
		return uuid.UUID(id).String()
	case pgtype.UUID:
		if !id.Valid {
			return nil
		}
		return uuid.UUID(id.Bytes).String()
	}
	return v
}
