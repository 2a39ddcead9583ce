// Package clickhouse stores append-only SDK log records in ClickHouse.
//
// Appends go through a circuit breaker, so while ClickHouse is unreachable
// sdk-log events fail fast instead of each waiting out its timeout.
package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/domain"
	"github.com/llmtrace/llmtrace/internal/pkg/circuitbreaker"
	"github.com/llmtrace/llmtrace/internal/pkg/database"
)

const createSDKLogsTable = `
	CREATE TABLE IF NOT EXISTS sdk_logs (
		id             String,
		project_id     UUID,
		event_id       String,
		trace_id       Nullable(String),
		observation_id Nullable(String),
		log            String,
		timestamp      DateTime64(3, 'UTC')
	)
	ENGINE = MergeTree
	PARTITION BY toYYYYMM(timestamp)
	ORDER BY (project_id, timestamp, id)
`

// LogRepository handles sdk-log records in ClickHouse
type LogRepository struct {
	db      *database.ClickHouseDB
	breaker *circuitbreaker.CircuitBreaker
}

// NewLogRepository creates a new log repository
func NewLogRepository(db *database.ClickHouseDB, logger *zap.Logger) *LogRepository {
	logger = logger.Named("clickhouse_logs")
	cfg := circuitbreaker.DefaultConfig("clickhouse_logs")
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return &LogRepository{
		db:      db,
		breaker: circuitbreaker.New(cfg),
	}
}

// Migrate creates the sdk_logs table if it does not exist
func (r *LogRepository) Migrate(ctx context.Context) error {
	if err := r.db.Conn.Exec(ctx, createSDKLogsTable); err != nil {
		return fmt.Errorf("failed to create sdk_logs table: %w", err)
	}
	return nil
}

// AppendLogRecord inserts one log record
func (r *LogRepository) AppendLogRecord(ctx context.Context, record *domain.LogRecord) error {
	payload, err := json.Marshal(record.Log)
	if err != nil {
		return fmt.Errorf("failed to encode log payload: %w", err)
	}

	query := `
		INSERT INTO sdk_logs (id, project_id, event_id, trace_id, observation_id, log, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err = r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.db.Conn.Exec(ctx, query,
			record.ID,
			record.ProjectID,
			record.EventID,
			record.TraceID,
			record.ObservationID,
			string(payload),
			record.Timestamp,
		)
	})
	if err != nil {
		return fmt.Errorf("failed to insert log record: %w", err)
	}
	return nil
}

// ListByTrace returns the log records of a trace in timestamp order
func (r *LogRepository) ListByTrace(ctx context.Context, projectID uuid.UUID, traceID string) ([]domain.LogRecord, error) {
	query := `
		SELECT id, project_id, event_id, trace_id, observation_id, log, timestamp
		FROM sdk_logs
		WHERE project_id = ? AND trace_id = ?
		ORDER BY timestamp, id
	`

	rows, err := r.db.Conn.Query(ctx, query, projectID, traceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query log records: %w", err)
	}
	defer rows.Close()

	var records []domain.LogRecord
	for rows.Next() {
		var (
			rec     domain.LogRecord
			payload string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.ProjectID,
			&rec.EventID,
			&rec.TraceID,
			&rec.ObservationID,
			&payload,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan log record: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &rec.Log); err != nil {
			return nil, fmt.Errorf("failed to decode log payload: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
