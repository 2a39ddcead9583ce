package database

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver for sqlx
	"go.uber.org/zap"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/pkg/logger"
	"github.com/llmtrace/llmtrace/internal/pkg/metrics"
)

const slowQueryThreshold = 100 * time.Millisecond

// PostgresDB holds the two PostgreSQL handles used by the repositories.
// Pool serves compiled analytics queries; SQL serves entity reads and writes.
type PostgresDB struct {
	Pool *pgxpool.Pool
	SQL  *sqlx.DB

	tracer *queryTracer
}

// NewPostgres creates a new PostgreSQL connection pool
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresDB, error) {
	dsn := cfg.DSN()

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	tracer := newQueryTracer(logger.IsDebug())
	poolConfig.ConnConfig.Tracer = tracer

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	sqlDB, err := sqlx.Open("postgres", dsn)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to open postgres sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(int(cfg.MaxConns))
	sqlDB.SetMaxIdleConns(int(cfg.MinConns))
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		pool.Close()
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping postgres sql handle: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int32("max_conns", cfg.MaxConns),
	)

	return &PostgresDB{Pool: pool, SQL: sqlDB, tracer: tracer}, nil
}

// Ping checks both handles
func (db *PostgresDB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return err
	}
	return db.SQL.PingContext(ctx)
}

// Close closes the connection pool and the sql handle
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.SQL != nil {
		_ = db.SQL.Close()
	}
}

// QueryMetrics is a snapshot of the pool's query counters
type QueryMetrics struct {
	TotalQueries    int64
	SlowQueries     int64
	FailedQueries   int64
	TotalDurationMs int64
}

// Metrics returns the query counters of the pgx pool
func (db *PostgresDB) Metrics() QueryMetrics {
	if db.tracer == nil {
		return QueryMetrics{}
	}
	return db.tracer.GetMetrics()
}

// queryTracer implements pgx.QueryTracer for logging and metrics
type queryTracer struct {
	enableDebug bool
	metrics     *queryCounters
}

type queryCounters struct {
	totalQueries    atomic.Int64
	slowQueries     atomic.Int64
	failedQueries   atomic.Int64
	totalDurationMs atomic.Int64
}

type queryStartKey struct{}
type querySQLKey struct{}
type queryArgsKey struct{}

func newQueryTracer(enableDebug bool) *queryTracer {
	return &queryTracer{
		enableDebug: enableDebug,
		metrics:     &queryCounters{},
	}
}

// GetMetrics returns a copy of the current counters
func (t *queryTracer) GetMetrics() QueryMetrics {
	return QueryMetrics{
		TotalQueries:    t.metrics.totalQueries.Load(),
		SlowQueries:     t.metrics.slowQueries.Load(),
		FailedQueries:   t.metrics.failedQueries.Load(),
		TotalDurationMs: t.metrics.totalDurationMs.Load(),
	}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx = context.WithValue(ctx, queryStartKey{}, time.Now())
	ctx = context.WithValue(ctx, querySQLKey{}, data.SQL)
	ctx = context.WithValue(ctx, queryArgsKey{}, len(data.Args))
	return ctx
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}

	duration := time.Since(start)
	sql, _ := ctx.Value(querySQLKey{}).(string)
	operation := QueryOperation(sql)

	t.metrics.totalQueries.Add(1)
	t.metrics.totalDurationMs.Add(duration.Milliseconds())
	metrics.RecordDBQuery("postgres", operation, duration)

	if data.Err != nil {
		t.metrics.failedQueries.Add(1)
		metrics.RecordDBError("postgres", operation)
	}

	if duration > slowQueryThreshold {
		t.metrics.slowQueries.Add(1)
		logger.Warn("slow query detected",
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.String("sql", truncateSQL(sql, 200)),
		)
	} else if t.enableDebug {
		args, _ := ctx.Value(queryArgsKey{}).(int)
		logger.Log.Debug("query executed",
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.Int("args", args),
			zap.String("sql", truncateSQL(sql, 200)),
		)
	}
}

// QueryOperation returns the lower-cased leading keyword of a statement
func QueryOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

func truncateSQL(sql string, maxLen int) string {
	if len(sql) <= maxLen {
		return sql
	}
	return sql[:maxLen] + "..."
}
