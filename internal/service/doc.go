// Package service contains the business logic layer for llmtrace.
//
// Services coordinate between handlers and repositories, implementing
// domain rules and orchestrating operations across repositories.
//
// Services depend on repository interfaces defined in this package,
// following the dependency inversion principle:
//   - IngestionService runs the batch ingestion pipeline
//   - AnalyticsService compiles and executes declarative queries
//
// # Thread Safety
//
// All services are safe for concurrent use from multiple goroutines.
// A single batch is always processed sequentially.
package service
