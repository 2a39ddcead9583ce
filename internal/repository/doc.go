// Package repository contains data access implementations for llmtrace.
//
// Repository interfaces are defined at the service layer (consumer-defined
// interfaces). The subpackages hold the concrete implementations:
//   - postgres: Traces, observations and scores, plus analytics execution
//   - clickhouse: Append-only SDK log records
//   - memory: In-process maps for tests and storage_backend=memory
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use.
// Connection pools are managed at the database layer.
package repository
