// Package id provides identifier generation for llmtrace.
//
// This package generates:
//   - W3C-style trace IDs (32 hex characters) for implicitly created traces
//   - UUID v4 identifiers for scores, log records and id-less entities
//
// # Performance
//
// Trace ID generation uses sync.Pool to minimize allocations in hot paths.
// All functions are safe for concurrent use.
package id
