// Package handler contains HTTP request handlers for llmtrace.
//
// Handlers are the entry point for HTTP requests, responsible for:
//   - Request parsing
//   - Authentication context extraction
//   - Calling the ingestion pipeline or the analytics compiler
//   - Response formatting and error mapping
//
// # Route Organization
//
//   - /api/public/ingestion - Batch ingestion (API key authentication)
//   - /api/public/analytics/query - Declarative analytics queries (API key authentication)
//   - /health, /livez, /readyz, /version - Probes (no auth required)
//
// # Error Handling
//
// Handlers convert AppErrors to their HTTP status codes. A processed
// ingestion batch always answers 207 Multi-Status; per-event failures are
// reported in the body, never as the response status.
//
// # Thread Safety
//
// All handlers are safe for concurrent use.
package handler
