// Package domain contains the core entities and types for llmtrace.
//
// This package defines:
//   - Entity types (Trace, Observation, Score, LogRecord)
//   - Ingestion envelopes and per-type event bodies
//   - Usage normalization
//   - Declarative analytics query requests
//
// # Design Philosophy
//
// Domain types are persistence-agnostic and represent the core
// concepts independent of how they are stored or transmitted.
//
// # Key Entities
//
//   - Trace: One logical execution, the root of the hierarchy
//   - Observation: A span, generation or event within a trace
//   - Score: A named numeric evaluation of a trace or observation
//   - LogRecord: An opaque, append-only SDK log line
//
// # Naming Conventions
//
// Types ending in "Body" are decoded from event payloads. Optional body
// fields are pointers: a nil pointer means "not supplied", whether the key
// was absent or explicitly null.
package domain
