// Package validator provides struct and ingestion event validation for llmtrace.
//
// This package wraps go-playground/validator to provide:
//   - Consistent validation of event bodies and query requests
//   - Human-readable error messages
//   - A tagged union over event types with one static schema per type
//
// # Usage
//
// Validate a single ingestion envelope and decode its body:
//
//	ev, err := validator.ParseEvent(raw)
//	if err != nil {
//	    // err is an AppError with code VALIDATION_ERROR, ev.ID is still set
//	}
//
// # Custom Validations
//
// The "rfc3339" tag is registered in init(). The validator instance is
// package-level and thread-safe.
package validator
