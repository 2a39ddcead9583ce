// Package errors provides application error types for llmtrace.
//
// This package defines:
//   - AppError type with error classification
//   - Error constructors for common error types
//   - Error type checking helpers
//   - HTTP status code mapping
//
// # Error Types
//
//   - Validation: Malformed envelope, body, or query request (400)
//   - NotFound: Referenced entity does not exist (404)
//   - Forbidden: Entity belongs to a different project (403)
//   - Compile: Query request cannot be compiled to SQL (400)
//   - UnsupportedType: Storage returned a scalar the coercer cannot map (500)
//   - Internal: Unexpected server error (500)
//
// # Usage
//
// Create errors using constructor functions:
//
//	return apperrors.NotFound("trace")
//	return apperrors.Compile("column foo not found in table traces")
//
// Check error types:
//
//	if apperrors.IsNotFound(err) {
//	    // Handle not found
//	}
//
// # Error Wrapping
//
// Errors support wrapping with fmt.Errorf:
//
//	return fmt.Errorf("load trace: %w", apperrors.NotFound("trace"))
package errors
