package domain

import (
	"encoding/json"
	"time"
)

// Event is the raw ingestion envelope. Body is decoded separately against
// the schema registered for Type.
type Event struct {
	ID        string          `json:"id" validate:"required"`
	Type      EventType       `json:"type" validate:"required"`
	Timestamp string          `json:"timestamp" validate:"required,rfc3339"`
	Body      json.RawMessage `json:"body"`
}

// ParsedEvent is an envelope whose body passed validation. Body holds one of
// *TraceBody, *ObservationBody, *ScoreBody or *SDKLogBody.
type ParsedEvent struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Body      any
}

// IngestionRequest is the batch ingestion payload
type IngestionRequest struct {
	Batch    []json.RawMessage `json:"batch"`
	Metadata map[string]any    `json:"metadata,omitempty"`
}
