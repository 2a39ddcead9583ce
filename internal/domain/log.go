package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogRecord is an append-only SDK log line, optionally associated with a
// trace or observation
type LogRecord struct {
	ID            string    `json:"id"`
	ProjectID     uuid.UUID `json:"projectId"`
	EventID       string    `json:"eventId"`
	TraceID       *string   `json:"traceId,omitempty"`
	ObservationID *string   `json:"observationId,omitempty"`
	Log           any       `json:"log"`
	Timestamp     time.Time `json:"timestamp"`
}

// SDKLogBody is the payload of sdk-log events
type SDKLogBody struct {
	Log           any     `json:"log" validate:"required"`
	TraceID       *string `json:"traceId"`
	ObservationID *string `json:"observationId"`
}
