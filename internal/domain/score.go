package domain

import (
	"time"

	"github.com/google/uuid"
)

// Score represents a named numeric evaluation of a trace or observation
type Score struct {
	ID            string    `json:"id"`
	ProjectID     uuid.UUID `json:"projectId"`
	TraceID       string    `json:"traceId"`
	ObservationID *string   `json:"observationId,omitempty"`
	Name          string    `json:"name"`
	Value         float64   `json:"value"`
	Comment       *string   `json:"comment,omitempty"`
	Timestamp     time.Time `json:"timestamp"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ScoreBody is the payload of score-create events
type ScoreBody struct {
	ID            string   `json:"id"`
	TraceID       string   `json:"traceId" validate:"required"`
	ObservationID *string  `json:"observationId"`
	Name          string   `json:"name" validate:"required"`
	Value         *float64 `json:"value" validate:"required"`
	Comment       *string  `json:"comment"`
}
