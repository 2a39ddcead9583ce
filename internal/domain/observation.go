package domain

import (
	"time"

	"github.com/google/uuid"
)

// Observation represents a timed unit of work within a trace
type Observation struct {
	ID                  string          `json:"id"`
	TraceID             string          `json:"traceId"`
	ProjectID           uuid.UUID       `json:"projectId"`
	Type                ObservationType `json:"type,omitempty"`
	ParentObservationID *string         `json:"parentObservationId,omitempty"`
	Name                *string         `json:"name,omitempty"`
	StartTime           time.Time       `json:"startTime"`
	StartTimeExplicit   bool            `json:"-"`
	EndTime             *time.Time      `json:"endTime,omitempty"`
	CompletionStartTime *time.Time      `json:"completionStartTime,omitempty"`
	Metadata            any             `json:"metadata,omitempty"`
	Input               any             `json:"input,omitempty"`
	Output              any             `json:"output,omitempty"`
	Level               Level           `json:"level"`
	StatusMessage       *string         `json:"statusMessage,omitempty"`
	Version             *string         `json:"version,omitempty"`

	// Generation-specific fields
	Model           *string `json:"model,omitempty"`
	ModelParameters any     `json:"modelParameters,omitempty"`
	Usage           Usage   `json:"usage"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ObservationBody is the payload of every observation event type
type ObservationBody struct {
	ID                  string           `json:"id"`
	TraceID             *string          `json:"traceId"`
	Type                *ObservationType `json:"type" validate:"omitempty,oneof=SPAN GENERATION EVENT"`
	Name                *string          `json:"name"`
	StartTime           *string          `json:"startTime"`
	EndTime             *string          `json:"endTime"`
	CompletionStartTime *string          `json:"completionStartTime"`
	Metadata            any              `json:"metadata"`
	Input               any              `json:"input"`
	Output              any              `json:"output"`
	Model               *string          `json:"model"`
	ModelParameters     any              `json:"modelParameters"`
	Usage               *UsageInput      `json:"usage"`
	Level               *Level           `json:"level" validate:"omitempty,oneof=DEBUG DEFAULT WARNING ERROR"`
	StatusMessage       *string          `json:"statusMessage"`
	ParentObservationID *string          `json:"parentObservationId"`
	Version             *string          `json:"version"`
}
