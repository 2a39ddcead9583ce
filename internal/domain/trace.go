package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trace represents a single logical execution, such as one user request
type Trace struct {
	ID         string    `json:"id"`
	ProjectID  uuid.UUID `json:"projectId"`
	ExternalID *string   `json:"externalId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Name       *string   `json:"name,omitempty"`
	UserID     *string   `json:"userId,omitempty"`
	SessionID  *string   `json:"sessionId,omitempty"`
	Release    *string   `json:"release,omitempty"`
	Version    *string   `json:"version,omitempty"`
	Tags       []string  `json:"tags"`
	Metadata   any       `json:"metadata,omitempty"`
	Input      any       `json:"input,omitempty"`
	Output     any       `json:"output,omitempty"`
	Public     bool      `json:"public"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TraceBody is the payload of trace-create and trace-update events
type TraceBody struct {
	ID         string   `json:"id"`
	Timestamp  *string  `json:"timestamp"`
	Name       *string  `json:"name"`
	ExternalID *string  `json:"externalId"`
	UserID     *string  `json:"userId"`
	SessionID  *string  `json:"sessionId"`
	Release    *string  `json:"release"`
	Version    *string  `json:"version"`
	Tags       []string `json:"tags" validate:"omitempty,dive,max=1000"`
	Metadata   any      `json:"metadata"`
	Input      any      `json:"input"`
	Output     any      `json:"output"`
	Public     *bool    `json:"public"`
}
