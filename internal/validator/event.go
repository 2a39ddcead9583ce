package validator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// UnknownEventID is reported for envelopes whose id could not be read
const UnknownEventID = "unknown"

// bodySchemas maps every accepted event type to a constructor of its body
var bodySchemas = map[domain.EventType]func() any{
	domain.EventTypeTraceCreate:       func() any { return &domain.TraceBody{} },
	domain.EventTypeTraceUpdate:       func() any { return &domain.TraceBody{} },
	domain.EventTypeObservationCreate: func() any { return &domain.ObservationBody{} },
	domain.EventTypeObservationUpdate: func() any { return &domain.ObservationBody{} },
	domain.EventTypeSpanCreate:        func() any { return &domain.ObservationBody{} },
	domain.EventTypeSpanUpdate:        func() any { return &domain.ObservationBody{} },
	domain.EventTypeGenerationCreate:  func() any { return &domain.ObservationBody{} },
	domain.EventTypeGenerationUpdate:  func() any { return &domain.ObservationBody{} },
	domain.EventTypeEventCreate:       func() any { return &domain.ObservationBody{} },
	domain.EventTypeScoreCreate:       func() any { return &domain.ScoreBody{} },
	domain.EventTypeSDKLog:            func() any { return &domain.SDKLogBody{} },
}

// ParseEvent decodes and validates one raw envelope and its type-specific
// body. Unknown fields are ignored. On failure the returned event still
// carries the envelope id when it could be read, or UnknownEventID.
func ParseEvent(raw json.RawMessage) (domain.ParsedEvent, error) {
	parsed := domain.ParsedEvent{ID: UnknownEventID}

	var env domain.Event
	if err := json.Unmarshal(raw, &env); err != nil {
		if env.ID != "" {
			parsed.ID = env.ID
		}
		return parsed, apperrors.Validation(fmt.Sprintf("invalid event envelope: %v", err))
	}
	if env.ID != "" {
		parsed.ID = env.ID
	}
	parsed.Type = env.Type

	if err := Validate(&env); err != nil {
		return parsed, apperrors.Validation(fmt.Sprintf("invalid event envelope: %v", err))
	}

	newBody, ok := bodySchemas[env.Type]
	if !ok {
		return parsed, apperrors.Validation(fmt.Sprintf("unknown event type %q", env.Type))
	}

	ts, err := domain.ParseTimestamp(env.Timestamp)
	if err != nil {
		return parsed, apperrors.Validation(err.Error())
	}
	parsed.Timestamp = ts

	trimmed := bytes.TrimSpace(env.Body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return parsed, apperrors.Validation("body is required")
	}

	body := newBody()
	if err := json.Unmarshal(trimmed, body); err != nil {
		return parsed, apperrors.Validation(fmt.Sprintf("invalid %s body: %v", env.Type, err))
	}
	if err := Validate(body); err != nil {
		return parsed, apperrors.Validation(fmt.Sprintf("invalid %s body: %v", env.Type, err))
	}

	if ob, ok := body.(*domain.ObservationBody); ok && !env.Type.IsCreate() && ob.ID == "" {
		return parsed, apperrors.Validation(fmt.Sprintf("invalid %s body: id: is required", env.Type))
	}

	parsed.Body = body
	return parsed, nil
}
