package testutil

import (
	"encoding/json"
	"fmt"

	"github.com/llmtrace/llmtrace/internal/domain"
)

// EventTimestamp is the envelope timestamp used by fixture events.
const EventTimestamp = "2024-01-01T00:00:00.000Z"

// NewTestEvent builds a raw envelope with the given id, type and JSON body.
func NewTestEvent(eventID string, typ domain.EventType, body string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"id":%q,"type":%q,"timestamp":%q,"body":%s}`,
		eventID, typ, EventTimestamp, body))
}

// NewTestTraceEvent builds a trace-create envelope for traceID.
func NewTestTraceEvent(eventID, traceID string) json.RawMessage {
	return NewTestEvent(eventID, domain.EventTypeTraceCreate,
		fmt.Sprintf(`{"id":%q,"name":"test-trace"}`, traceID))
}

// NewTestBatchBody marshals events into an ingestion request body.
func NewTestBatchBody(events ...json.RawMessage) []byte {
	body, err := json.Marshal(domain.IngestionRequest{Batch: events})
	if err != nil {
		panic(err)
	}
	return body
}
