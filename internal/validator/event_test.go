package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

func TestParseEvent_Trace(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "evt-1",
		"type": "trace-create",
		"timestamp": "2024-01-01T00:00:00.000Z",
		"body": {"id": "trace-1", "name": "chat", "release": null, "traceIdType": "LANGFUSE"}
	}`)

	ev, err := ParseEvent(raw)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, domain.EventTypeTraceCreate, ev.Type)
	assert.Equal(t, 2024, ev.Timestamp.Year())

	body, ok := ev.Body.(*domain.TraceBody)
	require.True(t, ok)
	assert.Equal(t, "trace-1", body.ID)
	assert.Equal(t, "chat", *body.Name)
	assert.Nil(t, body.Release)
}

func TestParseEvent_Observation(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "evt-2",
		"type": "generation-create",
		"timestamp": "2024-01-01T00:00:00Z",
		"body": {
			"id": "gen-1",
			"traceId": "trace-1",
			"startTime": "2024-01-01T00:00:01.5Z",
			"usage": {"total": 100, "unit": "CHARACTERS"}
		}
	}`)

	ev, err := ParseEvent(raw)
	require.NoError(t, err)

	body := ev.Body.(*domain.ObservationBody)
	assert.Equal(t, "gen-1", body.ID)
	require.NotNil(t, body.Usage)
	assert.Equal(t, int64(100), *body.Usage.Total)
}

func TestParseEvent_Errors(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantID string
	}{
		{
			name:   "not json",
			raw:    `{"id":`,
			wantID: UnknownEventID,
		},
		{
			name:   "missing type",
			raw:    `{"id":"e1","timestamp":"2024-01-01T00:00:00Z","body":{}}`,
			wantID: "e1",
		},
		{
			name:   "unknown type",
			raw:    `{"id":"e2","type":"trace-delete","timestamp":"2024-01-01T00:00:00Z","body":{}}`,
			wantID: "e2",
		},
		{
			name:   "bad timestamp",
			raw:    `{"id":"e3","type":"trace-create","timestamp":"yesterday","body":{}}`,
			wantID: "e3",
		},
		{
			name:   "missing body",
			raw:    `{"id":"e4","type":"trace-create","timestamp":"2024-01-01T00:00:00Z"}`,
			wantID: "e4",
		},
		{
			name:   "null body",
			raw:    `{"id":"e5","type":"trace-create","timestamp":"2024-01-01T00:00:00Z","body":null}`,
			wantID: "e5",
		},
		{
			name:   "score without trace",
			raw:    `{"id":"e6","type":"score-create","timestamp":"2024-01-01T00:00:00Z","body":{"name":"q","value":1}}`,
			wantID: "e6",
		},
		{
			name:   "score without value",
			raw:    `{"id":"e7","type":"score-create","timestamp":"2024-01-01T00:00:00Z","body":{"name":"q","traceId":"t"}}`,
			wantID: "e7",
		},
		{
			name:   "bad observation type",
			raw:    `{"id":"e8","type":"observation-create","timestamp":"2024-01-01T00:00:00Z","body":{"id":"o","type":"LOOP"}}`,
			wantID: "e8",
		},
		{
			name:   "bad usage unit",
			raw:    `{"id":"e9","type":"span-create","timestamp":"2024-01-01T00:00:00Z","body":{"id":"o","usage":{"unit":"BYTES"}}}`,
			wantID: "e9",
		},
		{
			name:   "update without id",
			raw:    `{"id":"e10","type":"span-update","timestamp":"2024-01-01T00:00:00Z","body":{"name":"x"}}`,
			wantID: "e10",
		},
		{
			name:   "wrong field type",
			raw:    `{"id":"e11","type":"trace-create","timestamp":"2024-01-01T00:00:00Z","body":{"id":1}}`,
			wantID: "e11",
		},
		{
			name:   "sdk log without log",
			raw:    `{"id":"e12","type":"sdk-log","timestamp":"2024-01-01T00:00:00Z","body":{}}`,
			wantID: "e12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseEvent(json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.wantID, ev.ID)
			assert.Nil(t, ev.Body)
		})
	}
}

func TestParseEvent_SDKLog(t *testing.T) {
	raw := json.RawMessage(`{"id":"e","type":"sdk-log","timestamp":"2024-01-01T00:00:00Z","body":{"log":{"msg":"hi"}}}`)

	ev, err := ParseEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"msg": "hi"}, ev.Body.(*domain.SDKLogBody).Log)
}
