package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestionResult_Outcome(t *testing.T) {
	tests := []struct {
		name   string
		result IngestionResult
		want   BatchOutcome
	}{
		{"empty", IngestionResult{}, BatchOutcomeSuccess},
		{"all successes", IngestionResult{Successes: []string{"a", "b"}}, BatchOutcomeSuccess},
		{"all errors", IngestionResult{Errors: []IngestionError{{ID: "a"}}}, BatchOutcomeFailed},
		{
			"mixed",
			IngestionResult{Successes: []string{"a"}, Errors: []IngestionError{{ID: "b"}}},
			BatchOutcomePartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Outcome())
		})
	}
}

func TestEventType(t *testing.T) {
	typ, ok := EventTypeGenerationUpdate.ObservationType()
	assert.True(t, ok)
	assert.Equal(t, ObservationTypeGeneration, typ)

	_, ok = EventTypeObservationCreate.ObservationType()
	assert.False(t, ok)

	assert.True(t, EventTypeEventCreate.IsObservation())
	assert.True(t, EventTypeEventCreate.IsCreate())
	assert.False(t, EventTypeSpanUpdate.IsCreate())
	assert.False(t, EventType("trace-delete").IsValid())
}
