package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestTraceBody_Sanitize(t *testing.T) {
	body := &TraceBody{
		ID:       "trace\u0000-1",
		Name:     strPtr("na\u0000me"),
		Tags:     []string{"a\u0000", "b"},
		Metadata: map[string]any{"k\u0000": []any{"v\u0000", float64(1)}},
		Input:    "hello\u0000",
	}

	body.Sanitize()

	assert.Equal(t, "trace-1", body.ID)
	assert.Equal(t, "name", *body.Name)
	assert.Equal(t, []string{"a", "b"}, body.Tags)
	assert.Equal(t, map[string]any{"k": []any{"v", float64(1)}}, body.Metadata)
	assert.Equal(t, "hello", body.Input)
	assert.Nil(t, body.UserID)
	assert.Nil(t, body.Output)
}

func TestScoreBody_Sanitize(t *testing.T) {
	body := &ScoreBody{
		TraceID: "t\u00001",
		Name:    "accuracy\u0000",
		Comment: strPtr("\u0000ok"),
	}

	body.Sanitize()

	assert.Equal(t, "t1", body.TraceID)
	assert.Equal(t, "accuracy", body.Name)
	assert.Equal(t, "ok", *body.Comment)
	assert.Nil(t, body.ObservationID)
}
