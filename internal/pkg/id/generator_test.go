package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewTraceID(t *testing.T) {
	a := NewTraceID()
	b := NewTraceID()

	assert.True(t, ValidateTraceID(a))
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestNewEntityID(t *testing.T) {
	_, err := uuid.Parse(NewEntityID())
	assert.NoError(t, err)
}

func TestValidateTraceID(t *testing.T) {
	assert.False(t, ValidateTraceID("short"))
	assert.False(t, ValidateTraceID("zz000000000000000000000000000000"))
}
