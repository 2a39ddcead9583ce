package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", Validation("bad body"), CodeValidation, http.StatusBadRequest},
		{"not found", NotFound("trace"), CodeNotFound, http.StatusNotFound},
		{"forbidden", Forbidden(""), CodeForbidden, http.StatusForbidden},
		{"compile", Compile("unknown column"), CodeCompile, http.StatusBadRequest},
		{"unsupported type", UnsupportedType("bool"), CodeUnsupportedType, http.StatusInternalServerError},
		{"internal", Internal("boom"), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.status, GetStatusCode(tt.err))
			assert.Equal(t, tt.code, GetCode(tt.err))
		})
	}
}

func TestWrappedClassification(t *testing.T) {
	err := fmt.Errorf("load trace: %w", NotFound("trace"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "trace not found", GetAppError(err).Message)
	assert.Equal(t, http.StatusNotFound, GetStatusCode(err))
}

func TestPlainErrorDefaults(t *testing.T) {
	err := fmt.Errorf("connection reset")

	assert.False(t, IsAppError(err))
	assert.Equal(t, CodeInternal, GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(err))
}

func TestForbiddenDefaultMessage(t *testing.T) {
	assert.Equal(t, "forbidden", Forbidden("").Message)
	assert.Equal(t, "FORBIDDEN: forbidden", Forbidden("").Error())
}
