package analytics

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

func TestCoerceValue(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "gpt-4", "gpt-4"},
		{"time", now, now},
		{"int64", int64(42), 42.0},
		{"int32", int32(7), 7.0},
		{"uint64", uint64(9), 9.0},
		{"float32", float32(1.5), 1.5},
		{"float64", 2.25, 2.25},
		{"big int", big.NewInt(1 << 40), float64(1 << 40)},
		{"json number", json.Number("3.5"), 3.5},
		{"decimal", decimal.RequireFromString("123.45"), 123.45},
		{"numeric", pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}, 123.45},
		{"null numeric", pgtype.Numeric{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceValue_Unsupported(t *testing.T) {
	for _, in := range []any{true, []byte("raw"), map[string]any{}, struct{}{}} {
		_, err := CoerceValue(in)
		require.Error(t, err)
		assert.True(t, apperrors.IsUnsupportedType(err))
	}
}

func TestCoerceRows(t *testing.T) {
	rows, err := CoerceRows([]map[string]any{
		{"countTraceId": int64(3), "timestamp": nil},
		{"countTraceId": int64(0), "name": "chat"},
	})
	require.NoError(t, err)

	assert.Equal(t, []map[string]any{
		{"countTraceId": 3.0, "timestamp": nil},
		{"countTraceId": 0.0, "name": "chat"},
	}, rows)

	_, err = CoerceRows([]map[string]any{{"flag": true}})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnsupportedType(err))
}
