package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

func TestTables(t *testing.T) {
	assert.ElementsMatch(t, []domain.TableName{
		domain.TableTraces,
		domain.TableObservations,
		domain.TableTracesObservations,
		domain.TableTracesScores,
		domain.TableTracesParentObservationScores,
	}, Tables())
}

func TestLookupTable_Unknown(t *testing.T) {
	_, err := LookupTable("users")
	require.Error(t, err)
	assert.True(t, apperrors.IsCompile(err))
}

func TestLookupColumn(t *testing.T) {
	tests := []struct {
		name     string
		table    domain.TableName
		column   string
		internal string
		typ      domain.ColumnType
	}{
		{"trace name", domain.TableTraces, "name", `t."name"`, domain.ColumnTypeString},
		{"observation trace id", domain.TableObservations, "traceId", `o."trace_id"`, domain.ColumnTypeString},
		{"joined start time", domain.TableTracesObservations, "startTime", `o."start_time"`, domain.ColumnTypeDatetime},
		{"score value", domain.TableTracesScores, "value", `s."value"`, domain.ColumnTypeNumber},
		{"duration", domain.TableTracesParentObservationScores, "duration", durationExpr, domain.ColumnTypeNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := LookupColumn(tt.table, tt.column)
			require.NoError(t, err)
			assert.Equal(t, tt.internal, col.Internal)
			assert.Equal(t, tt.typ, col.Type)
		})
	}
}

func TestLookupColumn_NotInTable(t *testing.T) {
	_, err := LookupColumn(domain.TableTraces, "scoreName")
	require.Error(t, err)
	assert.True(t, apperrors.IsCompile(err))
	assert.Contains(t, err.Error(), "column scoreName not found in table traces")
}
