package analytics

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// ColumnDefinition maps a logical column to its physical SQL expression
type ColumnDefinition struct {
	Name     string
	Internal string
	Type     domain.ColumnType
}

// TableDefinition is the relation behind a logical table and its columns
type TableDefinition struct {
	Relation string
	Columns  []ColumnDefinition
}

const (
	tracesRelation       = `traces t`
	observationsRelation = `observations o`

	tracesObservationsRelation = `traces t LEFT JOIN observations o ON t."id" = o."trace_id" AND t."project_id" = o."project_id"`

	tracesScoresRelation = `traces t JOIN scores s ON t."id" = s."trace_id" AND t."project_id" = s."project_id"`

	tracesParentObservationScoresRelation = `traces t` +
		` LEFT JOIN observations o ON t."id" = o."trace_id" AND t."project_id" = o."project_id" AND o."parent_observation_id" IS NULL` +
		` LEFT JOIN scores s ON t."id" = s."trace_id" AND t."project_id" = s."project_id"`
)

const durationExpr = `(EXTRACT(EPOCH FROM o."end_time") - EXTRACT(EPOCH FROM o."start_time")) * 1000`

var (
	tracesProjectID       = ColumnDefinition{Name: "tracesProjectId", Internal: `t."project_id"`, Type: domain.ColumnTypeString}
	observationsProjectID = ColumnDefinition{Name: "observationsProjectId", Internal: `o."project_id"`, Type: domain.ColumnTypeString}
)

// traceColumns are shared by every table rooted at traces
var traceColumns = []ColumnDefinition{
	tracesProjectID,
	{Name: "traceId", Internal: `t."id"`, Type: domain.ColumnTypeString},
	{Name: "traceName", Internal: `t."name"`, Type: domain.ColumnTypeString},
	{Name: "timestamp", Internal: `t."timestamp"`, Type: domain.ColumnTypeDatetime},
	{Name: "userId", Internal: `t."user_id"`, Type: domain.ColumnTypeString},
	{Name: "sessionId", Internal: `t."session_id"`, Type: domain.ColumnTypeString},
	{Name: "release", Internal: `t."release"`, Type: domain.ColumnTypeString},
	{Name: "version", Internal: `t."version"`, Type: domain.ColumnTypeString},
}

var observationColumns = []ColumnDefinition{
	observationsProjectID,
	{Name: "observationId", Internal: `o."id"`, Type: domain.ColumnTypeString},
	{Name: "observationName", Internal: `o."name"`, Type: domain.ColumnTypeString},
	{Name: "type", Internal: `o."type"`, Type: domain.ColumnTypeString},
	{Name: "model", Internal: `o."model"`, Type: domain.ColumnTypeString},
	{Name: "level", Internal: `o."level"`, Type: domain.ColumnTypeString},
	{Name: "startTime", Internal: `o."start_time"`, Type: domain.ColumnTypeDatetime},
	{Name: "endTime", Internal: `o."end_time"`, Type: domain.ColumnTypeDatetime},
	{Name: "promptTokens", Internal: `o."prompt_tokens"`, Type: domain.ColumnTypeNumber},
	{Name: "completionTokens", Internal: `o."completion_tokens"`, Type: domain.ColumnTypeNumber},
	{Name: "totalTokens", Internal: `o."total_tokens"`, Type: domain.ColumnTypeNumber},
	{Name: "duration", Internal: durationExpr, Type: domain.ColumnTypeNumber},
}

var scoreColumns = []ColumnDefinition{
	{Name: "scoreId", Internal: `s."id"`, Type: domain.ColumnTypeString},
	{Name: "scoreName", Internal: `s."name"`, Type: domain.ColumnTypeString},
	{Name: "value", Internal: `s."value"`, Type: domain.ColumnTypeNumber},
	{Name: "scoreTimestamp", Internal: `s."timestamp"`, Type: domain.ColumnTypeDatetime},
}

var tableDefinitions = map[domain.TableName]TableDefinition{
	domain.TableTraces: {
		Relation: tracesRelation,
		Columns: concat(traceColumns, []ColumnDefinition{
			{Name: "id", Internal: `t."id"`, Type: domain.ColumnTypeString},
			{Name: "name", Internal: `t."name"`, Type: domain.ColumnTypeString},
		}),
	},
	domain.TableObservations: {
		Relation: observationsRelation,
		Columns: concat(observationColumns, []ColumnDefinition{
			{Name: "id", Internal: `o."id"`, Type: domain.ColumnTypeString},
			{Name: "name", Internal: `o."name"`, Type: domain.ColumnTypeString},
			{Name: "traceId", Internal: `o."trace_id"`, Type: domain.ColumnTypeString},
			{Name: "version", Internal: `o."version"`, Type: domain.ColumnTypeString},
		}),
	},
	domain.TableTracesObservations: {
		Relation: tracesObservationsRelation,
		Columns:  concat(traceColumns, observationColumns),
	},
	domain.TableTracesScores: {
		Relation: tracesScoresRelation,
		Columns:  concat(traceColumns, scoreColumns),
	},
	domain.TableTracesParentObservationScores: {
		Relation: tracesParentObservationScoresRelation,
		Columns:  concat(traceColumns, observationColumns, scoreColumns),
	},
}

func concat(groups ...[]ColumnDefinition) []ColumnDefinition {
	var out []ColumnDefinition
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Tables returns the logical table names the catalog knows
func Tables() []domain.TableName {
	return lo.Keys(tableDefinitions)
}

// LookupTable returns the definition of a logical table
func LookupTable(table domain.TableName) (TableDefinition, error) {
	def, ok := tableDefinitions[table]
	if !ok {
		return TableDefinition{}, apperrors.Compile(fmt.Sprintf("table %s not found", table))
	}
	return def, nil
}

// LookupColumn resolves a logical column of a logical table. An absent
// column is a compile error.
func LookupColumn(table domain.TableName, name string) (ColumnDefinition, error) {
	def, err := LookupTable(table)
	if err != nil {
		return ColumnDefinition{}, err
	}
	col, ok := lo.Find(def.Columns, func(c ColumnDefinition) bool { return c.Name == name })
	if !ok {
		return ColumnDefinition{}, apperrors.Compile(fmt.Sprintf("column %s not found in table %s", name, table))
	}
	return col, nil
}

// MandatoryFilters returns the tenant-scoping filters for a table
func MandatoryFilters(table domain.TableName, projectID string) []domain.Filter {
	traceFilter := domain.Filter{
		Type:     domain.FilterTypeString,
		Column:   tracesProjectID.Name,
		Operator: "=",
		Value:    projectID,
	}
	observationFilter := domain.Filter{
		Type:     domain.FilterTypeString,
		Column:   observationsProjectID.Name,
		Operator: "=",
		Value:    projectID,
	}

	switch table {
	case domain.TableTraces, domain.TableTracesScores:
		return []domain.Filter{traceFilter}
	case domain.TableTracesObservations, domain.TableTracesParentObservationScores:
		return []domain.Filter{traceFilter, observationFilter}
	case domain.TableObservations:
		return []domain.Filter{observationFilter}
	}
	return nil
}
