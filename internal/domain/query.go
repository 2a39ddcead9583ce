package domain

// TableName is a logical view the analytics compiler can query
type TableName string

const (
	TableTraces                        TableName = "traces"
	TableObservations                  TableName = "observations"
	TableTracesObservations            TableName = "traces_observations"
	TableTracesScores                  TableName = "traces_scores"
	TableTracesParentObservationScores TableName = "traces_parent_observation_scores"
)

// ColumnType is the logical type of a catalog column
type ColumnType string

const (
	ColumnTypeString   ColumnType = "string"
	ColumnTypeNumber   ColumnType = "number"
	ColumnTypeDatetime ColumnType = "datetime"
)

// FilterType selects how a filter value is interpreted
type FilterType string

const (
	FilterTypeDatetime      FilterType = "datetime"
	FilterTypeString        FilterType = "string"
	FilterTypeNumber        FilterType = "number"
	FilterTypeStringOptions FilterType = "stringOptions"
	FilterTypeNull          FilterType = "null"
)

// AggregateFunction is an allowed aggregate over a selected column
type AggregateFunction string

const (
	AggregateSum   AggregateFunction = "SUM"
	AggregateAvg   AggregateFunction = "AVG"
	AggregateCount AggregateFunction = "COUNT"
	AggregateMax   AggregateFunction = "MAX"
	AggregateMin   AggregateFunction = "MIN"
)

// SortDirection is an ORDER BY direction
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// TemporalUnit is the bucket width of a datetime group-by
type TemporalUnit string

const (
	TemporalUnitSecond TemporalUnit = "second"
	TemporalUnitMinute TemporalUnit = "minute"
	TemporalUnitHour   TemporalUnit = "hour"
	TemporalUnitDay    TemporalUnit = "day"
	TemporalUnitWeek   TemporalUnit = "week"
	TemporalUnitMonth  TemporalUnit = "month"
	TemporalUnitYear   TemporalUnit = "year"
)

// QueryRequest is a declarative analytics request
type QueryRequest struct {
	From    TableName      `json:"from" validate:"required"`
	Select  []SelectColumn `json:"select" validate:"required,min=1,dive"`
	Filter  []Filter       `json:"filter" validate:"dive"`
	GroupBy []GroupBy      `json:"groupBy" validate:"dive"`
	OrderBy []OrderBy      `json:"orderBy" validate:"dive"`
}

// SelectColumn selects a bare column or an aggregate over one
type SelectColumn struct {
	Column string             `json:"column" validate:"required"`
	Agg    *AggregateFunction `json:"agg,omitempty"`
}

// Filter restricts rows. Value is a timestamp string or time.Time for
// datetime filters, a string for string filters, a number for number
// filters and a list of strings for stringOptions filters. Null filters
// carry no value.
type Filter struct {
	Type     FilterType `json:"type" validate:"required"`
	Column   string     `json:"column" validate:"required"`
	Operator string     `json:"operator" validate:"required"`
	Value    any        `json:"value,omitempty"`
}

// GroupBy groups rows by a column. Datetime group-bys carry a temporal unit.
type GroupBy struct {
	Type         ColumnType    `json:"type" validate:"required"`
	Column       string        `json:"column" validate:"required"`
	TemporalUnit *TemporalUnit `json:"temporalUnit,omitempty"`
}

// OrderBy sorts rows by a column
type OrderBy struct {
	Column    string        `json:"column" validate:"required"`
	Direction SortDirection `json:"direction" validate:"required,oneof=ASC DESC"`
}

// QueryResult is the coerced output of an analytics query. Row keys are the
// deterministic output aliases of the select list.
type QueryResult struct {
	Rows []map[string]any `json:"rows"`
}
