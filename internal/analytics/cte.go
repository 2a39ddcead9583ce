package analytics

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

const seriesColumn = `date_series."date"`

var temporalUnits = map[domain.TemporalUnit]bool{
	domain.TemporalUnitSecond: true,
	domain.TemporalUnitMinute: true,
	domain.TemporalUnitHour:   true,
	domain.TemporalUnitDay:    true,
	domain.TemporalUnitWeek:   true,
	domain.TemporalUnitMonth:  true,
	domain.TemporalUnitYear:   true,
}

// bucketing describes how a datetime group-by is rendered. With a series
// the statement starts with a generating CTE and left-joins the base
// relation onto it; without one, the column is truncated in place.
type bucketing struct {
	column ColumnDefinition
	unit   domain.TemporalUnit

	series bool
	cte    string
}

// expr is the bucket expression used in SELECT, GROUP BY and ORDER BY
func (bk *bucketing) expr() string {
	if bk.series {
		return seriesColumn
	}
	return truncate(bk.unit, bk.column.Internal)
}

// from renders the FROM clause for the bucketed statement
func (bk *bucketing) from(relation string) string {
	if !bk.series {
		return " FROM " + relation
	}
	if strings.Contains(relation, " JOIN ") {
		relation = "(" + relation + ")"
	}
	return fmt.Sprintf(" FROM date_series LEFT JOIN %s ON %s = %s",
		relation, truncate(bk.unit, bk.column.Internal), truncate(bk.unit, seriesColumn))
}

func truncate(unit domain.TemporalUnit, expr string) string {
	return fmt.Sprintf("DATE_TRUNC('%s', %s)", unit, expr)
}

// planBucketing inspects the group-bys and datetime filters. It returns nil
// when nothing is grouped by time.
func planBucketing(b *builder, table domain.TableName, filters []domain.Filter, groupBy []domain.GroupBy) (*bucketing, error) {
	datetimeGroups := lo.Filter(groupBy, func(g domain.GroupBy, _ int) bool {
		return g.Type == domain.ColumnTypeDatetime
	})
	if len(datetimeGroups) == 0 {
		return nil, nil
	}
	if len(datetimeGroups) > 1 {
		return nil, apperrors.Compile("only one datetime group by is supported")
	}

	group := datetimeGroups[0]
	col, err := LookupColumn(table, group.Column)
	if err != nil {
		return nil, err
	}
	if col.Type != domain.ColumnTypeDatetime {
		return nil, apperrors.Compile(fmt.Sprintf("column %s is not a datetime column", col.Name))
	}
	if group.TemporalUnit == nil || !temporalUnits[*group.TemporalUnit] {
		return nil, apperrors.Compile(fmt.Sprintf("datetime group by on %s requires a valid temporal unit", col.Name))
	}

	bk := &bucketing{column: col, unit: *group.TemporalUnit}

	datetimeFilters := lo.Filter(filters, func(f domain.Filter, _ int) bool {
		return f.Type == domain.FilterTypeDatetime
	})
	minFilter, hasMin := lo.Find(datetimeFilters, func(f domain.Filter) bool {
		return f.Operator == ">" || f.Operator == ">="
	})
	maxFilter, hasMax := lo.Find(datetimeFilters, func(f domain.Filter) bool {
		return f.Operator == "<" || f.Operator == "<="
	})
	if !hasMin || !hasMax {
		return bk, nil
	}
	if minFilter.Column != group.Column || maxFilter.Column != group.Column {
		return nil, apperrors.Compile("min date column, max date column must match group by column")
	}

	lower, err := datetimeValue(minFilter)
	if err != nil {
		return nil, err
	}
	upper, err := datetimeValue(maxFilter)
	if err != nil {
		return nil, err
	}

	bk.series = true
	bk.cte = fmt.Sprintf(
		`WITH date_series AS (SELECT generate_series(%s::timestamptz, %s::timestamptz, '1 %s'::interval) AS "date") `,
		b.bind(lower), b.bind(upper), bk.unit,
	)
	return bk, nil
}
