package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// Statement is a compiled query: SQL text with $n placeholders and the
// values bound to them, in order
type Statement struct {
	SQL  string
	Args []any
}

var aggregates = map[domain.AggregateFunction]bool{
	domain.AggregateSum:   true,
	domain.AggregateAvg:   true,
	domain.AggregateCount: true,
	domain.AggregateMax:   true,
	domain.AggregateMin:   true,
}

// builder accumulates positional arguments
type builder struct {
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// CompileForProject scopes req to projectID with the table's mandatory
// tenant filters and compiles it. Caller filters cannot remove them.
func CompileForProject(projectID string, req domain.QueryRequest) (Statement, error) {
	scoped := req
	scoped.Filter = append(append([]domain.Filter{}, req.Filter...), MandatoryFilters(req.From, projectID)...)
	return Compile(scoped)
}

// Compile translates req into one parameterized statement. It fails with a
// compile error before producing any SQL if the request references an
// unknown table or column, uses an operator or aggregate outside the
// allow-list, or groups by time in an unsupported way.
func Compile(req domain.QueryRequest) (Statement, error) {
	def, err := LookupTable(req.From)
	if err != nil {
		return Statement{}, err
	}
	if len(req.Select) == 0 {
		return Statement{}, apperrors.Compile("select must contain at least one column")
	}

	b := &builder{}

	bk, err := planBucketing(b, req.From, req.Filter, req.GroupBy)
	if err != nil {
		return Statement{}, err
	}

	selectList, err := compileSelect(req.From, req.Select, bk)
	if err != nil {
		return Statement{}, err
	}

	predicates := make([]string, 0, len(req.Filter))
	for _, f := range req.Filter {
		p, err := compileFilter(b, req.From, f)
		if err != nil {
			return Statement{}, err
		}
		predicates = append(predicates, p)
	}

	groupBy, err := compileGroupBy(req.From, req.GroupBy, bk)
	if err != nil {
		return Statement{}, err
	}

	orderBy, err := compileOrderBy(req.From, req.OrderBy, bk)
	if err != nil {
		return Statement{}, err
	}

	var sb strings.Builder
	from := " FROM " + def.Relation
	if bk != nil {
		sb.WriteString(bk.cte)
		from = bk.from(def.Relation)
	}
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selectList, ", "))
	sb.WriteString(from)
	if len(predicates) > 0 {
		// With a date series the predicates belong to the join condition so
		// that empty buckets survive.
		if bk != nil && bk.series {
			sb.WriteString(" AND ")
		} else {
			sb.WriteString(" WHERE ")
		}
		sb.WriteString(strings.Join(predicates, " AND "))
	}
	sb.WriteString(groupBy)
	sb.WriteString(orderBy)

	return Statement{SQL: sb.String(), Args: b.args}, nil
}

// OutputAlias returns the result key of a select entry
func OutputAlias(sel domain.SelectColumn) string {
	if sel.Agg == nil {
		return sel.Column
	}
	return strings.ToLower(string(*sel.Agg)) + capitalizeFirst(sel.Column)
}

func compileSelect(table domain.TableName, sel []domain.SelectColumn, bk *bucketing) ([]string, error) {
	fields := make([]string, 0, len(sel)+1)
	if bk != nil {
		fields = append(fields, fmt.Sprintf(`%s AS "%s"`, bk.expr(), bk.column.Name))
	}

	for _, s := range sel {
		col, err := LookupColumn(table, s.Column)
		if err != nil {
			return nil, err
		}
		if s.Agg == nil {
			fields = append(fields, fmt.Sprintf(`%s AS "%s"`, col.Internal, col.Name))
			continue
		}
		if !aggregates[*s.Agg] {
			return nil, apperrors.Compile(fmt.Sprintf("unsupported aggregate %q", *s.Agg))
		}
		fields = append(fields, fmt.Sprintf(`%s(%s) AS "%s"`, *s.Agg, col.Internal, OutputAlias(s)))
	}
	return fields, nil
}

func compileGroupBy(table domain.TableName, groupBy []domain.GroupBy, bk *bucketing) (string, error) {
	if len(groupBy) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(groupBy))
	for _, g := range groupBy {
		if g.Type == domain.ColumnTypeDatetime {
			// planBucketing already validated the single datetime group-by.
			keys = append(keys, bk.expr())
			continue
		}
		col, err := LookupColumn(table, g.Column)
		if err != nil {
			return "", err
		}
		if col.Type != g.Type {
			return "", apperrors.Compile(fmt.Sprintf("group by type %s does not match %s column %s", g.Type, col.Type, col.Name))
		}
		keys = append(keys, col.Internal)
	}
	return " GROUP BY " + strings.Join(lo.Uniq(keys), ", "), nil
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
