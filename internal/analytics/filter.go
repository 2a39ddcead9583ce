package analytics

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// comparisonOperators is the allow-list of comparison tokens per filter
// type, mapped to the SQL token written into the statement
var comparisonOperators = map[domain.FilterType]map[string]string{
	domain.FilterTypeDatetime: {
		">": ">", "<": "<", ">=": ">=", "<=": "<=",
	},
	domain.FilterTypeNumber: {
		"=": "=", "!=": "<>", ">": ">", "<": "<", ">=": ">=", "<=": "<=",
	},
	domain.FilterTypeString: {
		"=": "=", "!=": "<>",
	},
}

// likeOperators build a bound LIKE pattern around the escaped value
var likeOperators = map[string]struct {
	sql     string
	pattern func(string) string
}{
	"contains":         {"ILIKE", func(v string) string { return "%" + v + "%" }},
	"does not contain": {"NOT ILIKE", func(v string) string { return "%" + v + "%" }},
	"starts with":      {"ILIKE", func(v string) string { return v + "%" }},
	"ends with":        {"ILIKE", func(v string) string { return "%" + v }},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// compileFilter renders one predicate, binding its value through b
func compileFilter(b *builder, table domain.TableName, f domain.Filter) (string, error) {
	col, err := LookupColumn(table, f.Column)
	if err != nil {
		return "", err
	}
	if err := checkFilterType(f, col); err != nil {
		return "", err
	}

	switch f.Type {
	case domain.FilterTypeNull:
		switch f.Operator {
		case "is null":
			return col.Internal + " IS NULL", nil
		case "is not null":
			return col.Internal + " IS NOT NULL", nil
		}

	case domain.FilterTypeDatetime:
		op, ok := comparisonOperators[f.Type][f.Operator]
		if !ok {
			break
		}
		ts, err := datetimeValue(f)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", col.Internal, op, b.bind(ts)), nil

	case domain.FilterTypeNumber:
		op, ok := comparisonOperators[f.Type][f.Operator]
		if !ok {
			break
		}
		n, err := numberValue(f)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", col.Internal, op, b.bind(n)), nil

	case domain.FilterTypeString:
		s, ok := f.Value.(string)
		if !ok {
			return "", valueError(f, "a string")
		}
		if op, ok := comparisonOperators[f.Type][f.Operator]; ok {
			return fmt.Sprintf("%s %s %s", col.Internal, op, b.bind(s)), nil
		}
		if like, ok := likeOperators[f.Operator]; ok {
			pattern := like.pattern(likeEscaper.Replace(s))
			return fmt.Sprintf("%s %s %s", col.Internal, like.sql, b.bind(pattern)), nil
		}

	case domain.FilterTypeStringOptions:
		opts, err := optionsValue(f)
		if err != nil {
			return "", err
		}
		switch f.Operator {
		case "any of":
			return fmt.Sprintf("%s = ANY(%s)", col.Internal, b.bind(opts)), nil
		case "none of":
			return fmt.Sprintf("%s <> ALL(%s)", col.Internal, b.bind(opts)), nil
		}

	default:
		return "", apperrors.Compile(fmt.Sprintf("unsupported filter type %q", f.Type))
	}

	return "", apperrors.Compile(fmt.Sprintf("operator %q is not supported for %s filters", f.Operator, f.Type))
}

// checkFilterType rejects filters whose type does not fit the column
func checkFilterType(f domain.Filter, col ColumnDefinition) error {
	var want domain.ColumnType
	switch f.Type {
	case domain.FilterTypeNull:
		return nil
	case domain.FilterTypeDatetime:
		want = domain.ColumnTypeDatetime
	case domain.FilterTypeNumber:
		want = domain.ColumnTypeNumber
	case domain.FilterTypeString, domain.FilterTypeStringOptions:
		want = domain.ColumnTypeString
	default:
		return apperrors.Compile(fmt.Sprintf("unsupported filter type %q", f.Type))
	}
	if col.Type != want {
		return apperrors.Compile(fmt.Sprintf("%s filter cannot be applied to %s column %s", f.Type, col.Type, col.Name))
	}
	return nil
}

func datetimeValue(f domain.Filter) (time.Time, error) {
	switch v := f.Value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		ts, err := domain.ParseTimestamp(v)
		if err != nil {
			return time.Time{}, apperrors.Compile(fmt.Sprintf("filter on %s: %v", f.Column, err))
		}
		return ts, nil
	}
	return time.Time{}, valueError(f, "a timestamp")
}

func numberValue(f domain.Filter) (float64, error) {
	switch v := f.Value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		n, err := v.Float64()
		if err == nil {
			return n, nil
		}
	}
	return 0, valueError(f, "a number")
}

func optionsValue(f domain.Filter) ([]string, error) {
	switch v := f.Value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, valueError(f, "a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, valueError(f, "a list of strings")
}

func valueError(f domain.Filter, want string) error {
	return apperrors.Compile(fmt.Sprintf("value of %s filter on %s must be %s", f.Type, f.Column, want))
}
