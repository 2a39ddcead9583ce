package analytics

import (
	"fmt"
	"strings"

	"github.com/llmtrace/llmtrace/internal/domain"
	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// compileOrderBy renders the ORDER BY clause. A bucketed statement always
// sorts by its bucket first.
func compileOrderBy(table domain.TableName, orderBy []domain.OrderBy, bk *bucketing) (string, error) {
	keys := make([]string, 0, len(orderBy)+1)
	if bk != nil {
		keys = append(keys, bk.expr()+" ASC")
	}

	for _, o := range orderBy {
		col, err := LookupColumn(table, o.Column)
		if err != nil {
			return "", err
		}
		switch o.Direction {
		case domain.SortAsc, domain.SortDesc:
		default:
			return "", apperrors.Compile(fmt.Sprintf("invalid sort direction %q", o.Direction))
		}
		keys = append(keys, fmt.Sprintf("%s %s", col.Internal, o.Direction))
	}

	if len(keys) == 0 {
		return "", nil
	}
	return " ORDER BY " + strings.Join(keys, ", "), nil
}
