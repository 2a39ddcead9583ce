package analytics

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	apperrors "github.com/llmtrace/llmtrace/internal/pkg/errors"
)

// CoerceRows maps every value of every row to float64, string, time.Time or
// nil. Integers beyond 2^53 and decimals lose precision.
func CoerceRows(rows []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		coerced := make(map[string]any, len(row))
		for key, val := range row {
			v, err := CoerceValue(val)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", key, err)
			}
			coerced[key] = v
		}
		out = append(out, coerced)
	}
	return out, nil
}

// CoerceValue maps a single driver scalar. Unrecognized kinds are an
// UNSUPPORTED_TYPE error.
func CoerceValue(val any) (any, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case time.Time:
		return v, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case *big.Int:
		if v == nil {
			return nil, nil
		}
		f, _ := new(big.Float).SetInt(v).Float64()
		return f, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, apperrors.UnsupportedType(fmt.Sprintf("unparseable number %q", v.String()))
		}
		return f, nil
	case decimal.Decimal:
		return v.InexactFloat64(), nil
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return v.InexactFloat64(), nil
	case pgtype.Numeric:
		return numericValue(v)
	case *pgtype.Numeric:
		if v == nil {
			return nil, nil
		}
		return numericValue(*v)
	}
	return nil, apperrors.UnsupportedType(fmt.Sprintf("unknown type %T", val))
}

func numericValue(n pgtype.Numeric) (any, error) {
	if !n.Valid {
		return nil, nil
	}
	f, err := n.Float64Value()
	if err != nil {
		return nil, apperrors.UnsupportedType(fmt.Sprintf("numeric: %v", err))
	}
	if !f.Valid {
		return nil, nil
	}
	return f.Float64, nil
}
