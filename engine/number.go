package engine

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NUMBER COERCION - The "parse or silently skip" primitive
// =============================================================================

// parseNumber coerces a raw configuration or rate value into a decimal.
// It accepts the numeric Go types, json.Number, and numeric strings, and
// reports false for nil, non-numeric, or non-finite input. Callers treat a
// false result as "this level is absent" and continue down their fallback
// chain; nothing in the engine surfaces it as an error.
func parseNumber(raw any) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(v), true
	case float32:
		return parseNumber(float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case uint:
		return decimal.NewFromInt(int64(v)), true
	case uint32:
		return decimal.NewFromInt(int64(v)), true
	case uint64:
		if v > math.MaxInt64 {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(int64(v)), true
	case json.Number:
		return parseNumberString(v.String())
	case string:
		return parseNumberString(v)
	default:
		return decimal.Zero, false
	}
}

func parseNumberString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
