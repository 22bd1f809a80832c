package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DURATION RESOLVER - Hours for one interval
// =============================================================================

var (
	nanosPerHour   = decimal.NewFromInt(3_600_000_000_000)
	secondsPerHour = decimal.NewFromInt(3600)
	minutesPerHour = decimal.NewFromInt(60)
	hoursPerDay    = decimal.NewFromInt(24)
	hoursPerWeek   = decimal.NewFromInt(168)
)

// ResolveHours derives the hour count for one interval. Precedence: a
// well-formed ISO-8601 duration string wins; otherwise end minus start when
// both timestamps are present; otherwise zero. A malformed duration string
// falls through to the timestamps rather than failing. The result is not
// clamped here: downstream stages treat non-positive durations as
// contributing zero hours.
func ResolveHours(iv *Interval) decimal.Decimal {
	if iv == nil {
		return decimal.Zero
	}
	if iv.Duration != "" {
		if h, ok := parseISODuration(iv.Duration); ok {
			return h
		}
	}
	if !iv.Start.IsZero() && !iv.End.IsZero() {
		return decimal.NewFromInt(iv.End.Sub(iv.Start).Nanoseconds()).Div(nanosPerHour)
	}
	return decimal.Zero
}

// parseISODuration parses the ISO-8601 duration subset the tracking source
// emits: [-]P[nW][nD][T[nH][nM][nS]] with optionally fractional components.
// Calendar-dependent designators (years, months) are rejected, as is any
// malformed input, so the caller can fall back to timestamps.
func parseISODuration(s string) (decimal.Decimal, bool) {
	rest := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(rest, "-") {
		negative = true
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "+") {
		rest = rest[1:]
	}
	if len(rest) < 2 || (rest[0] != 'P' && rest[0] != 'p') {
		return decimal.Zero, false
	}
	rest = rest[1:]

	total := decimal.Zero
	inTime := false
	sawComponent := false

	for len(rest) > 0 {
		if rest[0] == 'T' || rest[0] == 't' {
			if inTime {
				return decimal.Zero, false
			}
			inTime = true
			rest = rest[1:]
			continue
		}

		i := 0
		for i < len(rest) && (rest[i] == '.' || rest[i] == ',' || (rest[i] >= '0' && rest[i] <= '9')) {
			i++
		}
		if i == 0 || i == len(rest) {
			return decimal.Zero, false
		}
		value, ok := parseNumberString(strings.ReplaceAll(rest[:i], ",", "."))
		if !ok {
			return decimal.Zero, false
		}
		designator := rest[i]
		rest = rest[i+1:]

		var hours decimal.Decimal
		switch {
		case !inTime && (designator == 'W' || designator == 'w'):
			hours = value.Mul(hoursPerWeek)
		case !inTime && (designator == 'D' || designator == 'd'):
			hours = value.Mul(hoursPerDay)
		case inTime && (designator == 'H' || designator == 'h'):
			hours = value
		case inTime && (designator == 'M' || designator == 'm'):
			hours = value.Div(minutesPerHour)
		case inTime && (designator == 'S' || designator == 's'):
			hours = value.Div(secondsPerHour)
		default:
			return decimal.Zero, false
		}
		total = total.Add(hours)
		sawComponent = true
	}

	if !sawComponent {
		return decimal.Zero, false
	}
	if negative {
		total = total.Neg()
	}
	return total, true
}
