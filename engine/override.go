/*
override.go - Multi-level configuration override resolution

PURPOSE:
  Resolves the effective value of one of the four overridable parameters
  (capacity, overtime multiplier, tier-2 threshold, tier-2 multiplier) for a
  given worker and date by walking a precedence chain:

    1. per-day override for the exact ISO date    (mode == "perDay")
    2. weekly override for the date's weekday     (mode == "weekly")
    3. the worker's own global override value
    4. the worker profile's baseline              (capacity only)
    5. the process-wide CalcParams default

  The chain is represented as an ordered list of resolver functions, each
  returning an optional parsed value; resolution takes the first defined
  one. At every level the raw candidate runs through parseNumber: a value
  that does not parse to a finite number is skipped silently, exactly as if
  that level were absent. An unrecognized mode behaves as unset, dropping
  straight to the worker's global override.
*/
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// OVERRIDE FIELDS
// =============================================================================

type OverrideField int

const (
	FieldCapacity OverrideField = iota
	FieldMultiplier
	FieldTier2Threshold
	FieldTier2Multiplier
)

// raw extracts this field's raw candidate from one override level.
func (f OverrideField) raw(of OverrideFields) any {
	switch f {
	case FieldCapacity:
		return of.Capacity
	case FieldMultiplier:
		return of.Multiplier
	case FieldTier2Threshold:
		return of.Tier2Threshold
	case FieldTier2Multiplier:
		return of.Tier2Multiplier
	default:
		return nil
	}
}

// fallback returns the process-wide default for this field.
func (f OverrideField) fallback(p CalcParams) decimal.Decimal {
	switch f {
	case FieldCapacity:
		return p.DailyCapacity
	case FieldMultiplier:
		return p.Multiplier
	case FieldTier2Threshold:
		return p.Tier2Threshold
	case FieldTier2Multiplier:
		return p.Tier2Multiplier
	default:
		return decimal.Zero
	}
}

// Override modes. Anything else is treated as unset.
const (
	ModePerDay = "perDay"
	ModeWeekly = "weekly"
)

// =============================================================================
// RESOLUTION CHAIN
// =============================================================================

// resolver is one level of the precedence chain. ok is false when the level
// is absent or its candidate fails to parse.
type resolver func() (decimal.Decimal, bool)

// ResolveOverride walks the precedence chain for one (worker, date, field).
func ResolveOverride(cfg *Config, id WorkerID, day Day, field OverrideField) decimal.Decimal {
	override := cfg.Overrides[id]

	chain := []resolver{
		func() (decimal.Decimal, bool) {
			if override == nil || override.Mode != ModePerDay {
				return decimal.Zero, false
			}
			return parseNumber(field.raw(override.Days[string(day)]))
		},
		func() (decimal.Decimal, bool) {
			if override == nil || override.Mode != ModeWeekly {
				return decimal.Zero, false
			}
			return parseNumber(field.raw(dayFields(override.Days, day.Weekday())))
		},
		func() (decimal.Decimal, bool) {
			if override == nil {
				return decimal.Zero, false
			}
			return parseNumber(field.raw(override.Global))
		},
		func() (decimal.Decimal, bool) {
			if field != FieldCapacity {
				return decimal.Zero, false
			}
			profile := cfg.Profiles[id]
			if profile == nil || profile.DailyCapacity.IsZero() {
				return decimal.Zero, false
			}
			return profile.DailyCapacity, true
		},
	}

	for _, level := range chain {
		if v, ok := level(); ok {
			return v
		}
	}
	return field.fallback(cfg.Params)
}

// dayFields looks up a weekly mapping entry case-insensitively, so "Monday"
// and "monday" keys both match.
func dayFields(days map[string]OverrideFields, weekday string) OverrideFields {
	if of, ok := days[weekday]; ok {
		return of
	}
	// Deterministic even when several keys fold to the same weekday.
	best := ""
	for key := range days {
		if strings.EqualFold(key, weekday) && (best == "" || key < best) {
			best = key
		}
	}
	if best != "" {
		return days[best]
	}
	return OverrideFields{}
}

// =============================================================================
// EFFECTIVE PARAMETERS - All four fields resolved for one worker-day
// =============================================================================

type EffectiveParams struct {
	Capacity        decimal.Decimal
	Multiplier      decimal.Decimal
	Tier2Threshold  decimal.Decimal
	Tier2Multiplier decimal.Decimal
}

func resolveParams(cfg *Config, id WorkerID, day Day) EffectiveParams {
	return EffectiveParams{
		Capacity:        ResolveOverride(cfg, id, day, FieldCapacity),
		Multiplier:      ResolveOverride(cfg, id, day, FieldMultiplier),
		Tier2Threshold:  ResolveOverride(cfg, id, day, FieldTier2Threshold),
		Tier2Multiplier: ResolveOverride(cfg, id, day, FieldTier2Multiplier),
	}
}
