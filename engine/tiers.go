/*
tiers.go - Cumulative tiered overtime allocation

PURPOSE:
  Splits overtime hours into tier-1 and tier-2 bands against a running
  cumulative-overtime accumulator carried per worker across the ENTIRE date
  range, processed in date order. Tier-2 begins once cumulative overtime
  passes the configured threshold.

  Tiering only applies when the feature flag is on AND the resolved tier-2
  multiplier strictly exceeds the tier-1 multiplier; otherwise all overtime
  is tier-1. The accumulator advances regardless, preserving cross-day
  continuity for the threshold test if tiering re-engages later.
*/
package engine

import "github.com/shopspring/decimal"

// tierState is one worker's cumulative overtime, carried as explicit fold
// state through the chronological walk of the date range.
type tierState struct {
	cumulative decimal.Decimal
}

// allocate splits one interval's overtime hours into tiers and advances the
// accumulator. otHours must be non-negative.
func (s *tierState) allocate(otHours, threshold, multiplier, tier2Multiplier decimal.Decimal, enabled bool) (tier1, tier2 decimal.Decimal) {
	before := s.cumulative
	after := before.Add(otHours)
	s.cumulative = after

	if !enabled || !tier2Multiplier.GreaterThan(multiplier) {
		return otHours, decimal.Zero
	}

	switch {
	case after.LessThanOrEqual(threshold):
		return otHours, decimal.Zero
	case before.GreaterThanOrEqual(threshold):
		return decimal.Zero, otHours
	default:
		tier1 = threshold.Sub(before)
		return tier1, otHours.Sub(tier1)
	}
}
