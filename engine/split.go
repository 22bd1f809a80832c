/*
split.go - Tail attribution of regular vs. overtime hours

PURPOSE:
  Walks one day's WORK intervals in start-time order, carrying a running
  accumulator against the day's effective capacity, and attributes each
  interval's hours across the regular/overtime boundary.

BOUNDARY SEMANTICS (load-bearing):
  accumulator >= capacity             -> entire interval is overtime
  accumulator + duration <= capacity  -> entire interval is regular
  otherwise                           -> split exactly at the boundary

  Equality at the lower bound routes to "all overtime"; equality at the
  upper bound routes to "all regular". No split happens at an exact
  boundary. Comparisons are exact decimal comparisons.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// hourSplit is one interval's share of regular and overtime hours.
type hourSplit struct {
	hours    decimal.Decimal // resolved duration, clamped at zero
	regular  decimal.Decimal
	overtime decimal.Decimal
}

// sortByStart orders a day's intervals ascending by start time, in place.
// Zero starts sort first (Calculate drops such intervals before bucketing;
// handled here anyway so ordering never depends on the caller). The sort is
// stable so equal starts keep input order.
func sortByStart(intervals []*Interval) {
	sort.SliceStable(intervals, func(i, j int) bool {
		a, b := intervals[i], intervals[j]
		if a.Start.IsZero() != b.Start.IsZero() {
			return a.Start.IsZero()
		}
		return a.Start.Before(b.Start)
	})
}

// splitDay runs tail attribution over one day's ordered WORK intervals.
// The returned slice is positionally aligned with the input. Non-positive
// durations contribute zero hours and do not advance the accumulator.
func splitDay(work []*Interval, capacity decimal.Decimal) []hourSplit {
	splits := make([]hourSplit, len(work))
	accumulator := decimal.Zero

	for i, iv := range work {
		duration := ResolveHours(iv)
		if !duration.IsPositive() {
			splits[i] = hourSplit{}
			continue
		}

		var s hourSplit
		s.hours = duration
		switch {
		case accumulator.GreaterThanOrEqual(capacity):
			s.overtime = duration
		case accumulator.Add(duration).LessThanOrEqual(capacity):
			s.regular = duration
		default:
			s.regular = capacity.Sub(accumulator)
			s.overtime = duration.Sub(s.regular)
		}
		splits[i] = s
		accumulator = accumulator.Add(duration)
	}
	return splits
}
