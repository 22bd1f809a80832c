/*
rate.go - Rate normalization over heterogeneous record shapes

PURPOSE:
  The tracking source exposes hourly rates in several incompatible shapes:
    1. {"amount": 5000}       - record form, minor currency units
    2. 5000                   - flat number, minor currency units
    3. [{"type": "EARNED", "value": 400}, ...]
                              - tagged amount records; the rate is derived
                                by dividing the matching total by the
                                interval's duration hours

  Each interval rate field is classified ONCE into a tagged variant, then
  normalized per rate family (earned / cost) before any downstream stage
  touches it. Profit is never read from the source; it is always derived
  as earned minus cost.

DEGRADATION:
  Absent or malformed rate fields, division by a zero duration, and
  non-finite accumulated amounts all resolve to rate 0, never an error.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// AMOUNT FAMILIES
// =============================================================================

// AmountType tags entries in list-shaped rate fields. Matching is
// case-sensitive, per the source contract.
type AmountType string

const (
	AmountEarned AmountType = "EARNED"
	AmountCost   AmountType = "COST"
)

// minorPerUnit converts minor currency units (cents) to major units.
var minorPerUnit = decimal.NewFromInt(100)

// =============================================================================
// RATE VARIANT
// =============================================================================

type RateKind int

const (
	RateAbsent  RateKind = iota
	RateFlat             // bare number, minor units
	RateRecord           // {"amount": n} record, minor units
	RateDerived          // list of tagged amount entries
)

// RateSource is the classified form of one raw rate field.
type RateSource struct {
	Kind    RateKind
	Minor   decimal.Decimal // flat / record forms
	Entries []AmountEntry   // derived form
}

// AmountEntry is one parsed element of a list-shaped rate field.
type AmountEntry struct {
	Type  AmountType
	Value decimal.Decimal
}

// ClassifyRate resolves a raw rate field into its variant. Precedence per
// the source contract: record form, then flat number, then tagged list;
// anything else is absent.
func ClassifyRate(raw any) RateSource {
	if raw == nil {
		return RateSource{Kind: RateAbsent}
	}
	if record, ok := raw.(map[string]any); ok {
		if minor, ok := parseNumber(record["amount"]); ok {
			return RateSource{Kind: RateRecord, Minor: minor}
		}
		return RateSource{Kind: RateAbsent}
	}
	if minor, ok := parseNumber(raw); ok {
		return RateSource{Kind: RateFlat, Minor: minor}
	}
	if list, ok := raw.([]any); ok {
		return RateSource{Kind: RateDerived, Entries: parseAmountEntries(list)}
	}
	return RateSource{Kind: RateAbsent}
}

// parseAmountEntries accepts both key spellings the source uses: "type" or
// "amountType" for the tag, "value" or "amount" for the numeric payload.
// Entries without a numeric payload are dropped.
func parseAmountEntries(list []any) []AmountEntry {
	var entries []AmountEntry
	for _, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		tag, _ := record["type"].(string)
		if tag == "" {
			tag, _ = record["amountType"].(string)
		}
		value, ok := parseNumber(record["value"])
		if !ok {
			value, ok = parseNumber(record["amount"])
		}
		if !ok {
			continue
		}
		entries = append(entries, AmountEntry{Type: AmountType(tag), Value: value})
	}
	return entries
}

// Hourly resolves the hourly rate in major currency units for one family.
// Derived rates divide the family's accumulated amount by the interval's
// duration hours; a non-positive duration yields zero.
func (r RateSource) Hourly(family AmountType, hours decimal.Decimal) decimal.Decimal {
	switch r.Kind {
	case RateFlat, RateRecord:
		return r.Minor.Div(minorPerUnit)
	case RateDerived:
		if !hours.IsPositive() {
			return decimal.Zero
		}
		total := decimal.Zero
		for _, e := range r.Entries {
			if e.Type == family {
				total = total.Add(e.Value)
			}
		}
		return total.Div(hours)
	default:
		return decimal.Zero
	}
}

// intervalRates resolves both rate families for one interval. A list-shaped
// rate field carries both families' tagged entries, so the cost family falls
// back to it when the interval has no cost rate field of its own.
func intervalRates(iv *Interval, hours decimal.Decimal) (earned, cost decimal.Decimal) {
	earnedSrc := ClassifyRate(iv.Rate)
	costSrc := ClassifyRate(iv.CostRate)
	if costSrc.Kind == RateAbsent && earnedSrc.Kind == RateDerived {
		costSrc = earnedSrc
	}
	return earnedSrc.Hourly(AmountEarned, hours), costSrc.Hourly(AmountCost, hours)
}
