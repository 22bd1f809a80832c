/*
amounts.go - Monetary amounts from hour splits

PURPOSE:
  Converts one interval's hour split into amounts for each rate family:

    base         = hours x rate
    tier1Premium = tier1Hours x rate x (multiplier - 1)
    tier2Premium = tier2Hours x rate x (tier2Multiplier - multiplier)

  The tier-2 premium is additive on top of the tier-1 rate, not a
  replacement. Earned and cost are computed independently; profit is the
  earned breakdown minus the cost breakdown at every granularity.
*/
package engine

import "github.com/shopspring/decimal"

var one = decimal.NewFromInt(1)

// familyBreakdown computes one rate family's amounts for an interval.
func familyBreakdown(rate, hours, tier1, tier2, multiplier, tier2Multiplier decimal.Decimal) MoneyBreakdown {
	return MoneyBreakdown{
		Rate:         rate,
		Base:         hours.Mul(rate),
		Tier1Premium: tier1.Mul(rate).Mul(multiplier.Sub(one)),
		Tier2Premium: tier2.Mul(rate).Mul(tier2Multiplier.Sub(multiplier)),
	}
}

// headline selects the display-mode family out of a worker's totals.
func (t *Totals) headline(mode DisplayMode) FamilyTotals {
	switch mode.normalize() {
	case DisplayCost:
		return t.Cost
	case DisplayProfit:
		return t.Profit
	default:
		return t.Earned
	}
}
