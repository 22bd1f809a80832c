package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/engine"
)

func hoursOf(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestClassifyRate_RecordForm(t *testing.T) {
	r := engine.ClassifyRate(map[string]any{"amount": float64(5000)})
	if r.Kind != engine.RateRecord {
		t.Fatalf("kind = %d, want record", r.Kind)
	}
	wantDec(t, "hourly", r.Hourly(engine.AmountEarned, hoursOf(8)), 50)
}

func TestClassifyRate_FlatForms(t *testing.T) {
	for _, raw := range []any{float64(5000), int(5000), "5000"} {
		r := engine.ClassifyRate(raw)
		if r.Kind != engine.RateFlat {
			t.Fatalf("%v: kind = %d, want flat", raw, r.Kind)
		}
		wantDec(t, "hourly", r.Hourly(engine.AmountEarned, hoursOf(1)), 50)
	}
}

func TestClassifyRate_DerivedFromTaggedAmounts(t *testing.T) {
	// Both key spellings are accepted for the tag and the payload.
	raw := []any{
		map[string]any{"type": "EARNED", "value": float64(300)},
		map[string]any{"amountType": "EARNED", "amount": float64(100)},
		map[string]any{"type": "COST", "value": float64(240)},
		map[string]any{"type": "EARNED"},       // no payload: dropped
		map[string]any{"value": float64(1e18)}, // no tag: never matches
		"not a record",                         // skipped
	}
	r := engine.ClassifyRate(raw)
	if r.Kind != engine.RateDerived {
		t.Fatalf("kind = %d, want derived", r.Kind)
	}
	wantDec(t, "earned", r.Hourly(engine.AmountEarned, hoursOf(8)), 50)
	wantDec(t, "cost", r.Hourly(engine.AmountCost, hoursOf(8)), 30)
}

func TestClassifyRate_DerivedZeroDurationIsZero(t *testing.T) {
	raw := []any{map[string]any{"type": "EARNED", "value": float64(400)}}
	r := engine.ClassifyRate(raw)
	wantDec(t, "zero hours", r.Hourly(engine.AmountEarned, decimal.Zero), 0)
	wantDec(t, "negative hours", r.Hourly(engine.AmountEarned, hoursOf(-1)), 0)
}

func TestClassifyRate_MalformedIsAbsent(t *testing.T) {
	for _, raw := range []any{
		nil,
		"fifty",
		map[string]any{"amount": "a lot"},
		map[string]any{"currency": "USD"},
		true,
	} {
		r := engine.ClassifyRate(raw)
		if r.Kind != engine.RateAbsent {
			t.Fatalf("%v: kind = %d, want absent", raw, r.Kind)
		}
		wantDec(t, "hourly", r.Hourly(engine.AmountEarned, hoursOf(8)), 0)
	}
}

func TestClassifyRate_TagMatchingIsCaseSensitive(t *testing.T) {
	raw := []any{map[string]any{"type": "earned", "value": float64(400)}}
	r := engine.ClassifyRate(raw)
	wantDec(t, "lowercase tag", r.Hourly(engine.AmountEarned, hoursOf(8)), 0)
}

func TestCalculate_CostFamilyFallsBackToSharedAmountList(t *testing.T) {
	iv := workInterval(t, "w1", "Ada", "2025-03-03T08:00:00Z", 8, []any{
		map[string]any{"type": "EARNED", "value": float64(400)},
		map[string]any{"type": "COST", "value": float64(240)},
	})
	r := soleResult(t, engine.Calculate([]*engine.Interval{iv}, baseConfig(), nil))
	wantDec(t, "earned", r.Totals.Earned.Amount, 400)
	wantDec(t, "cost", r.Totals.Cost.Amount, 240)
	wantDec(t, "profit", r.Totals.Profit.Amount, 160)
}
