package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/engine"
)

func TestCalculate_PartialTimeOffReducesCapacity(t *testing.T) {
	cfg := baseConfig()
	cfg.Flags.TimeOffCalendar = true
	cfg.TimeOff = map[engine.WorkerID][]engine.TimeOff{
		"w1": {{Date: "2025-03-03", Hours: decimal.NewFromInt(3), Name: "appointment"}},
	}

	// 7 recorded hours against an effective capacity of 8-3=5.
	entries := []*engine.Interval{
		workInterval(t, "w1", "Ada", "2025-03-03T08:00:00Z", 7, centsRate(5000)),
	}
	r := soleResult(t, engine.Calculate(entries, cfg, nil))

	day := r.Days["2025-03-03"]
	wantDec(t, "capacity", day.Capacity, 5)
	wantDec(t, "regular", r.Totals.RegularHours, 5)
	wantDec(t, "overtime", r.Totals.OvertimeHours, 2)
	if r.Totals.TimeOffDays != 1 {
		t.Fatalf("timeOffDays = %d, want 1", r.Totals.TimeOffDays)
	}
}

func TestCalculate_FullDayTimeOffZeroesCapacity(t *testing.T) {
	cfg := baseConfig()
	cfg.Flags.TimeOffCalendar = true
	cfg.TimeOff = map[engine.WorkerID][]engine.TimeOff{
		"w1": {{Date: "2025-03-03", FullDay: true}},
	}
	entries := []*engine.Interval{
		workInterval(t, "w1", "Ada", "2025-03-03T08:00:00Z", 2, centsRate(5000)),
	}
	r := soleResult(t, engine.Calculate(entries, cfg, nil))
	wantDec(t, "capacity", r.Days["2025-03-03"].Capacity, 0)
	wantDec(t, "overtime", r.Totals.OvertimeHours, 2)
}

func TestCalculate_HolidayWinsOverTimeOff(t *testing.T) {
	// The same day carries a holiday and partial time off; holiday status
	// takes precedence and zeroes the capacity outright.
	cfg := baseConfig()
	cfg.Flags.HolidayCalendar = true
	cfg.Flags.TimeOffCalendar = true
	cfg.Holidays = map[engine.WorkerID][]engine.Holiday{
		"w1": {{Date: "2025-03-03", Name: "May Day"}},
	}
	cfg.TimeOff = map[engine.WorkerID][]engine.TimeOff{
		"w1": {{Date: "2025-03-03", Hours: decimal.NewFromInt(2)}},
	}
	entries := []*engine.Interval{
		workInterval(t, "w1", "Ada", "2025-03-03T08:00:00Z", 4, centsRate(5000)),
	}
	r := soleResult(t, engine.Calculate(entries, cfg, nil))

	day := r.Days["2025-03-03"]
	if !day.Holiday || day.HolidayName != "May Day" {
		t.Fatalf("holiday status missing: %+v", day)
	}
	wantDec(t, "capacity", day.Capacity, 0)
}

func TestCalculate_TagFallbackWhenIntegrationOff(t *testing.T) {
	// Holiday integration off: the HOLIDAY type tag marks the day instead.
	entries := []*engine.Interval{
		workInterval(t, "w1", "Ada", "2025-03-03T08:00:00Z", 5, centsRate(5000)),
	}
	pto := workInterval(t, "w1", "Ada", "2025-03-03T14:00:00Z", 8, centsRate(5000))
	pto.Type = engine.TypeHoliday
	entries = append(entries, pto)

	r := soleResult(t, engine.Calculate(entries, baseConfig(), nil))
	day := r.Days["2025-03-03"]
	if !day.Holiday {
		t.Fatal("tag-inferred holiday status missing")
	}
	wantDec(t, "capacity", day.Capacity, 0)
	// The day's work hours all become overtime against zero capacity.
	wantDec(t, "overtime", r.Totals.OvertimeHours, 5)
	wantDec(t, "holiday hours", r.Totals.HolidayHours, 8)
	if r.Totals.HolidayDays != 1 {
		t.Fatalf("holidayDays = %d, want 1", r.Totals.HolidayDays)
	}
}

func TestCalculate_NonWorkingDayNeedsFlagAndProfile(t *testing.T) {
	// 2025-03-08 is a Saturday.
	entries := []*engine.Interval{
		workInterval(t, "w1", "Ada", "2025-03-08T10:00:00Z", 4, centsRate(5000)),
	}
	weekdays := &engine.WorkerProfile{
		DailyCapacity: decimal.NewFromInt(8),
		WorkingDays:   []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
	}

	// Flag off: Saturday stays an ordinary working day.
	cfg := baseConfig()
	cfg.Profiles = map[engine.WorkerID]*engine.WorkerProfile{"w1": weekdays}
	r := soleResult(t, engine.Calculate(entries, cfg, nil))
	wantDec(t, "flag off regular", r.Totals.RegularHours, 4)

	// Flag on with a profile: Saturday capacity drops to zero.
	cfg.Flags.WorkingDays = true
	r = soleResult(t, engine.Calculate(entries, cfg, nil))
	if !r.Days["2025-03-08"].NonWorkingDay {
		t.Fatal("saturday not flagged non-working")
	}
	wantDec(t, "flag on overtime", r.Totals.OvertimeHours, 4)

	// Flag on without a profile: nothing to infer from, day stays working.
	cfg.Profiles = nil
	r = soleResult(t, engine.Calculate(entries, cfg, nil))
	wantDec(t, "no profile regular", r.Totals.RegularHours, 4)
}

func TestCalculate_TierAccumulatorCrossesDays(t *testing.T) {
	// Two days with 3h overtime each against a 4h tier-2 threshold: day one
	// is all tier-1, day two splits 1h/2h at the cumulative boundary.
	cfg := baseConfig()
	cfg.Flags.TieredOvertime = true
	cfg.Params.Tier2Threshold = decimal.NewFromInt(4)

	entries := []*engine.Interval{
		workInterval(t, "w1", "Ada", "2025-03-03T08:00:00Z", 11, centsRate(5000)),
		workInterval(t, "w1", "Ada", "2025-03-04T08:00:00Z", 11, centsRate(5000)),
	}
	soleResult(t, engine.Calculate(entries, cfg, nil))

	day1, day2 := entries[0].Analysis, entries[1].Analysis
	wantDec(t, "day1 tier1", day1.Tier1Hours, 3)
	wantDec(t, "day1 tier2", day1.Tier2Hours, 0)
	wantDec(t, "day2 tier1", day2.Tier1Hours, 1)
	wantDec(t, "day2 tier2", day2.Tier2Hours, 2)
}

func TestCalculate_TieringRequiresStrictlyGreaterMultiplier(t *testing.T) {
	cfg := baseConfig()
	cfg.Flags.TieredOvertime = true
	cfg.Params.Tier2Threshold = decimal.NewFromInt(1)
	cfg.Params.Tier2Multiplier = cfg.Params.Multiplier // not strictly greater

	entries := []*engine.Interval{
		workInterval(t, "w1", "Ada", "2025-03-03T08:00:00Z", 12, centsRate(5000)),
	}
	r := soleResult(t, engine.Calculate(entries, cfg, nil))
	wantDec(t, "tier1", r.Totals.Tier1Hours, 4)
	wantDec(t, "tier2", r.Totals.Tier2Hours, 0)
}
