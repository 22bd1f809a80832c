/*
assemble.go - Calculate, the engine's single entry point

PURPOSE:
  Orchestrates the full pipeline: bucket intervals by worker and date,
  derive the date range when none is given, walk each worker's days in
  chronological order running calendar resolution, override resolution,
  tail attribution, tiered overtime allocation and amount aggregation, and
  merge everything into per-worker results sorted by display name.

GUARANTEES:
  - Pure and synchronous: no I/O, no shared state across invocations.
  - Never raises on malformed business data; a structurally absent interval
    list yields an empty result set.
  - Deterministic: identical inputs produce identical output regardless of
    map insertion order (all grouping walks are explicitly sorted).
  - Days without recorded intervals are still backfilled so expected
    capacity and calendar counters cover the whole range.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Calculate runs the engine over a flat interval list. period may be nil,
// in which case the inclusive span between the earliest and latest
// bucketable interval date is used. The returned slice is sorted ascending
// by worker display name (ties broken by worker id).
func Calculate(intervals []*Interval, cfg Config, period *Period) []*WorkerResult {
	buckets := make(map[WorkerID]map[Day][]*Interval)
	names := make(map[WorkerID]string)
	allDays := make(map[Day]bool)

	for _, iv := range intervals {
		if iv == nil {
			continue
		}
		if iv.Start.IsZero() {
			// No usable date: excluded from date-bucketed output, but the
			// rest of the batch is still processed.
			continue
		}
		day := DayOf(iv.Start)
		if buckets[iv.WorkerID] == nil {
			buckets[iv.WorkerID] = make(map[Day][]*Interval)
		}
		buckets[iv.WorkerID][day] = append(buckets[iv.WorkerID][day], iv)
		allDays[day] = true
		if names[iv.WorkerID] == "" && iv.WorkerName != "" {
			names[iv.WorkerID] = iv.WorkerName
		}
	}

	// Roster workers with zero intervals still receive a zero-totals result.
	for _, w := range cfg.Workers {
		if buckets[w.ID] == nil {
			buckets[w.ID] = make(map[Day][]*Interval)
		}
		if w.Name != "" {
			names[w.ID] = w.Name
		}
	}

	var days []Day
	if period != nil && period.Valid() {
		days = period.Days()
	} else if derived, ok := periodOf(allDays); ok {
		days = derived.Days()
	}

	ids := make([]WorkerID, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	results := make([]*WorkerResult, 0, len(ids))
	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = UnknownWorkerName
		}
		results = append(results, computeWorker(id, name, buckets[id], days, &cfg))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return results[i].WorkerID < results[j].WorkerID
	})
	return results
}

// computeWorker walks one worker's days in chronological order, carrying
// the cumulative overtime accumulator across the whole range.
func computeWorker(id WorkerID, name string, bucket map[Day][]*Interval, days []Day, cfg *Config) *WorkerResult {
	res := &WorkerResult{
		WorkerID: id,
		Name:     name,
		Days:     make(map[Day]*DayAnalysis, len(days)),
	}
	t := &res.Totals
	var tiers tierState

	for _, day := range days {
		dayIntervals := bucket[day]
		st := resolveCalendar(cfg, id, day, dayIntervals)
		params := resolveParams(cfg, id, day)
		capacity := effectiveCapacity(params.Capacity, st)

		da := &DayAnalysis{
			Date:           day,
			Capacity:       capacity,
			BaseCapacity:   params.Capacity,
			Holiday:        st.Holiday,
			HolidayName:    st.HolidayName,
			TimeOff:        st.TimeOff,
			TimeOffHours:   st.TimeOffHours,
			FullDayTimeOff: st.FullDayTimeOff,
			NonWorkingDay:  st.NonWorking,
		}
		res.Days[day] = da

		// Calendar counters are backfilled for idle days as well, so
		// expected capacity reflects the whole range.
		t.ExpectedCapacity = t.ExpectedCapacity.Add(capacity)
		if st.Holiday {
			t.HolidayDays++
		}
		if st.TimeOff {
			t.TimeOffDays++
		}

		if len(dayIntervals) == 0 {
			continue
		}

		var work, other []*Interval
		for _, iv := range dayIntervals {
			if Classify(iv).CountsTowardCapacity() {
				work = append(work, iv)
			} else {
				other = append(other, iv)
			}
		}
		sortByStart(work)
		da.Intervals = append(append(make([]*Interval, 0, len(dayIntervals)), work...), other...)

		splits := splitDay(work, capacity)
		for i, iv := range work {
			s := splits[i]
			tier1, tier2 := tiers.allocate(s.overtime, params.Tier2Threshold, params.Multiplier, params.Tier2Multiplier, cfg.Flags.TieredOvertime)

			earnedRate, costRate := intervalRates(iv, s.hours)
			earned := familyBreakdown(earnedRate, s.hours, tier1, tier2, params.Multiplier, params.Tier2Multiplier)
			cost := familyBreakdown(costRate, s.hours, tier1, tier2, params.Multiplier, params.Tier2Multiplier)
			profit := earned.Sub(cost)

			iv.Analysis = &EntryAnalysis{
				Category:      CategoryWork,
				Hours:         s.hours,
				RegularHours:  s.regular,
				OvertimeHours: s.overtime,
				Tier1Hours:    tier1,
				Tier2Hours:    tier2,
				Earned:        earned,
				Cost:          cost,
				Profit:        profit,
			}

			t.TotalHours = t.TotalHours.Add(s.hours)
			t.RegularHours = t.RegularHours.Add(s.regular)
			t.OvertimeHours = t.OvertimeHours.Add(s.overtime)
			t.Tier1Hours = t.Tier1Hours.Add(tier1)
			t.Tier2Hours = t.Tier2Hours.Add(tier2)
			t.addBillable(iv.Billable, s.hours)
			t.Earned.add(earned)
			t.Cost.add(cost)
			t.Profit.add(profit)
		}

		for _, iv := range other {
			category := Classify(iv)
			hours := ResolveHours(iv)
			if !hours.IsPositive() {
				hours = decimal.Zero
			}
			t.TotalHours = t.TotalHours.Add(hours)
			t.addBillable(iv.Billable, hours)

			if category == CategoryBreak {
				// Breaks contribute hours only: no analysis, no amounts.
				t.BreakHours = t.BreakHours.Add(hours)
				continue
			}

			t.PTOHours = t.PTOHours.Add(hours)
			if category == CategoryHoliday {
				t.HolidayHours = t.HolidayHours.Add(hours)
			} else {
				t.TimeOffHours = t.TimeOffHours.Add(hours)
			}

			// PTO never consumes capacity and never carries overtime; it
			// still earns its base amount at the resolved rates.
			earnedRate, costRate := intervalRates(iv, hours)
			earned := familyBreakdown(earnedRate, hours, decimal.Zero, decimal.Zero, params.Multiplier, params.Tier2Multiplier)
			cost := familyBreakdown(costRate, hours, decimal.Zero, decimal.Zero, params.Multiplier, params.Tier2Multiplier)
			profit := earned.Sub(cost)

			iv.Analysis = &EntryAnalysis{
				Category: category,
				Hours:    hours,
				Earned:   earned,
				Cost:     cost,
				Profit:   profit,
			}
			t.Earned.add(earned)
			t.Cost.add(cost)
			t.Profit.add(profit)
		}
	}

	selected := t.headline(cfg.Display)
	t.Amount = selected.Amount
	t.OTPremium = selected.Premium()
	return res
}

func (t *Totals) addBillable(billable bool, hours decimal.Decimal) {
	if billable {
		t.BillableHours = t.BillableHours.Add(hours)
	} else {
		t.NonBillableHours = t.NonBillableHours.Add(hours)
	}
}
