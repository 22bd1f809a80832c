/*
Package engine computes per-worker, per-day time and billing breakdowns.

PURPOSE:
  Given a flat list of recorded time intervals plus per-worker configuration
  (capacity profiles, calendar exceptions, override rules), the engine
  decomposes raw hours into regular, tier-1 and tier-2 overtime, break and
  paid-time-off buckets, and derives earned/cost/profit amounts for each.

KEY CONCEPTS IN THIS FILE (types.go):
  - Interval: One immutable recorded time interval from the tracking source
  - Worker / WorkerProfile: Roster entry and baseline capacity profile
  - Holiday / TimeOff: Calendar exceptions keyed by worker and date
  - OverrideConfig: Per-worker rule overrides (per-day, weekly, or global)
  - CalcParams: Process-wide defaults, the root of the override chain
  - DayAnalysis / WorkerResult / Totals: The computed output tree

DESIGN PRINCIPLES:
  1. Purity: Calculate is a synchronous function of its inputs. No I/O,
     no shared state, no suspension points.
  2. Precision: Uses decimal.Decimal so boundary comparisons are exact.
  3. Degradation: Malformed business data never raises. Unparseable values
     fall through to the next precedence level or resolve to zero.
  4. Determinism: Identical inputs produce identical output, including
     ordering, regardless of map insertion order.

USAGE:
  results := engine.Calculate(intervals, cfg, nil)
  for _, r := range results {
      fmt.Println(r.Name, r.Totals.RegularHours, r.Totals.Amount)
  }

SEE ALSO:
  - assemble.go: Calculate, the single entry point
  - split.go:    Tail attribution of regular vs. overtime hours
  - tiers.go:    Cross-day tiered overtime allocation
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string

// Worker is one roster entry from the tracking source.
type Worker struct {
	ID   WorkerID
	Name string
}

// UnknownWorkerName labels result entries synthesized for intervals whose
// worker id is absent from the roster and which carry no name of their own.
const UnknownWorkerName = "Unknown"

// =============================================================================
// INTERVAL - Immutable input record
// =============================================================================

// Interval is one recorded time interval. Fields mirror the tracking source:
// timestamps and the ISO-8601 duration are both optional, the type tag is a
// free-form case-sensitive string, and the rate fields are duck-typed (a flat
// minor-unit number, an {"amount": n} record, or a list of tagged amount
// records). See rate.go for how the rate shapes are normalized.
type Interval struct {
	ID         string
	WorkerID   WorkerID
	WorkerName string

	Start    time.Time // zero when the source omitted it
	End      time.Time
	Duration string // ISO-8601 duration; wins over timestamps when well-formed

	Type     string // classified case-sensitively; unknown tags mean WORK
	Billable bool

	Rate     any // earned-family rate field, any supported shape
	CostRate any // cost-family rate field, any supported shape

	// Analysis is attached by Calculate as a side annotation. It stays nil
	// for BREAK intervals and for intervals excluded from date bucketing.
	Analysis *EntryAnalysis
}

// EntryAnalysis is the computed breakdown for one interval.
type EntryAnalysis struct {
	Category      Category
	Hours         decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	Tier1Hours    decimal.Decimal
	Tier2Hours    decimal.Decimal

	Earned MoneyBreakdown
	Cost   MoneyBreakdown
	Profit MoneyBreakdown
}

// MoneyBreakdown is one rate family's amounts for a single interval.
type MoneyBreakdown struct {
	Rate         decimal.Decimal // hourly, major currency units
	Base         decimal.Decimal // hours x rate
	Tier1Premium decimal.Decimal
	Tier2Premium decimal.Decimal
}

func (m MoneyBreakdown) Premium() decimal.Decimal {
	return m.Tier1Premium.Add(m.Tier2Premium)
}

func (m MoneyBreakdown) Total() decimal.Decimal {
	return m.Base.Add(m.Tier1Premium).Add(m.Tier2Premium)
}

// Sub returns the field-wise difference of two breakdowns. Profit is always
// derived this way from the earned and cost families, never read directly.
func (m MoneyBreakdown) Sub(o MoneyBreakdown) MoneyBreakdown {
	return MoneyBreakdown{
		Rate:         m.Rate.Sub(o.Rate),
		Base:         m.Base.Sub(o.Base),
		Tier1Premium: m.Tier1Premium.Sub(o.Tier1Premium),
		Tier2Premium: m.Tier2Premium.Sub(o.Tier2Premium),
	}
}

// =============================================================================
// PER-WORKER CONFIGURATION
// =============================================================================

// WorkerProfile carries a worker's baseline daily capacity and working
// weekdays. Optional: absent profiles fall back to the process defaults.
type WorkerProfile struct {
	DailyCapacity decimal.Decimal
	WorkingDays   []string // weekday names, matched case-insensitively
}

// Holiday is a calendar exception marking a full non-working day.
type Holiday struct {
	Date      Day
	Name      string
	ProjectID string // optional linked project
}

// TimeOff is an approved time-off calendar exception. FullDay zeroes the
// day's capacity; otherwise Hours is subtracted from it.
type TimeOff struct {
	Date    Day
	Hours   decimal.Decimal
	FullDay bool
	Name    string
}

// OverrideConfig carries a worker's rule overrides. Mode selects which
// mapping applies; the four field values are raw and may be non-numeric,
// in which case that level is silently skipped during resolution.
type OverrideConfig struct {
	Mode   string // "perDay" | "weekly" | anything else behaves as unset
	Global OverrideFields
	Days   map[string]OverrideFields // ISO date (perDay) or weekday name (weekly)
}

// OverrideFields holds the four overridable parameters in raw form.
type OverrideFields struct {
	Capacity        any
	Multiplier      any
	Tier2Threshold  any
	Tier2Multiplier any
}

// =============================================================================
// PROCESS-WIDE CONFIGURATION
// =============================================================================

// CalcParams is the root of the override fallback chain.
type CalcParams struct {
	DailyCapacity   decimal.Decimal
	Multiplier      decimal.Decimal
	Tier2Threshold  decimal.Decimal
	Tier2Multiplier decimal.Decimal
}

// DefaultParams returns the stock ruleset: 8h days, time-and-a-half
// overtime, double time after 8 cumulative overtime hours.
func DefaultParams() CalcParams {
	return CalcParams{
		DailyCapacity:   decimal.NewFromInt(8),
		Multiplier:      decimal.RequireFromString("1.5"),
		Tier2Threshold:  decimal.NewFromInt(8),
		Tier2Multiplier: decimal.NewFromInt(2),
	}
}

// Flags gate the optional integrations. With a calendar flag off, the
// corresponding status is inferred from interval type tags instead.
type Flags struct {
	HolidayCalendar bool
	TimeOffCalendar bool
	WorkingDays     bool
	TieredOvertime  bool
}

// DisplayMode selects which rate family populates the headline totals.
type DisplayMode string

const (
	DisplayEarned DisplayMode = "earned"
	DisplayCost   DisplayMode = "cost"
	DisplayProfit DisplayMode = "profit"
)

// normalize maps unset or invalid modes to the default.
func (m DisplayMode) normalize() DisplayMode {
	switch m {
	case DisplayCost, DisplayProfit:
		return m
	default:
		return DisplayEarned
	}
}

// Config is the immutable configuration snapshot passed into Calculate.
// No stage reads from ambient state; everything flows through here.
type Config struct {
	Params  CalcParams
	Flags   Flags
	Display DisplayMode

	Workers   []Worker
	Profiles  map[WorkerID]*WorkerProfile
	Holidays  map[WorkerID][]Holiday
	TimeOff   map[WorkerID][]TimeOff
	Overrides map[WorkerID]*OverrideConfig
}

// =============================================================================
// OUTPUT TREE
// =============================================================================

// DayAnalysis is the computed state of one worker-day.
type DayAnalysis struct {
	Date Day

	// Capacity is the effective capacity after calendar adjustments;
	// BaseCapacity is the override-resolved value before them.
	Capacity     decimal.Decimal
	BaseCapacity decimal.Decimal

	Holiday        bool
	HolidayName    string
	TimeOff        bool
	TimeOffHours   decimal.Decimal
	FullDayTimeOff bool
	NonWorkingDay  bool

	// Intervals holds the day's recorded intervals in processing order
	// (WORK intervals sorted by start time). Empty for backfilled days.
	Intervals []*Interval
}

// FamilyTotals accumulates one rate family's amounts across a worker.
type FamilyTotals struct {
	Amount       decimal.Decimal // base + premiums
	Base         decimal.Decimal
	Tier1Premium decimal.Decimal
	Tier2Premium decimal.Decimal
}

func (f FamilyTotals) Premium() decimal.Decimal {
	return f.Tier1Premium.Add(f.Tier2Premium)
}

func (f *FamilyTotals) add(m MoneyBreakdown) {
	f.Base = f.Base.Add(m.Base)
	f.Tier1Premium = f.Tier1Premium.Add(m.Tier1Premium)
	f.Tier2Premium = f.Tier2Premium.Add(m.Tier2Premium)
	f.Amount = f.Amount.Add(m.Total())
}

// Totals is the per-worker rollup.
type Totals struct {
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	Tier1Hours    decimal.Decimal
	Tier2Hours    decimal.Decimal

	BreakHours   decimal.Decimal
	PTOHours     decimal.Decimal
	HolidayHours decimal.Decimal
	TimeOffHours decimal.Decimal

	HolidayDays int
	TimeOffDays int

	ExpectedCapacity decimal.Decimal

	BillableHours    decimal.Decimal
	NonBillableHours decimal.Decimal

	// Headline amounts, populated from the display-mode family.
	Amount    decimal.Decimal
	OTPremium decimal.Decimal

	Earned FamilyTotals
	Cost   FamilyTotals
	Profit FamilyTotals
}

// WorkerResult is one worker's complete analysis for the date range.
type WorkerResult struct {
	WorkerID WorkerID
	Name     string
	Days     map[Day]*DayAnalysis
	Totals   Totals
}
