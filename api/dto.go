/*
dto.go - Request and response data structures for the HTTP API

PURPOSE:
  Defines the JSON shapes crossing the HTTP boundary and the converters
  between them and the engine's decimal-based types. Amounts leave the
  process as float64; all arithmetic happened upstream in decimals, so
  the conversion here is display-only.

CONVENTIONS:
  - Dates are ISO "2006-01-02" strings, timestamps RFC3339.
  - Raw override field values pass through as-is (any): the engine's
    resolver, not the API, decides what parses.

SEE ALSO:
  - handlers.go: where these shapes are read and written
  - engine/types.go: the decimal-based originals
*/
package api

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/engine"
	"github.com/warp/timesheet-engine/tracker"
)

// =============================================================================
// REQUESTS
// =============================================================================

// ReportRequest asks for a computed report over an inclusive date range.
type ReportRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CalculateRequest carries a complete offline calculation: the intervals and
// the full configuration bundle, no tracker or store involved.
type CalculateRequest struct {
	Start     string          `json:"start,omitempty"`
	End       string          `json:"end,omitempty"`
	Intervals []IntervalInput `json:"intervals"`
	Config    ConfigInput     `json:"config"`
}

// IntervalInput is one recorded interval as submitted by a caller.
type IntervalInput struct {
	ID         string `json:"id"`
	WorkerID   string `json:"workerId"`
	WorkerName string `json:"workerName"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Duration   string `json:"duration"`
	Type       string `json:"type"`
	Billable   bool   `json:"billable"`
	Rate       any    `json:"rate"`
	CostRate   any    `json:"costRate"`
}

// ConfigInput is the engine configuration as submitted by a caller.
type ConfigInput struct {
	Params    *ParamsDTO               `json:"params"`
	Flags     FlagsDTO                 `json:"flags"`
	Display   string                   `json:"display"`
	Workers   []WorkerInput            `json:"workers"`
	Profiles  map[string]ProfileDTO    `json:"profiles"`
	Holidays  map[string][]HolidayDTO  `json:"holidays"`
	TimeOff   map[string][]TimeOffDTO  `json:"timeOff"`
	Overrides map[string]OverrideInput `json:"overrides"`
}

type WorkerInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FlagsDTO struct {
	HolidayCalendar bool `json:"holidayCalendar"`
	TimeOffCalendar bool `json:"timeOffCalendar"`
	WorkingDays     bool `json:"workingDays"`
	TieredOvertime  bool `json:"tieredOvertime"`
}

// ParamsDTO is the process-default ruleset in JSON form.
type ParamsDTO struct {
	DailyCapacity   float64 `json:"dailyCapacity"`
	Multiplier      float64 `json:"multiplier"`
	Tier2Threshold  float64 `json:"tier2Threshold"`
	Tier2Multiplier float64 `json:"tier2Multiplier"`
}

type ProfileDTO struct {
	DailyCapacity float64  `json:"dailyCapacity"`
	WorkingDays   []string `json:"workingDays,omitempty"`
}

type HolidayDTO struct {
	Date      string `json:"date"`
	Name      string `json:"name,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

type TimeOffDTO struct {
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	FullDay bool    `json:"fullDay"`
	Name    string  `json:"name,omitempty"`
}

// OverrideInput keeps the four field values raw so non-numeric entries reach
// the resolver unchanged.
type OverrideInput struct {
	Mode   string                         `json:"mode"`
	Global OverrideFieldsInput            `json:"global"`
	Days   map[string]OverrideFieldsInput `json:"days,omitempty"`
}

type OverrideFieldsInput struct {
	Capacity        any `json:"capacity,omitempty"`
	Multiplier      any `json:"multiplier,omitempty"`
	Tier2Threshold  any `json:"tier2Threshold,omitempty"`
	Tier2Multiplier any `json:"tier2Multiplier,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ReportResponse is the computed report plus transport bookkeeping.
type ReportResponse struct {
	Start   string            `json:"start"`
	End     string            `json:"end"`
	Cached  bool              `json:"cached"`
	Fetch   *FetchStatsDTO    `json:"fetch,omitempty"`
	Workers []WorkerResultDTO `json:"workers"`
}

// FetchStatsDTO surfaces transport outcomes so partial results are visible.
type FetchStatsDTO struct {
	Requests int `json:"requests"`
	Retries  int `json:"retries"`
	Failures int `json:"failures"`
	Partial  int `json:"partial"`
}

type CalculateResponse struct {
	Workers []WorkerResultDTO `json:"workers"`
}

type WorkerResultDTO struct {
	WorkerID string           `json:"workerId"`
	Name     string           `json:"name"`
	Days     []DayAnalysisDTO `json:"days"`
	Totals   TotalsDTO        `json:"totals"`
}

type DayAnalysisDTO struct {
	Date           string        `json:"date"`
	Capacity       float64       `json:"capacity"`
	BaseCapacity   float64       `json:"baseCapacity"`
	Holiday        bool          `json:"holiday"`
	HolidayName    string        `json:"holidayName,omitempty"`
	TimeOff        bool          `json:"timeOff"`
	TimeOffHours   float64       `json:"timeOffHours"`
	FullDayTimeOff bool          `json:"fullDayTimeOff"`
	NonWorkingDay  bool          `json:"nonWorkingDay"`
	Intervals      []IntervalDTO `json:"intervals"`
}

type IntervalDTO struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Billable bool         `json:"billable"`
	Analysis *AnalysisDTO `json:"analysis,omitempty"`
}

type AnalysisDTO struct {
	Category      string  `json:"category"`
	Hours         float64 `json:"hours"`
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	Tier1Hours    float64 `json:"tier1Hours"`
	Tier2Hours    float64 `json:"tier2Hours"`

	Earned MoneyDTO `json:"earned"`
	Cost   MoneyDTO `json:"cost"`
	Profit MoneyDTO `json:"profit"`
}

type MoneyDTO struct {
	Rate         float64 `json:"rate"`
	Base         float64 `json:"base"`
	Tier1Premium float64 `json:"tier1Premium"`
	Tier2Premium float64 `json:"tier2Premium"`
	Total        float64 `json:"total"`
}

type TotalsDTO struct {
	TotalHours    float64 `json:"totalHours"`
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	Tier1Hours    float64 `json:"tier1Hours"`
	Tier2Hours    float64 `json:"tier2Hours"`

	BreakHours   float64 `json:"breakHours"`
	PTOHours     float64 `json:"ptoHours"`
	HolidayHours float64 `json:"holidayHours"`
	TimeOffHours float64 `json:"timeOffHours"`

	HolidayDays int `json:"holidayDays"`
	TimeOffDays int `json:"timeOffDays"`

	ExpectedCapacity float64 `json:"expectedCapacity"`

	BillableHours    float64 `json:"billableHours"`
	NonBillableHours float64 `json:"nonBillableHours"`

	Amount    float64 `json:"amount"`
	OTPremium float64 `json:"otPremium"`

	Earned FamilyDTO `json:"earned"`
	Cost   FamilyDTO `json:"cost"`
	Profit FamilyDTO `json:"profit"`
}

type FamilyDTO struct {
	Amount       float64 `json:"amount"`
	Base         float64 `json:"base"`
	Tier1Premium float64 `json:"tier1Premium"`
	Tier2Premium float64 `json:"tier2Premium"`
}

// =============================================================================
// CONVERTERS - engine -> DTO
// =============================================================================

func toWorkerResultDTOs(results []*engine.WorkerResult) []WorkerResultDTO {
	dtos := make([]WorkerResultDTO, 0, len(results))
	for _, r := range results {
		dtos = append(dtos, toWorkerResultDTO(r))
	}
	return dtos
}

func toWorkerResultDTO(r *engine.WorkerResult) WorkerResultDTO {
	days := make([]engine.Day, 0, len(r.Days))
	for d := range r.Days {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	dayDTOs := make([]DayAnalysisDTO, 0, len(days))
	for _, d := range days {
		dayDTOs = append(dayDTOs, toDayDTO(r.Days[d]))
	}

	return WorkerResultDTO{
		WorkerID: string(r.WorkerID),
		Name:     r.Name,
		Days:     dayDTOs,
		Totals:   toTotalsDTO(r.Totals),
	}
}

func toDayDTO(da *engine.DayAnalysis) DayAnalysisDTO {
	intervals := make([]IntervalDTO, 0, len(da.Intervals))
	for _, iv := range da.Intervals {
		dto := IntervalDTO{ID: iv.ID, Type: iv.Type, Billable: iv.Billable}
		if iv.Analysis != nil {
			dto.Analysis = toAnalysisDTO(iv.Analysis)
		}
		intervals = append(intervals, dto)
	}

	return DayAnalysisDTO{
		Date:           string(da.Date),
		Capacity:       da.Capacity.InexactFloat64(),
		BaseCapacity:   da.BaseCapacity.InexactFloat64(),
		Holiday:        da.Holiday,
		HolidayName:    da.HolidayName,
		TimeOff:        da.TimeOff,
		TimeOffHours:   da.TimeOffHours.InexactFloat64(),
		FullDayTimeOff: da.FullDayTimeOff,
		NonWorkingDay:  da.NonWorkingDay,
		Intervals:      intervals,
	}
}

func toAnalysisDTO(a *engine.EntryAnalysis) *AnalysisDTO {
	return &AnalysisDTO{
		Category:      a.Category.String(),
		Hours:         a.Hours.InexactFloat64(),
		RegularHours:  a.RegularHours.InexactFloat64(),
		OvertimeHours: a.OvertimeHours.InexactFloat64(),
		Tier1Hours:    a.Tier1Hours.InexactFloat64(),
		Tier2Hours:    a.Tier2Hours.InexactFloat64(),
		Earned:        toMoneyDTO(a.Earned),
		Cost:          toMoneyDTO(a.Cost),
		Profit:        toMoneyDTO(a.Profit),
	}
}

func toMoneyDTO(m engine.MoneyBreakdown) MoneyDTO {
	return MoneyDTO{
		Rate:         m.Rate.InexactFloat64(),
		Base:         m.Base.InexactFloat64(),
		Tier1Premium: m.Tier1Premium.InexactFloat64(),
		Tier2Premium: m.Tier2Premium.InexactFloat64(),
		Total:        m.Total().InexactFloat64(),
	}
}

func toTotalsDTO(t engine.Totals) TotalsDTO {
	return TotalsDTO{
		TotalHours:       t.TotalHours.InexactFloat64(),
		RegularHours:     t.RegularHours.InexactFloat64(),
		OvertimeHours:    t.OvertimeHours.InexactFloat64(),
		Tier1Hours:       t.Tier1Hours.InexactFloat64(),
		Tier2Hours:       t.Tier2Hours.InexactFloat64(),
		BreakHours:       t.BreakHours.InexactFloat64(),
		PTOHours:         t.PTOHours.InexactFloat64(),
		HolidayHours:     t.HolidayHours.InexactFloat64(),
		TimeOffHours:     t.TimeOffHours.InexactFloat64(),
		HolidayDays:      t.HolidayDays,
		TimeOffDays:      t.TimeOffDays,
		ExpectedCapacity: t.ExpectedCapacity.InexactFloat64(),
		BillableHours:    t.BillableHours.InexactFloat64(),
		NonBillableHours: t.NonBillableHours.InexactFloat64(),
		Amount:           t.Amount.InexactFloat64(),
		OTPremium:        t.OTPremium.InexactFloat64(),
		Earned:           toFamilyDTO(t.Earned),
		Cost:             toFamilyDTO(t.Cost),
		Profit:           toFamilyDTO(t.Profit),
	}
}

func toFamilyDTO(f engine.FamilyTotals) FamilyDTO {
	return FamilyDTO{
		Amount:       f.Amount.InexactFloat64(),
		Base:         f.Base.InexactFloat64(),
		Tier1Premium: f.Tier1Premium.InexactFloat64(),
		Tier2Premium: f.Tier2Premium.InexactFloat64(),
	}
}

func toFetchStatsDTO(s tracker.Stats) *FetchStatsDTO {
	return &FetchStatsDTO{
		Requests: s.Requests,
		Retries:  s.Retries,
		Failures: s.Failures,
		Partial:  s.Partial,
	}
}

// =============================================================================
// CONVERTERS - DTO -> engine
// =============================================================================

func toEngineParams(p ParamsDTO) engine.CalcParams {
	return engine.CalcParams{
		DailyCapacity:   decimal.NewFromFloat(p.DailyCapacity),
		Multiplier:      decimal.NewFromFloat(p.Multiplier),
		Tier2Threshold:  decimal.NewFromFloat(p.Tier2Threshold),
		Tier2Multiplier: decimal.NewFromFloat(p.Tier2Multiplier),
	}
}

func toParamsDTO(p engine.CalcParams) ParamsDTO {
	return ParamsDTO{
		DailyCapacity:   p.DailyCapacity.InexactFloat64(),
		Multiplier:      p.Multiplier.InexactFloat64(),
		Tier2Threshold:  p.Tier2Threshold.InexactFloat64(),
		Tier2Multiplier: p.Tier2Multiplier.InexactFloat64(),
	}
}

func toEngineProfile(p ProfileDTO) *engine.WorkerProfile {
	return &engine.WorkerProfile{
		DailyCapacity: decimal.NewFromFloat(p.DailyCapacity),
		WorkingDays:   p.WorkingDays,
	}
}

func toProfileDTO(p *engine.WorkerProfile) ProfileDTO {
	return ProfileDTO{
		DailyCapacity: p.DailyCapacity.InexactFloat64(),
		WorkingDays:   p.WorkingDays,
	}
}

func toEngineOverrides(in OverrideInput) *engine.OverrideConfig {
	oc := &engine.OverrideConfig{
		Mode:   in.Mode,
		Global: toEngineOverrideFields(in.Global),
	}
	if len(in.Days) > 0 {
		oc.Days = make(map[string]engine.OverrideFields, len(in.Days))
		for key, fields := range in.Days {
			oc.Days[key] = toEngineOverrideFields(fields)
		}
	}
	return oc
}

func toEngineOverrideFields(in OverrideFieldsInput) engine.OverrideFields {
	return engine.OverrideFields{
		Capacity:        in.Capacity,
		Multiplier:      in.Multiplier,
		Tier2Threshold:  in.Tier2Threshold,
		Tier2Multiplier: in.Tier2Multiplier,
	}
}

func toOverrideDTO(oc *engine.OverrideConfig) OverrideInput {
	out := OverrideInput{
		Mode:   oc.Mode,
		Global: toOverrideFieldsDTO(oc.Global),
	}
	if len(oc.Days) > 0 {
		out.Days = make(map[string]OverrideFieldsInput, len(oc.Days))
		for key, fields := range oc.Days {
			out.Days[key] = toOverrideFieldsDTO(fields)
		}
	}
	return out
}

func toOverrideFieldsDTO(f engine.OverrideFields) OverrideFieldsInput {
	return OverrideFieldsInput{
		Capacity:        f.Capacity,
		Multiplier:      f.Multiplier,
		Tier2Threshold:  f.Tier2Threshold,
		Tier2Multiplier: f.Tier2Multiplier,
	}
}

func toEngineHoliday(h HolidayDTO) engine.Holiday {
	return engine.Holiday{Date: engine.Day(h.Date), Name: h.Name, ProjectID: h.ProjectID}
}

func toHolidayDTO(h engine.Holiday) HolidayDTO {
	return HolidayDTO{Date: string(h.Date), Name: h.Name, ProjectID: h.ProjectID}
}

func toEngineTimeOff(to TimeOffDTO) engine.TimeOff {
	return engine.TimeOff{
		Date:    engine.Day(to.Date),
		Hours:   decimal.NewFromFloat(to.Hours),
		FullDay: to.FullDay,
		Name:    to.Name,
	}
}

func toTimeOffDTO(to engine.TimeOff) TimeOffDTO {
	return TimeOffDTO{
		Date:    string(to.Date),
		Hours:   to.Hours.InexactFloat64(),
		FullDay: to.FullDay,
		Name:    to.Name,
	}
}

// toEngine converts one submitted interval. Unparseable timestamps stay
// zero, matching the tracker client's behavior.
func (in IntervalInput) toEngine() *engine.Interval {
	iv := &engine.Interval{
		ID:         in.ID,
		WorkerID:   engine.WorkerID(in.WorkerID),
		WorkerName: in.WorkerName,
		Duration:   in.Duration,
		Type:       in.Type,
		Billable:   in.Billable,
		Rate:       in.Rate,
		CostRate:   in.CostRate,
	}
	if t, ok := parseTimestamp(in.Start); ok {
		iv.Start = t
	}
	if t, ok := parseTimestamp(in.End); ok {
		iv.End = t
	}
	return iv
}

// toEngine assembles a complete engine configuration from a submitted
// bundle. A nil Params block means process defaults.
func (in ConfigInput) toEngine() engine.Config {
	cfg := engine.Config{
		Params:  engine.DefaultParams(),
		Display: engine.DisplayMode(in.Display),
		Flags: engine.Flags{
			HolidayCalendar: in.Flags.HolidayCalendar,
			TimeOffCalendar: in.Flags.TimeOffCalendar,
			WorkingDays:     in.Flags.WorkingDays,
			TieredOvertime:  in.Flags.TieredOvertime,
		},
	}
	if in.Params != nil {
		cfg.Params = toEngineParams(*in.Params)
	}
	for _, w := range in.Workers {
		cfg.Workers = append(cfg.Workers, engine.Worker{ID: engine.WorkerID(w.ID), Name: w.Name})
	}
	if len(in.Profiles) > 0 {
		cfg.Profiles = make(map[engine.WorkerID]*engine.WorkerProfile, len(in.Profiles))
		for id, p := range in.Profiles {
			cfg.Profiles[engine.WorkerID(id)] = toEngineProfile(p)
		}
	}
	if len(in.Holidays) > 0 {
		cfg.Holidays = make(map[engine.WorkerID][]engine.Holiday, len(in.Holidays))
		for id, hs := range in.Holidays {
			for _, h := range hs {
				cfg.Holidays[engine.WorkerID(id)] = append(cfg.Holidays[engine.WorkerID(id)], toEngineHoliday(h))
			}
		}
	}
	if len(in.TimeOff) > 0 {
		cfg.TimeOff = make(map[engine.WorkerID][]engine.TimeOff, len(in.TimeOff))
		for id, tos := range in.TimeOff {
			for _, to := range tos {
				cfg.TimeOff[engine.WorkerID(id)] = append(cfg.TimeOff[engine.WorkerID(id)], toEngineTimeOff(to))
			}
		}
	}
	if len(in.Overrides) > 0 {
		cfg.Overrides = make(map[engine.WorkerID]*engine.OverrideConfig, len(in.Overrides))
		for id, oc := range in.Overrides {
			cfg.Overrides[engine.WorkerID(id)] = toEngineOverrides(oc)
		}
	}
	return cfg
}
