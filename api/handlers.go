/*
handlers.go - HTTP API handlers for the timesheet calculation engine

PURPOSE:
  Exposes the calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine,
  tracker client, config store, and report cache.

ENDPOINTS:
  Reports:
    POST   /api/reports                  Fetch inputs and compute a report
    POST   /api/calculate                Offline calculation from the body

  Configuration:
    GET    /api/params                   Process-default ruleset
    PUT    /api/params                   Replace the ruleset
    GET    /api/workers/{id}/profile     Capacity profile
    PUT    /api/workers/{id}/profile     Replace the profile
    GET    /api/workers/{id}/overrides   Override configuration
    PUT    /api/workers/{id}/overrides   Replace the overrides
    GET    /api/workers/{id}/holidays    Holiday calendar
    POST   /api/workers/{id}/holidays    Add or update one holiday
    GET    /api/workers/{id}/timeoff     Time-off calendar
    POST   /api/workers/{id}/timeoff     Add or update one time-off entry

  Health:
    GET    /api/health

REQUEST FLOW (reports):
  1. Parse and validate the date range
  2. Cache lookup keyed by (workspace, start, end)
  3. On miss: fetch roster, intervals, and remote config from the tracker
  4. Overlay the locally-stored configuration on the remote one
  5. Run the engine, cache the result, respond

ERROR HANDLING:
  Malformed business data never produces a 500: the engine degrades to
  zeros on its own. Only malformed JSON envelopes and unusable date
  ranges are rejected (400); transport and storage failures map to 502
  and 500 respectively.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"

	"github.com/warp/timesheet-engine/cache"
	"github.com/warp/timesheet-engine/engine"
	"github.com/warp/timesheet-engine/store"
	"github.com/warp/timesheet-engine/tracker"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.ConfigStore
	Tracker *tracker.Client
	Cache   *cache.Results

	Workspace string
	Flags     engine.Flags
	Display   engine.DisplayMode

	// DefaultParams, when set, replaces the stock ruleset for workspaces
	// whose store has never been written. Explicitly saved params win.
	DefaultParams engine.CalcParams
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(st store.ConfigStore, tc *tracker.Client, rc *cache.Results, workspace string) *Handler {
	return &Handler{
		Store:     st,
		Tracker:   tc,
		Cache:     rc,
		Workspace: workspace,
	}
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// Report fetches inputs from the tracker, overlays local configuration, and
// runs the engine over the requested range.
// POST /api/reports
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, err := parsePeriod(req.Start, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	key := cache.Key{Workspace: h.Workspace, RangeStart: period.Start, RangeEnd: period.End}
	if results, ok := h.Cache.Get(key); ok {
		writeJSON(w, http.StatusOK, ReportResponse{
			Start:   string(period.Start),
			End:     string(period.End),
			Cached:  true,
			Workers: toWorkerResultDTOs(results),
		})
		return
	}

	ctx := r.Context()

	cfg, err := h.snapshotConfig(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load configuration", err)
		return
	}

	workers, err := h.Tracker.Workers(ctx)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch roster", err)
		return
	}
	cfg.Workers = workers

	from, _ := period.Start.Time()
	until, _ := period.End.Time()
	intervals, err := h.Tracker.Intervals(ctx, from, until.Add(24*time.Hour))
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to fetch intervals", err)
		return
	}

	results := engine.Calculate(intervals, cfg, &period)
	h.Cache.Put(key, results)

	stats := h.Tracker.Stats()
	writeJSON(w, http.StatusOK, ReportResponse{
		Start:   string(period.Start),
		End:     string(period.End),
		Fetch:   toFetchStatsDTO(stats),
		Workers: toWorkerResultDTOs(results),
	})
}

// snapshotConfig overlays locally-stored configuration on the tracker's.
// Local profiles, calendars, and overrides win per worker; the remote ones
// fill in workers the store has never seen.
func (h *Handler) snapshotConfig(r *http.Request) (engine.Config, error) {
	ctx := r.Context()

	cfg, err := store.Snapshot(ctx, h.Store)
	if err != nil {
		return engine.Config{}, err
	}
	cfg.Flags = h.Flags
	cfg.Display = h.Display
	if !h.DefaultParams.DailyCapacity.IsZero() && paramsEqual(cfg.Params, engine.DefaultParams()) {
		cfg.Params = h.DefaultParams
	}

	if remote, err := h.Tracker.Profiles(ctx); err == nil {
		for id, p := range remote {
			if _, ok := cfg.Profiles[id]; !ok {
				cfg.Profiles[id] = p
			}
		}
	}
	if remote, err := h.Tracker.Holidays(ctx); err == nil {
		for id, hs := range remote {
			if _, ok := cfg.Holidays[id]; !ok {
				cfg.Holidays[id] = hs
			}
		}
	}
	if remote, err := h.Tracker.TimeOff(ctx); err == nil {
		for id, tos := range remote {
			if _, ok := cfg.TimeOff[id]; !ok {
				cfg.TimeOff[id] = tos
			}
		}
	}
	if remote, err := h.Tracker.Overrides(ctx); err == nil {
		for id, oc := range remote {
			if _, ok := cfg.Overrides[id]; !ok {
				cfg.Overrides[id] = oc
			}
		}
	}

	return cfg, nil
}

// Calculate runs the engine over a self-contained request body. No tracker,
// store, or cache is consulted; identical bodies produce identical output.
// POST /api/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var period *engine.Period
	if req.Start != "" || req.End != "" {
		p, err := parsePeriod(req.Start, req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range", err)
			return
		}
		period = &p
	}

	intervals := make([]*engine.Interval, 0, len(req.Intervals))
	for _, in := range req.Intervals {
		intervals = append(intervals, in.toEngine())
	}

	results := engine.Calculate(intervals, req.Config.toEngine(), period)
	writeJSON(w, http.StatusOK, CalculateResponse{Workers: toWorkerResultDTOs(results)})
}

// =============================================================================
// RULESET HANDLERS
// =============================================================================

// GetParams returns the process-default ruleset.
// GET /api/params
func (h *Handler) GetParams(w http.ResponseWriter, r *http.Request) {
	params, err := h.Store.Params(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load params", err)
		return
	}
	writeJSON(w, http.StatusOK, toParamsDTO(params))
}

// PutParams replaces the process-default ruleset and drops cached reports,
// since every uncached calculation would now disagree with them.
// PUT /api/params
func (h *Handler) PutParams(w http.ResponseWriter, r *http.Request) {
	var dto ParamsDTO
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SaveParams(r.Context(), toEngineParams(dto)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save params", err)
		return
	}
	h.Cache.InvalidateWorkspace(h.Workspace)
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// WORKER CONFIG HANDLERS
// =============================================================================

// GetProfile returns one worker's capacity profile.
// GET /api/workers/{id}/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	profiles, err := h.Store.Profiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load profiles", err)
		return
	}
	p, ok := profiles[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Profile not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

// PutProfile replaces one worker's capacity profile.
// PUT /api/workers/{id}/profile
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	var dto ProfileDTO
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SaveProfile(r.Context(), id, toEngineProfile(dto)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save profile", err)
		return
	}
	h.Cache.InvalidateWorkspace(h.Workspace)
	writeJSON(w, http.StatusOK, dto)
}

// GetOverrides returns one worker's override configuration.
// GET /api/workers/{id}/overrides
func (h *Handler) GetOverrides(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	overrides, err := h.Store.Overrides(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load overrides", err)
		return
	}
	oc, ok := overrides[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Overrides not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toOverrideDTO(oc))
}

// PutOverrides replaces one worker's override configuration. Field values
// are stored raw; nothing is validated here beyond the JSON envelope.
// PUT /api/workers/{id}/overrides
func (h *Handler) PutOverrides(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	var dto OverrideInput
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Store.SaveOverrides(r.Context(), id, toEngineOverrides(dto)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save overrides", err)
		return
	}
	h.Cache.InvalidateWorkspace(h.Workspace)
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListHolidays returns one worker's holiday calendar.
// GET /api/workers/{id}/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	holidays, err := h.Store.Holidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays[id]))
	for _, hol := range holidays[id] {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddHoliday adds or updates one holiday on a worker's calendar.
// POST /api/workers/{id}/holidays
func (h *Handler) AddHoliday(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	var dto HolidayDTO
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := engine.Day(dto.Date).Time(); !ok {
		writeError(w, http.StatusBadRequest, "Invalid date", fmt.Errorf("want YYYY-MM-DD, got %q", dto.Date))
		return
	}
	if err := h.Store.AddHoliday(r.Context(), id, toEngineHoliday(dto)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	h.Cache.InvalidateWorkspace(h.Workspace)
	writeJSON(w, http.StatusCreated, dto)
}

// ListTimeOff returns one worker's time-off calendar.
// GET /api/workers/{id}/timeoff
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	timeOff, err := h.Store.TimeOff(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load time off", err)
		return
	}
	dtos := make([]TimeOffDTO, 0, len(timeOff[id]))
	for _, to := range timeOff[id] {
		dtos = append(dtos, toTimeOffDTO(to))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddTimeOff adds or updates one time-off entry on a worker's calendar.
// POST /api/workers/{id}/timeoff
func (h *Handler) AddTimeOff(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))

	var dto TimeOffDTO
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, ok := engine.Day(dto.Date).Time(); !ok {
		writeError(w, http.StatusBadRequest, "Invalid date", fmt.Errorf("want YYYY-MM-DD, got %q", dto.Date))
		return
	}
	if err := h.Store.AddTimeOff(r.Context(), id, toEngineTimeOff(dto)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save time off", err)
		return
	}
	h.Cache.InvalidateWorkspace(h.Workspace)
	writeJSON(w, http.StatusCreated, dto)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parsePeriod(start, end string) (engine.Period, error) {
	p := engine.Period{Start: engine.Day(start), End: engine.Day(end)}
	if _, ok := p.Start.Time(); !ok {
		return engine.Period{}, fmt.Errorf("invalid start date %q", start)
	}
	if _, ok := p.End.Time(); !ok {
		return engine.Period{}, fmt.Errorf("invalid end date %q", end)
	}
	if p.End.Before(p.Start) {
		return engine.Period{}, fmt.Errorf("end %s precedes start %s", end, start)
	}
	return p, nil
}

func paramsEqual(a, b engine.CalcParams) bool {
	return a.DailyCapacity.Equal(b.DailyCapacity) &&
		a.Multiplier.Equal(b.Multiplier) &&
		a.Tier2Threshold.Equal(b.Tier2Threshold) &&
		a.Tier2Multiplier.Equal(b.Tier2Multiplier)
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	sonic.ConfigDefault.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
