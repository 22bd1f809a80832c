/*
Package tracker fetches engine inputs from the external time-tracking API.

PURPOSE:
  Supplies everything the engine consumes before a calculation: the worker
  roster, the flat interval list for a date range, capacity profiles,
  holiday and time-off calendars, and per-worker override configurations.
  The engine itself never performs I/O; this client is the only component
  that talks to the network.

RETRY POLICY:
  - 429: retried, honoring a server-specified Retry-After delay in seconds
    and falling back to a fixed default delay otherwise
  - 5xx: retried with the default delay
  - other 4xx: permanent, never retried
  - retries are bounded by MaxRetries per request

CANCELLATION:
  Context cancellation mid-pagination degrades gracefully: the intervals
  fetched so far are returned with no error, and the partial-result counter
  is bumped. Callers inspect Stats() to surface partial failures.

SEE ALSO:
  - engine: the consumer of everything fetched here
  - api/handlers.go: wires this client into the report endpoint
*/
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/engine"
)

// =============================================================================
// CLIENT
// =============================================================================

const (
	defaultRetryDelay = 2 * time.Second
	defaultMaxRetries = 3
	defaultPageSize   = 200
)

// Options configures a Client. Zero values get sensible defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	Workspace  string
	HTTPClient *http.Client
	MaxRetries int
	RetryDelay time.Duration
	PageSize   int
}

// Stats counts request outcomes. Partial failures are surfaced here rather
// than as errors so one slow worker cannot sink a whole report.
type Stats struct {
	Requests int
	Retries  int
	Failures int
	Partial  int
}

type Client struct {
	opts Options

	mu    sync.Mutex
	stats Stats
}

func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	return &Client{opts: opts}
}

// Stats returns a snapshot of the request counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Client) count(update func(*Stats)) {
	c.mu.Lock()
	update(&c.stats)
	c.mu.Unlock()
}

// =============================================================================
// TRANSPORT - bounded retry with Retry-After support
// =============================================================================

// errPermanent wraps client errors that must not be retried.
var errPermanent = errors.New("permanent client error")

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/workspaces/%s%s", c.opts.BaseURL, url.PathEscape(c.opts.Workspace), path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	for attempt := 0; ; attempt++ {
		c.count(func(s *Stats) { s.Requests++ })

		body, retryable, err := c.once(ctx, endpoint)
		if err == nil {
			return sonic.Unmarshal(body, out)
		}
		if !retryable || attempt >= c.opts.MaxRetries {
			c.count(func(s *Stats) { s.Failures++ })
			return err
		}

		delay := c.opts.RetryDelay
		var ra retryAfterError
		if errors.As(err, &ra) && ra.delay > 0 {
			delay = ra.delay
		}
		c.count(func(s *Stats) { s.Retries++ })

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

type retryAfterError struct {
	status int
	delay  time.Duration
}

func (e retryAfterError) Error() string {
	return fmt.Sprintf("rate limited (status %d)", e.status)
}

// once performs a single request. retryable reports whether the failure is
// worth another attempt.
func (c *Client) once(ctx context.Context, endpoint string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.opts.APIKey)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, err
		}
		return data, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, retryAfterError{status: resp.StatusCode, delay: retryAfter(resp)}
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("%w: status %d", errPermanent, resp.StatusCode)
	}
}

// retryAfter reads a server-specified delay in seconds, zero when absent.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// =============================================================================
// ROSTER AND INTERVALS
// =============================================================================

type workerDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workers fetches the workspace roster.
func (c *Client) Workers(ctx context.Context) ([]engine.Worker, error) {
	var dtos []workerDTO
	if err := c.getJSON(ctx, "/workers", nil, &dtos); err != nil {
		return nil, err
	}
	workers := make([]engine.Worker, 0, len(dtos))
	for _, d := range dtos {
		workers = append(workers, engine.Worker{ID: engine.WorkerID(d.ID), Name: d.Name})
	}
	return workers, nil
}

type intervalDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	Type         string `json:"type"`
	Billable     bool   `json:"billable"`
	Rate         any    `json:"rate"`
	CostRate     any    `json:"costRate"`
	TimeInterval struct {
		Start    string `json:"start"`
		End      string `json:"end"`
		Duration string `json:"duration"`
	} `json:"timeInterval"`
}

func (d intervalDTO) toEngine() *engine.Interval {
	iv := &engine.Interval{
		ID:         d.ID,
		WorkerID:   engine.WorkerID(d.UserID),
		WorkerName: d.UserName,
		Duration:   d.TimeInterval.Duration,
		Type:       d.Type,
		Billable:   d.Billable,
		Rate:       d.Rate,
		CostRate:   d.CostRate,
	}
	// Unparseable timestamps stay zero; the engine drops unbucketable
	// intervals on its own.
	if t, err := time.Parse(time.RFC3339, d.TimeInterval.Start); err == nil {
		iv.Start = t
	}
	if t, err := time.Parse(time.RFC3339, d.TimeInterval.End); err == nil {
		iv.End = t
	}
	return iv
}

// Intervals fetches the flat interval list for [from, to], walking pages of
// PageSize until a short page. Cancellation mid-walk returns what was
// fetched so far with no error and bumps the partial counter.
func (c *Client) Intervals(ctx context.Context, from, to time.Time) ([]*engine.Interval, error) {
	var all []*engine.Interval
	for page := 1; ; page++ {
		query := url.Values{
			"start":     {from.UTC().Format(time.RFC3339)},
			"end":       {to.UTC().Format(time.RFC3339)},
			"page":      {strconv.Itoa(page)},
			"page-size": {strconv.Itoa(c.opts.PageSize)},
		}

		var dtos []intervalDTO
		if err := c.getJSON(ctx, "/intervals", query, &dtos); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.count(func(s *Stats) { s.Partial++ })
				return all, nil
			}
			return nil, err
		}
		for _, d := range dtos {
			all = append(all, d.toEngine())
		}
		if len(dtos) < c.opts.PageSize {
			return all, nil
		}
	}
}

// =============================================================================
// CONFIGURATION SOURCES
// =============================================================================

type profileDTO struct {
	UserID        string   `json:"userId"`
	DailyCapacity float64  `json:"dailyCapacity"`
	WorkingDays   []string `json:"workingDays"`
}

// Profiles fetches per-worker capacity profiles.
func (c *Client) Profiles(ctx context.Context) (map[engine.WorkerID]*engine.WorkerProfile, error) {
	var dtos []profileDTO
	if err := c.getJSON(ctx, "/profiles", nil, &dtos); err != nil {
		return nil, err
	}
	profiles := make(map[engine.WorkerID]*engine.WorkerProfile, len(dtos))
	for _, d := range dtos {
		profiles[engine.WorkerID(d.UserID)] = &engine.WorkerProfile{
			DailyCapacity: decimal.NewFromFloat(d.DailyCapacity),
			WorkingDays:   d.WorkingDays,
		}
	}
	return profiles, nil
}

type holidayDTO struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
}

// Holidays fetches per-worker holiday calendars.
func (c *Client) Holidays(ctx context.Context) (map[engine.WorkerID][]engine.Holiday, error) {
	var dtos []holidayDTO
	if err := c.getJSON(ctx, "/holidays", nil, &dtos); err != nil {
		return nil, err
	}
	holidays := make(map[engine.WorkerID][]engine.Holiday)
	for _, d := range dtos {
		id := engine.WorkerID(d.UserID)
		holidays[id] = append(holidays[id], engine.Holiday{
			Date:      engine.Day(d.Date),
			Name:      d.Name,
			ProjectID: d.ProjectID,
		})
	}
	return holidays, nil
}

type timeOffDTO struct {
	UserID  string  `json:"userId"`
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	FullDay bool    `json:"fullDay"`
	Name    string  `json:"name"`
}

// TimeOff fetches per-worker approved time-off calendars.
func (c *Client) TimeOff(ctx context.Context) (map[engine.WorkerID][]engine.TimeOff, error) {
	var dtos []timeOffDTO
	if err := c.getJSON(ctx, "/time-off", nil, &dtos); err != nil {
		return nil, err
	}
	timeOff := make(map[engine.WorkerID][]engine.TimeOff)
	for _, d := range dtos {
		id := engine.WorkerID(d.UserID)
		timeOff[id] = append(timeOff[id], engine.TimeOff{
			Date:    engine.Day(d.Date),
			Hours:   decimal.NewFromFloat(d.Hours),
			FullDay: d.FullDay,
			Name:    d.Name,
		})
	}
	return timeOff, nil
}

type overrideDTO struct {
	UserID          string                       `json:"userId"`
	Mode            string                       `json:"mode"`
	Capacity        any                          `json:"capacity"`
	Multiplier      any                          `json:"multiplier"`
	Tier2Threshold  any                          `json:"tier2Threshold"`
	Tier2Multiplier any                          `json:"tier2Multiplier"`
	Days            map[string]overrideFieldsDTO `json:"days"`
}

type overrideFieldsDTO struct {
	Capacity        any `json:"capacity"`
	Multiplier      any `json:"multiplier"`
	Tier2Threshold  any `json:"tier2Threshold"`
	Tier2Multiplier any `json:"tier2Multiplier"`
}

func (d overrideFieldsDTO) toEngine() engine.OverrideFields {
	return engine.OverrideFields{
		Capacity:        d.Capacity,
		Multiplier:      d.Multiplier,
		Tier2Threshold:  d.Tier2Threshold,
		Tier2Multiplier: d.Tier2Multiplier,
	}
}

// Overrides fetches per-worker override configurations. Field values stay
// raw; the engine's resolver decides what parses.
func (c *Client) Overrides(ctx context.Context) (map[engine.WorkerID]*engine.OverrideConfig, error) {
	var dtos []overrideDTO
	if err := c.getJSON(ctx, "/overrides", nil, &dtos); err != nil {
		return nil, err
	}
	overrides := make(map[engine.WorkerID]*engine.OverrideConfig, len(dtos))
	for _, d := range dtos {
		oc := &engine.OverrideConfig{
			Mode: d.Mode,
			Global: engine.OverrideFields{
				Capacity:        d.Capacity,
				Multiplier:      d.Multiplier,
				Tier2Threshold:  d.Tier2Threshold,
				Tier2Multiplier: d.Tier2Multiplier,
			},
		}
		if len(d.Days) > 0 {
			oc.Days = make(map[string]engine.OverrideFields, len(d.Days))
			for key, fields := range d.Days {
				oc.Days[key] = fields.toEngine()
			}
		}
		overrides[engine.WorkerID(d.UserID)] = oc
	}
	return overrides, nil
}
