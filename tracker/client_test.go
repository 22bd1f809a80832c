package tracker_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/engine"
	"github.com/warp/timesheet-engine/tracker"
)

func decimalFromInt(n int64) decimal.Decimal  { return decimal.NewFromInt(n) }
func decimalRequire(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newClient(t *testing.T, handler http.Handler) (*tracker.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := tracker.New(tracker.Options{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Workspace:  "ws-1",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		PageSize:   2,
	})
	return client, server
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestWorkers_RateLimitedThenRecovers(t *testing.T) {
	hits := 0
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		if hits <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, []map[string]string{{"id": "w1", "name": "Ada"}})
	}))

	workers, err := client.Workers(context.Background())
	require.NoError(t, err)
	require.Len(t, workers, 1)
	assert.Equal(t, engine.Worker{ID: "w1", Name: "Ada"}, workers[0])

	stats := client.Stats()
	assert.Equal(t, 3, stats.Requests)
	assert.Equal(t, 2, stats.Retries)
	assert.Equal(t, 0, stats.Failures)
}

func TestWorkers_PermanentClientErrorNotRetried(t *testing.T) {
	hits := 0
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.Workers(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, hits, "4xx must not be retried")
	assert.Equal(t, 1, client.Stats().Failures)
}

func TestWorkers_ServerErrorRetriedUpToBound(t *testing.T) {
	hits := 0
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Workers(context.Background())
	require.Error(t, err)
	assert.Equal(t, 4, hits, "initial attempt plus MaxRetries")
}

func intervalPayload(id string) map[string]any {
	return map[string]any{
		"id":       id,
		"userId":   "w1",
		"userName": "Ada",
		"billable": true,
		"rate":     map[string]any{"amount": 5000},
		"timeInterval": map[string]any{
			"start":    "2025-03-03T08:00:00Z",
			"end":      "2025-03-03T16:00:00Z",
			"duration": "PT8H",
		},
	}
}

func TestIntervals_WalksAllPages(t *testing.T) {
	pages := map[string][]map[string]any{
		"1": {intervalPayload("a"), intervalPayload("b")},
		"2": {intervalPayload("c"), intervalPayload("d")},
		"3": {intervalPayload("e")},
	}
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workspaces/ws-1/intervals", r.URL.Path)
		writeJSON(t, w, pages[r.URL.Query().Get("page")])
	}))

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	intervals, err := client.Intervals(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, intervals, 5)

	first := intervals[0]
	assert.Equal(t, engine.WorkerID("w1"), first.WorkerID)
	assert.Equal(t, "PT8H", first.Duration)
	assert.False(t, first.Start.IsZero())
}

func TestIntervals_CancellationDegradesToPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			writeJSON(t, w, []map[string]any{intervalPayload("a"), intervalPayload("b")})
			return
		}
		cancel()
		<-r.Context().Done()
	}))

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	intervals, err := client.Intervals(ctx, from, to)
	require.NoError(t, err, "cancellation must degrade, not fail")
	assert.Len(t, intervals, 2)
	assert.Equal(t, 1, client.Stats().Partial)
}

func TestOverrides_RawValuesSurviveTransport(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{
			"userId": "w1",
			"mode": "weekly",
			"capacity": 7,
			"multiplier": "not a number",
			"days": {"monday": {"capacity": 4}}
		}]`)
	}))

	overrides, err := client.Overrides(context.Background())
	require.NoError(t, err)
	oc := overrides["w1"]
	require.NotNil(t, oc)
	assert.Equal(t, "weekly", oc.Mode)

	// The raw values flow untouched into the engine's resolver.
	cfg := engine.Config{Params: engine.DefaultParams(), Overrides: overrides}
	day := engine.Day("2025-03-03") // a Monday
	assert.True(t, engine.ResolveOverride(&cfg, "w1", day, engine.FieldCapacity).
		Equal(decimalFromInt(4)))
	// Non-numeric multiplier at every override level: process default wins.
	assert.True(t, engine.ResolveOverride(&cfg, "w1", day, engine.FieldMultiplier).
		Equal(decimalRequire("1.5")))
}

func TestHolidaysAndTimeOffAndProfiles(t *testing.T) {
	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/workspaces/ws-1/holidays":
			fmt.Fprint(w, `[{"userId":"w1","date":"2025-03-04","name":"Founders Day","projectId":"p9"}]`)
		case "/workspaces/ws-1/time-off":
			fmt.Fprint(w, `[{"userId":"w1","date":"2025-03-05","hours":3,"fullDay":false,"name":"PT"}]`)
		case "/workspaces/ws-1/profiles":
			fmt.Fprint(w, `[{"userId":"w1","dailyCapacity":6,"workingDays":["monday","tuesday"]}]`)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()
	holidays, err := client.Holidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays["w1"], 1)
	assert.Equal(t, engine.Day("2025-03-04"), holidays["w1"][0].Date)

	timeOff, err := client.TimeOff(ctx)
	require.NoError(t, err)
	require.Len(t, timeOff["w1"], 1)
	assert.False(t, timeOff["w1"][0].FullDay)

	profiles, err := client.Profiles(ctx)
	require.NoError(t, err)
	require.NotNil(t, profiles["w1"])
	assert.Equal(t, []string{"monday", "tuesday"}, profiles["w1"].WorkingDays)
}
