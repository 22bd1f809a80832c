package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timesheet-engine/engine"
	"github.com/warp/timesheet-engine/store"
	"github.com/warp/timesheet-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParams_DefaultsWhenUnset(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Params(context.Background())
	require.NoError(t, err)
	assert.True(t, p.DailyCapacity.Equal(decimal.NewFromInt(8)))
}

func TestParams_RoundTripExact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := engine.CalcParams{
		DailyCapacity:   decimal.RequireFromString("7.75"),
		Multiplier:      decimal.RequireFromString("1.25"),
		Tier2Threshold:  decimal.RequireFromString("12"),
		Tier2Multiplier: decimal.RequireFromString("2.5"),
	}
	require.NoError(t, s.SaveParams(ctx, in))

	out, err := s.Params(ctx)
	require.NoError(t, err)
	assert.True(t, out.DailyCapacity.Equal(in.DailyCapacity))
	assert.True(t, out.Multiplier.Equal(in.Multiplier))
	assert.True(t, out.Tier2Threshold.Equal(in.Tier2Threshold))
	assert.True(t, out.Tier2Multiplier.Equal(in.Tier2Multiplier))

	// Second save overwrites, not duplicates.
	in.DailyCapacity = decimal.NewFromInt(6)
	require.NoError(t, s.SaveParams(ctx, in))
	out, err = s.Params(ctx)
	require.NoError(t, err)
	assert.True(t, out.DailyCapacity.Equal(decimal.NewFromInt(6)))
}

func TestProfiles_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, "w1", &engine.WorkerProfile{
		DailyCapacity: decimal.RequireFromString("6.5"),
		WorkingDays:   []string{"monday", "wednesday", "friday"},
	}))

	profiles, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.NotNil(t, profiles["w1"])
	assert.True(t, profiles["w1"].DailyCapacity.Equal(decimal.RequireFromString("6.5")))
	assert.Equal(t, []string{"monday", "wednesday", "friday"}, profiles["w1"].WorkingDays)
}

func TestOverrides_RawValuesPreserved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Non-numeric override values are legal input; the store must carry
	// them through untouched for the resolver to skip at calculation time.
	require.NoError(t, s.SaveOverrides(ctx, "w1", &engine.OverrideConfig{
		Mode:   engine.ModeWeekly,
		Global: engine.OverrideFields{Capacity: "not a number", Multiplier: 1.75},
		Days: map[string]engine.OverrideFields{
			"monday": {Capacity: 4},
		},
	}))

	overrides, err := s.Overrides(ctx)
	require.NoError(t, err)
	oc := overrides["w1"]
	require.NotNil(t, oc)

	cfg := engine.Config{Params: engine.DefaultParams(), Overrides: overrides}
	monday := engine.Day("2025-03-03")
	assert.True(t, engine.ResolveOverride(&cfg, "w1", monday, engine.FieldCapacity).
		Equal(decimal.NewFromInt(4)))
	// Global capacity is non-numeric: Tuesday falls to the process default.
	assert.True(t, engine.ResolveOverride(&cfg, "w1", "2025-03-04", engine.FieldCapacity).
		Equal(decimal.NewFromInt(8)))
	assert.True(t, engine.ResolveOverride(&cfg, "w1", monday, engine.FieldMultiplier).
		Equal(decimal.RequireFromString("1.75")))
}

func TestCalendars_RoundTripAndUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddHoliday(ctx, "w1", engine.Holiday{Date: "2025-03-04", Name: "Founders Day"}))
	require.NoError(t, s.AddHoliday(ctx, "w1", engine.Holiday{Date: "2025-03-04", Name: "Renamed Day"}))
	require.NoError(t, s.AddTimeOff(ctx, "w1", engine.TimeOff{
		Date: "2025-03-05", Hours: decimal.RequireFromString("3.5"), Name: "PT",
	}))

	holidays, err := s.Holidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays["w1"], 1, "same worker-date upserts")
	assert.Equal(t, "Renamed Day", holidays["w1"][0].Name)

	timeOff, err := s.TimeOff(ctx)
	require.NoError(t, err)
	require.Len(t, timeOff["w1"], 1)
	assert.True(t, timeOff["w1"][0].Hours.Equal(decimal.RequireFromString("3.5")))
}

func TestSnapshot_AssemblesEngineConfig(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, "w1", &engine.WorkerProfile{
		DailyCapacity: decimal.NewFromInt(6),
	}))
	require.NoError(t, s.AddHoliday(ctx, "w1", engine.Holiday{Date: "2025-03-04"}))

	cfg, err := store.Snapshot(ctx, s)
	require.NoError(t, err)
	assert.True(t, cfg.Params.DailyCapacity.Equal(decimal.NewFromInt(8)))
	require.NotNil(t, cfg.Profiles["w1"])
	require.Len(t, cfg.Holidays["w1"], 1)
}
