package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Flags.HolidayCalendar)
	assert.False(t, cfg.Flags.TieredOvertime)
	assert.True(t, cfg.Params.DailyCapacity.Equal(decimal.NewFromInt(8)))
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("FLAG_TIERED_OVERTIME", "true")
	t.Setenv("DAILY_CAPACITY", "7.5")
	t.Setenv("DISPLAY_MODE", "profit")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.Flags.TieredOvertime)
	assert.True(t, cfg.Params.DailyCapacity.Equal(decimal.RequireFromString("7.5")))
	assert.Equal(t, "profit", string(cfg.DisplayMode))
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("DAILY_CAPACITY", "lots")
	t.Setenv("FLAG_WORKING_DAYS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Params.DailyCapacity.Equal(decimal.NewFromInt(8)))
	assert.False(t, cfg.Flags.WorkingDays)
}
