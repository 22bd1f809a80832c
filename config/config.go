/*
Package config loads process configuration from the environment.

PURPOSE:
  One place that reads environment variables (optionally seeded from a
  .env file) and hands the rest of the process a typed Config. Nothing
  else in the codebase calls os.Getenv.

PRECEDENCE:
  Real environment variables win over .env entries; .env entries win
  over the built-in defaults. A missing .env file is not an error.
*/
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/engine"
)

type Config struct {
	// App
	Port   string
	DBPath string

	// Tracking source
	TrackerBaseURL   string
	TrackerAPIKey    string
	TrackerWorkspace string

	// Report cache
	CacheTTL time.Duration

	// Feature flags
	Flags engine.Flags

	// Headline amount family: earned, cost, or profit
	DisplayMode engine.DisplayMode

	// Process-default ruleset, the root of the override chain
	Params engine.CalcParams
}

func Load() (*Config, error) {
	// Best effort; the environment alone is a complete configuration.
	_ = godotenv.Load()

	defaults := engine.DefaultParams()
	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("DB_PATH", "timesheet.db"),

		TrackerBaseURL:   getEnv("TRACKER_BASE_URL", "https://api.tracker.example/v1"),
		TrackerAPIKey:    getEnv("TRACKER_API_KEY", ""),
		TrackerWorkspace: getEnv("TRACKER_WORKSPACE", "default"),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		Flags: engine.Flags{
			HolidayCalendar: getEnvBool("FLAG_HOLIDAY_CALENDAR", true),
			TimeOffCalendar: getEnvBool("FLAG_TIMEOFF_CALENDAR", true),
			WorkingDays:     getEnvBool("FLAG_WORKING_DAYS", false),
			TieredOvertime:  getEnvBool("FLAG_TIERED_OVERTIME", false),
		},

		DisplayMode: engine.DisplayMode(getEnv("DISPLAY_MODE", string(engine.DisplayEarned))),

		Params: engine.CalcParams{
			DailyCapacity:   getEnvDecimal("DAILY_CAPACITY", defaults.DailyCapacity),
			Multiplier:      getEnvDecimal("OVERTIME_MULTIPLIER", defaults.Multiplier),
			Tier2Threshold:  getEnvDecimal("TIER2_THRESHOLD", defaults.Tier2Threshold),
			Tier2Multiplier: getEnvDecimal("TIER2_MULTIPLIER", defaults.Tier2Multiplier),
		},
	}

	return cfg, nil
}

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns bool from env or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration ("5m", "90s") from env or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDecimal returns an exact decimal from env or default.
func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
