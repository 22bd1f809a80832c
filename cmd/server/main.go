/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the timesheet calculation engine. Handles
  configuration, dependency injection, and graceful shutdown.

COMMANDS:
  serve            Start the HTTP API server
  report           One-shot report to stdout, no server

STARTUP SEQUENCE (serve):
  1. Load configuration from the environment (.env supported)
  2. Initialize SQLite config store
  3. Create tracker client and report cache
  4. Configure HTTP router
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  DB_PATH=./data/timesheet.db ./server serve

  # Run with in-memory database
  DB_PATH=":memory:" ./server serve

  # Print last week's report without starting the server
  ./server report --from 2025-03-03 --to 2025-03-09

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/timesheet-engine/api"
	"github.com/warp/timesheet-engine/cache"
	"github.com/warp/timesheet-engine/config"
	"github.com/warp/timesheet-engine/engine"
	"github.com/warp/timesheet-engine/store"
	"github.com/warp/timesheet-engine/store/sqlite"
	"github.com/warp/timesheet-engine/tracker"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Timesheet calculation engine",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var (
	reportFrom string
	reportTo   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch inputs and print a per-worker report",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Range start (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Range end (YYYY-MM-DD)")
	reportCmd.MarkFlagRequired("from")
	reportCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(serveCmd, reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer st.Close()

	handler := api.NewHandler(st, newTracker(cfg), cache.New(cfg.CacheTTL), cfg.TrackerWorkspace)
	handler.Flags = cfg.Flags
	handler.Display = cfg.DisplayMode
	handler.DefaultParams = cfg.Params

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Port)
		log.Printf("API available at http://localhost:%s/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	period := engine.Period{Start: engine.Day(reportFrom), End: engine.Day(reportTo)}
	if !period.Valid() {
		return fmt.Errorf("invalid range %s..%s", reportFrom, reportTo)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	client := newTracker(cfg)

	engineCfg, err := store.Snapshot(ctx, st)
	if err != nil {
		return err
	}
	engineCfg.Flags = cfg.Flags
	engineCfg.Display = cfg.DisplayMode
	if atStockParams(engineCfg.Params) {
		engineCfg.Params = cfg.Params
	}

	workers, err := client.Workers(ctx)
	if err != nil {
		return fmt.Errorf("fetch roster: %w", err)
	}
	engineCfg.Workers = workers

	from, _ := period.Start.Time()
	until, _ := period.End.Time()
	intervals, err := client.Intervals(ctx, from, until.Add(24*time.Hour))
	if err != nil {
		return fmt.Errorf("fetch intervals: %w", err)
	}

	results := engine.Calculate(intervals, engineCfg, &period)

	fmt.Printf("%s .. %s\n", period.Start, period.End)
	fmt.Println("--------------------------------------------------------------")
	fmt.Printf("%-24s%10s%10s%10s%10s\n", "Worker", "Total", "Regular", "Overtime", "Amount")
	for _, r := range results {
		fmt.Printf("%-24s%10s%10s%10s%10s\n",
			r.Name,
			r.Totals.TotalHours.StringFixed(2),
			r.Totals.RegularHours.StringFixed(2),
			r.Totals.OvertimeHours.StringFixed(2),
			r.Totals.Amount.StringFixed(2))
	}
	fmt.Println("--------------------------------------------------------------")

	if stats := client.Stats(); stats.Partial > 0 || stats.Failures > 0 {
		fmt.Printf("warning: %d partial, %d failed fetches\n", stats.Partial, stats.Failures)
	}
	return nil
}

// atStockParams reports whether the stored ruleset is still the built-in
// one, in which case the environment-derived defaults apply instead.
func atStockParams(p engine.CalcParams) bool {
	stock := engine.DefaultParams()
	return p.DailyCapacity.Equal(stock.DailyCapacity) &&
		p.Multiplier.Equal(stock.Multiplier) &&
		p.Tier2Threshold.Equal(stock.Tier2Threshold) &&
		p.Tier2Multiplier.Equal(stock.Tier2Multiplier)
}

func newTracker(cfg *config.Config) *tracker.Client {
	return tracker.New(tracker.Options{
		BaseURL:   cfg.TrackerBaseURL,
		APIKey:    cfg.TrackerAPIKey,
		Workspace: cfg.TrackerWorkspace,
	})
}
