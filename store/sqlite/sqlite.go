/*
Package sqlite provides the SQLite-backed implementation of store.ConfigStore.

PURPOSE:
  Durable persistence for the locally-managed engine configuration:
  process CalcParams, worker capacity profiles, override configurations,
  and calendar exceptions. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  calc_params:      Single-row process defaults (decimals stored as TEXT)
  worker_profiles:  Baseline capacity + working-days JSON per worker
  worker_overrides: Whole override config as JSON per worker. Override
                    field values are free-form by contract (non-numeric
                    values are legal and skipped at resolution time), so a
                    JSON column preserves them byte-for-byte.
  holidays:         One row per worker-date
  time_off:         One row per worker-date

DECIMAL STORAGE:
  Decimals are stored as their canonical string form, never as REAL, so
  round-tripping through the store cannot introduce float drift.

WAL MODE:
  Opened with WAL for better concurrency: readers don't block, single
  writer, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/timesheet.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - store/store.go: Interface definition and Snapshot assembly
  - store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/timesheet-engine/engine"
)

// Store implements store.ConfigStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database and migrates the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS calc_params (
			id               INTEGER PRIMARY KEY CHECK (id = 1),
			daily_capacity   TEXT NOT NULL,
			multiplier       TEXT NOT NULL,
			tier2_threshold  TEXT NOT NULL,
			tier2_multiplier TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS worker_profiles (
			worker_id      TEXT PRIMARY KEY,
			daily_capacity TEXT NOT NULL,
			working_days   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS worker_overrides (
			worker_id   TEXT PRIMARY KEY,
			config_json TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS holidays (
			worker_id  TEXT NOT NULL,
			date       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			project_id TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (worker_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS time_off (
			worker_id TEXT NOT NULL,
			date      TEXT NOT NULL,
			hours     TEXT NOT NULL,
			full_day  INTEGER NOT NULL DEFAULT 0,
			name      TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (worker_id, date)
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// =============================================================================
// CALC PARAMS
// =============================================================================

func (s *Store) Params(ctx context.Context) (engine.CalcParams, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT daily_capacity, multiplier, tier2_threshold, tier2_multiplier FROM calc_params WHERE id = 1`)

	var capacity, multiplier, threshold, tier2 string
	switch err := row.Scan(&capacity, &multiplier, &threshold, &tier2); err {
	case nil:
	case sql.ErrNoRows:
		return engine.DefaultParams(), nil
	default:
		return engine.CalcParams{}, err
	}

	p := engine.CalcParams{}
	var err error
	if p.DailyCapacity, err = decimal.NewFromString(capacity); err != nil {
		return engine.CalcParams{}, fmt.Errorf("corrupt daily_capacity: %w", err)
	}
	if p.Multiplier, err = decimal.NewFromString(multiplier); err != nil {
		return engine.CalcParams{}, fmt.Errorf("corrupt multiplier: %w", err)
	}
	if p.Tier2Threshold, err = decimal.NewFromString(threshold); err != nil {
		return engine.CalcParams{}, fmt.Errorf("corrupt tier2_threshold: %w", err)
	}
	if p.Tier2Multiplier, err = decimal.NewFromString(tier2); err != nil {
		return engine.CalcParams{}, fmt.Errorf("corrupt tier2_multiplier: %w", err)
	}
	return p, nil
}

func (s *Store) SaveParams(ctx context.Context, p engine.CalcParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calc_params (id, daily_capacity, multiplier, tier2_threshold, tier2_multiplier)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			daily_capacity = excluded.daily_capacity,
			multiplier = excluded.multiplier,
			tier2_threshold = excluded.tier2_threshold,
			tier2_multiplier = excluded.tier2_multiplier`,
		p.DailyCapacity.String(), p.Multiplier.String(),
		p.Tier2Threshold.String(), p.Tier2Multiplier.String())
	return err
}

// =============================================================================
// WORKER PROFILES
// =============================================================================

func (s *Store) Profiles(ctx context.Context) (map[engine.WorkerID]*engine.WorkerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT worker_id, daily_capacity, working_days FROM worker_profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make(map[engine.WorkerID]*engine.WorkerProfile)
	for rows.Next() {
		var id, capacity, daysJSON string
		if err := rows.Scan(&id, &capacity, &daysJSON); err != nil {
			return nil, err
		}
		p := &engine.WorkerProfile{}
		if p.DailyCapacity, err = decimal.NewFromString(capacity); err != nil {
			return nil, fmt.Errorf("corrupt profile capacity for %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(daysJSON), &p.WorkingDays); err != nil {
			return nil, fmt.Errorf("corrupt working days for %s: %w", id, err)
		}
		profiles[engine.WorkerID(id)] = p
	}
	return profiles, rows.Err()
}

func (s *Store) SaveProfile(ctx context.Context, id engine.WorkerID, p *engine.WorkerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, err := json.Marshal(p.WorkingDays)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO worker_profiles (worker_id, daily_capacity, working_days)
		VALUES (?, ?, ?)
		ON CONFLICT(worker_id) DO UPDATE SET
			daily_capacity = excluded.daily_capacity,
			working_days = excluded.working_days`,
		string(id), p.DailyCapacity.String(), string(days))
	return err
}

// =============================================================================
// OVERRIDE CONFIGS
// =============================================================================

func (s *Store) Overrides(ctx context.Context) (map[engine.WorkerID]*engine.OverrideConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT worker_id, config_json FROM worker_overrides`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := make(map[engine.WorkerID]*engine.OverrideConfig)
	for rows.Next() {
		var id, blob string
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		oc := &engine.OverrideConfig{}
		if err := json.Unmarshal([]byte(blob), oc); err != nil {
			return nil, fmt.Errorf("corrupt override config for %s: %w", id, err)
		}
		overrides[engine.WorkerID(id)] = oc
	}
	return overrides, rows.Err()
}

func (s *Store) SaveOverrides(ctx context.Context, id engine.WorkerID, oc *engine.OverrideConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(oc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO worker_overrides (worker_id, config_json)
		VALUES (?, ?)
		ON CONFLICT(worker_id) DO UPDATE SET config_json = excluded.config_json`,
		string(id), string(blob))
	return err
}

// =============================================================================
// CALENDAR EXCEPTIONS
// =============================================================================

func (s *Store) Holidays(ctx context.Context) (map[engine.WorkerID][]engine.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT worker_id, date, name, project_id FROM holidays ORDER BY worker_id, date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make(map[engine.WorkerID][]engine.Holiday)
	for rows.Next() {
		var id, date, name, projectID string
		if err := rows.Scan(&id, &date, &name, &projectID); err != nil {
			return nil, err
		}
		holidays[engine.WorkerID(id)] = append(holidays[engine.WorkerID(id)], engine.Holiday{
			Date:      engine.Day(date),
			Name:      name,
			ProjectID: projectID,
		})
	}
	return holidays, rows.Err()
}

func (s *Store) AddHoliday(ctx context.Context, id engine.WorkerID, h engine.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (worker_id, date, name, project_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(worker_id, date) DO UPDATE SET
			name = excluded.name,
			project_id = excluded.project_id`,
		string(id), string(h.Date), h.Name, h.ProjectID)
	return err
}

func (s *Store) TimeOff(ctx context.Context) (map[engine.WorkerID][]engine.TimeOff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT worker_id, date, hours, full_day, name FROM time_off ORDER BY worker_id, date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	timeOff := make(map[engine.WorkerID][]engine.TimeOff)
	for rows.Next() {
		var id, date, hours, name string
		var fullDay bool
		if err := rows.Scan(&id, &date, &hours, &fullDay, &name); err != nil {
			return nil, err
		}
		parsed, err := decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("corrupt time-off hours for %s/%s: %w", id, date, err)
		}
		timeOff[engine.WorkerID(id)] = append(timeOff[engine.WorkerID(id)], engine.TimeOff{
			Date:    engine.Day(date),
			Hours:   parsed,
			FullDay: fullDay,
			Name:    name,
		})
	}
	return timeOff, rows.Err()
}

func (s *Store) AddTimeOff(ctx context.Context, id engine.WorkerID, to engine.TimeOff) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off (worker_id, date, hours, full_day, name)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, date) DO UPDATE SET
			hours = excluded.hours,
			full_day = excluded.full_day,
			name = excluded.name`,
		string(id), string(to.Date), to.Hours.String(), to.FullDay, to.Name)
	return err
}
