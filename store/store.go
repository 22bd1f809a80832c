/*
Package store defines persistence for the engine's configuration inputs.

PURPOSE:
  The engine is pure: it receives its whole configuration bundle per call
  and owns nothing between calls. This package persists the pieces of that
  bundle that are managed locally rather than fetched from the tracking
  source: process CalcParams, worker capacity profiles, override
  configurations, and holiday/time-off calendar exceptions.

IMPLEMENTATIONS:
  - Memory (this package): map-backed, for tests and ephemeral runs
  - sqlite subpackage: durable, schema-on-open

SEE ALSO:
  - store/sqlite/sqlite.go: the durable implementation
  - api/handlers.go: config CRUD endpoints over this interface
*/
package store

import (
	"context"
	"errors"

	"github.com/warp/timesheet-engine/engine"
)

// ErrNotFound is returned for lookups of absent per-worker records.
var ErrNotFound = errors.New("record not found")

// ConfigStore persists the locally-managed part of the engine configuration.
type ConfigStore interface {
	Params(ctx context.Context) (engine.CalcParams, error)
	SaveParams(ctx context.Context, p engine.CalcParams) error

	Profiles(ctx context.Context) (map[engine.WorkerID]*engine.WorkerProfile, error)
	SaveProfile(ctx context.Context, id engine.WorkerID, p *engine.WorkerProfile) error

	Overrides(ctx context.Context) (map[engine.WorkerID]*engine.OverrideConfig, error)
	SaveOverrides(ctx context.Context, id engine.WorkerID, oc *engine.OverrideConfig) error

	Holidays(ctx context.Context) (map[engine.WorkerID][]engine.Holiday, error)
	AddHoliday(ctx context.Context, id engine.WorkerID, h engine.Holiday) error

	TimeOff(ctx context.Context) (map[engine.WorkerID][]engine.TimeOff, error)
	AddTimeOff(ctx context.Context, id engine.WorkerID, to engine.TimeOff) error

	Close() error
}

// Snapshot assembles an immutable engine.Config from the store. Flags,
// display mode, and the worker roster are owned by the caller (process
// config and tracker respectively) and are left zero here.
func Snapshot(ctx context.Context, s ConfigStore) (engine.Config, error) {
	params, err := s.Params(ctx)
	if err != nil {
		return engine.Config{}, err
	}
	profiles, err := s.Profiles(ctx)
	if err != nil {
		return engine.Config{}, err
	}
	overrides, err := s.Overrides(ctx)
	if err != nil {
		return engine.Config{}, err
	}
	holidays, err := s.Holidays(ctx)
	if err != nil {
		return engine.Config{}, err
	}
	timeOff, err := s.TimeOff(ctx)
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Params:    params,
		Profiles:  profiles,
		Overrides: overrides,
		Holidays:  holidays,
		TimeOff:   timeOff,
	}, nil
}
