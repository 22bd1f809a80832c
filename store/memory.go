package store

import (
	"context"
	"sync"

	"github.com/warp/timesheet-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	params    *engine.CalcParams
	profiles  map[engine.WorkerID]*engine.WorkerProfile
	overrides map[engine.WorkerID]*engine.OverrideConfig
	holidays  map[engine.WorkerID][]engine.Holiday
	timeOff   map[engine.WorkerID][]engine.TimeOff
}

func NewMemory() *Memory {
	return &Memory{
		profiles:  make(map[engine.WorkerID]*engine.WorkerProfile),
		overrides: make(map[engine.WorkerID]*engine.OverrideConfig),
		holidays:  make(map[engine.WorkerID][]engine.Holiday),
		timeOff:   make(map[engine.WorkerID][]engine.TimeOff),
	}
}

func (m *Memory) Params(_ context.Context) (engine.CalcParams, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.params == nil {
		return engine.DefaultParams(), nil
	}
	return *m.params, nil
}

func (m *Memory) SaveParams(_ context.Context, p engine.CalcParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = &p
	return nil
}

func (m *Memory) Profiles(_ context.Context) (map[engine.WorkerID]*engine.WorkerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[engine.WorkerID]*engine.WorkerProfile, len(m.profiles))
	for id, p := range m.profiles {
		clone := *p
		out[id] = &clone
	}
	return out, nil
}

func (m *Memory) SaveProfile(_ context.Context, id engine.WorkerID, p *engine.WorkerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *p
	m.profiles[id] = &clone
	return nil
}

func (m *Memory) Overrides(_ context.Context) (map[engine.WorkerID]*engine.OverrideConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[engine.WorkerID]*engine.OverrideConfig, len(m.overrides))
	for id, oc := range m.overrides {
		out[id] = oc
	}
	return out, nil
}

func (m *Memory) SaveOverrides(_ context.Context, id engine.WorkerID, oc *engine.OverrideConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[id] = oc
	return nil
}

func (m *Memory) Holidays(_ context.Context) (map[engine.WorkerID][]engine.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[engine.WorkerID][]engine.Holiday, len(m.holidays))
	for id, hs := range m.holidays {
		out[id] = append([]engine.Holiday(nil), hs...)
	}
	return out, nil
}

func (m *Memory) AddHoliday(_ context.Context, id engine.WorkerID, h engine.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[id] = append(m.holidays[id], h)
	return nil
}

func (m *Memory) TimeOff(_ context.Context) (map[engine.WorkerID][]engine.TimeOff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[engine.WorkerID][]engine.TimeOff, len(m.timeOff))
	for id, tos := range m.timeOff {
		out[id] = append([]engine.TimeOff(nil), tos...)
	}
	return out, nil
}

func (m *Memory) AddTimeOff(_ context.Context, id engine.WorkerID, to engine.TimeOff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeOff[id] = append(m.timeOff[id], to)
	return nil
}

func (m *Memory) Close() error { return nil }
