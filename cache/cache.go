/*
Package cache holds computed reports for reuse within a session.

PURPOSE:
  Recomputing a report means refetching every interval in the range, so the
  API layer keeps recent results keyed by (workspace, rangeStart, rangeEnd)
  with a fixed time-to-live. The engine itself is cache-agnostic: it always
  recomputes from the inputs it is given, and nothing here is consulted
  during calculation.

INVALIDATION:
  - Entries expire after the TTL; expiry is checked on read.
  - Switching workspaces invalidates every entry of the old workspace.
  - Expired entries are swept opportunistically on write, so the map does
    not grow without bound; there is no background goroutine.
*/
package cache

import (
	"sync"
	"time"

	"github.com/warp/timesheet-engine/engine"
)

// Key identifies one cached report.
type Key struct {
	Workspace  string
	RangeStart engine.Day
	RangeEnd   engine.Day
}

type entry struct {
	results  []*engine.WorkerResult
	storedAt time.Time
}

// Results is a TTL cache of computed reports. Safe for concurrent use.
type Results struct {
	ttl time.Duration
	now func() time.Time // injectable for tests

	mu      sync.RWMutex
	entries map[Key]entry
}

func New(ttl time.Duration) *Results {
	return &Results{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[Key]entry),
	}
}

// Get returns the cached report for the key, or ok=false on miss or expiry.
func (c *Results) Get(key Key) ([]*engine.WorkerResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.results, true
}

// Put stores a report, sweeping any expired entries while it holds the lock.
func (c *Results) Put(key Key, results []*engine.WorkerResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{results: results, storedAt: c.now()}
}

// InvalidateWorkspace drops every entry belonging to the workspace.
func (c *Results) InvalidateWorkspace(workspace string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if k.Workspace == workspace {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of live (unexpired) entries.
func (c *Results) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

func (c *Results) expired(e entry) bool {
	return c.now().Sub(e.storedAt) >= c.ttl
}
