package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/timesheet-engine/engine"
)

func sampleResults(name string) []*engine.WorkerResult {
	return []*engine.WorkerResult{{WorkerID: "w1", Name: name}}
}

func TestResults_HitWithinTTL(t *testing.T) {
	c := New(time.Minute)
	key := Key{Workspace: "ws-1", RangeStart: "2025-03-01", RangeEnd: "2025-03-07"}

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Put(key, sampleResults("Ada"))
	got, ok := c.Get(key)
	assert.True(t, ok)
	assert.Equal(t, "Ada", got[0].Name)
}

func TestResults_ExpiryAndSweep(t *testing.T) {
	current := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
	c := New(time.Minute)
	c.now = func() time.Time { return current }

	key := Key{Workspace: "ws-1", RangeStart: "2025-03-01", RangeEnd: "2025-03-07"}
	c.Put(key, sampleResults("Ada"))

	current = current.Add(59 * time.Second)
	_, ok := c.Get(key)
	assert.True(t, ok, "still inside the TTL")

	current = current.Add(2 * time.Second)
	_, ok = c.Get(key)
	assert.False(t, ok, "expired")

	// A write sweeps the stale entry out of the map.
	other := Key{Workspace: "ws-2", RangeStart: "2025-03-01", RangeEnd: "2025-03-07"}
	c.Put(other, sampleResults("Grace"))
	assert.Equal(t, 1, c.Len())
}

func TestResults_WorkspaceSwitchInvalidates(t *testing.T) {
	c := New(time.Minute)
	keyA := Key{Workspace: "ws-1", RangeStart: "2025-03-01", RangeEnd: "2025-03-07"}
	keyB := Key{Workspace: "ws-1", RangeStart: "2025-02-01", RangeEnd: "2025-02-07"}
	keyC := Key{Workspace: "ws-2", RangeStart: "2025-03-01", RangeEnd: "2025-03-07"}
	c.Put(keyA, sampleResults("Ada"))
	c.Put(keyB, sampleResults("Ada"))
	c.Put(keyC, sampleResults("Grace"))

	c.InvalidateWorkspace("ws-1")

	_, ok := c.Get(keyA)
	assert.False(t, ok)
	_, ok = c.Get(keyB)
	assert.False(t, ok)
	_, ok = c.Get(keyC)
	assert.True(t, ok, "other workspaces survive")
}
