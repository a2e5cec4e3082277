package leadtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leadtime-engine/cache"
	"github.com/warp/leadtime-engine/leadtime"
	"github.com/warp/leadtime-engine/leadtime/store"
)

// countingStore wraps the memory store and counts ledger reads.
type countingStore struct {
	*store.Memory
	reads int
}

func (s *countingStore) CapacityDays(ctx context.Context, orgID, process, machineGroup string, days []string) ([]leadtime.CapacityDay, error) {
	s.reads++
	return s.Memory.CapacityDays(ctx, orgID, process, machineGroup, days)
}

type brokenCapacityStore struct {
	*store.Memory
}

func (s *brokenCapacityStore) CapacityDays(context.Context, string, string, string, []string) ([]leadtime.CapacityDay, error) {
	return nil, assert.AnError
}

func TestCapacityAccessor_SynthesizesMissingDays(t *testing.T) {
	// GIVEN: A ledger row for only one of three requested days
	// WHEN: Resolving the window
	// THEN: Missing days come back synthesized at zero utilization, and the
	//       result is ordered by day

	ctx := context.Background()
	mem := store.NewMemory()
	_, err := mem.UpsertCapacity(ctx, []leadtime.CapacityEntry{capEntry("2026-03-04", 480, 240)})
	require.NoError(t, err)

	acc := &leadtime.CapacityAccessor{Store: mem, Cache: cache.NewMemory(), Logger: quietLogger()}

	rows := acc.Window(ctx, "org-1", "cnc", "mill-a",
		[]string{"2026-03-05", "2026-03-03", "2026-03-04"})

	require.Len(t, rows, 3)
	assert.Equal(t, "2026-03-03", rows[0].Day)
	assert.Equal(t, "2026-03-04", rows[1].Day)
	assert.Equal(t, "2026-03-05", rows[2].Day)

	assert.True(t, rows[0].Synthesized)
	assert.False(t, rows[1].Synthesized)
	assert.True(t, rows[2].Synthesized)

	assert.Equal(t, 0.5, rows[1].Utilization)
	assert.Equal(t, 0.0, rows[0].Utilization)
}

func TestCapacityAccessor_ReadThroughCache(t *testing.T) {
	// GIVEN: A populated window already resolved once
	// WHEN: Resolving the same window again within the TTL
	// THEN: The ledger is not read a second time

	ctx := context.Background()
	cs := &countingStore{Memory: store.NewMemory()}
	_, err := cs.UpsertCapacity(ctx, []leadtime.CapacityEntry{capEntry("2026-03-03", 480, 120)})
	require.NoError(t, err)

	acc := &leadtime.CapacityAccessor{Store: cs, Cache: cache.NewMemory(), TTL: time.Minute, Logger: quietLogger()}
	days := []string{"2026-03-03", "2026-03-04"}

	first := acc.Window(ctx, "org-1", "cnc", "mill-a", days)
	second := acc.Window(ctx, "org-1", "cnc", "mill-a", days)

	assert.Equal(t, 1, cs.reads)
	assert.Equal(t, first, second)
}

func TestCapacityAccessor_DistinctWindowsCacheSeparately(t *testing.T) {
	ctx := context.Background()
	cs := &countingStore{Memory: store.NewMemory()}

	acc := &leadtime.CapacityAccessor{Store: cs, Cache: cache.NewMemory(), TTL: time.Minute, Logger: quietLogger()}

	acc.Window(ctx, "org-1", "cnc", "mill-a", []string{"2026-03-03", "2026-03-04"})
	acc.Window(ctx, "org-1", "cnc", "mill-a", []string{"2026-03-03", "2026-03-05"})

	assert.Equal(t, 2, cs.reads)
}

func TestCapacityAccessor_StorageFailureDegradesToEmpty(t *testing.T) {
	// The pricing hot path must not fail on a storage error.
	ctx := context.Background()
	acc := &leadtime.CapacityAccessor{
		Store:  &brokenCapacityStore{Memory: store.NewMemory()},
		Cache:  cache.NewMemory(),
		Logger: quietLogger(),
	}

	rows := acc.Window(ctx, "org-1", "cnc", "mill-a", []string{"2026-03-03"})
	assert.Nil(t, rows)
}

func TestCapacityAccessor_EmptyDayList(t *testing.T) {
	acc := &leadtime.CapacityAccessor{Store: store.NewMemory(), Cache: cache.NewMemory(), Logger: quietLogger()}
	assert.Nil(t, acc.Window(context.Background(), "org-1", "cnc", "mill-a", nil))
}

func TestUtilization_Derivation(t *testing.T) {
	assert.Equal(t, 1.0, leadtime.Utilization(0, 100), "zero capacity is worst case")
	assert.Equal(t, 1.0, leadtime.Utilization(-5, 0), "negative capacity is worst case")
	assert.Equal(t, 0.5, leadtime.Utilization(480, 240))
	assert.Equal(t, 1.0, leadtime.Utilization(100, 250), "clamped at 1")
	assert.Equal(t, 0.0, leadtime.Utilization(100, -10), "clamped at 0")
}
