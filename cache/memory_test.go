package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leadtime-engine/cache"
)

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemory_GetMissing(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	_, ok, err := c.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_TTLExpiry(t *testing.T) {
	// GIVEN: A key with a 50ms TTL
	// WHEN: Reading after the TTL elapses
	// THEN: The key is gone

	ctx := context.Background()
	c := cache.NewMemory()

	require.NoError(t, c.Set(ctx, "short", "v", 50*time.Millisecond))

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok, "should be live before expiry")

	time.Sleep(60 * time.Millisecond)

	_, ok, err = c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "should be expired")
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	require.NoError(t, c.Set(ctx, "forever", "v", 0))

	_, ok, err := c.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemory_DeleteMultiple(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	require.NoError(t, c.Set(ctx, "c", "3", 0))

	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemory_KeysGlobPattern(t *testing.T) {
	// GIVEN: Cached windows for two machine groups
	// WHEN: Matching one group's window pattern
	// THEN: Only that group's keys match

	ctx := context.Background()
	c := cache.NewMemory()

	k1 := cache.WindowKey("org-1", "cnc", "g1", "2026-03-02", "2026-03-06")
	k2 := cache.WindowKey("org-1", "cnc", "g1", "2026-03-09", "2026-03-13")
	k3 := cache.WindowKey("org-1", "cnc", "g2", "2026-03-02", "2026-03-06")
	for _, k := range []string{k1, k2, k3} {
		require.NoError(t, c.Set(ctx, k, "[]", time.Minute))
	}

	keys, err := c.Keys(ctx, cache.WindowPattern("org-1", "cnc", "g1"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{k1, k2}, keys)
}

func TestMemory_KeysWildcardGroup(t *testing.T) {
	// Override writes invalidate every machine group of a process via a '*'
	// group segment.
	ctx := context.Background()
	c := cache.NewMemory()

	k1 := cache.WindowKey("org-1", "cnc", "g1", "2026-03-02", "2026-03-06")
	k2 := cache.WindowKey("org-1", "cnc", "g2", "2026-03-02", "2026-03-06")
	k3 := cache.WindowKey("org-1", "milling", "g1", "2026-03-02", "2026-03-06")
	for _, k := range []string{k1, k2, k3} {
		require.NoError(t, c.Set(ctx, k, "[]", time.Minute))
	}

	keys, err := c.Keys(ctx, cache.WindowPattern("org-1", "cnc", "*"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{k1, k2}, keys)
}
