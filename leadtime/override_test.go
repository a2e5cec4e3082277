package leadtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leadtime-engine/leadtime"
	"github.com/warp/leadtime-engine/leadtime/store"
)

func seedOverride(t *testing.T, m *store.Memory, day string, class leadtime.Class, blocked bool) {
	t.Helper()
	_, err := m.UpsertOverride(context.Background(), leadtime.Override{
		OrgID:   "org-1",
		Process: "cnc",
		Day:     day,
		Class:   class,
		Blocked: blocked,
	})
	require.NoError(t, err)
}

func TestOverrideResolver_BlockedAnywhereInWindow(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	seedOverride(t, mem, "2026-03-05", leadtime.ClassStandard, true)

	r := &leadtime.OverrideResolver{Store: mem}

	blocked, err := r.IsBlocked(ctx, "org-1", "cnc", leadtime.ClassStandard,
		[]string{"2026-03-03", "2026-03-04", "2026-03-05"})
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = r.IsBlocked(ctx, "org-1", "cnc", leadtime.ClassStandard,
		[]string{"2026-03-03", "2026-03-04"})
	require.NoError(t, err)
	assert.False(t, blocked, "window not covering the override day")
}

func TestOverrideResolver_ClassScoped(t *testing.T) {
	// A standard block does not touch express.
	ctx := context.Background()
	mem := store.NewMemory()
	seedOverride(t, mem, "2026-03-05", leadtime.ClassStandard, true)

	r := &leadtime.OverrideResolver{Store: mem}

	blocked, err := r.IsBlocked(ctx, "org-1", "cnc", leadtime.ClassExpress,
		[]string{"2026-03-05"})
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestOverrideResolver_UnblockIsIndependent(t *testing.T) {
	// GIVEN: A block on one day and an unblock on another, same class
	// WHEN: Asking both questions over the full window
	// THEN: Both answer true; precedence is the engine's call

	ctx := context.Background()
	mem := store.NewMemory()
	seedOverride(t, mem, "2026-03-04", leadtime.ClassExpress, true)
	seedOverride(t, mem, "2026-03-05", leadtime.ClassExpress, false)

	r := &leadtime.OverrideResolver{Store: mem}
	window := []string{"2026-03-04", "2026-03-05"}

	blocked, err := r.IsBlocked(ctx, "org-1", "cnc", leadtime.ClassExpress, window)
	require.NoError(t, err)
	assert.True(t, blocked)

	unblocked, err := r.IsManuallyUnblocked(ctx, "org-1", "cnc", leadtime.ClassExpress, window)
	require.NoError(t, err)
	assert.True(t, unblocked)
}

func TestOverrideResolver_EmptyWindow(t *testing.T) {
	r := &leadtime.OverrideResolver{Store: store.NewMemory()}

	blocked, err := r.IsBlocked(context.Background(), "org-1", "cnc", leadtime.ClassEcon, nil)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestOverrideUpsert_LastWriteWins(t *testing.T) {
	// Re-upserting the same (org, process, day, class) flips the flag and
	// keeps a single logical entry.
	ctx := context.Background()
	mem := store.NewMemory()

	seedOverride(t, mem, "2026-03-05", leadtime.ClassStandard, true)
	seedOverride(t, mem, "2026-03-05", leadtime.ClassStandard, false)

	r := &leadtime.OverrideResolver{Store: mem}

	blocked, err := r.IsBlocked(ctx, "org-1", "cnc", leadtime.ClassStandard, []string{"2026-03-05"})
	require.NoError(t, err)
	assert.False(t, blocked)

	unblocked, err := r.IsManuallyUnblocked(ctx, "org-1", "cnc", leadtime.ClassStandard, []string{"2026-03-05"})
	require.NoError(t, err)
	assert.True(t, unblocked)

	overrides, err := mem.OverridesRange(ctx, "org-1", "cnc", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Len(t, overrides, 1)
}
