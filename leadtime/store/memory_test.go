package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leadtime-engine/leadtime"
	"github.com/warp/leadtime-engine/leadtime/store"
)

func TestMemory_UpsertCapacity_OmittedFieldsKeepExistingValues(t *testing.T) {
	// Mirrors the SQLite keep-existing semantics: re-upserting a day with
	// only a capacity figure leaves booked minutes and notes in place.
	ctx := context.Background()
	m := store.NewMemory()

	booked := 300
	notes := "night shift added"
	_, err := m.UpsertCapacity(ctx, []leadtime.CapacityEntry{{
		OrgID: "org-1", Process: "cnc", MachineGroup: "mill-a", Day: "2026-03-03",
		CapacityMinutes: 480, BookedMinutes: &booked, Notes: &notes,
	}})
	require.NoError(t, err)

	_, err = m.UpsertCapacity(ctx, []leadtime.CapacityEntry{{
		OrgID: "org-1", Process: "cnc", MachineGroup: "mill-a", Day: "2026-03-03",
		CapacityMinutes: 960,
	}})
	require.NoError(t, err)

	rows, err := m.CapacityDays(ctx, "org-1", "cnc", "mill-a", []string{"2026-03-03"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, 960, rows[0].CapacityMinutes)
	assert.Equal(t, 300, rows[0].BookedMinutes)
	assert.Equal(t, "night shift added", rows[0].Notes)
	assert.Equal(t, 0.3125, rows[0].Utilization)
}

func TestMemory_CapacityDays_OnlyRequestedDays(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	for _, day := range []string{"2026-03-03", "2026-03-04", "2026-03-05"} {
		_, err := m.UpsertCapacity(ctx, []leadtime.CapacityEntry{{
			OrgID: "org-1", Process: "cnc", MachineGroup: "mill-a", Day: day,
			CapacityMinutes: 480,
		}})
		require.NoError(t, err)
	}

	rows, err := m.CapacityDays(ctx, "org-1", "cnc", "mill-a",
		[]string{"2026-03-05", "2026-03-03"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-03", rows[0].Day)
	assert.Equal(t, "2026-03-05", rows[1].Day)
}
