package leadtime_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leadtime-engine/cache"
	"github.com/warp/leadtime-engine/leadtime"
	"github.com/warp/leadtime-engine/leadtime/store"
)

type countingProfileStore struct {
	*store.Memory
	profileReads int
}

func (s *countingProfileStore) Profile(ctx context.Context, orgID, process string) (*leadtime.Profile, error) {
	s.profileReads++
	return s.Memory.Profile(ctx, orgID, process)
}

func newProfileAccessor(s *countingProfileStore) *leadtime.ProfileAccessor {
	return &leadtime.ProfileAccessor{
		Profiles: s,
		Orgs:     s.Memory,
		Cache:    cache.NewMemory(),
		Logger:   quietLogger(),
	}
}

func TestProfileAccessor_CachesProfile(t *testing.T) {
	// GIVEN: A stored profile
	// WHEN: Reading it twice
	// THEN: The second read is served from cache

	ctx := context.Background()
	cs := &countingProfileStore{Memory: store.NewMemory()}
	_, err := cs.CreateProfile(ctx, leadtime.Profile{
		OrgID:           "org-1",
		Process:         "cnc",
		EconDays:        10,
		StdDays:         5,
		ExpressDays:     2,
		SurgeMultiplier: decimal.RequireFromString("1.2"),
	})
	require.NoError(t, err)

	acc := newProfileAccessor(cs)

	first, err := acc.Profile(ctx, "org-1", "cnc")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := acc.Profile(ctx, "org-1", "cnc")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, 1, cs.profileReads)
	assert.Equal(t, first.EconDays, second.EconDays)
	assert.True(t, first.SurgeMultiplier.Equal(second.SurgeMultiplier))
}

func TestProfileAccessor_AbsenceIsNotCached(t *testing.T) {
	// GIVEN: No profile yet
	// WHEN: A read misses, the profile is created, and a second read runs
	// THEN: The second read sees the new profile immediately

	ctx := context.Background()
	cs := &countingProfileStore{Memory: store.NewMemory()}
	acc := newProfileAccessor(cs)

	missing, err := acc.Profile(ctx, "org-1", "cnc")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = cs.CreateProfile(ctx, leadtime.Profile{
		OrgID:           "org-1",
		Process:         "cnc",
		EconDays:        10,
		StdDays:         5,
		ExpressDays:     2,
		SurgeMultiplier: decimal.RequireFromString("1.5"),
	})
	require.NoError(t, err)

	found, err := acc.Profile(ctx, "org-1", "cnc")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, 2, cs.profileReads)
}

func TestProfileAccessor_TimezoneDefaultsToUTC(t *testing.T) {
	ctx := context.Background()
	cs := &countingProfileStore{Memory: store.NewMemory()}
	acc := newProfileAccessor(cs)

	tz, err := acc.Timezone(ctx, "org-unknown")
	require.NoError(t, err)
	assert.Equal(t, "UTC", tz)
}

func TestProfileAccessor_TimezoneFromStore(t *testing.T) {
	ctx := context.Background()
	cs := &countingProfileStore{Memory: store.NewMemory()}
	require.NoError(t, cs.UpsertOrg(ctx, "org-1", "Asia/Kolkata"))

	acc := newProfileAccessor(cs)

	tz, err := acc.Timezone(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", tz)
}
