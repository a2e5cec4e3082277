/*
profile.go - Cached profile and org-setting accessors

PURPOSE:
  Profiles and org settings are read on every pricing request but change
  rarely, so they carry longer TTLs than capacity windows: profiles 5
  minutes, timezones 1 hour.

FAILURE POLICY:
  Cache failures are logged and bypassed (the store is authoritative).
  Store failures propagate; the orchestrator converts them to the fixed
  fallback response.
*/
package leadtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/warp/leadtime-engine/cache"
)

const (
	defaultProfileTTL  = 5 * time.Minute
	defaultTimezoneTTL = time.Hour
)

// ProfileAccessor resolves profiles, timezones, and holidays.
type ProfileAccessor struct {
	Profiles    ProfileStore
	Orgs        OrgStore
	Cache       cache.Cache
	ProfileTTL  time.Duration
	TimezoneTTL time.Duration
	Logger      *slog.Logger
}

func (a *ProfileAccessor) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *ProfileAccessor) profileTTL() time.Duration {
	if a.ProfileTTL > 0 {
		return a.ProfileTTL
	}
	return defaultProfileTTL
}

func (a *ProfileAccessor) timezoneTTL() time.Duration {
	if a.TimezoneTTL > 0 {
		return a.TimezoneTTL
	}
	return defaultTimezoneTTL
}

// Profile returns the cached profile for (org, process), or nil when none
// exists. Absence is not cached; a freshly created profile becomes visible
// on the next request.
func (a *ProfileAccessor) Profile(ctx context.Context, orgID, process string) (*Profile, error) {
	key := cache.ProfileKey(orgID, process)

	if cached, ok, err := a.Cache.Get(ctx, key); err != nil {
		a.logger().Warn("profile cache read failed",
			slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		var p Profile
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
	}

	p, err := a.Profiles.Profile(ctx, orgID, process)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if payload, err := json.Marshal(p); err == nil {
		if err := a.Cache.Set(ctx, key, string(payload), a.profileTTL()); err != nil {
			a.logger().Warn("profile cache write failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	return p, nil
}

// Timezone returns the org's timezone, defaulting to UTC when the org has
// none configured.
func (a *ProfileAccessor) Timezone(ctx context.Context, orgID string) (string, error) {
	key := cache.TimezoneKey(orgID)

	if cached, ok, err := a.Cache.Get(ctx, key); err != nil {
		a.logger().Warn("timezone cache read failed",
			slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		return cached, nil
	}

	tz, err := a.Orgs.OrgTimezone(ctx, orgID)
	if err != nil {
		return "", err
	}
	if tz == "" {
		tz = "UTC"
	}

	if err := a.Cache.Set(ctx, key, tz, a.timezoneTTL()); err != nil {
		a.logger().Warn("timezone cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}

	return tz, nil
}

// Holidays returns the org's holiday dates. No holiday data is not an
// error: an org without holidays gets a plain weekend calendar.
func (a *ProfileAccessor) Holidays(ctx context.Context, orgID string) ([]string, error) {
	return a.Orgs.OrgHolidays(ctx, orgID)
}
