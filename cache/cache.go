/*
Package cache provides the read-through cache boundary for the lead-time
engine.

PURPOSE:
  Every pricing request touches capacity, profile, and timezone data. All
  three are cached with TTLs matched to how fast the underlying data moves:
  capacity windows are seconds-scale (staleness directly biases pricing),
  profiles minutes-scale, org timezones hours-scale.

KEY FAMILIES:
  leadtime:window:{org}:{process}:{group}:{startDay}:{endDay}
  leadtime:profile:{org}:{process}
  org:timezone:{org}

CONCURRENCY CONTRACT:
  Concurrent requests may race to populate the same key. That is safe:
  the derived values are idempotent for identical inputs, writes are
  last-write-wins, and the TTL bounds any staleness. A race costs at most
  a redundant recompute.

INVALIDATION:
  Writers (capacity bulk-upsert, override upsert, profile update) call the
  engine's invalidation helpers, which delete keys by glob pattern. The
  delete is fire-and-forget relative to the write; a brief stale window
  bounded by the TTL is an accepted tradeoff.

SEE ALSO:
  - memory.go: In-process implementation
  - leadtime/capacity.go, leadtime/profile.go: Read-through consumers
*/
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the key-value boundary the engine depends on. A production
// deployment backs this with a shared store (e.g. Redis); tests and
// single-node deployments use Memory.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key for ttl. A non-positive ttl stores forever.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Keys returns all live keys matching a glob pattern ('*' wildcard).
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// =============================================================================
// KEY BUILDERS
// =============================================================================

// WindowKey is the cache key for a capacity window.
func WindowKey(orgID, process, machineGroup, startDay, endDay string) string {
	return fmt.Sprintf("leadtime:window:%s:%s:%s:%s:%s", orgID, process, machineGroup, startDay, endDay)
}

// WindowPattern matches every cached window for a machine group.
func WindowPattern(orgID, process, machineGroup string) string {
	return fmt.Sprintf("leadtime:window:%s:%s:%s:*", orgID, process, machineGroup)
}

// ProfileKey is the cache key for a lead-time profile.
func ProfileKey(orgID, process string) string {
	return fmt.Sprintf("leadtime:profile:%s:%s", orgID, process)
}

// TimezoneKey is the cache key for an org's timezone.
func TimezoneKey(orgID string) string {
	return fmt.Sprintf("org:timezone:%s", orgID)
}
