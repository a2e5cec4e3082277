/*
store.go - Persistence interfaces for the lead-time engine

PURPOSE:
  Defines the boundary between the decision engine and the relational
  store. The engine only reads on the pricing hot path; writes come from
  operator tooling (capacity ingestion, override entry, profile edits).

KEY INTERFACES:
  CapacityStore: Capacity ledger reads + bulk upsert
  OverrideStore: Override existence checks + upsert
  ProfileStore:  Profile read + partial update
  OrgStore:      Org timezone and holiday calendar
  Store:         All of the above (what a full backend implements)

UPSERT SEMANTICS:
  Capacity and override writes are keyed by their natural composite keys
  and are last-write-wins. No history is retained here; audit trails
  belong to an external collaborator.

IMPLEMENTATIONS:
  - store/sqlite: Production store
  - leadtime/store: In-memory store for tests and dev

SEE ALSO:
  - capacity.go: Read-through accessor over CapacityStore
  - store/sqlite/sqlite.go: Concrete implementation
*/
package leadtime

import "context"

// CapacityStore persists the per-day capacity ledger.
type CapacityStore interface {
	// CapacityDays returns the existing ledger rows among the given days,
	// ascending by day. Days with no row are simply absent from the result.
	CapacityDays(ctx context.Context, orgID, process, machineGroup string, days []string) ([]CapacityDay, error)

	// CapacityRange returns the existing ledger rows in [from, to],
	// ascending by day.
	CapacityRange(ctx context.Context, orgID, process, machineGroup, from, to string) ([]CapacityDay, error)

	// UpsertCapacity atomically writes a batch of ledger entries keyed by
	// (org, process, machineGroup, day) and returns the row count written.
	UpsertCapacity(ctx context.Context, entries []CapacityEntry) (int, error)
}

// OverrideStore persists operator block/unblock overrides.
type OverrideStore interface {
	// HasOverride reports whether any override row with the given blocked
	// state exists for the class on any of the given days.
	HasOverride(ctx context.Context, orgID, process string, class Class, days []string, blocked bool) (bool, error)

	// OverridesRange returns overrides in [from, to], ascending by day then class.
	OverridesRange(ctx context.Context, orgID, process, from, to string) ([]Override, error)

	// UpsertOverride writes an override keyed by (org, process, day, class),
	// last write wins, and returns the row ID.
	UpsertOverride(ctx context.Context, o Override) (string, error)
}

// ProfileStore persists lead-time profiles.
type ProfileStore interface {
	// Profile returns the profile for (org, process), or nil when none exists.
	Profile(ctx context.Context, orgID, process string) (*Profile, error)

	// CreateProfile writes a profile keyed by (org, process), last write
	// wins, and returns the row ID.
	CreateProfile(ctx context.Context, p Profile) (string, error)

	// UpdateProfile applies a partial update. Returns false when the patch
	// is empty; ErrProfileNotFound when no profile row exists.
	UpdateProfile(ctx context.Context, orgID, process string, patch ProfilePatch) (bool, error)
}

// OrgStore resolves per-organization settings.
type OrgStore interface {
	// OrgTimezone returns the org's IANA timezone, or "" when unknown.
	OrgTimezone(ctx context.Context, orgID string) (string, error)

	// OrgHolidays returns the org's holiday dates as YYYY-MM-DD strings.
	OrgHolidays(ctx context.Context, orgID string) ([]string, error)

	// UpsertOrg writes an org's timezone, last write wins.
	UpsertOrg(ctx context.Context, orgID, timezone string) error

	// AddHoliday records a holiday date for an org. Re-adding the same
	// date is a no-op.
	AddHoliday(ctx context.Context, orgID, date, name string) error
}

// Store is the full persistence surface a backend implements.
type Store interface {
	CapacityStore
	OverrideStore
	ProfileStore
	OrgStore
}
