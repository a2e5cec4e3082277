/*
Package sqlite provides the SQLite-backed implementation of the lead-time
storage interfaces.

PURPOSE:
  Implements leadtime.Store (capacity ledger, overrides, profiles, orgs,
  holidays) using SQLite. In production, the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  capacity_ledger:    Per-day machine-minutes, natural key
                      (org, process, machine_group, day)
  leadtime_overrides: Operator block/unblock rows, natural key
                      (org, process, day, class), last write wins
  leadtime_profiles:  Per-(org, process) class day counts and surge
                      multiplier
  orgs, org_holidays: Timezone and holiday calendar per organization

UPSERT SEMANTICS:
  Capacity and override writes use INSERT ... ON CONFLICT DO UPDATE on
  their natural keys. A capacity upsert that omits booked minutes or notes
  keeps the existing row's values.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leadtime/store.go: Interface definitions
  - leadtime/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/leadtime-engine/leadtime"
)

// Store implements leadtime.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Organizations
	CREATE TABLE IF NOT EXISTS orgs (
		id TEXT PRIMARY KEY,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		created_at TEXT NOT NULL
	);

	-- Per-org holiday calendar
	CREATE TABLE IF NOT EXISTS org_holidays (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		date TEXT NOT NULL,
		name TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_org_holidays_unique
		ON org_holidays(org_id, date);

	-- Capacity ledger (per machine group, per day)
	CREATE TABLE IF NOT EXISTS capacity_ledger (
		org_id TEXT NOT NULL,
		process TEXT NOT NULL,
		machine_group TEXT NOT NULL,
		day TEXT NOT NULL,
		capacity_minutes INTEGER NOT NULL DEFAULT 0,
		booked_minutes INTEGER NOT NULL DEFAULT 0,
		notes TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (org_id, process, machine_group, day)
	);

	-- Lead-time profiles (one per org+process)
	CREATE TABLE IF NOT EXISTS leadtime_profiles (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		process TEXT NOT NULL,
		econ_days INTEGER NOT NULL,
		std_days INTEGER NOT NULL,
		express_days INTEGER NOT NULL,
		surge_multiplier TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (org_id, process)
	);

	-- Manual block/unblock overrides (one logical row per natural key)
	CREATE TABLE IF NOT EXISTS leadtime_overrides (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		process TEXT NOT NULL,
		day TEXT NOT NULL,
		class TEXT NOT NULL,
		blocked INTEGER NOT NULL,
		reason TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (org_id, process, day, class)
	);

	-- Hot path: override existence checks over a window of days
	CREATE INDEX IF NOT EXISTS idx_overrides_window
		ON leadtime_overrides(org_id, process, class, blocked, day);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CAPACITY LEDGER (leadtime.CapacityStore interface)
// =============================================================================

// CapacityDays returns the existing ledger rows among the given days.
func (s *Store) CapacityDays(ctx context.Context, orgID, process, machineGroup string, days []string) ([]leadtime.CapacityDay, error) {
	if len(days) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT day, capacity_minutes, booked_minutes, notes
		FROM capacity_ledger
		WHERE org_id = ? AND process = ? AND machine_group = ? AND day IN (%s)
		ORDER BY day ASC
	`, placeholders(len(days)))

	args := []any{orgID, process, machineGroup}
	for _, d := range days {
		args = append(args, d)
	}

	return s.queryCapacity(ctx, process, machineGroup, query, args...)
}

// CapacityRange returns the existing ledger rows in [from, to].
func (s *Store) CapacityRange(ctx context.Context, orgID, process, machineGroup, from, to string) ([]leadtime.CapacityDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT day, capacity_minutes, booked_minutes, notes
		FROM capacity_ledger
		WHERE org_id = ? AND process = ? AND machine_group = ?
			AND day >= ? AND day <= ?
		ORDER BY day ASC
	`
	return s.queryCapacity(ctx, process, machineGroup, query, orgID, process, machineGroup, from, to)
}

func (s *Store) queryCapacity(ctx context.Context, process, machineGroup, query string, args ...any) ([]leadtime.CapacityDay, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leadtime.CapacityDay
	for rows.Next() {
		var day leadtime.CapacityDay
		var notes sql.NullString
		if err := rows.Scan(&day.Day, &day.CapacityMinutes, &day.BookedMinutes, &notes); err != nil {
			return nil, err
		}
		day.Notes = notes.String
		day.Process = process
		day.MachineGroup = machineGroup
		day.Utilization = leadtime.Utilization(day.CapacityMinutes, day.BookedMinutes)
		result = append(result, day)
	}
	return result, rows.Err()
}

// UpsertCapacity atomically writes a batch of ledger entries.
func (s *Store) UpsertCapacity(ctx context.Context, entries []leadtime.CapacityEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO capacity_ledger
			(org_id, process, machine_group, day, capacity_minutes, booked_minutes, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, COALESCE(?, 0), ?, ?)
		ON CONFLICT (org_id, process, machine_group, day) DO UPDATE SET
			capacity_minutes = excluded.capacity_minutes,
			booked_minutes = COALESCE(?, capacity_ledger.booked_minutes),
			notes = COALESCE(?, capacity_ledger.notes),
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		booked := nullInt(e.BookedMinutes)
		notes := nullStringPtr(e.Notes)
		if _, err := tx.ExecContext(ctx, query,
			e.OrgID, e.Process, e.MachineGroup, e.Day,
			e.CapacityMinutes, booked, notes, now,
			booked, notes,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert capacity for %s/%s: %w", e.MachineGroup, e.Day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// =============================================================================
// OVERRIDES (leadtime.OverrideStore interface)
// =============================================================================

// HasOverride reports whether any override row with the given blocked state
// exists for the class on any of the given days.
func (s *Store) HasOverride(ctx context.Context, orgID, process string, class leadtime.Class, days []string, blocked bool) (bool, error) {
	if len(days) == 0 {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT EXISTS(
			SELECT 1 FROM leadtime_overrides
			WHERE org_id = ? AND process = ? AND class = ? AND blocked = ? AND day IN (%s)
		)
	`, placeholders(len(days)))

	args := []any{orgID, process, string(class), blocked}
	for _, d := range days {
		args = append(args, d)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// OverridesRange returns overrides in [from, to].
func (s *Store) OverridesRange(ctx context.Context, orgID, process, from, to string) ([]leadtime.Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, org_id, process, day, class, blocked, reason, created_by, created_at
		FROM leadtime_overrides
		WHERE org_id = ? AND process = ? AND day >= ? AND day <= ?
		ORDER BY day ASC, class ASC
	`

	rows, err := s.db.QueryContext(ctx, query, orgID, process, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []leadtime.Override
	for rows.Next() {
		var o leadtime.Override
		var class string
		var reason, createdBy, createdAt sql.NullString
		if err := rows.Scan(&o.ID, &o.OrgID, &o.Process, &o.Day, &class, &o.Blocked, &reason, &createdBy, &createdAt); err != nil {
			return nil, err
		}
		o.Class = leadtime.Class(class)
		o.Reason = reason.String
		o.CreatedBy = createdBy.String
		o.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
		result = append(result, o)
	}
	return result, rows.Err()
}

// UpsertOverride writes an override, last write wins, and returns the row ID.
func (s *Store) UpsertOverride(ctx context.Context, o leadtime.Override) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leadtime_overrides
			(id, org_id, process, day, class, blocked, reason, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (org_id, process, day, class) DO UPDATE SET
			blocked = excluded.blocked,
			reason = excluded.reason,
			created_by = excluded.created_by,
			created_at = excluded.created_at
	`

	id := o.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, query,
		id, o.OrgID, o.Process, o.Day, string(o.Class), o.Blocked,
		nullString(o.Reason), nullString(o.CreatedBy),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upsert override: %w", err)
	}

	// The upsert keeps the original row ID on conflict; read it back.
	var storedID string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM leadtime_overrides WHERE org_id = ? AND process = ? AND day = ? AND class = ?`,
		o.OrgID, o.Process, o.Day, string(o.Class),
	).Scan(&storedID)
	if err != nil {
		return "", err
	}
	return storedID, nil
}

// =============================================================================
// PROFILES (leadtime.ProfileStore interface)
// =============================================================================

// Profile returns the profile for (org, process), or nil when none exists.
func (s *Store) Profile(ctx context.Context, orgID, process string) (*leadtime.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, org_id, process, econ_days, std_days, express_days,
			surge_multiplier, created_at, updated_at
		FROM leadtime_profiles
		WHERE org_id = ? AND process = ?
	`

	var p leadtime.Profile
	var surge, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, query, orgID, process).Scan(
		&p.ID, &p.OrgID, &p.Process, &p.EconDays, &p.StdDays, &p.ExpressDays,
		&surge, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.SurgeMultiplier, err = decimal.NewFromString(surge)
	if err != nil {
		return nil, fmt.Errorf("corrupt surge multiplier %q: %w", surge, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// CreateProfile writes a profile keyed by (org, process) and returns its ID.
func (s *Store) CreateProfile(ctx context.Context, p leadtime.Profile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leadtime_profiles
			(id, org_id, process, econ_days, std_days, express_days, surge_multiplier, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (org_id, process) DO UPDATE SET
			econ_days = excluded.econ_days,
			std_days = excluded.std_days,
			express_days = excluded.express_days,
			surge_multiplier = excluded.surge_multiplier,
			updated_at = excluded.updated_at
	`

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx, query,
		id, p.OrgID, p.Process, p.EconDays, p.StdDays, p.ExpressDays,
		p.SurgeMultiplier.String(), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create profile: %w", err)
	}

	var storedID string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM leadtime_profiles WHERE org_id = ? AND process = ?`,
		p.OrgID, p.Process,
	).Scan(&storedID)
	if err != nil {
		return "", err
	}
	return storedID, nil
}

// UpdateProfile applies a partial update to an existing profile.
func (s *Store) UpdateProfile(ctx context.Context, orgID, process string, patch leadtime.ProfilePatch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []any

	if patch.EconDays != nil {
		sets = append(sets, "econ_days = ?")
		args = append(args, *patch.EconDays)
	}
	if patch.StdDays != nil {
		sets = append(sets, "std_days = ?")
		args = append(args, *patch.StdDays)
	}
	if patch.ExpressDays != nil {
		sets = append(sets, "express_days = ?")
		args = append(args, *patch.ExpressDays)
	}
	if patch.SurgeMultiplier != nil {
		sets = append(sets, "surge_multiplier = ?")
		args = append(args, patch.SurgeMultiplier.String())
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), orgID, process)

	query := fmt.Sprintf(
		"UPDATE leadtime_profiles SET %s WHERE org_id = ? AND process = ?",
		strings.Join(sets, ", "))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, leadtime.ErrProfileNotFound
	}
	return true, nil
}

// =============================================================================
// ORGS (leadtime.OrgStore interface)
// =============================================================================

// OrgTimezone returns the org's timezone, or "" when the org is unknown.
func (s *Store) OrgTimezone(ctx context.Context, orgID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tz string
	err := s.db.QueryRowContext(ctx, `SELECT timezone FROM orgs WHERE id = ?`, orgID).Scan(&tz)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tz, nil
}

// OrgHolidays returns the org's holiday dates, ascending.
func (s *Store) OrgHolidays(ctx context.Context, orgID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT date FROM org_holidays WHERE org_id = ? ORDER BY date ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// UpsertOrg writes an org's timezone, last write wins.
func (s *Store) UpsertOrg(ctx context.Context, orgID, timezone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orgs (id, timezone, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET timezone = excluded.timezone
	`, orgID, timezone, time.Now().UTC().Format(time.RFC3339))
	return err
}

// AddHoliday records a holiday date for an org. Re-adding is a no-op.
func (s *Store) AddHoliday(ctx context.Context, orgID, date, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO org_holidays (id, org_id, date, name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), orgID, date, nullString(name), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Helper functions

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
