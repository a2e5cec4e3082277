// Package store provides an in-memory leadtime.Store for tests and dev.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/leadtime-engine/leadtime"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	capacity  map[capacityKey]leadtime.CapacityDay
	overrides map[overrideKey]leadtime.Override
	profiles  map[profileKey]leadtime.Profile
	timezones map[string]string
	holidays  map[string][]string
}

type capacityKey struct {
	OrgID        string
	Process      string
	MachineGroup string
	Day          string
}

type overrideKey struct {
	OrgID   string
	Process string
	Day     string
	Class   leadtime.Class
}

type profileKey struct {
	OrgID   string
	Process string
}

func NewMemory() *Memory {
	return &Memory{
		capacity:  make(map[capacityKey]leadtime.CapacityDay),
		overrides: make(map[overrideKey]leadtime.Override),
		profiles:  make(map[profileKey]leadtime.Profile),
		timezones: make(map[string]string),
		holidays:  make(map[string][]string),
	}
}

// =============================================================================
// CAPACITY
// =============================================================================

func (m *Memory) CapacityDays(_ context.Context, orgID, process, machineGroup string, days []string) ([]leadtime.CapacityDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []leadtime.CapacityDay
	for _, day := range days {
		if row, ok := m.capacity[capacityKey{orgID, process, machineGroup, day}]; ok {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })
	return rows, nil
}

func (m *Memory) CapacityRange(_ context.Context, orgID, process, machineGroup, from, to string) ([]leadtime.CapacityDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []leadtime.CapacityDay
	for k, row := range m.capacity {
		if k.OrgID == orgID && k.Process == process && k.MachineGroup == machineGroup &&
			k.Day >= from && k.Day <= to {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })
	return rows, nil
}

func (m *Memory) UpsertCapacity(_ context.Context, entries []leadtime.CapacityEntry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		k := capacityKey{e.OrgID, e.Process, e.MachineGroup, e.Day}
		row, exists := m.capacity[k]

		row.Day = e.Day
		row.Process = e.Process
		row.MachineGroup = e.MachineGroup
		row.CapacityMinutes = e.CapacityMinutes
		if e.BookedMinutes != nil {
			row.BookedMinutes = *e.BookedMinutes
		} else if !exists {
			row.BookedMinutes = 0
		}
		if e.Notes != nil {
			row.Notes = *e.Notes
		}
		row.Utilization = leadtime.Utilization(row.CapacityMinutes, row.BookedMinutes)
		row.Synthesized = false

		m.capacity[k] = row
	}
	return len(entries), nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

func (m *Memory) HasOverride(_ context.Context, orgID, process string, class leadtime.Class, days []string, blocked bool) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, day := range days {
		if o, ok := m.overrides[overrideKey{orgID, process, day, class}]; ok && o.Blocked == blocked {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) OverridesRange(_ context.Context, orgID, process, from, to string) ([]leadtime.Override, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []leadtime.Override
	for k, o := range m.overrides {
		if k.OrgID == orgID && k.Process == process && k.Day >= from && k.Day <= to {
			rows = append(rows, o)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Day != rows[j].Day {
			return rows[i].Day < rows[j].Day
		}
		return rows[i].Class < rows[j].Class
	})
	return rows, nil
}

func (m *Memory) UpsertOverride(_ context.Context, o leadtime.Override) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := overrideKey{o.OrgID, o.Process, o.Day, o.Class}
	if existing, ok := m.overrides[k]; ok {
		o.ID = existing.ID
	} else if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = time.Now().UTC()
	m.overrides[k] = o
	return o.ID, nil
}

// =============================================================================
// PROFILES
// =============================================================================

func (m *Memory) Profile(_ context.Context, orgID, process string) (*leadtime.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.profiles[profileKey{orgID, process}]; ok {
		copied := p
		return &copied, nil
	}
	return nil, nil
}

func (m *Memory) CreateProfile(_ context.Context, p leadtime.Profile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := profileKey{p.OrgID, p.Process}
	if existing, ok := m.profiles[k]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = time.Now().UTC()
	m.profiles[k] = p
	return p.ID, nil
}

func (m *Memory) UpdateProfile(_ context.Context, orgID, process string, patch leadtime.ProfilePatch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	k := profileKey{orgID, process}
	p, ok := m.profiles[k]
	if !ok {
		return false, leadtime.ErrProfileNotFound
	}

	if patch.EconDays != nil {
		p.EconDays = *patch.EconDays
	}
	if patch.StdDays != nil {
		p.StdDays = *patch.StdDays
	}
	if patch.ExpressDays != nil {
		p.ExpressDays = *patch.ExpressDays
	}
	if patch.SurgeMultiplier != nil {
		p.SurgeMultiplier = *patch.SurgeMultiplier
	}
	p.UpdatedAt = time.Now().UTC()
	m.profiles[k] = p
	return true, nil
}

// =============================================================================
// ORGS
// =============================================================================

func (m *Memory) OrgTimezone(_ context.Context, orgID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timezones[orgID], nil
}

func (m *Memory) OrgHolidays(_ context.Context, orgID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dates := make([]string, len(m.holidays[orgID]))
	copy(dates, m.holidays[orgID])
	return dates, nil
}

func (m *Memory) UpsertOrg(_ context.Context, orgID, timezone string) error {
	m.mu.Lock()
	m.timezones[orgID] = timezone
	m.mu.Unlock()
	return nil
}

func (m *Memory) AddHoliday(_ context.Context, orgID, date, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.holidays[orgID] {
		if d == date {
			return nil
		}
	}
	m.holidays[orgID] = append(m.holidays[orgID], date)
	sort.Strings(m.holidays[orgID])
	return nil
}
