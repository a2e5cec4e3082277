/*
capacity.go - Read-through capacity window accessor

PURPOSE:
  Materializes a set of calendar days into per-day capacity tuples for the
  decision engine. Days without a ledger row are synthesized as zero
  capacity so the engine always sees one entry per requested day.

CACHING:
  Windows are cached under
  leadtime:window:{org}:{process}:{group}:{minDay}:{maxDay} with a short
  TTL. Capacity changes continuously; staleness here directly biases
  pricing, so the TTL is seconds-scale.

FAILURE POLICY:
  Window() is on the pricing hot path: a storage or cache failure is
  logged and degrades to an empty result, leaving the engine with no
  capacity signal for that class. Range() serves operator tooling and
  propagates storage errors.
*/
package leadtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/warp/leadtime-engine/cache"
)

const defaultWindowTTL = 60 * time.Second

// CapacityAccessor resolves day sets into capacity tuples through a
// read-through cache.
type CapacityAccessor struct {
	Store  CapacityStore
	Cache  cache.Cache
	TTL    time.Duration // window cache TTL; defaults to 60s
	Logger *slog.Logger
}

func (a *CapacityAccessor) ttl() time.Duration {
	if a.TTL > 0 {
		return a.TTL
	}
	return defaultWindowTTL
}

func (a *CapacityAccessor) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Window returns one CapacityDay per requested day, ascending by day.
// Never fails: degraded paths return an empty result.
func (a *CapacityAccessor) Window(ctx context.Context, orgID, process, machineGroup string, days []string) []CapacityDay {
	if len(days) == 0 {
		return nil
	}

	sorted := dedupeSorted(days)
	key := cache.WindowKey(orgID, process, machineGroup, sorted[0], sorted[len(sorted)-1])

	if cached, ok, err := a.Cache.Get(ctx, key); err != nil {
		a.logger().Warn("capacity window cache read failed",
			slog.String("key", key), slog.String("error", err.Error()))
	} else if ok {
		var rows []CapacityDay
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			return rows
		}
		// Corrupt cache entry: fall through to storage.
	}

	rows, err := a.Store.CapacityDays(ctx, orgID, process, machineGroup, sorted)
	if err != nil {
		a.logger().Error("capacity window read failed",
			slog.String("org_id", orgID),
			slog.String("process", process),
			slog.String("machine_group", machineGroup),
			slog.String("error", err.Error()))
		return nil
	}

	rows = fillMissingDays(rows, sorted, process, machineGroup)

	if payload, err := json.Marshal(rows); err == nil {
		if err := a.Cache.Set(ctx, key, string(payload), a.ttl()); err != nil {
			a.logger().Warn("capacity window cache write failed",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}

	return rows
}

// Range returns the existing ledger rows in [from, to]. Storage errors
// propagate; this path serves operator tooling, not pricing.
func (a *CapacityAccessor) Range(ctx context.Context, orgID, process, machineGroup, from, to string) ([]CapacityDay, error) {
	return a.Store.CapacityRange(ctx, orgID, process, machineGroup, from, to)
}

// fillMissingDays synthesizes zero-capacity entries for requested days the
// store had no row for, and returns the merged set ascending by day.
func fillMissingDays(rows []CapacityDay, days []string, process, machineGroup string) []CapacityDay {
	have := make(map[string]bool, len(rows))
	for _, r := range rows {
		have[r.Day] = true
	}

	for _, day := range days {
		if have[day] {
			continue
		}
		rows = append(rows, CapacityDay{
			Day:          day,
			Utilization:  0,
			MachineGroup: machineGroup,
			Process:      process,
			Synthesized:  true,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })
	return rows
}

func dedupeSorted(days []string) []string {
	seen := make(map[string]bool, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
