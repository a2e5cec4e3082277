/*
override.go - Manual override resolution

PURPOSE:
  Operators can block a class on a day (machine down, rush backlog) or
  unblock a class the utilization policy would suppress (a customer promise
  worth keeping). The resolver answers two independent existence questions
  over a window; the engine decides precedence (blocked wins, checked
  first).
*/
package leadtime

import "context"

// OverrideResolver answers block/unblock questions over a day set.
type OverrideResolver struct {
	Store OverrideStore
}

// IsBlocked reports whether any day in the window carries a blocked=true
// override for the class. An empty window is never blocked.
func (r *OverrideResolver) IsBlocked(ctx context.Context, orgID, process string, class Class, days []string) (bool, error) {
	if len(days) == 0 {
		return false, nil
	}
	return r.Store.HasOverride(ctx, orgID, process, class, days, true)
}

// IsManuallyUnblocked reports whether any day in the window carries a
// blocked=false override for the class. Both IsBlocked and
// IsManuallyUnblocked can be true for the same window across different
// days; the engine checks blocked first, so a single blocked day vetoes
// an otherwise-unblocked window.
func (r *OverrideResolver) IsManuallyUnblocked(ctx context.Context, orgID, process string, class Class, days []string) (bool, error) {
	if len(days) == 0 {
		return false, nil
	}
	return r.Store.HasOverride(ctx, orgID, process, class, days, false)
}
