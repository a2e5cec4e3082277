/*
engine.go - Per-class decision policy and the orchestrator

PURPOSE:
  The core of the repository. For each of the three classes, combines the
  business-day calendar, the capacity window, and manual overrides into a
  priced, explained lead-time option, or suppresses the class entirely.

DECISION ORDER (per class):
  1. Window: the next N business days starting the day after today,
     local to the org's timezone.
  2. P95 of per-day utilization over the window (0 with no data).
  3. Blocked override anywhere in the window -> suppressed. This check
     runs BEFORE any utilization check and always wins.
  4. p95 >= 0.85 -> surge; p95 >= 0.95 -> unavailable unless manually
     unblocked; a manual rescue always carries surge pricing.
  5. Price delta from the surge multiplier, economy relief at p95 <= 0.5,
     clamped so the final price never goes negative.

FAILURE POLICY:
  A failed class is logged and dropped; the other classes proceed. A
  failure resolving the org timezone or profile degrades the whole request
  to the fixed fallback response. The caller never sees an error.

SEE ALSO:
  - capacity.go, override.go, profile.go: The collaborators
  - hook.go: Pricing-orchestrator integration
*/
package leadtime

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/leadtime-engine/cache"
	"github.com/warp/leadtime-engine/calendar"
)

// Policy thresholds. These gate real money decisions; change with care.
const (
	surgeThreshold       = 0.85
	unavailableThreshold = 0.95
	econReliefThreshold  = 0.5
)

// econDiscountRate is the 3% economy relief on low-utilization windows.
var econDiscountRate = decimal.RequireFromString("0.03")

// Config carries the engine-level defaults. The fallback currency and day
// count are deliberately configurable rather than hardcoded; see DESIGN.md.
type Config struct {
	Currency         string        // response currency; default "INR"
	FallbackDays     int           // fallback option day count; default 7
	FallbackTimezone string        // fallback ship-date timezone; default UTC
	WindowTTL        time.Duration // capacity window cache TTL
	ProfileTTL       time.Duration // profile cache TTL
	TimezoneTTL      time.Duration // org timezone cache TTL
}

func (c Config) currency() string {
	if c.Currency != "" {
		return c.Currency
	}
	return "INR"
}

func (c Config) fallbackDays() int {
	if c.FallbackDays > 0 {
		return c.FallbackDays
	}
	return 7
}

func (c Config) fallbackTimezone() string {
	if c.FallbackTimezone != "" {
		return c.FallbackTimezone
	}
	return "UTC"
}

// Engine computes lead-time options. Construct with New; all dependencies
// are injected explicitly, there is no ambient state.
type Engine struct {
	store     Store
	cache     cache.Cache
	capacity  *CapacityAccessor
	overrides *OverrideResolver
	profiles  *ProfileAccessor
	cfg       Config
	logger    *slog.Logger

	// now is the clock; replaceable in tests.
	now func() time.Time
}

// New creates an Engine over the given store and cache.
func New(store Store, c cache.Cache, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store: store,
		cache: c,
		capacity: &CapacityAccessor{
			Store:  store,
			Cache:  c,
			TTL:    cfg.WindowTTL,
			Logger: logger,
		},
		overrides: &OverrideResolver{Store: store},
		profiles: &ProfileAccessor{
			Profiles:    store,
			Orgs:        store,
			Cache:       c,
			ProfileTTL:  cfg.ProfileTTL,
			TimezoneTTL: cfg.TimezoneTTL,
			Logger:      logger,
		},
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// classResult is one class's outcome: an option, a suppression (nil
// option), or a failure. Failures are logged, never surfaced.
type classResult struct {
	Class  Class
	Option *Option
	Err    error
}

// ComputeOptions evaluates all three classes and returns the surviving
// options sorted ascending by days. It never returns an error: any total
// failure degrades to the fixed fallback response.
func (e *Engine) ComputeOptions(ctx context.Context, input PricingInput) Response {
	started := e.now()

	tz, err := e.profiles.Timezone(ctx, input.OrgID)
	if err != nil {
		e.logger.Error("timezone resolution failed; using fallback response",
			slog.String("org_id", input.OrgID), slog.String("error", err.Error()))
		return e.fallback(input.BasePrice)
	}

	profile, err := e.profiles.Profile(ctx, input.OrgID, input.Process)
	if err != nil {
		e.logger.Error("profile resolution failed; using fallback response",
			slog.String("org_id", input.OrgID),
			slog.String("process", input.Process),
			slog.String("error", err.Error()))
		return e.fallback(input.BasePrice)
	}
	if profile == nil {
		e.logger.Warn("no lead-time profile; using fallback response",
			slog.String("org_id", input.OrgID), slog.String("process", input.Process))
		return e.fallback(input.BasePrice)
	}

	holidays, err := e.profiles.Holidays(ctx, input.OrgID)
	if err != nil {
		// Data-absent policy: price against a plain weekend calendar.
		e.logger.Warn("holiday lookup failed; pricing without holidays",
			slog.String("org_id", input.OrgID), slog.String("error", err.Error()))
		holidays = nil
	}

	// The three classes are independent; evaluate them concurrently.
	results := make([]classResult, len(Classes))
	var wg sync.WaitGroup
	for i, cls := range Classes {
		wg.Add(1)
		go func(i int, cls Class) {
			defer wg.Done()
			opt, err := e.computeClass(ctx, cls, profile, input, tz, holidays)
			results[i] = classResult{Class: cls, Option: opt, Err: err}
		}(i, cls)
	}
	wg.Wait()

	options := make([]Option, 0, len(Classes))
	for _, res := range results {
		if res.Err != nil {
			e.logger.Error("class evaluation failed",
				slog.String("class", string(res.Class)),
				slog.String("org_id", input.OrgID),
				slog.String("process", input.Process),
				slog.String("error", res.Err.Error()))
			continue
		}
		if res.Option != nil {
			options = append(options, *res.Option)
		}
	}

	sort.Slice(options, func(i, j int) bool { return options[i].Days < options[j].Days })

	e.logger.Info("computed lead-time options",
		slog.Int("options", len(options)),
		slog.String("org_id", input.OrgID),
		slog.String("process", input.Process),
		slog.Duration("took", e.now().Sub(started)))

	return Response{
		Options:   options,
		BasePrice: input.BasePrice,
		Currency:  e.cfg.currency(),
	}
}

// fallback is the degraded response: a single standard option at zero
// delta. The worst-case observable behavior of the engine.
func (e *Engine) fallback(basePrice decimal.Decimal) Response {
	days := e.cfg.fallbackDays()
	tz := e.cfg.fallbackTimezone()
	cal := calendar.Config{Timezone: tz}

	return Response{
		Options: []Option{
			{
				Class:             ClassStandard,
				Days:              days,
				ShipDate:          calendar.FormatDate(calendar.AddBusinessDays(e.now(), days, cal), tz),
				PriceDelta:        decimal.Zero,
				SurgeApplied:      false,
				UtilizationWindow: 0,
				Reasons:           []string{"Capacity unavailable; using defaults"},
			},
		},
		BasePrice: basePrice,
		Currency:  e.cfg.currency(),
	}
}

// =============================================================================
// PER-CLASS DECISION POLICY
// =============================================================================

// computeClass evaluates one class. A nil option with nil error means the
// class is suppressed.
func (e *Engine) computeClass(ctx context.Context, cls Class, profile *Profile, input PricingInput, tz string, holidays []string) (*Option, error) {
	days := profile.DaysFor(cls)
	if days <= 0 {
		return nil, nil
	}

	cal := calendar.Config{Timezone: tz, Holidays: holidays}
	loc := cal.Location()

	now := e.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	// Candidate shipping window: the next `days` business days starting
	// the calendar day after today.
	windowStart := today.AddDate(0, 0, 1)
	windowEnd := calendar.AddBusinessDays(windowStart, days-1, cal)
	windowDays := calendar.BusinessDaysWindow(windowStart, windowEnd, cal)

	rows := e.capacity.Window(ctx, input.OrgID, input.Process, input.MachineGroup, windowDays)

	utilizations := make([]float64, len(rows))
	hasCapacityData := false
	for i, row := range rows {
		utilizations[i] = row.Utilization
		if !row.Synthesized {
			hasCapacityData = true
		}
	}
	p95 := calendar.P95(utilizations)

	// A blocked override vetoes the class outright, regardless of
	// utilization. Checked before the utilization gate.
	blocked, err := e.overrides.IsBlocked(ctx, input.OrgID, input.Process, cls, windowDays)
	if err != nil {
		return nil, err
	}
	if blocked {
		e.logger.Debug("class blocked by override",
			slog.String("class", string(cls)),
			slog.String("org_id", input.OrgID),
			slog.String("process", input.Process))
		return nil, nil
	}

	surgeApplied := p95 >= surgeThreshold
	unavailable := p95 >= unavailableThreshold

	if unavailable {
		unblocked, err := e.overrides.IsManuallyUnblocked(ctx, input.OrgID, input.Process, cls, windowDays)
		if err != nil {
			return nil, err
		}
		if !unblocked {
			e.logger.Debug("class unavailable at current utilization",
				slog.String("class", string(cls)),
				slog.Float64("p95", p95),
				slog.String("org_id", input.OrgID))
			return nil, nil
		}
		// A manual rescue always carries surge pricing.
		surgeApplied = true
	}

	one := decimal.NewFromInt(1)
	multiplier := one
	if surgeApplied {
		multiplier = profile.SurgeMultiplier
	}
	priceDelta := input.BasePrice.Mul(multiplier.Sub(one))

	// Economy relief: a zero delta takes the full discount; a non-zero
	// delta caps the relief at its own magnitude, so the discount never
	// adds to a positive delta.
	if cls == ClassEcon && p95 <= econReliefThreshold {
		discount := input.BasePrice.Mul(econDiscountRate)
		if priceDelta.IsZero() {
			priceDelta = discount.Neg()
		} else {
			priceDelta = decimal.Min(discount, priceDelta.Abs()).Neg()
		}
	}

	// The final price can never go negative.
	if floor := input.BasePrice.Neg(); priceDelta.LessThan(floor) {
		priceDelta = floor
	}

	shipDate := calendar.FormatDate(calendar.AddBusinessDays(today, days, cal), tz)

	return &Option{
		Class:             cls,
		Days:              days,
		ShipDate:          shipDate,
		PriceDelta:        priceDelta.Round(2),
		SurgeApplied:      surgeApplied,
		UtilizationWindow: math.Round(p95*1000) / 1000,
		Reasons:           explainOption(cls, p95, surgeApplied, profile, hasCapacityData),
	}, nil
}

// explainOption builds the ordered, human-readable annotations for an
// option. The order is fixed; consumers render these verbatim.
func explainOption(cls Class, p95 float64, surgeApplied bool, profile *Profile, hasCapacityData bool) []string {
	var reasons []string

	if !hasCapacityData {
		reasons = append(reasons, "No capacity data available; using default lead time")
	}

	if cls == ClassEcon && p95 <= econReliefThreshold {
		reasons = append(reasons, "Low utilization window - economy discount applied")
	}

	if surgeApplied {
		reasons = append(reasons,
			"P95 utilization >= 85% => surge multiplier "+profile.SurgeMultiplier.String()+"x applied")
	}

	if p95 >= unavailableThreshold {
		reasons = append(reasons, "High utilization (>=95%) - class at risk of unavailability")
	}

	return reasons
}

// =============================================================================
// CACHE INVALIDATION (called after operator writes)
// =============================================================================

// InvalidateCapacityCache removes every cached window for a machine group.
// Fire-and-forget relative to the triggering write: a brief stale window
// bounded by the TTL is accepted.
func (e *Engine) InvalidateCapacityCache(ctx context.Context, orgID, process, machineGroup string) {
	pattern := cache.WindowPattern(orgID, process, machineGroup)
	keys, err := e.cache.Keys(ctx, pattern)
	if err != nil {
		e.logger.Warn("capacity cache key scan failed",
			slog.String("pattern", pattern), slog.String("error", err.Error()))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := e.cache.Delete(ctx, keys...); err != nil {
		e.logger.Warn("capacity cache invalidation failed",
			slog.String("pattern", pattern), slog.String("error", err.Error()))
		return
	}
	e.logger.Debug("invalidated capacity cache",
		slog.Int("keys", len(keys)), slog.String("pattern", pattern))
}

// InvalidateProfileCache removes the cached profile for (org, process).
func (e *Engine) InvalidateProfileCache(ctx context.Context, orgID, process string) {
	key := cache.ProfileKey(orgID, process)
	if err := e.cache.Delete(ctx, key); err != nil {
		e.logger.Warn("profile cache invalidation failed",
			slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	e.logger.Debug("invalidated profile cache", slog.String("key", key))
}

// InvalidateTimezoneCache removes the cached timezone for an org.
func (e *Engine) InvalidateTimezoneCache(ctx context.Context, orgID string) {
	key := cache.TimezoneKey(orgID)
	if err := e.cache.Delete(ctx, key); err != nil {
		e.logger.Warn("timezone cache invalidation failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

// SetClock replaces the engine clock. Test hook.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }
