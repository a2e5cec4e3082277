/*
Package leadtime implements the capacity-aware lead-time decision engine.

PURPOSE:
  Given a requested process, machine group, and base price, compute the set
  of shippable lead-time classes (economy/standard/express), each with a
  promised ship date and a price adjustment reflecting near-term machine
  capacity pressure.

KEY CONCEPTS IN THIS FILE (types.go):
  - Class: One of the three fixed service tiers
  - Profile: Per-(org, process) class day counts and surge multiplier
  - CapacityDay: One day of the capacity ledger, with derived utilization
  - Override: Operator-authored block/unblock exception for a day+class
  - Option: A priced, explained lead-time offer (ephemeral, per request)
  - PricingInput/Response: The engine's caller-facing contract

DESIGN PRINCIPLES:
  1. Precision: money (base price, deltas, multipliers) uses
     decimal.Decimal; utilization ratios stay float64.
  2. Immutability: Option values are built once per request, never mutated.
  3. Absence is not an error: a missing capacity row is synthesized as
     zero capacity, a missing profile triggers the fixed fallback.

SEE ALSO:
  - engine.go: Per-class decision policy and the orchestrator
  - capacity.go: Read-through capacity window accessor
  - store.go: Persistence interfaces
*/
package leadtime

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAD-TIME CLASS
// =============================================================================

// Class identifies a lead-time service tier.
type Class string

const (
	ClassEcon     Class = "econ"
	ClassStandard Class = "standard"
	ClassExpress  Class = "express"
)

// Classes lists the tiers the engine evaluates, fastest last.
var Classes = []Class{ClassEcon, ClassStandard, ClassExpress}

// Valid reports whether c is one of the three known tiers.
func (c Class) Valid() bool {
	return c == ClassEcon || c == ClassStandard || c == ClassExpress
}

// DisplayName returns the customer-facing tier name.
func (c Class) DisplayName() string {
	switch c {
	case ClassEcon:
		return "Economy"
	case ClassStandard:
		return "Standard"
	case ClassExpress:
		return "Express"
	default:
		return string(c)
	}
}

// =============================================================================
// PROFILE - Per-(org, process) lead-time configuration
// =============================================================================

// Profile holds the operator-authored lead-time configuration for one
// organization and manufacturing process. Read-mostly; cached.
type Profile struct {
	ID              string          `json:"id"`
	OrgID           string          `json:"orgId"`
	Process         string          `json:"process"`
	EconDays        int             `json:"econDays"`
	StdDays         int             `json:"stdDays"`
	ExpressDays     int             `json:"expressDays"`
	SurgeMultiplier decimal.Decimal `json:"surgeMultiplier"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// DaysFor returns the business-day target for a class.
func (p *Profile) DaysFor(c Class) int {
	switch c {
	case ClassEcon:
		return p.EconDays
	case ClassStandard:
		return p.StdDays
	case ClassExpress:
		return p.ExpressDays
	default:
		return 0
	}
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	EconDays        *int             `json:"econDays,omitempty"`
	StdDays         *int             `json:"stdDays,omitempty"`
	ExpressDays     *int             `json:"expressDays,omitempty"`
	SurgeMultiplier *decimal.Decimal `json:"surgeMultiplier,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.EconDays == nil && p.StdDays == nil && p.ExpressDays == nil && p.SurgeMultiplier == nil
}

// =============================================================================
// CAPACITY LEDGER
// =============================================================================

// CapacityDay is one day of the capacity ledger for a machine group, with
// the derived utilization ratio. Synthesized marks days that had no ledger
// row and were materialized as zero capacity / zero booked / zero
// utilization.
type CapacityDay struct {
	Day             string  `json:"day"`
	CapacityMinutes int     `json:"capacityMinutes"`
	BookedMinutes   int     `json:"bookedMinutes"`
	Utilization     float64 `json:"utilization"`
	MachineGroup    string  `json:"machineGroup"`
	Process         string  `json:"process"`
	Notes           string  `json:"notes,omitempty"`
	Synthesized     bool    `json:"synthesized,omitempty"`
}

// Utilization derives the booked/capacity ratio clamped to [0, 1].
// Zero or negative capacity is worst-case by definition: utilization 1,
// never a division by zero.
func Utilization(capacityMinutes, bookedMinutes int) float64 {
	if capacityMinutes <= 0 {
		return 1
	}
	u := float64(bookedMinutes) / float64(capacityMinutes)
	if u > 1 {
		return 1
	}
	if u < 0 {
		return 0
	}
	return u
}

// CapacityEntry is one row of a bulk capacity upsert. BookedMinutes and
// Notes are optional; when nil, an existing row keeps its current value.
type CapacityEntry struct {
	OrgID           string  `json:"orgId"`
	Process         string  `json:"process"`
	MachineGroup    string  `json:"machineGroup"`
	Day             string  `json:"day"`
	CapacityMinutes int     `json:"capacityMinutes"`
	BookedMinutes   *int    `json:"bookedMinutes,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// =============================================================================
// OVERRIDE - Operator block/unblock exception
// =============================================================================

// Override forcibly blocks or unblocks a lead-time class on a specific day,
// independent of computed utilization. At most one logical entry exists per
// (org, process, day, class); writes are last-write-wins upserts.
type Override struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId"`
	Process   string    `json:"process"`
	Day       string    `json:"day"`
	Class     Class     `json:"class"`
	Blocked   bool      `json:"blocked"`
	Reason    string    `json:"reason,omitempty"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// =============================================================================
// ENGINE INPUT / OUTPUT
// =============================================================================

// PricingInput is the caller-supplied pricing context. Read-only.
type PricingInput struct {
	OrgID            string          `json:"orgId"`
	Process          string          `json:"process"`
	MachineGroup     string          `json:"machineGroup"`
	BasePrice        decimal.Decimal `json:"basePrice"`
	EstimatedMinutes int             `json:"estimatedMinutes"`
	DesiredClass     Class           `json:"desiredClass,omitempty"` // optional
}

// Validate checks required fields at the boundary. The engine itself
// assumes validated input.
func (in PricingInput) Validate() error {
	if in.OrgID == "" {
		return ErrMissingOrgID
	}
	if in.Process == "" {
		return ErrMissingProcess
	}
	if in.MachineGroup == "" {
		return ErrMissingMachineGroup
	}
	if in.BasePrice.IsNegative() {
		return ErrNegativeBasePrice
	}
	if in.DesiredClass != "" && !in.DesiredClass.Valid() {
		return ErrUnknownClass
	}
	return nil
}

// Option is a priced, explained lead-time offer for one class.
// Constructed fresh per request and never mutated.
type Option struct {
	Class             Class           `json:"class"`
	Days              int             `json:"days"`
	ShipDate          string          `json:"shipDate"`
	PriceDelta        decimal.Decimal `json:"priceDelta"`
	SurgeApplied      bool            `json:"surgeApplied"`
	UtilizationWindow float64         `json:"utilizationWindow"` // window P95, 3-decimal
	Reasons           []string        `json:"reasons"`
}

// Response is the engine's caller-facing result.
type Response struct {
	Options   []Option        `json:"options"`
	BasePrice decimal.Decimal `json:"basePrice"`
	Currency  string          `json:"currency"`
}
