/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - Field names are camelCase on the wire to match the pricing
    orchestrator's contract.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - leadtime/types.go: Domain types these map onto
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/leadtime-engine/leadtime"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// CapacityBulkUpsertRequest carries a batch of capacity ledger entries.
type CapacityBulkUpsertRequest struct {
	Entries []leadtime.CapacityEntry `json:"entries"`
}

// CreateOverrideRequest creates or updates a lead-time override.
// Blocked is a pointer so an omitted field is distinguishable from false.
type CreateOverrideRequest struct {
	OrgID     string `json:"orgId"`
	Process   string `json:"process"`
	Day       string `json:"day"`
	Class     string `json:"class"`
	Blocked   *bool  `json:"blocked"`
	Reason    string `json:"reason,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

// CreateProfileRequest creates or replaces a lead-time profile.
type CreateProfileRequest struct {
	OrgID           string          `json:"orgId"`
	Process         string          `json:"process"`
	EconDays        int             `json:"econDays"`
	StdDays         int             `json:"stdDays"`
	ExpressDays     int             `json:"expressDays"`
	SurgeMultiplier decimal.Decimal `json:"surgeMultiplier"`
}

// UpdateProfileRequest is a partial profile update; omitted fields are
// left unchanged.
type UpdateProfileRequest struct {
	EconDays        *int             `json:"econDays,omitempty"`
	StdDays         *int             `json:"stdDays,omitempty"`
	ExpressDays     *int             `json:"expressDays,omitempty"`
	SurgeMultiplier *decimal.Decimal `json:"surgeMultiplier,omitempty"`
}

// UpsertOrgRequest sets an organization's timezone.
type UpsertOrgRequest struct {
	ID       string `json:"id"`
	Timezone string `json:"timezone"`
}

// CreateHolidayRequest records a holiday for an organization.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name,omitempty"`
}
