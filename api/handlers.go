/*
handlers.go - HTTP API handlers for the lead-time engine

PURPOSE:
  Exposes the lead-time engine via REST API: the pricing hot path
  (options) plus the operator console surface (capacity entry, overrides,
  profiles, org settings).

ENDPOINTS:
  Pricing:
    GET  /api/leadtime/options              Lead-time options with pricing

  Capacity (operator tooling):
    POST /api/leadtime/capacity/bulk-upsert Bulk upsert ledger entries
    GET  /api/leadtime/capacity/window      Raw ledger rows for a range

  Overrides:
    POST /api/leadtime/overrides            Create/update an override
    GET  /api/leadtime/overrides            List overrides for a range

  Profiles:
    GET  /api/leadtime/profiles             Get profile for org+process
    POST /api/leadtime/profiles             Create/replace profile
    PUT  /api/leadtime/profiles             Partial profile update

  Orgs:
    POST /api/orgs                          Set org timezone
    GET  /api/orgs/{id}/holidays            List org holidays
    POST /api/orgs/{id}/holidays            Add an org holiday

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (here, not inside the engine)
  3. Call domain logic (engine or store)
  4. Invalidate caches after writes
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors
  The options endpoint never returns an error status: the engine degrades
  to its fallback response instead.

SECURITY NOTE:
  No authentication middleware. Authorization belongs to the gateway in
  front of this service.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/leadtime-engine/calendar"
	"github.com/warp/leadtime-engine/leadtime"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  leadtime.Store
	Engine *leadtime.Engine
	Logger *slog.Logger
}

// NewHandler creates a new handler over the given store and engine.
func NewHandler(store leadtime.Store, engine *leadtime.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: store, Engine: engine, Logger: logger}
}

// =============================================================================
// PRICING ENDPOINT
// =============================================================================

// GetOptions computes lead-time options with dynamic pricing.
// GET /api/leadtime/options
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	basePrice := decimal.Zero
	if raw := q.Get("basePrice"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid basePrice", err)
			return
		}
		basePrice = parsed
	}

	estimatedMinutes := 0
	if raw := q.Get("estimatedMinutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid estimatedMinutes", err)
			return
		}
		estimatedMinutes = parsed
	}

	input := leadtime.PricingInput{
		OrgID:            q.Get("orgId"),
		Process:          q.Get("process"),
		MachineGroup:     q.Get("machineGroup"),
		BasePrice:        basePrice,
		EstimatedMinutes: estimatedMinutes,
		DesiredClass:     leadtime.Class(q.Get("desiredClass")),
	}
	if err := input.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pricing input", err)
		return
	}

	writeJSON(w, http.StatusOK, h.Engine.ComputeOptions(r.Context(), input))
}

// =============================================================================
// CAPACITY ENDPOINTS
// =============================================================================

// BulkUpsertCapacity writes a batch of capacity ledger entries.
// POST /api/leadtime/capacity/bulk-upsert
func (h *Handler) BulkUpsertCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started := time.Now()

	var req CapacityBulkUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, http.StatusBadRequest, "No entries provided", nil)
		return
	}
	for _, e := range req.Entries {
		if e.OrgID == "" || e.Process == "" || e.MachineGroup == "" {
			writeError(w, http.StatusBadRequest, "Entry missing org/process/machine group", nil)
			return
		}
		if !isValidDay(e.Day) {
			writeError(w, http.StatusBadRequest, "Invalid day: "+e.Day, leadtime.ErrInvalidDay)
			return
		}
		if e.CapacityMinutes < 0 || (e.BookedMinutes != nil && *e.BookedMinutes < 0) {
			writeError(w, http.StatusBadRequest, "Minutes must not be negative", nil)
			return
		}
	}

	upserted, err := h.Store.UpsertCapacity(ctx, req.Entries)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Bulk upsert failed", err)
		return
	}

	// Invalidate each touched machine-group window cache once.
	type scope struct{ org, process, group string }
	seen := make(map[scope]bool)
	for _, e := range req.Entries {
		s := scope{e.OrgID, e.Process, e.MachineGroup}
		if seen[s] {
			continue
		}
		seen[s] = true
		h.Engine.InvalidateCapacityCache(ctx, s.org, s.process, s.group)
	}

	h.Logger.Info("bulk upserted capacity entries",
		slog.Int("rows", upserted),
		slog.Duration("took", time.Since(started)))

	writeJSON(w, http.StatusOK, map[string]any{"upserted": upserted})
}

// GetCapacityWindow returns raw ledger rows for a date range. Unlike the
// pricing path, storage errors propagate here.
// GET /api/leadtime/capacity/window
func (h *Handler) GetCapacityWindow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgID, process, group := q.Get("orgId"), q.Get("process"), q.Get("machineGroup")
	from, to := q.Get("from"), q.Get("to")

	if orgID == "" || process == "" || group == "" {
		writeError(w, http.StatusBadRequest, "Missing orgId/process/machineGroup", nil)
		return
	}
	if !isValidDay(from) || !isValidDay(to) {
		writeError(w, http.StatusBadRequest, "Invalid from/to date", leadtime.ErrInvalidDay)
		return
	}

	rows, err := h.Store.CapacityRange(r.Context(), orgID, process, group, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read capacity window", err)
		return
	}
	if rows == nil {
		rows = []leadtime.CapacityDay{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// =============================================================================
// OVERRIDE ENDPOINTS
// =============================================================================

// CreateOverride creates or updates a lead-time override.
// POST /api/leadtime/overrides
func (h *Handler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.OrgID == "" || req.Process == "" {
		writeError(w, http.StatusBadRequest, "Missing orgId/process", nil)
		return
	}
	if !isValidDay(req.Day) {
		writeError(w, http.StatusBadRequest, "Invalid day", leadtime.ErrInvalidDay)
		return
	}
	class := leadtime.Class(req.Class)
	if !class.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid class", leadtime.ErrUnknownClass)
		return
	}
	if req.Blocked == nil {
		writeError(w, http.StatusBadRequest, "Missing blocked flag", nil)
		return
	}

	id, err := h.Store.UpsertOverride(ctx, leadtime.Override{
		OrgID:     req.OrgID,
		Process:   req.Process,
		Day:       req.Day,
		Class:     class,
		Blocked:   *req.Blocked,
		Reason:    req.Reason,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upsert override", err)
		return
	}

	// Overrides gate cached capacity decisions for every machine group of
	// the process.
	h.Engine.InvalidateCapacityCache(ctx, req.OrgID, req.Process, "*")

	h.Logger.Info("override set",
		slog.String("org_id", req.OrgID),
		slog.String("process", req.Process),
		slog.String("day", req.Day),
		slog.String("class", req.Class),
		slog.Bool("blocked", *req.Blocked))

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// ListOverrides returns overrides for a date range.
// GET /api/leadtime/overrides
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgID, process := q.Get("orgId"), q.Get("process")
	from, to := q.Get("from"), q.Get("to")

	if orgID == "" || process == "" {
		writeError(w, http.StatusBadRequest, "Missing orgId/process", nil)
		return
	}
	if !isValidDay(from) || !isValidDay(to) {
		writeError(w, http.StatusBadRequest, "Invalid from/to date", leadtime.ErrInvalidDay)
		return
	}

	overrides, err := h.Store.OverridesRange(r.Context(), orgID, process, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read overrides", err)
		return
	}
	if overrides == nil {
		overrides = []leadtime.Override{}
	}
	writeJSON(w, http.StatusOK, overrides)
}

// =============================================================================
// PROFILE ENDPOINTS
// =============================================================================

// GetProfile returns the lead-time profile for org+process.
// GET /api/leadtime/profiles
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgID, process := q.Get("orgId"), q.Get("process")
	if orgID == "" || process == "" {
		writeError(w, http.StatusBadRequest, "Missing orgId/process", nil)
		return
	}

	profile, err := h.Store.Profile(r.Context(), orgID, process)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read profile", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "Profile not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// CreateProfile creates or replaces a lead-time profile.
// POST /api/leadtime/profiles
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.OrgID == "" || req.Process == "" {
		writeError(w, http.StatusBadRequest, "Missing orgId/process", nil)
		return
	}
	if req.EconDays <= 0 || req.StdDays <= 0 || req.ExpressDays <= 0 {
		writeError(w, http.StatusBadRequest, "Class day counts must be positive", nil)
		return
	}
	if req.SurgeMultiplier.LessThan(decimal.NewFromInt(1)) {
		writeError(w, http.StatusBadRequest, "Surge multiplier must be >= 1", nil)
		return
	}

	id, err := h.Store.CreateProfile(ctx, leadtime.Profile{
		OrgID:           req.OrgID,
		Process:         req.Process,
		EconDays:        req.EconDays,
		StdDays:         req.StdDays,
		ExpressDays:     req.ExpressDays,
		SurgeMultiplier: req.SurgeMultiplier,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile", err)
		return
	}

	h.Engine.InvalidateProfileCache(ctx, req.OrgID, req.Process)
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// UpdateProfile applies a partial profile update.
// PUT /api/leadtime/profiles
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	orgID, process := q.Get("orgId"), q.Get("process")
	if orgID == "" || process == "" {
		writeError(w, http.StatusBadRequest, "Missing orgId/process", nil)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.Store.UpdateProfile(ctx, orgID, process, leadtime.ProfilePatch{
		EconDays:        req.EconDays,
		StdDays:         req.StdDays,
		ExpressDays:     req.ExpressDays,
		SurgeMultiplier: req.SurgeMultiplier,
	})
	if errors.Is(err, leadtime.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile", err)
		return
	}

	if updated {
		h.Engine.InvalidateProfileCache(ctx, orgID, process)
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": updated})
}

// =============================================================================
// ORG ENDPOINTS
// =============================================================================

// UpsertOrg sets an organization's timezone.
// POST /api/orgs
func (h *Handler) UpsertOrg(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpsertOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "Missing org id", nil)
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		writeError(w, http.StatusBadRequest, "Unknown timezone", err)
		return
	}

	if err := h.Store.UpsertOrg(ctx, req.ID, req.Timezone); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to upsert org", err)
		return
	}

	h.Engine.InvalidateTimezoneCache(ctx, req.ID)
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "timezone": req.Timezone})
}

// ListHolidays returns an org's holiday dates.
// GET /api/orgs/{id}/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")

	dates, err := h.Store.OrgHolidays(r.Context(), orgID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read holidays", err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orgId": orgID, "holidays": dates})
}

// CreateHoliday records a holiday for an org.
// POST /api/orgs/{id}/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")

	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !isValidDay(req.Date) {
		writeError(w, http.StatusBadRequest, "Invalid date", leadtime.ErrInvalidDay)
		return
	}

	if err := h.Store.AddHoliday(r.Context(), orgID, req.Date, req.Name); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"orgId": orgID, "date": req.Date})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func isValidDay(s string) bool {
	_, err := time.Parse(calendar.DateFormat, s)
	return err == nil
}
