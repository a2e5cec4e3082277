/*
hook.go - Pricing-orchestrator integration

PURPOSE:
  The upstream pricing orchestrator runs this as a terminal hook: compute
  all lead-time options, and when the caller already chose a class, select
  it and emit an invoice line item for the price adjustment.

FAILURE POLICY:
  Mirrors the engine: a hook failure degrades to an empty option set at
  the caller's base price, never an error.
*/
package leadtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// LineItemTypeLeadtime is the invoice line-item type for lead-time deltas.
const LineItemTypeLeadtime = "leadtime_adjustment"

// SelectedOption is the caller's chosen class, resolved against the
// computed options.
type SelectedOption struct {
	Class             Class           `json:"class"`
	PriceDelta        decimal.Decimal `json:"priceDelta"`
	PromisedShipDate  string          `json:"promisedShipDate"`
	SurgeApplied      bool            `json:"surgeApplied"`
	UtilizationWindow float64         `json:"utilizationWindow"`
}

// LineItem is an invoice adjustment for a non-zero price delta.
type LineItem struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Metadata    map[string]any  `json:"metadata"`
}

// HookResult bundles the full option set with the optional selection.
type HookResult struct {
	Options  Response        `json:"leadtimeOptions"`
	Selected *SelectedOption `json:"selectedOption,omitempty"`
	LineItem *LineItem       `json:"lineItem,omitempty"`
}

// Hook adapts the engine for the pricing orchestrator.
type Hook struct {
	Engine *Engine
	Logger *slog.Logger
}

func (h *Hook) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Execute computes options and resolves the caller's desired class, if any.
func (h *Hook) Execute(ctx context.Context, input PricingInput) HookResult {
	if err := input.Validate(); err != nil {
		h.logger().Error("lead-time hook rejected input", slog.String("error", err.Error()))
		return HookResult{Options: Response{
			Options:   []Option{},
			BasePrice: input.BasePrice,
			Currency:  h.Engine.cfg.currency(),
		}}
	}

	resp := h.Engine.ComputeOptions(ctx, input)
	result := HookResult{Options: resp}

	if input.DesiredClass == "" {
		return result
	}

	var option *Option
	for i := range resp.Options {
		if resp.Options[i].Class == input.DesiredClass {
			option = &resp.Options[i]
			break
		}
	}
	if option == nil {
		h.logger().Warn("desired lead-time class not available",
			slog.String("class", string(input.DesiredClass)),
			slog.String("org_id", input.OrgID))
		return result
	}

	result.Selected = &SelectedOption{
		Class:             option.Class,
		PriceDelta:        option.PriceDelta,
		PromisedShipDate:  option.ShipDate,
		SurgeApplied:      option.SurgeApplied,
		UtilizationWindow: option.UtilizationWindow,
	}

	if !option.PriceDelta.IsZero() {
		result.LineItem = &LineItem{
			Type:        LineItemTypeLeadtime,
			Description: lineItemDescription(option),
			Amount:      option.PriceDelta,
			Metadata: map[string]any{
				"leadClass":         option.Class,
				"days":              option.Days,
				"shipDate":          option.ShipDate,
				"surgeApplied":      option.SurgeApplied,
				"utilizationWindow": option.UtilizationWindow,
			},
		}
	}

	h.logger().Debug("lead-time class selected",
		slog.String("class", string(option.Class)),
		slog.Int("days", option.Days),
		slog.String("price_delta", option.PriceDelta.String()),
		slog.Bool("surge", option.SurgeApplied))

	return result
}

func lineItemDescription(option *Option) string {
	name := option.Class.DisplayName()

	if option.SurgeApplied {
		return fmt.Sprintf("%s Lead Time (%d days) - Surge Pricing", name, option.Days)
	}
	if option.Class == ClassEcon {
		return fmt.Sprintf("%s Lead Time (%d days) - Economy Discount", name, option.Days)
	}
	return fmt.Sprintf("%s Lead Time (%d days)", name, option.Days)
}
