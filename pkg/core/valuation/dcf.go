// Package valuation values income property three ways: direct
// capitalization, discounted cash flow with a reversion, and sales
// comparables. It also back-solves the maximum price for a target return.
package valuation

import (
	"dealdesk/pkg/core/calc"
	"dealdesk/pkg/core/operating"
)

// DCFInput encapsulates inputs for a property DCF.
type DCFInput struct {
	CashFlows    []float64 `json:"cash_flows"`    // annual unlevered cash flows, years 1..N
	Reversion    float64   `json:"reversion"`     // net sale proceeds at end of year N
	DiscountRate float64   `json:"discount_rate"` // e.g. 0.08
}

// DCFResult holds the valuation outputs.
type DCFResult struct {
	PVCashFlows    float64 `json:"pv_cash_flows"`
	PVReversion    float64 `json:"pv_reversion"`
	Value          float64 `json:"value"`
	ReversionShare float64 `json:"reversion_share"` // PV reversion / value
}

// DirectCap values the property as NOI / cap rate.
func DirectCap(noi, capRate float64) float64 {
	return operating.ImpliedValue(noi, capRate)
}

// DiscountedCashFlow discounts the hold-period cash flows and the reversion.
func DiscountedCashFlow(input DCFInput) DCFResult {
	pvCF := calc.PresentValueOfCashFlows(input.CashFlows, input.DiscountRate)
	pvRev := calc.PresentValue(input.Reversion, input.DiscountRate, len(input.CashFlows))
	value := pvCF + pvRev

	return DCFResult{
		PVCashFlows:    pvCF,
		PVReversion:    pvRev,
		Value:          value,
		ReversionShare: calc.SafeDiv(pvRev, value),
	}
}
