package valuation

import (
	"dealdesk/pkg/core/calc"
	"dealdesk/pkg/core/projection"
)

// ReconcileInput aggregates the inputs for every valuation approach.
type ReconcileInput struct {
	Projection   *projection.Projection
	MarketCap    float64 // going-in cap rate applied to year-1 NOI
	DiscountRate float64
	Subject      Subject
	Comps        []SaleComparable
	Band         *BandInput // nil skips band of investment
	AskingPrice  float64
}

// ValuationLineItem is one row of the reconciliation table.
type ValuationLineItem struct {
	Approach string  `json:"approach"`
	Value    float64 `json:"value"`
	VsAsking float64 `json:"vs_asking"` // value / asking - 1
}

// Reconcile runs direct cap, DCF and sales comps and lists the indicated
// values. Approaches without inputs are skipped.
func Reconcile(input ReconcileInput) []ValuationLineItem {
	var results []ValuationLineItem
	add := func(name string, v float64) {
		if v <= 0 {
			return
		}
		item := ValuationLineItem{Approach: name, Value: v}
		if input.AskingPrice > 0 {
			item.VsAsking = v/input.AskingPrice - 1
		}
		results = append(results, item)
	}

	p := input.Projection
	if p != nil && len(p.Years) > 0 && input.MarketCap > 0 {
		add("Direct Capitalization", DirectCap(p.Years[0].Statement.NOI, input.MarketCap))
	}

	if p != nil && len(p.Years) > 0 && input.Band != nil {
		add("Band of Investment", DirectCap(p.Years[0].Statement.NOI, BandOfInvestment(*input.Band).CapRate))
	}

	if p != nil && len(p.UnleveredCashFlows) > 1 && input.DiscountRate > 0 {
		flows := append([]float64(nil), p.UnleveredCashFlows[1:]...)
		reversion := p.Exit.SalePrice - p.Exit.SellingCosts
		flows[len(flows)-1] -= reversion
		dcf := DiscountedCashFlow(DCFInput{CashFlows: flows, Reversion: reversion, DiscountRate: input.DiscountRate})
		add("Discounted Cash Flow", dcf.Value)
	}

	if len(input.Comps) > 0 {
		c := CalculateComps(input.Subject, input.Comps)
		add("Sales Comparison (cap rate)", midpoint(c.ByCapRate))
		add("Sales Comparison (per unit)", midpoint(c.ByPricePerUnit))
		add("Sales Comparison (per SF)", midpoint(c.ByPricePerSF))
	}

	return results
}

// ReconciledValue is the simple average of the indicated values.
func ReconciledValue(items []ValuationLineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Value
	}
	return calc.SafeDiv(sum, float64(len(items)))
}

func midpoint(r [2]float64) float64 {
	return (r[0] + r[1]) / 2
}
