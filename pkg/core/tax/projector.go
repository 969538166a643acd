package tax

import (
	"math"

	"dealdesk/pkg/core/calc"
)

// YearIncome is one hold year's pre-tax results.
type YearIncome struct {
	NOI               float64 `json:"noi"`
	Interest          float64 `json:"interest"`
	CashFlowBeforeTax float64 `json:"cash_flow_before_tax"`
}

// Input drives the tax projection.
type Input struct {
	Years        []YearIncome `json:"years"`
	Depreciation []float64    `json:"depreciation"`

	OrdinaryRate     float64 `json:"ordinary_rate"`
	CapitalGainsRate float64 `json:"capital_gains_rate"`
	RecaptureRate    float64 `json:"recapture_rate"`

	SalePrice           float64 `json:"sale_price"`
	SellingCosts        float64 `json:"selling_costs"`
	CostBasis           float64 `json:"cost_basis"` // purchase price plus capitalized closing costs
	CapitalImprovements float64 `json:"capital_improvements"`
	LoanPayoff          float64 `json:"loan_payoff"`

	// Equity enables the after-tax IRR when positive.
	Equity float64 `json:"equity,omitempty"`
}

// YearTax is the tax line for one year.
type YearTax struct {
	Year             int     `json:"year"`
	NOI              float64 `json:"noi"`
	Interest         float64 `json:"interest"`
	Depreciation     float64 `json:"depreciation"`
	TaxableIncome    float64 `json:"taxable_income"` // before loss carryforward
	LossUsed         float64 `json:"loss_used"`
	SuspendedLoss    float64 `json:"suspended_loss"` // end-of-year balance
	Tax              float64 `json:"tax"`
	AfterTaxCashFlow float64 `json:"after_tax_cash_flow"`
}

// Sale is the exit-year tax computation.
type Sale struct {
	SalePrice               float64 `json:"sale_price"`
	SellingCosts            float64 `json:"selling_costs"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation"`
	AdjustedBasis           float64 `json:"adjusted_basis"`
	Gain                    float64 `json:"gain"`
	RecaptureGain           float64 `json:"recapture_gain"`
	CapitalGain             float64 `json:"capital_gain"`
	RecaptureTax            float64 `json:"recapture_tax"`
	CapitalGainsTax         float64 `json:"capital_gains_tax"`
	SuspendedLossBenefit    float64 `json:"suspended_loss_benefit"`
	TotalTax                float64 `json:"total_tax"`
	AfterTaxProceeds        float64 `json:"after_tax_proceeds"`
}

// Result is the full tax projection.
type Result struct {
	Years             []YearTax `json:"years"`
	Sale              Sale      `json:"sale"`
	TotalTaxes        float64   `json:"total_taxes"`
	AfterTaxCashFlows []float64 `json:"after_tax_cash_flows"`
	AfterTaxIRR       float64   `json:"after_tax_irr"`
}

// Project computes annual taxes and the tax on sale.
//
// Passive losses are suspended and carried forward against later taxable
// income; whatever is still suspended at sale is released at the ordinary
// rate. A loss on sale yields a negative tax at the ordinary rate.
func Project(in Input) Result {
	res := Result{Years: make([]YearTax, 0, len(in.Years))}

	var suspended, accumDep float64
	for i, y := range in.Years {
		dep := 0.0
		if i < len(in.Depreciation) {
			dep = in.Depreciation[i]
		}
		accumDep += dep

		yt := YearTax{
			Year:          i + 1,
			NOI:           y.NOI,
			Interest:      y.Interest,
			Depreciation:  dep,
			TaxableIncome: y.NOI - y.Interest - dep,
		}
		if yt.TaxableIncome < 0 {
			suspended -= yt.TaxableIncome
		} else {
			yt.LossUsed = math.Min(suspended, yt.TaxableIncome)
			suspended -= yt.LossUsed
			yt.Tax = (yt.TaxableIncome - yt.LossUsed) * in.OrdinaryRate
		}
		yt.SuspendedLoss = suspended
		yt.AfterTaxCashFlow = y.CashFlowBeforeTax - yt.Tax

		res.Years = append(res.Years, yt)
		res.AfterTaxCashFlows = append(res.AfterTaxCashFlows, yt.AfterTaxCashFlow)
		res.TotalTaxes += yt.Tax
	}

	s := Sale{
		SalePrice:               in.SalePrice,
		SellingCosts:            in.SellingCosts,
		AccumulatedDepreciation: accumDep,
		AdjustedBasis:           in.CostBasis + in.CapitalImprovements - accumDep,
	}
	s.Gain = s.SalePrice - s.SellingCosts - s.AdjustedBasis
	if s.Gain > 0 {
		s.RecaptureGain = math.Min(s.Gain, accumDep)
		s.CapitalGain = s.Gain - s.RecaptureGain
		s.RecaptureTax = s.RecaptureGain * in.RecaptureRate
		s.CapitalGainsTax = s.CapitalGain * in.CapitalGainsRate
	} else {
		s.CapitalGain = s.Gain
		s.CapitalGainsTax = s.Gain * in.OrdinaryRate
	}
	s.SuspendedLossBenefit = suspended * in.OrdinaryRate
	s.TotalTax = s.RecaptureTax + s.CapitalGainsTax - s.SuspendedLossBenefit
	s.AfterTaxProceeds = s.SalePrice - s.SellingCosts - in.LoanPayoff - s.TotalTax

	res.Sale = s
	res.TotalTaxes += s.TotalTax

	if in.Equity > 0 && len(res.AfterTaxCashFlows) > 0 {
		flows := append([]float64{-in.Equity}, res.AfterTaxCashFlows...)
		flows[len(flows)-1] += s.AfterTaxProceeds
		if r, err := calc.IRR(flows); err == nil {
			res.AfterTaxIRR = r
		}
	}
	return res
}
