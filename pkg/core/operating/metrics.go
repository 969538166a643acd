package operating

import "dealdesk/pkg/core/calc"

// Financials carries the capital-side inputs for the ratios.
type Financials struct {
	PurchasePrice     float64 `json:"purchase_price"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	LoanAmount        float64 `json:"loan_amount"`
	Equity            float64 `json:"equity"`
	Units             int     `json:"units"`
	SquareFeet        float64 `json:"square_feet"`
}

// Metrics are the standard underwriting ratios. A ratio whose denominator is
// zero is reported as 0.
type Metrics struct {
	NOI                 float64 `json:"noi"`
	CapRate             float64 `json:"cap_rate"`
	DSCR                float64 `json:"dscr"`
	HasDebt             bool    `json:"has_debt"`
	CashFlowBeforeTax   float64 `json:"cash_flow_before_tax"`
	CashOnCash          float64 `json:"cash_on_cash"`
	DebtYield           float64 `json:"debt_yield"`
	LTV                 float64 `json:"ltv"`
	BreakEvenOccupancy  float64 `json:"break_even_occupancy"`
	GrossRentMultiplier float64 `json:"gross_rent_multiplier"`
	PricePerUnit        float64 `json:"price_per_unit"`
	PricePerSquareFoot  float64 `json:"price_per_square_foot"`
}

// Compute derives the ratios.
//
//	Cap Rate = NOI / Price
//	DSCR     = NOI / Annual Debt Service
//	CFBT     = NOI - Annual Debt Service
//	CoC      = CFBT / Equity
//	Debt Yield = NOI / Loan
//	Break-even occupancy = (Expenses + Debt Service) / (GPR + Other Income)
func Compute(s Statement, f Financials) Metrics {
	m := Metrics{
		NOI:                 s.NOI,
		CapRate:             calc.SafeDiv(s.NOI, f.PurchasePrice),
		DSCR:                calc.SafeDiv(s.NOI, f.AnnualDebtService),
		HasDebt:             f.AnnualDebtService > 0,
		CashFlowBeforeTax:   s.NOI - f.AnnualDebtService,
		DebtYield:           calc.SafeDiv(s.NOI, f.LoanAmount),
		LTV:                 calc.SafeDiv(f.LoanAmount, f.PurchasePrice),
		BreakEvenOccupancy:  calc.SafeDiv(s.TotalExpenses+f.AnnualDebtService, s.GrossPotentialRent+s.OtherIncome),
		GrossRentMultiplier: calc.SafeDiv(f.PurchasePrice, s.GrossPotentialRent),
		PricePerSquareFoot:  calc.SafeDiv(f.PurchasePrice, f.SquareFeet),
	}
	m.CashOnCash = calc.SafeDiv(m.CashFlowBeforeTax, f.Equity)
	if f.Units > 0 {
		m.PricePerUnit = f.PurchasePrice / float64(f.Units)
	}
	return m
}

// ImpliedValue is the direct-capitalization value NOI / cap rate.
func ImpliedValue(noi, capRate float64) float64 {
	return calc.SafeDiv(noi, capRate)
}
