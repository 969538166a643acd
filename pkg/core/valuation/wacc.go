package valuation

// BandInput parameters for the band-of-investment cap rate.
type BandInput struct {
	LoanToValue      float64 `json:"loan_to_value"`
	MortgageConstant float64 `json:"mortgage_constant"` // annual debt service / loan
	EquityDividend   float64 `json:"equity_dividend"`   // required cash-on-cash
}

// BandResult holds the weighted capitalization rate.
type BandResult struct {
	DebtWeight   float64 `json:"debt_weight"`
	EquityWeight float64 `json:"equity_weight"`
	CapRate      float64 `json:"cap_rate"`
}

// BandOfInvestment computes the overall cap rate as the weighted cost of
// debt and equity capital.
//
//	R = M × Rm + (1 - M) × Re
func BandOfInvestment(input BandInput) BandResult {
	wd := input.LoanToValue
	we := 1 - wd
	return BandResult{
		DebtWeight:   wd,
		EquityWeight: we,
		CapRate:      wd*input.MortgageConstant + we*input.EquityDividend,
	}
}
