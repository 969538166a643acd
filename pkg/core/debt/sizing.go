package debt

import (
	"fmt"
	"math"

	"dealdesk/pkg/core/calc"
)

// Binding constraint names reported by SizeLoan.
const (
	ConstraintLTV       = "ltv"
	ConstraintDSCR      = "dscr"
	ConstraintDebtYield = "debt_yield"
)

// SizingInput holds lender constraints. A zero constraint is ignored.
type SizingInput struct {
	Value             float64 `json:"value"`
	NOI               float64 `json:"noi"`
	MaxLTV            float64 `json:"max_ltv"`        // 0.75
	MinDSCR           float64 `json:"min_dscr"`       // 1.25
	MinDebtYield      float64 `json:"min_debt_yield"` // 0.08
	AnnualRate        float64 `json:"annual_rate"`
	AmortizationYears int     `json:"amortization_years"`
	TermYears         int     `json:"term_years,omitempty"` // reports the balloon when set
}

// SizingResult reports the loan each constraint allows and the smallest.
type SizingResult struct {
	MaxLoan           float64 `json:"max_loan"`
	Binding           string  `json:"binding"`
	ByLTV             float64 `json:"by_ltv,omitempty"`
	ByDSCR            float64 `json:"by_dscr,omitempty"`
	ByDebtYield       float64 `json:"by_debt_yield,omitempty"`
	AnnualDebtService float64 `json:"annual_debt_service"`
	BalloonBalance    float64 `json:"balloon_balance,omitempty"`
}

// SizeLoan returns the largest loan satisfying every configured constraint.
func SizeLoan(in SizingInput) (SizingResult, error) {
	if in.MaxLTV <= 0 && in.MinDSCR <= 0 && in.MinDebtYield <= 0 {
		return SizingResult{}, fmt.Errorf("%w: no sizing constraint configured", ErrInvalidLoan)
	}
	if in.AmortizationYears > MaxYears || in.TermYears < 0 || in.TermYears > MaxYears {
		return SizingResult{}, fmt.Errorf("%w: amortization and term must be at most %d years", ErrInvalidLoan, MaxYears)
	}

	res := SizingResult{MaxLoan: math.Inf(1)}
	pick := func(amount float64, name string) {
		if amount < res.MaxLoan {
			res.MaxLoan = amount
			res.Binding = name
		}
	}

	if in.MaxLTV > 0 {
		res.ByLTV = in.Value * in.MaxLTV
		pick(res.ByLTV, ConstraintLTV)
	}
	if in.MinDSCR > 0 {
		if in.AmortizationYears < 1 {
			return SizingResult{}, fmt.Errorf("%w: DSCR sizing needs an amortization period", ErrInvalidLoan)
		}
		k := LoanConstant(in.AnnualRate, in.AmortizationYears)
		res.ByDSCR = in.NOI / in.MinDSCR / k
		pick(res.ByDSCR, ConstraintDSCR)
	}
	if in.MinDebtYield > 0 {
		res.ByDebtYield = in.NOI / in.MinDebtYield
		pick(res.ByDebtYield, ConstraintDebtYield)
	}

	if res.MaxLoan < 0 {
		res.MaxLoan = 0
	}
	if in.AmortizationYears >= 1 {
		res.AnnualDebtService = res.MaxLoan * LoanConstant(in.AnnualRate, in.AmortizationYears)
		if in.TermYears > 0 {
			res.BalloonBalance = calc.RemainingBalance(res.MaxLoan, in.AnnualRate/calc.MonthsPerYear,
				in.AmortizationYears*calc.MonthsPerYear, in.TermYears*calc.MonthsPerYear)
		}
	}
	return res, nil
}
