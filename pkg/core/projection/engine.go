// Package projection builds the multi-year pro forma: grown operating
// statements, debt service from the amortization schedule, the exit
// reversion, and levered / unlevered returns.
package projection

import (
	"fmt"

	"dealdesk/pkg/core/calc"
	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/operating"
)

// Validate checks the projection invariants.
func (in Input) Validate() error {
	switch {
	case in.HoldYears < 1:
		return fmt.Errorf("%w: hold must be at least 1 year", ErrInvalidInput)
	case in.PurchasePrice <= 0:
		return fmt.Errorf("%w: purchase price must be positive", ErrInvalidInput)
	case in.ExitCapRate <= 0:
		return fmt.Errorf("%w: exit cap rate must be positive", ErrInvalidInput)
	case in.SellingCostRate < 0 || in.SellingCostRate >= 1:
		return fmt.Errorf("%w: selling cost rate outside [0, 1)", ErrInvalidInput)
	}
	if in.Loan != nil {
		if in.Loan.TermYears < in.HoldYears {
			return fmt.Errorf("%w: loan matures in year %d before the %d-year hold ends", ErrInvalidInput, in.Loan.TermYears, in.HoldYears)
		}
		if in.Loan.Principal >= in.PurchasePrice+in.ClosingCosts {
			return fmt.Errorf("%w: loan covers the entire cost, equity must be positive", ErrInvalidInput)
		}
	}
	return nil
}

// AssumptionsForYear grows the base assumptions to hold year `year` (1-based).
// Year 1 is the base itself.
func (in Input) AssumptionsForYear(year int) operating.Assumptions {
	n := year - 1
	a := in.Base
	a.GrossPotentialRent = calc.Grow(in.Base.GrossPotentialRent, in.RentGrowth, n)
	a.OtherIncome = calc.Grow(in.Base.OtherIncome, in.OtherIncomeGrowth, n)
	a.ReservesPerUnit = calc.Grow(in.Base.ReservesPerUnit, in.ExpenseGrowth, n)

	if len(in.Base.Expenses) > 0 {
		a.Expenses = make([]operating.ExpenseLine, len(in.Base.Expenses))
		for i, e := range in.Base.Expenses {
			a.Expenses[i] = operating.ExpenseLine{Name: e.Name, Amount: calc.Grow(e.Amount, in.ExpenseGrowth, n)}
		}
	}
	return a
}

func (in Input) capexForYear(year int) float64 {
	if year-1 < len(in.CapitalExpenditures) {
		return in.CapitalExpenditures[year-1]
	}
	return 0
}

// Project runs the pro forma.
func Project(in Input) (*Projection, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	p := &Projection{Years: make([]Year, 0, in.HoldYears)}

	var loanPrincipal float64
	if in.Loan != nil {
		sched, err := debt.Amortize(*in.Loan)
		if err != nil {
			return nil, fmt.Errorf("amortize loan: %w", err)
		}
		p.Schedule = &sched
		loanPrincipal = in.Loan.Principal
	}

	totalCost := in.PurchasePrice + in.ClosingCosts
	equity := totalCost - loanPrincipal

	p.UnleveredCashFlows = append(p.UnleveredCashFlows, -totalCost)
	p.LeveredCashFlows = append(p.LeveredCashFlows, -equity)

	var cocSum float64
	for t := 1; t <= in.HoldYears; t++ {
		y := Year{Year: t, Statement: operating.Derive(in.AssumptionsForYear(t))}
		if p.Schedule != nil {
			y.DebtService = p.Schedule.AnnualDebtService(t)
			y.Interest = p.Schedule.AnnualInterest(t)
			y.Principal = p.Schedule.AnnualPrincipal(t)
			y.LoanBalance = p.Schedule.BalanceAtYearEnd(t)
		}
		y.CashFlowBeforeTax = y.Statement.NOI - y.DebtService
		y.CapitalExpenditure = in.capexForYear(t)
		y.CashFlowAfterCapEx = y.CashFlowBeforeTax - y.CapitalExpenditure
		y.DSCR = calc.SafeDiv(y.Statement.NOI, y.DebtService)
		y.CashOnCash = calc.SafeDiv(y.CashFlowAfterCapEx, equity)
		cocSum += y.CashOnCash

		p.Years = append(p.Years, y)
		p.UnleveredCashFlows = append(p.UnleveredCashFlows, y.Statement.NOI-y.CapitalExpenditure)
		p.LeveredCashFlows = append(p.LeveredCashFlows, y.CashFlowAfterCapEx)
	}

	// Reversion on forward (year N+1) NOI
	fwd := operating.Derive(in.AssumptionsForYear(in.HoldYears + 1))
	p.Exit.ForwardNOI = fwd.NOI
	p.Exit.SalePrice = fwd.NOI / in.ExitCapRate
	p.Exit.SellingCosts = p.Exit.SalePrice * in.SellingCostRate
	if p.Schedule != nil {
		p.Exit.LoanPayoff = p.Schedule.BalanceAtYearEnd(in.HoldYears)
	}
	p.Exit.NetSaleProceeds = p.Exit.SalePrice - p.Exit.SellingCosts - p.Exit.LoanPayoff

	last := len(p.LeveredCashFlows) - 1
	p.UnleveredCashFlows[last] += p.Exit.SalePrice - p.Exit.SellingCosts
	p.LeveredCashFlows[last] += p.Exit.NetSaleProceeds

	p.Returns = Returns{
		TotalCost:         totalCost,
		Equity:            equity,
		UnleveredIRR:      irrOrZero(p.UnleveredCashFlows),
		LeveredIRR:        irrOrZero(p.LeveredCashFlows),
		UnleveredMultiple: calc.EquityMultiple(p.UnleveredCashFlows),
		EquityMultiple:    calc.EquityMultiple(p.LeveredCashFlows),
		AverageCashOnCash: cocSum / float64(in.HoldYears),
	}
	for _, cf := range p.LeveredCashFlows {
		p.Returns.TotalProfit += cf
	}

	return p, nil
}

// irrOrZero reports 0 for flows without a defined IRR (e.g. a total loss).
func irrOrZero(flows []float64) float64 {
	r, err := calc.IRR(flows)
	if err != nil {
		return 0
	}
	return r
}
