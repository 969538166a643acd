// Package operating derives the annual operating statement (EGI, expenses,
// NOI) from rent and expense assumptions, and the standard underwriting
// ratios (cap rate, DSCR, cash-on-cash, debt yield) from it.
package operating

// ExpenseLine is a named annual operating expense (taxes, insurance, ...).
type ExpenseLine struct {
	Name   string  `json:"name" yaml:"name"`
	Amount float64 `json:"amount" yaml:"amount"`
}

// Assumptions drive a single year's operating statement.
type Assumptions struct {
	GrossPotentialRent float64       `json:"gross_potential_rent" yaml:"gross_potential_rent"`
	OtherIncome        float64       `json:"other_income" yaml:"other_income"`
	VacancyRate        float64       `json:"vacancy_rate" yaml:"vacancy_rate"`         // of GPR
	CreditLossRate     float64       `json:"credit_loss_rate" yaml:"credit_loss_rate"` // of GPR
	Expenses           []ExpenseLine `json:"expenses,omitempty" yaml:"expenses"`
	ExpenseRatio       float64       `json:"expense_ratio,omitempty" yaml:"expense_ratio"` // of EGI, used when Expenses is empty
	ManagementFeeRate  float64       `json:"management_fee_rate" yaml:"management_fee_rate"` // of EGI
	ReservesPerUnit    float64       `json:"reserves_per_unit" yaml:"reserves_per_unit"`
	Units              int           `json:"units" yaml:"units"`
}

// Statement is the derived annual operating statement.
type Statement struct {
	GrossPotentialRent   float64 `json:"gross_potential_rent"`
	VacancyLoss          float64 `json:"vacancy_loss"`
	CreditLoss           float64 `json:"credit_loss"`
	OtherIncome          float64 `json:"other_income"`
	EffectiveGrossIncome float64 `json:"effective_gross_income"`
	OperatingExpenses    float64 `json:"operating_expenses"`
	ManagementFee        float64 `json:"management_fee"`
	Reserves             float64 `json:"reserves"`
	TotalExpenses        float64 `json:"total_expenses"`
	NOI                  float64 `json:"noi"`
	ExpenseRatio         float64 `json:"expense_ratio"` // total expenses / EGI
}

// Derive builds the operating statement.
//
//	EGI = GPR - vacancy - credit loss + other income
//	NOI = EGI - (operating expenses + management fee + reserves)
//
// Debt service is not an operating expense.
func Derive(a Assumptions) Statement {
	s := Statement{
		GrossPotentialRent: a.GrossPotentialRent,
		VacancyLoss:        a.GrossPotentialRent * a.VacancyRate,
		CreditLoss:         a.GrossPotentialRent * a.CreditLossRate,
		OtherIncome:        a.OtherIncome,
	}
	s.EffectiveGrossIncome = s.GrossPotentialRent - s.VacancyLoss - s.CreditLoss + s.OtherIncome

	if len(a.Expenses) > 0 {
		s.OperatingExpenses = a.TotalFixedExpenses()
	} else {
		s.OperatingExpenses = a.ExpenseRatio * s.EffectiveGrossIncome
	}
	s.ManagementFee = a.ManagementFeeRate * s.EffectiveGrossIncome
	s.Reserves = a.ReservesPerUnit * float64(a.Units)

	s.TotalExpenses = s.OperatingExpenses + s.ManagementFee + s.Reserves
	s.NOI = s.EffectiveGrossIncome - s.TotalExpenses
	if s.EffectiveGrossIncome != 0 {
		s.ExpenseRatio = s.TotalExpenses / s.EffectiveGrossIncome
	}
	return s
}

// TotalFixedExpenses sums the expense lines.
func (a Assumptions) TotalFixedExpenses() float64 {
	var total float64
	for _, e := range a.Expenses {
		total += e.Amount
	}
	return total
}
