package deal

import (
	"fmt"

	"dealdesk/pkg/core/operating"
)

// Draft is a deal as extracted from an offering memorandum. Nil means the
// document did not state the value.
type Draft struct {
	Name               *string  `json:"name"`
	PropertyType       *string  `json:"property_type"`
	Address            *string  `json:"address"`
	Market             *string  `json:"market"`
	Units              *int     `json:"units"`
	SquareFeet         *float64 `json:"square_feet"`
	YearBuilt          *int     `json:"year_built"`
	PurchasePrice      *float64 `json:"purchase_price"`
	GrossPotentialRent *float64 `json:"gross_potential_rent"`
	OtherIncome        *float64 `json:"other_income"`
	VacancyRate        *float64 `json:"vacancy_rate"`
	OperatingExpenses  *float64 `json:"operating_expenses"`
	NOI                *float64 `json:"noi"`
	CapRate            *float64 `json:"cap_rate"`
	LoanAmount         *float64 `json:"loan_amount"`
	InterestRate       *float64 `json:"interest_rate"`
	AmortizationYears  *int     `json:"amortization_years"`
	TermYears          *int     `json:"term_years"`
}

// Missing lists the facts a Deal cannot be built without.
func (d Draft) Missing() []string {
	var out []string
	if d.Name == nil || *d.Name == "" {
		out = append(out, "name")
	}
	if d.PurchasePrice == nil || *d.PurchasePrice <= 0 {
		out = append(out, "purchase_price")
	}
	if d.GrossPotentialRent == nil || *d.GrossPotentialRent <= 0 {
		out = append(out, "gross_potential_rent")
	}
	if d.OperatingExpenses == nil && d.NOI == nil {
		out = append(out, "operating_expenses")
	}
	return out
}

// Merge returns a copy of d with every non-nil field of edits applied.
func (d Draft) Merge(edits Draft) Draft {
	out := d
	setS := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	setF := func(dst **float64, src *float64) {
		if src != nil {
			*dst = src
		}
	}
	setI := func(dst **int, src *int) {
		if src != nil {
			*dst = src
		}
	}
	setS(&out.Name, edits.Name)
	setS(&out.PropertyType, edits.PropertyType)
	setS(&out.Address, edits.Address)
	setS(&out.Market, edits.Market)
	setI(&out.Units, edits.Units)
	setF(&out.SquareFeet, edits.SquareFeet)
	setI(&out.YearBuilt, edits.YearBuilt)
	setF(&out.PurchasePrice, edits.PurchasePrice)
	setF(&out.GrossPotentialRent, edits.GrossPotentialRent)
	setF(&out.OtherIncome, edits.OtherIncome)
	setF(&out.VacancyRate, edits.VacancyRate)
	setF(&out.OperatingExpenses, edits.OperatingExpenses)
	setF(&out.NOI, edits.NOI)
	setF(&out.CapRate, edits.CapRate)
	setF(&out.LoanAmount, edits.LoanAmount)
	setF(&out.InterestRate, edits.InterestRate)
	setI(&out.AmortizationYears, edits.AmortizationYears)
	setI(&out.TermYears, edits.TermYears)
	return out
}

// Assumptions are the underwriting inputs an offering memorandum does not
// supply. Zero values take the defaults from DefaultAssumptions.
type Assumptions struct {
	HoldYears         int          `json:"hold_years,omitempty" yaml:"hold_years"`
	ExitCapSpread     float64      `json:"exit_cap_spread,omitempty" yaml:"exit_cap_spread"` // added to the going-in cap
	ExitCapRate       float64      `json:"exit_cap_rate,omitempty" yaml:"exit_cap_rate"`     // overrides the spread
	SellingCostRate   float64      `json:"selling_cost_rate,omitempty" yaml:"selling_cost_rate"`
	ClosingCostRate   float64      `json:"closing_cost_rate,omitempty" yaml:"closing_cost_rate"`
	RentGrowth        float64      `json:"rent_growth,omitempty" yaml:"rent_growth"`
	ExpenseGrowth     float64      `json:"expense_growth,omitempty" yaml:"expense_growth"`
	VacancyRate       float64      `json:"vacancy_rate,omitempty" yaml:"vacancy_rate"`
	ManagementFeeRate float64      `json:"management_fee_rate,omitempty" yaml:"management_fee_rate"`
	LTV               float64      `json:"ltv,omitempty" yaml:"ltv"`
	InterestRate      float64      `json:"interest_rate,omitempty" yaml:"interest_rate"`
	AmortizationYears int          `json:"amortization_years,omitempty" yaml:"amortization_years"`
	TermYears         int          `json:"term_years,omitempty" yaml:"term_years"`
	Partnership       *Partnership `json:"partnership,omitempty" yaml:"partnership"`
	Tax               *Tax         `json:"tax,omitempty" yaml:"tax"`
}

// DefaultAssumptions is a conservative stabilized-asset underwriting.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		HoldYears:         5,
		ExitCapSpread:     0.005,
		SellingCostRate:   0.02,
		ClosingCostRate:   0.015,
		RentGrowth:        0.03,
		ExpenseGrowth:     0.03,
		VacancyRate:       0.05,
		LTV:               0.65,
		InterestRate:      0.065,
		AmortizationYears: 30,
		TermYears:         10,
	}
}

func (a Assumptions) withDefaults() Assumptions {
	def := DefaultAssumptions()
	if a.HoldYears == 0 {
		a.HoldYears = def.HoldYears
	}
	if a.ExitCapSpread == 0 {
		a.ExitCapSpread = def.ExitCapSpread
	}
	if a.SellingCostRate == 0 {
		a.SellingCostRate = def.SellingCostRate
	}
	if a.ClosingCostRate == 0 {
		a.ClosingCostRate = def.ClosingCostRate
	}
	if a.RentGrowth == 0 {
		a.RentGrowth = def.RentGrowth
	}
	if a.ExpenseGrowth == 0 {
		a.ExpenseGrowth = def.ExpenseGrowth
	}
	if a.VacancyRate == 0 {
		a.VacancyRate = def.VacancyRate
	}
	if a.LTV == 0 {
		a.LTV = def.LTV
	}
	if a.InterestRate == 0 {
		a.InterestRate = def.InterestRate
	}
	if a.AmortizationYears == 0 {
		a.AmortizationYears = def.AmortizationYears
	}
	if a.TermYears == 0 {
		a.TermYears = def.TermYears
	}
	return a
}

// Verification is the user's verify/edit step: corrections to the
// extracted facts plus the underwriting assumptions.
type Verification struct {
	Edits       Draft       `json:"edits"`
	Assumptions Assumptions `json:"assumptions"`
}

// Apply merges the edits into the draft and builds a validated Deal.
func (d Draft) Apply(v Verification) (Deal, error) {
	m := d.Merge(v.Edits)
	if missing := m.Missing(); len(missing) > 0 {
		verr := &ValidationError{}
		for _, f := range missing {
			verr.add(f, "not found in document; provide it as an edit")
		}
		return Deal{}, verr
	}
	a := v.Assumptions.withDefaults()

	price := *m.PurchasePrice
	out := Deal{
		Name: *m.Name,
		Property: Property{
			Type:       valueOr(m.PropertyType, "multifamily"),
			Address:    valueOr(m.Address, ""),
			Market:     valueOr(m.Market, ""),
			Units:      valueOr(m.Units, 0),
			SquareFeet: valueOr(m.SquareFeet, 0),
			YearBuilt:  valueOr(m.YearBuilt, 0),
		},
		Acquisition: Acquisition{
			PurchasePrice: price,
			ClosingCosts:  price * a.ClosingCostRate,
		},
		Operations: Operations{
			GrossPotentialRent: *m.GrossPotentialRent,
			OtherIncome:        valueOr(m.OtherIncome, 0),
			VacancyRate:        valueOr(m.VacancyRate, a.VacancyRate),
			ManagementFeeRate:  a.ManagementFeeRate,
		},
		Growth: Growth{
			RentGrowth:        a.RentGrowth,
			OtherIncomeGrowth: a.RentGrowth,
			ExpenseGrowth:     a.ExpenseGrowth,
		},
		Exit: Exit{
			HoldYears:       a.HoldYears,
			SellingCostRate: a.SellingCostRate,
		},
		Partnership: a.Partnership,
		Tax:         a.Tax,
	}

	// Expenses: the stated total, else backed out of the stated NOI
	opex := 0.0
	if m.OperatingExpenses != nil {
		opex = *m.OperatingExpenses
	} else {
		egi := out.Operations.GrossPotentialRent*(1-out.Operations.VacancyRate) + out.Operations.OtherIncome
		opex = egi - *m.NOI
	}
	if opex <= 0 {
		return Deal{}, &ValidationError{Fields: []FieldError{{Field: "operating_expenses", Message: fmt.Sprintf("derived expenses %.0f are not positive", opex)}}}
	}
	out.Operations.Expenses = []operating.ExpenseLine{{Name: "Operating expenses", Amount: opex}}

	loan := &Financing{
		LoanAmount:        valueOr(m.LoanAmount, 0),
		LTV:               a.LTV,
		InterestRate:      valueOr(m.InterestRate, a.InterestRate),
		AmortizationYears: valueOr(m.AmortizationYears, a.AmortizationYears),
		TermYears:         valueOr(m.TermYears, a.TermYears),
	}
	out.Financing = loan

	out.Exit.ExitCapRate = a.ExitCapRate
	if out.Exit.ExitCapRate == 0 {
		goingIn := valueOr(m.CapRate, 0)
		if goingIn == 0 {
			goingIn = operating.Derive(out.Assumptions()).NOI / price
		}
		out.Exit.ExitCapRate = goingIn + a.ExitCapSpread
	}

	if err := Validate(out); err != nil {
		return Deal{}, err
	}
	return out, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
