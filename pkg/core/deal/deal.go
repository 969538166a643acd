// Package deal is the underwriting input model: the property, its purchase,
// financing, operations, growth and exit assumptions, and the optional
// partnership, tax and market sections.
package deal

import (
	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/market"
	"dealdesk/pkg/core/operating"
	"dealdesk/pkg/core/projection"
	"dealdesk/pkg/core/tax"
	"dealdesk/pkg/core/valuation"
	"dealdesk/pkg/core/waterfall"
)

type Deal struct {
	Name        string       `json:"name" yaml:"name" validate:"required"`
	Property    Property     `json:"property" yaml:"property"`
	Acquisition Acquisition  `json:"acquisition" yaml:"acquisition"`
	Financing   *Financing   `json:"financing,omitempty" yaml:"financing,omitempty" validate:"omitempty"`
	Operations  Operations   `json:"operations" yaml:"operations"`
	Growth      Growth       `json:"growth" yaml:"growth"`
	Exit        Exit         `json:"exit" yaml:"exit"`
	Partnership *Partnership `json:"partnership,omitempty" yaml:"partnership,omitempty" validate:"omitempty"`
	Tax         *Tax         `json:"tax,omitempty" yaml:"tax,omitempty" validate:"omitempty"`
	Valuation   *Valuation   `json:"valuation,omitempty" yaml:"valuation,omitempty" validate:"omitempty"`
	Market      *market.Data `json:"market,omitempty" yaml:"market,omitempty"`
}

type Property struct {
	Type       string  `json:"type" yaml:"type" validate:"required,oneof=multifamily office retail industrial mixed_use single_family self_storage hospitality"`
	Address    string  `json:"address,omitempty" yaml:"address"`
	Market     string  `json:"market,omitempty" yaml:"market"`
	Units      int     `json:"units" yaml:"units" validate:"gte=0"`
	SquareFeet float64 `json:"square_feet,omitempty" yaml:"square_feet" validate:"gte=0"`
	YearBuilt  int     `json:"year_built,omitempty" yaml:"year_built"`
}

type Acquisition struct {
	PurchasePrice float64 `json:"purchase_price" yaml:"purchase_price" validate:"gt=0"`
	ClosingCosts  float64 `json:"closing_costs" yaml:"closing_costs" validate:"gte=0"`
	// Per-year capital expenditures during the hold.
	CapitalExpenditures []float64 `json:"capital_expenditures,omitempty" yaml:"capital_expenditures" validate:"dive,gte=0"`
}

// Financing describes the acquisition loan. LoanAmount wins over LTV.
type Financing struct {
	LoanAmount         float64 `json:"loan_amount,omitempty" yaml:"loan_amount" validate:"gte=0"`
	LTV                float64 `json:"ltv,omitempty" yaml:"ltv" validate:"gte=0,lt=1"`
	InterestRate       float64 `json:"interest_rate" yaml:"interest_rate" validate:"gte=0,lt=1"`
	AmortizationYears  int     `json:"amortization_years" yaml:"amortization_years" validate:"gt=0,lte=50"`
	TermYears          int     `json:"term_years" yaml:"term_years" validate:"gt=0,lte=50"`
	InterestOnlyMonths int     `json:"interest_only_months,omitempty" yaml:"interest_only_months" validate:"gte=0"`
}

type Operations struct {
	GrossPotentialRent float64                 `json:"gross_potential_rent" yaml:"gross_potential_rent" validate:"gt=0"`
	OtherIncome        float64                 `json:"other_income,omitempty" yaml:"other_income" validate:"gte=0"`
	VacancyRate        float64                 `json:"vacancy_rate" yaml:"vacancy_rate" validate:"gte=0,lt=1"`
	CreditLossRate     float64                 `json:"credit_loss_rate,omitempty" yaml:"credit_loss_rate" validate:"gte=0,lt=1"`
	Expenses           []operating.ExpenseLine `json:"expenses,omitempty" yaml:"expenses"`
	ExpenseRatio       float64                 `json:"expense_ratio,omitempty" yaml:"expense_ratio" validate:"gte=0,lt=1"`
	ManagementFeeRate  float64                 `json:"management_fee_rate,omitempty" yaml:"management_fee_rate" validate:"gte=0,lt=1"`
	ReservesPerUnit    float64                 `json:"reserves_per_unit,omitempty" yaml:"reserves_per_unit" validate:"gte=0"`
}

type Growth struct {
	RentGrowth        float64 `json:"rent_growth" yaml:"rent_growth" validate:"gt=-1"`
	OtherIncomeGrowth float64 `json:"other_income_growth,omitempty" yaml:"other_income_growth" validate:"gt=-1"`
	ExpenseGrowth     float64 `json:"expense_growth" yaml:"expense_growth" validate:"gt=-1"`
}

type Exit struct {
	HoldYears       int     `json:"hold_years" yaml:"hold_years" validate:"gte=1,lte=30"`
	ExitCapRate     float64 `json:"exit_cap_rate" yaml:"exit_cap_rate" validate:"gt=0,lt=1"`
	SellingCostRate float64 `json:"selling_cost_rate" yaml:"selling_cost_rate" validate:"gte=0,lt=1"`
}

// Partnership splits equity between LP and GP. Equity amounts come from
// the projection.
type Partnership struct {
	LPShare         float64          `json:"lp_share" yaml:"lp_share" validate:"gt=0,lte=1"`
	PreferredReturn float64          `json:"preferred_return" yaml:"preferred_return" validate:"gte=0"`
	CompoundPref    bool             `json:"compound_pref" yaml:"compound_pref"`
	Tiers           []waterfall.Tier `json:"tiers" yaml:"tiers"`
}

type Tax struct {
	LandPercent          float64 `json:"land_percent" yaml:"land_percent" validate:"gte=0,lt=1"`
	RecoveryYears        float64 `json:"recovery_years,omitempty" yaml:"recovery_years" validate:"gte=0"` // 0: from property type
	PlacedInServiceMonth int     `json:"placed_in_service_month,omitempty" yaml:"placed_in_service_month" validate:"gte=0,lte=12"`
	OrdinaryRate         float64 `json:"ordinary_rate" yaml:"ordinary_rate" validate:"gte=0,lt=1"`
	CapitalGainsRate     float64 `json:"capital_gains_rate" yaml:"capital_gains_rate" validate:"gte=0,lt=1"`
	RecaptureRate        float64 `json:"recapture_rate,omitempty" yaml:"recapture_rate" validate:"gte=0,lt=1"` // 0: 25%
}

// Valuation holds the inputs of the value reconciliation.
type Valuation struct {
	MarketCapRate  float64                    `json:"market_cap_rate,omitempty" yaml:"market_cap_rate" validate:"gte=0,lt=1"`
	DiscountRate   float64                    `json:"discount_rate,omitempty" yaml:"discount_rate" validate:"gte=0,lt=1"`
	TargetIRR      float64                    `json:"target_irr,omitempty" yaml:"target_irr" validate:"gte=0"`
	EquityDividend float64                    `json:"equity_dividend,omitempty" yaml:"equity_dividend" validate:"gte=0,lt=1"` // band of investment
	Comps          []valuation.SaleComparable `json:"comps,omitempty" yaml:"comps"`
}

// DefaultRecaptureRate is the unrecaptured section 1250 gain rate.
const DefaultRecaptureRate = 0.25

// Assumptions converts the operations section for the operating statement.
func (d Deal) Assumptions() operating.Assumptions {
	return operating.Assumptions{
		GrossPotentialRent: d.Operations.GrossPotentialRent,
		OtherIncome:        d.Operations.OtherIncome,
		VacancyRate:        d.Operations.VacancyRate,
		CreditLossRate:     d.Operations.CreditLossRate,
		Expenses:           d.Operations.Expenses,
		ExpenseRatio:       d.Operations.ExpenseRatio,
		ManagementFeeRate:  d.Operations.ManagementFeeRate,
		ReservesPerUnit:    d.Operations.ReservesPerUnit,
		Units:              d.Property.Units,
	}
}

// Loan returns the acquisition loan, or nil for an all-cash deal.
func (d Deal) Loan() *debt.Loan {
	f := d.Financing
	if f == nil {
		return nil
	}
	principal := f.LoanAmount
	if principal == 0 {
		principal = f.LTV * d.Acquisition.PurchasePrice
	}
	if principal == 0 {
		return nil
	}
	return &debt.Loan{
		Principal:          principal,
		AnnualRate:         f.InterestRate,
		AmortizationYears:  f.AmortizationYears,
		TermYears:          f.TermYears,
		InterestOnlyMonths: f.InterestOnlyMonths,
	}
}

// ProjectionInput maps the deal onto the pro forma drivers.
func (d Deal) ProjectionInput() projection.Input {
	return projection.Input{
		Base:                d.Assumptions(),
		HoldYears:           d.Exit.HoldYears,
		RentGrowth:          d.Growth.RentGrowth,
		OtherIncomeGrowth:   d.Growth.OtherIncomeGrowth,
		ExpenseGrowth:       d.Growth.ExpenseGrowth,
		CapitalExpenditures: d.Acquisition.CapitalExpenditures,
		PurchasePrice:       d.Acquisition.PurchasePrice,
		ClosingCosts:        d.Acquisition.ClosingCosts,
		Loan:                d.Loan(),
		ExitCapRate:         d.Exit.ExitCapRate,
		SellingCostRate:     d.Exit.SellingCostRate,
	}
}

// Structure builds the waterfall terms for the given total equity.
func (p Partnership) Structure(equity float64) waterfall.Structure {
	return waterfall.Structure{
		LPEquity:        equity * p.LPShare,
		GPEquity:        equity * (1 - p.LPShare),
		PreferredReturn: p.PreferredReturn,
		CompoundPref:    p.CompoundPref,
		Tiers:           p.Tiers,
	}
}

// Basis returns the depreciation basis: price plus closing costs.
func (t Tax) Basis(d Deal) tax.Basis {
	recovery := t.RecoveryYears
	if recovery == 0 {
		recovery = tax.RecoveryPeriod(d.Property.Type)
	}
	return tax.Basis{
		Cost:                 d.Acquisition.PurchasePrice + d.Acquisition.ClosingCosts,
		LandPercent:          t.LandPercent,
		RecoveryYears:        recovery,
		PlacedInServiceMonth: t.PlacedInServiceMonth,
	}
}

// Recapture returns the recapture rate, defaulting to 25%.
func (t Tax) Recapture() float64 {
	if t.RecaptureRate == 0 {
		return DefaultRecaptureRate
	}
	return t.RecaptureRate
}
