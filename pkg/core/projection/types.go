package projection

import (
	"errors"

	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/operating"
)

// ErrInvalidInput is returned when projection inputs are inconsistent.
var ErrInvalidInput = errors.New("invalid projection input")

// Input defines the drivers for a multi-year hold.
type Input struct {
	Base              operating.Assumptions `json:"base"`
	HoldYears         int                   `json:"hold_years"`
	RentGrowth        float64               `json:"rent_growth"`
	OtherIncomeGrowth float64               `json:"other_income_growth"`
	ExpenseGrowth     float64               `json:"expense_growth"`

	// Per-year capital expenditures below the NOI line; shorter than
	// HoldYears means zero for the remaining years.
	CapitalExpenditures []float64 `json:"capital_expenditures,omitempty"`

	PurchasePrice   float64    `json:"purchase_price"`
	ClosingCosts    float64    `json:"closing_costs"`
	Loan            *debt.Loan `json:"loan,omitempty"`
	ExitCapRate     float64    `json:"exit_cap_rate"`
	SellingCostRate float64    `json:"selling_cost_rate"`
}

// Year holds the projected operating and cash-flow lines for one hold year.
type Year struct {
	Year               int                 `json:"year"`
	Statement          operating.Statement `json:"statement"`
	DebtService        float64             `json:"debt_service"`
	Interest           float64             `json:"interest"`
	Principal          float64             `json:"principal"`
	CashFlowBeforeTax  float64             `json:"cash_flow_before_tax"`
	CapitalExpenditure float64             `json:"capital_expenditure"`
	CashFlowAfterCapEx float64             `json:"cash_flow_after_capex"`
	LoanBalance        float64             `json:"loan_balance"` // end of year
	DSCR               float64             `json:"dscr"`
	CashOnCash         float64             `json:"cash_on_cash"`
}

// Exit is the reversion at the end of the hold.
type Exit struct {
	ForwardNOI      float64 `json:"forward_noi"`
	SalePrice       float64 `json:"sale_price"`
	SellingCosts    float64 `json:"selling_costs"`
	LoanPayoff      float64 `json:"loan_payoff"`
	NetSaleProceeds float64 `json:"net_sale_proceeds"` // after loan payoff
}

// Returns summarizes the levered and unlevered investment.
type Returns struct {
	TotalCost         float64 `json:"total_cost"`
	Equity            float64 `json:"equity"`
	UnleveredIRR      float64 `json:"unlevered_irr"`
	LeveredIRR        float64 `json:"levered_irr"`
	UnleveredMultiple float64 `json:"unlevered_multiple"`
	EquityMultiple    float64 `json:"equity_multiple"`
	AverageCashOnCash float64 `json:"average_cash_on_cash"`
	TotalProfit       float64 `json:"total_profit"`
}

// Projection is the full pro forma.
type Projection struct {
	Years              []Year         `json:"years"`
	Exit               Exit           `json:"exit"`
	Returns            Returns        `json:"returns"`
	UnleveredCashFlows []float64      `json:"unlevered_cash_flows"`
	LeveredCashFlows   []float64      `json:"levered_cash_flows"`
	Schedule           *debt.Schedule `json:"-"`
}
