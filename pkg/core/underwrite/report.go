// Package underwrite runs every calculator over a deal and assembles the
// underwriting report.
package underwrite

import (
	"time"

	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/market"
	"dealdesk/pkg/core/operating"
	"dealdesk/pkg/core/projection"
	"dealdesk/pkg/core/tax"
	"dealdesk/pkg/core/valuation"
	"dealdesk/pkg/core/waterfall"
)

// Financing summarizes the loan without the monthly periods.
type Financing struct {
	LoanAmount        float64 `json:"loan_amount"`
	IOPayment         float64 `json:"io_payment,omitempty"`
	AmortizingPayment float64 `json:"amortizing_payment"`
	Year1DebtService  float64 `json:"year1_debt_service"`
	LoanConstant      float64 `json:"loan_constant"`
	BalloonBalance    float64 `json:"balloon_balance"`
	TotalInterest     float64 `json:"total_interest"`
}

// Valuation collects the value indications.
type Valuation struct {
	Approaches  []valuation.ValuationLineItem `json:"approaches"`
	Reconciled  float64                       `json:"reconciled"`
	Comps       *valuation.CompsResult        `json:"comps,omitempty"`
	MaxPrice    *valuation.PriceSolution      `json:"max_price,omitempty"`
	MaxPriceErr string                        `json:"max_price_error,omitempty"`
}

// Report is the full underwriting output for one deal.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Deal        deal.Deal `json:"deal"`

	Statement  operating.Statement     `json:"statement"` // year 1
	Metrics    operating.Metrics       `json:"metrics"`
	Financing  *Financing              `json:"financing,omitempty"`
	Projection *projection.Projection  `json:"projection"`
	Waterfall  *waterfall.Result       `json:"waterfall,omitempty"`
	Tax        *tax.Result             `json:"tax,omitempty"`
	Valuation  *Valuation              `json:"valuation,omitempty"`
	Market     *market.MarketScore     `json:"market,omitempty"`
	Investment *market.InvestmentScore `json:"investment,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

// Summary is the list view of a stored report.
type Summary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	GeneratedAt    time.Time `json:"generated_at"`
	CapRate        float64   `json:"cap_rate"`
	DSCR           float64   `json:"dscr"`
	LeveredIRR     float64   `json:"levered_irr"`
	EquityMultiple float64   `json:"equity_multiple"`
	Recommendation string    `json:"recommendation,omitempty"`
}

// Summarize extracts the headline numbers.
func (r *Report) Summarize() Summary {
	s := Summary{
		ID:          r.ID,
		Name:        r.Deal.Name,
		GeneratedAt: r.GeneratedAt,
		CapRate:     r.Metrics.CapRate,
		DSCR:        r.Metrics.DSCR,
	}
	if r.Projection != nil {
		s.LeveredIRR = r.Projection.Returns.LeveredIRR
		s.EquityMultiple = r.Projection.Returns.EquityMultiple
	}
	if r.Investment != nil {
		s.Recommendation = string(r.Investment.Recommendation)
	}
	return s
}
