package underwrite

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/logging"
	"dealdesk/pkg/core/market"
	"dealdesk/pkg/core/operating"
	"dealdesk/pkg/core/projection"
	"dealdesk/pkg/core/tax"
	"dealdesk/pkg/core/valuation"
	"dealdesk/pkg/core/waterfall"
)

// Engine runs underwriting with a fixed set of market weights.
type Engine struct {
	Weights market.Weights
	Now     func() time.Time
}

// NewEngine uses the default market weights.
func NewEngine() *Engine {
	return &Engine{Weights: market.DefaultWeights(), Now: time.Now}
}

// Run underwrites a deal with the default engine.
func Run(d deal.Deal) (*Report, error) {
	return NewEngine().Run(d)
}

// Run validates the deal and computes every section of the report.
// Optional sections (waterfall, tax, valuation, market) are included when
// the deal carries their inputs.
func (e *Engine) Run(d deal.Deal) (*Report, error) {
	log := logging.Named("underwrite")

	if err := deal.Validate(d); err != nil {
		return nil, err
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	r := &Report{ID: uuid.NewString(), GeneratedAt: now().UTC(), Deal: d}

	// 1. Projection (amortizes the loan)
	proj, err := projection.Project(d.ProjectionInput())
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}
	r.Projection = proj

	// 2. Year-1 statement and ratios
	r.Statement = proj.Years[0].Statement
	r.Metrics = operating.Compute(r.Statement, operating.Financials{
		PurchasePrice:     d.Acquisition.PurchasePrice,
		AnnualDebtService: proj.Years[0].DebtService,
		LoanAmount:        loanAmount(d),
		Equity:            proj.Returns.Equity,
		Units:             d.Property.Units,
		SquareFeet:        d.Property.SquareFeet,
	})
	if s := proj.Schedule; s != nil {
		r.Financing = &Financing{
			LoanAmount:        s.Loan.Principal,
			IOPayment:         s.IOPayment,
			AmortizingPayment: s.AmortizingPayment,
			Year1DebtService:  s.AnnualDebtService(1),
			LoanConstant:      debt.LoanConstant(s.Loan.AnnualRate, s.Loan.AmortizationYears),
			BalloonBalance:    s.BalloonBalance,
			TotalInterest:     s.TotalInterest,
		}
	}
	r.Warnings = append(r.Warnings, warnings(r)...)

	// 3. Waterfall on levered cash flows
	if d.Partnership != nil {
		res, err := runWaterfall(*d.Partnership, proj)
		if err != nil {
			return nil, fmt.Errorf("waterfall: %w", err)
		}
		r.Waterfall = &res
	}

	// 4. Tax
	if d.Tax != nil {
		res, err := runTax(d, proj)
		if err != nil {
			return nil, fmt.Errorf("tax: %w", err)
		}
		r.Tax = &res
	}

	// 5. Valuation
	if d.Valuation != nil {
		r.Valuation = runValuation(d, proj)
	}

	// 6. Market and investment score
	if d.Market != nil {
		ms := market.ScoreMarket(*d.Market, e.Weights)
		inv := market.CalculateInvestmentScore(ms, &market.DealSignals{
			CapRate:    r.Metrics.CapRate,
			DSCR:       r.Metrics.DSCR,
			CashOnCash: r.Metrics.CashOnCash,
		})
		r.Market = &ms
		r.Investment = &inv
	}

	log.Infow("deal underwritten",
		"id", r.ID,
		"deal", d.Name,
		"cap_rate", r.Metrics.CapRate,
		"levered_irr", proj.Returns.LeveredIRR,
	)
	return r, nil
}

func loanAmount(d deal.Deal) float64 {
	if l := d.Loan(); l != nil {
		return l.Principal
	}
	return 0
}

// runWaterfall distributes the levered flows. Years with a capital call
// (negative cash) distribute nothing.
func runWaterfall(p deal.Partnership, proj *projection.Projection) (waterfall.Result, error) {
	flows := make([]float64, 0, len(proj.LeveredCashFlows)-1)
	for _, cf := range proj.LeveredCashFlows[1:] {
		if cf < 0 {
			cf = 0
		}
		flows = append(flows, cf)
	}
	return waterfall.Distribute(p.Structure(proj.Returns.Equity), flows)
}

func runTax(d deal.Deal, proj *projection.Projection) (tax.Result, error) {
	t := *d.Tax
	dep, err := tax.Depreciation(t.Basis(d), len(proj.Years))
	if err != nil {
		return tax.Result{}, err
	}

	in := tax.Input{
		Depreciation:     dep,
		OrdinaryRate:     t.OrdinaryRate,
		CapitalGainsRate: t.CapitalGainsRate,
		RecaptureRate:    t.Recapture(),
		SalePrice:        proj.Exit.SalePrice,
		SellingCosts:     proj.Exit.SellingCosts,
		CostBasis:        d.Acquisition.PurchasePrice + d.Acquisition.ClosingCosts,
		LoanPayoff:       proj.Exit.LoanPayoff,
		Equity:           proj.Returns.Equity,
	}
	for _, y := range proj.Years {
		in.CapitalImprovements += y.CapitalExpenditure
		in.Years = append(in.Years, tax.YearIncome{
			NOI:               y.Statement.NOI,
			Interest:          y.Interest,
			CashFlowBeforeTax: y.CashFlowAfterCapEx,
		})
	}
	return tax.Project(in), nil
}

func runValuation(d deal.Deal, proj *projection.Projection) *Valuation {
	v := d.Valuation
	out := &Valuation{}

	if len(v.Comps) > 0 {
		c := valuation.CalculateComps(valuation.Subject{
			NOI:        proj.Years[0].Statement.NOI,
			Units:      d.Property.Units,
			SquareFeet: d.Property.SquareFeet,
		}, v.Comps)
		out.Comps = &c
	}

	out.Approaches = valuation.Reconcile(valuation.ReconcileInput{
		Projection:   proj,
		MarketCap:    v.MarketCapRate,
		DiscountRate: v.DiscountRate,
		Subject: valuation.Subject{
			NOI:        proj.Years[0].Statement.NOI,
			Units:      d.Property.Units,
			SquareFeet: d.Property.SquareFeet,
		},
		Comps:       v.Comps,
		Band:        bandInput(d),
		AskingPrice: d.Acquisition.PurchasePrice,
	})
	out.Reconciled = valuation.ReconciledValue(out.Approaches)

	if v.TargetIRR > 0 {
		sol, err := valuation.MaxPurchasePrice(d.ProjectionInput(), v.TargetIRR)
		if err != nil {
			out.MaxPriceErr = err.Error()
		} else {
			out.MaxPrice = &sol
		}
	}
	return out
}

func bandInput(d deal.Deal) *valuation.BandInput {
	v := d.Valuation
	if v == nil || v.EquityDividend <= 0 {
		return nil
	}
	band := &valuation.BandInput{EquityDividend: v.EquityDividend}
	if loan := d.Loan(); loan != nil && d.Acquisition.PurchasePrice > 0 {
		band.LoanToValue = loan.Principal / d.Acquisition.PurchasePrice
		band.MortgageConstant = debt.LoanConstant(loan.AnnualRate, loan.AmortizationYears)
	}
	return band
}

// warnings flags the conditions an analyst should look at first.
func warnings(r *Report) []string {
	var w []string
	m := r.Metrics
	if m.HasDebt && m.DSCR < 1 {
		w = append(w, fmt.Sprintf("year-1 DSCR %.2fx: NOI does not cover debt service", m.DSCR))
	} else if m.HasDebt && m.DSCR < 1.25 {
		w = append(w, fmt.Sprintf("year-1 DSCR %.2fx is below the typical 1.25x lender minimum", m.DSCR))
	}
	if m.HasDebt && r.Financing != nil && m.CapRate < r.Financing.LoanConstant {
		w = append(w, fmt.Sprintf("negative leverage: cap rate %.2f%% below loan constant %.2f%%", m.CapRate*100, r.Financing.LoanConstant*100))
	}
	if m.BreakEvenOccupancy > 0.85 {
		w = append(w, fmt.Sprintf("break-even occupancy %.0f%%", m.BreakEvenOccupancy*100))
	}
	if r.Deal.Exit.ExitCapRate < m.CapRate {
		w = append(w, "exit cap rate is below the going-in cap rate")
	}
	for _, y := range r.Projection.Years {
		if y.CashFlowAfterCapEx < 0 {
			w = append(w, fmt.Sprintf("year %d cash flow after capex is negative", y.Year))
		}
	}
	return w
}
