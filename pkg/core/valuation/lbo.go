package valuation

import (
	"errors"
	"fmt"

	"dealdesk/pkg/core/calc"
	"dealdesk/pkg/core/operating"
	"dealdesk/pkg/core/projection"
)

// ErrTargetUnreachable is returned when no positive price meets the target IRR.
var ErrTargetUnreachable = errors.New("target IRR unreachable")

// PriceSolution is the back-solved purchase price.
type PriceSolution struct {
	MaxPrice       float64 `json:"max_price"`
	ImpliedCapRate float64 `json:"implied_cap_rate"` // year-1 NOI / price
	LeveredIRR     float64 `json:"levered_irr"`
	LoanAmount     float64 `json:"loan_amount"`
}

// MaxPurchasePrice finds the price at which the levered IRR equals targetIRR.
//
// The loan keeps the input's loan-to-price ratio and closing costs keep
// their ratio to price, so leverage scales with the bid. Levered IRR falls
// as price rises, which lets bisection bracket the root.
func MaxPurchasePrice(in projection.Input, targetIRR float64) (PriceSolution, error) {
	if err := in.Validate(); err != nil {
		return PriceSolution{}, err
	}

	ltv := 0.0
	if in.Loan != nil {
		ltv = in.Loan.Principal / in.PurchasePrice
	}
	closingRatio := in.ClosingCosts / in.PurchasePrice

	irrAt := func(price float64) (float64, error) {
		trial := in
		trial.PurchasePrice = price
		trial.ClosingCosts = price * closingRatio
		if in.Loan != nil {
			loan := *in.Loan
			loan.Principal = price * ltv
			trial.Loan = &loan
		}
		p, err := projection.Project(trial)
		if err != nil {
			return 0, err
		}
		return calc.IRR(p.LeveredCashFlows)
	}

	// A trial price whose flows have no IRR (all negative once debt service
	// outruns NOI) counts as missing the target.
	meets := func(price float64) bool {
		r, err := irrAt(price)
		return err == nil && r >= targetIRR
	}

	// lo only ever holds a price shown to meet the target.
	floor := in.PurchasePrice * 0.05
	lo := in.PurchasePrice
	for !meets(lo) {
		lo /= 2
		if lo < floor {
			return PriceSolution{}, fmt.Errorf("%w: %.2f%% not met even at %.0f", ErrTargetUnreachable, targetIRR*100, floor)
		}
	}
	hi := lo * 2
	for i := 0; i < 20 && meets(hi); i++ {
		lo = hi
		hi *= 2
	}

	for i := 0; i < 200 && hi-lo > 0.01; i++ {
		mid := (lo + hi) / 2
		if meets(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}

	price := lo
	irr, err := irrAt(price)
	if err != nil {
		return PriceSolution{}, fmt.Errorf("solve max price: %w", err)
	}
	year1 := operating.Derive(in.AssumptionsForYear(1))

	return PriceSolution{
		MaxPrice:       price,
		ImpliedCapRate: calc.SafeDiv(year1.NOI, price),
		LeveredIRR:     irr,
		LoanAmount:     price * ltv,
	}, nil
}
