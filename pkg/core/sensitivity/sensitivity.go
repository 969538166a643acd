// Package sensitivity flexes two deal inputs across a grid and reports the
// levered returns for every combination.
package sensitivity

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"dealdesk/pkg/core/calc"
	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/projection"
)

// ErrInvalidAxis is returned for unknown fields or empty / oversized axes.
var ErrInvalidAxis = errors.New("invalid sensitivity axis")

// MaxCells bounds the grid size.
const MaxCells = 625

// Flexible fields.
const (
	ExitCapRate   = "exit_cap_rate"
	RentGrowth    = "rent_growth"
	ExpenseGrowth = "expense_growth"
	PurchasePrice = "purchase_price"
	InterestRate  = "interest_rate"
	VacancyRate   = "vacancy_rate"
	LTV           = "ltv"
)

var fields = map[string]func(d *deal.Deal, v float64) error{
	ExitCapRate:   func(d *deal.Deal, v float64) error { d.Exit.ExitCapRate = v; return nil },
	RentGrowth:    func(d *deal.Deal, v float64) error { d.Growth.RentGrowth = v; return nil },
	ExpenseGrowth: func(d *deal.Deal, v float64) error { d.Growth.ExpenseGrowth = v; return nil },
	VacancyRate:   func(d *deal.Deal, v float64) error { d.Operations.VacancyRate = v; return nil },
	PurchasePrice: func(d *deal.Deal, v float64) error { d.Acquisition.PurchasePrice = v; return nil },
	InterestRate: func(d *deal.Deal, v float64) error {
		if d.Financing == nil {
			return fmt.Errorf("%w: deal has no financing to flex", ErrInvalidAxis)
		}
		d.Financing.InterestRate = v
		return nil
	},
	LTV: func(d *deal.Deal, v float64) error {
		if d.Financing == nil {
			return fmt.Errorf("%w: deal has no financing to flex", ErrInvalidAxis)
		}
		d.Financing.LoanAmount = 0
		d.Financing.LTV = v
		return nil
	},
}

// Axis is one flexed input.
type Axis struct {
	Field  string    `json:"field"`
	Values []float64 `json:"values"`
}

// Cell is the outcome for one combination.
type Cell struct {
	Row            float64 `json:"row"`
	Col            float64 `json:"col"`
	LeveredIRR     float64 `json:"levered_irr"`
	UnleveredIRR   float64 `json:"unlevered_irr"`
	EquityMultiple float64 `json:"equity_multiple"`
	Year1DSCR      float64 `json:"year1_dscr"`
	Error          string  `json:"error,omitempty"`
}

// Grid holds Cells[i][j] for Rows.Values[i] × Cols.Values[j].
type Grid struct {
	Rows  Axis     `json:"rows"`
	Cols  Axis     `json:"cols"`
	Cells [][]Cell `json:"cells"`
}

func (a Axis) validate() error {
	if _, ok := fields[a.Field]; !ok {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidAxis, a.Field)
	}
	if len(a.Values) == 0 {
		return fmt.Errorf("%w: %s has no values", ErrInvalidAxis, a.Field)
	}
	return nil
}

// Fields lists the inputs that can be flexed.
func Fields() []string {
	return []string{ExitCapRate, RentGrowth, ExpenseGrowth, PurchasePrice, InterestRate, VacancyRate, LTV}
}

// Run evaluates every cell concurrently. A combination that produces an
// invalid deal is reported in its cell; only cancellation and bad axes
// fail the whole run.
func Run(ctx context.Context, base deal.Deal, rows, cols Axis) (Grid, error) {
	if err := rows.validate(); err != nil {
		return Grid{}, err
	}
	if err := cols.validate(); err != nil {
		return Grid{}, err
	}
	if rows.Field == cols.Field {
		return Grid{}, fmt.Errorf("%w: both axes flex %s", ErrInvalidAxis, rows.Field)
	}
	if n := len(rows.Values) * len(cols.Values); n > MaxCells {
		return Grid{}, fmt.Errorf("%w: %d cells exceeds %d", ErrInvalidAxis, n, MaxCells)
	}
	if _, err := flex(base, rows.Field, rows.Values[0], cols.Field, cols.Values[0]); err != nil {
		return Grid{}, err
	}

	g := Grid{Rows: rows, Cols: cols, Cells: make([][]Cell, len(rows.Values))}
	for i := range g.Cells {
		g.Cells[i] = make([]Cell, len(cols.Values))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, rv := range rows.Values {
		for j, cv := range cols.Values {
			i, j, rv, cv := i, j, rv, cv
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				// Each goroutine owns its cell
				g.Cells[i][j] = evaluate(base, rows.Field, rv, cols.Field, cv)
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// flex copies the deal (including the financing it may mutate) and sets both fields.
func flex(base deal.Deal, rf string, rv float64, cf string, cv float64) (deal.Deal, error) {
	d := base
	if base.Financing != nil {
		f := *base.Financing
		d.Financing = &f
	}
	if err := fields[rf](&d, rv); err != nil {
		return d, err
	}
	if err := fields[cf](&d, cv); err != nil {
		return d, err
	}
	return d, nil
}

func evaluate(base deal.Deal, rf string, rv float64, cf string, cv float64) Cell {
	c := Cell{Row: rv, Col: cv}

	d, err := flex(base, rf, rv, cf, cv)
	if err == nil {
		err = deal.Validate(d)
	}
	if err != nil {
		c.Error = err.Error()
		return c
	}

	p, err := projection.Project(d.ProjectionInput())
	if err != nil {
		c.Error = err.Error()
		return c
	}
	c.LeveredIRR = p.Returns.LeveredIRR
	c.UnleveredIRR = p.Returns.UnleveredIRR
	c.EquityMultiple = p.Returns.EquityMultiple
	c.Year1DSCR = calc.SafeDiv(p.Years[0].Statement.NOI, p.Years[0].DebtService)
	return c
}
