// Package waterfall splits partnership cash flow between limited partners
// (LP) and the general partner (GP): preferred return and return of capital
// first, then promote tiers keyed to LP IRR hurdles.
package waterfall

import (
	"errors"
	"fmt"
	"math"

	"dealdesk/pkg/core/calc"
)

// ErrInvalidStructure is returned for inconsistent waterfall terms or cash.
var ErrInvalidStructure = errors.New("invalid waterfall structure")

const splitTolerance = 1e-9

// Tier is a promote tier. It applies until the LP reaches HurdleIRR.
// A zero HurdleIRR on the last tier marks the residual split.
type Tier struct {
	Name      string  `json:"name,omitempty" yaml:"name"`
	HurdleIRR float64 `json:"hurdle_irr" yaml:"hurdle_irr"`
	LPSplit   float64 `json:"lp_split" yaml:"lp_split"`
	GPSplit   float64 `json:"gp_split" yaml:"gp_split"`
}

// Structure defines the partnership economics.
type Structure struct {
	LPEquity        float64 `json:"lp_equity" yaml:"lp_equity"`
	GPEquity        float64 `json:"gp_equity" yaml:"gp_equity"`
	PreferredReturn float64 `json:"preferred_return" yaml:"preferred_return"`
	CompoundPref    bool    `json:"compound_pref" yaml:"compound_pref"`
	Tiers           []Tier  `json:"tiers" yaml:"tiers"`
}

// TierAmount is what one tier paid in a period.
type TierAmount struct {
	Name string  `json:"name"`
	LP   float64 `json:"lp"`
	GP   float64 `json:"gp"`
}

// Distribution is one period of the waterfall.
type Distribution struct {
	Period int          `json:"period"`
	Cash   float64      `json:"cash"`
	Tiers  []TierAmount `json:"tiers"`
	LP     float64      `json:"lp"`
	GP     float64      `json:"gp"`
}

// Summary aggregates partner returns.
type Summary struct {
	LPTotal    float64 `json:"lp_total"`
	GPTotal    float64 `json:"gp_total"`
	LPIRR      float64 `json:"lp_irr"`
	GPIRR      float64 `json:"gp_irr"`
	LPMultiple float64 `json:"lp_multiple"`
	GPMultiple float64 `json:"gp_multiple"`
	// GPPromote is the GP take beyond its pro-rata equity share.
	GPPromote float64 `json:"gp_promote"`
}

// Result is the full waterfall.
type Result struct {
	Distributions []Distribution `json:"distributions"`
	Summary       Summary        `json:"summary"`
	LPCashFlows   []float64      `json:"lp_cash_flows"` // t0 contribution first
	GPCashFlows   []float64      `json:"gp_cash_flows"`
}

// TotalEquity is LP plus GP contributed capital.
func (s Structure) TotalEquity() float64 { return s.LPEquity + s.GPEquity }

// Validate checks the structure invariants.
func (s Structure) Validate() error {
	if s.LPEquity <= 0 {
		return fmt.Errorf("%w: LP equity must be positive", ErrInvalidStructure)
	}
	if s.GPEquity < 0 {
		return fmt.Errorf("%w: GP equity cannot be negative", ErrInvalidStructure)
	}
	if s.PreferredReturn < 0 {
		return fmt.Errorf("%w: preferred return cannot be negative", ErrInvalidStructure)
	}

	prev := s.PreferredReturn
	for i, t := range s.Tiers {
		if t.LPSplit < 0 || t.GPSplit < 0 || math.Abs(t.LPSplit+t.GPSplit-1) > splitTolerance {
			return fmt.Errorf("%w: tier %d splits must be non-negative and sum to 1", ErrInvalidStructure, i+1)
		}
		residual := t.HurdleIRR == 0
		if residual {
			if i != len(s.Tiers)-1 {
				return fmt.Errorf("%w: only the last tier may be residual", ErrInvalidStructure)
			}
			continue
		}
		if t.LPSplit == 0 {
			return fmt.Errorf("%w: tier %d must pay the LP to reach its hurdle", ErrInvalidStructure, i+1)
		}
		if t.HurdleIRR < s.PreferredReturn || (i > 0 && t.HurdleIRR <= prev) {
			return fmt.Errorf("%w: tier %d hurdle %.4f must be increasing and at least the pref", ErrInvalidStructure, i+1, t.HurdleIRR)
		}
		prev = t.HurdleIRR
	}
	return nil
}

func (t Tier) label(i int) string {
	if t.Name != "" {
		return t.Name
	}
	if t.HurdleIRR == 0 {
		return "Residual"
	}
	return fmt.Sprintf("Tier %d (%.1f%% IRR)", i+1, t.HurdleIRR*100)
}

// Distribute runs the waterfall over periodic distributable cash.
// cashFlows[0] is period 1; contributions are assumed at period 0.
//
// If the tiers do not end with a residual tier, cash beyond the last
// hurdle is split pro rata to equity.
func Distribute(s Structure, cashFlows []float64) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	for i, cf := range cashFlows {
		if cf < 0 || math.IsNaN(cf) {
			return Result{}, fmt.Errorf("%w: period %d cash %.2f is negative", ErrInvalidStructure, i+1, cf)
		}
	}

	lpShare := s.LPEquity / s.TotalEquity()

	tiers := s.Tiers
	if len(tiers) == 0 || tiers[len(tiers)-1].HurdleIRR != 0 {
		tiers = append(append([]Tier(nil), tiers...), Tier{Name: "Residual (pro rata)", LPSplit: lpShare, GPSplit: 1 - lpShare})
	}

	// LP hurdle balances; a balance is what the LP still needs to reach the tier IRR.
	hurdle := make([]float64, len(tiers))
	for i := range tiers {
		if tiers[i].HurdleIRR > 0 {
			hurdle[i] = s.LPEquity
		}
	}

	unreturned := s.TotalEquity()
	var prefDue float64

	res := Result{
		Distributions: make([]Distribution, 0, len(cashFlows)),
		LPCashFlows:   []float64{-s.LPEquity},
		GPCashFlows:   []float64{-s.GPEquity},
	}

	for p, cash := range cashFlows {
		// Accrue
		base := unreturned
		if s.CompoundPref {
			base += prefDue
		}
		prefDue += base * s.PreferredReturn
		for i := range tiers {
			hurdle[i] *= 1 + tiers[i].HurdleIRR
		}

		d := Distribution{Period: p + 1, Cash: cash}
		remaining := cash

		payLP := func(lp float64) {
			for i := range hurdle {
				hurdle[i] = math.Max(0, hurdle[i]-lp)
			}
		}

		// Preferred return, pari passu
		pref := math.Min(remaining, prefDue)
		prefDue -= pref
		remaining -= pref
		d.Tiers = append(d.Tiers, TierAmount{Name: "Preferred Return", LP: pref * lpShare, GP: pref * (1 - lpShare)})
		payLP(pref * lpShare)

		// Return of capital, pari passu
		roc := math.Min(remaining, unreturned)
		unreturned -= roc
		remaining -= roc
		d.Tiers = append(d.Tiers, TierAmount{Name: "Return of Capital", LP: roc * lpShare, GP: roc * (1 - lpShare)})
		payLP(roc * lpShare)

		for i, t := range tiers {
			amt := remaining
			if t.HurdleIRR > 0 {
				amt = math.Min(remaining, hurdle[i]/t.LPSplit)
			}
			remaining -= amt
			d.Tiers = append(d.Tiers, TierAmount{Name: t.label(i), LP: amt * t.LPSplit, GP: amt * t.GPSplit})
			payLP(amt * t.LPSplit)
		}

		for _, ta := range d.Tiers {
			d.LP += ta.LP
			d.GP += ta.GP
		}
		res.Distributions = append(res.Distributions, d)
		res.LPCashFlows = append(res.LPCashFlows, d.LP)
		res.GPCashFlows = append(res.GPCashFlows, d.GP)
		res.Summary.LPTotal += d.LP
		res.Summary.GPTotal += d.GP
	}

	total := res.Summary.LPTotal + res.Summary.GPTotal
	res.Summary.LPIRR = irrOrZero(res.LPCashFlows)
	res.Summary.GPIRR = irrOrZero(res.GPCashFlows)
	res.Summary.LPMultiple = calc.SafeDiv(res.Summary.LPTotal, s.LPEquity)
	res.Summary.GPMultiple = calc.SafeDiv(res.Summary.GPTotal, s.GPEquity)
	res.Summary.GPPromote = res.Summary.GPTotal - total*(1-lpShare)

	return res, nil
}

func irrOrZero(flows []float64) float64 {
	r, err := calc.IRR(flows)
	if err != nil {
		return 0
	}
	return r
}
