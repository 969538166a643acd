// Package calc provides deterministic time-value-of-money helpers shared by the
// underwriting calculators (debt, projection, waterfall, tax).
package calc

import (
	"errors"
	"math"
)

// MonthsPerYear is the number of payment periods in a year for monthly-pay loans.
const MonthsPerYear = 12

var (
	// ErrNoSignChange is returned by IRR when the flows never change sign.
	ErrNoSignChange = errors.New("irr: cash flows must contain both an outflow and an inflow")
	// ErrNoConvergence is returned by IRR when neither solver finds a root.
	ErrNoConvergence = errors.New("irr: solver did not converge")
)

// =============================================================================
// DISCOUNTING
// =============================================================================

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}

// PresentValueOfCashFlows calculates PV of a series of cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ]
//
// Cash flows are assumed to be at end of each period (ordinary annuity).
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += cf / math.Pow(1+discountRate, float64(t+1))
	}
	return pv
}

// NPV discounts flows where flows[0] occurs at t=0 (undiscounted).
//
// FORMULA: NPV = Σ [ CF_t / (1 + r)^t ], t = 0..n
func NPV(rate float64, flows []float64) float64 {
	var npv float64
	for t, cf := range flows {
		npv += cf / math.Pow(1+rate, float64(t))
	}
	return npv
}

// npvDerivative is d(NPV)/dr, used by the Newton step.
func npvDerivative(rate float64, flows []float64) float64 {
	var d float64
	for t, cf := range flows {
		if t == 0 {
			continue
		}
		d -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return d
}

// =============================================================================
// RETURN METRICS
// =============================================================================

// IRR solves NPV(r) = 0 for a periodic cash-flow series.
//
// Newton-Raphson from 10% is tried first; if it diverges or leaves the
// (-1, +inf) domain, bisection on [-0.99, 10] is used.
func IRR(flows []float64) (float64, error) {
	hasNeg, hasPos := false, false
	for _, cf := range flows {
		if cf < 0 {
			hasNeg = true
		}
		if cf > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0, ErrNoSignChange
	}

	const tol = 1e-10
	rate := 0.10
	for i := 0; i < 100; i++ {
		v := NPV(rate, flows)
		if math.Abs(v) < tol {
			return rate, nil
		}
		d := npvDerivative(rate, flows)
		if d == 0 || math.IsNaN(d) {
			break
		}
		next := rate - v/d
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		if math.Abs(next-rate) < tol {
			return next, nil
		}
		rate = next
	}

	return bisectIRR(flows)
}

func bisectIRR(flows []float64) (float64, error) {
	lo, hi := -0.99, 10.0
	fLo, fHi := NPV(lo, flows), NPV(hi, flows)
	if fLo*fHi > 0 {
		return 0, ErrNoConvergence
	}
	for i := 0; i < 300; i++ {
		mid := (lo + hi) / 2
		fMid := NPV(mid, flows)
		if math.Abs(fMid) < 1e-9 || (hi-lo)/2 < 1e-12 {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2, nil
}

// EquityMultiple is total distributions divided by total contributions.
// Negative flows are contributions, positive flows are distributions.
func EquityMultiple(flows []float64) float64 {
	var in, out float64
	for _, cf := range flows {
		if cf < 0 {
			out -= cf
		} else {
			in += cf
		}
	}
	if out == 0 {
		return 0
	}
	return in / out
}

// =============================================================================
// LOAN MATH
// =============================================================================

// Payment is the level payment that retires principal over n periods.
//
// FORMULA: PMT = P × r / (1 - (1 + r)^-n)
//
// A zero rate degenerates to straight-line principal.
func Payment(principal, periodicRate float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	if periodicRate == 0 {
		return principal / float64(n)
	}
	return principal * periodicRate / (1 - math.Pow(1+periodicRate, -float64(n)))
}

// RemainingBalance is the outstanding principal after `paid` level payments.
//
// FORMULA: B_k = P(1+r)^k - PMT × ((1+r)^k - 1) / r
func RemainingBalance(principal, periodicRate float64, n, paid int) float64 {
	if paid <= 0 {
		return principal
	}
	if paid >= n {
		return 0
	}
	if periodicRate == 0 {
		return principal * (1 - float64(paid)/float64(n))
	}
	pmt := Payment(principal, periodicRate, n)
	growth := math.Pow(1+periodicRate, float64(paid))
	return principal*growth - pmt*(growth-1)/periodicRate
}

// Grow compounds base at rate for the given number of years.
//
// FORMULA: X_t = X_0 × (1 + g)^t
func Grow(base, rate float64, years int) float64 {
	return base * math.Pow(1+rate, float64(years))
}

// SafeDiv returns a/b, or 0 when b is zero. Ratios in this module never
// surface Inf or NaN to callers.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
