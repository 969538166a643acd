// Package debt implements the amortization / debt-service calculator:
// monthly level-payment schedules with optional interest-only periods and a
// balloon at maturity, plus loan sizing against LTV, DSCR and debt-yield
// constraints.
package debt

import (
	"errors"
	"fmt"
	"math"

	"dealdesk/pkg/core/calc"
)

// ErrInvalidLoan is returned when loan terms are out of range.
var ErrInvalidLoan = errors.New("invalid loan terms")

// MaxYears bounds both the amortization period and the term.
const MaxYears = 50

// Loan describes a fixed-rate mortgage.
type Loan struct {
	Principal          float64 `json:"principal" yaml:"principal"`
	AnnualRate         float64 `json:"annual_rate" yaml:"annual_rate"` // 0.065 = 6.5%
	AmortizationYears  int     `json:"amortization_years" yaml:"amortization_years"`
	TermYears          int     `json:"term_years" yaml:"term_years"`
	InterestOnlyMonths int     `json:"interest_only_months" yaml:"interest_only_months"`
}

// Validate checks the loan invariants.
func (l Loan) Validate() error {
	switch {
	case l.Principal <= 0:
		return fmt.Errorf("%w: principal must be positive", ErrInvalidLoan)
	case l.AnnualRate < 0 || l.AnnualRate >= 1:
		return fmt.Errorf("%w: annual rate %.4f outside [0, 1)", ErrInvalidLoan, l.AnnualRate)
	case l.AmortizationYears < 1 || l.AmortizationYears > MaxYears:
		return fmt.Errorf("%w: amortization %d years outside [1, %d]", ErrInvalidLoan, l.AmortizationYears, MaxYears)
	case l.TermYears < 1 || l.TermYears > MaxYears:
		return fmt.Errorf("%w: term %d years outside [1, %d]", ErrInvalidLoan, l.TermYears, MaxYears)
	case l.InterestOnlyMonths < 0 || l.InterestOnlyMonths > l.TermYears*calc.MonthsPerYear:
		return fmt.Errorf("%w: interest-only months %d outside [0, %d]", ErrInvalidLoan, l.InterestOnlyMonths, l.TermYears*calc.MonthsPerYear)
	}
	return nil
}

// Period is one monthly payment.
type Period struct {
	Month        int     `json:"month"`
	Year         int     `json:"year"`
	Payment      float64 `json:"payment"`
	Interest     float64 `json:"interest"`
	Principal    float64 `json:"principal"`
	Balance      float64 `json:"balance"` // after this payment
	InterestOnly bool    `json:"interest_only"`
}

// Schedule is the full payment schedule through maturity (or payoff).
type Schedule struct {
	Loan              Loan     `json:"loan"`
	Periods           []Period `json:"periods"`
	IOPayment         float64  `json:"io_payment"`
	AmortizingPayment float64  `json:"amortizing_payment"`
	BalloonBalance    float64  `json:"balloon_balance"`
	TotalInterest     float64  `json:"total_interest"`
	TotalPrincipal    float64  `json:"total_principal"`
}

// Amortize builds the monthly schedule.
//
// Months 1..InterestOnlyMonths pay interest only. Afterwards the balance
// amortizes over the full amortization period, so a loan with IO and a
// 30-year amortization keeps a 30-year payment. The schedule stops at term
// or when the balance reaches zero; whatever remains at term is the balloon.
func Amortize(loan Loan) (Schedule, error) {
	if err := loan.Validate(); err != nil {
		return Schedule{}, err
	}

	r := loan.AnnualRate / calc.MonthsPerYear
	termMonths := loan.TermYears * calc.MonthsPerYear
	amortMonths := loan.AmortizationYears * calc.MonthsPerYear

	// The balance is gone after IO plus the full amortization.
	n := termMonths
	if paid := loan.InterestOnlyMonths + amortMonths; paid < n {
		n = paid
	}

	s := Schedule{
		Loan:              loan,
		Periods:           make([]Period, 0, n),
		IOPayment:         loan.Principal * r,
		AmortizingPayment: calc.Payment(loan.Principal, r, amortMonths),
	}

	bal := loan.Principal
	for m := 1; m <= termMonths; m++ {
		if bal <= 0 {
			break
		}
		interest := bal * r
		p := Period{Month: m, Year: (m-1)/calc.MonthsPerYear + 1, Interest: interest}

		if m <= loan.InterestOnlyMonths {
			p.Payment = interest
			p.InterestOnly = true
		} else {
			p.Payment = s.AmortizingPayment
			p.Principal = p.Payment - interest
			if p.Principal >= bal || bal-p.Principal < 1e-6 {
				p.Principal = bal
				p.Payment = interest + bal
			}
		}

		bal -= p.Principal
		if math.Abs(bal) < 1e-6 {
			bal = 0
		}
		p.Balance = bal

		s.TotalInterest += p.Interest
		s.TotalPrincipal += p.Principal
		s.Periods = append(s.Periods, p)
	}
	s.BalloonBalance = bal

	return s, nil
}

// AnnualDebtService sums the payments falling in loan year `year` (1-based).
// The balloon itself is not debt service.
func (s Schedule) AnnualDebtService(year int) float64 {
	var total float64
	for _, p := range s.periodsInYear(year) {
		total += p.Payment
	}
	return total
}

// AnnualInterest sums interest paid in loan year `year`.
func (s Schedule) AnnualInterest(year int) float64 {
	var total float64
	for _, p := range s.periodsInYear(year) {
		total += p.Interest
	}
	return total
}

// AnnualPrincipal sums scheduled principal paid in loan year `year`.
func (s Schedule) AnnualPrincipal(year int) float64 {
	var total float64
	for _, p := range s.periodsInYear(year) {
		total += p.Principal
	}
	return total
}

// BalanceAt returns the balance after `month` payments. Month 0 is the
// original principal; months beyond the schedule are paid off.
func (s Schedule) BalanceAt(month int) float64 {
	if month <= 0 {
		return s.Loan.Principal
	}
	if month > len(s.Periods) {
		return 0
	}
	return s.Periods[month-1].Balance
}

// BalanceAtYearEnd returns the balance after `year` full loan years.
func (s Schedule) BalanceAtYearEnd(year int) float64 {
	return s.BalanceAt(year * calc.MonthsPerYear)
}

func (s Schedule) periodsInYear(year int) []Period {
	if year < 1 {
		return nil
	}
	start := (year - 1) * calc.MonthsPerYear
	if start >= len(s.Periods) {
		return nil
	}
	end := start + calc.MonthsPerYear
	if end > len(s.Periods) {
		end = len(s.Periods)
	}
	return s.Periods[start:end]
}

// LoanConstant is annual debt service per dollar of fully-amortizing loan.
func LoanConstant(annualRate float64, amortizationYears int) float64 {
	n := amortizationYears * calc.MonthsPerYear
	return calc.Payment(1, annualRate/calc.MonthsPerYear, n) * calc.MonthsPerYear
}
