package debt

import (
	"errors"
	"math"
	"testing"
)

func TestSizeLoanBindingConstraint(t *testing.T) {
	in := SizingInput{
		Value:             10000000,
		NOI:               600000,
		MaxLTV:            0.75,
		MinDSCR:           1.25,
		MinDebtYield:      0.08,
		AnnualRate:        0.06,
		AmortizationYears: 30,
	}
	res, err := SizeLoan(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// LTV: 7.5M; DSCR: 600k/1.25/0.0719461 = 6.67M; DY: 7.5M
	if res.Binding != ConstraintDSCR {
		t.Errorf("Expected DSCR to bind, got %s", res.Binding)
	}
	expected := 600000 / 1.25 / LoanConstant(0.06, 30)
	if math.Abs(res.MaxLoan-expected) > 1e-6 {
		t.Errorf("Expected max loan %f, got %f", expected, res.MaxLoan)
	}
	if dscr := in.NOI / res.AnnualDebtService; math.Abs(dscr-1.25) > 1e-9 {
		t.Errorf("Sized loan should sit exactly at min DSCR, got %f", dscr)
	}
}

func TestSizeLoanLTVOnly(t *testing.T) {
	res, err := SizeLoan(SizingInput{Value: 2000000, MaxLTV: 0.65})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Binding != ConstraintLTV || res.MaxLoan != 1300000 {
		t.Errorf("Expected LTV-bound 1.3M, got %s %f", res.Binding, res.MaxLoan)
	}
}

func TestSizeLoanNoConstraint(t *testing.T) {
	if _, err := SizeLoan(SizingInput{Value: 1}); !errors.Is(err, ErrInvalidLoan) {
		t.Errorf("Expected ErrInvalidLoan, got %v", err)
	}
}

func TestSizeLoanBalloonMatchesSchedule(t *testing.T) {
	res, err := SizeLoan(SizingInput{Value: 2000000, MaxLTV: 0.7, AnnualRate: 0.065, AmortizationYears: 30, TermYears: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := Amortize(Loan{Principal: res.MaxLoan, AnnualRate: 0.065, AmortizationYears: 30, TermYears: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.BalloonBalance-s.BalloonBalance) > 1e-4 {
		t.Errorf("Expected balloon %f, got %f", s.BalloonBalance, res.BalloonBalance)
	}
}

func TestSizeLoanRejectsLongTerms(t *testing.T) {
	_, err := SizeLoan(SizingInput{Value: 1, MaxLTV: 0.5, AmortizationYears: 30, TermYears: MaxYears + 1})
	if !errors.Is(err, ErrInvalidLoan) {
		t.Errorf("Expected ErrInvalidLoan, got %v", err)
	}
}
