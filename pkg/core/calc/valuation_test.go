package calc

import (
	"errors"
	"math"
	"testing"
)

func TestPresentValue(t *testing.T) {
	pv := PresentValue(110, 0.10, 1)
	if math.Abs(pv-100) > 1e-9 {
		t.Errorf("Expected PV 100, got %f", pv)
	}
	if PresentValue(100, 0.1, -1) != 0 {
		t.Error("Negative periods should return 0")
	}

	// 100 at end of years 1 and 2 at 10%: 90.909 + 82.645
	got := PresentValueOfCashFlows([]float64{100, 100}, 0.10)
	expected := 100/1.1 + 100/1.21
	if math.Abs(got-expected) > 1e-9 {
		t.Errorf("Expected %f, got %f", expected, got)
	}
}

func TestNPV(t *testing.T) {
	flows := []float64{-100, 60, 60}
	expected := -100 + 60/1.1 + 60/1.21
	if got := NPV(0.10, flows); math.Abs(got-expected) > 1e-9 {
		t.Errorf("Expected NPV %f, got %f", expected, got)
	}
}

func TestIRR(t *testing.T) {
	tests := []struct {
		name     string
		flows    []float64
		expected float64
	}{
		{"single period 10%", []float64{-100, 110}, 0.10},
		{"two period annuity", []float64{-100, 60, 60}, 0.130662},
		{"bullet with coupons", []float64{-1000, 80, 80, 80, 1080}, 0.08},
		{"negative return", []float64{-100, 50, 40}, -0.069927},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IRR(tt.flows)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-5 {
				t.Errorf("Expected IRR %f, got %f", tt.expected, got)
			}
			if npv := NPV(got, tt.flows); math.Abs(npv) > 1e-6 {
				t.Errorf("NPV at IRR should be ~0, got %f", npv)
			}
		})
	}
}

func TestIRRNoSignChange(t *testing.T) {
	_, err := IRR([]float64{100, 100})
	if !errors.Is(err, ErrNoSignChange) {
		t.Errorf("Expected ErrNoSignChange, got %v", err)
	}
	_, err = IRR(nil)
	if !errors.Is(err, ErrNoSignChange) {
		t.Errorf("Expected ErrNoSignChange for empty flows, got %v", err)
	}
}

func TestEquityMultiple(t *testing.T) {
	if got := EquityMultiple([]float64{-100, 20, 20, 160}); math.Abs(got-2.0) > 1e-9 {
		t.Errorf("Expected 2.0x, got %f", got)
	}
	if got := EquityMultiple([]float64{10, 20}); got != 0 {
		t.Errorf("Expected 0 with no contributions, got %f", got)
	}
}

func TestPayment(t *testing.T) {
	// $100,000 at 6% over 30 years monthly = 599.55
	pmt := Payment(100000, 0.06/12, 360)
	if math.Abs(pmt-599.55) > 0.01 {
		t.Errorf("Expected payment 599.55, got %f", pmt)
	}
	if got := Payment(1200, 0, 12); got != 100 {
		t.Errorf("Zero-rate payment expected 100, got %f", got)
	}
	if got := Payment(1000, 0.01, 0); got != 0 {
		t.Errorf("Zero periods should return 0, got %f", got)
	}
}

func TestRemainingBalance(t *testing.T) {
	p, r, n := 100000.0, 0.06/12, 360
	pmt := Payment(p, r, n)

	// Walk the schedule manually and compare with the closed form.
	bal := p
	for k := 1; k <= 120; k++ {
		bal -= pmt - bal*r
	}
	got := RemainingBalance(p, r, n, 120)
	if math.Abs(got-bal) > 1e-6 {
		t.Errorf("Expected balance %f, got %f", bal, got)
	}
	if RemainingBalance(p, r, n, 360) != 0 {
		t.Error("Fully paid loan should have zero balance")
	}
	if got := RemainingBalance(1200, 0, 12, 3); math.Abs(got-900) > 1e-9 {
		t.Errorf("Zero-rate balance expected 900, got %f", got)
	}
}

func TestGrowAndSafeDiv(t *testing.T) {
	if got := Grow(100, 0.03, 2); math.Abs(got-106.09) > 1e-9 {
		t.Errorf("Expected 106.09, got %f", got)
	}
	if SafeDiv(1, 0) != 0 {
		t.Error("SafeDiv by zero should be 0")
	}
}
