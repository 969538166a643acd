package operating

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestDeriveWithExpenseLines(t *testing.T) {
	a := Assumptions{
		GrossPotentialRent: 1000000,
		OtherIncome:        50000,
		VacancyRate:        0.05,
		CreditLossRate:     0.01,
		Expenses: []ExpenseLine{
			{Name: "Property Taxes", Amount: 120000},
			{Name: "Insurance", Amount: 30000},
			{Name: "Repairs", Amount: 50000},
		},
		ManagementFeeRate: 0.04,
		ReservesPerUnit:   250,
		Units:             40,
	}
	s := Derive(a)

	// EGI = 1,000,000 - 50,000 - 10,000 + 50,000 = 990,000
	if !approx(s.EffectiveGrossIncome, 990000) {
		t.Errorf("Expected EGI 990000, got %f", s.EffectiveGrossIncome)
	}
	if !approx(s.ManagementFee, 39600) {
		t.Errorf("Expected management fee 39600, got %f", s.ManagementFee)
	}
	if !approx(s.Reserves, 10000) {
		t.Errorf("Expected reserves 10000, got %f", s.Reserves)
	}
	// Expenses = 200,000 + 39,600 + 10,000 = 249,600 -> NOI 740,400
	if !approx(s.NOI, 740400) {
		t.Errorf("Expected NOI 740400, got %f", s.NOI)
	}
	if !approx(s.ExpenseRatio, 249600.0/990000.0) {
		t.Errorf("Unexpected expense ratio %f", s.ExpenseRatio)
	}
	if a.TotalFixedExpenses() != 200000 {
		t.Errorf("Expected fixed expenses 200000, got %f", a.TotalFixedExpenses())
	}
}

func TestDeriveWithExpenseRatio(t *testing.T) {
	s := Derive(Assumptions{GrossPotentialRent: 100000, VacancyRate: 0.10, ExpenseRatio: 0.40})
	if !approx(s.EffectiveGrossIncome, 90000) {
		t.Errorf("Expected EGI 90000, got %f", s.EffectiveGrossIncome)
	}
	if !approx(s.NOI, 54000) {
		t.Errorf("Expected NOI 54000, got %f", s.NOI)
	}
}

func TestDeriveEmpty(t *testing.T) {
	s := Derive(Assumptions{})
	if s.NOI != 0 || s.ExpenseRatio != 0 {
		t.Errorf("Empty assumptions should produce zero statement, got %+v", s)
	}
}

func TestCompute(t *testing.T) {
	s := Statement{GrossPotentialRent: 1000000, OtherIncome: 50000, TotalExpenses: 249600, NOI: 740400}
	m := Compute(s, Financials{
		PurchasePrice:     12000000,
		AnnualDebtService: 540000,
		LoanAmount:        8400000,
		Equity:            3800000,
		Units:             40,
		SquareFeet:        36000,
	})

	checks := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"cap rate", m.CapRate, 740400.0 / 12000000},
		{"dscr", m.DSCR, 740400.0 / 540000},
		{"cfbt", m.CashFlowBeforeTax, 200400},
		{"cash on cash", m.CashOnCash, 200400.0 / 3800000},
		{"debt yield", m.DebtYield, 740400.0 / 8400000},
		{"ltv", m.LTV, 0.70},
		{"break-even", m.BreakEvenOccupancy, (249600.0 + 540000) / 1050000},
		{"grm", m.GrossRentMultiplier, 12},
		{"per unit", m.PricePerUnit, 300000},
		{"per sf", m.PricePerSquareFoot, 12000000.0 / 36000},
	}
	for _, c := range checks {
		if !approx(c.got, c.expected) {
			t.Errorf("%s: expected %f, got %f", c.name, c.expected, c.got)
		}
	}
	if !m.HasDebt {
		t.Error("Expected HasDebt")
	}
}

func TestComputeAllCash(t *testing.T) {
	m := Compute(Statement{NOI: 50000, GrossPotentialRent: 80000}, Financials{PurchasePrice: 1000000, Equity: 1000000})
	if m.DSCR != 0 || m.HasDebt {
		t.Errorf("All-cash deal should report DSCR 0 and no debt, got %f %v", m.DSCR, m.HasDebt)
	}
	if !approx(m.CashOnCash, m.CapRate) {
		t.Errorf("All-cash CoC should equal cap rate: %f vs %f", m.CashOnCash, m.CapRate)
	}
	if math.IsInf(m.DebtYield, 0) || math.IsNaN(m.DebtYield) {
		t.Error("Debt yield must not be Inf/NaN")
	}
}

func TestImpliedValue(t *testing.T) {
	if !approx(ImpliedValue(600000, 0.06), 10000000) {
		t.Error("Expected 10M implied value")
	}
	if ImpliedValue(1, 0) != 0 {
		t.Error("Zero cap rate should return 0")
	}
}
