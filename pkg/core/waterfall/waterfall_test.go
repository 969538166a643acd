package waterfall

import (
	"errors"
	"math"
	"testing"
)

func twoTier() Structure {
	return Structure{
		LPEquity:        90,
		GPEquity:        10,
		PreferredReturn: 0.10,
		Tiers: []Tier{
			{HurdleIRR: 0.15, LPSplit: 0.8, GPSplit: 0.2},
			{LPSplit: 0.6, GPSplit: 0.4},
		},
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDistributePrefAndCapitalOnly(t *testing.T) {
	res, err := Distribute(twoTier(), []float64{110})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := res.Distributions[0]
	if !approx(d.LP, 99) || !approx(d.GP, 11) {
		t.Errorf("Expected LP 99 / GP 11, got %f / %f", d.LP, d.GP)
	}
	if !approx(res.Summary.LPIRR, 0.10) {
		t.Errorf("Expected LP IRR 10%%, got %f", res.Summary.LPIRR)
	}
	if !approx(res.Summary.GPPromote, 0) {
		t.Errorf("No promote expected at the pref, got %f", res.Summary.GPPromote)
	}
}

func TestDistributePromoteTiers(t *testing.T) {
	res, err := Distribute(twoTier(), []float64{130})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := res.Distributions[0]
	// pref 10 + capital 100, then 5.625 to reach 15% for the LP, 14.375 residual at 60/40
	want := []TierAmount{
		{Name: "Preferred Return", LP: 9, GP: 1},
		{Name: "Return of Capital", LP: 90, GP: 10},
		{Name: "Tier 1 (15.0% IRR)", LP: 4.5, GP: 1.125},
		{Name: "Residual", LP: 8.625, GP: 5.75},
	}
	if len(d.Tiers) != len(want) {
		t.Fatalf("Expected %d tiers, got %d", len(want), len(d.Tiers))
	}
	for i, w := range want {
		got := d.Tiers[i]
		if got.Name != w.Name || !approx(got.LP, w.LP) || !approx(got.GP, w.GP) {
			t.Errorf("Tier %d: expected %+v, got %+v", i, w, got)
		}
	}
	if !approx(d.LP+d.GP, 130) {
		t.Errorf("Distributions must sum to cash, got %f", d.LP+d.GP)
	}
	if !approx(res.Summary.GPPromote, 17.875-13) {
		t.Errorf("Expected promote 4.875, got %f", res.Summary.GPPromote)
	}
}

func TestDistributeCompoundingPref(t *testing.T) {
	s := Structure{LPEquity: 100, PreferredReturn: 0.10}

	simple, err := Distribute(s, []float64{0, 121})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := simple.Distributions[1].Tiers[0].LP; !approx(got, 20) {
		t.Errorf("Simple pref expected 20, got %f", got)
	}

	s.CompoundPref = true
	comp, err := Distribute(s, []float64{0, 121})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := comp.Distributions[1].Tiers[0].LP; !approx(got, 21) {
		t.Errorf("Compounding pref expected 21, got %f", got)
	}
	if !approx(comp.Summary.LPIRR, 0.10) {
		t.Errorf("Expected LP IRR 10%%, got %f", comp.Summary.LPIRR)
	}
}

func TestDistributeConservesCash(t *testing.T) {
	s := twoTier()
	s.CompoundPref = true
	flows := []float64{5, 8, 0, 12, 180}

	res, err := Distribute(s, flows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var total float64
	for i, d := range res.Distributions {
		if !approx(d.LP+d.GP, flows[i]) {
			t.Errorf("Period %d: LP+GP %f != cash %f", d.Period, d.LP+d.GP, flows[i])
		}
		total += flows[i]
	}
	if !approx(res.Summary.LPTotal+res.Summary.GPTotal, total) {
		t.Errorf("Totals do not match cash")
	}
	if res.Summary.LPIRR <= 0.10 {
		t.Errorf("LP should clear the 10%% pref, got %f", res.Summary.LPIRR)
	}
	if res.Summary.GPPromote <= 0 {
		t.Errorf("Expected a positive promote, got %f", res.Summary.GPPromote)
	}
}

func TestDistributeNoResidualTierSplitsProRata(t *testing.T) {
	s := Structure{LPEquity: 75, GPEquity: 25}
	res, err := Distribute(s, []float64{200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := res.Distributions[0].Tiers[len(res.Distributions[0].Tiers)-1]
	if last.Name != "Residual (pro rata)" || !approx(last.LP, 75) || !approx(last.GP, 25) {
		t.Errorf("Unexpected residual %+v", last)
	}
}

func TestDistributeInvalid(t *testing.T) {
	tests := []struct {
		name  string
		s     Structure
		flows []float64
	}{
		{"no LP equity", Structure{GPEquity: 10}, nil},
		{"splits do not sum", Structure{LPEquity: 1, Tiers: []Tier{{HurdleIRR: 0.1, LPSplit: 0.8, GPSplit: 0.3}}}, nil},
		{"hurdle below pref", Structure{LPEquity: 1, PreferredReturn: 0.08, Tiers: []Tier{{HurdleIRR: 0.06, LPSplit: 0.8, GPSplit: 0.2}}}, nil},
		{"hurdles not increasing", Structure{LPEquity: 1, Tiers: []Tier{
			{HurdleIRR: 0.12, LPSplit: 0.8, GPSplit: 0.2},
			{HurdleIRR: 0.10, LPSplit: 0.7, GPSplit: 0.3},
		}}, nil},
		{"residual not last", Structure{LPEquity: 1, Tiers: []Tier{
			{LPSplit: 0.5, GPSplit: 0.5},
			{HurdleIRR: 0.10, LPSplit: 0.7, GPSplit: 0.3},
		}}, nil},
		{"negative cash", twoTier(), []float64{10, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Distribute(tt.s, tt.flows)
			if !errors.Is(err, ErrInvalidStructure) {
				t.Errorf("Expected ErrInvalidStructure, got %v", err)
			}
		})
	}
}
