package market

import (
	"math"
	"testing"
)

func strongMarket() Data {
	return Data{
		Name:                  "Boise, ID",
		PopulationGrowth:      0.03,
		JobGrowth:             0.04,
		MedianHouseholdIncome: 120000,
		UnemploymentRate:      0.02,
		MedianRent:            1000,
		FairMarketRent:        1200,
		HomeValueIndex:        120000,
		HomeValueGrowth:       0.08,
		RentGrowth:            0.06,
		VacancyRate:           0.03,
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestScoreMarketAllFactorsAtBest(t *testing.T) {
	s := ScoreMarket(strongMarket(), nil)

	if !approx(s.Score, 100) || s.Grade != "A" {
		t.Errorf("Expected 100/A, got %f/%s", s.Score, s.Grade)
	}
	if len(s.Factors) != 9 || !approx(s.Coverage, 1) {
		t.Errorf("Expected 9 factors at full coverage, got %d / %f", len(s.Factors), s.Coverage)
	}

	var sum float64
	for _, f := range s.Factors {
		sum += f.Contribution
		if f.Name == FactorPriceToRent && !approx(f.Raw, 10) {
			t.Errorf("Price-to-rent expected 10, got %f", f.Raw)
		}
		if f.Name == FactorFMRPremium && !approx(f.Raw, 0.2) {
			t.Errorf("FMR premium expected 0.2, got %f", f.Raw)
		}
	}
	if !approx(sum, s.Score) {
		t.Errorf("Contributions %f should sum to score %f", sum, s.Score)
	}
}

func TestScoreMarketSkipsMissingInputs(t *testing.T) {
	s := ScoreMarket(Data{JobGrowth: 0.015}, nil)

	if len(s.Factors) != 1 {
		t.Fatalf("Expected only job growth, got %d factors", len(s.Factors))
	}
	if !approx(s.Score, 50) || s.Grade != "C" {
		t.Errorf("Expected 50/C, got %f/%s", s.Score, s.Grade)
	}
	if !approx(s.Coverage, 0.20) {
		t.Errorf("Expected 20%% coverage, got %f", s.Coverage)
	}
}

func TestScoreMarketClampsAndInverts(t *testing.T) {
	s := ScoreMarket(Data{JobGrowth: 0.5, VacancyRate: 0.30}, nil)
	for _, f := range s.Factors {
		switch f.Name {
		case FactorJobGrowth:
			if f.Normalized != 1 {
				t.Errorf("Job growth should clamp to 1, got %f", f.Normalized)
			}
		case FactorVacancy:
			if f.Normalized != 0 {
				t.Errorf("High vacancy should score 0, got %f", f.Normalized)
			}
		}
	}
}

func TestScoreMarketEmpty(t *testing.T) {
	s := ScoreMarket(Data{Name: "Nowhere"}, nil)
	if s.Score != 0 || s.Grade != "F" || s.Coverage != 0 || len(s.Factors) != 0 {
		t.Errorf("Unexpected empty score %+v", s)
	}
}

func TestScoreMarketWeightOverride(t *testing.T) {
	w := DefaultWeights().Merge(map[string]float64{FactorJobGrowth: 0})
	s := ScoreMarket(Data{PopulationGrowth: 0.03, JobGrowth: -0.01}, w)
	if !approx(s.Score, 100) {
		t.Errorf("Zero-weight factor should be ignored, got %f", s.Score)
	}
	if DefaultWeights()[FactorJobGrowth] != 20 {
		t.Error("Merge must not mutate the defaults")
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "A"}, {80, "A"}, {79.9, "B"}, {65, "B"}, {50, "C"}, {35, "D"}, {34.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if got := Grade(tt.score); got != tt.want {
			t.Errorf("Grade(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestCalculateInvestmentScore(t *testing.T) {
	m := ScoreMarket(strongMarket(), nil)

	tests := []struct {
		name      string
		deal      *DealSignals
		wantScore float64
		wantRec   Recommendation
	}{
		{"market only", nil, 100, StrongBuy},
		{"strong deal", &DealSignals{CapRate: 0.09, DSCR: 1.6, CashOnCash: 0.12}, 100, StrongBuy},
		{"middling deal", &DealSignals{CapRate: 0.065, DSCR: 1.3, CashOnCash: 0.06}, 75, Buy},
		{"empty signals", &DealSignals{}, 100, StrongBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateInvestmentScore(m, tt.deal)
			if !approx(got.Score, tt.wantScore) {
				t.Errorf("Expected score %f, got %f", tt.wantScore, got.Score)
			}
			if got.Recommendation != tt.wantRec {
				t.Errorf("Expected %s, got %s", tt.wantRec, got.Recommendation)
			}
		})
	}
}

func TestCalculateInvestmentScoreNegativeLeverageForcesPass(t *testing.T) {
	m := ScoreMarket(strongMarket(), nil)
	got := CalculateInvestmentScore(m, &DealSignals{CapRate: 0.09, DSCR: 0.9, CashOnCash: 0.12})

	if got.Recommendation != Pass {
		t.Errorf("DSCR below 1 must force Pass, got %s", got.Recommendation)
	}
	if got.Score < 80 {
		t.Errorf("Score itself should stay high, got %f", got.Score)
	}
}

func TestCalculateInvestmentScoreThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  Recommendation
	}{
		{80, StrongBuy}, {65, Buy}, {64.99, Hold}, {50, Hold}, {49.99, Pass},
	}
	for _, tt := range tests {
		got := CalculateInvestmentScore(MarketScore{Score: tt.score}, nil)
		if got.Recommendation != tt.want {
			t.Errorf("score %v: expected %s, got %s", tt.score, tt.want, got.Recommendation)
		}
	}
}
