// Package market scores a rental market from demographic and housing data
// and blends it with deal-level signals into an investment recommendation.
package market

// Data is the raw market snapshot. Rates are decimals (0.02 = 2%).
// A zero value means the input is unavailable.
type Data struct {
	Name                  string  `json:"name" yaml:"name"`
	PopulationGrowth      float64 `json:"population_growth" yaml:"population_growth"`
	JobGrowth             float64 `json:"job_growth" yaml:"job_growth"`
	MedianHouseholdIncome float64 `json:"median_household_income" yaml:"median_household_income"`
	UnemploymentRate      float64 `json:"unemployment_rate" yaml:"unemployment_rate"`
	MedianRent            float64 `json:"median_rent" yaml:"median_rent"`           // monthly
	FairMarketRent        float64 `json:"fair_market_rent" yaml:"fair_market_rent"` // HUD FMR, monthly
	HomeValueIndex        float64 `json:"home_value_index" yaml:"home_value_index"` // ZHVI
	HomeValueGrowth       float64 `json:"home_value_growth" yaml:"home_value_growth"`
	RentGrowth            float64 `json:"rent_growth" yaml:"rent_growth"`
	VacancyRate           float64 `json:"vacancy_rate" yaml:"vacancy_rate"`
}

// Factor names, also the keys of Weights.
const (
	FactorPopulationGrowth = "population_growth"
	FactorJobGrowth        = "job_growth"
	FactorMedianIncome     = "median_income"
	FactorUnemployment     = "unemployment"
	FactorRentGrowth       = "rent_growth"
	FactorPriceToRent      = "price_to_rent"
	FactorFMRPremium       = "fmr_premium"
	FactorVacancy          = "vacancy"
	FactorHomeValueGrowth  = "home_value_growth"
)

// Weights maps factor name to relative weight.
type Weights map[string]float64

// DefaultWeights sums to 100.
func DefaultWeights() Weights {
	return Weights{
		FactorPopulationGrowth: 15,
		FactorJobGrowth:        20,
		FactorMedianIncome:     10,
		FactorUnemployment:     10,
		FactorRentGrowth:       15,
		FactorPriceToRent:      10,
		FactorFMRPremium:       5,
		FactorVacancy:          10,
		FactorHomeValueGrowth:  5,
	}
}

// Merge overlays non-negative overrides onto w and returns a new map.
func (w Weights) Merge(overrides map[string]float64) Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	for k, v := range overrides {
		if v >= 0 {
			out[k] = v
		}
	}
	return out
}

// Factor is one normalized input.
type Factor struct {
	Name         string  `json:"name"`
	Raw          float64 `json:"raw"`
	Normalized   float64 `json:"normalized"` // 0..1, 1 is best
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"` // points out of 100
}

// MarketScore is the scored market.
type MarketScore struct {
	Market   string   `json:"market"`
	Factors  []Factor `json:"factors"`
	Score    float64  `json:"score"`    // 0..100
	Coverage float64  `json:"coverage"` // share of total weight with data
	Grade    string   `json:"grade"`
}

// factorRange is the clamped normalization band for one factor.
type factorRange struct {
	lo, hi  float64
	inverse bool // lower raw values are better
}

var ranges = map[string]factorRange{
	FactorPopulationGrowth: {lo: -0.01, hi: 0.03},
	FactorJobGrowth:        {lo: -0.01, hi: 0.04},
	FactorMedianIncome:     {lo: 35000, hi: 120000},
	FactorUnemployment:     {lo: 0.02, hi: 0.10, inverse: true},
	FactorRentGrowth:       {lo: -0.01, hi: 0.06},
	FactorPriceToRent:      {lo: 10, hi: 30, inverse: true},
	FactorFMRPremium:       {lo: -0.20, hi: 0.20},
	FactorVacancy:          {lo: 0.03, hi: 0.12, inverse: true},
	FactorHomeValueGrowth:  {lo: -0.02, hi: 0.08},
}

func (r factorRange) normalize(v float64) float64 {
	n := clamp((v-r.lo)/(r.hi-r.lo), 0, 1)
	if r.inverse {
		return 1 - n
	}
	return n
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
