package market

import (
	"fmt"
	"sort"
)

// rawFactors derives the raw factor values in a stable order, skipping
// inputs that are unavailable.
func rawFactors(d Data) []Factor {
	var out []Factor
	add := func(name string, v float64, ok bool) {
		if ok {
			out = append(out, Factor{Name: name, Raw: v})
		}
	}

	add(FactorPopulationGrowth, d.PopulationGrowth, d.PopulationGrowth != 0)
	add(FactorJobGrowth, d.JobGrowth, d.JobGrowth != 0)
	add(FactorMedianIncome, d.MedianHouseholdIncome, d.MedianHouseholdIncome > 0)
	add(FactorUnemployment, d.UnemploymentRate, d.UnemploymentRate > 0)
	add(FactorRentGrowth, d.RentGrowth, d.RentGrowth != 0)
	if d.HomeValueIndex > 0 && d.MedianRent > 0 {
		add(FactorPriceToRent, d.HomeValueIndex/(12*d.MedianRent), true)
	}
	if d.FairMarketRent > 0 && d.MedianRent > 0 {
		add(FactorFMRPremium, d.FairMarketRent/d.MedianRent-1, true)
	}
	add(FactorVacancy, d.VacancyRate, d.VacancyRate > 0)
	add(FactorHomeValueGrowth, d.HomeValueGrowth, d.HomeValueGrowth != 0)
	return out
}

// ScoreMarket computes the weighted 0-100 market score.
//
//	score = 100 × Σ(weight × normalized) / Σ(weight)
//
// Factors without data drop out along with their weight. A nil weights map
// uses DefaultWeights.
func ScoreMarket(d Data, weights Weights) MarketScore {
	if weights == nil {
		weights = DefaultWeights()
	}

	var totalWeight float64
	for name := range ranges {
		totalWeight += weights[name]
	}

	res := MarketScore{Market: d.Name, Factors: []Factor{}}
	var usedWeight, weighted float64
	for _, f := range rawFactors(d) {
		w := weights[f.Name]
		if w <= 0 {
			continue
		}
		f.Weight = w
		f.Normalized = ranges[f.Name].normalize(f.Raw)
		usedWeight += w
		weighted += w * f.Normalized
		res.Factors = append(res.Factors, f)
	}

	if usedWeight > 0 {
		res.Score = 100 * weighted / usedWeight
		for i := range res.Factors {
			res.Factors[i].Contribution = 100 * res.Factors[i].Weight * res.Factors[i].Normalized / usedWeight
		}
	}
	if totalWeight > 0 {
		res.Coverage = usedWeight / totalWeight
	}
	res.Grade = Grade(res.Score)
	return res
}

// Grade maps a 0-100 score to a letter.
func Grade(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 65:
		return "B"
	case score >= 50:
		return "C"
	case score >= 35:
		return "D"
	default:
		return "F"
	}
}

// Recommendation is the categorical investment call.
type Recommendation string

const (
	StrongBuy Recommendation = "Strong Buy"
	Buy       Recommendation = "Buy"
	Hold      Recommendation = "Hold"
	Pass      Recommendation = "Pass"
)

// DealSignals are the property-level inputs to the investment score.
type DealSignals struct {
	CapRate    float64 `json:"cap_rate" yaml:"cap_rate"`
	DSCR       float64 `json:"dscr" yaml:"dscr"`
	CashOnCash float64 `json:"cash_on_cash" yaml:"cash_on_cash"`
}

var dealRanges = []struct {
	name string
	r    factorRange
	get  func(DealSignals) float64
}{
	{"cap_rate", factorRange{lo: 0.04, hi: 0.09}, func(s DealSignals) float64 { return s.CapRate }},
	{"dscr", factorRange{lo: 1.0, hi: 1.6}, func(s DealSignals) float64 { return s.DSCR }},
	{"cash_on_cash", factorRange{lo: 0, hi: 0.12}, func(s DealSignals) float64 { return s.CashOnCash }},
}

// InvestmentScore blends market and deal quality.
type InvestmentScore struct {
	Score           float64        `json:"score"`
	MarketComponent float64        `json:"market_component"`
	DealComponent   float64        `json:"deal_component"`
	HasDeal         bool           `json:"has_deal"`
	Recommendation  Recommendation `json:"recommendation"`
	Rationale       []string       `json:"rationale"`
}

// dealComponent scores the deal signals 0-100 with equal weights.
// ok is false when no signal is present.
func dealComponent(s DealSignals) (score float64, ok bool) {
	var n int
	var sum float64
	for _, dr := range dealRanges {
		v := dr.get(s)
		if v == 0 {
			continue
		}
		sum += dr.r.normalize(v)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return 100 * sum / float64(n), true
}

// CalculateInvestmentScore blends the market score 50/50 with the deal
// component when deal signals are given, and uses the market alone
// otherwise. A DSCR below 1.0 always yields Pass.
func CalculateInvestmentScore(m MarketScore, deal *DealSignals) InvestmentScore {
	res := InvestmentScore{MarketComponent: m.Score, Score: m.Score}

	if deal != nil {
		if dc, ok := dealComponent(*deal); ok {
			res.DealComponent = dc
			res.HasDeal = true
			res.Score = 0.5*m.Score + 0.5*dc
		}
	}

	res.Recommendation = recommend(res.Score)
	res.Rationale = rationale(m)

	if deal != nil && deal.DSCR > 0 && deal.DSCR < 1 {
		res.Recommendation = Pass
		res.Rationale = append(res.Rationale, fmt.Sprintf("DSCR %.2fx does not cover debt service", deal.DSCR))
	}
	return res
}

func recommend(score float64) Recommendation {
	switch {
	case score >= 80:
		return StrongBuy
	case score >= 65:
		return Buy
	case score >= 50:
		return Hold
	default:
		return Pass
	}
}

// rationale lists the strongest and weakest market factors.
func rationale(m MarketScore) []string {
	factors := append([]Factor(nil), m.Factors...)
	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Normalized > factors[j].Normalized })

	out := []string{}
	for _, f := range factors {
		switch {
		case f.Normalized >= 0.7:
			out = append(out, fmt.Sprintf("strength: %s (%.3g)", f.Name, f.Raw))
		case f.Normalized <= 0.3:
			out = append(out, fmt.Sprintf("weakness: %s (%.3g)", f.Name, f.Raw))
		}
	}
	return out
}
