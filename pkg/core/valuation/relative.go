package valuation

import (
	"sort"
)

// Subject holds the property being valued against the comps.
type Subject struct {
	NOI        float64 `json:"noi"`
	Units      int     `json:"units"`
	SquareFeet float64 `json:"square_feet"`
}

// SaleComparable is a closed sale of a similar property.
type SaleComparable struct {
	Name         string  `json:"name" yaml:"name"`
	CapRate      float64 `json:"cap_rate" yaml:"cap_rate"`
	PricePerUnit float64 `json:"price_per_unit" yaml:"price_per_unit"`
	PricePerSF   float64 `json:"price_per_sf" yaml:"price_per_sf"`
}

// CompsResult holds the value ranges (25th and 75th percentile) implied by the comps.
type CompsResult struct {
	CapRateRange   [2]float64 `json:"cap_rate_range"` // Low, High
	ByCapRate      [2]float64 `json:"by_cap_rate"`    // value Low, High
	ByPricePerUnit [2]float64 `json:"by_price_per_unit"`
	ByPricePerSF   [2]float64 `json:"by_price_per_sf"`
	CompCount      int        `json:"comp_count"`
}

// CalculateComps performs the sales comparison approach.
// Comps with a non-positive metric are ignored for that metric.
func CalculateComps(subject Subject, comps []SaleComparable) CompsResult {
	var caps, perUnit, perSF []float64

	for _, c := range comps {
		if c.CapRate > 0 {
			caps = append(caps, c.CapRate)
		}
		if c.PricePerUnit > 0 {
			perUnit = append(perUnit, c.PricePerUnit)
		}
		if c.PricePerSF > 0 {
			perSF = append(perSF, c.PricePerSF)
		}
	}

	res := CompsResult{CompCount: len(comps)}

	cLo, cHi := interquartile(caps)
	res.CapRateRange = [2]float64{cLo, cHi}
	// A higher cap rate implies a lower value
	if cLo > 0 && cHi > 0 {
		res.ByCapRate = [2]float64{DirectCap(subject.NOI, cHi), DirectCap(subject.NOI, cLo)}
	}

	uLo, uHi := interquartile(perUnit)
	res.ByPricePerUnit = [2]float64{uLo * float64(subject.Units), uHi * float64(subject.Units)}

	sLo, sHi := interquartile(perSF)
	res.ByPricePerSF = [2]float64{sLo * subject.SquareFeet, sHi * subject.SquareFeet}

	return res
}

// interquartile returns the 25th and 75th percentile values.
func interquartile(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	lowIdx := int(float64(len(sorted)) * 0.25)
	highIdx := int(float64(len(sorted)) * 0.75)
	if highIdx >= len(sorted) {
		highIdx = len(sorted) - 1
	}
	return sorted[lowIdx], sorted[highIdx]
}
