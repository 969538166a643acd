// Package tax projects straight-line depreciation, annual taxable income
// with suspended passive losses, and the tax due on sale.
package tax

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecovery is returned for an unusable depreciation basis.
var ErrInvalidRecovery = errors.New("invalid depreciation basis")

// Recovery periods in years.
const (
	ResidentialRecovery = 27.5
	CommercialRecovery  = 39.0
)

// Basis describes the depreciable asset.
type Basis struct {
	Cost                 float64 `json:"cost" yaml:"cost"`
	LandPercent          float64 `json:"land_percent" yaml:"land_percent"`
	RecoveryYears        float64 `json:"recovery_years" yaml:"recovery_years"`
	PlacedInServiceMonth int     `json:"placed_in_service_month" yaml:"placed_in_service_month"` // 1-12, 0 means January
}

// RecoveryPeriod maps a property type to its recovery period.
// Anything not residential rental is treated as nonresidential real property.
func RecoveryPeriod(propertyType string) float64 {
	switch strings.ToLower(strings.TrimSpace(propertyType)) {
	case "residential", "multifamily", "multi-family", "apartment", "single_family", "sfr", "duplex":
		return ResidentialRecovery
	default:
		return CommercialRecovery
	}
}

// Depreciable is the cost net of land.
func (b Basis) Depreciable() float64 {
	return b.Cost * (1 - b.LandPercent)
}

// Depreciation returns the straight-line deduction for each of the first
// `years` years. Year 1 uses the mid-month convention and cumulative
// depreciation never exceeds the depreciable basis.
func Depreciation(b Basis, years int) ([]float64, error) {
	month := b.PlacedInServiceMonth
	if month == 0 {
		month = 1
	}
	switch {
	case b.Cost < 0:
		return nil, fmt.Errorf("%w: cost cannot be negative", ErrInvalidRecovery)
	case b.LandPercent < 0 || b.LandPercent >= 1:
		return nil, fmt.Errorf("%w: land percent %.2f outside [0, 1)", ErrInvalidRecovery, b.LandPercent)
	case b.RecoveryYears <= 0:
		return nil, fmt.Errorf("%w: recovery period must be positive", ErrInvalidRecovery)
	case month < 1 || month > 12:
		return nil, fmt.Errorf("%w: placed-in-service month %d", ErrInvalidRecovery, month)
	}

	depreciable := b.Depreciable()
	annual := depreciable / b.RecoveryYears
	out := make([]float64, years)

	remaining := depreciable
	for y := 0; y < years; y++ {
		d := annual
		if y == 0 {
			// Half a month for the month placed in service
			d = annual * (12.5 - float64(month)) / 12
		}
		if d > remaining {
			d = remaining
		}
		out[y] = d
		remaining -= d
	}
	return out, nil
}
