package booking

import (
	"fmt"
	"math"
)

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the total price in cents for the given parameters.
	Calculate(params PricingParams) (int64, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	MonthlyRateCents int64
	Period           Period
}

// DaysPerMonth is the divisor used to derive a daily rate from a monthly one.
const DaysPerMonth = 30

// ProratedPricingStrategy charges the room's monthly rate prorated per night.
type ProratedPricingStrategy struct{}

// NewProratedPricingStrategy creates a new ProratedPricingStrategy.
func NewProratedPricingStrategy() *ProratedPricingStrategy {
	return &ProratedPricingStrategy{}
}

// Calculate computes the total in cents.
//
// Pricing formula:
//   - Daily rate: monthly rate / 30, rounded to the nearest cent
//   - Total: daily rate x nights
func (s *ProratedPricingStrategy) Calculate(params PricingParams) (int64, error) {
	if params.MonthlyRateCents < 0 {
		return 0, fmt.Errorf("monthly rate cannot be negative")
	}
	nights := params.Period.Nights()
	if nights <= 0 {
		return 0, fmt.Errorf("period must cover at least one night")
	}

	dailyCents := int64(math.Round(float64(params.MonthlyRateCents) / DaysPerMonth))
	return dailyCents * nights, nil
}
