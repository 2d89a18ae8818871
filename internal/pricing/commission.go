package pricing

import (
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/request"
	"carrier-rate-engine/pkg/money"
)

const DefaultCommissionPercent = 15.0

// ClassificationRates are flat per-item charges by handling class.
type ClassificationRates struct {
	Dangerous float64
	Fragile   float64
	Oversized float64
}

type CommissionCalculator struct {
	percents map[shipping.CarrierCode]float64
	rates    ClassificationRates
}

// NewCommissionCalculator takes only the carriers with an explicit percent;
// the rest use DefaultCommissionPercent.
func NewCommissionCalculator(percents map[shipping.CarrierCode]float64, rates ClassificationRates) *CommissionCalculator {
	copied := make(map[shipping.CarrierCode]float64, len(percents))
	for carrier, pct := range percents {
		copied[carrier] = pct
	}
	return &CommissionCalculator{percents: copied, rates: rates}
}

func (c *CommissionCalculator) Percent(carrier shipping.CarrierCode) float64 {
	if pct, ok := c.percents[carrier]; ok {
		return pct
	}
	return DefaultCommissionPercent
}

// ApplyCommission returns base * (1 + percent/100).
func (c *CommissionCalculator) ApplyCommission(base float64, carrier shipping.CarrierCode) float64 {
	return money.Sum(base, money.Percent(base, c.Percent(carrier)))
}

// ClassificationSurcharge charges each item at most once per category.
func (c *CommissionCalculator) ClassificationSurcharge(items []request.Item) float64 {
	var amounts []float64
	for _, item := range items {
		if item.Dangerous {
			amounts = append(amounts, c.rates.Dangerous)
		}
		if item.Fragile {
			amounts = append(amounts, c.rates.Fragile)
		}
		if item.Oversized {
			amounts = append(amounts, c.rates.Oversized)
		}
	}
	return money.Sum(amounts...)
}
