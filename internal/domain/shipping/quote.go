package shipping

import (
	"encoding/json"
	"time"

	"carrier-rate-engine/pkg/money"
)

// SurchargeLine is one itemized charge beyond the base freight charge.
// AddonCode is nil for carrier codes the engine does not recognize.
type SurchargeLine struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	AddonCode   *string `json:"addon_code"`
}

// RateQuote is one carrier service price in canonical form.
type RateQuote struct {
	Carrier            CarrierCode     `json:"carrier"`
	ServiceType        string          `json:"service_type"`
	ServiceName        string          `json:"service_name"`
	TotalCharge        float64         `json:"total_charge"`
	Currency           string          `json:"currency"`
	EstimatedDelivery  *time.Time      `json:"estimated_delivery,omitempty"`
	TransitDays        *int            `json:"transit_days,omitempty"`
	BaseCharge         *float64        `json:"base_charge,omitempty"`
	Surcharges         *float64        `json:"surcharges,omitempty"`
	SurchargeBreakdown []SurchargeLine `json:"surcharge_breakdown"`
	Raw                json.RawMessage `json:"-"`
}

// ItemizedTotal sums the surcharge lines.
func (q RateQuote) ItemizedTotal() float64 {
	return SumLines(q.SurchargeBreakdown)
}

// LivePrices maps addon codes to the amount the carrier quoted for them.
func (q RateQuote) LivePrices() map[string]float64 {
	prices := make(map[string]float64)
	for _, line := range q.SurchargeBreakdown {
		if line.AddonCode == nil {
			continue
		}
		prices[*line.AddonCode] = money.Sum(prices[*line.AddonCode], line.Amount)
	}
	return prices
}

func SumLines(lines []SurchargeLine) float64 {
	amounts := make([]float64, 0, len(lines))
	for _, line := range lines {
		amounts = append(amounts, line.Amount)
	}
	return money.Sum(amounts...)
}

type Label struct {
	TrackingNumber string `json:"tracking_number"`
	Format         string `json:"format"`
	Content        string `json:"content"`
}

// ShipmentResult is the canonical outcome of a shipment submission.
type ShipmentResult struct {
	Carrier            CarrierCode     `json:"carrier"`
	TrackingNumber     string          `json:"tracking_number"`
	PackageTracking    []string        `json:"package_tracking_numbers"`
	ServiceType        string          `json:"service_type"`
	ServiceName        string          `json:"service_name"`
	TotalCharge        float64         `json:"total_charge"`
	Currency           string          `json:"currency"`
	BaseCharge         *float64        `json:"base_charge,omitempty"`
	Surcharges         *float64        `json:"surcharges,omitempty"`
	SurchargeBreakdown []SurchargeLine `json:"surcharge_breakdown"`
	Labels             []Label         `json:"labels"`
	Documents          []DocumentImage `json:"documents,omitempty"`
	Raw                json.RawMessage `json:"-"`
}
