package rating

import (
	"time"

	"carrier-rate-engine/internal/address"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/pricing"
	"carrier-rate-engine/internal/request"
)

// Request DTOs

type CountryInput struct {
	Code         string          `json:"code" validate:"required,country"`
	StateAllowed map[string]bool `json:"state_allowed,omitempty"`
}

type ShipmentInput struct {
	Reference        string              `json:"reference" validate:"omitempty,max=64"`
	Recipient        shipping.Party      `json:"recipient" validate:"required"`
	RecipientCountry *CountryInput       `json:"recipient_country,omitempty" validate:"omitempty"`
	Packages         []request.Package   `json:"packages" validate:"required,min=1,dive"`
	PackagingType    string              `json:"packaging_type,omitempty"`
	LegacyOptionID   *string             `json:"legacy_option_id,omitempty"`
	Currency         string              `json:"currency" validate:"omitempty,len=3"`
	DeclaredValue    *float64            `json:"declared_value,omitempty" validate:"omitempty,gte=0"`
	Compliance       shipping.Compliance `json:"compliance"`
	ExportReason     string              `json:"export_reason,omitempty"`
	Addons           []string            `json:"addons,omitempty"`
	ShipDate         *time.Time          `json:"ship_date,omitempty"`
	Description      string              `json:"description,omitempty" validate:"omitempty,max=500"`
}

type RateRequest struct {
	ShipmentInput
	Carrier     *string `json:"carrier,omitempty" validate:"omitempty,carrier"`
	ServiceCode *string `json:"service_code,omitempty"`
}

type ShipRequest struct {
	ShipmentInput
	Carrier     string  `json:"carrier" validate:"required,carrier"`
	ServiceCode *string `json:"service_code,omitempty"`
}

type BillableWeightRequest struct {
	Weight        float64 `json:"weight" validate:"gt=0"`
	WeightUnit    string  `json:"weight_unit" validate:"omitempty,oneof=LB LBS KG KGS lb lbs kg kgs"`
	Length        float64 `json:"length" validate:"gte=0"`
	Width         float64 `json:"width" validate:"gte=0"`
	Height        float64 `json:"height" validate:"gte=0"`
	DimensionUnit string  `json:"dimension_unit" validate:"omitempty,oneof=IN CM in cm"`
}

// Response DTOs

type QuoteResponse struct {
	Carrier                 shipping.CarrierCode     `json:"carrier"`
	ServiceType             string                   `json:"service_type"`
	ServiceName             string                   `json:"service_name"`
	TotalCharge             float64                  `json:"total_charge"`
	Currency                string                   `json:"currency"`
	CarrierCharge           float64                  `json:"carrier_charge"`
	BaseCharge              *float64                 `json:"base_charge,omitempty"`
	Surcharges              *float64                 `json:"surcharges,omitempty"`
	SurchargeBreakdown      []shipping.SurchargeLine `json:"surcharge_breakdown"`
	MarkupAmount            float64                  `json:"markup_amount"`
	CommissionAmount        float64                  `json:"commission_amount"`
	ClassificationSurcharge float64                  `json:"classification_surcharge"`
	AddonCharges            float64                  `json:"addon_charges"`
	EstimatedDelivery       *time.Time               `json:"estimated_delivery,omitempty"`
	TransitDays             *int                     `json:"transit_days,omitempty"`
	AvailableVAS            []pricing.PricedAddon    `json:"available_vas"`
	IsEstimate              bool                     `json:"is_estimate"`
}

type CarrierError struct {
	Carrier shipping.CarrierCode `json:"carrier"`
	Code    string               `json:"code"`
	Message string               `json:"message"`
}

type RateResponse struct {
	QuoteID          string          `json:"quote_id"`
	Reference        string          `json:"reference"`
	BillableWeightLb float64         `json:"billable_weight_lb"`
	Quotes           []QuoteResponse `json:"quotes"`
	Errors           []CarrierError  `json:"errors"`
}

type ShipResponse struct {
	Reference string                   `json:"reference"`
	Shipment  *shipping.ShipmentResult `json:"shipment"`
}

type BillableWeightResponse struct {
	VolumetricWeight float64 `json:"volumetric_weight"`
	BillableWeight   float64 `json:"billable_weight"`
	WeightUnit       string  `json:"weight_unit"`
	BillableWeightLb float64 `json:"billable_weight_lb"`
	Divisor          float64 `json:"divisor"`
}

// QuoteEvent is published after every completed rate shop.
type QuoteEvent struct {
	QuoteID     string                 `json:"quote_id"`
	Reference   string                 `json:"reference"`
	Destination string                 `json:"destination"`
	Quotes      int                    `json:"quotes"`
	Estimates   int                    `json:"estimates"`
	Failed      []string               `json:"failed_carriers"`
	Cheapest    *CheapestQuote         `json:"cheapest,omitempty"`
	QuotedAt    time.Time              `json:"quoted_at"`
	Carriers    []shipping.CarrierCode `json:"carriers"`
}

type CheapestQuote struct {
	Carrier     shipping.CarrierCode `json:"carrier"`
	ServiceType string               `json:"service_type"`
	TotalCharge float64              `json:"total_charge"`
	Currency    string               `json:"currency"`
}

func (in ShipmentInput) toShipment(purpose shipping.Purpose, serviceCode *string) request.Shipment {
	s := request.Shipment{
		Reference:        in.Reference,
		Purpose:          purpose,
		Recipient:        in.Recipient,
		Packages:         in.Packages,
		CarrierServiceID: serviceCode,
		LegacyOptionID:   in.LegacyOptionID,
		PackagingType:    in.PackagingType,
		Currency:         in.Currency,
		DeclaredValue:    in.DeclaredValue,
		Compliance:       in.Compliance,
		ExportReason:     in.ExportReason,
		AddonCodes:       in.Addons,
		Description:      in.Description,
	}
	if in.ShipDate != nil {
		s.ShipDate = *in.ShipDate
	}
	if in.RecipientCountry != nil {
		info := &address.CountryInfo{Code: in.RecipientCountry.Code}
		if len(in.RecipientCountry.StateAllowed) > 0 {
			info.StateAllowed = make(map[shipping.CarrierCode]bool, len(in.RecipientCountry.StateAllowed))
			for carrier, allowed := range in.RecipientCountry.StateAllowed {
				if code, ok := shipping.ParseCarrierCode(carrier); ok {
					info.StateAllowed[code] = allowed
				}
			}
		}
		s.RecipientCountry = info
	}
	return s
}

func toCarrierError(carrier shipping.CarrierCode, code string, err error) CarrierError {
	return CarrierError{Carrier: carrier, Code: code, Message: err.Error()}
}
