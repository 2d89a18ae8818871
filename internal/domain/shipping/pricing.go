package shipping

import "strings"

type AddonPriceType string

const (
	AddonPriceFixed       AddonPriceType = "fixed"
	AddonPricePercentage  AddonPriceType = "percentage"
	AddonPriceCarrierRate AddonPriceType = "carrier_rate"
)

const CarrierScopeAll = "all"

// AddonDefinition is an admin-configured value-added service. It is read-only
// to the pricing engine.
type AddonDefinition struct {
	Code                     string         `json:"code"`
	Name                     string         `json:"name"`
	CarrierScope             string         `json:"carrier_scope"`
	PriceType                AddonPriceType `json:"price_type"`
	PriceValue               *float64       `json:"price_value,omitempty"`
	FallbackPrice            *float64       `json:"fallback_price,omitempty"`
	UseFallback              bool           `json:"use_fallback"`
	Currency                 string         `json:"currency"`
	RequiresValueDeclaration bool           `json:"requires_value_declaration"`
	MinDeclaredValue         *float64       `json:"min_declared_value,omitempty"`
	MaxDeclaredValue         *float64       `json:"max_declared_value,omitempty"`
	AllowedServices          []string       `json:"allowed_services,omitempty"`
	IncompatibleAddons       []string       `json:"incompatible_addons,omitempty"`
	Active                   bool           `json:"active"`
}

func (a AddonDefinition) AppliesToCarrier(carrier CarrierCode) bool {
	scope := strings.ToLower(strings.TrimSpace(a.CarrierScope))
	return scope == "" || scope == CarrierScopeAll || scope == string(carrier)
}

type MarkupType string

const (
	MarkupPercentage MarkupType = "percentage"
	MarkupFixed      MarkupType = "fixed"
)

// MarkupRule is an admin-configured adjustment on top of a base carrier rate.
// Nil scope filters match everything.
type MarkupRule struct {
	Name               string       `json:"name"`
	Type               MarkupType   `json:"type"`
	Value              float64      `json:"value"`
	Carrier            *CarrierCode `json:"carrier,omitempty"`
	ServiceCode        *string      `json:"service_code,omitempty"`
	MinWeight          *float64     `json:"min_weight,omitempty"`
	MaxWeight          *float64     `json:"max_weight,omitempty"`
	DestinationCountry *string      `json:"destination_country,omitempty"`
	Priority           int          `json:"priority"`
	Active             bool         `json:"active"`
}

type Direction string

const (
	DirectionDomestic      Direction = "domestic"
	DirectionInternational Direction = "international"
	DirectionBoth          Direction = "both"
)

func (d Direction) Serves(international bool) bool {
	switch d {
	case DirectionBoth, "":
		return true
	case DirectionInternational:
		return international
	default:
		return !international
	}
}

type FallbackPricingType string

const (
	FallbackFlat    FallbackPricingType = "flat"
	FallbackBracket FallbackPricingType = "bracket"
)

type WeightBracket struct {
	MaxWeightLb float64 `json:"max_weight_lb"`
	Price       float64 `json:"price"`
}

// FallbackPricing prices a service offline, either flat or by weight bracket.
// Weights above the last bracket add PerLbOver for every extra pound.
type FallbackPricing struct {
	Type      FallbackPricingType `json:"type"`
	FlatPrice float64             `json:"flat_price,omitempty"`
	Brackets  []WeightBracket     `json:"brackets,omitempty"`
	PerLbOver float64             `json:"per_lb_over,omitempty"`
	Currency  string              `json:"currency,omitempty"`
}

// CarrierServiceDescriptor describes what one carrier service accepts.
// Weight ceilings are in pounds, dimension ceilings in inches.
type CarrierServiceDescriptor struct {
	Carrier               CarrierCode      `json:"carrier"`
	ServiceCode           string           `json:"service_code"`
	ServiceName           string           `json:"service_name"`
	Direction             Direction        `json:"direction"`
	MaxWeightLb           *float64         `json:"max_weight_lb,omitempty"`
	MaxLengthIn           *float64         `json:"max_length_in,omitempty"`
	MaxDeclaredValue      *float64         `json:"max_declared_value,omitempty"`
	AcceptsDangerousGoods bool             `json:"accepts_dangerous_goods"`
	AcceptsLithium        bool             `json:"accepts_lithium"`
	AcceptsFragile        bool             `json:"accepts_fragile"`
	Freight               bool             `json:"freight"`
	MinFreightWeightLb    *float64         `json:"min_freight_weight_lb,omitempty"`
	Fallback              *FallbackPricing `json:"fallback,omitempty"`
	Active                bool             `json:"active"`
}

// ConfigSnapshot is the read-only view of admin configuration used for one request.
type ConfigSnapshot struct {
	Addons      []AddonDefinition
	MarkupRules []MarkupRule
	Services    []CarrierServiceDescriptor
	Commissions map[CarrierCode]float64
}
