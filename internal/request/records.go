package request

import (
	"time"

	"carrier-rate-engine/internal/address"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/units"
)

// Item is one stored line item inside a package.
type Item struct {
	Description         string              `json:"description" validate:"required"`
	Quantity            int                 `json:"quantity" validate:"gte=0"`
	UnitValue           float64             `json:"unit_value" validate:"gte=0"`
	UnitWeight          float64             `json:"unit_weight" validate:"gte=0"`
	WeightUnit          units.WeightUnit    `json:"weight_unit"`
	Length              float64             `json:"length" validate:"gte=0"`
	Width               float64             `json:"width" validate:"gte=0"`
	Height              float64             `json:"height" validate:"gte=0"`
	DimensionUnit       units.DimensionUnit `json:"dimension_unit"`
	HSCode              *string             `json:"hs_code,omitempty"`
	CountryOfOrigin     string              `json:"country_of_origin,omitempty" validate:"omitempty,iso2"`
	Material            *string             `json:"material,omitempty"`
	ExportControlNumber *string             `json:"export_control_number,omitempty"`

	Dangerous  bool   `json:"dangerous"`
	UNCode     string `json:"un_code,omitempty"`
	DGClass    string `json:"dg_class,omitempty"`
	Lithium    bool   `json:"lithium"`
	Fragile    bool   `json:"fragile"`
	Oversized  bool   `json:"oversized"`
	Overweight bool   `json:"overweight"`
}

// Package is one outer box with the billable weight computed upstream.
type Package struct {
	Items          []Item           `json:"items" validate:"required,min=1,dive"`
	BillableWeight float64          `json:"billable_weight"`
	WeightUnit     units.WeightUnit `json:"weight_unit"`
	DeclaredValue  *float64         `json:"declared_value,omitempty"`
	TypeCode       string           `json:"type_code,omitempty"`
}

// Shipment is the stored shipment the builder turns into a ShipmentRequest.
type Shipment struct {
	Reference        string
	Purpose          shipping.Purpose
	Recipient        shipping.Party
	RecipientCountry *address.CountryInfo
	Packages         []Package

	CarrierServiceID *string
	LegacyOptionID   *string
	PackagingType    string

	Currency      string
	DeclaredValue *float64
	Compliance    shipping.Compliance
	ExportReason  string
	AddonCodes    []string
	ShipDate      time.Time
	Description   string
}

// OriginDefaults is the sender used when a shipment does not name one.
type OriginDefaults struct {
	Contact  shipping.Contact
	Address  shipping.Address
	Currency string
}

// Items returns every item across all packages.
func (s *Shipment) Items() []Item {
	var items []Item
	for _, p := range s.Packages {
		items = append(items, p.Items...)
	}
	return items
}
