package ups

import (
	"carrier-rate-engine/internal/carrier/wire"
	"carrier-rate-engine/internal/domain/shipping"
)

const (
	packagingCustomer = "02"
	packagingLetter   = "01"

	serviceGround = "03"
	serviceSaver  = "65"

	dgFullyRegulated  = "FR"
	dgLimitedQuantity = "LQ"

	serviceOptionsCode        = "SERVICE_OPTIONS"
	serviceOptionsDescription = "Service Options"
)

var serviceNames = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"07": "UPS Worldwide Express",
	"08": "UPS Worldwide Expedited",
	"11": "UPS Standard",
	"12": "UPS 3 Day Select",
	"13": "UPS Next Day Air Saver",
	"14": "UPS Next Day Air Early",
	"54": "UPS Worldwide Express Plus",
	"59": "UPS 2nd Day Air A.M.",
	"65": "UPS Worldwide Saver",
}

// charges maps UPS itemized charge codes to canonical addons.
var charges = wire.ChargeTable{
	"100": {AddonCode: shipping.AddonSignatureRequired, Description: "Signature Required"},
	"120": {AddonCode: shipping.AddonAdultSignature, Description: "Adult Signature Required"},
	"190": {AddonCode: shipping.AddonRemoteArea, Description: "Remote Area Surcharge"},
	"199": {AddonCode: shipping.AddonDangerousGoods, Description: "Hazardous Materials"},
	"270": {AddonCode: shipping.AddonResidentialDelivery, Description: "Residential Address"},
	"300": {AddonCode: shipping.AddonSaturdayDelivery, Description: "Saturday Delivery"},
	"375": {AddonCode: shipping.AddonFuelSurcharge, Description: "Fuel Surcharge"},
	"376": {AddonCode: shipping.AddonDeliveryArea, Description: "Delivery Area Surcharge"},
	"400": {AddonCode: shipping.AddonInsurance, Description: "Declared Value"},
	"430": {AddonCode: shipping.AddonAdditionalHandling, Description: "Additional Handling"},
	"432": {AddonCode: shipping.AddonOversize, Description: "Large Package Surcharge"},
	"440": {AddonCode: shipping.AddonPeakSurcharge, Description: "Peak Surcharge"},
}

// Profile returns the UPS request rules.
func Profile() shipping.CarrierProfile {
	return shipping.CarrierProfile{
		Carrier:          shipping.CarrierUPS,
		GenericPackaging: packagingCustomer,
		Packaging:        []string{packagingLetter, packagingCustomer, "03", "04", "21", "24", "25", "2a", "2b", "2c"},
		PackagingSynonyms: map[string]string{
			"envelope": packagingLetter,
			"letter":   packagingLetter,
			"tube":     "03",
			"pak":      "04",
			"box":      "21",
			"custom":   packagingCustomer,
		},
		GroundServices: []string{serviceGround, "11"},
		LegacyOptions: map[string]string{
			"1": "01",
			"2": "02",
			"3": serviceGround,
			"4": "12",
			"5": "07",
			"6": "08",
			"7": serviceSaver,
			"8": "11",
		},
		DomesticDefault:      serviceGround,
		InternationalDefault: serviceSaver,
		FallbackService:      serviceSaver,
		ServiceNames:         serviceNames,
		DangerousGoods: shipping.DangerousGoodsCodes{
			FullyRegulated:  dgFullyRegulated,
			LimitedQuantity: dgLimitedQuantity,
		},
		MaxStreetLength:    35,
		MaxStreetLines:     3,
		StateCountries:     []string{"US", "CA", "PR", "MX"},
		CountryOverrides:   map[string]string{"UK": "GB"},
		LowValueFilingType: "NO EEI 30.37(a)",
		DefaultIncoterm:    "DAP",
	}
}
