package fedex

import (
	"carrier-rate-engine/internal/carrier/wire"
	"carrier-rate-engine/internal/domain/shipping"
)

const (
	packagingYours    = "YOUR_PACKAGING"
	packagingEnvelope = "FEDEX_ENVELOPE"

	serviceGround                = "FEDEX_GROUND"
	serviceInternationalPriority = "FEDEX_INTERNATIONAL_PRIORITY"

	dgHazardous        = "HAZARDOUS_MATERIALS"
	dgLimitedQuantity  = "LIMITED_QUANTITIES_COMMODITIES"
	rateTypeAccount    = "ACCOUNT"
	rateTypePreferred  = "PREFERRED_ACCOUNT_SHIPMENT"
	lowValueFilingType = "NO EEI 30.37(a)"
)

var serviceNames = map[string]string{
	"FIRST_OVERNIGHT":                      "FedEx First Overnight",
	"PRIORITY_OVERNIGHT":                   "FedEx Priority Overnight",
	"STANDARD_OVERNIGHT":                   "FedEx Standard Overnight",
	"FEDEX_2_DAY_AM":                       "FedEx 2Day A.M.",
	"FEDEX_2_DAY":                          "FedEx 2Day",
	"FEDEX_EXPRESS_SAVER":                  "FedEx Express Saver",
	"FEDEX_GROUND":                         "FedEx Ground",
	"GROUND_HOME_DELIVERY":                 "FedEx Home Delivery",
	"FEDEX_INTERNATIONAL_PRIORITY":         "FedEx International Priority",
	"FEDEX_INTERNATIONAL_PRIORITY_EXPRESS": "FedEx International Priority Express",
	"INTERNATIONAL_ECONOMY":                "FedEx International Economy",
	"FEDEX_INTERNATIONAL_CONNECT_PLUS":     "FedEx International Connect Plus",
	"FEDEX_INTERNATIONAL_GROUND":           "FedEx International Ground",
}

// surcharges maps FedEx surcharge types to canonical addons.
var surcharges = wire.ChargeTable{
	"FUEL":                 {AddonCode: shipping.AddonFuelSurcharge, Description: "Fuel Surcharge"},
	"SIGNATURE_OPTION":     {AddonCode: shipping.AddonSignatureRequired, Description: "Signature Option"},
	"RESIDENTIAL_DELIVERY": {AddonCode: shipping.AddonResidentialDelivery, Description: "Residential Delivery"},
	"DELIVERY_AREA":        {AddonCode: shipping.AddonDeliveryArea, Description: "Delivery Area Surcharge"},
	"OUT_OF_DELIVERY_AREA": {AddonCode: shipping.AddonRemoteArea, Description: "Out of Delivery Area"},
	"SATURDAY_DELIVERY":    {AddonCode: shipping.AddonSaturdayDelivery, Description: "Saturday Delivery"},
	"DANGEROUS_GOODS":      {AddonCode: shipping.AddonDangerousGoods, Description: "Dangerous Goods"},
	"INSURED_VALUE":        {AddonCode: shipping.AddonInsurance, Description: "Declared Value"},
	"ADDITIONAL_HANDLING":  {AddonCode: shipping.AddonAdditionalHandling, Description: "Additional Handling"},
	"OVERSIZE":             {AddonCode: shipping.AddonOversize, Description: "Oversize Charge"},
	"DEMAND":               {AddonCode: shipping.AddonPeakSurcharge, Description: "Demand Surcharge"},
	"PEAK":                 {AddonCode: shipping.AddonPeakSurcharge, Description: "Peak Surcharge"},
	"DRY_ICE":              {AddonCode: shipping.AddonDryIce, Description: "Dry Ice"},
	"EXPORT":               {Description: "Export Declaration"},
}

var transitDays = map[string]int{
	"ONE_DAY": 1, "TWO_DAYS": 2, "THREE_DAYS": 3, "FOUR_DAYS": 4, "FIVE_DAYS": 5,
	"SIX_DAYS": 6, "SEVEN_DAYS": 7, "EIGHT_DAYS": 8, "NINE_DAYS": 9, "TEN_DAYS": 10,
	"ELEVEN_DAYS": 11, "TWELVE_DAYS": 12, "THIRTEEN_DAYS": 13, "FOURTEEN_DAYS": 14,
	"FIFTEEN_DAYS": 15, "SIXTEEN_DAYS": 16, "SEVENTEEN_DAYS": 17, "EIGHTEEN_DAYS": 18,
	"NINETEEN_DAYS": 19, "TWENTY_DAYS": 20,
}

// Profile returns the FedEx request rules.
func Profile() shipping.CarrierProfile {
	return shipping.CarrierProfile{
		Carrier:          shipping.CarrierFedEx,
		GenericPackaging: packagingYours,
		Packaging: []string{
			packagingYours, packagingEnvelope, "FEDEX_PAK", "FEDEX_BOX", "FEDEX_SMALL_BOX",
			"FEDEX_MEDIUM_BOX", "FEDEX_LARGE_BOX", "FEDEX_EXTRA_LARGE_BOX", "FEDEX_TUBE",
			"FEDEX_10KG_BOX", "FEDEX_25KG_BOX",
		},
		PackagingSynonyms: map[string]string{
			"envelope": packagingEnvelope,
			"letter":   packagingEnvelope,
			"pak":      "FEDEX_PAK",
			"box":      "FEDEX_BOX",
			"tube":     "FEDEX_TUBE",
			"custom":   packagingYours,
		},
		GroundServices: []string{serviceGround, "GROUND_HOME_DELIVERY", "FEDEX_INTERNATIONAL_GROUND"},
		LegacyOptions: map[string]string{
			"1": "PRIORITY_OVERNIGHT",
			"2": "STANDARD_OVERNIGHT",
			"3": "FEDEX_2_DAY",
			"4": "FEDEX_EXPRESS_SAVER",
			"5": serviceGround,
			"6": serviceInternationalPriority,
			"7": "INTERNATIONAL_ECONOMY",
		},
		DomesticDefault:      serviceGround,
		InternationalDefault: serviceInternationalPriority,
		FallbackService:      serviceInternationalPriority,
		ServiceNames:         serviceNames,
		DangerousGoods: shipping.DangerousGoodsCodes{
			FullyRegulated:  dgHazardous,
			LimitedQuantity: dgLimitedQuantity,
		},
		MaxStreetLength:    35,
		MaxStreetLines:     3,
		StateCountries:     []string{"US", "CA", "PR"},
		CountryOverrides:   map[string]string{"UK": "GB"},
		LowValueFilingType: lowValueFilingType,
		DefaultIncoterm:    "DAP",
	}
}
