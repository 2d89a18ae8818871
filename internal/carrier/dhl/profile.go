package dhl

import (
	"carrier-rate-engine/internal/carrier/wire"
	"carrier-rate-engine/internal/domain/shipping"
)

const (
	packagingYours    = "YP"
	packagingEnvelope = "EE"

	productWorldwide = "P"
	productDomestic  = "N"

	dgFullyRegulated  = "HE"
	dgLimitedQuantity = "HL"

	currencyBilling = "BILLC"
)

var productNames = map[string]string{
	"P": "EXPRESS WORLDWIDE",
	"D": "EXPRESS WORLDWIDE DOC",
	"U": "EXPRESS WORLDWIDE EU",
	"K": "EXPRESS 9:00",
	"E": "EXPRESS 9:00 NONDOC",
	"T": "EXPRESS 12:00",
	"Y": "EXPRESS 12:00 NONDOC",
	"H": "ECONOMY SELECT",
	"W": "ECONOMY SELECT NONDOC",
	"N": "DOMESTIC EXPRESS",
	"G": "DOMESTIC ECONOMY SELECT",
	"8": "EXPRESS EASY",
}

// charges maps DHL breakdown service codes to canonical addons.
var charges = wire.ChargeTable{
	"FF": {AddonCode: shipping.AddonFuelSurcharge, Description: "Fuel Surcharge"},
	"II": {AddonCode: shipping.AddonInsurance, Description: "Shipment Insurance"},
	"SF": {AddonCode: shipping.AddonSignatureRequired, Description: "Direct Signature"},
	"OO": {AddonCode: shipping.AddonRemoteArea, Description: "Remote Area Delivery"},
	"HE": {AddonCode: shipping.AddonDangerousGoods, Description: "Dangerous Goods"},
	"HL": {AddonCode: shipping.AddonDangerousGoods, Description: "Lithium / Limited Quantity Goods"},
	"DD": {AddonCode: shipping.AddonDutiesPaid, Description: "Duties and Taxes Paid"},
	"WY": {AddonCode: shipping.AddonPaperlessTrade, Description: "Paperless Trade"},
	"YY": {AddonCode: shipping.AddonOverweight, Description: "Overweight Piece"},
	"YB": {AddonCode: shipping.AddonOversize, Description: "Oversize Piece"},
	"CR": {AddonCode: shipping.AddonCarbonNeutral, Description: "GoGreen Plus Carbon Reduced"},
	"AA": {AddonCode: shipping.AddonSaturdayDelivery, Description: "Saturday Delivery"},
	"TK": {AddonCode: shipping.AddonResidentialDelivery, Description: "Residential Delivery"},
	"FE": {AddonCode: shipping.AddonPeakSurcharge, Description: "Emergency Situation"},
}

// requestable lists the charge codes that can also be requested as value
// added services.
var requestable = map[string]bool{
	"II": true, "SF": true, "AA": true, "DD": true, "WY": true, "CR": true,
}

// contentIDs maps dangerous goods classes to DHL content identifiers. 967 is
// lithium ion batteries contained in equipment.
var contentIDs = map[string]string{
	"1": "100", "2": "200", "3": "300", "4": "400", "5": "500",
	"6": "600", "7": "700", "8": "800", "9": "900",
}

// Profile returns the DHL Express request rules.
func Profile() shipping.CarrierProfile {
	return shipping.CarrierProfile{
		Carrier:          shipping.CarrierDHL,
		GenericPackaging: packagingYours,
		Packaging: []string{
			packagingYours, packagingEnvelope, "OD", "CP", "FLY", "2BP", "3BX", "4BX",
			"5BX", "6BX", "7BX", "8BX", "TBL", "TBS", "WB1", "WB2", "WB3",
		},
		PackagingSynonyms: map[string]string{
			"envelope": packagingEnvelope,
			"letter":   packagingEnvelope,
			"flyer":    "FLY",
			"pak":      "FLY",
			"box":      "OD",
			"tube":     "TBS",
			"custom":   packagingYours,
		},
		GroundServices: []string{"G", "W", "H"},
		LegacyOptions: map[string]string{
			"1": productWorldwide,
			"2": "D",
			"3": "K",
			"4": "T",
			"5": "W",
			"6": productDomestic,
		},
		DomesticDefault:      productDomestic,
		InternationalDefault: productWorldwide,
		FallbackService:      productWorldwide,
		ServiceNames:         productNames,
		DangerousGoods: shipping.DangerousGoodsCodes{
			FullyRegulated:   dgFullyRegulated,
			LimitedQuantity:  dgLimitedQuantity,
			ContentIDs:       contentIDs,
			DefaultContentID: "967",
		},
		MaxStreetLength:    45,
		MaxStreetLines:     3,
		StateCountries:     []string{"US", "CA", "MX", "AU", "BR"},
		CountryOverrides:   map[string]string{"UK": "GB", "XK": "KV"},
		LowValueFilingType: "NO EEI 30.37(a)",
		DefaultIncoterm:    "DAP",
	}
}
