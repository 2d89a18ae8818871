package ups

import "carrier-rate-engine/internal/carrier/wire"

type code struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

type address struct {
	AddressLine                 []string `json:"AddressLine"`
	City                        string   `json:"City"`
	StateProvinceCode           string   `json:"StateProvinceCode,omitempty"`
	PostalCode                  string   `json:"PostalCode,omitempty"`
	CountryCode                 string   `json:"CountryCode"`
	ResidentialAddressIndicator *string  `json:"ResidentialAddressIndicator,omitempty"`
}

type phone struct {
	Number string `json:"Number"`
}

type party struct {
	Name                    string  `json:"Name"`
	AttentionName           string  `json:"AttentionName,omitempty"`
	ShipperNumber           string  `json:"ShipperNumber,omitempty"`
	TaxIdentificationNumber string  `json:"TaxIdentificationNumber,omitempty"`
	Phone                   *phone  `json:"Phone,omitempty"`
	EMailAddress            string  `json:"EMailAddress,omitempty"`
	Address                 address `json:"Address"`
}

type monetary struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue string `json:"MonetaryValue"`
}

type dimensions struct {
	UnitOfMeasurement code   `json:"UnitOfMeasurement"`
	Length            string `json:"Length"`
	Width             string `json:"Width"`
	Height            string `json:"Height"`
}

type packageWeight struct {
	UnitOfMeasurement code   `json:"UnitOfMeasurement"`
	Weight            string `json:"Weight"`
}

type deliveryConfirmation struct {
	DCISType string `json:"DCISType"`
}

type hazMat struct {
	PackagingTypeQuantity       string `json:"PackagingTypeQuantity"`
	RegulationSet               string `json:"RegulationSet"`
	TransportationMode          string `json:"TransportationMode"`
	UNIDNumber                  string `json:"IDNumber"`
	ClassDivisionNumber         string `json:"ClassDivisionNumber,omitempty"`
	CommodityRegulatedLevelCode string `json:"CommodityRegulatedLevelCode"`
}

type packageServiceOptions struct {
	DeclaredValue        *monetary             `json:"DeclaredValue,omitempty"`
	DeliveryConfirmation *deliveryConfirmation `json:"DeliveryConfirmation,omitempty"`
	HazMat               []hazMat              `json:"HazMat,omitempty"`
}

type pkg struct {
	PackagingType         *code                  `json:"PackagingType,omitempty"`
	Packaging             *code                  `json:"Packaging,omitempty"`
	Dimensions            *dimensions            `json:"Dimensions,omitempty"`
	PackageWeight         packageWeight          `json:"PackageWeight"`
	PackageServiceOptions *packageServiceOptions `json:"PackageServiceOptions,omitempty"`
}

type billShipper struct {
	AccountNumber string `json:"AccountNumber"`
}

type shipmentCharge struct {
	Type         string       `json:"Type"`
	BillShipper  *billShipper `json:"BillShipper,omitempty"`
	BillReceiver *billShipper `json:"BillReceiver,omitempty"`
}

type paymentDetails struct {
	ShipmentCharge []shipmentCharge `json:"ShipmentCharge"`
}

type product struct {
	Description                       []string `json:"Description"`
	Unit                              unit     `json:"Unit"`
	CommodityCode                     string   `json:"CommodityCode,omitempty"`
	OriginCountryCode                 string   `json:"OriginCountryCode"`
	ExportControlClassificationNumber string   `json:"ExportControlClassificationNumber,omitempty"`
}

type unit struct {
	Number            string `json:"Number"`
	Value             string `json:"Value"`
	UnitOfMeasurement code   `json:"UnitOfMeasurement"`
}

type userCreatedForm struct {
	DocumentID []string `json:"DocumentID"`
}

type internationalForms struct {
	FormType        []string         `json:"FormType"`
	InvoiceNumber   string           `json:"InvoiceNumber,omitempty"`
	InvoiceDate     string           `json:"InvoiceDate"`
	ReasonForExport string           `json:"ReasonForExport"`
	TermsOfShipment string           `json:"TermsOfShipment,omitempty"`
	CurrencyCode    string           `json:"CurrencyCode"`
	Product         []product        `json:"Product"`
	UserCreatedForm *userCreatedForm `json:"UserCreatedForm,omitempty"`
	EEIFilingOption *eeiFilingOption `json:"EEIFilingOption,omitempty"`
}

type eeiFilingOption struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

type shipmentServiceOptions struct {
	SaturdayDeliveryIndicator *string             `json:"SaturdayDeliveryIndicator,omitempty"`
	InternationalForms        *internationalForms `json:"InternationalForms,omitempty"`
}

type ratingOptions struct {
	NegotiatedRatesIndicator string `json:"NegotiatedRatesIndicator"`
}

type shipment struct {
	Description            string                  `json:"Description,omitempty"`
	Shipper                party                   `json:"Shipper"`
	ShipTo                 party                   `json:"ShipTo"`
	ShipFrom               party                   `json:"ShipFrom"`
	PaymentDetails         *paymentDetails         `json:"PaymentDetails,omitempty"`
	PaymentInformation     *paymentDetails         `json:"PaymentInformation,omitempty"`
	Service                *code                   `json:"Service,omitempty"`
	NumOfPieces            string                  `json:"NumOfPieces,omitempty"`
	Package                []pkg                   `json:"Package"`
	ShipmentServiceOptions *shipmentServiceOptions `json:"ShipmentServiceOptions,omitempty"`
	ShipmentRatingOptions  *ratingOptions          `json:"ShipmentRatingOptions,omitempty"`
	InvoiceLineTotal       *monetary               `json:"InvoiceLineTotal,omitempty"`
}

type transactionReference struct {
	CustomerContext string `json:"CustomerContext,omitempty"`
}

type requestHeader struct {
	RequestOption        string               `json:"RequestOption"`
	TransactionReference transactionReference `json:"TransactionReference"`
}

type labelSpecification struct {
	LabelImageFormat code `json:"LabelImageFormat"`
}

type rateRequest struct {
	RateRequest struct {
		Request  requestHeader `json:"Request"`
		Shipment shipment      `json:"Shipment"`
	} `json:"RateRequest"`
}

type shipRequest struct {
	ShipmentRequest struct {
		Request            requestHeader      `json:"Request"`
		Shipment           shipment           `json:"Shipment"`
		LabelSpecification labelSpecification `json:"LabelSpecification"`
	} `json:"ShipmentRequest"`
}

// Responses. Every object UPS might return as a bare object or an array is
// decoded through wire.OneOrMany.

type charge struct {
	CurrencyCode  string      `json:"CurrencyCode"`
	MonetaryValue wire.Number `json:"MonetaryValue"`
}

type itemizedCharge struct {
	Code          string      `json:"Code"`
	Description   string      `json:"Description"`
	CurrencyCode  string      `json:"CurrencyCode"`
	MonetaryValue wire.Number `json:"MonetaryValue"`
}

type ratedPackage struct {
	ItemizedCharges       wire.OneOrMany[itemizedCharge] `json:"ItemizedCharges"`
	ServiceOptionsCharges charge                         `json:"ServiceOptionsCharges"`
}

type negotiatedCharges struct {
	TotalCharge     charge                         `json:"TotalCharge"`
	ItemizedCharges wire.OneOrMany[itemizedCharge] `json:"ItemizedCharges"`
}

type arrival struct {
	Date string `json:"Date"`
	Time string `json:"Time"`
}

type estimatedArrival struct {
	Arrival               arrival  `json:"Arrival"`
	BusinessDaysInTransit wire.Int `json:"BusinessDaysInTransit"`
}

type timeInTransit struct {
	ServiceSummary struct {
		EstimatedArrival estimatedArrival `json:"EstimatedArrival"`
	} `json:"ServiceSummary"`
}

type ratedShipment struct {
	Service               code                           `json:"Service"`
	TransportationCharges charge                         `json:"TransportationCharges"`
	BaseServiceCharge     charge                         `json:"BaseServiceCharge"`
	ServiceOptionsCharges charge                         `json:"ServiceOptionsCharges"`
	TotalCharges          charge                         `json:"TotalCharges"`
	ItemizedCharges       wire.OneOrMany[itemizedCharge] `json:"ItemizedCharges"`
	NegotiatedRateCharges *negotiatedCharges             `json:"NegotiatedRateCharges"`
	RatedPackage          wire.OneOrMany[ratedPackage]   `json:"RatedPackage"`
	GuaranteedDelivery    struct {
		BusinessDaysInTransit wire.Int `json:"BusinessDaysInTransit"`
		DeliveryByTime        string   `json:"DeliveryByTime"`
	} `json:"GuaranteedDelivery"`
	TimeInTransit *timeInTransit `json:"TimeInTransit"`
}

type responseStatus struct {
	Code        string `json:"Code"`
	Description string `json:"Description"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Response struct {
		Errors []apiError `json:"errors"`
	} `json:"response"`
}

type rateResponse struct {
	RateResponse struct {
		Response struct {
			ResponseStatus responseStatus `json:"ResponseStatus"`
		} `json:"Response"`
		RatedShipment wire.OneOrMany[ratedShipment] `json:"RatedShipment"`
	} `json:"RateResponse"`
}

type shippingLabel struct {
	ImageFormat  code   `json:"ImageFormat"`
	GraphicImage string `json:"GraphicImage"`
}

type packageResult struct {
	TrackingNumber  string                         `json:"TrackingNumber"`
	ShippingLabel   shippingLabel                  `json:"ShippingLabel"`
	ItemizedCharges wire.OneOrMany[itemizedCharge] `json:"ItemizedCharges"`
}

type shipmentCharges struct {
	TransportationCharges charge                         `json:"TransportationCharges"`
	BaseServiceCharge     charge                         `json:"BaseServiceCharge"`
	ServiceOptionsCharges charge                         `json:"ServiceOptionsCharges"`
	TotalCharges          charge                         `json:"TotalCharges"`
	ItemizedCharges       wire.OneOrMany[itemizedCharge] `json:"ItemizedCharges"`
}

type shipmentResults struct {
	ShipmentIdentificationNumber string                        `json:"ShipmentIdentificationNumber"`
	ShipmentCharges              shipmentCharges               `json:"ShipmentCharges"`
	NegotiatedRateCharges        *negotiatedCharges            `json:"NegotiatedRateCharges"`
	PackageResults               wire.OneOrMany[packageResult] `json:"PackageResults"`
}

type shipResponse struct {
	ShipmentResponse struct {
		ShipmentResults shipmentResults `json:"ShipmentResults"`
	} `json:"ShipmentResponse"`
}
