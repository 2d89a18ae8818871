package fedex

import "carrier-rate-engine/internal/carrier/wire"

type account struct {
	Value string `json:"value"`
}

type address struct {
	StreetLines         []string `json:"streetLines"`
	City                string   `json:"city"`
	StateOrProvinceCode string   `json:"stateOrProvinceCode,omitempty"`
	PostalCode          string   `json:"postalCode,omitempty"`
	CountryCode         string   `json:"countryCode"`
	Residential         bool     `json:"residential,omitempty"`
}

type contact struct {
	PersonName   string `json:"personName,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

type party struct {
	Contact *contact `json:"contact,omitempty"`
	Address address  `json:"address"`
}

type weight struct {
	Units string  `json:"units"`
	Value float64 `json:"value"`
}

type dimensions struct {
	Length int    `json:"length"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Units  string `json:"units"`
}

type amount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type dangerousGoodsDetail struct {
	Options []string `json:"options"`
}

type signatureOptionDetail struct {
	OptionType string `json:"optionType"`
}

type packageSpecialServices struct {
	SpecialServiceTypes  []string              `json:"specialServiceTypes"`
	DangerousGoodsDetail *dangerousGoodsDetail `json:"dangerousGoodsDetail,omitempty"`
	SignatureOptionType  string                `json:"signatureOptionType,omitempty"`
}

type packageLineItem struct {
	SequenceNumber         int                     `json:"sequenceNumber"`
	Weight                 weight                  `json:"weight"`
	Dimensions             *dimensions             `json:"dimensions,omitempty"`
	DeclaredValue          *amount                 `json:"declaredValue,omitempty"`
	PackageSpecialServices *packageSpecialServices `json:"packageSpecialServices,omitempty"`
}

type attachedDocument struct {
	DocumentType      string `json:"documentType"`
	DocumentReference string `json:"documentReference,omitempty"`
	DocumentID        string `json:"documentId"`
}

type etdDetail struct {
	AttachedDocuments []attachedDocument `json:"attachedDocuments"`
}

type shipmentSpecialServices struct {
	SpecialServiceTypes []string   `json:"specialServiceTypes"`
	EtdDetail           *etdDetail `json:"etdDetail,omitempty"`
}

type commodity struct {
	Description          string `json:"description"`
	Quantity             int    `json:"quantity"`
	QuantityUnits        string `json:"quantityUnits"`
	Weight               weight `json:"weight"`
	UnitPrice            amount `json:"unitPrice"`
	CustomsValue         amount `json:"customsValue"`
	CountryOfManufacture string `json:"countryOfManufacture"`
	HarmonizedCode       string `json:"harmonizedCode,omitempty"`
	ExportLicenseNumber  string `json:"exportLicenseNumber,omitempty"`
}

type payment struct {
	PaymentType string `json:"paymentType"`
}

type commercialInvoice struct {
	ShipmentPurpose string `json:"shipmentPurpose"`
	TermsOfSale     string `json:"termsOfSale,omitempty"`
}

type exportDetail struct {
	ExportComplianceStatement string `json:"exportComplianceStatement,omitempty"`
}

type customsClearanceDetail struct {
	DutiesPayment     payment            `json:"dutiesPayment"`
	Commodities       []commodity        `json:"commodities"`
	CommercialInvoice *commercialInvoice `json:"commercialInvoice,omitempty"`
	ExportDetail      *exportDetail      `json:"exportDetail,omitempty"`
	TotalCustomsValue *amount            `json:"totalCustomsValue,omitempty"`
}

type labelSpecification struct {
	ImageType      string `json:"imageType"`
	LabelStockType string `json:"labelStockType"`
}

type requestedShipment struct {
	Shipper                   party                    `json:"shipper"`
	Recipient                 party                    `json:"recipient"`
	Recipients                []party                  `json:"recipients,omitempty"`
	ServiceType               string                   `json:"serviceType,omitempty"`
	PackagingType             string                   `json:"packagingType"`
	PickupType                string                   `json:"pickupType"`
	ShipDateStamp             string                   `json:"shipDateStamp"`
	RateRequestType           []string                 `json:"rateRequestType"`
	PreferredCurrency         string                   `json:"preferredCurrency,omitempty"`
	TotalPackageCount         int                      `json:"totalPackageCount"`
	RequestedPackageLineItems []packageLineItem        `json:"requestedPackageLineItems"`
	ShipmentSpecialServices   *shipmentSpecialServices `json:"shipmentSpecialServices,omitempty"`
	CustomsClearanceDetail    *customsClearanceDetail  `json:"customsClearanceDetail,omitempty"`
	ShippingChargesPayment    *payment                 `json:"shippingChargesPayment,omitempty"`
	LabelSpecification        *labelSpecification      `json:"labelSpecification,omitempty"`
}

type request struct {
	AccountNumber        account           `json:"accountNumber"`
	LabelResponseOptions string            `json:"labelResponseOptions,omitempty"`
	RequestedShipment    requestedShipment `json:"requestedShipment"`
	CarrierCodes         []string          `json:"carrierCodes,omitempty"`
	ReturnTransitTimes   bool              `json:"returnTransitTimes,omitempty"`
}

// Responses.

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type surcharge struct {
	Type          string      `json:"type"`
	SurchargeType string      `json:"surchargeType"`
	Description   string      `json:"description"`
	Amount        wire.Number `json:"amount"`
}

func (s surcharge) code() string {
	if s.Type != "" {
		return s.Type
	}
	return s.SurchargeType
}

type shipmentRateDetail struct {
	TotalSurcharges wire.Number `json:"totalSurcharges"`
	SurCharges      []surcharge `json:"surCharges"`
	Surcharges      []surcharge `json:"surcharges"`
	Currency        string      `json:"currency"`
}

type ratedShipmentDetail struct {
	RateType           string             `json:"rateType"`
	TotalNetCharge     wire.Number        `json:"totalNetCharge"`
	TotalBaseCharge    wire.Number        `json:"totalBaseCharge"`
	TotalSurcharges    wire.Number        `json:"totalSurcharges"`
	Currency           string             `json:"currency"`
	ShipmentRateDetail shipmentRateDetail `json:"shipmentRateDetail"`
	Surcharges         []surcharge        `json:"surcharges"`
}

func (d ratedShipmentDetail) surchargeList() []surcharge {
	switch {
	case len(d.ShipmentRateDetail.SurCharges) > 0:
		return d.ShipmentRateDetail.SurCharges
	case len(d.ShipmentRateDetail.Surcharges) > 0:
		return d.ShipmentRateDetail.Surcharges
	}
	return d.Surcharges
}

type dateDetail struct {
	DayFormat string `json:"dayFormat"`
}

type commit struct {
	DateDetail dateDetail `json:"dateDetail"`
}

type operationalDetail struct {
	TransitTime  string `json:"transitTime"`
	DeliveryDate string `json:"deliveryDate"`
}

type rateReplyDetail struct {
	ServiceType          string                `json:"serviceType"`
	ServiceName          string                `json:"serviceName"`
	PackagingType        string                `json:"packagingType"`
	RatedShipmentDetails []ratedShipmentDetail `json:"ratedShipmentDetails"`
	Commit               commit                `json:"commit"`
	OperationalDetail    operationalDetail     `json:"operationalDetail"`
}

type rateResponse struct {
	Output struct {
		RateReplyDetails []rateReplyDetail `json:"rateReplyDetails"`
	} `json:"output"`
	Errors []apiError `json:"errors"`
}

type packageDocument struct {
	ContentType  string `json:"contentType"`
	DocType      string `json:"docType"`
	EncodedLabel string `json:"encodedLabel"`
}

type pieceResponse struct {
	TrackingNumber   string            `json:"trackingNumber"`
	PackageDocuments []packageDocument `json:"packageDocuments"`
}

type shipmentRating struct {
	ShipmentRateDetails []ratedShipmentDetail `json:"shipmentRateDetails"`
}

type completedShipmentDetail struct {
	ShipmentRating shipmentRating `json:"shipmentRating"`
}

type transactionShipment struct {
	MasterTrackingNumber    string                  `json:"masterTrackingNumber"`
	ServiceType             string                  `json:"serviceType"`
	ServiceName             string                  `json:"serviceName"`
	PieceResponses          []pieceResponse         `json:"pieceResponses"`
	CompletedShipmentDetail completedShipmentDetail `json:"completedShipmentDetail"`
}

type shipResponse struct {
	Output struct {
		TransactionShipments []transactionShipment `json:"transactionShipments"`
	} `json:"output"`
	Errors []apiError `json:"errors"`
}
