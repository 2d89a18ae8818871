package dhl

import "carrier-rate-engine/internal/carrier/wire"

type account struct {
	TypeCode string `json:"typeCode"`
	Number   string `json:"number"`
}

type rateAddress struct {
	PostalCode   string `json:"postalCode,omitempty"`
	CityName     string `json:"cityName"`
	CountryCode  string `json:"countryCode"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	AddressLine3 string `json:"addressLine3,omitempty"`
}

type rateCustomerDetails struct {
	ShipperDetails  rateAddress `json:"shipperDetails"`
	ReceiverDetails rateAddress `json:"receiverDetails"`
}

type dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type pkg struct {
	TypeCode   string      `json:"typeCode,omitempty"`
	Weight     float64     `json:"weight"`
	Dimensions *dimensions `json:"dimensions,omitempty"`
}

type monetaryAmount struct {
	TypeCode string  `json:"typeCode"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type dangerousGoods struct {
	ContentID string `json:"contentId"`
	UNCodes   []int  `json:"unCodes,omitempty"`
}

type valueAddedService struct {
	ServiceCode    string           `json:"serviceCode"`
	Value          *float64         `json:"value,omitempty"`
	Currency       string           `json:"currency,omitempty"`
	DangerousGoods []dangerousGoods `json:"dangerousGoods,omitempty"`
}

type rateRequest struct {
	CustomerDetails            rateCustomerDetails `json:"customerDetails"`
	Accounts                   []account           `json:"accounts"`
	ProductCode                string              `json:"productCode,omitempty"`
	PlannedShippingDateAndTime string              `json:"plannedShippingDateAndTime"`
	UnitOfMeasurement          string              `json:"unitOfMeasurement"`
	IsCustomsDeclarable        bool                `json:"isCustomsDeclarable"`
	MonetaryAmount             []monetaryAmount    `json:"monetaryAmount,omitempty"`
	Packages                   []pkg               `json:"packages"`
	ValueAddedServices         []valueAddedService `json:"valueAddedServices,omitempty"`
	NextBusinessDay            bool                `json:"nextBusinessDay"`
}

type postalAddress struct {
	PostalCode   string `json:"postalCode,omitempty"`
	CityName     string `json:"cityName"`
	CountryCode  string `json:"countryCode"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	AddressLine3 string `json:"addressLine3,omitempty"`
}

type contactInformation struct {
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
}

type registrationNumber struct {
	TypeCode          string `json:"typeCode"`
	Number            string `json:"number"`
	IssuerCountryCode string `json:"issuerCountryCode"`
}

type partyDetails struct {
	PostalAddress       postalAddress        `json:"postalAddress"`
	ContactInformation  contactInformation   `json:"contactInformation"`
	RegistrationNumbers []registrationNumber `json:"registrationNumbers,omitempty"`
	TypeCode            string               `json:"typeCode,omitempty"`
}

type shipCustomerDetails struct {
	ShipperDetails  partyDetails `json:"shipperDetails"`
	ReceiverDetails partyDetails `json:"receiverDetails"`
}

type quantity struct {
	Value             int    `json:"value"`
	UnitOfMeasurement string `json:"unitOfMeasurement"`
}

type commodityCode struct {
	TypeCode string `json:"typeCode"`
	Value    string `json:"value"`
}

type lineWeight struct {
	NetValue   float64 `json:"netValue"`
	GrossValue float64 `json:"grossValue"`
}

type lineItem struct {
	Number               int             `json:"number"`
	Description          string          `json:"description"`
	Price                float64         `json:"price"`
	Quantity             quantity        `json:"quantity"`
	CommodityCodes       []commodityCode `json:"commodityCodes,omitempty"`
	ExportReasonType     string          `json:"exportReasonType"`
	ManufacturerCountry  string          `json:"manufacturerCountry"`
	Weight               lineWeight      `json:"weight"`
	ExportControlClassID string          `json:"exportControlClassificationNumber,omitempty"`
}

type invoice struct {
	Number         string `json:"number"`
	Date           string `json:"date"`
	SignatureName  string `json:"signatureName,omitempty"`
	SignatureTitle string `json:"signatureTitle,omitempty"`
}

type exportDeclaration struct {
	LineItems        []lineItem `json:"lineItems"`
	Invoice          invoice    `json:"invoice"`
	ExportReason     string     `json:"exportReason,omitempty"`
	ExportReasonType string     `json:"exportReasonType,omitempty"`
}

type content struct {
	Packages              []pkg              `json:"packages"`
	IsCustomsDeclarable   bool               `json:"isCustomsDeclarable"`
	DeclaredValue         float64            `json:"declaredValue,omitempty"`
	DeclaredValueCurrency string             `json:"declaredValueCurrency,omitempty"`
	Description           string             `json:"description"`
	Incoterm              string             `json:"incoterm,omitempty"`
	UnitOfMeasurement     string             `json:"unitOfMeasurement"`
	ExportDeclaration     *exportDeclaration `json:"exportDeclaration,omitempty"`
}

type documentImage struct {
	TypeCode    string `json:"typeCode"`
	ImageFormat string `json:"imageFormat"`
	Content     string `json:"content"`
}

type imageOption struct {
	TypeCode     string `json:"typeCode"`
	TemplateName string `json:"templateName,omitempty"`
}

type outputImageProperties struct {
	EncodingFormat string        `json:"encodingFormat"`
	ImageOptions   []imageOption `json:"imageOptions,omitempty"`
}

type pickup struct {
	IsRequested bool `json:"isRequested"`
}

type shipRequest struct {
	PlannedShippingDateAndTime string                `json:"plannedShippingDateAndTime"`
	Pickup                     pickup                `json:"pickup"`
	ProductCode                string                `json:"productCode"`
	Accounts                   []account             `json:"accounts"`
	ValueAddedServices         []valueAddedService   `json:"valueAddedServices,omitempty"`
	OutputImageProperties      outputImageProperties `json:"outputImageProperties"`
	CustomerDetails            shipCustomerDetails   `json:"customerDetails"`
	Content                    content               `json:"content"`
	DocumentImages             []documentImage       `json:"documentImages,omitempty"`
	CustomerReferences         []customerReference   `json:"customerReferences,omitempty"`
}

type customerReference struct {
	Value    string `json:"value"`
	TypeCode string `json:"typeCode"`
}

// Responses.

type breakdownItem struct {
	Name        string      `json:"name"`
	ServiceCode string      `json:"serviceCode"`
	TypeCode    string      `json:"typeCode"`
	Price       wire.Number `json:"price"`
}

func (b breakdownItem) code() string {
	if b.ServiceCode != "" {
		return b.ServiceCode
	}
	return b.TypeCode
}

type totalPrice struct {
	CurrencyType  string          `json:"currencyType"`
	PriceCurrency string          `json:"priceCurrency"`
	Price         wire.Number     `json:"price"`
	Breakdown     []breakdownItem `json:"breakdown"`
}

type detailedBreakdown struct {
	CurrencyType  string          `json:"currencyType"`
	PriceCurrency string          `json:"priceCurrency"`
	Breakdown     []breakdownItem `json:"breakdown"`
}

type deliveryCapabilities struct {
	EstimatedDeliveryDateAndTime string   `json:"estimatedDeliveryDateAndTime"`
	TotalTransitDays             wire.Int `json:"totalTransitDays"`
}

type product struct {
	ProductName            string               `json:"productName"`
	ProductCode            string               `json:"productCode"`
	LocalProductCode       string               `json:"localProductCode"`
	TotalPrice             []totalPrice         `json:"totalPrice"`
	DetailedPriceBreakdown []detailedBreakdown  `json:"detailedPriceBreakdown"`
	DeliveryCapabilities   deliveryCapabilities `json:"deliveryCapabilities"`
}

type problem struct {
	Status            wire.Int `json:"status"`
	Title             string   `json:"title"`
	Detail            string   `json:"detail"`
	AdditionalDetails []string `json:"additionalDetails"`
}

type rateResponse struct {
	problem
	Products []product `json:"products"`
}

type shipmentCharge struct {
	CurrencyType     string          `json:"currencyType"`
	PriceCurrency    string          `json:"priceCurrency"`
	Price            wire.Number     `json:"price"`
	ServiceBreakdown []breakdownItem `json:"serviceBreakdown"`
}

type shippedPackage struct {
	TrackingNumber string `json:"trackingNumber"`
}

type shippedDocument struct {
	ImageFormat string `json:"imageFormat"`
	Content     string `json:"content"`
	TypeCode    string `json:"typeCode"`
}

type shipResponse struct {
	problem
	ShipmentTrackingNumber string            `json:"shipmentTrackingNumber"`
	ProductCode            string            `json:"productCode"`
	Packages               []shippedPackage  `json:"packages"`
	Documents              []shippedDocument `json:"documents"`
	ShipmentCharges        []shipmentCharge  `json:"shipmentCharges"`
}
