// Package dhl translates between the canonical shipping model and the DHL
// Express rating and shipment APIs.
package dhl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carrier-rate-engine/internal/carrier/wire"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/logger"
	"carrier-rate-engine/internal/units"
	"carrier-rate-engine/pkg/money"

	"go.uber.org/zap"
)

type Adapter struct {
	accountNumber string
	profile       shipping.CarrierProfile
	addonServices map[string]string
	log           *zap.Logger
}

func New(accountNumber string, log *zap.Logger) *Adapter {
	return &Adapter{
		accountNumber: accountNumber,
		profile:       Profile(),
		addonServices: charges.Reverse(),
		log:           logger.OrNop(log).Named("carrier.dhl"),
	}
}

func (a *Adapter) Code() shipping.CarrierCode {
	return shipping.CarrierDHL
}

func (a *Adapter) Profile() shipping.CarrierProfile {
	return a.profile
}

func (a *Adapter) ToWire(op shipping.Operation, req *shipping.ShipmentRequest) (*shipping.Payload, error) {
	if req == nil || len(req.Packages) == 0 {
		return nil, fmt.Errorf("dhl: shipment request has no packages")
	}

	system := measurementSystem(req.Packages[0])
	packages := toPackages(req.Packages, system)
	services := a.valueAddedServices(req)

	var body any
	switch op {
	case shipping.OperationShip:
		body = a.shipRequest(req, system, packages, services)
	default:
		body = a.rateRequest(req, system, packages, services)
	}

	encoded, err := wire.JSON.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("dhl: encode request: %w", err)
	}
	return &shipping.Payload{Carrier: shipping.CarrierDHL, Operation: op, Body: encoded}, nil
}

func (a *Adapter) rateRequest(req *shipping.ShipmentRequest, system string, packages []pkg, services []valueAddedService) rateRequest {
	body := rateRequest{
		CustomerDetails: rateCustomerDetails{
			ShipperDetails:  toRateAddress(req.Shipper.Address),
			ReceiverDetails: toRateAddress(req.Recipient.Address),
		},
		Accounts:                   []account{{TypeCode: "shipper", Number: a.accountNumber}},
		PlannedShippingDateAndTime: plannedDate(req.ShipDate),
		UnitOfMeasurement:          system,
		IsCustomsDeclarable:        req.International(),
		Packages:                   packages,
		ValueAddedServices:         services,
		NextBusinessDay:            true,
	}
	if req.ServiceType != nil {
		body.ProductCode = *req.ServiceType
	}
	if req.International() {
		body.MonetaryAmount = []monetaryAmount{{TypeCode: "declaredValue", Value: req.DeclaredValue, Currency: req.Currency}}
	}
	return body
}

func (a *Adapter) shipRequest(req *shipping.ShipmentRequest, system string, packages []pkg, services []valueAddedService) shipRequest {
	body := shipRequest{
		PlannedShippingDateAndTime: plannedDate(req.ShipDate),
		Pickup:                     pickup{IsRequested: false},
		ProductCode:                a.profile.FallbackService,
		Accounts:                   []account{{TypeCode: "shipper", Number: a.accountNumber}},
		ValueAddedServices:         services,
		OutputImageProperties: outputImageProperties{
			EncodingFormat: "pdf",
			ImageOptions:   []imageOption{{TypeCode: "label", TemplateName: "ECOM26_84_001"}},
		},
		CustomerDetails: shipCustomerDetails{
			ShipperDetails:  toPartyDetails(req.Shipper, "business"),
			ReceiverDetails: toPartyDetails(req.Recipient, receiverType(req.Recipient.Address)),
		},
		Content: content{
			Packages:            packages,
			IsCustomsDeclarable: req.International(),
			Description:         description(req),
			UnitOfMeasurement:   system,
		},
	}
	if req.ServiceType != nil {
		body.ProductCode = *req.ServiceType
	}
	if req.Reference != "" {
		body.CustomerReferences = []customerReference{{Value: req.Reference, TypeCode: "CU"}}
	}

	if req.International() {
		body.Content.DeclaredValue = req.DeclaredValue
		body.Content.DeclaredValueCurrency = req.Currency
		body.Content.Incoterm = req.Compliance.Incoterm
		body.Content.ExportDeclaration = a.exportDeclaration(req, system)

		for _, doc := range req.Documents {
			body.DocumentImages = append(body.DocumentImages, documentImage{
				TypeCode:    doc.TypeCode,
				ImageFormat: doc.Format,
				Content:     doc.Content,
			})
		}
	}
	return body
}

func (a *Adapter) exportDeclaration(req *shipping.ShipmentRequest, system string) *exportDeclaration {
	weightUnit := units.Kilogram
	if system == "imperial" {
		weightUnit = units.Pound
	}

	decl := &exportDeclaration{
		Invoice: invoice{
			Number:         req.Compliance.InvoiceNumber,
			Date:           req.ShipDate.Format("2006-01-02"),
			SignatureName:  req.Compliance.SignatureName,
			SignatureTitle: req.Compliance.SignatureTitle,
		},
	}
	if decl.Invoice.Number == "" {
		decl.Invoice.Number = req.Reference
	}

	for i, item := range req.Commodities {
		weight := money.Round2(units.ConvertWeight(item.Weight, item.WeightUnit, weightUnit))
		line := lineItem{
			Number:              i + 1,
			Description:         item.Description,
			Price:               item.UnitValue,
			Quantity:            quantity{Value: item.Quantity, UnitOfMeasurement: "PCS"},
			ExportReasonType:    exportReasonType(item.ExportReasonType),
			ManufacturerCountry: item.CountryOfOrigin,
			Weight:              lineWeight{NetValue: weight, GrossValue: weight},
		}
		if item.HSCode != nil {
			line.CommodityCodes = []commodityCode{{TypeCode: "outbound", Value: *item.HSCode}}
		}
		if item.ExportControlNumber != nil {
			line.ExportControlClassID = *item.ExportControlNumber
		}
		decl.LineItems = append(decl.LineItems, line)
	}
	return decl
}

// valueAddedServices groups dangerous goods by service code and maps the
// requested addons to DHL service codes.
func (a *Adapter) valueAddedServices(req *shipping.ShipmentRequest) []valueAddedService {
	var out []valueAddedService
	index := make(map[string]int)

	for _, vas := range req.DangerousGoods() {
		dg := dangerousGoods{ContentID: vas.DangerousGoods.ContentID}
		if un, err := strconv.Atoi(strings.TrimPrefix(vas.DangerousGoods.UNCode, "UN")); err == nil {
			dg.UNCodes = []int{un}
		}
		if i, ok := index[vas.Code]; ok {
			out[i].DangerousGoods = append(out[i].DangerousGoods, dg)
			continue
		}
		index[vas.Code] = len(out)
		out = append(out, valueAddedService{ServiceCode: vas.Code, DangerousGoods: []dangerousGoods{dg}})
	}

	for _, vas := range req.Addons() {
		code, ok := a.addonServices[vas.Code]
		if !ok || !requestable[code] {
			a.log.Debug("Addon has no DHL value added service", zap.String("addon", vas.Code))
			continue
		}
		if _, dup := index[code]; dup {
			continue
		}
		index[code] = len(out)
		service := valueAddedService{ServiceCode: code}
		if vas.Value != nil {
			service.Value = vas.Value
			service.Currency = vas.Currency
			if service.Currency == "" {
				service.Currency = req.Currency
			}
		}
		out = append(out, service)
	}
	return out
}

// FromWireRate turns a DHL rate response into one quote per product.
func (a *Adapter) FromWireRate(body []byte) ([]shipping.RateQuote, error) {
	var resp rateResponse
	if err := wire.JSON.Unmarshal(body, &resp); err != nil {
		return nil, wire.Malformed(shipping.CarrierDHL, err)
	}
	if len(resp.Products) == 0 && resp.problem.isError() {
		return nil, resp.problem.err()
	}
	if err := wire.RequireSection(shipping.CarrierDHL, body, "products"); err != nil {
		return nil, err
	}

	var raw struct {
		Products []json.RawMessage `json:"products"`
	}
	_ = wire.JSON.Unmarshal(body, &raw)

	quotes := make([]shipping.RateQuote, 0, len(resp.Products))
	for i, p := range resp.Products {
		total, ok := billingPrice(p.TotalPrice)
		if !ok {
			wire.TolerantMissing(a.log, shipping.CarrierDHL, "totalPrice")
		}

		code := p.ProductCode
		if code == "" {
			code = p.LocalProductCode
		}

		quote := shipping.RateQuote{
			Carrier:     shipping.CarrierDHL,
			ServiceType: code,
			ServiceName: a.serviceName(code, p.ProductName),
			TotalCharge: money.Round2(total.Price.Value),
			Currency:    total.PriceCurrency,
			TransitDays: p.DeliveryCapabilities.TotalTransitDays.Ptr(),
		}
		if quote.Currency == "" {
			wire.TolerantMissing(a.log, shipping.CarrierDHL, "priceCurrency")
			quote.Currency = "USD"
		}
		quote.EstimatedDelivery = wire.ParseDate(p.DeliveryCapabilities.EstimatedDeliveryDateAndTime)

		base, lines := a.split(breakdown(p))
		quote.BaseCharge = base
		quote.SurchargeBreakdown = lines
		quote.Surcharges = wire.Float(shipping.SumLines(lines))

		if i < len(raw.Products) {
			quote.Raw = raw.Products[i]
		}
		quotes = append(quotes, quote)
	}

	return quotes, nil
}

// FromWireShipment turns a DHL shipment response into a ShipmentResult.
func (a *Adapter) FromWireShipment(body []byte) (*shipping.ShipmentResult, error) {
	var resp shipResponse
	if err := wire.JSON.Unmarshal(body, &resp); err != nil {
		return nil, wire.Malformed(shipping.CarrierDHL, err)
	}
	if resp.ShipmentTrackingNumber == "" && resp.problem.isError() {
		return nil, resp.problem.err()
	}

	result := &shipping.ShipmentResult{
		Carrier:            shipping.CarrierDHL,
		TrackingNumber:     resp.ShipmentTrackingNumber,
		ServiceType:        resp.ProductCode,
		ServiceName:        a.serviceName(resp.ProductCode, ""),
		Currency:           "USD",
		SurchargeBreakdown: []shipping.SurchargeLine{},
		Labels:             []shipping.Label{},
		Raw:                json.RawMessage(body),
	}
	if result.TrackingNumber == "" {
		wire.TolerantMissing(a.log, shipping.CarrierDHL, "shipmentTrackingNumber")
	}

	for _, p := range resp.Packages {
		result.PackageTracking = append(result.PackageTracking, p.TrackingNumber)
	}
	for _, doc := range resp.Documents {
		switch strings.ToLower(doc.TypeCode) {
		case "label", "waybilldoc":
			result.Labels = append(result.Labels, shipping.Label{
				TrackingNumber: result.TrackingNumber,
				Format:         strings.ToUpper(doc.ImageFormat),
				Content:        doc.Content,
			})
		default:
			result.Documents = append(result.Documents, shipping.DocumentImage{
				TypeCode: strings.ToUpper(doc.TypeCode),
				Format:   strings.ToUpper(doc.ImageFormat),
				Content:  doc.Content,
			})
		}
	}

	if charge, ok := billingCharge(resp.ShipmentCharges); ok {
		result.TotalCharge = money.Round2(charge.Price.Value)
		if charge.PriceCurrency != "" {
			result.Currency = charge.PriceCurrency
		}
		base, lines := a.split(charge.ServiceBreakdown)
		result.BaseCharge = base
		result.SurchargeBreakdown = lines
		result.Surcharges = wire.Float(shipping.SumLines(lines))
	}

	return result, nil
}

// split separates the base product charge, which DHL reports without a
// service code, from the surcharge lines.
func (a *Adapter) split(items []breakdownItem) (*float64, []shipping.SurchargeLine) {
	lines := make([]shipping.SurchargeLine, 0, len(items))
	var baseParts []float64

	for _, item := range items {
		code := strings.TrimSpace(item.code())
		if code == "" {
			baseParts = append(baseParts, item.Price.Value)
			continue
		}
		lines = append(lines, charges.Line(shipping.CarrierDHL, code, item.Price.Value, a.log))
	}

	if len(baseParts) == 0 {
		return nil, lines
	}
	return wire.Float(money.Sum(baseParts...)), lines
}

func (a *Adapter) serviceName(code, reported string) string {
	if reported = strings.TrimSpace(reported); reported != "" {
		return reported
	}
	if name := a.profile.ServiceName(code); name != "" {
		return name
	}
	return code
}

// breakdown looks inside the first totalPrice entry first, then in the
// sibling detailedPriceBreakdown. The first non-empty location wins.
func breakdown(p product) []breakdownItem {
	if len(p.TotalPrice) > 0 && len(p.TotalPrice[0].Breakdown) > 0 {
		return p.TotalPrice[0].Breakdown
	}
	if len(p.DetailedPriceBreakdown) == 0 {
		return nil
	}
	for _, d := range p.DetailedPriceBreakdown {
		if d.CurrencyType == currencyBilling && len(d.Breakdown) > 0 {
			return d.Breakdown
		}
	}
	return p.DetailedPriceBreakdown[0].Breakdown
}

// billingPrice prefers the entry in billing currency.
func billingPrice(prices []totalPrice) (totalPrice, bool) {
	if len(prices) == 0 {
		return totalPrice{}, false
	}
	for _, p := range prices {
		if p.CurrencyType == currencyBilling {
			return p, true
		}
	}
	return prices[0], true
}

func billingCharge(list []shipmentCharge) (shipmentCharge, bool) {
	if len(list) == 0 {
		return shipmentCharge{}, false
	}
	for _, c := range list {
		if c.CurrencyType == currencyBilling {
			return c, true
		}
	}
	return list[0], true
}

func (p problem) isError() bool {
	return p.Status.Value >= 400 || strings.TrimSpace(p.Detail) != ""
}

func (p problem) err() error {
	return wire.Rejected(shipping.CarrierDHL, append([]string{p.Title, p.Detail}, p.AdditionalDetails...)...)
}

func measurementSystem(p shipping.PackageDetail) string {
	if p.WeightUnit == units.Kilogram || p.DimensionUnit == units.Centimeter {
		return "metric"
	}
	return "imperial"
}

func toPackages(list []shipping.PackageDetail, system string) []pkg {
	weightUnit, lengthUnit := units.Pound, units.Inch
	if system == "metric" {
		weightUnit, lengthUnit = units.Kilogram, units.Centimeter
	}

	out := make([]pkg, 0, len(list))
	for _, p := range list {
		from := p.WeightUnit
		if from == "" {
			from = units.Pound
		}
		item := pkg{
			TypeCode: p.TypeCode,
			Weight:   money.Round2(units.ConvertWeight(p.Weight, from, weightUnit)),
		}
		if item.TypeCode == packagingYours {
			item.TypeCode = ""
		}
		if p.HasDimensions() {
			item.Dimensions = &dimensions{
				Length: money.Round2(units.ConvertLength(p.Length, p.DimensionUnit, lengthUnit)),
				Width:  money.Round2(units.ConvertLength(p.Width, p.DimensionUnit, lengthUnit)),
				Height: money.Round2(units.ConvertLength(p.Height, p.DimensionUnit, lengthUnit)),
			}
		}
		out = append(out, item)
	}
	return out
}

func toRateAddress(addr shipping.Address) rateAddress {
	lines := padLines(addr.StreetLines())
	return rateAddress{
		PostalCode:   addr.PostalCode,
		CityName:     addr.City,
		CountryCode:  addr.CountryCode,
		ProvinceCode: addr.State,
		AddressLine1: lines[0],
		AddressLine2: lines[1],
		AddressLine3: lines[2],
	}
}

func toPartyDetails(p shipping.Party, typeCode string) partyDetails {
	lines := padLines(p.Address.StreetLines())
	details := partyDetails{
		PostalAddress: postalAddress{
			PostalCode:   p.Address.PostalCode,
			CityName:     p.Address.City,
			CountryCode:  p.Address.CountryCode,
			ProvinceCode: p.Address.State,
			AddressLine1: lines[0],
			AddressLine2: lines[1],
			AddressLine3: lines[2],
		},
		ContactInformation: contactInformation{
			FullName:    p.Contact.Name,
			CompanyName: p.Contact.Company,
			Phone:       p.Contact.Phone,
			Email:       p.Contact.Email,
		},
		TypeCode: typeCode,
	}
	if details.ContactInformation.CompanyName == "" {
		details.ContactInformation.CompanyName = p.Contact.Name
	}
	if p.Contact.TaxID != "" {
		details.RegistrationNumbers = []registrationNumber{{
			TypeCode:          "VAT",
			Number:            p.Contact.TaxID,
			IssuerCountryCode: p.Address.CountryCode,
		}}
	}
	return details
}

func padLines(lines []string) [3]string {
	var out [3]string
	copy(out[:], lines)
	return out
}

func receiverType(addr shipping.Address) string {
	if addr.IsResidential() {
		return "private"
	}
	return "business"
}

func description(req *shipping.ShipmentRequest) string {
	if req.Description != "" {
		return req.Description
	}
	if len(req.Commodities) > 0 {
		return req.Commodities[0].Description
	}
	return "Merchandise"
}

func exportReasonType(reason string) string {
	switch strings.ToUpper(reason) {
	case "GIFT", "SAMPLE", "RETURN", "REPAIR":
		return "temporary"
	default:
		return "permanent"
	}
}

// plannedDate renders the DHL timestamp format, e.g. 2026-03-02T10:00:00GMT+00:00.
func plannedDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02T15:04:05") + "GMT" + t.Format("-07:00")
}
