// Package ups translates between the canonical shipping model and the UPS
// Rating and Shipping APIs.
package ups

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

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
	log           *zap.Logger
}

func New(accountNumber string, log *zap.Logger) *Adapter {
	return &Adapter{
		accountNumber: accountNumber,
		profile:       Profile(),
		log:           logger.OrNop(log).Named("carrier.ups"),
	}
}

func (a *Adapter) Code() shipping.CarrierCode {
	return shipping.CarrierUPS
}

func (a *Adapter) Profile() shipping.CarrierProfile {
	return a.profile
}

func (a *Adapter) ToWire(op shipping.Operation, req *shipping.ShipmentRequest) (*shipping.Payload, error) {
	if req == nil || len(req.Packages) == 0 {
		return nil, fmt.Errorf("ups: shipment request has no packages")
	}

	s := a.shipment(op, req)
	header := requestHeader{TransactionReference: transactionReference{CustomerContext: req.Reference}}

	var body any
	switch op {
	case shipping.OperationShip:
		var ship shipRequest
		header.RequestOption = "nonvalidate"
		ship.ShipmentRequest.Request = header
		ship.ShipmentRequest.Shipment = s
		ship.ShipmentRequest.LabelSpecification = labelSpecification{LabelImageFormat: code{Code: "GIF"}}
		body = ship
	default:
		var rate rateRequest
		header.RequestOption = "Rate"
		if req.ServiceType == nil {
			header.RequestOption = "Shop"
		}
		rate.RateRequest.Request = header
		rate.RateRequest.Shipment = s
		body = rate
	}

	encoded, err := wire.JSON.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ups: encode request: %w", err)
	}
	return &shipping.Payload{Carrier: shipping.CarrierUPS, Operation: op, Body: encoded}, nil
}

func (a *Adapter) shipment(op shipping.Operation, req *shipping.ShipmentRequest) shipment {
	shipper := toParty(req.Shipper)
	shipper.ShipperNumber = a.accountNumber

	s := shipment{
		Description:           req.Description,
		Shipper:               shipper,
		ShipTo:                toParty(req.Recipient),
		ShipFrom:              toParty(req.Shipper),
		NumOfPieces:           strconv.Itoa(len(req.Packages)),
		ShipmentRatingOptions: &ratingOptions{},
	}
	payment := &paymentDetails{ShipmentCharge: []shipmentCharge{{Type: "01", BillShipper: &billShipper{AccountNumber: a.accountNumber}}}}
	if req.International() && strings.EqualFold(req.Compliance.DutiesPayor, "SENDER") {
		payment.ShipmentCharge = append(payment.ShipmentCharge, shipmentCharge{Type: "02", BillShipper: &billShipper{AccountNumber: a.accountNumber}})
	}
	if op == shipping.OperationShip {
		s.PaymentInformation = payment
	} else {
		s.PaymentDetails = payment
	}
	if req.ServiceType != nil {
		s.Service = &code{Code: *req.ServiceType, Description: a.profile.ServiceName(*req.ServiceType)}
	}

	pkgOptions := a.packageOptions(req)
	for i, p := range req.Packages {
		item := pkg{
			PackageWeight: packageWeight{
				UnitOfMeasurement: code{Code: weightCode(p.WeightUnit)},
				Weight:            formatNumber(p.Weight),
			},
		}
		packaging := &code{Code: p.TypeCode}
		if packaging.Code == "" {
			packaging.Code = packagingCustomer
		}
		if op == shipping.OperationShip {
			item.Packaging = packaging
		} else {
			item.PackagingType = packaging
		}
		if p.HasDimensions() {
			item.Dimensions = &dimensions{
				UnitOfMeasurement: code{Code: string(p.DimensionUnit)},
				Length:            formatNumber(p.Length),
				Width:             formatNumber(p.Width),
				Height:            formatNumber(p.Height),
			}
		}

		options := &packageServiceOptions{}
		if pkgOptions != nil {
			copied := *pkgOptions
			options = &copied
		}
		if i > 0 {
			options.HazMat = nil
		}
		if p.DeclaredValue != nil {
			options.DeclaredValue = &monetary{CurrencyCode: req.Currency, MonetaryValue: formatNumber(*p.DeclaredValue)}
		}
		if options.DeclaredValue != nil || options.DeliveryConfirmation != nil || len(options.HazMat) > 0 {
			item.PackageServiceOptions = options
		}
		s.Package = append(s.Package, item)
	}

	var shipmentOptions shipmentServiceOptions
	for _, vas := range req.Addons() {
		if vas.Code == shipping.AddonSaturdayDelivery {
			indicator := ""
			shipmentOptions.SaturdayDeliveryIndicator = &indicator
		}
	}
	if req.International() {
		s.InvoiceLineTotal = &monetary{CurrencyCode: req.Currency, MonetaryValue: formatNumber(req.DeclaredValue)}
		if op == shipping.OperationShip {
			shipmentOptions.InternationalForms = internationalFormsFor(req)
		}
	}
	if shipmentOptions.SaturdayDeliveryIndicator != nil || shipmentOptions.InternationalForms != nil {
		s.ShipmentServiceOptions = &shipmentOptions
	}

	return s
}

// packageOptions holds the options every package shares. Dangerous goods ride
// on the first package only.
func (a *Adapter) packageOptions(req *shipping.ShipmentRequest) *packageServiceOptions {
	options := &packageServiceOptions{}
	set := false

	for _, vas := range req.DangerousGoods() {
		options.HazMat = append(options.HazMat, hazMat{
			PackagingTypeQuantity:       "1",
			RegulationSet:               "IATA",
			TransportationMode:          transportMode(req),
			UNIDNumber:                  vas.DangerousGoods.UNCode,
			ClassDivisionNumber:         vas.DangerousGoods.Class,
			CommodityRegulatedLevelCode: vas.Code,
		})
		set = true
	}

	for _, vas := range req.Addons() {
		switch vas.Code {
		case shipping.AddonSignatureRequired:
			options.DeliveryConfirmation = &deliveryConfirmation{DCISType: "2"}
			set = true
		case shipping.AddonAdultSignature:
			options.DeliveryConfirmation = &deliveryConfirmation{DCISType: "3"}
			set = true
		case shipping.AddonInsurance:
			if vas.Value != nil {
				options.DeclaredValue = &monetary{CurrencyCode: req.Currency, MonetaryValue: formatNumber(*vas.Value / float64(len(req.Packages)))}
				set = true
			}
		}
	}

	if !set {
		return nil
	}
	return options
}

func internationalFormsFor(req *shipping.ShipmentRequest) *internationalForms {
	forms := &internationalForms{
		FormType:        []string{"01"},
		InvoiceNumber:   req.Compliance.InvoiceNumber,
		InvoiceDate:     req.ShipDate.Format("20060102"),
		ReasonForExport: "SALE",
		TermsOfShipment: req.Compliance.Incoterm,
		CurrencyCode:    req.Currency,
	}
	if req.Compliance.ITN == nil && req.Compliance.FilingType != "" {
		forms.EEIFilingOption = &eeiFilingOption{Code: "3", Description: req.Compliance.FilingType}
	}

	for _, c := range req.Commodities {
		p := product{
			Description: []string{c.Description},
			Unit: unit{
				Number:            strconv.Itoa(c.Quantity),
				Value:             formatNumber(c.UnitValue),
				UnitOfMeasurement: code{Code: "PCS"},
			},
			OriginCountryCode: c.CountryOfOrigin,
		}
		if c.HSCode != nil {
			p.CommodityCode = *c.HSCode
		}
		if c.ExportControlNumber != nil {
			p.ExportControlClassificationNumber = *c.ExportControlNumber
		}
		if c.ExportReasonType != "" {
			forms.ReasonForExport = c.ExportReasonType
		}
		forms.Product = append(forms.Product, p)
	}

	if len(req.Documents) > 0 {
		forms.FormType = append(forms.FormType, "07")
		ids := make([]string, 0, len(req.Documents))
		for _, doc := range req.Documents {
			ids = append(ids, doc.ID)
		}
		forms.UserCreatedForm = &userCreatedForm{DocumentID: ids}
	}
	return forms
}

// FromWireRate turns a UPS rate response into quotes, one per rated shipment.
func (a *Adapter) FromWireRate(body []byte) ([]shipping.RateQuote, error) {
	if err := checkEnvelope(body); err != nil {
		return nil, err
	}

	var resp rateResponse
	if err := wire.JSON.Unmarshal(body, &resp); err != nil {
		return nil, wire.Malformed(shipping.CarrierUPS, err)
	}
	if err := wire.RequireSection(shipping.CarrierUPS, body, "RateResponse"); err != nil {
		return nil, err
	}

	var raw struct {
		RateResponse struct {
			RatedShipment wire.OneOrMany[json.RawMessage] `json:"RatedShipment"`
		} `json:"RateResponse"`
	}
	_ = wire.JSON.Unmarshal(body, &raw)

	rated := resp.RateResponse.RatedShipment
	quotes := make([]shipping.RateQuote, 0, len(rated))
	for i, r := range rated {
		total := r.TotalCharges
		if r.NegotiatedRateCharges != nil && r.NegotiatedRateCharges.TotalCharge.MonetaryValue.Valid {
			total = r.NegotiatedRateCharges.TotalCharge
		}
		if !total.MonetaryValue.Valid {
			wire.TolerantMissing(a.log, shipping.CarrierUPS, "TotalCharges")
		}

		quote := shipping.RateQuote{
			Carrier:     shipping.CarrierUPS,
			ServiceType: r.Service.Code,
			ServiceName: a.serviceName(r.Service.Code, r.Service.Description),
			TotalCharge: money.Round2(total.MonetaryValue.Value),
			Currency:    a.currency(total.CurrencyCode, r.TotalCharges.CurrencyCode),
			BaseCharge:  baseCharge(r.BaseServiceCharge, r.TransportationCharges),
		}

		lines := a.itemized(r.ItemizedCharges, r.RatedPackage)
		quote.SurchargeBreakdown = withResidual(lines, r.ServiceOptionsCharges.MonetaryValue.Value)
		quote.Surcharges = wire.Float(shipping.SumLines(quote.SurchargeBreakdown))

		if i < len(raw.RateResponse.RatedShipment) {
			quote.Raw = raw.RateResponse.RatedShipment[i]
		}

		quote.TransitDays = r.GuaranteedDelivery.BusinessDaysInTransit.Ptr()
		if r.TimeInTransit != nil {
			arrival := r.TimeInTransit.ServiceSummary.EstimatedArrival
			quote.EstimatedDelivery = wire.ParseDate(arrival.Arrival.Date)
			if quote.TransitDays == nil {
				quote.TransitDays = arrival.BusinessDaysInTransit.Ptr()
			}
		}

		quotes = append(quotes, quote)
	}

	return quotes, nil
}

// FromWireShipment turns a UPS ship response into a ShipmentResult.
func (a *Adapter) FromWireShipment(body []byte) (*shipping.ShipmentResult, error) {
	if err := checkEnvelope(body); err != nil {
		return nil, err
	}

	var resp shipResponse
	if err := wire.JSON.Unmarshal(body, &resp); err != nil {
		return nil, wire.Malformed(shipping.CarrierUPS, err)
	}
	results := resp.ShipmentResponse.ShipmentResults
	shipCharges := results.ShipmentCharges

	total := shipCharges.TotalCharges
	if results.NegotiatedRateCharges != nil && results.NegotiatedRateCharges.TotalCharge.MonetaryValue.Valid {
		total = results.NegotiatedRateCharges.TotalCharge
	}

	result := &shipping.ShipmentResult{
		Carrier:        shipping.CarrierUPS,
		TrackingNumber: results.ShipmentIdentificationNumber,
		TotalCharge:    money.Round2(total.MonetaryValue.Value),
		Currency:       a.currency(total.CurrencyCode, shipCharges.TotalCharges.CurrencyCode),
		BaseCharge:     baseCharge(shipCharges.BaseServiceCharge, shipCharges.TransportationCharges),
		Labels:         []shipping.Label{},
		Raw:            json.RawMessage(body),
	}
	if result.TrackingNumber == "" {
		wire.TolerantMissing(a.log, shipping.CarrierUPS, "ShipmentIdentificationNumber")
	}

	var packageCharges []itemizedCharge
	for _, p := range results.PackageResults {
		result.PackageTracking = append(result.PackageTracking, p.TrackingNumber)
		packageCharges = append(packageCharges, p.ItemizedCharges...)
		if p.ShippingLabel.GraphicImage != "" {
			result.Labels = append(result.Labels, shipping.Label{
				TrackingNumber: p.TrackingNumber,
				Format:         strings.ToUpper(p.ShippingLabel.ImageFormat.Code),
				Content:        p.ShippingLabel.GraphicImage,
			})
		}
	}

	lines := a.itemized(append(shipCharges.ItemizedCharges, packageCharges...), nil)
	result.SurchargeBreakdown = withResidual(lines, shipCharges.ServiceOptionsCharges.MonetaryValue.Value)
	result.Surcharges = wire.Float(shipping.SumLines(result.SurchargeBreakdown))

	return result, nil
}

// itemized flattens shipment-level and package-level itemized charges.
func (a *Adapter) itemized(shipmentLevel []itemizedCharge, packages []ratedPackage) []shipping.SurchargeLine {
	all := append([]itemizedCharge{}, shipmentLevel...)
	for _, p := range packages {
		all = append(all, p.ItemizedCharges...)
	}

	lines := make([]shipping.SurchargeLine, 0, len(all))
	for _, c := range all {
		lines = append(lines, charges.Line(shipping.CarrierUPS, c.Code, c.MonetaryValue.Value, a.log))
	}
	return lines
}

// withResidual appends the part of the service options total the itemized
// lines do not explain, so known charges are not counted twice.
func withResidual(lines []shipping.SurchargeLine, serviceOptions float64) []shipping.SurchargeLine {
	itemized := shipping.SumLines(lines)
	residual := money.Sum(serviceOptions, -itemized)
	if residual > 0 {
		lines = append(lines, shipping.SurchargeLine{
			Type:        serviceOptionsCode,
			Description: serviceOptionsDescription,
			Amount:      residual,
		})
	}
	return lines
}

func (a *Adapter) serviceName(code, reported string) string {
	if name := a.profile.ServiceName(code); name != "" {
		return name
	}
	if reported = strings.TrimSpace(reported); reported != "" {
		return reported
	}
	return code
}

func (a *Adapter) currency(codes ...string) string {
	for _, c := range codes {
		if c != "" {
			return c
		}
	}
	wire.TolerantMissing(a.log, shipping.CarrierUPS, "CurrencyCode")
	return "USD"
}

func checkEnvelope(body []byte) error {
	var env errorEnvelope
	if err := wire.JSON.Unmarshal(body, &env); err != nil {
		return wire.Malformed(shipping.CarrierUPS, err)
	}
	if len(env.Response.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(env.Response.Errors))
	for _, e := range env.Response.Errors {
		messages = append(messages, strings.TrimSpace(e.Code+" "+e.Message))
	}
	return wire.Rejected(shipping.CarrierUPS, messages...)
}

func baseCharge(base, transportation charge) *float64 {
	if base.MonetaryValue.Valid {
		return wire.Float(money.Round2(base.MonetaryValue.Value))
	}
	if transportation.MonetaryValue.Valid {
		return wire.Float(money.Round2(transportation.MonetaryValue.Value))
	}
	return nil
}

func weightCode(unit units.WeightUnit) string {
	if unit == units.Kilogram {
		return "KGS"
	}
	return "LBS"
}

func transportMode(req *shipping.ShipmentRequest) string {
	if req.ServiceType != nil && Profile().IsGroundService(*req.ServiceType) {
		return "Ground"
	}
	return "CAO"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(money.Round2(v), 'f', -1, 64)
}

func toParty(p shipping.Party) party {
	out := party{
		Name:                    p.Contact.Company,
		AttentionName:           p.Contact.Name,
		EMailAddress:            p.Contact.Email,
		TaxIdentificationNumber: p.Contact.TaxID,
		Address: address{
			AddressLine:       p.Address.StreetLines(),
			City:              p.Address.City,
			StateProvinceCode: p.Address.State,
			PostalCode:        p.Address.PostalCode,
			CountryCode:       p.Address.CountryCode,
		},
	}
	if out.Name == "" {
		out.Name = p.Contact.Name
	}
	if p.Contact.Phone != "" {
		out.Phone = &phone{Number: p.Contact.Phone}
	}
	if p.Address.IsResidential() {
		indicator := ""
		out.Address.ResidentialAddressIndicator = &indicator
	}
	return out
}
