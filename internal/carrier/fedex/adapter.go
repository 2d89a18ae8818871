// Package fedex translates between the canonical shipping model and the
// FedEx REST rate and ship APIs.
package fedex

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
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
		log:           logger.OrNop(log).Named("carrier.fedex"),
	}
}

func (a *Adapter) Code() shipping.CarrierCode {
	return shipping.CarrierFedEx
}

func (a *Adapter) Profile() shipping.CarrierProfile {
	return a.profile
}

func (a *Adapter) ToWire(op shipping.Operation, req *shipping.ShipmentRequest) (*shipping.Payload, error) {
	if req == nil || len(req.Packages) == 0 {
		return nil, fmt.Errorf("fedex: shipment request has no packages")
	}

	shipment := requestedShipment{
		Shipper:           toParty(req.Shipper),
		Recipient:         toParty(req.Recipient),
		PackagingType:     req.PackagingType,
		PickupType:        "DROPOFF_AT_FEDEX_LOCATION",
		ShipDateStamp:     req.ShipDate.Format("2006-01-02"),
		RateRequestType:   []string{rateTypeAccount, "LIST"},
		PreferredCurrency: req.Currency,
		TotalPackageCount: len(req.Packages),
	}
	if shipment.PackagingType == "" {
		shipment.PackagingType = packagingYours
	}
	if req.ServiceType != nil {
		shipment.ServiceType = *req.ServiceType
	}

	dg := req.DangerousGoods()
	packageServices := a.packageServices(req, dg)
	for i, p := range req.Packages {
		item := packageLineItem{
			SequenceNumber:         i + 1,
			Weight:                 weight{Units: string(p.WeightUnit), Value: money.Round2(p.Weight)},
			PackageSpecialServices: packageServices,
		}
		if item.Weight.Units == "" {
			item.Weight.Units = string(units.Pound)
		}
		if p.HasDimensions() {
			item.Dimensions = &dimensions{
				Length: ceil(p.Length),
				Width:  ceil(p.Width),
				Height: ceil(p.Height),
				Units:  string(p.DimensionUnit),
			}
		}
		if p.DeclaredValue != nil {
			item.DeclaredValue = &amount{Amount: *p.DeclaredValue, Currency: req.Currency}
		}
		shipment.RequestedPackageLineItems = append(shipment.RequestedPackageLineItems, item)
	}

	shipmentServices := a.shipmentServices(req)
	if req.International() {
		shipment.CustomsClearanceDetail = toCustoms(req)
		if op == shipping.OperationShip && len(req.Documents) > 0 {
			if shipmentServices == nil {
				shipmentServices = &shipmentSpecialServices{}
			}
			shipmentServices.SpecialServiceTypes = append(shipmentServices.SpecialServiceTypes, "ELECTRONIC_TRADE_DOCUMENTS")
			etd := &etdDetail{}
			for _, doc := range req.Documents {
				etd.AttachedDocuments = append(etd.AttachedDocuments, attachedDocument{
					DocumentType:      "COMMERCIAL_INVOICE",
					DocumentReference: req.Reference,
					DocumentID:        doc.ID,
				})
			}
			shipmentServices.EtdDetail = etd
		}
	}
	shipment.ShipmentSpecialServices = shipmentServices

	body := request{
		AccountNumber:     account{Value: a.accountNumber},
		RequestedShipment: shipment,
	}
	if op == shipping.OperationShip {
		body.LabelResponseOptions = "LABEL"
		body.RequestedShipment.ShippingChargesPayment = &payment{PaymentType: "SENDER"}
		body.RequestedShipment.LabelSpecification = &labelSpecification{
			ImageType:      "PDF",
			LabelStockType: "PAPER_85X11_TOP_HALF",
		}
	} else {
		body.ReturnTransitTimes = true
	}

	encoded, err := wire.JSON.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("fedex: encode request: %w", err)
	}
	return &shipping.Payload{Carrier: shipping.CarrierFedEx, Operation: op, Body: encoded}, nil
}

func (a *Adapter) packageServices(req *shipping.ShipmentRequest, dg []shipping.ValueAddedService) *packageSpecialServices {
	services := &packageSpecialServices{}

	if len(dg) > 0 {
		services.SpecialServiceTypes = append(services.SpecialServiceTypes, "DANGEROUS_GOODS")
		detail := &dangerousGoodsDetail{}
		for _, vas := range dg {
			if !slices.Contains(detail.Options, vas.Code) {
				detail.Options = append(detail.Options, vas.Code)
			}
		}
		services.DangerousGoodsDetail = detail
	}

	for _, vas := range req.Addons() {
		switch vas.Code {
		case shipping.AddonSignatureRequired:
			services.SignatureOptionType = "DIRECT"
		case shipping.AddonAdultSignature:
			services.SignatureOptionType = "ADULT"
		}
	}
	if services.SignatureOptionType != "" {
		services.SpecialServiceTypes = append(services.SpecialServiceTypes, "SIGNATURE_OPTION")
	}

	if len(services.SpecialServiceTypes) == 0 {
		return nil
	}
	return services
}

func (a *Adapter) shipmentServices(req *shipping.ShipmentRequest) *shipmentSpecialServices {
	var types []string
	for _, vas := range req.Addons() {
		switch vas.Code {
		case shipping.AddonSaturdayDelivery:
			types = append(types, "SATURDAY_DELIVERY")
		case shipping.AddonDryIce:
			types = append(types, "DRY_ICE")
		case shipping.AddonSignatureRequired, shipping.AddonAdultSignature, shipping.AddonInsurance:
		default:
			a.log.Debug("Addon has no FedEx special service", zap.String("addon", vas.Code))
		}
	}
	if len(types) == 0 {
		return nil
	}
	return &shipmentSpecialServices{SpecialServiceTypes: types}
}

func toParty(p shipping.Party) party {
	out := party{
		Address: address{
			StreetLines:         p.Address.StreetLines(),
			City:                p.Address.City,
			StateOrProvinceCode: p.Address.State,
			PostalCode:          p.Address.PostalCode,
			CountryCode:         p.Address.CountryCode,
			Residential:         p.Address.IsResidential(),
		},
	}
	if p.Contact != (shipping.Contact{}) {
		out.Contact = &contact{
			PersonName:   p.Contact.Name,
			CompanyName:  p.Contact.Company,
			PhoneNumber:  p.Contact.Phone,
			EmailAddress: p.Contact.Email,
		}
	}
	return out
}

func toCustoms(req *shipping.ShipmentRequest) *customsClearanceDetail {
	c := &customsClearanceDetail{
		DutiesPayment:     payment{PaymentType: strings.ToUpper(req.Compliance.DutiesPayor)},
		CommercialInvoice: &commercialInvoice{ShipmentPurpose: "SOLD", TermsOfSale: req.Compliance.Incoterm},
		TotalCustomsValue: &amount{Amount: req.DeclaredValue, Currency: req.Currency},
	}
	if c.DutiesPayment.PaymentType == "" {
		c.DutiesPayment.PaymentType = "RECIPIENT"
	}
	if req.Compliance.ITN != nil {
		c.ExportDetail = &exportDetail{ExportComplianceStatement: *req.Compliance.ITN}
	} else if req.Compliance.FilingType != "" {
		c.ExportDetail = &exportDetail{ExportComplianceStatement: req.Compliance.FilingType}
	}

	for _, item := range req.Commodities {
		cm := commodity{
			Description:          item.Description,
			Quantity:             item.Quantity,
			QuantityUnits:        "PCS",
			Weight:               weight{Units: string(item.WeightUnit), Value: item.Weight},
			UnitPrice:            amount{Amount: item.UnitValue, Currency: req.Currency},
			CustomsValue:         amount{Amount: item.TotalValue, Currency: req.Currency},
			CountryOfManufacture: item.CountryOfOrigin,
		}
		if item.HSCode != nil {
			cm.HarmonizedCode = *item.HSCode
		}
		if item.ExportControlNumber != nil {
			cm.ExportLicenseNumber = *item.ExportControlNumber
		}
		c.Commodities = append(c.Commodities, cm)
	}
	return c
}

// FromWireRate turns a FedEx rate response into quotes, one per service.
func (a *Adapter) FromWireRate(body []byte) ([]shipping.RateQuote, error) {
	var resp rateResponse
	if err := wire.JSON.Unmarshal(body, &resp); err != nil {
		return nil, wire.Malformed(shipping.CarrierFedEx, err)
	}
	if len(resp.Errors) > 0 && len(resp.Output.RateReplyDetails) == 0 {
		return nil, rejected(resp.Errors)
	}
	if err := wire.RequireSection(shipping.CarrierFedEx, body, "output"); err != nil {
		return nil, err
	}

	var raw struct {
		Output struct {
			RateReplyDetails []json.RawMessage `json:"rateReplyDetails"`
		} `json:"output"`
	}
	_ = wire.JSON.Unmarshal(body, &raw)

	quotes := make([]shipping.RateQuote, 0, len(resp.Output.RateReplyDetails))
	for i, reply := range resp.Output.RateReplyDetails {
		detail, ok := preferredDetail(reply.RatedShipmentDetails)
		if !ok {
			a.log.Warn("FedEx service without rated shipment details skipped",
				zap.String("service", reply.ServiceType),
			)
			continue
		}

		quote := shipping.RateQuote{
			Carrier:            shipping.CarrierFedEx,
			ServiceType:        reply.ServiceType,
			ServiceName:        a.serviceName(reply.ServiceType, reply.ServiceName),
			TotalCharge:        money.Round2(detail.TotalNetCharge.Value),
			Currency:           a.currency(detail),
			BaseCharge:         detail.TotalBaseCharge.Ptr(),
			SurchargeBreakdown: a.lines(detail.surchargeList()),
		}
		if !detail.TotalNetCharge.Valid {
			wire.TolerantMissing(a.log, shipping.CarrierFedEx, "totalNetCharge")
		}
		quote.Surcharges = surchargeTotal(detail, quote.SurchargeBreakdown)

		if days, ok := transitDays[strings.ToUpper(reply.OperationalDetail.TransitTime)]; ok {
			quote.TransitDays = &days
		}
		quote.EstimatedDelivery = wire.ParseDate(reply.Commit.DateDetail.DayFormat)
		if quote.EstimatedDelivery == nil {
			quote.EstimatedDelivery = wire.ParseDate(reply.OperationalDetail.DeliveryDate)
		}
		if i < len(raw.Output.RateReplyDetails) {
			quote.Raw = raw.Output.RateReplyDetails[i]
		}

		quotes = append(quotes, quote)
	}

	return quotes, nil
}

// FromWireShipment turns a FedEx ship response into a ShipmentResult.
func (a *Adapter) FromWireShipment(body []byte) (*shipping.ShipmentResult, error) {
	var resp shipResponse
	if err := wire.JSON.Unmarshal(body, &resp); err != nil {
		return nil, wire.Malformed(shipping.CarrierFedEx, err)
	}
	if len(resp.Errors) > 0 {
		return nil, rejected(resp.Errors)
	}
	if len(resp.Output.TransactionShipments) == 0 {
		return nil, wire.Rejected(shipping.CarrierFedEx, "response has no transaction shipments")
	}

	shipment := resp.Output.TransactionShipments[0]
	result := &shipping.ShipmentResult{
		Carrier:            shipping.CarrierFedEx,
		TrackingNumber:     shipment.MasterTrackingNumber,
		ServiceType:        shipment.ServiceType,
		ServiceName:        a.serviceName(shipment.ServiceType, shipment.ServiceName),
		Currency:           "USD",
		SurchargeBreakdown: []shipping.SurchargeLine{},
		Labels:             []shipping.Label{},
		Raw:                json.RawMessage(body),
	}

	for _, piece := range shipment.PieceResponses {
		result.PackageTracking = append(result.PackageTracking, piece.TrackingNumber)
		for _, doc := range piece.PackageDocuments {
			if doc.EncodedLabel == "" {
				continue
			}
			result.Labels = append(result.Labels, shipping.Label{
				TrackingNumber: piece.TrackingNumber,
				Format:         strings.ToUpper(doc.DocType),
				Content:        doc.EncodedLabel,
			})
		}
	}
	if result.TrackingNumber == "" && len(result.PackageTracking) > 0 {
		result.TrackingNumber = result.PackageTracking[0]
	}

	if detail, ok := preferredDetail(shipment.CompletedShipmentDetail.ShipmentRating.ShipmentRateDetails); ok {
		result.TotalCharge = money.Round2(detail.TotalNetCharge.Value)
		result.Currency = a.currency(detail)
		result.BaseCharge = detail.TotalBaseCharge.Ptr()
		result.SurchargeBreakdown = a.lines(detail.surchargeList())
		result.Surcharges = surchargeTotal(detail, result.SurchargeBreakdown)
	} else {
		wire.TolerantMissing(a.log, shipping.CarrierFedEx, "shipmentRating")
	}

	return result, nil
}

func (a *Adapter) lines(list []surcharge) []shipping.SurchargeLine {
	out := make([]shipping.SurchargeLine, 0, len(list))
	for _, s := range list {
		out = append(out, surcharges.Line(shipping.CarrierFedEx, s.code(), s.Amount.Value, a.log))
	}
	return out
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

func (a *Adapter) currency(d ratedShipmentDetail) string {
	for _, c := range []string{d.Currency, d.ShipmentRateDetail.Currency} {
		if c != "" {
			return c
		}
	}
	wire.TolerantMissing(a.log, shipping.CarrierFedEx, "currency")
	return "USD"
}

// preferredDetail picks the account rate when FedEx returns several rate types.
func preferredDetail(details []ratedShipmentDetail) (ratedShipmentDetail, bool) {
	if len(details) == 0 {
		return ratedShipmentDetail{}, false
	}
	for _, d := range details {
		if d.RateType == rateTypeAccount || d.RateType == rateTypePreferred {
			return d, true
		}
	}
	return details[0], true
}

func surchargeTotal(d ratedShipmentDetail, lines []shipping.SurchargeLine) *float64 {
	switch {
	case d.ShipmentRateDetail.TotalSurcharges.Valid:
		return wire.Float(money.NonNegative(money.Round2(d.ShipmentRateDetail.TotalSurcharges.Value)))
	case d.TotalSurcharges.Valid:
		return wire.Float(money.NonNegative(money.Round2(d.TotalSurcharges.Value)))
	}
	return wire.Float(shipping.SumLines(lines))
}

func rejected(errs []apiError) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, strings.TrimSpace(e.Code+" "+e.Message))
	}
	return wire.Rejected(shipping.CarrierFedEx, messages...)
}

func ceil(v float64) int {
	return int(math.Ceil(v))
}
