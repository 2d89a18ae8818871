// Package request assembles carrier-agnostic ShipmentRequests from stored
// shipments.
package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carrier-rate-engine/internal/address"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/logger"
	"carrier-rate-engine/internal/units"
	apperrors "carrier-rate-engine/pkg/errors"
	"carrier-rate-engine/pkg/money"
	"carrier-rate-engine/pkg/utils"

	"go.uber.org/zap"
)

const (
	DefaultLowValueThreshold = 2500.0
	DefaultExportReason      = "SALE"
	DocumentTypeInvoice      = "INV"
)

// ServiceDefaults picks the default service for a route, usually backed by the
// configured service catalog.
type ServiceDefaults interface {
	DefaultService(carrier shipping.CarrierCode, international bool, weightLb float64) (string, bool)
}

type Builder struct {
	origin            OriginDefaults
	normalizer        *address.Normalizer
	invoices          shipping.InvoiceGenerator
	services          ServiceDefaults
	lowValueThreshold float64
	log               *zap.Logger
	clock             func() time.Time
}

// NewBuilder creates a builder. invoices may be nil when no generator is configured.
func NewBuilder(origin OriginDefaults, invoices shipping.InvoiceGenerator, lowValueThreshold float64, log *zap.Logger) *Builder {
	if lowValueThreshold <= 0 {
		lowValueThreshold = DefaultLowValueThreshold
	}
	return &Builder{
		origin:            origin,
		normalizer:        address.NewNormalizer(),
		invoices:          invoices,
		lowValueThreshold: lowValueThreshold,
		log:               logger.OrNop(log).Named("request_builder"),
		clock:             time.Now,
	}
}

// WithServices returns a copy of the builder that consults d for default services.
func (b *Builder) WithServices(d ServiceDefaults) *Builder {
	clone := *b
	clone.services = d
	return &clone
}

// WithClock overrides the clock used for the default ship date.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	clone := *b
	clone.clock = clock
	return &clone
}

func (b *Builder) LowValueThreshold() float64 {
	return b.lowValueThreshold
}

// Build assembles the ShipmentRequest for one carrier.
func (b *Builder) Build(ctx context.Context, profile shipping.CarrierProfile, s Shipment) (*shipping.ShipmentRequest, error) {
	if len(s.Packages) == 0 {
		return nil, apperrors.Validation("shipment has no packages", apperrors.ErrValidation)
	}

	shipper, err := b.shipper(profile)
	if err != nil {
		return nil, err
	}
	recipientAddr, err := b.normalizer.Normalize(s.Recipient.Address, profile, s.RecipientCountry)
	if err != nil {
		return nil, err
	}

	purpose := s.Purpose
	if purpose == "" {
		purpose = shipping.PurposeRate
	}

	req := &shipping.ShipmentRequest{
		Reference: s.Reference,
		Purpose:   purpose,
		Carrier:   profile.Carrier,
		Shipper:   shipper,
		Recipient: shipping.Party{
			Contact: cleanContact(s.Recipient.Contact),
			Address: recipientAddr,
		},
		Currency:    b.currency(s),
		ShipDate:    s.ShipDate,
		Description: utils.SanitizeText(s.Description),
		Compliance:  s.Compliance,
	}
	if req.ShipDate.IsZero() {
		req.ShipDate = b.clock()
	}

	items := s.Items()
	req.Packages = buildPackages(s.Packages)
	req.DeclaredValue = declaredValue(s, items)

	international := req.International()
	if international {
		req.Commodities = buildCommodities(items, shipper.Address.CountryCode, exportReason(s))
		if len(req.Commodities) == 0 {
			return nil, apperrors.Validation("international shipments need at least one item", apperrors.ErrValidation)
		}
	}

	req.ServiceType = b.resolveService(profile, s, international, req.TotalBillableWeightLb())
	packaging := resolvePackaging(profile, req.ServiceType, s.PackagingType)
	req.PackagingType = packaging
	for i := range req.Packages {
		req.Packages[i].TypeCode = packaging
	}

	req.ValueAddedServices = DangerousGoodsServices(items, profile.DangerousGoods)
	for _, code := range s.AddonCodes {
		vas := shipping.ValueAddedService{Code: strings.ToLower(strings.TrimSpace(code))}
		if vas.Code == shipping.AddonInsurance {
			value := req.DeclaredValue
			vas.Value = &value
			vas.Currency = req.Currency
		}
		req.ValueAddedServices = append(req.ValueAddedServices, vas)
	}

	if international {
		b.defaultCompliance(profile, req)
		if err := req.CheckCompliance(b.lowValueThreshold); err != nil {
			return nil, err
		}
		if purpose == shipping.PurposeShip {
			req.Documents = b.documents(ctx, req)
		}
	}

	return req, nil
}

func (b *Builder) shipper(profile shipping.CarrierProfile) (shipping.Party, error) {
	addr, err := b.normalizer.Normalize(b.origin.Address, profile, nil)
	if err != nil {
		return shipping.Party{}, fmt.Errorf("origin address: %w", err)
	}
	return shipping.Party{Contact: cleanContact(b.origin.Contact), Address: addr}, nil
}

func (b *Builder) currency(s Shipment) string {
	for _, c := range []string{s.Currency, b.origin.Currency} {
		if c = strings.ToUpper(strings.TrimSpace(c)); c != "" {
			return c
		}
	}
	return "USD"
}

// resolveService applies the precedence: explicit carrier service, legacy
// option id, catalog default for the route, profile fallback. Rate requests
// without a pinned service stay nil so the carrier returns every service.
func (b *Builder) resolveService(profile shipping.CarrierProfile, s Shipment, international bool, weightLb float64) *string {
	if s.CarrierServiceID != nil {
		if id := strings.TrimSpace(*s.CarrierServiceID); id != "" {
			return &id
		}
	}

	if s.LegacyOptionID != nil {
		if mapped, ok := profile.LegacyOptions[strings.TrimSpace(*s.LegacyOptionID)]; ok {
			return &mapped
		}
		b.log.Warn("Unknown legacy service option",
			zap.String("carrier", profile.Carrier.String()),
			zap.String("option_id", *s.LegacyOptionID),
		)
	}

	if s.Purpose != shipping.PurposeShip {
		return nil
	}

	if b.services != nil {
		if code, ok := b.services.DefaultService(profile.Carrier, international, weightLb); ok {
			return &code
		}
	}

	route := profile.DomesticDefault
	if international {
		route = profile.InternationalDefault
	}
	if route != "" {
		return &route
	}

	fallback := profile.FallbackService
	return &fallback
}

// resolvePackaging forces own packaging on ground services, then accepts the
// requested code, then a known synonym, then generic packaging.
func resolvePackaging(profile shipping.CarrierProfile, service *string, requested string) string {
	if service != nil && profile.IsGroundService(*service) {
		return profile.GenericPackaging
	}

	requested = strings.TrimSpace(requested)
	if requested == "" {
		return profile.GenericPackaging
	}
	if profile.AllowsPackaging(requested) {
		return requested
	}
	if profile.AllowsPackaging(strings.ToUpper(requested)) {
		return strings.ToUpper(requested)
	}
	if mapped, ok := profile.PackagingSynonyms[strings.ToLower(requested)]; ok {
		return mapped
	}
	return profile.GenericPackaging
}

func (b *Builder) defaultCompliance(profile shipping.CarrierProfile, req *shipping.ShipmentRequest) {
	c := &req.Compliance
	if strings.TrimSpace(c.FilingType) == "" && c.ITN == nil && req.DeclaredValue < b.lowValueThreshold {
		c.FilingType = profile.LowValueFilingType
	}
	if strings.TrimSpace(c.Incoterm) == "" {
		c.Incoterm = profile.DefaultIncoterm
	}
	if c.DutiesPayor == "" {
		c.DutiesPayor = "RECIPIENT"
	}
	if c.SignatureName == "" {
		c.SignatureName = req.Shipper.Contact.Name
	}
}

// documents asks the invoice generator for a commercial invoice. A failure
// leaves the list empty and the carrier generates its own form.
func (b *Builder) documents(ctx context.Context, req *shipping.ShipmentRequest) []shipping.DocumentImage {
	docs := []shipping.DocumentImage{}
	if b.invoices == nil {
		return docs
	}

	doc, err := b.invoices.Generate(ctx, req)
	if err != nil {
		b.log.Warn("Commercial invoice generation failed, continuing without documents",
			zap.String("carrier", req.Carrier.String()),
			zap.String("reference", req.Reference),
			zap.Error(err),
		)
		return docs
	}
	if doc.TypeCode == "" {
		doc.TypeCode = DocumentTypeInvoice
	}
	return append(docs, doc)
}

// buildPackages bounds each package by the largest item on every axis.
func buildPackages(packages []Package) []shipping.PackageDetail {
	out := make([]shipping.PackageDetail, 0, len(packages))
	for _, p := range packages {
		detail := shipping.PackageDetail{
			Weight:        p.BillableWeight,
			WeightUnit:    p.WeightUnit,
			DimensionUnit: units.Inch,
			DeclaredValue: p.DeclaredValue,
			TypeCode:      p.TypeCode,
		}
		if detail.WeightUnit == "" {
			detail.WeightUnit = units.Pound
		}
		if detail.Weight <= 0 {
			detail.Weight = 1.0
		}

		unitSet := false
		for _, item := range p.Items {
			if item.Length <= 0 && item.Width <= 0 && item.Height <= 0 {
				continue
			}
			if !unitSet && item.DimensionUnit != "" {
				detail.DimensionUnit = item.DimensionUnit
				unitSet = true
			}
			from := item.DimensionUnit
			if from == "" {
				from = units.Inch
			}
			detail.Length = max(detail.Length, units.ConvertLength(item.Length, from, detail.DimensionUnit))
			detail.Width = max(detail.Width, units.ConvertLength(item.Width, from, detail.DimensionUnit))
			detail.Height = max(detail.Height, units.ConvertLength(item.Height, from, detail.DimensionUnit))
		}

		out = append(out, detail)
	}
	return out
}

func buildCommodities(items []Item, originCountry, reason string) []shipping.CommodityDetail {
	out := make([]shipping.CommodityDetail, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty < 0 {
			qty = 0
		}
		weightUnit := item.WeightUnit
		if weightUnit == "" {
			weightUnit = units.Pound
		}
		country := strings.ToUpper(strings.TrimSpace(item.CountryOfOrigin))
		if country == "" {
			country = originCountry
		}

		out = append(out, shipping.CommodityDetail{
			Description:         utils.SanitizeText(item.Description),
			Quantity:            qty,
			UnitValue:           money.Round2(item.UnitValue),
			TotalValue:          money.Round2(item.UnitValue * float64(qty)),
			Weight:              money.Round2(item.UnitWeight * float64(qty)),
			WeightUnit:          weightUnit,
			HSCode:              item.HSCode,
			CountryOfOrigin:     country,
			Material:            item.Material,
			ExportReasonType:    reason,
			ExportControlNumber: item.ExportControlNumber,
		})
	}
	return out
}

func declaredValue(s Shipment, items []Item) float64 {
	if s.DeclaredValue != nil {
		return money.Round2(*s.DeclaredValue)
	}
	values := make([]float64, 0, len(items))
	for _, item := range items {
		values = append(values, item.UnitValue*float64(max(item.Quantity, 0)))
	}
	return money.Sum(values...)
}

func exportReason(s Shipment) string {
	if r := strings.ToUpper(strings.TrimSpace(s.ExportReason)); r != "" {
		return r
	}
	return DefaultExportReason
}

func cleanContact(c shipping.Contact) shipping.Contact {
	return shipping.Contact{
		Name:    utils.CleanLine(c.Name),
		Company: utils.CleanLine(c.Company),
		Phone:   utils.SanitizePhone(c.Phone),
		Email:   utils.SanitizeEmail(c.Email),
		TaxID:   strings.TrimSpace(c.TaxID),
	}
}
