// Package rating implements the rate shopping and shipment use cases on top
// of the request builder, the carrier aggregator and the pricing layer.
package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrier-rate-engine/internal/catalog"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/logger"
	"carrier-rate-engine/internal/pricing"
	aggregation "carrier-rate-engine/internal/rating"
	"carrier-rate-engine/internal/request"
	"carrier-rate-engine/internal/units"
	apperrors "carrier-rate-engine/pkg/errors"
	"carrier-rate-engine/pkg/money"
	"carrier-rate-engine/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher receives a summary of every completed rate shop.
type EventPublisher interface {
	PublishQuoted(ctx context.Context, event QuoteEvent) error
}

// Options carries the engine settings that do not come from the config provider.
type Options struct {
	Commissions     map[shipping.CarrierCode]float64
	Classification  pricing.ClassificationRates
	FallbackRates   map[shipping.CarrierCode]catalog.FallbackRate
	OfflineFallback bool
	Events          EventPublisher
}

// Service implements rate shopping and shipment use cases
type Service struct {
	builder    *request.Builder
	aggregator *aggregation.Aggregator
	config     shipping.ConfigProvider
	opts       Options
	log        *zap.Logger
	clock      func() time.Time
}

// NewService creates a new rating service
func NewService(builder *request.Builder, aggregator *aggregation.Aggregator, config shipping.ConfigProvider, opts Options, log *zap.Logger) *Service {
	return &Service{
		builder:    builder,
		aggregator: aggregator,
		config:     config,
		opts:       opts,
		log:        logger.OrNop(log).Named("usecase.rating"),
		clock:      time.Now,
	}
}

// pricingContext is everything priced from one config snapshot.
type pricingContext struct {
	snapshot   *shipping.ConfigSnapshot
	catalog    *catalog.Catalog
	markups    *pricing.MarkupEngine
	addons     *pricing.AddonPricer
	commission *pricing.CommissionCalculator
	builder    *request.Builder
}

func (s *Service) pricingContext(ctx context.Context) *pricingContext {
	snapshot, err := s.config.Snapshot(ctx)
	if err != nil || snapshot == nil {
		s.log.Warn("Config snapshot unavailable, pricing without admin configuration", zap.Error(err))
		snapshot = &shipping.ConfigSnapshot{}
	}

	commissions := make(map[shipping.CarrierCode]float64, len(snapshot.Commissions)+len(s.opts.Commissions))
	for carrier, pct := range snapshot.Commissions {
		commissions[carrier] = pct
	}
	for carrier, pct := range s.opts.Commissions {
		commissions[carrier] = pct
	}

	cat := catalog.New(snapshot.Services, s.opts.FallbackRates)
	return &pricingContext{
		snapshot:   snapshot,
		catalog:    cat,
		markups:    pricing.NewMarkupEngine(snapshot.MarkupRules),
		addons:     pricing.NewAddonPricer(snapshot.Addons, s.log),
		commission: pricing.NewCommissionCalculator(commissions, s.opts.Classification),
		builder:    s.builder.WithServices(cat),
	}
}

// Shop quotes every enabled carrier, or the pinned one, and prices the results.
func (s *Service) Shop(ctx context.Context, in *RateRequest) (*RateResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, apperrors.Validation("Invalid input", err)
	}
	if in.Reference == "" {
		in.Reference = uuid.NewString()
	}

	pc := s.pricingContext(ctx)
	if err := pc.addons.ValidateSelection(in.Addons); err != nil {
		return nil, err
	}

	carriers, err := s.carriers(in.Carrier)
	if err != nil {
		return nil, err
	}

	shipment := in.toShipment(shipping.PurposeRate, in.ServiceCode)
	items := shipment.Items()

	response := &RateResponse{
		QuoteID:   uuid.NewString(),
		Reference: in.Reference,
		Quotes:    make([]QuoteResponse, 0),
		Errors:    make([]CarrierError, 0),
	}

	var (
		jobs        []aggregation.Job
		candidates  = make(map[shipping.CarrierCode][]shipping.CarrierServiceDescriptor)
		unsupported int
	)
	for _, carrier := range carriers {
		adapter, _ := s.aggregator.Adapter(carrier)
		req, err := pc.builder.Build(ctx, adapter.Profile(), shipment)
		if err != nil {
			if errors.Is(err, apperrors.ErrValidation) {
				return nil, err
			}
			response.Errors = append(response.Errors, toCarrierError(carrier, codeOf(err), err))
			continue
		}
		response.BillableWeightLb = money.Round2(req.TotalBillableWeightLb())

		if pc.catalog.Configured(carrier) {
			profile := catalog.ProfileOf(req, hasLithium(items), hasFragile(items))
			accepted, err := pc.catalog.Check(carrier, req.International(), profile)
			if err != nil {
				if errors.Is(err, apperrors.ErrUnsupportedRoute) {
					unsupported++
				}
				response.Errors = append(response.Errors, toCarrierError(carrier, codeOf(err), err))
				continue
			}
			candidates[carrier] = accepted
		}
		jobs = append(jobs, aggregation.Job{Carrier: carrier, Request: req})
	}

	if len(jobs) == 0 && unsupported == len(carriers) {
		return nil, apperrors.NewAppError(apperrors.CodeUnsupportedRoute,
			"No active service serves this destination", apperrors.ErrUnsupportedRoute)
	}

	requests := make(map[shipping.CarrierCode]*shipping.ShipmentRequest, len(jobs))
	for _, job := range jobs {
		requests[job.Carrier] = job.Request
	}

	for _, result := range s.aggregator.Shop(ctx, jobs) {
		req := requests[result.Carrier]
		if result.Err != nil {
			response.Errors = append(response.Errors, toCarrierError(result.Carrier, codeOf(result.Err), result.Err))
			if s.opts.OfflineFallback && errors.Is(result.Err, apperrors.ErrCarrierUnavailable) {
				response.Quotes = append(response.Quotes, s.estimates(pc, req, candidates[result.Carrier], items, in.Addons)...)
			}
			continue
		}
		accepted, restricted := candidates[result.Carrier]
		for _, quote := range result.Quotes {
			if restricted && !offers(accepted, quote.ServiceType) {
				s.log.Debug("Carrier quote dropped, service not accepted for this package",
					zap.String("carrier", result.Carrier.String()),
					zap.String("service", quote.ServiceType),
				)
				continue
			}
			response.Quotes = append(response.Quotes, s.price(pc, req, quote, items, in.Addons, false))
		}
	}

	logger.Info("Rate shop completed",
		zap.String("quote_id", response.QuoteID),
		zap.String("reference", response.Reference),
		zap.Int("quotes", len(response.Quotes)),
		zap.Int("carrier_errors", len(response.Errors)),
		zap.String("event", "rates_quoted"),
	)
	s.publish(ctx, response, shipment.Recipient.Address.CountryCode, carriers)

	return response, nil
}

// price turns one carrier quote into the customer price:
// markup, then commission, then classification and selected addon charges.
func (s *Service) price(pc *pricingContext, req *shipping.ShipmentRequest, quote shipping.RateQuote, items []request.Item, selected []string, estimate bool) QuoteResponse {
	marked := pc.markups.Apply(quote.TotalCharge, pricing.MarkupInput{
		Carrier:            quote.Carrier,
		ServiceCode:        quote.ServiceType,
		WeightLb:           req.TotalBillableWeightLb(),
		DestinationCountry: req.Recipient.Address.CountryCode,
	})
	commissioned := pc.commission.ApplyCommission(marked, quote.Carrier)
	classification := pc.commission.ClassificationSurcharge(items)

	var declared *float64
	if req.DeclaredValue > 0 {
		declared = &req.DeclaredValue
	}
	offer := pc.addons.Offer(quote, declared, selected)
	addonCharges := pricing.SelectedTotal(offer)

	breakdown := quote.SurchargeBreakdown
	if breakdown == nil {
		breakdown = []shipping.SurchargeLine{}
	}

	return QuoteResponse{
		Carrier:                 quote.Carrier,
		ServiceType:             quote.ServiceType,
		ServiceName:             quote.ServiceName,
		TotalCharge:             money.Sum(commissioned, classification, addonCharges),
		Currency:                quote.Currency,
		CarrierCharge:           quote.TotalCharge,
		BaseCharge:              quote.BaseCharge,
		Surcharges:              quote.Surcharges,
		SurchargeBreakdown:      breakdown,
		MarkupAmount:            money.Sum(marked, -money.NonNegative(quote.TotalCharge)),
		CommissionAmount:        money.Sum(commissioned, -marked),
		ClassificationSurcharge: classification,
		AddonCharges:            addonCharges,
		EstimatedDelivery:       quote.EstimatedDelivery,
		TransitDays:             quote.TransitDays,
		AvailableVAS:            offer,
		IsEstimate:              estimate,
	}
}

// estimates prices the candidate services of an unavailable carrier offline.
func (s *Service) estimates(pc *pricingContext, req *shipping.ShipmentRequest, services []shipping.CarrierServiceDescriptor, items []request.Item, selected []string) []QuoteResponse {
	if req == nil {
		return nil
	}

	if len(services) == 0 {
		services = []shipping.CarrierServiceDescriptor{s.defaultDescriptor(req)}
	}

	weight := req.TotalBillableWeightLb()
	var out []QuoteResponse
	for _, d := range services {
		price, err := pc.catalog.OfflinePrice(d, weight)
		if err != nil {
			s.log.Debug("No offline price", zap.String("carrier", d.Carrier.String()), zap.String("service", d.ServiceCode), zap.Error(err))
			continue
		}
		currency := req.Currency
		if d.Fallback != nil && d.Fallback.Currency != "" {
			currency = d.Fallback.Currency
		}
		name := d.ServiceName
		if adapter, ok := s.aggregator.Adapter(d.Carrier); ok && name == "" {
			name = adapter.Profile().ServiceName(d.ServiceCode)
		}

		quote := shipping.RateQuote{
			Carrier:     d.Carrier,
			ServiceType: d.ServiceCode,
			ServiceName: name,
			TotalCharge: price,
			Currency:    currency,
			BaseCharge:  &price,
		}
		out = append(out, s.price(pc, req, quote, items, selected, true))
	}
	return out
}

// defaultDescriptor stands in for an unconfigured catalog so the carrier
// fallback rate can still price the requested or default service.
func (s *Service) defaultDescriptor(req *shipping.ShipmentRequest) shipping.CarrierServiceDescriptor {
	d := shipping.CarrierServiceDescriptor{Carrier: req.Carrier, Active: true}
	if req.ServiceType != nil {
		d.ServiceCode = *req.ServiceType
		return d
	}
	if adapter, ok := s.aggregator.Adapter(req.Carrier); ok {
		profile := adapter.Profile()
		d.ServiceCode = profile.DomesticDefault
		if req.International() {
			d.ServiceCode = profile.InternationalDefault
		}
	}
	return d
}

// Ship submits a shipment to the pinned carrier.
func (s *Service) Ship(ctx context.Context, in *ShipRequest) (*ShipResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, apperrors.Validation("Invalid input", err)
	}
	if in.Reference == "" {
		in.Reference = uuid.NewString()
	}

	carrier, ok := shipping.ParseCarrierCode(in.Carrier)
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("unknown carrier %q", in.Carrier), apperrors.ErrUnknownCarrier)
	}
	adapter, ok := s.aggregator.Adapter(carrier)
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("carrier %q is not enabled", carrier), apperrors.ErrUnknownCarrier)
	}

	pc := s.pricingContext(ctx)
	if err := pc.addons.ValidateSelection(in.Addons); err != nil {
		return nil, err
	}

	shipment := in.toShipment(shipping.PurposeShip, in.ServiceCode)
	req, err := pc.builder.Build(ctx, adapter.Profile(), shipment)
	if err != nil {
		return nil, err
	}

	if pc.catalog.Configured(carrier) {
		items := shipment.Items()
		profile := catalog.ProfileOf(req, hasLithium(items), hasFragile(items))
		if _, err := pc.catalog.Check(carrier, req.International(), profile); err != nil {
			return nil, err
		}
	}

	result, err := s.aggregator.Ship(ctx, carrier, req)
	if err != nil {
		return nil, err
	}
	if result.ServiceType == "" && req.ServiceType != nil {
		result.ServiceType = *req.ServiceType
	}
	if result.ServiceName == "" {
		result.ServiceName = adapter.Profile().ServiceName(result.ServiceType)
	}

	logger.Info("Shipment submitted",
		zap.String("reference", in.Reference),
		zap.String("carrier", carrier.String()),
		zap.String("tracking_number", result.TrackingNumber),
		zap.String("event", "shipment_submitted"),
	)

	return &ShipResponse{Reference: in.Reference, Shipment: result}, nil
}

// EligibleAddons lists the addon definitions offered on a carrier service.
func (s *Service) EligibleAddons(ctx context.Context, carrierCode, serviceCode string, declaredValue *float64) ([]shipping.AddonDefinition, error) {
	carrier, ok := shipping.ParseCarrierCode(carrierCode)
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("unknown carrier %q", carrierCode), apperrors.ErrUnknownCarrier)
	}

	pc := s.pricingContext(ctx)
	addons := pc.addons.EligibleFor(carrier, serviceCode, declaredValue)
	if addons == nil {
		addons = []shipping.AddonDefinition{}
	}
	return addons, nil
}

// BillableWeight computes volumetric and billable weight for one package.
func (s *Service) BillableWeight(in *BillableWeightRequest) (*BillableWeightResponse, error) {
	if err := utils.ValidateStruct(in); err != nil {
		return nil, apperrors.Validation("Invalid input", err)
	}

	weightUnit := units.ParseWeightUnit(in.WeightUnit)
	dimUnit := units.ParseDimensionUnit(in.DimensionUnit)

	pkg := shipping.PackageDetail{
		Weight:        in.Weight,
		WeightUnit:    weightUnit,
		Length:        in.Length,
		Width:         in.Width,
		Height:        in.Height,
		DimensionUnit: dimUnit,
	}
	volumetric := units.ConvertWeight(pkg.VolumetricWeight(), units.WeightUnitFor(dimUnit), weightUnit)

	return &BillableWeightResponse{
		VolumetricWeight: money.Round2(volumetric),
		BillableWeight:   money.Round2(units.BillableWeight(in.Weight, volumetric)),
		WeightUnit:       string(weightUnit),
		BillableWeightLb: money.Round2(pkg.BillableWeightLb()),
		Divisor:          units.Divisor(dimUnit),
	}, nil
}

func (s *Service) Metrics() aggregation.Metrics {
	return s.aggregator.Metrics().Snapshot()
}

// ReloadConfig drops any cached config snapshot so the next request reads
// fresh admin configuration.
func (s *Service) ReloadConfig(ctx context.Context) error {
	if inv, ok := s.config.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	if _, err := s.config.Snapshot(ctx); err != nil {
		return apperrors.NewAppError(apperrors.CodeConfiguration, "Failed to reload configuration", err)
	}

	logger.Info("Pricing configuration reloaded", zap.String("event", "config_reloaded"))
	return nil
}

func (s *Service) carriers(pinned *string) ([]shipping.CarrierCode, error) {
	if pinned == nil || *pinned == "" {
		carriers := s.aggregator.Carriers()
		if len(carriers) == 0 {
			return nil, apperrors.NewAppError(apperrors.CodeConfiguration, "No carriers are enabled", nil)
		}
		return carriers, nil
	}

	carrier, ok := shipping.ParseCarrierCode(*pinned)
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("unknown carrier %q", *pinned), apperrors.ErrUnknownCarrier)
	}
	if _, ok := s.aggregator.Adapter(carrier); !ok {
		return nil, apperrors.Validation(fmt.Sprintf("carrier %q is not enabled", carrier), apperrors.ErrUnknownCarrier)
	}
	return []shipping.CarrierCode{carrier}, nil
}

func (s *Service) publish(ctx context.Context, response *RateResponse, destination string, carriers []shipping.CarrierCode) {
	if s.opts.Events == nil {
		return
	}

	event := QuoteEvent{
		QuoteID:     response.QuoteID,
		Reference:   response.Reference,
		Destination: destination,
		QuotedAt:    s.clock().UTC(),
		Carriers:    carriers,
		Failed:      make([]string, 0, len(response.Errors)),
	}
	for _, e := range response.Errors {
		event.Failed = append(event.Failed, e.Carrier.String())
	}
	for _, q := range response.Quotes {
		if q.IsEstimate {
			event.Estimates++
			continue
		}
		event.Quotes++
		if event.Cheapest == nil || q.TotalCharge < event.Cheapest.TotalCharge {
			event.Cheapest = &CheapestQuote{Carrier: q.Carrier, ServiceType: q.ServiceType, TotalCharge: q.TotalCharge, Currency: q.Currency}
		}
	}

	if err := s.opts.Events.PublishQuoted(ctx, event); err != nil {
		s.log.Warn("Failed to publish quote event", zap.String("quote_id", event.QuoteID), zap.Error(err))
	}
}

func codeOf(err error) string {
	if code := apperrors.CodeOf(err); code != "" {
		return code
	}
	if errors.Is(err, apperrors.ErrMalformedResponse) {
		return apperrors.CodeParseTolerance
	}
	return apperrors.CodeCarrierUnavailable
}

func hasLithium(items []request.Item) bool {
	for _, item := range items {
		if item.Lithium {
			return true
		}
	}
	return false
}

func hasFragile(items []request.Item) bool {
	for _, item := range items {
		if item.Fragile {
			return true
		}
	}
	return false
}

func offers(accepted []shipping.CarrierServiceDescriptor, service string) bool {
	for _, d := range accepted {
		if strings.EqualFold(d.ServiceCode, service) {
			return true
		}
	}
	return false
}
