package rating

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carrier-rate-engine/internal/carrier/dhl"
	"carrier-rate-engine/internal/carrier/fedex"
	"carrier-rate-engine/internal/carrier/ups"
	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/domain/shipping/mocks"
	"carrier-rate-engine/internal/pricing"
	aggregation "carrier-rate-engine/internal/rating"
	"carrier-rate-engine/internal/request"
	"carrier-rate-engine/internal/units"
	apperrors "carrier-rate-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const fedexRate = `{"output":{"rateReplyDetails":[{"serviceType":"FEDEX_GROUND","serviceName":"FedEx Ground",
  "ratedShipmentDetails":[{"rateType":"ACCOUNT","totalNetCharge":100,"totalBaseCharge":90,"currency":"USD",
  "shipmentRateDetail":{"surCharges":[{"type":"FUEL","amount":10}]}}]}]}}`

const upsRejected = `{"response":{"errors":[{"code":"250003","message":"Invalid Access License number"}]}}`

const upsShipped = `{"ShipmentResponse":{"ShipmentResults":{
  "ShipmentIdentificationNumber":"1Z999AA10123456784",
  "ShipmentCharges":{"TotalCharges":{"CurrencyCode":"USD","MonetaryValue":"21.40"}},
  "PackageResults":{"TrackingNumber":"1Z999AA10123456784","ShippingLabel":{"ImageFormat":{"Code":"GIF"},"GraphicImage":"R0lGOD"}}}}}`

type recordingPublisher struct {
	mu     sync.Mutex
	events []QuoteEvent
}

func (r *recordingPublisher) PublishQuoted(_ context.Context, event QuoteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type reloadableProvider struct {
	snapshot    *shipping.ConfigSnapshot
	invalidated int
}

func (p *reloadableProvider) Snapshot(context.Context) (*shipping.ConfigSnapshot, error) {
	return p.snapshot, nil
}

func (p *reloadableProvider) Invalidate() {
	p.invalidated++
}

func origin() request.OriginDefaults {
	return request.OriginDefaults{
		Contact:  shipping.Contact{Name: "Warehouse", Company: "Acme", Phone: "+1 404 555 0100"},
		Address:  shipping.Address{Street1: "1 Dock St", City: "Atlanta", State: "GA", PostalCode: "30301", CountryCode: "US"},
		Currency: "USD",
	}
}

func newService(t *testing.T, transport shipping.Transport, provider shipping.ConfigProvider, opts Options) *Service {
	t.Helper()
	adapters := []shipping.Adapter{fedex.New("510087", nil), dhl.New("960000", nil), ups.New("A1B2C3", nil)}
	agg := aggregation.NewAggregator(transport, adapters,
		[]shipping.CarrierCode{shipping.CarrierFedEx, shipping.CarrierDHL, shipping.CarrierUPS}, time.Second, nil)
	builder := request.NewBuilder(origin(), nil, 0, nil)
	return NewService(builder, agg, provider, opts, nil)
}

func domesticInput() ShipmentInput {
	return ShipmentInput{
		Reference: "ORD-100",
		Recipient: shipping.Party{
			Contact: shipping.Contact{Name: "Jane Doe"},
			Address: shipping.Address{Street1: "9 Elm St", City: "Austin", State: "TX", PostalCode: "73301", CountryCode: "US"},
		},
		Packages: []request.Package{{
			BillableWeight: 5,
			WeightUnit:     units.Pound,
			Items:          []request.Item{{Description: "Mug", Quantity: 2, UnitValue: 12, UnitWeight: 2.5, WeightUnit: units.Pound}},
		}},
		Currency: "USD",
	}
}

func TestShop_PricesAndIsolatesCarriers(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	config := mocks.NewMockConfigProvider(ctrl)

	config.EXPECT().Snapshot(gomock.Any()).Return(&shipping.ConfigSnapshot{
		MarkupRules: []shipping.MarkupRule{{Name: "base", Type: shipping.MarkupPercentage, Value: 10, Active: true}},
		Addons: []shipping.AddonDefinition{
			{Code: shipping.AddonFuelSurcharge, Name: "Fuel", CarrierScope: "all", PriceType: shipping.AddonPriceCarrierRate, Active: true},
		},
	}, nil).AnyTimes()

	transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *shipping.Payload) ([]byte, error) {
		switch p.Carrier {
		case shipping.CarrierFedEx:
			return []byte(fedexRate), nil
		case shipping.CarrierDHL:
			return nil, &shipping.TransportError{Kind: shipping.TransportNetwork, Carrier: p.Carrier, Err: errors.New("dial tcp: connection refused")}
		default:
			return []byte(upsRejected), nil
		}
	}).Times(3)

	events := &recordingPublisher{}
	svc := newService(t, transport, config, Options{
		Commissions:     map[shipping.CarrierCode]float64{shipping.CarrierFedEx: 0},
		OfflineFallback: true,
		Events:          events,
	})

	resp, err := svc.Shop(context.Background(), &RateRequest{ShipmentInput: domesticInput()})
	require.NoError(t, err)

	assert.Equal(t, "ORD-100", resp.Reference)
	assert.NotEmpty(t, resp.QuoteID)
	assert.Equal(t, 5.0, resp.BillableWeightLb)

	require.Len(t, resp.Quotes, 2)
	live := resp.Quotes[0]
	assert.Equal(t, shipping.CarrierFedEx, live.Carrier)
	assert.Equal(t, "FEDEX_GROUND", live.ServiceType)
	assert.Equal(t, 100.0, live.CarrierCharge)
	assert.Equal(t, 10.0, live.MarkupAmount)
	assert.Equal(t, 0.0, live.CommissionAmount)
	assert.Equal(t, 110.0, live.TotalCharge)
	assert.False(t, live.IsEstimate)
	require.Len(t, live.AvailableVAS, 1)
	assert.Equal(t, 10.0, live.AvailableVAS[0].Price)
	assert.Equal(t, pricing.SourceCarrier, live.AvailableVAS[0].Source)

	estimate := resp.Quotes[1]
	assert.Equal(t, shipping.CarrierDHL, estimate.Carrier)
	assert.True(t, estimate.IsEstimate)
	assert.Equal(t, 50.0, estimate.CarrierCharge)
	assert.Equal(t, 63.25, estimate.TotalCharge)
	assert.Empty(t, estimate.AvailableVAS)

	require.Len(t, resp.Errors, 2)
	assert.Equal(t, shipping.CarrierDHL, resp.Errors[0].Carrier)
	assert.Equal(t, apperrors.CodeCarrierUnavailable, resp.Errors[0].Code)
	assert.Equal(t, shipping.CarrierUPS, resp.Errors[1].Carrier)
	assert.Equal(t, apperrors.CodeCarrierRejected, resp.Errors[1].Code)

	require.Len(t, events.events, 1)
	event := events.events[0]
	assert.Equal(t, 1, event.Quotes)
	assert.Equal(t, 1, event.Estimates)
	assert.Equal(t, []string{"dhl", "ups"}, event.Failed)
	require.NotNil(t, event.Cheapest)
	assert.Equal(t, shipping.CarrierFedEx, event.Cheapest.Carrier)
}

func TestShop_UnreadableClientErrorFallsBackToEstimate(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	config := mocks.NewMockConfigProvider(ctrl)

	config.EXPECT().Snapshot(gomock.Any()).Return(&shipping.ConfigSnapshot{}, nil).AnyTimes()
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil, &shipping.TransportError{
		Kind:    shipping.TransportStatus,
		Carrier: shipping.CarrierFedEx,
		Status:  404,
		Body:    []byte(`{"message":"Not Found"}`),
		Err:     errors.New("carrier returned 404"),
	})

	svc := newService(t, transport, config, Options{OfflineFallback: true})
	pinned := "fedex"
	resp, err := svc.Shop(context.Background(), &RateRequest{ShipmentInput: domesticInput(), Carrier: &pinned})
	require.NoError(t, err)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, apperrors.CodeCarrierUnavailable, resp.Errors[0].Code)
	require.Len(t, resp.Quotes, 1)
	assert.True(t, resp.Quotes[0].IsEstimate)
	assert.Equal(t, 42.5, resp.Quotes[0].CarrierCharge)
}

func TestShop_UnsupportedRouteEverywhere(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	config := mocks.NewMockConfigProvider(ctrl)

	var services []shipping.CarrierServiceDescriptor
	for _, c := range []shipping.CarrierCode{shipping.CarrierFedEx, shipping.CarrierDHL, shipping.CarrierUPS} {
		services = append(services, shipping.CarrierServiceDescriptor{Carrier: c, ServiceCode: "DOM", Direction: shipping.DirectionDomestic, Active: true})
	}
	config.EXPECT().Snapshot(gomock.Any()).Return(&shipping.ConfigSnapshot{Services: services}, nil).AnyTimes()

	in := domesticInput()
	in.Recipient.Address = shipping.Address{Street1: "Hauptstr 1", City: "Berlin", PostalCode: "10115", CountryCode: "DE"}

	_, err := newService(t, transport, config, Options{}).Shop(context.Background(), &RateRequest{ShipmentInput: in})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedRoute)
}

func TestShop_DropsQuotesForServicesTheCatalogRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	config := mocks.NewMockConfigProvider(ctrl)

	oneLb := 1.0
	config.EXPECT().Snapshot(gomock.Any()).Return(&shipping.ConfigSnapshot{
		Services: []shipping.CarrierServiceDescriptor{
			{Carrier: shipping.CarrierFedEx, ServiceCode: "FEDEX_2_DAY", Direction: shipping.DirectionBoth, Active: true},
			{Carrier: shipping.CarrierFedEx, ServiceCode: "FEDEX_GROUND", Direction: shipping.DirectionBoth, MaxWeightLb: &oneLb},
			{Carrier: shipping.CarrierFedEx, ServiceCode: "FEDEX_EXPRESS_SAVER", Direction: shipping.DirectionBoth, MaxWeightLb: &oneLb, Active: true},
		},
	}, nil).AnyTimes()

	body := `{"output":{"rateReplyDetails":[
	  {"serviceType":"FEDEX_GROUND","ratedShipmentDetails":[{"rateType":"ACCOUNT","totalNetCharge":100,"currency":"USD"}]},
	  {"serviceType":"FEDEX_2_DAY","ratedShipmentDetails":[{"rateType":"ACCOUNT","totalNetCharge":40,"currency":"USD"}]},
	  {"serviceType":"FEDEX_EXPRESS_SAVER","ratedShipmentDetails":[{"rateType":"ACCOUNT","totalNetCharge":30,"currency":"USD"}]}]}}`
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).Return([]byte(body), nil).Times(1)

	svc := newService(t, transport, config, Options{Commissions: map[shipping.CarrierCode]float64{shipping.CarrierFedEx: 0}})
	pinned := "fedex"
	resp, err := svc.Shop(context.Background(), &RateRequest{ShipmentInput: domesticInput(), Carrier: &pinned})
	require.NoError(t, err)

	require.Len(t, resp.Quotes, 1)
	assert.Equal(t, "FEDEX_2_DAY", resp.Quotes[0].ServiceType)
	assert.Equal(t, 40.0, resp.Quotes[0].TotalCharge)
	assert.Empty(t, resp.Errors)
}

func TestShop_AddonConflictRejectedBeforeCarriers(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	config := mocks.NewMockConfigProvider(ctrl)

	config.EXPECT().Snapshot(gomock.Any()).Return(&shipping.ConfigSnapshot{
		Addons: []shipping.AddonDefinition{
			{Code: shipping.AddonSignatureRequired, CarrierScope: "all", Active: true, IncompatibleAddons: []string{shipping.AddonAdultSignature}},
			{Code: shipping.AddonAdultSignature, CarrierScope: "all", Active: true},
		},
	}, nil)

	in := domesticInput()
	in.Addons = []string{shipping.AddonSignatureRequired, shipping.AddonAdultSignature}

	_, err := newService(t, transport, config, Options{}).Shop(context.Background(), &RateRequest{ShipmentInput: in})
	assert.ErrorIs(t, err, apperrors.ErrAddonConflict)
}

func TestShop_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(t, mocks.NewMockTransport(ctrl), mocks.NewMockConfigProvider(ctrl), Options{})

	in := domesticInput()
	in.Packages = nil
	_, err := svc.Shop(context.Background(), &RateRequest{ShipmentInput: in})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	unknown := "usps"
	_, err = svc.Shop(context.Background(), &RateRequest{ShipmentInput: domesticInput(), Carrier: &unknown})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestShip(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockTransport(ctrl)
	config := mocks.NewMockConfigProvider(ctrl)

	config.EXPECT().Snapshot(gomock.Any()).Return(&shipping.ConfigSnapshot{}, nil)
	transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *shipping.Payload) ([]byte, error) {
		assert.Equal(t, shipping.CarrierUPS, p.Carrier)
		assert.Equal(t, shipping.OperationShip, p.Operation)
		return []byte(upsShipped), nil
	})

	resp, err := newService(t, transport, config, Options{}).Ship(context.Background(), &ShipRequest{ShipmentInput: domesticInput(), Carrier: "ups"})
	require.NoError(t, err)

	assert.Equal(t, "ORD-100", resp.Reference)
	assert.Equal(t, "1Z999AA10123456784", resp.Shipment.TrackingNumber)
	assert.Equal(t, "03", resp.Shipment.ServiceType)
	assert.Equal(t, "UPS Ground", resp.Shipment.ServiceName)
	require.Len(t, resp.Shipment.Labels, 1)
}

func TestEligibleAddons(t *testing.T) {
	provider := &reloadableProvider{snapshot: &shipping.ConfigSnapshot{Addons: []shipping.AddonDefinition{
		{Code: "insurance", CarrierScope: "dhl", Active: true, RequiresValueDeclaration: true},
		{Code: "signature_required", CarrierScope: "all", Active: true},
	}}}
	ctrl := gomock.NewController(t)
	svc := newService(t, mocks.NewMockTransport(ctrl), provider, Options{})

	value := 200.0
	addons, err := svc.EligibleAddons(context.Background(), "DHL", "P", &value)
	require.NoError(t, err)
	assert.Len(t, addons, 2)

	addons, err = svc.EligibleAddons(context.Background(), "ups", "03", nil)
	require.NoError(t, err)
	assert.Len(t, addons, 1)

	_, err = svc.EligibleAddons(context.Background(), "usps", "", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, svc.ReloadConfig(context.Background()))
	assert.Equal(t, 1, provider.invalidated)
}

func TestBillableWeight(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(t, mocks.NewMockTransport(ctrl), mocks.NewMockConfigProvider(ctrl), Options{})

	resp, err := svc.BillableWeight(&BillableWeightRequest{Weight: 5, WeightUnit: "LB", Length: 10, Width: 10, Height: 10, DimensionUnit: "IN"})
	require.NoError(t, err)
	assert.Equal(t, 7.19, resp.VolumetricWeight)
	assert.Equal(t, 7.19, resp.BillableWeight)
	assert.Equal(t, 139.0, resp.Divisor)

	resp, err = svc.BillableWeight(&BillableWeightRequest{Weight: 5, Length: 0, Width: 10, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 0.0, resp.VolumetricWeight)
	assert.Equal(t, 5.0, resp.BillableWeight)

	_, err = svc.BillableWeight(&BillableWeightRequest{Weight: 0})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
