package catalog

import (
	"testing"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/units"
	apperrors "carrier-rate-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func testServices() []shipping.CarrierServiceDescriptor {
	return []shipping.CarrierServiceDescriptor{
		{Carrier: shipping.CarrierDHL, ServiceCode: "N", Direction: shipping.DirectionDomestic, MaxWeightLb: ptr(70), Active: true},
		{Carrier: shipping.CarrierDHL, ServiceCode: "P", Direction: shipping.DirectionInternational, MaxWeightLb: ptr(150), MaxLengthIn: ptr(47), AcceptsDangerousGoods: true, Active: true},
		{Carrier: shipping.CarrierDHL, ServiceCode: "D", Direction: shipping.DirectionInternational, MaxWeightLb: ptr(70), Active: false},
		{Carrier: shipping.CarrierFedEx, ServiceCode: "INTERNATIONAL_PRIORITY_FREIGHT", Direction: shipping.DirectionInternational, MaxWeightLb: ptr(2200), MinFreightWeightLb: ptr(151), Freight: true, Active: true},
		{Carrier: shipping.CarrierFedEx, ServiceCode: "FEDEX_INTERNATIONAL_PRIORITY", Direction: shipping.DirectionInternational, MaxWeightLb: ptr(150), Active: true,
			Fallback: &shipping.FallbackPricing{Type: shipping.FallbackBracket, Brackets: []shipping.WeightBracket{{MaxWeightLb: 10, Price: 60}, {MaxWeightLb: 5, Price: 45}}, PerLbOver: 2.5}},
		{Carrier: shipping.CarrierUPS, ServiceCode: "03", Direction: shipping.DirectionBoth, Active: true,
			Fallback: &shipping.FallbackPricing{Type: shipping.FallbackFlat, FlatPrice: 19.999}},
	}
}

func TestCheck_UnsupportedRoute(t *testing.T) {
	c := New([]shipping.CarrierServiceDescriptor{
		{Carrier: shipping.CarrierDHL, ServiceCode: "N", Direction: shipping.DirectionDomestic, Active: true},
	}, nil)

	_, err := c.Check(shipping.CarrierDHL, true, PackageProfile{WeightLb: 2})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedRoute)
}

func TestCheck_WeightExceededSuggestsFreight(t *testing.T) {
	c := New(testServices(), nil)

	_, err := c.Check(shipping.CarrierDHL, true, PackageProfile{WeightLb: 400})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrWeightExceeded)
	assert.Contains(t, err.Error(), "INTERNATIONAL_PRIORITY_FREIGHT")
}

func TestCheck_Candidates(t *testing.T) {
	c := New(testServices(), nil)

	got, err := c.Check(shipping.CarrierDHL, true, PackageProfile{WeightLb: 20, LongestSideIn: 30, DangerousGoods: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P", got[0].ServiceCode)

	_, err = c.Check(shipping.CarrierDHL, true, PackageProfile{WeightLb: 20, LongestSideIn: 60})
	assert.ErrorIs(t, err, apperrors.ErrWeightExceeded)
}

func TestAccepts_Flags(t *testing.T) {
	d := shipping.CarrierServiceDescriptor{MaxDeclaredValue: ptr(1000), AcceptsFragile: true}

	assert.True(t, Accepts(d, PackageProfile{Fragile: true, DeclaredValue: ptr(999)}))
	assert.False(t, Accepts(d, PackageProfile{DeclaredValue: ptr(1001)}))
	assert.False(t, Accepts(d, PackageProfile{Lithium: true}))
	assert.False(t, Accepts(d, PackageProfile{DangerousGoods: true}))
}

func TestDefaultService(t *testing.T) {
	c := New(testServices(), nil)

	service, ok := c.DefaultService(shipping.CarrierDHL, false, 10)
	require.True(t, ok)
	assert.Equal(t, "N", service)

	_, ok = c.DefaultService(shipping.CarrierFedEx, true, 200)
	assert.False(t, ok, "freight services are never a default")
}

func TestOfflinePrice(t *testing.T) {
	c := New(testServices(), nil)

	dhl, ok := c.Lookup(shipping.CarrierDHL, "P")
	require.True(t, ok)
	price, err := c.OfflinePrice(dhl, 10)
	require.NoError(t, err)
	assert.Equal(t, 70.0, price)

	fedex, _ := c.Lookup(shipping.CarrierFedEx, "FEDEX_INTERNATIONAL_PRIORITY")
	price, err = c.OfflinePrice(fedex, 4)
	require.NoError(t, err)
	assert.Equal(t, 45.0, price)

	price, err = c.OfflinePrice(fedex, 12.2)
	require.NoError(t, err)
	assert.Equal(t, 67.5, price)

	ups, _ := c.Lookup(shipping.CarrierUPS, "03")
	price, err = c.OfflinePrice(ups, 100)
	require.NoError(t, err)
	assert.Equal(t, 20.0, price)
}

func TestOfflinePrice_Overrides(t *testing.T) {
	c := New(nil, map[shipping.CarrierCode]FallbackRate{shipping.CarrierDHL: {Base: 10, PerLb: 1}})

	price, err := c.OfflinePrice(shipping.CarrierServiceDescriptor{Carrier: shipping.CarrierDHL}, 5)
	require.NoError(t, err)
	assert.Equal(t, 15.0, price)
	assert.Equal(t, 30.0, DefaultFallbackRates[shipping.CarrierDHL].Base)

	_, err = c.OfflinePrice(shipping.CarrierServiceDescriptor{Carrier: "acme"}, 5)
	assert.ErrorIs(t, err, apperrors.ErrPricingUnavailable)
}

func TestProfileOf(t *testing.T) {
	req := &shipping.ShipmentRequest{
		DeclaredValue: 250,
		Packages: []shipping.PackageDetail{
			{Weight: 5, WeightUnit: units.Pound, Length: 10, Width: 10, Height: 10, DimensionUnit: units.Inch},
			{Weight: 2, WeightUnit: units.Pound, Length: 30, Width: 2, Height: 2, DimensionUnit: units.Inch},
		},
		ValueAddedServices: []shipping.ValueAddedService{{Code: "HE", DangerousGoods: &shipping.DangerousGoodsDetail{UNCode: "UN3480"}}},
	}

	p := ProfileOf(req, true, false)
	assert.Equal(t, 7.19, p.WeightLb)
	assert.Equal(t, 30.0, p.LongestSideIn)
	require.NotNil(t, p.DeclaredValue)
	assert.Equal(t, 250.0, *p.DeclaredValue)
	assert.True(t, p.DangerousGoods)
	assert.True(t, p.Lithium)
}
