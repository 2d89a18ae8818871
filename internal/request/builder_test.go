package request

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/domain/shipping/mocks"
	"carrier-rate-engine/internal/units"
	apperrors "carrier-rate-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testProfile() shipping.CarrierProfile {
	return shipping.CarrierProfile{
		Carrier:              shipping.CarrierDHL,
		GenericPackaging:     "YP",
		Packaging:            []string{"YP", "EE", "OD"},
		PackagingSynonyms:    map[string]string{"envelope": "EE"},
		GroundServices:       []string{"N"},
		LegacyOptions:        map[string]string{"12": "P"},
		DomesticDefault:      "N",
		InternationalDefault: "P",
		FallbackService:      "P",
		DangerousGoods: shipping.DangerousGoodsCodes{
			FullyRegulated:   "HE",
			LimitedQuantity:  "HL",
			ContentIDs:       map[string]string{"1": "100", "3": "300", "9": "900"},
			DefaultContentID: "967",
		},
		MaxStreetLength:    45,
		MaxStreetLines:     3,
		StateCountries:     []string{"US"},
		LowValueFilingType: "NOEEI 30.37(a)",
		DefaultIncoterm:    "DAP",
	}
}

func testOrigin() OriginDefaults {
	return OriginDefaults{
		Contact:  shipping.Contact{Name: "Warehouse", Phone: "+1 555-0100"},
		Address:  shipping.Address{Street1: "100 Dock Rd", City: "Miami", State: "FL", PostalCode: "33101", CountryCode: "US"},
		Currency: "USD",
	}
}

func testShipment(country string) Shipment {
	return Shipment{
		Reference: "ORD-1001",
		Recipient: shipping.Party{
			Contact: shipping.Contact{Name: "Ana"},
			Address: shipping.Address{Street1: "Calle 1", City: "Kralendijk", PostalCode: "", CountryCode: country},
		},
		Packages: []Package{{
			BillableWeight: 4.2,
			WeightUnit:     units.Pound,
			Items: []Item{
				{Description: "Shirt", Quantity: 2, UnitValue: 15, UnitWeight: 0.5, WeightUnit: units.Pound, Length: 10, Width: 8, Height: 2, DimensionUnit: units.Inch},
				{Description: "Shoes", Quantity: 1, UnitValue: 60, UnitWeight: 2, WeightUnit: units.Pound, Length: 14, Width: 6, Height: 5, DimensionUnit: units.Inch},
			},
		}},
	}
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
}

func TestBuild_DomesticHasNoCommodities(t *testing.T) {
	b := NewBuilder(testOrigin(), nil, 0, nil).WithClock(fixedClock)

	req, err := b.Build(context.Background(), testProfile(), testShipment("US"))
	require.NoError(t, err)

	assert.False(t, req.International())
	assert.Empty(t, req.Commodities)
	assert.Equal(t, fixedClock(), req.ShipDate)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, 90.0, req.DeclaredValue)
}

func TestBuild_InternationalCommodities(t *testing.T) {
	b := NewBuilder(testOrigin(), nil, 0, nil)

	req, err := b.Build(context.Background(), testProfile(), testShipment("BQ-BO"))
	require.NoError(t, err)

	assert.Equal(t, "BQ", req.Recipient.Address.CountryCode)
	require.Len(t, req.Commodities, 2)
	assert.Equal(t, 1.0, req.Commodities[0].Weight)
	assert.Equal(t, 30.0, req.Commodities[0].TotalValue)
	assert.Equal(t, "US", req.Commodities[0].CountryOfOrigin)
	assert.Equal(t, DefaultExportReason, req.Commodities[0].ExportReasonType)

	assert.Equal(t, "NOEEI 30.37(a)", req.Compliance.FilingType)
	assert.Equal(t, "DAP", req.Compliance.Incoterm)
}

func TestBuild_PackageBoundsAndWeight(t *testing.T) {
	b := NewBuilder(testOrigin(), nil, 0, nil)
	s := testShipment("US")
	s.Packages[0].BillableWeight = 0

	req, err := b.Build(context.Background(), testProfile(), s)
	require.NoError(t, err)
	require.Len(t, req.Packages, 1)

	pkg := req.Packages[0]
	assert.Equal(t, 14.0, pkg.Length)
	assert.Equal(t, 8.0, pkg.Width)
	assert.Equal(t, 5.0, pkg.Height)
	assert.Equal(t, 1.0, pkg.Weight)
}

func TestBuild_DangerousGoodsClassOne(t *testing.T) {
	b := NewBuilder(testOrigin(), nil, 0, nil)
	s := testShipment("US")
	s.Packages[0].Items[0].Dangerous = true
	s.Packages[0].Items[0].UNCode = "un0336"
	s.Packages[0].Items[0].DGClass = "1.4"

	req, err := b.Build(context.Background(), testProfile(), s)
	require.NoError(t, err)

	dg := req.DangerousGoods()
	require.Len(t, dg, 1)
	assert.Equal(t, "HE", dg[0].Code)
	assert.Equal(t, "100", dg[0].DangerousGoods.ContentID)
	assert.Equal(t, "UN0336", dg[0].DangerousGoods.UNCode)
	assert.Equal(t, shipping.DGFullyRegulated, dg[0].DangerousGoods.Regulation)
}

func TestDangerousGoodsServices_Defaults(t *testing.T) {
	codes := testProfile().DangerousGoods
	items := []Item{
		{Dangerous: true, UNCode: "UN3481"},
		{Dangerous: true, UNCode: "UN3481"},
		{Dangerous: true, UNCode: "UN1263", DGClass: "3"},
		{Dangerous: true},
		{UNCode: "UN1845"},
	}

	services := DangerousGoodsServices(items, codes)
	require.Len(t, services, 2)

	assert.Equal(t, "HL", services[0].Code)
	assert.Equal(t, "967", services[0].DangerousGoods.ContentID)
	assert.Equal(t, "HL", services[1].Code)
	assert.Equal(t, "300", services[1].DangerousGoods.ContentID)
}

type fixedDefaults struct {
	code string
	ok   bool
}

func (f fixedDefaults) DefaultService(shipping.CarrierCode, bool, float64) (string, bool) {
	return f.code, f.ok
}

func TestBuild_ServicePrecedence(t *testing.T) {
	ptr := func(s string) *string { return &s }

	tests := []struct {
		name     string
		purpose  shipping.Purpose
		explicit *string
		legacy   *string
		defaults ServiceDefaults
		country  string
		want     *string
	}{
		{name: "explicit wins", purpose: shipping.PurposeShip, explicit: ptr("D"), legacy: ptr("12"), want: ptr("D")},
		{name: "legacy option", purpose: shipping.PurposeShip, legacy: ptr("12"), want: ptr("P")},
		{name: "catalog default", purpose: shipping.PurposeShip, defaults: fixedDefaults{code: "U", ok: true}, country: "DE", want: ptr("U")},
		{name: "profile route default", purpose: shipping.PurposeShip, defaults: fixedDefaults{}, want: ptr("N")},
		{name: "rate request returns all", purpose: shipping.PurposeRate, want: nil},
		{name: "unknown legacy on rate", purpose: shipping.PurposeRate, legacy: ptr("99"), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(testOrigin(), nil, 0, nil).WithServices(tt.defaults)
			country := tt.country
			if country == "" {
				country = "US"
			}
			s := testShipment(country)
			s.Purpose = tt.purpose
			s.CarrierServiceID = tt.explicit
			s.LegacyOptionID = tt.legacy

			req, err := b.Build(context.Background(), testProfile(), s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.ServiceType)
		})
	}
}

func TestResolvePackaging(t *testing.T) {
	profile := testProfile()
	ptr := func(s string) *string { return &s }

	assert.Equal(t, "YP", resolvePackaging(profile, ptr("N"), "EE"))
	assert.Equal(t, "EE", resolvePackaging(profile, ptr("P"), "EE"))
	assert.Equal(t, "OD", resolvePackaging(profile, ptr("P"), "od"))
	assert.Equal(t, "EE", resolvePackaging(profile, nil, "Envelope"))
	assert.Equal(t, "YP", resolvePackaging(profile, nil, "FEDEX_BOX"))
	assert.Equal(t, "YP", resolvePackaging(profile, nil, ""))
}

func TestBuild_InvoiceFailureLeavesNoDocuments(t *testing.T) {
	ctrl := gomock.NewController(t)
	invoices := mocks.NewMockInvoiceGenerator(ctrl)
	invoices.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(shipping.DocumentImage{}, errors.New("renderer offline"))

	b := NewBuilder(testOrigin(), invoices, 0, nil)
	s := testShipment("DE")
	s.Purpose = shipping.PurposeShip

	req, err := b.Build(context.Background(), testProfile(), s)
	require.NoError(t, err)
	assert.NotNil(t, req.Documents)
	assert.Empty(t, req.Documents)
}

func TestBuild_InvoiceAttached(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ORD-1001.pdf"), []byte("%PDF-1.4"), 0o600))

	b := NewBuilder(testOrigin(), FileInvoiceGenerator{Dir: dir}, 0, nil)
	s := testShipment("DE")
	s.Purpose = shipping.PurposeShip

	req, err := b.Build(context.Background(), testProfile(), s)
	require.NoError(t, err)
	require.Len(t, req.Documents, 1)
	assert.Equal(t, "INV", req.Documents[0].TypeCode)
	assert.Equal(t, "PDF", req.Documents[0].Format)
}

func TestBuild_HighValueShipmentNeedsITN(t *testing.T) {
	b := NewBuilder(testOrigin(), nil, 0, nil)
	s := testShipment("DE")
	s.Purpose = shipping.PurposeShip
	value := 3000.0
	s.DeclaredValue = &value

	_, err := b.Build(context.Background(), testProfile(), s)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	itn := "X20260302000001"
	s.Compliance.ITN = &itn
	req, err := b.Build(context.Background(), testProfile(), s)
	require.NoError(t, err)
	assert.Empty(t, req.Compliance.FilingType)
}

func TestBuild_InsuranceAddonCarriesValue(t *testing.T) {
	b := NewBuilder(testOrigin(), nil, 0, nil)
	s := testShipment("US")
	s.AddonCodes = []string{"Insurance", "signature_required"}

	req, err := b.Build(context.Background(), testProfile(), s)
	require.NoError(t, err)

	addons := req.Addons()
	require.Len(t, addons, 2)
	require.NotNil(t, addons[0].Value)
	assert.Equal(t, 90.0, *addons[0].Value)
	assert.Nil(t, addons[1].Value)
}
