package wire

import (
	"testing"

	"carrier-rate-engine/internal/domain/shipping"
	apperrors "carrier-rate-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type charge struct {
	Code  string `json:"Code"`
	Value Number `json:"MonetaryValue"`
}

func TestOneOrMany(t *testing.T) {
	var holder struct {
		Charges OneOrMany[charge] `json:"charges"`
	}

	require.NoError(t, JSON.Unmarshal([]byte(`{"charges":{"Code":"100","MonetaryValue":"5.00"}}`), &holder))
	require.Len(t, holder.Charges, 1)
	assert.Equal(t, "100", holder.Charges[0].Code)
	assert.Equal(t, 5.0, holder.Charges[0].Value.Value)

	require.NoError(t, JSON.Unmarshal([]byte(`{"charges":[{"Code":"100"},{"Code":"375","MonetaryValue":2.5}]}`), &holder))
	require.Len(t, holder.Charges, 2)
	assert.False(t, holder.Charges[0].Value.Valid)
	assert.Equal(t, 2.5, holder.Charges[1].Value.Value)

	require.NoError(t, JSON.Unmarshal([]byte(`{"charges":null}`), &holder))
	assert.Empty(t, holder.Charges)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{raw: `12.5`, want: 12.5, valid: true},
		{raw: `"12.50"`, want: 12.5, valid: true},
		{raw: `"1,234.10"`, want: 1234.1, valid: true},
		{raw: `""`},
		{raw: `null`},
		{raw: `"n/a"`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var n Number
			require.NoError(t, n.UnmarshalJSON([]byte(tt.raw)))
			assert.Equal(t, tt.want, n.Value)
			assert.Equal(t, tt.valid, n.Valid)
		})
	}
}

func TestChargeTable_Line(t *testing.T) {
	table := ChargeTable{
		"FUEL": {AddonCode: shipping.AddonFuelSurcharge, Description: "Fuel Surcharge"},
		"MISC": {Description: "Miscellaneous"},
	}
	log := zap.NewNop()

	known := table.Line(shipping.CarrierFedEx, "FUEL", 12.5, log)
	require.NotNil(t, known.AddonCode)
	assert.Equal(t, "fuel_surcharge", *known.AddonCode)
	assert.Equal(t, "Fuel Surcharge", known.Description)
	assert.Equal(t, "FUEL", known.Type)

	noAddon := table.Line(shipping.CarrierFedEx, "MISC", 1, log)
	assert.Nil(t, noAddon.AddonCode)
	assert.Equal(t, "Miscellaneous", noAddon.Description)

	unknown := table.Line(shipping.CarrierFedEx, "MYSTERY", 3.333, log)
	assert.Nil(t, unknown.AddonCode)
	assert.Equal(t, GenericSurchargeDescription, unknown.Description)
	assert.Equal(t, 3.33, unknown.Amount)

	negative := table.Line(shipping.CarrierFedEx, "FUEL", -4, log)
	assert.Equal(t, 0.0, negative.Amount)
}

func TestChargeTable_Reverse(t *testing.T) {
	table := ChargeTable{
		"HE": {AddonCode: shipping.AddonDangerousGoods},
		"HL": {AddonCode: shipping.AddonDangerousGoods},
		"SF": {AddonCode: shipping.AddonSignatureRequired},
	}

	reverse := table.Reverse()
	assert.Equal(t, "HE", reverse[shipping.AddonDangerousGoods])
	assert.Equal(t, "SF", reverse[shipping.AddonSignatureRequired])
}

func TestRequireSection(t *testing.T) {
	assert.NoError(t, RequireSection(shipping.CarrierUPS, []byte(`{"RateResponse":{}}`), "RateResponse"))
	assert.ErrorIs(t, RequireSection(shipping.CarrierUPS, []byte(`{"message":"Too Many Requests"}`), "RateResponse"), apperrors.ErrMalformedResponse)
	assert.ErrorIs(t, RequireSection(shipping.CarrierUPS, []byte(`{"RateResponse":null}`), "RateResponse"), apperrors.ErrMalformedResponse)
}
