package address

import (
	"testing"

	"carrier-rate-engine/internal/domain/shipping"
	apperrors "carrier-rate-engine/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile() shipping.CarrierProfile {
	return shipping.CarrierProfile{
		Carrier:          shipping.CarrierDHL,
		MaxStreetLength:  20,
		MaxStreetLines:   3,
		StateCountries:   []string{"US", "CA"},
		CountryOverrides: map[string]string{"XK": "KV"},
	}
}

func TestCountryCode(t *testing.T) {
	n := NewNormalizer()
	profile := testProfile()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "BQ-BO", want: "BQ"},
		{raw: " us ", want: "US"},
		{raw: "xk", want: "KV"},
		{raw: "USA", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := n.CountryCode(tt.raw, profile)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_StateInclusion(t *testing.T) {
	n := NewNormalizer()
	profile := testProfile()

	us := shipping.Address{Street1: "1 Main St", City: "Austin", State: "tx", PostalCode: "78701", CountryCode: "US"}
	out, err := n.Normalize(us, profile, nil)
	require.NoError(t, err)
	assert.Equal(t, "TX", out.State)

	de := shipping.Address{Street1: "Hauptstr 1", City: "Berlin", State: "BE", PostalCode: "10115", CountryCode: "DE"}
	out, err = n.Normalize(de, profile, nil)
	require.NoError(t, err)
	assert.Empty(t, out.State)

	info := &CountryInfo{Code: "DE", StateAllowed: map[shipping.CarrierCode]bool{shipping.CarrierDHL: true}}
	out, err = n.Normalize(de, profile, info)
	require.NoError(t, err)
	assert.Equal(t, "BE", out.State)
}

func TestNormalize_StreetLines(t *testing.T) {
	n := NewNormalizer()
	profile := testProfile()

	street2 := "  Suite\t400 <b>rear</b> "
	addr := shipping.Address{
		Street1:     "12345 Long Industrial Parkway North",
		Street2:     &street2,
		City:        "Reno",
		PostalCode:  "nv 89501 ",
		CountryCode: "US",
	}

	out, err := n.Normalize(addr, profile, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"12345 Long", "Industrial Parkway", "North"}, out.StreetLines())
	assert.Equal(t, "NV 89501", out.PostalCode)
}

func TestNormalize_EmptyStreet(t *testing.T) {
	_, err := NewNormalizer().Normalize(shipping.Address{Street1: "   ", CountryCode: "US"}, testProfile(), nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
