package postgres

import (
	"testing"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/infrastructure/database/postgres/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }
func str(v string) *string     { return &v }

func TestToAddonEntity(t *testing.T) {
	m := &models.AddonDefinitionModel{
		Code:               "INSURANCE",
		Name:               "Declared value coverage",
		CarrierScope:       "all",
		PriceType:          "percentage",
		PriceValue:         float(1.5),
		Currency:           "USD",
		AllowedServices:    pq.StringArray{"GROUND"},
		IncompatibleAddons: pq.StringArray{"SIGNATURE"},
		Active:             true,
	}

	got := toAddonEntity(m)

	assert.Equal(t, "INSURANCE", got.Code)
	assert.Equal(t, shipping.AddonPricePercentage, got.PriceType)
	assert.Equal(t, []string{"GROUND"}, got.AllowedServices)
	assert.Equal(t, []string{"SIGNATURE"}, got.IncompatibleAddons)
	require.NotNil(t, got.PriceValue)
	assert.Equal(t, 1.5, *got.PriceValue)
}

func TestToMarkupRuleEntity_NormalizesCarrier(t *testing.T) {
	got := toMarkupRuleEntity(&models.MarkupRuleModel{
		Name:    "fedex base",
		Type:    "percentage",
		Value:   10,
		Carrier: str("FedEx"),
		Active:  true,
	})

	require.NotNil(t, got.Carrier)
	assert.Equal(t, shipping.CarrierFedEx, *got.Carrier)
	assert.Equal(t, shipping.MarkupPercentage, got.Type)

	unknown := toMarkupRuleEntity(&models.MarkupRuleModel{Name: "x", Type: "fixed", Carrier: str("usps")})
	require.NotNil(t, unknown.Carrier)
	assert.Equal(t, shipping.CarrierCode("usps"), *unknown.Carrier)
}

func TestToServiceEntity_DecodesFallback(t *testing.T) {
	m := &models.CarrierServiceModel{
		Carrier:         "dhl",
		ServiceCode:     "P",
		ServiceName:     "Express Worldwide",
		Direction:       "international",
		MaxWeightLb:     float(150),
		FallbackPricing: str(`{"type":"bracket","brackets":[{"max_weight_lb":5,"price":40}],"per_lb_over":3}`),
		Active:          true,
	}

	got, err := toServiceEntity(m)

	require.NoError(t, err)
	assert.Equal(t, shipping.CarrierDHL, got.Carrier)
	assert.Equal(t, shipping.DirectionInternational, got.Direction)
	require.NotNil(t, got.Fallback)
	assert.Equal(t, shipping.FallbackBracket, got.Fallback.Type)
	assert.Len(t, got.Fallback.Brackets, 1)
	assert.Equal(t, 3.0, got.Fallback.PerLbOver)
}

func TestToServiceEntity_Errors(t *testing.T) {
	_, err := toServiceEntity(&models.CarrierServiceModel{Carrier: "usps", ServiceCode: "X"})
	assert.Error(t, err)

	_, err = toServiceEntity(&models.CarrierServiceModel{Carrier: "ups", ServiceCode: "03", FallbackPricing: str("{")})
	assert.Error(t, err)
}

func TestToCommissions_SkipsUnknownCarriers(t *testing.T) {
	got := toCommissions([]models.CarrierCommissionModel{
		{Carrier: "FEDEX", Percent: 12},
		{Carrier: "dhl", Percent: 0},
		{Carrier: "usps", Percent: 9},
	})

	assert.Equal(t, map[shipping.CarrierCode]float64{
		shipping.CarrierFedEx: 12,
		shipping.CarrierDHL:   0,
	}, got)
}
