package pricing

import (
	"testing"

	"carrier-rate-engine/internal/domain/shipping"

	"github.com/stretchr/testify/assert"
)

func carrierPtr(c shipping.CarrierCode) *shipping.CarrierCode { return &c }
func strPtr(s string) *string                                 { return &s }
func floatPtr(v float64) *float64                             { return &v }

func TestMarkupEngine_CompoundsInPriorityOrder(t *testing.T) {
	rules := []shipping.MarkupRule{
		{Name: "flat", Type: shipping.MarkupFixed, Value: 5, Priority: 1, Active: true},
		{Name: "pct", Type: shipping.MarkupPercentage, Value: 10, Priority: 10, Active: true},
		{Name: "off", Type: shipping.MarkupFixed, Value: 100, Priority: 50, Active: false},
	}

	got := NewMarkupEngine(rules).Apply(100, MarkupInput{Carrier: shipping.CarrierDHL})
	assert.Equal(t, 115.0, got)

	reversed := []shipping.MarkupRule{rules[2], rules[1], rules[0]}
	assert.Equal(t, got, NewMarkupEngine(reversed).Apply(100, MarkupInput{Carrier: shipping.CarrierDHL}))
}

func TestMarkupEngine_TieBrokenByName(t *testing.T) {
	rules := []shipping.MarkupRule{
		{Name: "b-fixed", Type: shipping.MarkupFixed, Value: 10, Priority: 5, Active: true},
		{Name: "a-pct", Type: shipping.MarkupPercentage, Value: 50, Priority: 5, Active: true},
	}

	e := NewMarkupEngine(rules)
	matched := e.Matching(MarkupInput{})
	assert.Equal(t, "a-pct", matched[0].Name)
	assert.Equal(t, 160.0, e.Apply(100, MarkupInput{}))
}

func TestMarkupEngine_UnnamedTiesIgnoreInputOrder(t *testing.T) {
	pct := shipping.MarkupRule{Type: shipping.MarkupPercentage, Value: 50, Priority: 5, Active: true}
	fixed := shipping.MarkupRule{Type: shipping.MarkupFixed, Value: 10, Priority: 5, Active: true}
	small := shipping.MarkupRule{Type: shipping.MarkupFixed, Value: 2, Priority: 5, Active: true}

	forward := NewMarkupEngine([]shipping.MarkupRule{pct, fixed, small})
	backward := NewMarkupEngine([]shipping.MarkupRule{small, fixed, pct})

	assert.Equal(t, forward.Matching(MarkupInput{}), backward.Matching(MarkupInput{}))
	assert.Equal(t, 168.0, forward.Apply(100, MarkupInput{}))
	assert.Equal(t, 168.0, backward.Apply(100, MarkupInput{}))
}

func TestMarkupEngine_ScopeFilters(t *testing.T) {
	rules := []shipping.MarkupRule{
		{Name: "fedex", Type: shipping.MarkupFixed, Value: 1, Carrier: carrierPtr(shipping.CarrierFedEx), Active: true},
		{Name: "intl", Type: shipping.MarkupFixed, Value: 2, ServiceCode: strPtr("international"), Active: true},
		{Name: "heavy", Type: shipping.MarkupFixed, Value: 4, MinWeight: floatPtr(10), MaxWeight: floatPtr(20), Active: true},
		{Name: "de", Type: shipping.MarkupFixed, Value: 8, DestinationCountry: strPtr("DE"), Active: true},
	}
	e := NewMarkupEngine(rules)

	assert.Equal(t, 15.0, e.Apply(0, MarkupInput{Carrier: shipping.CarrierFedEx, ServiceCode: "FEDEX_INTERNATIONAL_PRIORITY", WeightLb: 20, DestinationCountry: "de"}))
	assert.Equal(t, 4.0, e.Apply(0, MarkupInput{Carrier: shipping.CarrierUPS, ServiceCode: "03", WeightLb: 10}))
	assert.Equal(t, 0.0, e.Apply(0, MarkupInput{Carrier: shipping.CarrierUPS, WeightLb: 20.5}))
}

func TestMarkupEngine_ClampsAtZero(t *testing.T) {
	rules := []shipping.MarkupRule{
		{Name: "discount", Type: shipping.MarkupFixed, Value: -50, Priority: 2, Active: true},
		{Name: "pct", Type: shipping.MarkupPercentage, Value: 10, Priority: 1, Active: true},
	}

	assert.Equal(t, 0.0, NewMarkupEngine(rules).Apply(20, MarkupInput{}))
}
