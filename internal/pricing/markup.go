// Package pricing layers markups, addon prices and commissions on top of
// carrier base rates. Everything here is pure and safe for concurrent use.
package pricing

import (
	"sort"
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/pkg/money"
)

// MarkupInput scopes one price to the rules that may apply to it.
type MarkupInput struct {
	Carrier            shipping.CarrierCode
	ServiceCode        string
	WeightLb           float64
	DestinationCountry string
}

type MarkupEngine struct {
	rules []shipping.MarkupRule
}

// NewMarkupEngine keeps the active rules ordered by priority (highest first),
// then name, type and value, so input order never changes the result.
func NewMarkupEngine(rules []shipping.MarkupRule) *MarkupEngine {
	active := make([]shipping.MarkupRule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		if active[i].Name != active[j].Name {
			return active[i].Name < active[j].Name
		}
		if active[i].Type != active[j].Type {
			return active[i].Type < active[j].Type
		}
		return active[i].Value < active[j].Value
	})
	return &MarkupEngine{rules: active}
}

// Matching returns the rules that apply to in, in application order.
func (e *MarkupEngine) Matching(in MarkupInput) []shipping.MarkupRule {
	var out []shipping.MarkupRule
	for _, r := range e.rules {
		if matches(r, in) {
			out = append(out, r)
		}
	}
	return out
}

// Apply runs every matching rule over the running price. Percentage rules
// compound on the current price, fixed rules add a flat amount. The price
// never drops below zero.
func (e *MarkupEngine) Apply(base float64, in MarkupInput) float64 {
	price := money.NonNegative(base)
	for _, r := range e.Matching(in) {
		switch r.Type {
		case shipping.MarkupPercentage:
			price = money.Sum(price, money.Percent(price, r.Value))
		case shipping.MarkupFixed:
			price = money.Sum(price, r.Value)
		}
		price = money.NonNegative(price)
	}
	return money.Round2(price)
}

func matches(r shipping.MarkupRule, in MarkupInput) bool {
	if r.Carrier != nil && *r.Carrier != in.Carrier {
		return false
	}
	if r.ServiceCode != nil && *r.ServiceCode != "" {
		want := strings.ToUpper(*r.ServiceCode)
		if !strings.Contains(strings.ToUpper(in.ServiceCode), want) {
			return false
		}
	}
	if r.MinWeight != nil && in.WeightLb < *r.MinWeight {
		return false
	}
	if r.MaxWeight != nil && in.WeightLb > *r.MaxWeight {
		return false
	}
	if r.DestinationCountry != nil && !strings.EqualFold(*r.DestinationCountry, in.DestinationCountry) {
		return false
	}
	return true
}
