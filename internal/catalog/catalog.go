// Package catalog validates packages against the configured carrier services
// and prices services offline when a carrier cannot be reached.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
	apperrors "carrier-rate-engine/pkg/errors"
	"carrier-rate-engine/pkg/money"
)

// FallbackRate is the per-carrier offline estimate used when a service has no
// fallback pricing rule of its own: Base + PerLb * billable weight.
type FallbackRate struct {
	Base  float64
	PerLb float64
}

// DefaultFallbackRates can be overridden per carrier through New.
var DefaultFallbackRates = map[shipping.CarrierCode]FallbackRate{
	shipping.CarrierDHL:   {Base: 30, PerLb: 4},
	shipping.CarrierFedEx: {Base: 25, PerLb: 3.5},
	shipping.CarrierUPS:   {Base: 25, PerLb: 3.75},
}

// PackageProfile is what a service must accept for a shipment.
type PackageProfile struct {
	WeightLb       float64
	LongestSideIn  float64
	DeclaredValue  *float64
	DangerousGoods bool
	Lithium        bool
	Fragile        bool
}

// ProfileOf summarizes a ShipmentRequest. Ceilings are checked against the
// heaviest and longest package.
func ProfileOf(req *shipping.ShipmentRequest, lithium, fragile bool) PackageProfile {
	p := PackageProfile{
		DangerousGoods: len(req.DangerousGoods()) > 0,
		Lithium:        lithium,
		Fragile:        fragile,
	}
	for _, pkg := range req.Packages {
		p.WeightLb = math.Max(p.WeightLb, pkg.BillableWeightLb())
		p.LongestSideIn = math.Max(p.LongestSideIn, pkg.LongestSideIn())
	}
	if req.DeclaredValue > 0 {
		p.DeclaredValue = &req.DeclaredValue
	}
	return p
}

type Catalog struct {
	services []shipping.CarrierServiceDescriptor
	rates    map[shipping.CarrierCode]FallbackRate
}

func New(services []shipping.CarrierServiceDescriptor, overrides map[shipping.CarrierCode]FallbackRate) *Catalog {
	rates := make(map[shipping.CarrierCode]FallbackRate, len(DefaultFallbackRates)+len(overrides))
	for carrier, rate := range DefaultFallbackRates {
		rates[carrier] = rate
	}
	for carrier, rate := range overrides {
		rates[carrier] = rate
	}
	return &Catalog{services: services, rates: rates}
}

// Configured reports whether any active service is configured for carrier.
// Carriers without descriptors are not restricted by the catalog.
func (c *Catalog) Configured(carrier shipping.CarrierCode) bool {
	for _, d := range c.services {
		if d.Active && d.Carrier == carrier {
			return true
		}
	}
	return false
}

// Lookup finds an active descriptor by carrier and service code.
func (c *Catalog) Lookup(carrier shipping.CarrierCode, serviceCode string) (shipping.CarrierServiceDescriptor, bool) {
	for _, d := range c.services {
		if d.Active && d.Carrier == carrier && strings.EqualFold(d.ServiceCode, serviceCode) {
			return d, true
		}
	}
	return shipping.CarrierServiceDescriptor{}, false
}

func (c *Catalog) routes(carrier shipping.CarrierCode, international bool) []shipping.CarrierServiceDescriptor {
	var out []shipping.CarrierServiceDescriptor
	for _, d := range c.services {
		if d.Active && d.Carrier == carrier && d.Direction.Serves(international) {
			out = append(out, d)
		}
	}
	return out
}

// Candidates returns the active services of carrier that accept the package,
// in configuration order.
func (c *Catalog) Candidates(carrier shipping.CarrierCode, international bool, p PackageProfile) []shipping.CarrierServiceDescriptor {
	var out []shipping.CarrierServiceDescriptor
	for _, d := range c.routes(carrier, international) {
		if Accepts(d, p) {
			out = append(out, d)
		}
	}
	return out
}

// Accepts checks one descriptor against a package.
func Accepts(d shipping.CarrierServiceDescriptor, p PackageProfile) bool {
	if d.MaxWeightLb != nil && p.WeightLb > *d.MaxWeightLb {
		return false
	}
	if d.MaxLengthIn != nil && p.LongestSideIn > *d.MaxLengthIn {
		return false
	}
	if d.MaxDeclaredValue != nil && p.DeclaredValue != nil && *p.DeclaredValue > *d.MaxDeclaredValue {
		return false
	}
	if p.DangerousGoods && !d.AcceptsDangerousGoods {
		return false
	}
	if p.Lithium && !d.AcceptsLithium {
		return false
	}
	if p.Fragile && !d.AcceptsFragile {
		return false
	}
	if d.Freight && d.MinFreightWeightLb != nil && p.WeightLb < *d.MinFreightWeightLb {
		return false
	}
	return true
}

// Check returns the candidate services for carrier, or UnsupportedRoute when
// no active service serves the direction, or WeightOrDimensionExceeded when
// none accepts the package. The latter names a freight service of any carrier
// that takes the weight, when one exists.
func (c *Catalog) Check(carrier shipping.CarrierCode, international bool, p PackageProfile) ([]shipping.CarrierServiceDescriptor, error) {
	routes := c.routes(carrier, international)
	if len(routes) == 0 {
		return nil, apperrors.NewAppError(apperrors.CodeUnsupportedRoute,
			fmt.Sprintf("%s has no active %s service", carrier, direction(international)), apperrors.ErrUnsupportedRoute)
	}

	candidates := c.Candidates(carrier, international, p)
	if len(candidates) > 0 {
		return candidates, nil
	}

	message := fmt.Sprintf("package (%.2f lb, %.2f in) exceeds every %s service limit", p.WeightLb, p.LongestSideIn, carrier)
	if freight, ok := c.SuggestFreight(international, p.WeightLb); ok {
		message += fmt.Sprintf("; consider freight service %s %s", freight.Carrier, freight.ServiceCode)
	}
	return nil, apperrors.NewAppError(apperrors.CodeWeightExceeded, message, apperrors.ErrWeightExceeded)
}

// SuggestFreight finds the first active freight service that accepts weightLb.
func (c *Catalog) SuggestFreight(international bool, weightLb float64) (shipping.CarrierServiceDescriptor, bool) {
	for _, d := range c.services {
		if !d.Active || !d.Freight || !d.Direction.Serves(international) {
			continue
		}
		if d.MaxWeightLb != nil && weightLb > *d.MaxWeightLb {
			continue
		}
		if d.MinFreightWeightLb != nil && weightLb < *d.MinFreightWeightLb {
			continue
		}
		return d, true
	}
	return shipping.CarrierServiceDescriptor{}, false
}

// DefaultService picks the first non-freight service for the route that takes
// the weight.
func (c *Catalog) DefaultService(carrier shipping.CarrierCode, international bool, weightLb float64) (string, bool) {
	for _, d := range c.Candidates(carrier, international, PackageProfile{WeightLb: weightLb}) {
		if !d.Freight {
			return d.ServiceCode, true
		}
	}
	return "", false
}

// OfflinePrice estimates a service price without the carrier: the service's
// flat or bracketed rule when configured, else the carrier fallback rate.
func (c *Catalog) OfflinePrice(d shipping.CarrierServiceDescriptor, weightLb float64) (float64, error) {
	if d.Fallback != nil {
		switch d.Fallback.Type {
		case shipping.FallbackFlat:
			return money.Round2(d.Fallback.FlatPrice), nil
		case shipping.FallbackBracket:
			if price, ok := bracketPrice(d.Fallback, weightLb); ok {
				return price, nil
			}
		}
	}

	rate, ok := c.rates[d.Carrier]
	if !ok {
		return 0, apperrors.NewAppError(apperrors.CodePricingUnavailable,
			fmt.Sprintf("no offline rate for %s %s", d.Carrier, d.ServiceCode), apperrors.ErrPricingUnavailable)
	}
	return money.Sum(rate.Base, rate.PerLb*weightLb), nil
}

func bracketPrice(rule *shipping.FallbackPricing, weightLb float64) (float64, bool) {
	if len(rule.Brackets) == 0 {
		return 0, false
	}
	brackets := append([]shipping.WeightBracket(nil), rule.Brackets...)
	sort.SliceStable(brackets, func(i, j int) bool {
		return brackets[i].MaxWeightLb < brackets[j].MaxWeightLb
	})

	for _, b := range brackets {
		if weightLb <= b.MaxWeightLb {
			return money.Round2(b.Price), true
		}
	}

	last := brackets[len(brackets)-1]
	over := math.Ceil(weightLb - last.MaxWeightLb)
	return money.Sum(last.Price, over*rule.PerLbOver), true
}

func direction(international bool) string {
	if international {
		return "international"
	}
	return "domestic"
}
