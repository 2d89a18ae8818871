package pricing

import (
	"fmt"
	"slices"
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/logger"
	apperrors "carrier-rate-engine/pkg/errors"
	"carrier-rate-engine/pkg/money"

	"go.uber.org/zap"
)

const (
	SourceConfigured = "configured"
	SourceCarrier    = "carrier"
	SourceFallback   = "fallback"
)

// PricedAddon is one entry of a quote's available_vas list.
type PricedAddon struct {
	Code      string                  `json:"code"`
	Name      string                  `json:"name"`
	PriceType shipping.AddonPriceType `json:"price_type"`
	Price     float64                 `json:"price"`
	Currency  string                  `json:"currency"`
	Source    string                  `json:"source"`
	Selected  bool                    `json:"selected"`
}

type AddonPricer struct {
	addons []shipping.AddonDefinition
	log    *zap.Logger
}

func NewAddonPricer(addons []shipping.AddonDefinition, log *zap.Logger) *AddonPricer {
	return &AddonPricer{
		addons: addons,
		log:    logger.OrNop(log).Named("pricing.addons"),
	}
}

// Definition finds an active addon by code.
func (p *AddonPricer) Definition(code string) (shipping.AddonDefinition, bool) {
	for _, a := range p.addons {
		if a.Active && strings.EqualFold(a.Code, code) {
			return a, true
		}
	}
	return shipping.AddonDefinition{}, false
}

// Resolve prices one addon. A carrier_rate addon without a live price and
// without a usable fallback returns PricingUnavailable; zero is a real price.
func Resolve(addon shipping.AddonDefinition, baseAmount float64, declaredValue, livePrice *float64) (float64, string, error) {
	switch addon.PriceType {
	case shipping.AddonPriceFixed:
		if addon.PriceValue == nil {
			return 0, "", unavailable(addon, "no configured price")
		}
		return *addon.PriceValue, SourceConfigured, nil

	case shipping.AddonPricePercentage:
		if addon.PriceValue == nil {
			return 0, "", unavailable(addon, "no configured percentage")
		}
		basis := baseAmount
		if addon.RequiresValueDeclaration {
			if declaredValue == nil {
				return 0, "", unavailable(addon, "declared value required")
			}
			basis = *declaredValue
		}
		return money.Percent(basis, *addon.PriceValue), SourceConfigured, nil

	case shipping.AddonPriceCarrierRate:
		if livePrice != nil {
			return money.Round2(*livePrice), SourceCarrier, nil
		}
		if addon.UseFallback && addon.FallbackPrice != nil {
			return money.Round2(*addon.FallbackPrice), SourceFallback, nil
		}
		return 0, "", unavailable(addon, "no live carrier price and no fallback")
	}

	return 0, "", unavailable(addon, fmt.Sprintf("unknown price type %q", addon.PriceType))
}

func unavailable(addon shipping.AddonDefinition, reason string) error {
	return apperrors.NewAppError(apperrors.CodePricingUnavailable,
		fmt.Sprintf("addon %s: %s", addon.Code, reason), apperrors.ErrPricingUnavailable)
}

// Eligible reports whether addon may be offered on a carrier service.
func Eligible(addon shipping.AddonDefinition, carrier shipping.CarrierCode, serviceCode string, declaredValue *float64) bool {
	if !addon.Active || !addon.AppliesToCarrier(carrier) {
		return false
	}
	if len(addon.AllowedServices) > 0 && !containsFold(addon.AllowedServices, serviceCode) {
		return false
	}
	if addon.RequiresValueDeclaration {
		if declaredValue == nil {
			return false
		}
		if addon.MinDeclaredValue != nil && *declaredValue < *addon.MinDeclaredValue {
			return false
		}
		if addon.MaxDeclaredValue != nil && *declaredValue > *addon.MaxDeclaredValue {
			return false
		}
	}
	return true
}

// MutuallyExclusive is true when either addon lists the other as incompatible.
func MutuallyExclusive(a, b shipping.AddonDefinition) bool {
	return containsFold(a.IncompatibleAddons, b.Code) || containsFold(b.IncompatibleAddons, a.Code)
}

// EligibleFor lists the eligible addon definitions for a service, unpriced.
func (p *AddonPricer) EligibleFor(carrier shipping.CarrierCode, serviceCode string, declaredValue *float64) []shipping.AddonDefinition {
	var out []shipping.AddonDefinition
	for _, a := range p.addons {
		if Eligible(a, carrier, serviceCode, declaredValue) {
			out = append(out, a)
		}
	}
	return out
}

// ValidateSelection rejects a selection containing mutually exclusive addons.
// Codes without a definition are carrier-native and are not checked.
func (p *AddonPricer) ValidateSelection(codes []string) error {
	defs := make([]shipping.AddonDefinition, 0, len(codes))
	for _, code := range codes {
		if def, ok := p.Definition(code); ok {
			defs = append(defs, def)
		}
	}

	for i := range defs {
		for j := i + 1; j < len(defs); j++ {
			if MutuallyExclusive(defs[i], defs[j]) {
				return apperrors.NewAppError(apperrors.CodeAddonConflict,
					fmt.Sprintf("addons %s and %s cannot be combined", defs[i].Code, defs[j].Code),
					apperrors.ErrAddonConflict)
			}
		}
	}
	return nil
}

// Offer prices the eligible addons for one quote. Addons without a price are
// left out, as are addons conflicting with the selection.
func (p *AddonPricer) Offer(quote shipping.RateQuote, declaredValue *float64, selected []string) []PricedAddon {
	live := quote.LivePrices()
	baseAmount := quote.TotalCharge
	if quote.BaseCharge != nil {
		baseAmount = *quote.BaseCharge
	}

	var chosen []shipping.AddonDefinition
	for _, code := range selected {
		if def, ok := p.Definition(code); ok {
			chosen = append(chosen, def)
		}
	}

	offered := make([]PricedAddon, 0)
	for _, addon := range p.EligibleFor(quote.Carrier, quote.ServiceType, declaredValue) {
		isSelected := containsFold(selected, addon.Code)
		if !isSelected && conflicts(addon, chosen) {
			continue
		}

		var livePrice *float64
		if v, ok := live[addon.Code]; ok {
			livePrice = &v
		}

		price, source, err := Resolve(addon, baseAmount, declaredValue, livePrice)
		if err != nil {
			p.log.Debug("Addon not offered",
				zap.String("carrier", quote.Carrier.String()),
				zap.String("service", quote.ServiceType),
				zap.String("addon", addon.Code),
				zap.Error(err),
			)
			continue
		}

		currency := addon.Currency
		if currency == "" || source == SourceCarrier {
			currency = quote.Currency
		}
		offered = append(offered, PricedAddon{
			Code:      addon.Code,
			Name:      addon.Name,
			PriceType: addon.PriceType,
			Price:     price,
			Currency:  currency,
			Source:    source,
			Selected:  isSelected,
		})
	}
	return offered
}

// SelectedTotal sums the prices of the selected addons in an offer that the
// carrier has not already charged for.
func SelectedTotal(offer []PricedAddon) float64 {
	var amounts []float64
	for _, a := range offer {
		if a.Selected && a.Source != SourceCarrier {
			amounts = append(amounts, a.Price)
		}
	}
	return money.Sum(amounts...)
}

func conflicts(addon shipping.AddonDefinition, chosen []shipping.AddonDefinition) bool {
	for _, c := range chosen {
		if MutuallyExclusive(addon, c) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(s string) bool {
		return strings.EqualFold(strings.TrimSpace(s), v)
	})
}
