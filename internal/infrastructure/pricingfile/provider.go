// Package pricingfile serves admin pricing configuration from a YAML or JSON
// file when no database is configured.
package pricingfile

import (
	"context"
	"fmt"
	"sync"

	"carrier-rate-engine/internal/domain/shipping"

	"github.com/spf13/viper"
)

type document struct {
	Addons      []addonEntry       `mapstructure:"addons"`
	MarkupRules []markupEntry      `mapstructure:"markup_rules"`
	Services    []serviceEntry     `mapstructure:"services"`
	Commissions map[string]float64 `mapstructure:"commissions"`
}

type addonEntry struct {
	Code                     string   `mapstructure:"code"`
	Name                     string   `mapstructure:"name"`
	CarrierScope             string   `mapstructure:"carrier_scope"`
	PriceType                string   `mapstructure:"price_type"`
	PriceValue               *float64 `mapstructure:"price_value"`
	FallbackPrice            *float64 `mapstructure:"fallback_price"`
	UseFallback              bool     `mapstructure:"use_fallback"`
	Currency                 string   `mapstructure:"currency"`
	RequiresValueDeclaration bool     `mapstructure:"requires_value_declaration"`
	MinDeclaredValue         *float64 `mapstructure:"min_declared_value"`
	MaxDeclaredValue         *float64 `mapstructure:"max_declared_value"`
	AllowedServices          []string `mapstructure:"allowed_services"`
	IncompatibleAddons       []string `mapstructure:"incompatible_addons"`
	Active                   *bool    `mapstructure:"active"`
}

type markupEntry struct {
	Name               string   `mapstructure:"name"`
	Type               string   `mapstructure:"type"`
	Value              float64  `mapstructure:"value"`
	Carrier            *string  `mapstructure:"carrier"`
	ServiceCode        *string  `mapstructure:"service_code"`
	MinWeight          *float64 `mapstructure:"min_weight"`
	MaxWeight          *float64 `mapstructure:"max_weight"`
	DestinationCountry *string  `mapstructure:"destination_country"`
	Priority           int      `mapstructure:"priority"`
	Active             *bool    `mapstructure:"active"`
}

type bracketEntry struct {
	MaxWeightLb float64 `mapstructure:"max_weight_lb"`
	Price       float64 `mapstructure:"price"`
}

type fallbackEntry struct {
	Type      string         `mapstructure:"type"`
	FlatPrice float64        `mapstructure:"flat_price"`
	Brackets  []bracketEntry `mapstructure:"brackets"`
	PerLbOver float64        `mapstructure:"per_lb_over"`
	Currency  string         `mapstructure:"currency"`
}

type serviceEntry struct {
	Carrier               string         `mapstructure:"carrier"`
	ServiceCode           string         `mapstructure:"service_code"`
	ServiceName           string         `mapstructure:"service_name"`
	Direction             string         `mapstructure:"direction"`
	MaxWeightLb           *float64       `mapstructure:"max_weight_lb"`
	MaxLengthIn           *float64       `mapstructure:"max_length_in"`
	MaxDeclaredValue      *float64       `mapstructure:"max_declared_value"`
	AcceptsDangerousGoods bool           `mapstructure:"accepts_dangerous_goods"`
	AcceptsLithium        bool           `mapstructure:"accepts_lithium"`
	AcceptsFragile        *bool          `mapstructure:"accepts_fragile"`
	Freight               bool           `mapstructure:"freight"`
	MinFreightWeightLb    *float64       `mapstructure:"min_freight_weight_lb"`
	Fallback              *fallbackEntry `mapstructure:"fallback"`
	Active                *bool          `mapstructure:"active"`
}

// Provider implements shipping.ConfigProvider over a pricing file. The file
// is read on first use and again after Invalidate. An empty path serves an
// empty configuration.
type Provider struct {
	path string

	mu       sync.Mutex
	snapshot *shipping.ConfigSnapshot
}

func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

func (p *Provider) Snapshot(_ context.Context) (*shipping.ConfigSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.snapshot != nil {
		return p.snapshot, nil
	}
	if p.path == "" {
		p.snapshot = &shipping.ConfigSnapshot{Commissions: map[shipping.CarrierCode]float64{}}
		return p.snapshot, nil
	}
	snapshot, err := Load(p.path)
	if err != nil {
		return nil, err
	}
	p.snapshot = snapshot
	return snapshot, nil
}

func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.snapshot = nil
	p.mu.Unlock()
}

// Load reads a pricing file. The format follows the file extension.
func Load(path string) (*shipping.ConfigSnapshot, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read pricing file: %w", err)
	}

	var doc document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode pricing file: %w", err)
	}
	return doc.toSnapshot()
}

func (d document) toSnapshot() (*shipping.ConfigSnapshot, error) {
	snapshot := &shipping.ConfigSnapshot{
		Addons:      make([]shipping.AddonDefinition, 0, len(d.Addons)),
		MarkupRules: make([]shipping.MarkupRule, 0, len(d.MarkupRules)),
		Services:    make([]shipping.CarrierServiceDescriptor, 0, len(d.Services)),
		Commissions: make(map[shipping.CarrierCode]float64, len(d.Commissions)),
	}

	for _, a := range d.Addons {
		snapshot.Addons = append(snapshot.Addons, shipping.AddonDefinition{
			Code:                     a.Code,
			Name:                     a.Name,
			CarrierScope:             a.CarrierScope,
			PriceType:                shipping.AddonPriceType(a.PriceType),
			PriceValue:               a.PriceValue,
			FallbackPrice:            a.FallbackPrice,
			UseFallback:              a.UseFallback,
			Currency:                 a.Currency,
			RequiresValueDeclaration: a.RequiresValueDeclaration,
			MinDeclaredValue:         a.MinDeclaredValue,
			MaxDeclaredValue:         a.MaxDeclaredValue,
			AllowedServices:          a.AllowedServices,
			IncompatibleAddons:       a.IncompatibleAddons,
			Active:                   orTrue(a.Active),
		})
	}

	for _, m := range d.MarkupRules {
		rule := shipping.MarkupRule{
			Name:               m.Name,
			Type:               shipping.MarkupType(m.Type),
			Value:              m.Value,
			ServiceCode:        m.ServiceCode,
			MinWeight:          m.MinWeight,
			MaxWeight:          m.MaxWeight,
			DestinationCountry: m.DestinationCountry,
			Priority:           m.Priority,
			Active:             orTrue(m.Active),
		}
		if m.Carrier != nil {
			code, ok := shipping.ParseCarrierCode(*m.Carrier)
			if !ok {
				return nil, fmt.Errorf("markup rule %q: unknown carrier %q", m.Name, *m.Carrier)
			}
			rule.Carrier = &code
		}
		snapshot.MarkupRules = append(snapshot.MarkupRules, rule)
	}

	for _, s := range d.Services {
		code, ok := shipping.ParseCarrierCode(s.Carrier)
		if !ok {
			return nil, fmt.Errorf("service %q: unknown carrier %q", s.ServiceCode, s.Carrier)
		}
		descriptor := shipping.CarrierServiceDescriptor{
			Carrier:               code,
			ServiceCode:           s.ServiceCode,
			ServiceName:           s.ServiceName,
			Direction:             shipping.Direction(s.Direction),
			MaxWeightLb:           s.MaxWeightLb,
			MaxLengthIn:           s.MaxLengthIn,
			MaxDeclaredValue:      s.MaxDeclaredValue,
			AcceptsDangerousGoods: s.AcceptsDangerousGoods,
			AcceptsLithium:        s.AcceptsLithium,
			AcceptsFragile:        orTrue(s.AcceptsFragile),
			Freight:               s.Freight,
			MinFreightWeightLb:    s.MinFreightWeightLb,
			Active:                orTrue(s.Active),
		}
		if f := s.Fallback; f != nil {
			fallback := &shipping.FallbackPricing{
				Type:      shipping.FallbackPricingType(f.Type),
				FlatPrice: f.FlatPrice,
				PerLbOver: f.PerLbOver,
				Currency:  f.Currency,
			}
			for _, b := range f.Brackets {
				fallback.Brackets = append(fallback.Brackets, shipping.WeightBracket{MaxWeightLb: b.MaxWeightLb, Price: b.Price})
			}
			descriptor.Fallback = fallback
		}
		snapshot.Services = append(snapshot.Services, descriptor)
	}

	for carrier, percent := range d.Commissions {
		code, ok := shipping.ParseCarrierCode(carrier)
		if !ok {
			return nil, fmt.Errorf("commission: unknown carrier %q", carrier)
		}
		snapshot.Commissions[code] = percent
	}

	return snapshot, nil
}

func orTrue(b *bool) bool {
	return b == nil || *b
}
