package postgres

import (
	"context"
	"fmt"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/infrastructure/database/postgres/models"
	"carrier-rate-engine/internal/logger"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ConfigRepository reads admin pricing configuration. It implements
// shipping.ConfigProvider and never writes.
type ConfigRepository struct {
	db *DB
}

func NewConfigRepository(db *DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

func (r *ConfigRepository) Snapshot(ctx context.Context) (*shipping.ConfigSnapshot, error) {
	tx := r.db.DB.WithContext(ctx)

	var addonModels []models.AddonDefinitionModel
	if err := tx.Where("active = ?", true).Order("code").Find(&addonModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load addon definitions: %w", err)
	}

	var ruleModels []models.MarkupRuleModel
	if err := tx.Where("active = ?", true).Order("priority DESC, name").Find(&ruleModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load markup rules: %w", err)
	}

	var serviceModels []models.CarrierServiceModel
	if err := tx.Where("active = ?", true).Order("carrier, service_code").Find(&serviceModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load carrier services: %w", err)
	}

	var commissionModels []models.CarrierCommissionModel
	if err := tx.Find(&commissionModels).Error; err != nil {
		return nil, fmt.Errorf("failed to load carrier commissions: %w", err)
	}

	snapshot := &shipping.ConfigSnapshot{
		Addons:      make([]shipping.AddonDefinition, 0, len(addonModels)),
		MarkupRules: make([]shipping.MarkupRule, 0, len(ruleModels)),
		Services:    make([]shipping.CarrierServiceDescriptor, 0, len(serviceModels)),
		Commissions: toCommissions(commissionModels),
	}
	for i := range addonModels {
		snapshot.Addons = append(snapshot.Addons, toAddonEntity(&addonModels[i]))
	}
	for i := range ruleModels {
		snapshot.MarkupRules = append(snapshot.MarkupRules, toMarkupRuleEntity(&ruleModels[i]))
	}
	for i := range serviceModels {
		descriptor, err := toServiceEntity(&serviceModels[i])
		if err != nil {
			logger.Warn("Skipping carrier service with unreadable fallback pricing",
				zap.String("event", "config_service_skipped"),
				zap.String("carrier", serviceModels[i].Carrier),
				zap.String("service_code", serviceModels[i].ServiceCode),
				zap.Error(err),
			)
			continue
		}
		snapshot.Services = append(snapshot.Services, descriptor)
	}

	return snapshot, nil
}

func toAddonEntity(m *models.AddonDefinitionModel) shipping.AddonDefinition {
	return shipping.AddonDefinition{
		Code:                     m.Code,
		Name:                     m.Name,
		CarrierScope:             m.CarrierScope,
		PriceType:                shipping.AddonPriceType(m.PriceType),
		PriceValue:               m.PriceValue,
		FallbackPrice:            m.FallbackPrice,
		UseFallback:              m.UseFallback,
		Currency:                 m.Currency,
		RequiresValueDeclaration: m.RequiresValueDeclaration,
		MinDeclaredValue:         m.MinDeclaredValue,
		MaxDeclaredValue:         m.MaxDeclaredValue,
		AllowedServices:          []string(m.AllowedServices),
		IncompatibleAddons:       []string(m.IncompatibleAddons),
		Active:                   m.Active,
	}
}

func toMarkupRuleEntity(m *models.MarkupRuleModel) shipping.MarkupRule {
	rule := shipping.MarkupRule{
		Name:               m.Name,
		Type:               shipping.MarkupType(m.Type),
		Value:              m.Value,
		ServiceCode:        m.ServiceCode,
		MinWeight:          m.MinWeight,
		MaxWeight:          m.MaxWeight,
		DestinationCountry: m.DestinationCountry,
		Priority:           m.Priority,
		Active:             m.Active,
	}
	if m.Carrier != nil {
		if code, ok := shipping.ParseCarrierCode(*m.Carrier); ok {
			rule.Carrier = &code
		} else {
			// unknown carrier scope never matches
			unknown := shipping.CarrierCode(*m.Carrier)
			rule.Carrier = &unknown
		}
	}
	return rule
}

func toServiceEntity(m *models.CarrierServiceModel) (shipping.CarrierServiceDescriptor, error) {
	code, _ := shipping.ParseCarrierCode(m.Carrier)
	descriptor := shipping.CarrierServiceDescriptor{
		Carrier:               code,
		ServiceCode:           m.ServiceCode,
		ServiceName:           m.ServiceName,
		Direction:             shipping.Direction(m.Direction),
		MaxWeightLb:           m.MaxWeightLb,
		MaxLengthIn:           m.MaxLengthIn,
		MaxDeclaredValue:      m.MaxDeclaredValue,
		AcceptsDangerousGoods: m.AcceptsDangerousGoods,
		AcceptsLithium:        m.AcceptsLithium,
		AcceptsFragile:        m.AcceptsFragile,
		Freight:               m.Freight,
		MinFreightWeightLb:    m.MinFreightWeightLb,
		Active:                m.Active,
	}
	if code == "" {
		return descriptor, fmt.Errorf("unknown carrier %q", m.Carrier)
	}
	if m.FallbackPricing != nil && *m.FallbackPricing != "" {
		var fallback shipping.FallbackPricing
		if err := json.UnmarshalFromString(*m.FallbackPricing, &fallback); err != nil {
			return descriptor, fmt.Errorf("decode fallback pricing: %w", err)
		}
		descriptor.Fallback = &fallback
	}
	return descriptor, nil
}

func toCommissions(rows []models.CarrierCommissionModel) map[shipping.CarrierCode]float64 {
	commissions := make(map[shipping.CarrierCode]float64, len(rows))
	for _, row := range rows {
		if code, ok := shipping.ParseCarrierCode(row.Carrier); ok {
			commissions[code] = row.Percent
		}
	}
	return commissions
}
