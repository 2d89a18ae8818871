package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AddonDefinitionModel represents the database model for value-added services
type AddonDefinitionModel struct {
	ID                       uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Code                     string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name                     string         `gorm:"type:varchar(255);not null"`
	CarrierScope             string         `gorm:"type:varchar(16);not null;default:'all'"`
	PriceType                string         `gorm:"type:varchar(32);not null"`
	PriceValue               *float64       `gorm:"type:decimal(12,4)"`
	FallbackPrice            *float64       `gorm:"type:decimal(12,2)"`
	UseFallback              bool           `gorm:"default:false;not null"`
	Currency                 string         `gorm:"type:char(3);not null;default:'USD'"`
	RequiresValueDeclaration bool           `gorm:"default:false;not null"`
	MinDeclaredValue         *float64       `gorm:"type:decimal(12,2)"`
	MaxDeclaredValue         *float64       `gorm:"type:decimal(12,2)"`
	AllowedServices          pq.StringArray `gorm:"type:text[]"`
	IncompatibleAddons       pq.StringArray `gorm:"type:text[]"`
	Active                   bool           `gorm:"default:true;not null;index"`
	CreatedAt                time.Time      `gorm:"not null"`
	UpdatedAt                time.Time      `gorm:"not null"`
}

func (AddonDefinitionModel) TableName() string {
	return "addon_definitions"
}

// MarkupRuleModel represents the database model for markup rules
type MarkupRuleModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name               string    `gorm:"type:varchar(255);not null"`
	Type               string    `gorm:"type:varchar(16);not null"`
	Value              float64   `gorm:"type:decimal(12,4);not null"`
	Carrier            *string   `gorm:"type:varchar(16)"`
	ServiceCode        *string   `gorm:"type:varchar(64)"`
	MinWeight          *float64  `gorm:"type:decimal(8,2)"`
	MaxWeight          *float64  `gorm:"type:decimal(8,2)"`
	DestinationCountry *string   `gorm:"type:varchar(8)"`
	Priority           int       `gorm:"type:integer;not null;default:0"`
	Active             bool      `gorm:"default:true;not null;index"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (MarkupRuleModel) TableName() string {
	return "markup_rules"
}

// CarrierServiceModel represents the database model for carrier service descriptors.
// Fallback pricing is stored as a JSON document.
type CarrierServiceModel struct {
	ID                    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Carrier               string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_carrier_service"`
	ServiceCode           string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_carrier_service"`
	ServiceName           string    `gorm:"type:varchar(255);not null"`
	Direction             string    `gorm:"type:varchar(16);not null;default:'both'"`
	MaxWeightLb           *float64  `gorm:"type:decimal(8,2)"`
	MaxLengthIn           *float64  `gorm:"type:decimal(8,2)"`
	MaxDeclaredValue      *float64  `gorm:"type:decimal(12,2)"`
	AcceptsDangerousGoods bool      `gorm:"default:false;not null"`
	AcceptsLithium        bool      `gorm:"default:false;not null"`
	AcceptsFragile        bool      `gorm:"default:true;not null"`
	Freight               bool      `gorm:"default:false;not null"`
	MinFreightWeightLb    *float64  `gorm:"type:decimal(8,2)"`
	FallbackPricing       *string   `gorm:"type:jsonb"`
	Active                bool      `gorm:"default:true;not null;index"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
}

func (CarrierServiceModel) TableName() string {
	return "carrier_services"
}

// CarrierCommissionModel holds the commission percentage of one carrier
type CarrierCommissionModel struct {
	Carrier   string    `gorm:"type:varchar(16);primary_key"`
	Percent   float64   `gorm:"type:decimal(5,2);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (CarrierCommissionModel) TableName() string {
	return "carrier_commissions"
}

// All lists every pricing model for auto-migration.
func All() []any {
	return []any{
		&AddonDefinitionModel{},
		&MarkupRuleModel{},
		&CarrierServiceModel{},
		&CarrierCommissionModel{},
	}
}
