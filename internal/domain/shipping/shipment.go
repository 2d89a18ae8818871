package shipping

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carrier-rate-engine/internal/units"

	"github.com/google/uuid"
)

type Address struct {
	Street1     string  `json:"street1" validate:"required"`
	Street2     *string `json:"street2,omitempty"`
	Street3     *string `json:"street3,omitempty"`
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	CountryCode string  `json:"country_code" validate:"required,country"`
	Residential *bool   `json:"residential,omitempty"`
}

// StreetLines returns the non-empty street lines in order.
func (a Address) StreetLines() []string {
	var lines []string
	for _, line := range []*string{&a.Street1, a.Street2, a.Street3} {
		if line != nil && strings.TrimSpace(*line) != "" {
			lines = append(lines, *line)
		}
	}
	return lines
}

func (a Address) IsResidential() bool {
	return a.Residential != nil && *a.Residential
}

type Contact struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

type Party struct {
	Contact Contact `json:"contact"`
	Address Address `json:"address"`
}

type PackageDetail struct {
	Weight        float64             `json:"weight" validate:"gt=0"`
	WeightUnit    units.WeightUnit    `json:"weight_unit" validate:"oneof=LB KG"`
	Length        float64             `json:"length" validate:"gte=0"`
	Width         float64             `json:"width" validate:"gte=0"`
	Height        float64             `json:"height" validate:"gte=0"`
	DimensionUnit units.DimensionUnit `json:"dimension_unit" validate:"oneof=IN CM"`
	DeclaredValue *float64            `json:"declared_value,omitempty"`
	TypeCode      string              `json:"type_code"`
}

func (p PackageDetail) HasDimensions() bool {
	return p.Length > 0 && p.Width > 0 && p.Height > 0
}

// VolumetricWeight is expressed in the weight unit paired with the package's dimension unit.
func (p PackageDetail) VolumetricWeight() float64 {
	return units.VolumetricWeight(p.Length, p.Width, p.Height, p.DimensionUnit)
}

// BillableWeightLb compares actual and volumetric weight in pounds.
func (p PackageDetail) BillableWeightLb() float64 {
	actual := units.ToPounds(p.Weight, p.WeightUnit)
	volumetric := units.ToPounds(p.VolumetricWeight(), units.WeightUnitFor(p.DimensionUnit))
	return units.BillableWeight(actual, volumetric)
}

// LongestSideIn returns the longest side in inches.
func (p PackageDetail) LongestSideIn() float64 {
	longest := max(p.Length, p.Width, p.Height)
	return units.ToInches(longest, p.DimensionUnit)
}

type CommodityDetail struct {
	Description         string           `json:"description" validate:"required"`
	Quantity            int              `json:"quantity" validate:"gte=0"`
	UnitValue           float64          `json:"unit_value"`
	TotalValue          float64          `json:"total_value"`
	Weight              float64          `json:"weight"`
	WeightUnit          units.WeightUnit `json:"weight_unit"`
	HSCode              *string          `json:"hs_code,omitempty"`
	CountryOfOrigin     string           `json:"country_of_origin"`
	Material            *string          `json:"material,omitempty"`
	ExportReasonType    string           `json:"export_reason_type"`
	ExportControlNumber *string          `json:"export_control_number,omitempty"`
}

// Compliance is the customs and export-control block of an international shipment.
type Compliance struct {
	DutiesPayor    string  `json:"duties_payor,omitempty"`
	Incoterm       string  `json:"incoterm,omitempty" validate:"omitempty,incoterm"`
	FilingType     string  `json:"filing_type,omitempty"`
	ITN            *string `json:"itn,omitempty"`
	ExporterID     string  `json:"exporter_id,omitempty"`
	ImporterID     string  `json:"importer_id,omitempty"`
	SignatureName  string  `json:"signature_name,omitempty"`
	SignatureTitle string  `json:"signature_title,omitempty"`
	InvoiceNumber  string  `json:"invoice_number,omitempty"`
}

// DocumentImage is a customs document pre-uploaded with a shipment.
type DocumentImage struct {
	ID       string `json:"id"`
	TypeCode string `json:"type_code"`
	Format   string `json:"format"`
	Content  string `json:"content"`
}

// DocumentImageFromFile reads a file and base64-encodes it. The format is
// taken from the extension (PDF, PNG, ...).
func DocumentImageFromFile(path, typeCode string) (DocumentImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DocumentImage{}, fmt.Errorf("read document %s: %w", path, err)
	}

	format := strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		format = "PDF"
	}

	return DocumentImage{
		ID:       uuid.NewString(),
		TypeCode: typeCode,
		Format:   format,
		Content:  base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Decode returns the raw document bytes.
func (d DocumentImage) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(d.Content)
}

type DangerousGoodsDetail struct {
	Class      string       `json:"class,omitempty"`
	UNCode     string       `json:"un_code"`
	ContentID  string       `json:"content_id,omitempty"`
	Regulation DGRegulation `json:"regulation"`
}

// ValueAddedService is one VAS requested at submission time. Code is the
// carrier service code for dangerous goods and the canonical addon code otherwise.
type ValueAddedService struct {
	Code           string                `json:"code"`
	Value          *float64              `json:"value,omitempty"`
	Currency       string                `json:"currency,omitempty"`
	DangerousGoods *DangerousGoodsDetail `json:"dangerous_goods,omitempty"`
}

type Purpose string

const (
	PurposeRate Purpose = "rate"
	PurposeShip Purpose = "ship"
)

// ShipmentRequest is the carrier-agnostic request every adapter translates.
type ShipmentRequest struct {
	Reference          string              `json:"reference"`
	Purpose            Purpose             `json:"purpose"`
	Carrier            CarrierCode         `json:"carrier"`
	Shipper            Party               `json:"shipper"`
	Recipient          Party               `json:"recipient"`
	Packages           []PackageDetail     `json:"packages" validate:"required,min=1,dive"`
	Commodities        []CommodityDetail   `json:"commodities,omitempty" validate:"dive"`
	ServiceType        *string             `json:"service_type,omitempty"`
	PackagingType      string              `json:"packaging_type"`
	DeclaredValue      float64             `json:"declared_value" validate:"gte=0"`
	Currency           string              `json:"currency" validate:"required,len=3"`
	Compliance         Compliance          `json:"compliance"`
	Documents          []DocumentImage     `json:"documents,omitempty"`
	ValueAddedServices []ValueAddedService `json:"value_added_services,omitempty"`
	ShipDate           time.Time           `json:"ship_date"`
	Description        string              `json:"description,omitempty"`
}

func (r *ShipmentRequest) International() bool {
	return !strings.EqualFold(r.Shipper.Address.CountryCode, r.Recipient.Address.CountryCode)
}

// TotalBillableWeightLb sums the billable weight of every package.
func (r *ShipmentRequest) TotalBillableWeightLb() float64 {
	var total float64
	for _, p := range r.Packages {
		total += p.BillableWeightLb()
	}
	return total
}

// DangerousGoods returns the dangerous-goods VAS entries.
func (r *ShipmentRequest) DangerousGoods() []ValueAddedService {
	var out []ValueAddedService
	for _, vas := range r.ValueAddedServices {
		if vas.DangerousGoods != nil {
			out = append(out, vas)
		}
	}
	return out
}

// Addons returns the canonical addon VAS entries.
func (r *ShipmentRequest) Addons() []ValueAddedService {
	var out []ValueAddedService
	for _, vas := range r.ValueAddedServices {
		if vas.DangerousGoods == nil {
			out = append(out, vas)
		}
	}
	return out
}
