package shipping

import (
	"slices"
	"strings"
)

// CarrierCode identifies one integrated carrier.
type CarrierCode string

const (
	CarrierFedEx CarrierCode = "fedex"
	CarrierDHL   CarrierCode = "dhl"
	CarrierUPS   CarrierCode = "ups"
)

// ParseCarrierCode normalizes a carrier name; ok is false for carriers the engine does not integrate.
func ParseCarrierCode(raw string) (CarrierCode, bool) {
	code := CarrierCode(strings.ToLower(strings.TrimSpace(raw)))
	switch code {
	case CarrierFedEx, CarrierDHL, CarrierUPS:
		return code, true
	}
	return "", false
}

func (c CarrierCode) String() string {
	return string(c)
}

// DGRegulation is the regulation level a dangerous-goods item ships under.
type DGRegulation string

const (
	DGFullyRegulated  DGRegulation = "fully_regulated"
	DGLimitedQuantity DGRegulation = "limited_quantity"
)

// DangerousGoodsCodes maps dangerous-goods classes to one carrier's codes.
type DangerousGoodsCodes struct {
	FullyRegulated   string
	LimitedQuantity  string
	ContentIDs       map[string]string
	DefaultContentID string
}

// ServiceCode returns the carrier service code for a regulation level.
func (d DangerousGoodsCodes) ServiceCode(level DGRegulation) string {
	if level == DGFullyRegulated {
		return d.FullyRegulated
	}
	return d.LimitedQuantity
}

// ContentID resolves the carrier content identifier for a class. An empty or
// unknown class gets the default, which covers lithium batteries shipped
// without an explicit classification.
func (d DangerousGoodsCodes) ContentID(class string) string {
	if id, ok := d.ContentIDs[strings.TrimSpace(class)]; ok {
		return id
	}
	return d.DefaultContentID
}

// CarrierProfile is the table-driven description of a carrier's request-side
// rules. Each adapter package owns and returns its own profile.
type CarrierProfile struct {
	Carrier CarrierCode

	GenericPackaging  string
	Packaging         []string
	PackagingSynonyms map[string]string

	GroundServices       []string
	LegacyOptions        map[string]string
	DomesticDefault      string
	InternationalDefault string
	FallbackService      string
	ServiceNames         map[string]string

	DangerousGoods DangerousGoodsCodes

	MaxStreetLength  int
	MaxStreetLines   int
	StateCountries   []string
	CountryOverrides map[string]string

	LowValueFilingType string
	DefaultIncoterm    string
}

func (p CarrierProfile) IsGroundService(service string) bool {
	return slices.Contains(p.GroundServices, service)
}

func (p CarrierProfile) AllowsPackaging(code string) bool {
	return slices.Contains(p.Packaging, code)
}

func (p CarrierProfile) AcceptsState(country string) bool {
	return slices.Contains(p.StateCountries, strings.ToUpper(country))
}

// ServiceName returns the display name of a service code, or "" when unknown.
func (p CarrierProfile) ServiceName(code string) string {
	return p.ServiceNames[code]
}
