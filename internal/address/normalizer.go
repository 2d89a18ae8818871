// Package address turns stored addresses into the fields a carrier accepts.
package address

import (
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
	apperrors "carrier-rate-engine/pkg/errors"
	"carrier-rate-engine/pkg/utils"
)

// CountryInfo is the destination metadata owned by the geographic reference
// data. A nil StateAllowed defers to the carrier profile.
type CountryInfo struct {
	Code         string
	StateAllowed map[shipping.CarrierCode]bool
}

// Normalizer prepares addresses for one carrier profile at a time.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// CountryCode resolves a stored country or sub-territory code ("BQ-BO") to
// the ISO-2 code the carrier expects.
func (n *Normalizer) CountryCode(raw string, profile shipping.CarrierProfile) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if override, ok := profile.CountryOverrides[code]; ok {
		return override, nil
	}

	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}
	if override, ok := profile.CountryOverrides[code]; ok {
		code = override
	}

	if !isISO2(code) {
		return "", apperrors.Validation("country code must resolve to ISO-2: "+raw, apperrors.ErrValidation)
	}
	return code, nil
}

// IncludeState reports whether the carrier accepts a state code for the country.
func (n *Normalizer) IncludeState(country string, profile shipping.CarrierProfile, info *CountryInfo) bool {
	if info != nil && info.StateAllowed != nil {
		if allowed, ok := info.StateAllowed[profile.Carrier]; ok {
			return allowed
		}
	}
	return profile.AcceptsState(country)
}

// Normalize returns a copy of addr ready for the carrier.
func (n *Normalizer) Normalize(addr shipping.Address, profile shipping.CarrierProfile, info *CountryInfo) (shipping.Address, error) {
	raw := addr.CountryCode
	if info != nil && info.Code != "" {
		raw = info.Code
	}
	country, err := n.CountryCode(raw, profile)
	if err != nil {
		return shipping.Address{}, err
	}

	out := shipping.Address{
		City:        utils.CleanLine(addr.City),
		PostalCode:  strings.ToUpper(strings.TrimSpace(addr.PostalCode)),
		CountryCode: country,
		Residential: addr.Residential,
	}
	if n.IncludeState(country, profile, info) {
		out.State = strings.ToUpper(strings.TrimSpace(addr.State))
	}

	lines := n.StreetLines(addr, profile)
	if len(lines) == 0 {
		return shipping.Address{}, apperrors.Validation("street address is required", apperrors.ErrValidation)
	}
	out.Street1 = lines[0]
	if len(lines) > 1 {
		out.Street2 = &lines[1]
	}
	if len(lines) > 2 {
		out.Street3 = &lines[2]
	}

	return out, nil
}

// StreetLines cleans and re-wraps the street lines to the carrier's limits.
// Text beyond the last allowed line is dropped.
func (n *Normalizer) StreetLines(addr shipping.Address, profile shipping.CarrierProfile) []string {
	maxLines := profile.MaxStreetLines
	if maxLines <= 0 || maxLines > 3 {
		maxLines = 3
	}

	var lines []string
	for _, line := range addr.StreetLines() {
		cleaned := utils.CleanLine(line)
		if cleaned == "" {
			continue
		}
		if profile.MaxStreetLength > 0 {
			lines = append(lines, utils.WrapLine(cleaned, profile.MaxStreetLength)...)
		} else {
			lines = append(lines, cleaned)
		}
	}

	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

func isISO2(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
