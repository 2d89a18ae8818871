package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	iso2Pattern    = regexp.MustCompile(`^[A-Z]{2}$`)
	countryPattern = regexp.MustCompile(`^[A-Z]{2}([-_][A-Z0-9]{1,3})?$`)
)

var incoterms = map[string]bool{
	"EXW": true, "FCA": true, "CPT": true, "CIP": true, "DAP": true, "DPU": true,
	"DDP": true, "DDU": true, "FAS": true, "FOB": true, "CFR": true, "CIF": true,
}

func init() {
	validate = validator.New()

	err := validate.RegisterValidation("iso2", validateISO2)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("country", validateCountry)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("incoterm", validateIncoterm)
	if err != nil {
		return
	}
	err = validate.RegisterValidation("carrier", validateCarrier)
	if err != nil {
		return
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// iso2 accepts a two-letter country code in any case.
func validateISO2(fl validator.FieldLevel) bool {
	return iso2Pattern.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

// country also accepts stored sub-territory codes such as "BQ-BO".
func validateCountry(fl validator.FieldLevel) bool {
	return countryPattern.MatchString(strings.ToUpper(strings.TrimSpace(fl.Field().String())))
}

func validateIncoterm(fl validator.FieldLevel) bool {
	value := strings.ToUpper(strings.TrimSpace(fl.Field().String()))
	return value == "" || incoterms[value]
}

func validateCarrier(fl validator.FieldLevel) bool {
	switch strings.ToLower(strings.TrimSpace(fl.Field().String())) {
	case "fedex", "dhl", "ups":
		return true
	}
	return false
}
