// Package units converts weights and dimensions and computes the
// volumetric and billable weights carriers charge on.
package units

import (
	"strings"

	"carrier-rate-engine/pkg/money"
)

type WeightUnit string

const (
	Pound    WeightUnit = "LB"
	Kilogram WeightUnit = "KG"
)

type DimensionUnit string

const (
	Inch       DimensionUnit = "IN"
	Centimeter DimensionUnit = "CM"
)

const (
	kgToLb = 2.20462
	inToCm = 2.54

	DivisorInches      = 139.0
	DivisorCentimeters = 5000.0
)

// ParseWeightUnit accepts LB/LBS/KG/KGS in any case and defaults to pounds.
func ParseWeightUnit(raw string) WeightUnit {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "KG", "KGS":
		return Kilogram
	default:
		return Pound
	}
}

// ParseDimensionUnit accepts IN/CM in any case and defaults to inches.
func ParseDimensionUnit(raw string) DimensionUnit {
	if strings.ToUpper(strings.TrimSpace(raw)) == "CM" {
		return Centimeter
	}
	return Inch
}

// Divisor returns the dimensional divisor for unit.
func Divisor(unit DimensionUnit) float64 {
	if unit == Centimeter {
		return DivisorCentimeters
	}
	return DivisorInches
}

// VolumetricWeight is (l*w*h)/divisor rounded to two decimals, or 0 when any
// dimension is missing. The result is in LB for inches and KG for centimeters.
func VolumetricWeight(l, w, h float64, unit DimensionUnit) float64 {
	if l <= 0 || w <= 0 || h <= 0 {
		return 0
	}
	return money.Round2((l * w * h) / Divisor(unit))
}

func BillableWeight(actual, volumetric float64) float64 {
	if volumetric > actual {
		return volumetric
	}
	return actual
}

func ToPounds(weight float64, unit WeightUnit) float64 {
	if unit == Kilogram {
		return weight * kgToLb
	}
	return weight
}

func ToKilograms(weight float64, unit WeightUnit) float64 {
	if unit == Kilogram {
		return weight
	}
	return weight / kgToLb
}

func ToInches(length float64, unit DimensionUnit) float64 {
	if unit == Centimeter {
		return length / inToCm
	}
	return length
}

func ToCentimeters(length float64, unit DimensionUnit) float64 {
	if unit == Centimeter {
		return length
	}
	return length * inToCm
}

// ConvertWeight converts between any two weight units.
func ConvertWeight(weight float64, from, to WeightUnit) float64 {
	if from == to {
		return weight
	}
	if to == Kilogram {
		return ToKilograms(weight, from)
	}
	return ToPounds(weight, from)
}

// ConvertLength converts between any two dimension units.
func ConvertLength(length float64, from, to DimensionUnit) float64 {
	if from == to {
		return length
	}
	if to == Centimeter {
		return ToCentimeters(length, from)
	}
	return ToInches(length, from)
}

// WeightUnitFor returns the weight unit paired with a dimension unit in the
// volumetric formula (IN pairs with LB, CM with KG).
func WeightUnitFor(unit DimensionUnit) WeightUnit {
	if unit == Centimeter {
		return Kilogram
	}
	return Pound
}
