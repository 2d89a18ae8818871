package request

import (
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
)

// fullyRegulatedClasses ship as fully regulated dangerous goods; every other
// class qualifies for limited quantity.
var fullyRegulatedClasses = map[string]bool{
	"1": true,
	"7": true,
}

// primaryClass reduces a division such as "1.4" or "Class 3" to its class number.
func primaryClass(class string) string {
	class = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(class)), "class"))
	if idx := strings.Index(class, "."); idx > 0 {
		class = class[:idx]
	}
	return class
}

func Regulation(class string) shipping.DGRegulation {
	if fullyRegulatedClasses[primaryClass(class)] {
		return shipping.DGFullyRegulated
	}
	return shipping.DGLimitedQuantity
}

// DangerousGoodsServices returns one VAS entry per distinct dangerous item.
// Items without a UN code are not declarable and are skipped.
func DangerousGoodsServices(items []Item, codes shipping.DangerousGoodsCodes) []shipping.ValueAddedService {
	seen := make(map[string]bool)
	var out []shipping.ValueAddedService

	for _, item := range items {
		if !item.Dangerous || strings.TrimSpace(item.UNCode) == "" {
			continue
		}

		class := primaryClass(item.DGClass)
		level := Regulation(class)
		detail := &shipping.DangerousGoodsDetail{
			Class:      class,
			UNCode:     strings.ToUpper(strings.TrimSpace(item.UNCode)),
			ContentID:  codes.ContentID(class),
			Regulation: level,
		}
		serviceCode := codes.ServiceCode(level)

		key := serviceCode + "|" + detail.ContentID + "|" + detail.UNCode
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, shipping.ValueAddedService{
			Code:           serviceCode,
			DangerousGoods: detail,
		})
	}

	return out
}
