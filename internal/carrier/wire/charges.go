package wire

import (
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/pkg/money"

	"go.uber.org/zap"
)

const GenericSurchargeDescription = "Other Surcharge"

// ChargeCode is one row of a carrier surcharge table.
type ChargeCode struct {
	AddonCode   string
	Description string
}

// ChargeTable maps a carrier's native charge codes to canonical addons.
type ChargeTable map[string]ChargeCode

// Line normalizes one native charge. Unknown codes keep their carrier code,
// get the generic description and a nil addon code. Negative amounts are
// clamped to zero.
func (t ChargeTable) Line(carrier shipping.CarrierCode, code string, amount float64, log *zap.Logger) shipping.SurchargeLine {
	code = strings.TrimSpace(code)
	line := shipping.SurchargeLine{
		Type:   code,
		Amount: money.Round2(amount),
	}

	if entry, ok := t[strings.ToUpper(code)]; ok {
		line.Description = entry.Description
		if entry.AddonCode != "" {
			addon := entry.AddonCode
			line.AddonCode = &addon
		}
	} else {
		line.Description = GenericSurchargeDescription
		if log != nil {
			log.Debug("Unmapped carrier surcharge code",
				zap.String("carrier", carrier.String()),
				zap.String("code", code),
			)
		}
	}

	if line.Amount < 0 {
		if log != nil {
			log.Warn("Negative surcharge amount clamped to zero",
				zap.String("carrier", carrier.String()),
				zap.String("code", code),
				zap.Float64("amount", line.Amount),
			)
		}
		line.Amount = 0
	}
	return line
}

// Reverse maps canonical addon codes back to native codes, used when an
// adapter turns requested addons into carrier special services.
func (t ChargeTable) Reverse() map[string]string {
	out := make(map[string]string, len(t))
	for native, entry := range t {
		if entry.AddonCode == "" {
			continue
		}
		if existing, ok := out[entry.AddonCode]; ok && existing < native {
			continue
		}
		out[entry.AddonCode] = native
	}
	return out
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 {
	return &v
}

func Text(v string) *string {
	return &v
}

// TolerantMissing logs a missing optional response field.
func TolerantMissing(log *zap.Logger, carrier shipping.CarrierCode, field string) {
	if log == nil {
		return
	}
	log.Warn("Carrier response missing field, using default",
		zap.String("carrier", carrier.String()),
		zap.String("field", field),
		zap.String("code", "PARSE_TOLERANCE"),
	)
}
