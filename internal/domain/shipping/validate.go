package shipping

import (
	"fmt"
	"strings"

	apperrors "carrier-rate-engine/pkg/errors"
)

// CheckCompliance enforces the customs invariant of international shipments:
// commodities are present, and ship requests carry a filing type or, at or
// above the low-value threshold, an ITN.
func (r *ShipmentRequest) CheckCompliance(lowValueThreshold float64) error {
	if !r.International() {
		return nil
	}

	var problems []string
	if len(r.Commodities) == 0 {
		problems = append(problems, "international shipments need at least one commodity")
	}
	if r.Purpose == PurposeShip {
		hasITN := r.Compliance.ITN != nil && strings.TrimSpace(*r.Compliance.ITN) != ""
		switch {
		case r.DeclaredValue >= lowValueThreshold && !hasITN:
			problems = append(problems, fmt.Sprintf("ITN is required for declared value %.2f", r.DeclaredValue))
		case strings.TrimSpace(r.Compliance.FilingType) == "" && !hasITN:
			problems = append(problems, "filing type or ITN is required")
		}
	}

	if len(problems) > 0 {
		return apperrors.Validation(strings.Join(problems, "; "), apperrors.ErrValidation)
	}
	return nil
}
