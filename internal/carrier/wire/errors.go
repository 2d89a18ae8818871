package wire

import (
	"fmt"
	"strings"

	"carrier-rate-engine/internal/domain/shipping"
	apperrors "carrier-rate-engine/pkg/errors"
)

// Rejected builds the error for a carrier error envelope.
func Rejected(carrier shipping.CarrierCode, messages ...string) error {
	var parts []string
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			parts = append(parts, m)
		}
	}
	msg := fmt.Sprintf("%s rejected the request", carrier)
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	return apperrors.NewAppError(apperrors.CodeCarrierRejected, msg, apperrors.ErrCarrierRejected)
}

// Malformed wraps a body that could not be decoded at all.
func Malformed(carrier shipping.CarrierCode, err error) error {
	return fmt.Errorf("%s: %w: %v", carrier, apperrors.ErrMalformedResponse, err)
}
