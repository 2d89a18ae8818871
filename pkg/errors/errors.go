package errors

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnsupportedRoute   = "UNSUPPORTED_ROUTE"
	CodeWeightExceeded     = "WEIGHT_OR_DIMENSION_EXCEEDED"
	CodeCarrierUnavailable = "CARRIER_UNAVAILABLE"
	CodeCarrierRejected    = "CARRIER_REJECTED"
	CodePricingUnavailable = "PRICING_UNAVAILABLE"
	CodeParseTolerance     = "PARSE_TOLERANCE"
	CodeAddonConflict      = "ADDON_CONFLICT"
	CodeConfiguration      = "CONFIGURATION_ERROR"
)

var (
	ErrValidation         = errors.New("invalid shipment request")
	ErrUnsupportedRoute   = errors.New("destination is not served by any active service")
	ErrWeightExceeded     = errors.New("package exceeds every candidate service limit")
	ErrCarrierUnavailable = errors.New("carrier is unavailable")
	ErrCarrierRejected    = errors.New("carrier rejected the request")
	ErrPricingUnavailable = errors.New("no live or fallback price available")
	ErrMalformedResponse  = errors.New("malformed carrier response")
	ErrAddonConflict      = errors.New("requested addons are mutually exclusive")
	ErrUnknownCarrier     = errors.New("unknown carrier")

	ErrInvalidToken = errors.New("invalid or expired token")
)

var sentinels = map[string]error{
	CodeValidation:         ErrValidation,
	CodeUnsupportedRoute:   ErrUnsupportedRoute,
	CodeWeightExceeded:     ErrWeightExceeded,
	CodeCarrierUnavailable: ErrCarrierUnavailable,
	CodeCarrierRejected:    ErrCarrierRejected,
	CodePricingUnavailable: ErrPricingUnavailable,
	CodeAddonConflict:      ErrAddonConflict,
}

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an AppError against the sentinel for its code.
func (e *AppError) Is(target error) bool {
	if sentinel, ok := sentinels[e.Code]; ok && sentinel == target {
		return true
	}
	return false
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(message string, err error) *AppError {
	return NewAppError(CodeValidation, message, err)
}

// CodeOf returns the AppError code carried by err, or "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
