package shipping

//go:generate mockgen -source=ports.go -destination=mocks/mock_transport.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
)

type Operation string

const (
	OperationRate Operation = "rate"
	OperationShip Operation = "ship"
)

// Payload is a carrier wire request ready for the transport.
type Payload struct {
	Carrier   CarrierCode
	Operation Operation
	Body      []byte
}

// Adapter translates between the canonical model and one carrier's wire format.
type Adapter interface {
	Code() CarrierCode
	Profile() CarrierProfile
	ToWire(op Operation, req *ShipmentRequest) (*Payload, error)
	FromWireRate(body []byte) ([]RateQuote, error)
	FromWireShipment(body []byte) (*ShipmentResult, error)
}

// Transport sends a payload to the carrier endpoint. Credentials, retries and
// connection pooling are its concern.
type Transport interface {
	Send(ctx context.Context, payload *Payload) ([]byte, error)
}

// InvoiceGenerator produces the commercial invoice pre-uploaded with a shipment.
type InvoiceGenerator interface {
	Generate(ctx context.Context, req *ShipmentRequest) (DocumentImage, error)
}

// ConfigProvider supplies read-only configuration snapshots.
type ConfigProvider interface {
	Snapshot(ctx context.Context) (*ConfigSnapshot, error)
}

type TransportErrorKind string

const (
	TransportTimeout TransportErrorKind = "timeout"
	TransportAuth    TransportErrorKind = "auth"
	TransportNetwork TransportErrorKind = "network"
	// TransportThrottled is a 429 from the carrier.
	TransportThrottled TransportErrorKind = "throttled"
	// TransportStatus is any other 4xx. Body holds the response so the
	// adapter can look for the carrier's error envelope.
	TransportStatus TransportErrorKind = "status"
)

type TransportError struct {
	Kind    TransportErrorKind
	Carrier CarrierCode
	Status  int
	Body    []byte
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport %s error: %v", e.Carrier, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransportKind reports the transport failure kind of err, if any.
func TransportKind(err error) (TransportErrorKind, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return "", false
}
