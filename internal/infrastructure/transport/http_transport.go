// Package transport sends carrier wire payloads over HTTP.
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"carrier-rate-engine/internal/config"
	"carrier-rate-engine/internal/domain/shipping"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 8 << 20

// Endpoint is where one carrier's operations are sent.
type Endpoint struct {
	RateURL  string
	ShipURL  string
	APIToken string
	RPS      float64
	Burst    int
}

func (e Endpoint) url(op shipping.Operation) string {
	if op == shipping.OperationShip {
		return e.ShipURL
	}
	return e.RateURL
}

type carrierEndpoint struct {
	Endpoint
	limiter *rate.Limiter
}

// HTTPTransport implements shipping.Transport with one rate limiter per carrier.
type HTTPTransport struct {
	client    *http.Client
	endpoints map[shipping.CarrierCode]*carrierEndpoint
	logger    *zap.Logger
}

func NewHTTPTransport(client *http.Client, endpoints map[shipping.CarrierCode]Endpoint, log *zap.Logger) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	t := &HTTPTransport{
		client:    client,
		endpoints: make(map[shipping.CarrierCode]*carrierEndpoint, len(endpoints)),
		logger:    log,
	}
	for code, ep := range endpoints {
		limit := rate.Inf
		if ep.RPS > 0 {
			limit = rate.Limit(ep.RPS)
		}
		burst := ep.Burst
		if burst <= 0 {
			burst = 1
		}
		t.endpoints[code] = &carrierEndpoint{Endpoint: ep, limiter: rate.NewLimiter(limit, burst)}
	}
	return t
}

// EndpointsFromConfig collects the endpoints of every enabled carrier.
func EndpointsFromConfig(cfg config.CarriersConfig) map[shipping.CarrierCode]Endpoint {
	endpoints := make(map[shipping.CarrierCode]Endpoint)
	for _, code := range []shipping.CarrierCode{shipping.CarrierFedEx, shipping.CarrierDHL, shipping.CarrierUPS} {
		cc, _ := cfg.ByCode(string(code))
		if !cc.Enabled {
			continue
		}
		endpoints[code] = Endpoint{
			RateURL:  cc.RateURL,
			ShipURL:  cc.ShipURL,
			APIToken: cc.APIToken,
			RPS:      cc.RPS,
			Burst:    cc.Burst,
		}
	}
	return endpoints
}

func (t *HTTPTransport) Send(ctx context.Context, payload *shipping.Payload) ([]byte, error) {
	ep, ok := t.endpoints[payload.Carrier]
	if !ok || ep.url(payload.Operation) == "" {
		return nil, &shipping.TransportError{
			Kind:    shipping.TransportNetwork,
			Carrier: payload.Carrier,
			Err:     fmt.Errorf("no %s endpoint configured", payload.Operation),
		}
	}

	if err := ep.limiter.Wait(ctx); err != nil {
		return nil, t.classify(ctx, payload.Carrier, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.url(payload.Operation), bytes.NewReader(payload.Body))
	if err != nil {
		return nil, &shipping.TransportError{Kind: shipping.TransportNetwork, Carrier: payload.Carrier, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if ep.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+ep.APIToken)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, t.classify(ctx, payload.Carrier, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, t.classify(ctx, payload.Carrier, err)
	}

	t.logger.Debug("Carrier call completed",
		zap.String("carrier", string(payload.Carrier)),
		zap.String("operation", string(payload.Operation)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &shipping.TransportError{
			Kind:    shipping.TransportAuth,
			Carrier: payload.Carrier,
			Err:     fmt.Errorf("carrier returned %d", resp.StatusCode),
		}
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return nil, &shipping.TransportError{
			Kind:    shipping.TransportTimeout,
			Carrier: payload.Carrier,
			Err:     fmt.Errorf("carrier returned %d", resp.StatusCode),
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &shipping.TransportError{
			Kind:    shipping.TransportThrottled,
			Carrier: payload.Carrier,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("carrier returned %d", resp.StatusCode),
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, &shipping.TransportError{
			Kind:    shipping.TransportNetwork,
			Carrier: payload.Carrier,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("carrier returned %d", resp.StatusCode),
		}
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, &shipping.TransportError{
			Kind:    shipping.TransportStatus,
			Carrier: payload.Carrier,
			Status:  resp.StatusCode,
			Body:    body,
			Err:     fmt.Errorf("carrier returned %d", resp.StatusCode),
		}
	}

	return body, nil
}

func (t *HTTPTransport) classify(ctx context.Context, carrier shipping.CarrierCode, err error) error {
	kind := shipping.TransportNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = shipping.TransportTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = shipping.TransportTimeout
	}
	return &shipping.TransportError{Kind: kind, Carrier: carrier, Err: err}
}
