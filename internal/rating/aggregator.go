// Package rating fans rate requests out to the carrier adapters and collects
// each carrier's outcome independently.
package rating

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"carrier-rate-engine/internal/domain/shipping"
	"carrier-rate-engine/internal/logger"
	apperrors "carrier-rate-engine/pkg/errors"

	"go.uber.org/zap"
)

const DefaultCarrierTimeout = 10 * time.Second

// Job is one carrier call with the request built for that carrier.
type Job struct {
	Carrier shipping.CarrierCode
	Request *shipping.ShipmentRequest
}

// Result is either the quotes of one carrier or the error it failed with.
type Result struct {
	Carrier shipping.CarrierCode
	Quotes  []shipping.RateQuote
	Err     error
	Cached  bool
	Latency time.Duration
}

type Aggregator struct {
	transport shipping.Transport
	adapters  map[shipping.CarrierCode]shipping.Adapter
	order     []shipping.CarrierCode
	timeout   time.Duration
	cache     QuoteCache
	cacheTTL  time.Duration
	metrics   *MetricsTracker
	log       *zap.Logger
}

// NewAggregator registers adapters in the given carrier order. Adapters not
// named in order are appended after it by carrier code.
func NewAggregator(transport shipping.Transport, adapters []shipping.Adapter, order []shipping.CarrierCode, timeout time.Duration, log *zap.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultCarrierTimeout
	}

	byCode := make(map[shipping.CarrierCode]shipping.Adapter, len(adapters))
	for _, a := range adapters {
		byCode[a.Code()] = a
	}

	seen := make(map[shipping.CarrierCode]bool, len(byCode))
	ordered := make([]shipping.CarrierCode, 0, len(byCode))
	for _, code := range order {
		if _, ok := byCode[code]; ok && !seen[code] {
			ordered = append(ordered, code)
			seen[code] = true
		}
	}
	var rest []shipping.CarrierCode
	for code := range byCode {
		if !seen[code] {
			rest = append(rest, code)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	return &Aggregator{
		transport: transport,
		adapters:  byCode,
		order:     append(ordered, rest...),
		timeout:   timeout,
		metrics:   NewMetricsTracker(),
		log:       logger.OrNop(log).Named("rating"),
	}
}

// WithCache enables the quote cache for successful quote lists.
func (a *Aggregator) WithCache(cache QuoteCache, ttl time.Duration) *Aggregator {
	a.cache = cache
	a.cacheTTL = ttl
	return a
}

func (a *Aggregator) Metrics() *MetricsTracker {
	return a.metrics
}

// Carriers returns the registered carriers in aggregation order.
func (a *Aggregator) Carriers() []shipping.CarrierCode {
	return append([]shipping.CarrierCode(nil), a.order...)
}

func (a *Aggregator) Adapter(code shipping.CarrierCode) (shipping.Adapter, bool) {
	adapter, ok := a.adapters[code]
	return adapter, ok
}

// Shop runs every job concurrently, each under its own timeout. Results come
// back in carrier order regardless of completion order. Cancelling ctx
// cancels the calls still in flight; finished carriers keep their results.
func (a *Aggregator) Shop(ctx context.Context, jobs []Job) []Result {
	sorted := a.sortJobs(jobs)
	results := make([]Result, len(sorted))

	var wg sync.WaitGroup
	for i, job := range sorted {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			results[i] = a.run(ctx, job)
		}(i, job)
	}
	wg.Wait()

	a.metrics.Update(func(m *Metrics) {
		m.Shops++
	})
	return results
}

func (a *Aggregator) run(ctx context.Context, job Job) (result Result) {
	result.Carrier = job.Carrier
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.Quotes = nil
			result.Err = apperrors.NewAppError(apperrors.CodeCarrierUnavailable,
				fmt.Sprintf("%s adapter failed", job.Carrier), fmt.Errorf("panic: %v", r))
			a.log.Error("Carrier adapter panicked",
				zap.String("carrier", job.Carrier.String()),
				zap.Any("panic", r),
			)
		}
	}()

	quotes, cached, err := a.quote(ctx, job)
	result.Quotes = quotes
	result.Err = err
	result.Cached = cached
	result.Latency = time.Since(start)
	return result
}

func (a *Aggregator) sortJobs(jobs []Job) []Job {
	rank := make(map[shipping.CarrierCode]int, len(a.order))
	for i, code := range a.order {
		rank[code] = i
	}

	sorted := append([]Job(nil), jobs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, ok := rank[sorted[i].Carrier]
		if !ok {
			ri = len(rank)
		}
		rj, ok := rank[sorted[j].Carrier]
		if !ok {
			rj = len(rank)
		}
		return ri < rj
	})
	return sorted
}

// Quote rates one carrier.
func (a *Aggregator) Quote(ctx context.Context, carrier shipping.CarrierCode, req *shipping.ShipmentRequest) ([]shipping.RateQuote, error) {
	quotes, _, err := a.quote(ctx, Job{Carrier: carrier, Request: req})
	return quotes, err
}

func (a *Aggregator) quote(ctx context.Context, job Job) ([]shipping.RateQuote, bool, error) {
	adapter, ok := a.adapters[job.Carrier]
	if !ok {
		return nil, false, apperrors.NewAppError(apperrors.CodeValidation,
			fmt.Sprintf("carrier %q is not enabled", job.Carrier), apperrors.ErrUnknownCarrier)
	}

	key := a.cacheKey(job)
	if key != "" {
		cached, hit, err := a.cache.Get(ctx, key)
		if err != nil {
			a.log.Warn("Quote cache read failed", zap.String("carrier", job.Carrier.String()), zap.Error(err))
		} else if hit {
			a.metrics.RecordCacheHit(job.Carrier.String())
			return cached, true, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	quotes, err := a.call(callCtx, adapter, job.Request)
	if err != nil {
		err = a.classify(job.Carrier, err)
		a.metrics.RecordCall(job.Carrier.String(), time.Since(start), err, errors.Is(err, apperrors.ErrCarrierUnavailable))
		return nil, false, err
	}
	a.metrics.RecordCall(job.Carrier.String(), time.Since(start), nil, false)

	if key != "" {
		if err := a.cache.Set(ctx, key, quotes, a.cacheTTL); err != nil {
			a.log.Warn("Quote cache write failed", zap.String("carrier", job.Carrier.String()), zap.Error(err))
		}
	}
	return quotes, false, nil
}

func (a *Aggregator) call(ctx context.Context, adapter shipping.Adapter, req *shipping.ShipmentRequest) ([]shipping.RateQuote, error) {
	payload, err := adapter.ToWire(shipping.OperationRate, req)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), apperrors.ErrValidation)
	}

	body, err := a.transport.Send(ctx, payload)
	if err != nil {
		return nil, envelopeOr(err, func(b []byte) error {
			_, derr := adapter.FromWireRate(b)
			return derr
		})
	}
	return adapter.FromWireRate(body)
}

// envelopeOr lets the adapter read the error envelope of a 4xx response.
// Only a carrier rejection replaces err; a body it cannot read as an envelope
// leaves the transport failure in place.
func envelopeOr(err error, decode func([]byte) error) error {
	var te *shipping.TransportError
	if !errors.As(err, &te) || te.Kind != shipping.TransportStatus || len(te.Body) == 0 {
		return err
	}
	if derr := decode(te.Body); apperrors.CodeOf(derr) == apperrors.CodeCarrierRejected {
		return derr
	}
	return err
}

func (a *Aggregator) cacheKey(job Job) string {
	if a.cache == nil || a.cacheTTL <= 0 {
		return ""
	}
	key, err := CacheKey(job.Carrier, job.Request)
	if err != nil {
		a.log.Warn("Quote cache key failed", zap.String("carrier", job.Carrier.String()), zap.Error(err))
		return ""
	}
	return key
}

// Ship submits a shipment to one carrier. Shipments are never cached.
func (a *Aggregator) Ship(ctx context.Context, carrier shipping.CarrierCode, req *shipping.ShipmentRequest) (*shipping.ShipmentResult, error) {
	adapter, ok := a.adapters[carrier]
	if !ok {
		return nil, apperrors.NewAppError(apperrors.CodeValidation,
			fmt.Sprintf("carrier %q is not enabled", carrier), apperrors.ErrUnknownCarrier)
	}

	payload, err := adapter.ToWire(shipping.OperationShip, req)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), apperrors.ErrValidation)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	body, err := a.transport.Send(callCtx, payload)
	if err != nil {
		err = a.classify(carrier, envelopeOr(err, func(b []byte) error {
			_, derr := adapter.FromWireShipment(b)
			return derr
		}))
		a.metrics.RecordCall(carrier.String(), time.Since(start), err, errors.Is(err, apperrors.ErrCarrierUnavailable))
		return nil, err
	}

	result, err := adapter.FromWireShipment(body)
	a.metrics.RecordCall(carrier.String(), time.Since(start), err, false)
	if err != nil {
		return nil, a.classify(carrier, err)
	}
	if result.Documents == nil {
		result.Documents = req.Documents
	}
	return result, nil
}

// classify turns transport failures and deadlines into CarrierUnavailable.
// Coded errors and undecodable bodies pass through.
func (a *Aggregator) classify(carrier shipping.CarrierCode, err error) error {
	if apperrors.CodeOf(err) != "" || errors.Is(err, apperrors.ErrMalformedResponse) {
		a.log.Warn("Carrier call failed",
			zap.String("carrier", carrier.String()),
			zap.String("code", apperrors.CodeOf(err)),
			zap.Error(err),
		)
		return err
	}

	kind, ok := shipping.TransportKind(err)
	switch {
	case ok:
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kind = shipping.TransportTimeout
	default:
		kind = shipping.TransportNetwork
	}

	a.log.Warn("Carrier unavailable",
		zap.String("carrier", carrier.String()),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return apperrors.NewAppError(apperrors.CodeCarrierUnavailable,
		fmt.Sprintf("%s unavailable (%s)", carrier, kind), err)
}

// ByCarrier indexes results by carrier code.
func ByCarrier(results []Result) map[shipping.CarrierCode]Result {
	out := make(map[shipping.CarrierCode]Result, len(results))
	for _, r := range results {
		out[r.Carrier] = r
	}
	return out
}
