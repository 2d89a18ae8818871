package rating

import (
	"maps"
	"sync"
	"time"
)

// CarrierMetrics tracks carrier call performance.
type CarrierMetrics struct {
	Calls          int64         `json:"calls"`
	Failures       int64         `json:"failures"`
	Unavailable    int64         `json:"unavailable"`
	CacheHits      int64         `json:"cache_hits"`
	LastCallAt     time.Time     `json:"last_call_at"`
	LastError      string        `json:"last_error,omitempty"`
	AverageLatency time.Duration `json:"average_latency"`
}

type Metrics struct {
	Shops    int64                     `json:"shops"`
	Carriers map[string]CarrierMetrics `json:"carriers"`
}

// MetricsTracker provides a goroutine-safe wrapper around Metrics.
type MetricsTracker struct {
	mu        sync.RWMutex
	metrics   Metrics
	listeners []func(Metrics)
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{metrics: Metrics{Carriers: make(map[string]CarrierMetrics)}}
}

// Update applies a mutation in a thread-safe way.
func (t *MetricsTracker) Update(fn func(*Metrics)) {
	if fn == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fn(&t.metrics)
	snapshot := t.copyLocked()
	for _, listener := range t.listeners {
		listener(snapshot)
	}
}

// RecordCall folds one carrier call into the running averages.
func (t *MetricsTracker) RecordCall(carrier string, latency time.Duration, err error, unavailable bool) {
	t.Update(func(m *Metrics) {
		c := m.Carriers[carrier]
		c.Calls++
		c.LastCallAt = time.Now()
		c.AverageLatency += (latency - c.AverageLatency) / time.Duration(c.Calls)
		if err != nil {
			c.Failures++
			c.LastError = err.Error()
		}
		if unavailable {
			c.Unavailable++
		}
		m.Carriers[carrier] = c
	})
}

func (t *MetricsTracker) RecordCacheHit(carrier string) {
	t.Update(func(m *Metrics) {
		c := m.Carriers[carrier]
		c.CacheHits++
		m.Carriers[carrier] = c
	})
}

// Snapshot returns a copy of the current metrics.
func (t *MetricsTracker) Snapshot() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.copyLocked()
}

func (t *MetricsTracker) copyLocked() Metrics {
	return Metrics{Shops: t.metrics.Shops, Carriers: maps.Clone(t.metrics.Carriers)}
}

// Reset clears accumulated metrics.
func (t *MetricsTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics = Metrics{Carriers: make(map[string]CarrierMetrics)}
}

// OnChange registers a callback invoked whenever metrics are updated.
func (t *MetricsTracker) OnChange(listener func(Metrics)) {
	if listener == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}
