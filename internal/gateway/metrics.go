package gateway

import (
	"sync/atomic"
	"time"
)

// Metrics tracks chat-level counters using atomic operations for lock-free
// concurrency. It is registered as the "gateway.metrics" service and fed by
// the orchestrator.
type Metrics struct {
	chats        atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	completions  atomic.Int64
	errors       atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// RecordChat records an inbound chat request.
func (m *Metrics) RecordChat() {
	m.chats.Add(1)
}

// RecordCacheHit records a response served from the cache.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// RecordCompletion records a successful completion call.
func (m *Metrics) RecordCompletion(latency time.Duration) {
	m.completions.Add(1)
	m.totalLatency.Add(int64(latency))
}

// RecordError records a failed request.
func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	completions := m.completions.Load()
	snap := MetricsSnapshot{
		Chats:       m.chats.Load(),
		CacheHits:   m.cacheHits.Load(),
		CacheMisses: m.cacheMisses.Load(),
		Completions: completions,
		Errors:      m.errors.Load(),
	}
	if completions > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / completions)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Chats       int64         `json:"chats"`
	CacheHits   int64         `json:"cache_hits"`
	CacheMisses int64         `json:"cache_misses"`
	Completions int64         `json:"completions"`
	Errors      int64         `json:"errors"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
