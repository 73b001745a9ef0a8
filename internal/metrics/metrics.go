// Package metrics provides lightweight, lock-free counters for tracking
// runtime statistics of a modefind run: queries answered, ties, parse
// failures, cache efficiency, and server connections.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a modefind run.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	queries     atomic.Int64
	ties        atomic.Int64
	counted     atomic.Int64
	ignored     atomic.Int64
	errorsTotal atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Query metrics ────────────────────────────────────────────────────

// QueryAnswered records one evaluated query.  counted is the number of
// elements that fell inside the window, size the number examined.
func (c *Collector) QueryAnswered(tie bool, counted, size int32) {
	if c == nil {
		return
	}
	c.queries.Add(1)
	if tie {
		c.ties.Add(1)
	}
	c.counted.Add(int64(counted))
	c.ignored.Add(int64(size - counted))
}

// Queries returns the number of queries answered.
func (c *Collector) Queries() int64 {
	if c == nil {
		return 0
	}
	return c.queries.Load()
}

// Ties returns how many answers were the tie sentinel.
func (c *Collector) Ties() int64 {
	if c == nil {
		return 0
	}
	return c.ties.Load()
}

// Ignored returns the number of elements that fell outside the window.
func (c *Collector) Ignored() int64 {
	if c == nil {
		return 0
	}
	return c.ignored.Load()
}

// ── Cache metrics ────────────────────────────────────────────────────

// CacheHit records a memoized answer.
func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Add(1)
}

// CacheMiss records a lookup that had to be computed.
func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Add(1)
}

// CacheHits returns the total number of cache hits.
func (c *Collector) CacheHits() int64 {
	if c == nil {
		return 0
	}
	return c.cacheHits.Load()
}

// CacheMisses returns the total number of cache misses.
func (c *Collector) CacheMisses() int64 {
	if c == nil {
		return 0
	}
	return c.cacheMisses.Load()
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// TotalConnections returns the lifetime connection count.
func (c *Collector) TotalConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsTotal.Load()
}

// BytesReceived records n bytes of query input.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes of answers written.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	Queries           int64  `json:"queries"`
	Ties              int64  `json:"ties"`
	ElementsCounted   int64  `json:"elements_counted"`
	ElementsIgnored   int64  `json:"elements_ignored"`
	CacheHits         int64  `json:"cache_hits"`
	CacheMisses       int64  `json:"cache_misses"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	BytesIn           int64  `json:"bytes_in"`
	BytesOut          int64  `json:"bytes_out"`
	ErrorsTotal       int64  `json:"errors_total"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Millisecond).String(),
		Queries:           c.queries.Load(),
		Ties:              c.ties.Load(),
		ElementsCounted:   c.counted.Load(),
		ElementsIgnored:   c.ignored.Load(),
		CacheHits:         c.cacheHits.Load(),
		CacheMisses:       c.cacheMisses.Load(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		ErrorsTotal:       c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
