// Package metrics provides lightweight, dependency-free counters for persimq
// queue handles.
//
// A Collector is attached to a queue through its options and records every
// push, pop, read and sync, plus the queue fill level after each mutation.
//
// Usage:
//
//	collector := metrics.NewCollector("orders")
//	opts := queue.DefaultOptions()
//	opts.MetricsCollector = collector
//	q, _ := queue.Open("/var/lib/orders.q", 1<<20, opts)
//	...
//	snap := collector.GetSnapshot()
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector tracks queue metrics. All methods are safe for concurrent use.
type Collector struct {
	queueName string

	// Operation counters
	pushTotal   atomic.Uint64
	popTotal    atomic.Uint64
	popBatches  atomic.Uint64
	getTotal    atomic.Uint64
	syncTotal   atomic.Uint64
	clearTotal  atomic.Uint64
	pushErrors  atomic.Uint64
	pushFull    atomic.Uint64
	readErrors  atomic.Uint64
	syncErrors  atomic.Uint64
	corruptions atomic.Uint64
	resets      atomic.Uint64

	// Payload metrics
	pushBytes atomic.Uint64
	popBytes  atomic.Uint64
	getBytes  atomic.Uint64

	// Duration histograms
	pushDurations *durationHistogram
	getDurations  *durationHistogram
	syncDurations *durationHistogram

	// Queue state, refreshed after every mutation
	pendingMessages atomic.Uint64
	storedBytes     atomic.Uint64
	freeBytes       atomic.Uint64
}

// NewCollector creates a new metrics collector for a queue.
func NewCollector(queueName string) *Collector {
	return &Collector{
		queueName:     queueName,
		pushDurations: newDurationHistogram(),
		getDurations:  newDurationHistogram(),
		syncDurations: newDurationHistogram(),
	}
}

// RecordPush records a successful push.
func (c *Collector) RecordPush(payloadSize int, duration time.Duration) {
	c.pushTotal.Add(1)
	c.pushBytes.Add(uint64(payloadSize)) //nolint:gosec // G115: sizes are non-negative
	c.pushDurations.observe(duration)
}

// RecordPop records count records removed by a single pop call.
// payloadBytes is the payload volume removed, record headers excluded.
func (c *Collector) RecordPop(count uint64, payloadBytes uint64) {
	if count > 1 {
		c.popBatches.Add(1)
	}
	c.popTotal.Add(count)
	c.popBytes.Add(payloadBytes)
}

// RecordGet records count payloads materialized by a get call.
func (c *Collector) RecordGet(count int, payloadBytes int, duration time.Duration) {
	c.getTotal.Add(uint64(count))        //nolint:gosec // G115: counts are non-negative
	c.getBytes.Add(uint64(payloadBytes)) //nolint:gosec // G115: sizes are non-negative
	c.getDurations.observe(duration)
}

// RecordSync records a header flush.
func (c *Collector) RecordSync(duration time.Duration) {
	c.syncTotal.Add(1)
	c.syncDurations.observe(duration)
}

// RecordClear records a queue reset.
func (c *Collector) RecordClear() {
	c.clearTotal.Add(1)
}

// RecordPushError records a push that failed on I/O.
func (c *Collector) RecordPushError() {
	c.pushErrors.Add(1)
}

// RecordPushRejected records a push refused for lack of space.
func (c *Collector) RecordPushRejected() {
	c.pushFull.Add(1)
}

// RecordReadError records a pop or get that failed on I/O.
func (c *Collector) RecordReadError() {
	c.readErrors.Add(1)
}

// RecordSyncError records a failed header flush.
func (c *Collector) RecordSyncError() {
	c.syncErrors.Add(1)
}

// RecordCorruption records a bad record magic or checksum.
func (c *Collector) RecordCorruption() {
	c.corruptions.Add(1)
}

// RecordHeaderReset records an open that discarded an invalid header.
func (c *Collector) RecordHeaderReset() {
	c.resets.Add(1)
}

// UpdateQueueState updates queue fill metrics.
func (c *Collector) UpdateQueueState(pending, storedBytes, freeBytes uint64) {
	c.pendingMessages.Store(pending)
	c.storedBytes.Store(storedBytes)
	c.freeBytes.Store(freeBytes)
}

// GetSnapshot returns a snapshot of current metrics.
func (c *Collector) GetSnapshot() *Snapshot {
	return &Snapshot{
		QueueName:       c.queueName,
		PushTotal:       c.pushTotal.Load(),
		PopTotal:        c.popTotal.Load(),
		PopBatches:      c.popBatches.Load(),
		GetTotal:        c.getTotal.Load(),
		SyncTotal:       c.syncTotal.Load(),
		ClearTotal:      c.clearTotal.Load(),
		PushErrors:      c.pushErrors.Load(),
		PushRejected:    c.pushFull.Load(),
		ReadErrors:      c.readErrors.Load(),
		SyncErrors:      c.syncErrors.Load(),
		Corruptions:     c.corruptions.Load(),
		HeaderResets:    c.resets.Load(),
		PushBytes:       c.pushBytes.Load(),
		PopBytes:        c.popBytes.Load(),
		GetBytes:        c.getBytes.Load(),
		PushDurationP50: c.pushDurations.percentile(0.50),
		PushDurationP95: c.pushDurations.percentile(0.95),
		PushDurationP99: c.pushDurations.percentile(0.99),
		GetDurationP50:  c.getDurations.percentile(0.50),
		GetDurationP99:  c.getDurations.percentile(0.99),
		SyncDurationP99: c.syncDurations.percentile(0.99),
		PendingMessages: c.pendingMessages.Load(),
		StoredBytes:     c.storedBytes.Load(),
		FreeBytes:       c.freeBytes.Load(),
	}
}

// Reset resets all metrics (useful for testing).
func (c *Collector) Reset() {
	for _, v := range []*atomic.Uint64{
		&c.pushTotal, &c.popTotal, &c.popBatches, &c.getTotal,
		&c.syncTotal, &c.clearTotal, &c.pushErrors, &c.pushFull,
		&c.readErrors, &c.syncErrors, &c.corruptions, &c.resets,
		&c.pushBytes, &c.popBytes, &c.getBytes,
		&c.pendingMessages, &c.storedBytes, &c.freeBytes,
	} {
		v.Store(0)
	}
	c.pushDurations.reset()
	c.getDurations.reset()
	c.syncDurations.reset()
}

// Snapshot is a point-in-time view of metrics.
type Snapshot struct {
	QueueName string

	// Operation counters
	PushTotal    uint64
	PopTotal     uint64
	PopBatches   uint64
	GetTotal     uint64
	SyncTotal    uint64
	ClearTotal   uint64
	PushErrors   uint64
	PushRejected uint64
	ReadErrors   uint64
	SyncErrors   uint64
	Corruptions  uint64
	HeaderResets uint64

	// Payload metrics
	PushBytes uint64
	PopBytes  uint64
	GetBytes  uint64

	// Duration percentiles
	PushDurationP50 time.Duration
	PushDurationP95 time.Duration
	PushDurationP99 time.Duration
	GetDurationP50  time.Duration
	GetDurationP99  time.Duration
	SyncDurationP99 time.Duration

	// Queue state
	PendingMessages uint64
	StoredBytes     uint64
	FreeBytes       uint64
}

// bucketBounds are the exclusive upper bounds of the histogram buckets;
// the final bucket is unbounded.
var bucketBounds = [...]time.Duration{
	time.Microsecond,
	10 * time.Microsecond,
	100 * time.Microsecond,
	time.Millisecond,
	10 * time.Millisecond,
	100 * time.Millisecond,
	time.Second,
	10 * time.Second,
	100 * time.Second,
}

// bucketEstimates is the value reported for a percentile landing in each bucket.
var bucketEstimates = [...]time.Duration{
	500 * time.Nanosecond,
	5 * time.Microsecond,
	50 * time.Microsecond,
	500 * time.Microsecond,
	5 * time.Millisecond,
	50 * time.Millisecond,
	500 * time.Millisecond,
	5 * time.Second,
	50 * time.Second,
	100 * time.Second,
}

// durationHistogram is a fixed-bucket histogram of durations.
type durationHistogram struct {
	buckets [len(bucketEstimates)]atomic.Uint64
}

func newDurationHistogram() *durationHistogram {
	return &durationHistogram{}
}

// observe records a duration in the appropriate bucket.
func (h *durationHistogram) observe(d time.Duration) {
	bucket := len(bucketBounds)
	for i, bound := range bucketBounds {
		if d < bound {
			bucket = i
			break
		}
	}
	h.buckets[bucket].Add(1)
}

// percentile approximates a percentile from histogram buckets.
func (h *durationHistogram) percentile(p float64) time.Duration {
	var total uint64
	for i := range h.buckets {
		total += h.buckets[i].Load()
	}
	if total == 0 {
		return 0
	}

	target := max(uint64(float64(total)*p), 1)
	var count uint64
	for i := range h.buckets {
		count += h.buckets[i].Load()
		if count >= target {
			return bucketEstimates[i]
		}
	}
	return 0
}

func (h *durationHistogram) reset() {
	for i := range h.buckets {
		h.buckets[i].Store(0)
	}
}

// NoopCollector is a metrics collector that does nothing.
// Useful when metrics are disabled.
type NoopCollector struct{}

func (NoopCollector) RecordPush(int, time.Duration)           {}
func (NoopCollector) RecordPop(uint64, uint64)                {}
func (NoopCollector) RecordGet(int, int, time.Duration)       {}
func (NoopCollector) RecordSync(time.Duration)                {}
func (NoopCollector) RecordClear()                            {}
func (NoopCollector) RecordPushError()                        {}
func (NoopCollector) RecordPushRejected()                     {}
func (NoopCollector) RecordReadError()                        {}
func (NoopCollector) RecordSyncError()                        {}
func (NoopCollector) RecordCorruption()                       {}
func (NoopCollector) RecordHeaderReset()                      {}
func (NoopCollector) UpdateQueueState(uint64, uint64, uint64) {}
