// Package metrics exposes Prometheus collectors for the nsv reader and
// writer paths.
//
// # Overview
//
// The collectors are registered with the default registry on package load,
// the same way promauto is used throughout the codebase. Components record
// through the small helper functions below rather than touching the vectors
// directly, so label values stay consistent:
//
//	timer := metrics.NewTimer()
//	doc, err := nsv.Decode(data)
//	metrics.ObserveDecode(metrics.ModeEager, doc.RowCount(), len(data), timer.Stop(), err)
//
// The codec package itself never records metrics; the scan driver, the
// export writer and the CLI do.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/nsv/pkg/pool"
)

// Decode modes used as the "mode" label.
const (
	ModeEager     = "eager"
	ModeProjected = "projected"
	ModeLenient   = "lenient"
)

var (
	// DecodedRows counts rows produced by Decode and DecodeProjected.
	// Labels: mode (eager/projected/lenient)
	DecodedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsv_decoded_rows_total",
			Help: "Total number of NSV rows decoded",
		},
		[]string{"mode"},
	)

	// DecodedBytes counts input bytes handed to the decoder.
	DecodedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsv_decoded_bytes_total",
			Help: "Total number of NSV input bytes decoded",
		},
		[]string{"mode"},
	)

	// DecodeErrors counts failed decodes by error type.
	// Labels: kind (malformed_escape, empty_document, ...)
	DecodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsv_decode_errors_total",
			Help: "Total number of failed NSV decodes",
		},
		[]string{"kind"},
	)

	// DecodeDuration tracks decode latency in seconds.
	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nsv_decode_duration_seconds",
			Help: "NSV decode duration in seconds",
			Buckets: []float64{
				1e-5, // 10μs - single small rows
				1e-4, // 100μs
				1e-3, // 1ms
				1e-2, // 10ms
				1e-1, // 100ms - multi-megabyte inputs
				1,    // 1s
				10,   // 10s
			},
		},
		[]string{"mode"},
	)

	// EncodedBytes counts bytes produced by the export writer.
	EncodedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nsv_encoded_bytes_total",
			Help: "Total number of NSV bytes encoded",
		},
	)

	// SniffedColumns counts sniffing decisions by resulting type.
	SniffedColumns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsv_sniffed_columns_total",
			Help: "Total number of columns typed by the sniffer",
		},
		[]string{"type"},
	)

	// ScanBatches counts non-empty batches emitted by scanners.
	ScanBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nsv_scan_batches_total",
			Help: "Total number of batches emitted by scanners",
		},
	)

	// ScanRows counts rows emitted by scanners.
	ScanRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nsv_scan_rows_total",
			Help: "Total number of rows emitted by scanners",
		},
	)

	// NullDowngrades counts non-empty cells turned into NULL because they
	// failed conversion to the column type.
	NullDowngrades = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nsv_null_downgrades_total",
			Help: "Total number of cells downgraded to NULL on conversion failure",
		},
		[]string{"type"},
	)

	// ScanThroughput holds the last measured scan throughput.
	ScanThroughput = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nsv_scan_throughput_rows_per_second",
			Help: "Most recent scan throughput in rows per second",
		},
	)

	// BufferPoolInUse reports buffers checked out of pool.Buffers.
	BufferPoolInUse = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "nsv_buffer_pool_in_use",
			Help: "Number of I/O buffers currently checked out of the pool",
		},
		func() float64 {
			_, inUse, _, _ := pool.Buffers.Stats()
			return float64(inUse)
		},
	)

	// BufferPoolAllocated reports buffers pool.Buffers has ever allocated.
	BufferPoolAllocated = promauto.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "nsv_buffer_pool_allocated_total",
			Help: "Total number of I/O buffers allocated by the pool",
		},
		func() float64 {
			allocated, _, _, _ := pool.Buffers.Stats()
			return float64(allocated)
		},
	)

	// BufferPoolHits reports Gets served from pool.Buffers without allocating.
	BufferPoolHits = promauto.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "nsv_buffer_pool_hits_total",
			Help: "Total number of I/O buffer requests served by reuse",
		},
		func() float64 {
			_, _, hits, _ := pool.Buffers.Stats()
			return float64(hits)
		},
	)
)

// ObserveDecode records the outcome of a single decode.
func ObserveDecode(mode string, rows, size int, d time.Duration, err error) {
	DecodedBytes.WithLabelValues(mode).Add(float64(size))
	DecodeDuration.WithLabelValues(mode).Observe(d.Seconds())
	if err != nil {
		return
	}
	DecodedRows.WithLabelValues(mode).Add(float64(rows))
}

// ObserveDecodeError records a failed decode of the given error kind.
func ObserveDecodeError(kind string) {
	DecodeErrors.WithLabelValues(kind).Inc()
}

// ObserveBatch records one emitted scan batch.
func ObserveBatch(rows int) {
	if rows == 0 {
		return
	}
	ScanBatches.Inc()
	ScanRows.Add(float64(rows))
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker tracks scanned rows per second over time windows.
// Thread-safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64
	lastReset time.Time
}

// NewThroughputTracker creates a tracker whose first window starts now.
func NewThroughputTracker() *ThroughputTracker {
	return &ThroughputTracker{lastReset: time.Now()}
}

// Increment adds n to the row count.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset calculates the throughput of the current window, publishes it
// to ScanThroughput and starts a new window.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed
	t.count = 0
	t.lastReset = time.Now()

	ScanThroughput.Set(throughput)
	return throughput
}
