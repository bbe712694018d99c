package zstdstream

import (
	"sync/atomic"
)

// Metrics aggregates operation counters across every session in the
// process, including the ones behind the one-shot helpers and io
// adapters. All fields are updated atomically; read them through
// Snapshot.
type Metrics struct {
	CompressOps      int64
	CompressInBytes  int64
	CompressOutBytes int64
	CompressErrors   int64

	DecompressOps      int64
	DecompressInBytes  int64
	DecompressOutBytes int64
	DecompressErrors   int64

	SessionsCreated  int64
	SessionsReleased int64
	ActiveSessions   int64
}

// GlobalMetrics is the process-wide metrics instance.
var GlobalMetrics = &Metrics{}

func (m *Metrics) recordCompress(consumed, produced int) {
	atomic.AddInt64(&m.CompressOps, 1)
	atomic.AddInt64(&m.CompressInBytes, int64(consumed))
	atomic.AddInt64(&m.CompressOutBytes, int64(produced))
}

func (m *Metrics) recordCompressError() {
	atomic.AddInt64(&m.CompressErrors, 1)
}

func (m *Metrics) recordDecompress(consumed, produced int) {
	atomic.AddInt64(&m.DecompressOps, 1)
	atomic.AddInt64(&m.DecompressInBytes, int64(consumed))
	atomic.AddInt64(&m.DecompressOutBytes, int64(produced))
}

func (m *Metrics) recordDecompressError() {
	atomic.AddInt64(&m.DecompressErrors, 1)
}

func (m *Metrics) recordSessionCreated() {
	atomic.AddInt64(&m.SessionsCreated, 1)
	atomic.AddInt64(&m.ActiveSessions, 1)
}

func (m *Metrics) recordSessionReleased() {
	atomic.AddInt64(&m.SessionsReleased, 1)
	atomic.AddInt64(&m.ActiveSessions, -1)
}

// Snapshot returns a point-in-time copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CompressOps:      atomic.LoadInt64(&m.CompressOps),
		CompressInBytes:  atomic.LoadInt64(&m.CompressInBytes),
		CompressOutBytes: atomic.LoadInt64(&m.CompressOutBytes),
		CompressErrors:   atomic.LoadInt64(&m.CompressErrors),

		DecompressOps:      atomic.LoadInt64(&m.DecompressOps),
		DecompressInBytes:  atomic.LoadInt64(&m.DecompressInBytes),
		DecompressOutBytes: atomic.LoadInt64(&m.DecompressOutBytes),
		DecompressErrors:   atomic.LoadInt64(&m.DecompressErrors),

		SessionsCreated:  atomic.LoadInt64(&m.SessionsCreated),
		SessionsReleased: atomic.LoadInt64(&m.SessionsReleased),
		ActiveSessions:   atomic.LoadInt64(&m.ActiveSessions),
	}
}

// Reset zeroes all counters.
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.CompressOps, 0)
	atomic.StoreInt64(&m.CompressInBytes, 0)
	atomic.StoreInt64(&m.CompressOutBytes, 0)
	atomic.StoreInt64(&m.CompressErrors, 0)

	atomic.StoreInt64(&m.DecompressOps, 0)
	atomic.StoreInt64(&m.DecompressInBytes, 0)
	atomic.StoreInt64(&m.DecompressOutBytes, 0)
	atomic.StoreInt64(&m.DecompressErrors, 0)

	atomic.StoreInt64(&m.SessionsCreated, 0)
	atomic.StoreInt64(&m.SessionsReleased, 0)
	atomic.StoreInt64(&m.ActiveSessions, 0)
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	CompressOps      int64
	CompressInBytes  int64
	CompressOutBytes int64
	CompressErrors   int64

	DecompressOps      int64
	DecompressInBytes  int64
	DecompressOutBytes int64
	DecompressErrors   int64

	SessionsCreated  int64
	SessionsReleased int64
	ActiveSessions   int64
}

// CompressionRatio returns the aggregate input/output ratio of all
// compression so far, or 0 before any output was produced.
func (ms *MetricsSnapshot) CompressionRatio() float64 {
	if ms.CompressOutBytes == 0 {
		return 0
	}
	return float64(ms.CompressInBytes) / float64(ms.CompressOutBytes)
}
