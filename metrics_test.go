package zstdstream

import (
	"testing"
)

func TestMetricsRecording(t *testing.T) {
	m := &Metrics{}

	m.recordSessionCreated()
	m.recordSessionCreated()
	m.recordCompress(100, 40)
	m.recordCompress(100, 40)
	m.recordCompressError()
	m.recordDecompress(80, 200)
	m.recordDecompressError()
	m.recordSessionReleased()

	s := m.Snapshot()
	if s.CompressOps != 2 {
		t.Fatalf("unexpected CompressOps: %d", s.CompressOps)
	}
	if s.CompressInBytes != 200 || s.CompressOutBytes != 80 {
		t.Fatalf("unexpected compress byte counters: in=%d out=%d", s.CompressInBytes, s.CompressOutBytes)
	}
	if s.CompressErrors != 1 {
		t.Fatalf("unexpected CompressErrors: %d", s.CompressErrors)
	}
	if s.DecompressOps != 1 || s.DecompressInBytes != 80 || s.DecompressOutBytes != 200 {
		t.Fatalf("unexpected decompress counters: ops=%d in=%d out=%d",
			s.DecompressOps, s.DecompressInBytes, s.DecompressOutBytes)
	}
	if s.DecompressErrors != 1 {
		t.Fatalf("unexpected DecompressErrors: %d", s.DecompressErrors)
	}
	if s.SessionsCreated != 2 || s.SessionsReleased != 1 || s.ActiveSessions != 1 {
		t.Fatalf("unexpected session counters: created=%d released=%d active=%d",
			s.SessionsCreated, s.SessionsReleased, s.ActiveSessions)
	}

	if ratio := s.CompressionRatio(); ratio != 2.5 {
		t.Fatalf("unexpected compression ratio: %v", ratio)
	}

	m.Reset()
	s = m.Snapshot()
	if s != (MetricsSnapshot{}) {
		t.Fatalf("counters survived Reset: %+v", s)
	}
	if ratio := s.CompressionRatio(); ratio != 0 {
		t.Fatalf("expected zero ratio before any output; got %v", ratio)
	}
}

func TestGlobalMetricsRoundTrip(t *testing.T) {
	data := newTestData(64 * 1024)
	before := GlobalMetrics.Snapshot()

	c := mustCompressor(t, 0)
	frame, err := c.Compress(data, ActionEnd)
	if err != nil {
		t.Fatalf("unexpected error when compressing: %s", err)
	}

	d := mustDecompressor(t)
	plain, err := d.Decompress(frame)
	if err != nil {
		t.Fatalf("unexpected error when decompressing: %s", err)
	}
	if len(plain) != len(data) {
		t.Fatalf("unexpected decompressed length: %d", len(plain))
	}

	// Pooled sessions reclaimed by the garbage collector can bump the
	// global counters from finalizers, so check lower bounds only.
	after := GlobalMetrics.Snapshot()
	if got := after.CompressOps - before.CompressOps; got < 1 {
		t.Fatalf("CompressOps delta too small: %d", got)
	}
	if got := after.CompressInBytes - before.CompressInBytes; got < int64(len(data)) {
		t.Fatalf("CompressInBytes delta too small: %d", got)
	}
	if got := after.CompressOutBytes - before.CompressOutBytes; got < int64(len(frame)) {
		t.Fatalf("CompressOutBytes delta too small: %d", got)
	}
	if got := after.DecompressOps - before.DecompressOps; got < 1 {
		t.Fatalf("DecompressOps delta too small: %d", got)
	}
	if got := after.DecompressInBytes - before.DecompressInBytes; got < int64(len(frame)) {
		t.Fatalf("DecompressInBytes delta too small: %d", got)
	}
	if got := after.DecompressOutBytes - before.DecompressOutBytes; got < int64(len(data)) {
		t.Fatalf("DecompressOutBytes delta too small: %d", got)
	}
	if got := after.SessionsCreated - before.SessionsCreated; got < 2 {
		t.Fatalf("SessionsCreated delta too small: %d", got)
	}
}

func TestGlobalMetricsErrors(t *testing.T) {
	before := GlobalMetrics.Snapshot()

	d := mustDecompressor(t)
	if _, err := d.Decompress([]byte("not a zstd stream at all")); err == nil {
		t.Fatalf("expected an error for garbage input")
	}

	after := GlobalMetrics.Snapshot()
	if got := after.DecompressErrors - before.DecompressErrors; got < 1 {
		t.Fatalf("DecompressErrors delta too small: %d", got)
	}
}
