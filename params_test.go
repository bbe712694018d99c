package zstdstream

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetParameterBounds(t *testing.T) {
	tests := []struct {
		name    string
		param   CParameter
		value   int
		wantErr bool
	}{
		{"windowLog-min", ZSTD_c_windowLog, 10, false},
		{"windowLog-below-min", ZSTD_c_windowLog, 9, true},
		{"hashLog-max", ZSTD_c_hashLog, 30, false},
		{"hashLog-above-max", ZSTD_c_hashLog, 31, true},
		{"minMatch-ok", ZSTD_c_minMatch, 4, false},
		{"minMatch-too-small", ZSTD_c_minMatch, 2, true},
		{"minMatch-too-large", ZSTD_c_minMatch, 8, true},
		{"strategy-ok", ZSTD_c_strategy, int(ZSTD_btultra2), false},
		{"strategy-unknown", ZSTD_c_strategy, 10, true},
		{"checksum-flag-ok", ZSTD_c_checksumFlag, 1, false},
		{"checksum-flag-bad", ZSTD_c_checksumFlag, 2, true},
		{"ldm-enable-ok", ZSTD_c_enableLongDistanceMatching, 1, false},
		{"ldm-hash-log-bad", ZSTD_c_ldmHashLog, 31, true},
		{"negative-value", ZSTD_c_searchLog, -1, true},
		{"unknown-parameter", CParameter(31337), 1, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := mustCompressor(t, 3)
			err := c.SetParameter(tc.param, tc.value)
			if tc.wantErr {
				if !IsConfigError(err) {
					t.Fatalf("expected config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
		})
	}
}

func TestSetParameterZeroMeansDefault(t *testing.T) {
	c := mustCompressor(t, 3)
	for param := range cParameterBounds {
		if err := c.SetParameter(param, 0); err != nil {
			t.Fatalf("zero value rejected for %s: %s", param, err)
		}
	}
	d := mustDecompressor(t)
	if err := d.SetParameter(ZSTD_d_windowLogMax, 0); err != nil {
		t.Fatalf("zero value rejected for windowLogMax: %s", err)
	}
}

func TestCompressionLevelClamp(t *testing.T) {
	if got := clampCompressionLevel(DefaultCompressionLevel); got != DefaultCompressionLevel {
		t.Fatalf("default level must survive the clamp, got %d", got)
	}
	if got := clampCompressionLevel(1 << 30); got != MaxCompressionLevel() {
		t.Fatalf("oversized level must clamp to max, got %d", got)
	}
	if got := clampCompressionLevel(-(1 << 30)); got != MinCompressionLevel() {
		t.Fatalf("undersized level must clamp to min, got %d", got)
	}
	if MinCompressionLevel() >= MaxCompressionLevel() {
		t.Fatalf("level bounds are inverted: [%d, %d]", MinCompressionLevel(), MaxCompressionLevel())
	}
}

func TestParameterNames(t *testing.T) {
	if got := ZSTD_c_windowLog.String(); got != "windowLog" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := ZSTD_d_windowLogMax.String(); got != "windowLogMax" {
		t.Fatalf("unexpected name: %q", got)
	}
	if got := CParameter(31337).String(); !strings.Contains(got, "31337") {
		t.Fatalf("unknown parameter name must include the raw value, got %q", got)
	}
}

func TestStrategyRoundTrip(t *testing.T) {
	data := newTestData(8 * 1024)
	for s := ZSTD_fast; s <= ZSTD_btultra2; s++ {
		c := mustCompressor(t, 3)
		if err := c.SetParameter(ZSTD_c_strategy, int(s)); err != nil {
			t.Fatalf("strategy %d: cannot set: %s", s, err)
		}
		frame, err := c.Compress(data, ActionEnd)
		if err != nil {
			t.Fatalf("strategy %d: unexpected error: %s", s, err)
		}
		plain, err := Decompress(nil, frame)
		if err != nil || !bytes.Equal(plain, data) {
			t.Fatalf("strategy %d: round-trip failed: %v", s, err)
		}
	}
}

func TestLongDistanceMatching(t *testing.T) {
	// Repetitive data far apart is where LDM earns its keep.
	block := newTestData(256 * 1024)
	data := append(append([]byte(nil), block...), block...)

	c := mustCompressor(t, 3)
	if err := c.SetParameter(ZSTD_c_enableLongDistanceMatching, 1); err != nil {
		t.Fatalf("cannot enable long distance matching: %s", err)
	}
	frame, err := c.Compress(data, ActionEnd)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	plain, err := Decompress(nil, frame)
	if err != nil || !bytes.Equal(plain, data) {
		t.Fatalf("round-trip failed: %v", err)
	}
}

func TestNbWorkersRoundTrip(t *testing.T) {
	data := newTestData(1 << 20)
	c, err := NewCompressorParams(&CompressorParams{Level: 3, NbWorkers: 2})
	if err != nil {
		t.Fatalf("cannot create compressor: %s", err)
	}
	t.Cleanup(c.Release)

	var frame []byte
	out, err := c.Compress(data, ActionContinue)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	frame = append(frame, out...)
	out, err = c.Finish()
	if err != nil {
		t.Fatalf("unexpected error on finish: %s", err)
	}
	frame = append(frame, out...)

	plain, err := Decompress(nil, frame)
	if err != nil || !bytes.Equal(plain, data) {
		t.Fatalf("multi-worker round-trip failed: %v", err)
	}
}

func FuzzParameterSweep(f *testing.F) {
	f.Add([]byte("test"), 3, 0, 0, 0, 0)
	f.Add([]byte("test"), 19, 20, 12, 14, int(ZSTD_btopt))
	f.Add(make([]byte, 4096), -5, 10, 6, 6, int(ZSTD_fast))

	f.Fuzz(func(t *testing.T, data []byte, level, windowLog, hashLog, chainLog, strategy int) {
		c, err := NewCompressor(level)
		if err != nil {
			t.Fatalf("cannot create compressor: %s", err)
		}
		defer c.Release()

		// Out-of-bounds values fail validation; that is fine, the
		// session must stay usable either way.
		_ = c.SetParameter(ZSTD_c_windowLog, windowLog)
		_ = c.SetParameter(ZSTD_c_hashLog, hashLog)
		_ = c.SetParameter(ZSTD_c_chainLog, chainLog)
		_ = c.SetParameter(ZSTD_c_strategy, strategy)

		frame, err := c.Compress(data, ActionEnd)
		if err != nil {
			t.Fatalf("compression failed after parameter sweep: %s", err)
		}
		plain, err := Decompress(nil, frame)
		if err != nil {
			t.Fatalf("cannot decompress: %s", err)
		}
		if !bytes.Equal(plain, data) {
			t.Fatalf("round-trip mismatch after parameter sweep")
		}
	})
}
