package zstdstream

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		c := mustCompressor(t, 3)
		err := c.SetParameter(ZSTD_c_checksumFlag, 5)
		if !IsConfigError(err) {
			t.Fatalf("expected config error, got %v", err)
		}
		msg := err.Error()
		if !strings.Contains(msg, "checksumFlag") {
			t.Errorf("config error must name the parameter: %s", msg)
		}
		if !strings.Contains(msg, "out of range") {
			t.Errorf("config error must state the reason: %s", msg)
		}
	})

	t.Run("state", func(t *testing.T) {
		c := mustCompressor(t, 3)
		if _, err := c.Compress([]byte("data"), ActionEnd); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		_, err := c.Compress([]byte("more"), ActionContinue)
		if !IsStateError(err) {
			t.Fatalf("expected state error, got %v", err)
		}
		var se *StateError
		if !errors.As(err, &se) {
			t.Fatalf("cannot unwrap state error")
		}
		if se.State != StateFrameClosed {
			t.Errorf("unexpected state in error: %s", se.State)
		}
		if !strings.Contains(err.Error(), "frame-closed") {
			t.Errorf("state error must name the state: %s", err)
		}
	})

	t.Run("engine", func(t *testing.T) {
		d := mustDecompressor(t)
		_, err := d.Decompress([]byte("definitely not a zstd frame"))
		var ee *EngineError
		if !errors.As(err, &ee) {
			t.Fatalf("expected engine error, got %v", err)
		}
		if ee.Code != ErrorCodePrefixUnknown {
			t.Errorf("unexpected code %d", ee.Code)
		}
		if ee.Direction != DirDecompress {
			t.Errorf("unexpected direction %s", ee.Direction)
		}
		if ee.Message == "" {
			t.Errorf("engine message must be preserved")
		}
		// The message carries enough context to tell bad input from
		// misuse: operation, direction, state, progress counts.
		msg := ee.Error()
		for _, want := range []string{"decompress", "code 10", "state", "consumed"} {
			if !strings.Contains(msg, want) {
				t.Errorf("engine error message missing %q: %s", want, msg)
			}
		}
	})
}

func TestErrorPredicateCrossChecks(t *testing.T) {
	config := &ConfigError{Op: "x", Reason: "y"}
	state := &StateError{Op: "x", State: StateReady, Reason: "y"}
	corrupt := &EngineError{Code: ErrorCodeCorruptionDetected}
	checksum := &EngineError{Code: ErrorCodeChecksumWrong}
	dictWrong := &EngineError{Code: ErrorCodeDictionaryWrong}
	plain := errors.New("plain")

	if !IsConfigError(config) || IsConfigError(state) || IsConfigError(plain) || IsConfigError(nil) {
		t.Errorf("IsConfigError misclassifies")
	}
	if !IsStateError(state) || IsStateError(config) || IsStateError(plain) || IsStateError(nil) {
		t.Errorf("IsStateError misclassifies")
	}
	if !IsCorruption(corrupt) || !IsCorruption(checksum) {
		t.Errorf("IsCorruption must cover corruption and checksum codes")
	}
	if IsCorruption(dictWrong) || IsCorruption(config) || IsCorruption(nil) {
		t.Errorf("IsCorruption misclassifies")
	}
	if !IsChecksumMismatch(checksum) || IsChecksumMismatch(corrupt) {
		t.Errorf("IsChecksumMismatch misclassifies")
	}
	if !IsDictionaryMismatch(dictWrong) || IsDictionaryMismatch(corrupt) {
		t.Errorf("IsDictionaryMismatch misclassifies")
	}
}

func TestErrorWrapping(t *testing.T) {
	d := mustDecompressor(t)
	_, err := d.Decompress([]byte("definitely not a zstd frame"))
	if err == nil {
		t.Fatalf("expected error")
	}
	wrapped := fmt.Errorf("while loading cache: %w", err)

	if !IsCorruption(wrapped) {
		t.Errorf("predicates must see through wrapping")
	}
	var ee *EngineError
	if !errors.As(wrapped, &ee) {
		t.Errorf("errors.As must see through wrapping")
	}
}

func TestChecksumMismatchPredicate(t *testing.T) {
	c, err := NewCompressorParams(&CompressorParams{Checksum: true})
	if err != nil {
		t.Fatalf("cannot create compressor: %s", err)
	}
	t.Cleanup(c.Release)

	// Corrupt only the stored checksum: content decodes, verification
	// fails.
	frame, err := c.Compress(newTestData(1024), ActionEnd)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	frame[len(frame)-1] ^= 0xff
	_, err = Decompress(nil, frame)
	if !IsChecksumMismatch(err) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
	if !IsCorruption(err) {
		t.Fatalf("checksum mismatch must also classify as corruption")
	}
}
