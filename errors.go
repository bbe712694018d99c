package zstdstream

import (
	"errors"
	"fmt"
)

// Engine error codes, mirroring ZSTD_ErrorCode from zstd_errors.h.
// Only codes the library reacts to or tests assert on are named here;
// EngineError.Code may carry any value the engine reports.
const (
	ErrorCodeGeneric                      = 1
	ErrorCodePrefixUnknown                = 10
	ErrorCodeVersionUnsupported           = 12
	ErrorCodeFrameParameterUnsupported    = 14
	ErrorCodeFrameParameterWindowTooLarge = 16
	ErrorCodeCorruptionDetected           = 20
	ErrorCodeChecksumWrong                = 22
	ErrorCodeDictionaryCorrupted          = 30
	ErrorCodeDictionaryWrong              = 32
	ErrorCodeDictionaryCreationFailed     = 34
	ErrorCodeParameterUnsupported         = 40
	ErrorCodeParameterCombination         = 41
	ErrorCodeParameterOutOfBound          = 42
	ErrorCodeStageWrong                   = 60
	ErrorCodeInitMissing                  = 62
	ErrorCodeMemoryAllocation             = 64
	ErrorCodeDstSizeTooSmall              = 70
	ErrorCodeSrcSizeWrong                 = 72
	ErrorCodeDstBufferNull                = 74
)

// ConfigError reports invalid parameters or dictionary content detected
// before the engine is touched: session creation with inconsistent
// options, out-of-bounds parameter values, malformed dictionaries.
// ConfigErrors are always caller-fixable and never retried internally.
type ConfigError struct {
	Op     string // operation that rejected the configuration
	Param  string // offending parameter name, if any
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("zstdstream: %s: invalid parameter %s: %s", e.Op, e.Param, e.Reason)
	}
	return fmt.Sprintf("zstdstream: %s: %s", e.Op, e.Reason)
}

// StateError reports an operation that is invalid for the session's
// current lifecycle state: mutating parameters after the first chunk,
// resetting while an End is still draining, using a released session.
// These are programming errors and are surfaced immediately.
type StateError struct {
	Op     string
	State  SessionState
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("zstdstream: %s: invalid in state %s: %s", e.Op, e.State, e.Reason)
}

// EngineError carries a failure reported by the codec engine: corrupt
// input, checksum mismatch, unsupported frame version, parameter
// violation. The engine message is preserved verbatim. The session's
// engine state after such an error is reinitialized before the error is
// returned, but the failed call itself is never retried.
//
// Consumed and Produced report how far the streaming call progressed
// before the failure, so callers can account for every byte.
type EngineError struct {
	Code      int    // engine error code (ErrorCode* values)
	Message   string // engine error message, verbatim
	Op        string
	Direction Direction
	State     SessionState
	Consumed  int
	Produced  int
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("zstd %s error: %s: %s (code %d, state %s, consumed %d, produced %d)",
		e.Direction, e.Op, e.Message, e.Code, e.State, e.Consumed, e.Produced)
}

// withProgress records the session state and byte counts at the point of
// failure. Called by the driver before the error escapes.
func (e *EngineError) withProgress(state SessionState, consumed, produced int) *EngineError {
	e.State = state
	e.Consumed = consumed
	e.Produced = produced
	return e
}

func newMemoryError(op string, dir Direction) *EngineError {
	return &EngineError{
		Code:      ErrorCodeMemoryAllocation,
		Message:   "allocation failed",
		Op:        op,
		Direction: dir,
	}
}

// newTruncatedError reports input that ends in the middle of a frame.
// Detected by the stream drivers at end of input, not by the engine,
// which cannot distinguish a pause from an ending.
func newTruncatedError(op string, dir Direction) *EngineError {
	return &EngineError{
		Code:      ErrorCodeSrcSizeWrong,
		Message:   "input ends in an incomplete frame",
		Op:        op,
		Direction: dir,
	}
}

// IsCorruption reports whether err indicates data that is not valid
// compressed input: unknown frame prefix, corrupted content, or a wrong
// checksum.
func IsCorruption(err error) bool {
	var ee *EngineError
	if !errors.As(err, &ee) {
		return false
	}
	switch ee.Code {
	case ErrorCodePrefixUnknown, ErrorCodeCorruptionDetected, ErrorCodeChecksumWrong, ErrorCodeSrcSizeWrong:
		return true
	}
	return false
}

// IsChecksumMismatch reports whether err is a frame checksum failure.
func IsChecksumMismatch(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Code == ErrorCodeChecksumWrong
}

// IsDictionaryMismatch reports whether err indicates the input requires a
// different dictionary than the one attached to the session.
func IsDictionaryMismatch(err error) bool {
	var ee *EngineError
	if !errors.As(err, &ee) {
		return false
	}
	return ee.Code == ErrorCodeDictionaryWrong || ee.Code == ErrorCodeDictionaryCorrupted
}

// IsStateError reports whether err is a lifecycle misuse error.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
