package zstdstream

/*
#cgo CFLAGS: -O3
#cgo LDFLAGS: -lzstd

#include <zstd.h>
#include <zstd_errors.h>

// The following *_wrapper functions allow avoiding memory allocations
// during calls from Go.
// See https://github.com/golang/go/issues/24450 .

static size_t ZSTD_CCtx_setParameter_wrapper(void *cctx, int param, int value) {
    return ZSTD_CCtx_setParameter((ZSTD_CCtx*)cctx, (ZSTD_cParameter)param, value);
}

static size_t ZSTD_CCtx_setPledgedSrcSize_wrapper(void *cctx, unsigned long long pledgedSrcSize) {
    return ZSTD_CCtx_setPledgedSrcSize((ZSTD_CCtx*)cctx, pledgedSrcSize);
}

static size_t ZSTD_CCtx_refCDict_wrapper(void *cctx, void *cdict) {
    return ZSTD_CCtx_refCDict((ZSTD_CCtx*)cctx, (const ZSTD_CDict*)cdict);
}

static size_t ZSTD_CCtx_reset_wrapper(void *cctx, int directive) {
    return ZSTD_CCtx_reset((ZSTD_CCtx*)cctx, (ZSTD_ResetDirective)directive);
}

static size_t ZSTD_compressStream2_wrapper(void *cctx,
    void *dst, size_t dstCapacity, size_t *dstPos,
    const void *src, size_t srcSize, size_t *srcPos,
    int endOp)
{
    ZSTD_outBuffer outBuf = { dst, dstCapacity, *dstPos };
    ZSTD_inBuffer inBuf = { src, srcSize, *srcPos };
    size_t result = ZSTD_compressStream2((ZSTD_CCtx*)cctx, &outBuf, &inBuf, (ZSTD_EndDirective)endOp);
    *dstPos = outBuf.pos;
    *srcPos = inBuf.pos;
    return result;
}

static size_t ZSTD_DCtx_setParameter_wrapper(void *dctx, int param, int value) {
    return ZSTD_DCtx_setParameter((ZSTD_DCtx*)dctx, (ZSTD_dParameter)param, value);
}

static size_t ZSTD_DCtx_refDDict_wrapper(void *dctx, void *ddict) {
    return ZSTD_DCtx_refDDict((ZSTD_DCtx*)dctx, (const ZSTD_DDict*)ddict);
}

static size_t ZSTD_DCtx_reset_wrapper(void *dctx, int directive) {
    return ZSTD_DCtx_reset((ZSTD_DCtx*)dctx, (ZSTD_ResetDirective)directive);
}

static size_t ZSTD_decompressStream_wrapper(void *dctx,
    void *dst, size_t dstCapacity, size_t *dstPos,
    const void *src, size_t srcSize, size_t *srcPos)
{
    ZSTD_outBuffer outBuf = { dst, dstCapacity, *dstPos };
    ZSTD_inBuffer inBuf = { src, srcSize, *srcPos };
    size_t result = ZSTD_decompressStream((ZSTD_DCtx*)dctx, &outBuf, &inBuf);
    *dstPos = outBuf.pos;
    *srcPos = inBuf.pos;
    return result;
}
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// Engine reset directives, mirroring ZSTD_ResetDirective.
const (
	resetSessionOnly          = 1
	resetParameters           = 2
	resetSessionAndParameters = 3
)

// engineStatus classifies the outcome of a single engine invocation.
// It is the only channel through which the driver learns about frame
// boundaries; the driver never inspects produced bytes.
type engineStatus int

const (
	// engineMoreOutput: the engine holds data it could not fit into the
	// output span. More output space is required before any other
	// progress is possible.
	engineMoreOutput engineStatus = iota

	// engineActionComplete: the requested action is fully satisfied for
	// the input seen so far. For compression this means nothing remains
	// buffered for the current directive; for decompression it means all
	// currently producible output has been delivered and more input is
	// needed to continue the frame.
	engineActionComplete

	// engineFrameComplete: decompression crossed a frame boundary and the
	// frame's output is fully flushed.
	engineFrameComplete
)

// Recommended streaming buffer sizes, queried from the engine once.
var (
	streamCompressInSize    = int(C.ZSTD_CStreamInSize())
	streamCompressOutSize   = int(C.ZSTD_CStreamOutSize())
	streamDecompressInSize  = int(C.ZSTD_DStreamInSize())
	streamDecompressOutSize = int(C.ZSTD_DStreamOutSize())
)

var (
	minCLevel = int(C.ZSTD_minCLevel())
	maxCLevel = int(C.ZSTD_maxCLevel())
)

// MinCompressionLevel returns the smallest compression level supported by
// the underlying engine. Negative levels trade ratio for speed.
func MinCompressionLevel() int { return minCLevel }

// MaxCompressionLevel returns the largest compression level supported by
// the underlying engine.
func MaxCompressionLevel() int { return maxCLevel }

// Version returns the version string of the underlying zstd library.
func Version() string {
	return C.GoString(C.ZSTD_versionString())
}

// engineError translates an engine result code into an *EngineError, or
// nil if the result does not represent an error. The engine message is
// preserved verbatim.
func engineError(result C.size_t, op string, dir Direction) error {
	if C.ZSTD_isError(result) == 0 {
		return nil
	}
	return &EngineError{
		Code:      int(C.ZSTD_getErrorCode(result)),
		Message:   C.GoString(C.ZSTD_getErrorName(result)),
		Op:        op,
		Direction: dir,
	}
}

// bufPtr returns a pointer suitable for handing a Go slice to the engine.
// A nil pointer with size 0 is valid engine input and output.
func bufPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(b))
}

// compressEngine owns one ZSTD_CCtx. It is the compression half of the
// codec engine boundary: every libzstd call made on behalf of a
// Compressor goes through a method on this type.
type compressEngine struct {
	ctx *C.ZSTD_CCtx
}

func newCompressEngine() (*compressEngine, error) {
	ctx := C.ZSTD_createCCtx()
	if ctx == nil {
		return nil, newMemoryError("create compression context", DirCompress)
	}
	return &compressEngine{ctx: ctx}, nil
}

func (e *compressEngine) setParameter(param CParameter, value int) error {
	result := C.ZSTD_CCtx_setParameter_wrapper(unsafe.Pointer(e.ctx), C.int(param), C.int(value))
	return engineError(result, "set compression parameter", DirCompress)
}

func (e *compressEngine) setPledgedSrcSize(size uint64) error {
	result := C.ZSTD_CCtx_setPledgedSrcSize_wrapper(unsafe.Pointer(e.ctx), C.ulonglong(size))
	return engineError(result, "set pledged source size", DirCompress)
}

func (e *compressEngine) refCDict(cd *cdict) error {
	var p unsafe.Pointer
	if cd != nil {
		p = unsafe.Pointer(cd.p)
	}
	result := C.ZSTD_CCtx_refCDict_wrapper(unsafe.Pointer(e.ctx), p)
	err := engineError(result, "attach compression dictionary", DirCompress)
	runtime.KeepAlive(cd)
	return err
}

func (e *compressEngine) reset(directive int) error {
	result := C.ZSTD_CCtx_reset_wrapper(unsafe.Pointer(e.ctx), C.int(directive))
	return engineError(result, "reset compression session", DirCompress)
}

// compressChunk performs one engine invocation over the cursor's
// unconsumed input and unfilled output, advancing both offsets by
// exactly what the engine reports.
func (e *compressEngine) compressChunk(cur *cursor, action Action) (engineStatus, error) {
	src := cur.unconsumedInput()
	dst := cur.unfilledOutput()
	var srcPos, dstPos C.size_t
	result := C.ZSTD_compressStream2_wrapper(unsafe.Pointer(e.ctx),
		bufPtr(dst), C.size_t(len(dst)), &dstPos,
		bufPtr(src), C.size_t(len(src)), &srcPos,
		C.int(action.directive()))
	cur.advanceInput(int(srcPos))
	cur.advanceOutput(int(dstPos))
	runtime.KeepAlive(src)
	runtime.KeepAlive(dst)
	if err := engineError(result, "compress", DirCompress); err != nil {
		return 0, err
	}
	if result == 0 {
		return engineActionComplete, nil
	}
	return engineMoreOutput, nil
}

func (e *compressEngine) free() {
	if e.ctx != nil {
		C.ZSTD_freeCCtx(e.ctx)
		e.ctx = nil
	}
}

// decompressEngine owns one ZSTD_DCtx, the decompression half of the
// codec engine boundary.
type decompressEngine struct {
	ctx *C.ZSTD_DCtx
}

func newDecompressEngine() (*decompressEngine, error) {
	ctx := C.ZSTD_createDCtx()
	if ctx == nil {
		return nil, newMemoryError("create decompression context", DirDecompress)
	}
	return &decompressEngine{ctx: ctx}, nil
}

func (e *decompressEngine) setParameter(param DParameter, value int) error {
	result := C.ZSTD_DCtx_setParameter_wrapper(unsafe.Pointer(e.ctx), C.int(param), C.int(value))
	return engineError(result, "set decompression parameter", DirDecompress)
}

func (e *decompressEngine) refDDict(dd *ddict) error {
	var p unsafe.Pointer
	if dd != nil {
		p = unsafe.Pointer(dd.p)
	}
	result := C.ZSTD_DCtx_refDDict_wrapper(unsafe.Pointer(e.ctx), p)
	err := engineError(result, "attach decompression dictionary", DirDecompress)
	runtime.KeepAlive(dd)
	return err
}

func (e *decompressEngine) reset(directive int) error {
	result := C.ZSTD_DCtx_reset_wrapper(unsafe.Pointer(e.ctx), C.int(directive))
	return engineError(result, "reset decompression session", DirDecompress)
}

// decompressChunk performs one engine invocation, advancing the cursor.
// A zero engine result is the frame-boundary signal: the frame is fully
// decoded and fully flushed.
func (e *decompressEngine) decompressChunk(cur *cursor) (engineStatus, error) {
	src := cur.unconsumedInput()
	dst := cur.unfilledOutput()
	var srcPos, dstPos C.size_t
	result := C.ZSTD_decompressStream_wrapper(unsafe.Pointer(e.ctx),
		bufPtr(dst), C.size_t(len(dst)), &dstPos,
		bufPtr(src), C.size_t(len(src)), &srcPos)
	cur.advanceInput(int(srcPos))
	cur.advanceOutput(int(dstPos))
	runtime.KeepAlive(src)
	runtime.KeepAlive(dst)
	if err := engineError(result, "decompress", DirDecompress); err != nil {
		return 0, err
	}
	if result == 0 {
		return engineFrameComplete, nil
	}
	if cur.remainingOutput() == 0 {
		return engineMoreOutput, nil
	}
	return engineActionComplete, nil
}

func (e *decompressEngine) free() {
	if e.ctx != nil {
		C.ZSTD_freeDCtx(e.ctx)
		e.ctx = nil
	}
}

// compressBound returns the worst-case compressed size for srcSize bytes.
// With at least this much output capacity an End action over the whole
// input always completes in a single engine invocation.
func compressBound(srcSize int) int {
	return int(C.ZSTD_compressBound(C.size_t(srcSize)))
}
