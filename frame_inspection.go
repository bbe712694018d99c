package zstdstream

/*
#include <zstd.h>

// The following *_wrapper functions allow avoiding memory allocations
// during calls from Go.
// See https://github.com/golang/go/issues/24450 .

static unsigned long long ZSTD_getFrameContentSize_wrapper(void *src, size_t srcSize) {
	return ZSTD_getFrameContentSize((const void *)src, srcSize);
}

static size_t ZSTD_findFrameCompressedSize_wrapper(void *src, size_t srcSize) {
	return ZSTD_findFrameCompressedSize((const void *)src, srcSize);
}

static unsigned ZSTD_getDictID_fromFrame_wrapper(void *src, size_t srcSize) {
	return ZSTD_getDictID_fromFrame((const void *)src, srcSize);
}
*/
import "C"

import (
	"errors"
	"runtime"
)

// ErrContentSizeUnknown is returned by GetFrameContentSize when the
// frame header does not record the decompressed size.
var ErrContentSizeUnknown = errors.New("frame content size not recorded in header")

// FrameInfo describes one frame, read from its header by the engine.
type FrameInfo struct {
	// ContentSize is the decompressed size recorded in the header.
	// Meaningful only when HasContentSize is true.
	ContentSize    uint64
	HasContentSize bool

	// CompressedSize is the exact size of the whole frame in the input,
	// found by scanning its blocks. Slicing the input at this offset
	// yields the next frame of a concatenated stream.
	CompressedSize uint64

	// DictID is the dictionary ID the frame was compressed with, or 0.
	DictID uint32
}

// GetFrameContentSize reports the decompressed size recorded in the
// header of the frame starting at src. Frames compressed from a stream
// of unknown length carry no size; that case returns
// ErrContentSizeUnknown.
func GetFrameContentSize(src []byte) (uint64, error) {
	const op = "get frame content size"
	result := C.ZSTD_getFrameContentSize_wrapper(bufPtr(src), C.size_t(len(src)))
	runtime.KeepAlive(src)
	switch uint64(result) {
	case uint64(C.ZSTD_CONTENTSIZE_ERROR):
		return 0, &EngineError{
			Code:      ErrorCodePrefixUnknown,
			Message:   "input does not begin with a valid frame header",
			Op:        op,
			Direction: DirDecompress,
		}
	case uint64(C.ZSTD_CONTENTSIZE_UNKNOWN):
		return 0, ErrContentSizeUnknown
	default:
		return uint64(result), nil
	}
}

// GetFrameCompressedSize scans the frame starting at src and reports its
// exact compressed size, including header and checksum. src must contain
// at least the whole frame. Useful for walking concatenated frames
// without decoding them.
func GetFrameCompressedSize(src []byte) (uint64, error) {
	result := C.ZSTD_findFrameCompressedSize_wrapper(bufPtr(src), C.size_t(len(src)))
	runtime.KeepAlive(src)
	if err := engineError(result, "find frame compressed size", DirDecompress); err != nil {
		return 0, err
	}
	return uint64(result), nil
}

// GetFrameDictID reports the dictionary ID recorded in the header of the
// frame starting at src, or 0 when the frame names no dictionary or the
// header cannot be read.
func GetFrameDictID(src []byte) uint32 {
	id := C.ZSTD_getDictID_fromFrame_wrapper(bufPtr(src), C.size_t(len(src)))
	runtime.KeepAlive(src)
	return uint32(id)
}

// GetFrameInfo reads the header of the frame starting at src and returns
// everything the engine can report about it.
func GetFrameInfo(src []byte) (*FrameInfo, error) {
	info := &FrameInfo{}

	contentSize, err := GetFrameContentSize(src)
	switch {
	case err == nil:
		info.ContentSize = contentSize
		info.HasContentSize = true
	case errors.Is(err, ErrContentSizeUnknown):
		// Header is valid, size just not recorded.
	default:
		return nil, err
	}

	compressedSize, err := GetFrameCompressedSize(src)
	if err != nil {
		return nil, err
	}
	info.CompressedSize = compressedSize
	info.DictID = GetFrameDictID(src)
	return info, nil
}
