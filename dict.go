package zstdstream

/*
#include <zstd.h>
#include <zdict.h>

// The following *_wrapper functions allow avoiding memory allocations
// during calls from Go.
// See https://github.com/golang/go/issues/24450 .

static ZSTD_CDict* ZSTD_createCDict_wrapper(void *dictBuffer, size_t dictSize, int compressionLevel) {
	return ZSTD_createCDict((const void *)dictBuffer, dictSize, compressionLevel);
}

static ZSTD_DDict* ZSTD_createDDict_wrapper(void *dictBuffer, size_t dictSize) {
	return ZSTD_createDDict((const void *)dictBuffer, dictSize);
}

static unsigned ZDICT_getDictID_wrapper(void *dictBuffer, size_t dictSize) {
	return ZDICT_getDictID((const void *)dictBuffer, dictSize);
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Engine training floors (ZDICT_DICTSIZE_MIN, ZDICT_CONTENTSIZE_MIN).
// Upstream gates them behind the static-linking macro, so they are
// restated here.
const (
	dictSizeMin    = 256
	dictContentMin = 128
)

// The engine ignores dictionaries shorter than 8 bytes.
const minDictContentLen = 8

// Dict holds dictionary content shared between compression and
// decompression sessions. It keeps a private copy of the content and
// digests it lazily into engine form: one compression digest per level,
// one decompression digest, all cached and shared by reference count.
//
// A single Dict may be attached to many sessions concurrently. Engine
// digests stay alive until both the Dict and every session using them
// have been released.
type Dict struct {
	content []byte
	id      uint32
	digest  uint64
	raw     bool

	mu       sync.Mutex
	cdicts   map[int]*cdict
	dd       *ddict
	released bool
}

// NewDict creates a Dict from trained dictionary content, as produced by
// BuildDict or an external trainer. Content without a dictionary header
// is rejected; use NewRawDict for plain prefix content.
//
// The content is copied; the caller's buffer is not retained.
func NewDict(content []byte) (*Dict, error) {
	const op = "new dictionary"
	if len(content) < minDictContentLen {
		return nil, &ConfigError{Op: op, Param: "content", Reason: "dictionary content must be at least 8 bytes"}
	}
	buf := append([]byte(nil), content...)
	id := uint32(C.ZDICT_getDictID_wrapper(bufPtr(buf), C.size_t(len(buf))))
	runtime.KeepAlive(buf)
	if id == 0 {
		return nil, &ConfigError{Op: op, Param: "content", Reason: "content has no dictionary header; use NewRawDict for raw prefix content"}
	}
	d := &Dict{
		content: buf,
		id:      id,
		digest:  xxhash.Sum64(buf),
		cdicts:  make(map[int]*cdict),
	}
	runtime.SetFinalizer(d, (*Dict).Release)
	return d, nil
}

// NewRawDict creates a Dict from raw prefix content with no dictionary
// header. Compression and decompression simply treat the content as
// preceding every frame. ID reports 0 for raw dictionaries.
func NewRawDict(content []byte) (*Dict, error) {
	const op = "new raw dictionary"
	if len(content) < minDictContentLen {
		return nil, &ConfigError{Op: op, Param: "content", Reason: "dictionary content must be at least 8 bytes"}
	}
	d := &Dict{
		content: append([]byte(nil), content...),
		digest:  xxhash.Sum64(content),
		raw:     true,
		cdicts:  make(map[int]*cdict),
	}
	runtime.SetFinalizer(d, (*Dict).Release)
	return d, nil
}

// ID returns the dictionary ID embedded in trained content, or 0 for a
// raw dictionary. Frames compressed with a trained dictionary carry this
// ID in their header.
func (d *Dict) ID() uint32 { return d.id }

// Digest returns a 64-bit content hash, usable as a cache or registry
// key for the dictionary.
func (d *Dict) Digest() uint64 { return d.digest }

// compressionDict returns the engine digest for the given level, with a
// reference acquired for the caller. The caller must release it.
func (d *Dict) compressionDict(level int) (*cdict, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, &ConfigError{Op: "attach dictionary", Param: "dict", Reason: "dictionary already released"}
	}
	if cd := d.cdicts[level]; cd != nil {
		cd.acquire()
		return cd, nil
	}
	p := C.ZSTD_createCDict_wrapper(bufPtr(d.content), C.size_t(len(d.content)), C.int(level))
	runtime.KeepAlive(d.content)
	if p == nil {
		return nil, newMemoryError("create compression dictionary", DirCompress)
	}
	cd := &cdict{p: p, refs: 1}
	d.cdicts[level] = cd
	cd.acquire()
	return cd, nil
}

// decompressionDict returns the engine digest for decompression, with a
// reference acquired for the caller. The caller must release it.
func (d *Dict) decompressionDict() (*ddict, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil, &ConfigError{Op: "attach dictionary", Param: "dict", Reason: "dictionary already released"}
	}
	if d.dd == nil {
		p := C.ZSTD_createDDict_wrapper(bufPtr(d.content), C.size_t(len(d.content)))
		runtime.KeepAlive(d.content)
		if p == nil {
			return nil, newMemoryError("create decompression dictionary", DirDecompress)
		}
		d.dd = &ddict{p: p, refs: 1}
	}
	d.dd.acquire()
	return d.dd, nil
}

// Release drops the Dict's own references to its engine digests. Digests
// still attached to live sessions survive until those sessions release
// them. The Dict cannot digest for new sessions afterwards; safe to call
// more than once.
func (d *Dict) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return
	}
	d.released = true
	for _, cd := range d.cdicts {
		cd.release()
	}
	d.cdicts = nil
	if d.dd != nil {
		d.dd.release()
		d.dd = nil
	}
	runtime.SetFinalizer(d, nil)
}

// cdict is one engine-level compression digest. References are acquired
// only under the owning Dict's mutex, so a zero count is final.
type cdict struct {
	p    *C.ZSTD_CDict
	refs int64
}

func (cd *cdict) acquire() {
	atomic.AddInt64(&cd.refs, 1)
}

func (cd *cdict) release() {
	n := atomic.AddInt64(&cd.refs, -1)
	if n == 0 {
		C.ZSTD_freeCDict(cd.p)
		cd.p = nil
	} else if n < 0 {
		panic("BUG: compression dictionary reference count went negative")
	}
}

// ddict is the engine-level decompression digest.
type ddict struct {
	p    *C.ZSTD_DDict
	refs int64
}

func (dd *ddict) acquire() {
	atomic.AddInt64(&dd.refs, 1)
}

func (dd *ddict) release() {
	n := atomic.AddInt64(&dd.refs, -1)
	if n == 0 {
		C.ZSTD_freeDDict(dd.p)
		dd.p = nil
	} else if n < 0 {
		panic("BUG: decompression dictionary reference count went negative")
	}
}

// BuildDict trains dictionary content from the given samples. The result
// is close to desiredDictLen bytes and can be passed to NewDict.
//
// Returns nil when the samples cannot produce a useful dictionary, for
// example when there are too few of them.
func BuildDict(samples [][]byte, desiredDictLen int) []byte {
	if desiredDictLen < dictSizeMin {
		desiredDictLen = dictSizeMin
	}
	dict := make([]byte, desiredDictLen)

	samplesBufLen := 0
	for _, sample := range samples {
		samplesBufLen += len(sample)
	}
	samplesBuf := make([]byte, 0, samplesBufLen)
	samplesSizes := make([]C.size_t, 0, len(samples))
	for _, sample := range samples {
		if len(sample) == 0 {
			continue
		}
		samplesBuf = append(samplesBuf, sample...)
		samplesSizes = append(samplesSizes, C.size_t(len(sample)))
	}

	// Pad tiny corpora so training has enough content to work with.
	minSamplesBufLen := dictContentMin
	if minSamplesBufLen < dictSizeMin {
		minSamplesBufLen = dictSizeMin
	}
	for samplesBufLen < minSamplesBufLen {
		filler := []byte(fmt.Sprintf("dictionary training filler %d", samplesBufLen))
		samplesBuf = append(samplesBuf, filler...)
		samplesSizes = append(samplesSizes, C.size_t(len(filler)))
		samplesBufLen += len(filler)
	}

	// ZDICT_trainFromBuffer is not safe for concurrent use; serialize
	// training.
	buildDictLock.Lock()
	result := C.ZDICT_trainFromBuffer(
		unsafe.Pointer(&dict[0]),
		C.size_t(len(dict)),
		unsafe.Pointer(&samplesBuf[0]),
		&samplesSizes[0],
		C.unsigned(len(samplesSizes)))
	buildDictLock.Unlock()
	runtime.KeepAlive(samplesBuf)
	if C.ZDICT_isError(result) != 0 {
		return nil
	}
	return dict[:int(result)]
}

var buildDictLock sync.Mutex
