package zstdstream

import (
	"fmt"
	"sync"
)

// One-shot helpers. Each call borrows a session from a pool, runs a
// whole frame through it, and returns the session after a Reset. The
// streaming types remain the right tool once data no longer fits in
// memory at once.

var compressorPool sync.Pool

func getCompressor(level int) (*Compressor, error) {
	if v := compressorPool.Get(); v != nil {
		c := v.(*Compressor)
		if c.level == level {
			return c, nil
		}
		if err := c.SetParameter(ZSTD_c_compressionLevel, level); err == nil {
			return c, nil
		}
		c.Release()
	}
	return NewCompressor(level)
}

func putCompressor(c *Compressor) {
	if err := c.Reset(); err != nil {
		c.Release()
		return
	}
	compressorPool.Put(c)
}

var decompressorPool sync.Pool

func getDecompressor() (*Decompressor, error) {
	if v := decompressorPool.Get(); v != nil {
		return v.(*Decompressor), nil
	}
	return NewDecompressor()
}

func putDecompressor(d *Decompressor) {
	if err := d.Reset(); err != nil {
		d.Release()
		return
	}
	decompressorPool.Put(d)
}

// Compress appends compressed src to dst and returns the result. The
// produced frame records the content size in its header.
func Compress(dst, src []byte) []byte {
	return CompressLevel(dst, src, DefaultCompressionLevel)
}

// CompressLevel appends compressed src to dst and returns the result.
// Out-of-range levels saturate at the engine bounds.
func CompressLevel(dst, src []byte, compressionLevel int) []byte {
	c, err := getCompressor(clampCompressionLevel(compressionLevel))
	if err != nil {
		panic(fmt.Errorf("BUG: cannot create compression session: %w", err))
	}
	dst, err = compressFrame(c, dst, src)
	if err != nil {
		c.Release()
		panic(fmt.Errorf("BUG: unexpected error when compressing %d bytes: %w", len(src), err))
	}
	putCompressor(c)
	return dst
}

// CompressDict appends src compressed with the given dictionary to dst.
// Decompression of the result requires the same dictionary.
func CompressDict(dst, src []byte, dict *Dict) ([]byte, error) {
	c, err := NewCompressorParams(&CompressorParams{Dict: dict})
	if err != nil {
		return dst, err
	}
	defer c.Release()
	return compressFrame(c, dst, src)
}

// compressFrame runs one whole frame through c, writing into dst's spare
// capacity. Pledging the source size lets the engine both record it in
// the frame header and, with a worst-case sized output span, finish the
// frame in a single call.
func compressFrame(c *Compressor, dst, src []byte) ([]byte, error) {
	if err := c.SetPledgedSrcSize(uint64(len(src))); err != nil {
		return dst, err
	}
	bound := compressBound(len(src))
	dstLen := len(dst)
	if cap(dst)-dstLen < bound {
		grown := make([]byte, dstLen, dstLen+bound)
		copy(grown, dst)
		dst = grown
	}
	res, err := c.CompressInto(dst[dstLen:dstLen+bound], src, ActionEnd)
	if err != nil {
		return dst, err
	}
	if !res.Done {
		panic(fmt.Errorf("BUG: bound-sized frame compression did not complete: %+v", res))
	}
	return dst[:dstLen+res.Produced], nil
}

// Decompress appends decompressed src to dst and returns the result. The
// input may hold several concatenated frames; they decode as one
// continuous stream. Input that ends mid-frame or continues past the
// last frame with garbage fails.
func Decompress(dst, src []byte) ([]byte, error) {
	d, err := getDecompressor()
	if err != nil {
		return dst, err
	}
	dst, err = decompressAppend(d, dst, src)
	if err != nil {
		d.Release()
		return dst, err
	}
	putDecompressor(d)
	return dst, nil
}

// DecompressDict appends src decompressed with the given dictionary to
// dst and returns the result.
func DecompressDict(dst, src []byte, dict *Dict) ([]byte, error) {
	d, err := NewDecompressorParams(&DecompressorParams{Dict: dict})
	if err != nil {
		return dst, err
	}
	defer d.Release()
	return decompressAppend(d, dst, src)
}

// decompressAppend drains src through d into dst's spare capacity,
// growing dst whenever the session reports a full output span. The first
// frame's header hints the initial allocation; the hint is capped so a
// forged header cannot force a huge allocation.
func decompressAppend(d *Decompressor, dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}
	sizeHint := streamDecompressOutSize
	if n, err := GetFrameContentSize(src); err == nil && n > 0 {
		if n > uint64(growMaxBlockSize) {
			n = uint64(growMaxBlockSize)
		}
		if int(n) > sizeHint {
			sizeHint = int(n)
		}
	}
	for {
		if cap(dst) == len(dst) {
			grownCap := 2 * cap(dst)
			if minCap := len(dst) + sizeHint; grownCap < minCap {
				grownCap = minCap
			}
			grown := make([]byte, len(dst), grownCap)
			copy(grown, dst)
			dst = grown
		}
		res, err := d.DecompressInto(dst[len(dst):cap(dst)], src)
		dst = dst[:len(dst)+res.Produced]
		src = src[res.Consumed:]
		if err != nil {
			return dst, err
		}
		if res.Done {
			if !d.AtFrameEdge() {
				return dst, newTruncatedError("decompress", DirDecompress)
			}
			return dst, nil
		}
	}
}
