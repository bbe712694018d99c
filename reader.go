package zstdstream

import (
	"fmt"
	"io"
)

// Reader is an io.Reader that decompresses data read from r. By default
// it decodes concatenated frames as one continuous stream and returns
// io.EOF only at a clean frame boundary; a source that ends mid-frame
// yields a truncation error instead. Not safe for concurrent use.
type Reader struct {
	r      io.Reader
	d      *Decompressor
	in     []byte
	win    []byte
	srcEOF bool
	err    error
}

// NewReader returns a Reader decompressing from r.
//
// Call Release when the Reader is no longer needed.
func NewReader(r io.Reader) *Reader {
	zr, err := NewReaderParams(r, nil)
	if err != nil {
		panic(fmt.Errorf("BUG: cannot create decompression session: %w", err))
	}
	return zr
}

// NewReaderParams returns a Reader decompressing from r with a session
// configured from params. With SingleFrame set, the Reader reports
// io.EOF at the first frame boundary and leaves the rest of r unread,
// apart from what the final read had already pulled in.
func NewReaderParams(r io.Reader, params *DecompressorParams) (*Reader, error) {
	d, err := NewDecompressorParams(params)
	if err != nil {
		return nil, err
	}
	return &Reader{
		r:  r,
		d:  d,
		in: GetBuffer(streamDecompressInSize),
	}, nil
}

// Read decompresses into p.
func (zr *Reader) Read(p []byte) (int, error) {
	if zr.err != nil {
		return 0, zr.err
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		if zr.d.FrameDone() {
			zr.err = io.EOF
			return 0, io.EOF
		}
		if len(zr.win) == 0 && !zr.srcEOF {
			n, err := zr.r.Read(zr.in)
			zr.win = zr.in[:n]
			if err != nil {
				if err != io.EOF {
					zr.err = err
					return 0, err
				}
				zr.srcEOF = true
			}
		}
		res, err := zr.d.DecompressInto(p, zr.win)
		zr.win = zr.win[res.Consumed:]
		if err != nil {
			zr.err = err
			return res.Produced, err
		}
		if res.Produced > 0 {
			return res.Produced, nil
		}
		if zr.srcEOF && len(zr.win) == 0 {
			if !zr.d.AtFrameEdge() {
				zr.err = newTruncatedError("read", DirDecompress)
				return 0, zr.err
			}
			zr.err = io.EOF
			return 0, io.EOF
		}
	}
}

// WriteTo decompresses the whole stream into w, satisfying io.WriterTo
// so io.Copy avoids an intermediate buffer.
func (zr *Reader) WriteTo(w io.Writer) (int64, error) {
	if zr.err != nil {
		return 0, zr.err
	}
	out := GetBuffer(streamDecompressOutSize)
	defer PutBuffer(out)

	var total int64
	for {
		n, err := zr.Read(out)
		if n > 0 {
			written, werr := w.Write(out[:n])
			total += int64(written)
			if werr != nil {
				return total, werr
			}
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
	}
}

// Reset prepares the Reader to decompress a new stream from r, keeping
// the session and its parameters. A half-decoded frame is abandoned.
func (zr *Reader) Reset(r io.Reader) error {
	if err := zr.d.Reset(); err != nil {
		return err
	}
	zr.r = r
	zr.win = nil
	zr.srcEOF = false
	zr.err = nil
	return nil
}

// Release frees the decompression session and returns internal buffers
// to the pool. The Reader cannot be used afterwards.
func (zr *Reader) Release() {
	if zr.d == nil {
		return
	}
	zr.d.Release()
	zr.d = nil
	PutBuffer(zr.in)
	zr.in = nil
	zr.win = nil
	zr.r = nil
}
