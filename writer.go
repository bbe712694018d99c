package zstdstream

import (
	"fmt"
	"io"
)

// Writer is an io.WriteCloser that compresses everything written to it
// into w as a single frame. Close ends the frame; it does not close the
// underlying writer. Not safe for concurrent use.
type Writer struct {
	w      io.Writer
	c      *Compressor
	buf    []byte
	err    error
	closed bool
}

// NewWriter returns a Writer compressing into w at the default level.
//
// Call Release when the Writer is no longer needed.
func NewWriter(w io.Writer) *Writer {
	return NewWriterLevel(w, DefaultCompressionLevel)
}

// NewWriterLevel returns a Writer compressing into w at the given level.
//
// Call Release when the Writer is no longer needed.
func NewWriterLevel(w io.Writer, compressionLevel int) *Writer {
	zw, err := NewWriterParams(w, &CompressorParams{Level: compressionLevel})
	if err != nil {
		panic(fmt.Errorf("BUG: cannot create compression session: %w", err))
	}
	return zw
}

// NewWriterParams returns a Writer compressing into w with a session
// configured from params.
//
// Call Release when the Writer is no longer needed.
func NewWriterParams(w io.Writer, params *CompressorParams) (*Writer, error) {
	c, err := NewCompressorParams(params)
	if err != nil {
		return nil, err
	}
	return &Writer{
		w:   w,
		c:   c,
		buf: GetBuffer(streamCompressOutSize),
	}, nil
}

// Write compresses p. The engine may buffer input internally, so bytes
// are not necessarily on the underlying writer when Write returns; use
// Flush to force them out.
func (zw *Writer) Write(p []byte) (int, error) {
	if zw.err != nil {
		return 0, zw.err
	}
	written := 0
	data := p
	for {
		res, err := zw.c.CompressInto(zw.buf, data, ActionContinue)
		written += res.Consumed
		data = data[res.Consumed:]
		if err != nil {
			zw.err = err
			return written, err
		}
		if res.Produced > 0 {
			if _, werr := zw.w.Write(zw.buf[:res.Produced]); werr != nil {
				zw.err = werr
				return written, werr
			}
		}
		if res.Done {
			return written, nil
		}
	}
}

// Flush forces everything written so far onto the underlying writer as a
// decodable sync point, without ending the frame.
func (zw *Writer) Flush() error {
	return zw.drive(ActionFlush)
}

// Close ends the frame and forces it onto the underlying writer. It does
// not close the underlying writer. Closing a Writer that was never
// written to emits a valid empty frame. Close is idempotent.
func (zw *Writer) Close() error {
	if zw.err != nil {
		return zw.err
	}
	if zw.closed {
		return nil
	}
	if err := zw.drive(ActionEnd); err != nil {
		return err
	}
	zw.closed = true
	return nil
}

func (zw *Writer) drive(action Action) error {
	if zw.err != nil {
		return zw.err
	}
	for {
		res, err := zw.c.CompressInto(zw.buf, nil, action)
		if err != nil {
			zw.err = err
			return err
		}
		if res.Produced > 0 {
			if _, werr := zw.w.Write(zw.buf[:res.Produced]); werr != nil {
				zw.err = werr
				return werr
			}
		}
		if res.Done {
			return nil
		}
	}
}

// Reset prepares the Writer for a new frame into w, keeping the session
// and its parameters. It fails if a Flush or Close stopped midway on an
// underlying write error, since produced bytes would be dropped; Release
// such a Writer instead.
func (zw *Writer) Reset(w io.Writer) error {
	if err := zw.c.Reset(); err != nil {
		return err
	}
	zw.w = w
	zw.err = nil
	zw.closed = false
	return nil
}

// Release frees the compression session and returns internal buffers to
// the pool. The Writer cannot be used afterwards.
func (zw *Writer) Release() {
	if zw.c == nil {
		return
	}
	zw.c.Release()
	zw.c = nil
	PutBuffer(zw.buf)
	zw.buf = nil
	zw.w = nil
}
