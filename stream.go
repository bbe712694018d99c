package zstdstream

import (
	"fmt"
	"io"
	"os"
)

// StreamCompress compresses everything read from r into w as a single
// frame at the default level.
//
// A source that yields no bytes at all produces no output: no frame is
// emitted, so concatenating pump outputs never interleaves empty frames.
func StreamCompress(w io.Writer, r io.Reader) error {
	return StreamCompressLevel(w, r, DefaultCompressionLevel)
}

// StreamCompressLevel compresses everything read from r into w as a
// single frame at the given level.
func StreamCompressLevel(w io.Writer, r io.Reader, compressionLevel int) error {
	c, err := getCompressor(clampCompressionLevel(compressionLevel))
	if err != nil {
		return err
	}
	err = streamCompress(w, r, c)
	putCompressor(c)
	return err
}

// StreamCompressParams compresses everything read from r into w as a
// single frame, using a session configured from params.
func StreamCompressParams(w io.Writer, r io.Reader, params *CompressorParams) error {
	c, err := NewCompressorParams(params)
	if err != nil {
		return err
	}
	defer c.Release()
	return streamCompress(w, r, c)
}

func streamCompress(w io.Writer, r io.Reader, c *Compressor) error {
	inBuf := GetBuffer(streamCompressInSize)
	defer PutBuffer(inBuf)
	outBuf := GetBuffer(streamCompressOutSize)
	defer PutBuffer(outBuf)

	sawData := false
	for {
		n, readErr := r.Read(inBuf)
		if n > 0 {
			sawData = true
			data := inBuf[:n]
			for {
				res, err := c.CompressInto(outBuf, data, ActionContinue)
				if err != nil {
					return err
				}
				data = data[res.Consumed:]
				if res.Produced > 0 {
					if _, err := w.Write(outBuf[:res.Produced]); err != nil {
						return err
					}
				}
				if res.Done {
					break
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				return readErr
			}
			break
		}
	}
	if !sawData {
		return nil
	}
	for {
		res, err := c.CompressInto(outBuf, nil, ActionEnd)
		if err != nil {
			return err
		}
		if res.Produced > 0 {
			if _, err := w.Write(outBuf[:res.Produced]); err != nil {
				return err
			}
		}
		if res.Done {
			return nil
		}
	}
}

// StreamDecompress decompresses everything read from r into w. The input
// may hold several concatenated frames; they decode as one continuous
// stream. A source that ends mid-frame fails with a truncation error.
func StreamDecompress(w io.Writer, r io.Reader) error {
	d, err := getDecompressor()
	if err != nil {
		return err
	}
	err = streamDecompress(w, r, d)
	putDecompressor(d)
	return err
}

// StreamDecompressParams decompresses everything read from r into w,
// using a session configured from params. With SingleFrame set the pump
// stops after the first frame and leaves the rest of r unread, apart
// from what the final read had already pulled in.
func StreamDecompressParams(w io.Writer, r io.Reader, params *DecompressorParams) error {
	d, err := NewDecompressorParams(params)
	if err != nil {
		return err
	}
	defer d.Release()
	return streamDecompress(w, r, d)
}

func streamDecompress(w io.Writer, r io.Reader, d *Decompressor) error {
	inBuf := GetBuffer(streamDecompressInSize)
	defer PutBuffer(inBuf)
	outBuf := GetBuffer(streamDecompressOutSize)
	defer PutBuffer(outBuf)

	for {
		n, readErr := r.Read(inBuf)
		data := inBuf[:n]
		for {
			res, err := d.DecompressInto(outBuf, data)
			if err != nil {
				return err
			}
			data = data[res.Consumed:]
			if res.Produced > 0 {
				if _, err := w.Write(outBuf[:res.Produced]); err != nil {
					return err
				}
			}
			if res.Done {
				break
			}
		}
		if d.FrameDone() {
			return nil
		}
		if readErr != nil {
			if readErr != io.EOF {
				return readErr
			}
			break
		}
	}
	if !d.AtFrameEdge() {
		return newTruncatedError("stream decompress", DirDecompress)
	}
	return nil
}

// StreamCompressFile compresses the file at srcPath into dstPath.
func StreamCompressFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("cannot open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("cannot create destination file: %w", err)
	}
	if err := StreamCompress(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// StreamDecompressFile decompresses the file at srcPath into dstPath.
func StreamDecompressFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("cannot open source file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("cannot create destination file: %w", err)
	}
	if err := StreamDecompress(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
