package main

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/GrigoryEvko/zstdstream"
)

func main() {
	// Large data to compress in streaming fashion
	data := bytes.Repeat([]byte("Streaming compression feeds input in chunks and drains a fixed output buffer. "), 1000)
	fmt.Printf("Original size: %d bytes\n", len(data))

	c, err := zstdstream.NewCompressor(5)
	if err != nil {
		log.Fatalf("NewCompressor failed: %v", err)
	}
	defer c.Release()

	// Feed 4 KiB chunks through an 8 KiB output buffer. When the buffer
	// fills mid-chunk the Result reports Done == false: drain it and call
	// again with whatever input is left.
	var compressed bytes.Buffer
	out := make([]byte, 8*1024)
	feed := func(chunk []byte, action zstdstream.Action) {
		for {
			res, err := c.CompressInto(out, chunk, action)
			if err != nil {
				log.Fatalf("CompressInto failed: %v", err)
			}
			compressed.Write(out[:res.Produced])
			chunk = chunk[res.Consumed:]
			if res.Done {
				return
			}
		}
	}

	chunkSize := 4096
	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}
		feed(data[i:end], zstdstream.ActionContinue)
	}
	feed(nil, zstdstream.ActionEnd)

	fmt.Printf("Compressed size: %d bytes\n", compressed.Len())
	fmt.Printf("Compression ratio: %.2fx\n\n", float64(len(data))/float64(compressed.Len()))

	// Decompress through the io.Reader adapter.
	reader := zstdstream.NewReader(&compressed)
	defer reader.Release()

	var decompressed bytes.Buffer
	if _, err := io.Copy(&decompressed, reader); err != nil {
		log.Fatalf("decompression failed: %v", err)
	}
	fmt.Printf("Decompressed size: %d bytes\n", decompressed.Len())

	if bytes.Equal(decompressed.Bytes(), data) {
		fmt.Println("\n✓ Success: Data matches after streaming compression/decompression")
	} else {
		fmt.Println("\n✗ Error: Data mismatch after streaming compression/decompression")
	}

	stats := zstdstream.GlobalMetrics.Snapshot()
	fmt.Printf("\nOperations: %d compress, %d decompress, ratio %.2fx\n",
		stats.CompressOps, stats.DecompressOps, stats.CompressionRatio())
}
