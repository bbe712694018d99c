package main

import (
	"bytes"
	"fmt"
	"log"

	"github.com/GrigoryEvko/zstdstream"
)

func main() {
	// Sample data
	data := bytes.Repeat([]byte("This example demonstrates a tuned compression session. "), 50)
	fmt.Printf("Original size: %d bytes\n\n", len(data))

	c, err := zstdstream.NewCompressor(0)
	if err != nil {
		log.Fatalf("Creating compressor failed: %v", err)
	}
	defer c.Release()

	// Parameters may only change while the session is Ready; the first
	// chunk of a frame locks them in.
	fmt.Println("Setting compression parameters:")

	if err := c.SetParameter(zstdstream.ZSTD_c_compressionLevel, 19); err != nil {
		log.Fatalf("Failed to set compression level: %v", err)
	}
	fmt.Println("✓ Compression level: 19")

	if err := c.SetParameter(zstdstream.ZSTD_c_checksumFlag, 1); err != nil {
		log.Fatalf("Failed to enable checksum: %v", err)
	}
	fmt.Println("✓ Checksum: enabled")

	if err := c.SetParameter(zstdstream.ZSTD_c_windowLog, 20); err != nil {
		log.Fatalf("Failed to set window log: %v", err)
	}
	fmt.Println("✓ Window log: 20 (1MB window)")

	if err := c.SetParameter(zstdstream.ZSTD_c_strategy, int(zstdstream.ZSTD_btultra2)); err != nil {
		log.Fatalf("Failed to set strategy: %v", err)
	}
	fmt.Println("✓ Strategy: btultra2 (best compression)")
	fmt.Println()

	// Compress a whole frame with the tuned parameters.
	compressed, err := c.Compress(data, zstdstream.ActionEnd)
	if err != nil {
		log.Fatalf("Compression failed: %v", err)
	}
	fmt.Printf("Compressed size: %d bytes\n", len(compressed))
	fmt.Printf("Compression ratio: %.2fx\n\n", float64(len(data))/float64(len(compressed)))

	decompressed, err := zstdstream.Decompress(nil, compressed)
	if err != nil {
		log.Fatalf("Decompression failed: %v", err)
	}
	if bytes.Equal(decompressed, data) {
		fmt.Println("✓ Success: Data matches after tuned compression/decompression")
	} else {
		fmt.Println("✗ Error: Data mismatch")
	}

	// A finished frame leaves the session FrameClosed; Reset re-arms it
	// with the same parameters.
	fmt.Println("\n--- Demonstrating Session Reset ---")

	if err := c.Reset(); err != nil {
		log.Fatalf("Failed to reset session: %v", err)
	}
	fmt.Printf("✓ Session reset (state: %s, parameters retained)\n", c.State())

	compressed2, err := c.Compress([]byte("Another frame with the same parameters"), zstdstream.ActionEnd)
	if err != nil {
		log.Fatalf("Second compression failed: %v", err)
	}
	fmt.Printf("Second frame size: %d bytes\n", len(compressed2))

	// Pledging the exact input size lets the engine pick tighter buffers
	// and records the size in the frame header.
	fmt.Println("\n--- Demonstrating Pledged Size ---")

	if err := c.Reset(); err != nil {
		log.Fatalf("Failed to reset session: %v", err)
	}

	pledgedData := []byte("Data with known size")
	if err := c.SetPledgedSrcSize(uint64(len(pledgedData))); err != nil {
		log.Fatalf("Failed to set pledged size: %v", err)
	}
	fmt.Printf("✓ Pledged size: %d bytes\n", len(pledgedData))

	compressedPledged, err := c.Compress(pledgedData, zstdstream.ActionEnd)
	if err != nil {
		log.Fatalf("Compression with pledged size failed: %v", err)
	}
	fmt.Printf("Compressed with pledged size: %d bytes\n", len(compressedPledged))

	recorded, err := zstdstream.GetFrameContentSize(compressedPledged)
	if err != nil {
		log.Fatalf("Reading frame header failed: %v", err)
	}
	fmt.Printf("Content size recorded in header: %d bytes\n", recorded)
}
