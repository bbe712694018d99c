package main

import (
	"fmt"
	"log"

	"github.com/GrigoryEvko/zstdstream"
)

func main() {
	// Sample data to compress
	data := []byte("Hello, World! This is a simple one-shot compression example.")
	fmt.Printf("Original data: %s\n", data)
	fmt.Printf("Original size: %d bytes\n\n", len(data))

	// Compress the data
	compressed := zstdstream.Compress(nil, data)
	fmt.Printf("Compressed size: %d bytes\n", len(compressed))
	fmt.Printf("Compression ratio: %.2fx\n\n", float64(len(data))/float64(len(compressed)))

	// The one-shot helper records the content size in the frame header,
	// so the exact decompressed size is known up front.
	size, err := zstdstream.GetFrameContentSize(compressed)
	if err != nil {
		log.Fatalf("Reading frame header failed: %v", err)
	}
	fmt.Printf("Content size recorded in header: %d bytes\n\n", size)

	// Decompress the data
	decompressed, err := zstdstream.Decompress(nil, compressed)
	if err != nil {
		log.Fatalf("Decompression failed: %v", err)
	}

	fmt.Printf("Decompressed data: %s\n", decompressed)
	fmt.Printf("Decompressed size: %d bytes\n", len(decompressed))

	// Verify the data matches
	if string(decompressed) == string(data) {
		fmt.Println("\n✓ Success: Data matches after compression/decompression")
	} else {
		fmt.Println("\n✗ Error: Data mismatch after compression/decompression")
	}
}
