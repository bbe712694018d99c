package main

import (
	"bytes"
	"fmt"
	"log"

	"github.com/GrigoryEvko/zstdstream"
)

func main() {
	// Train a dictionary on a corpus of small, similar documents. Shared
	// dictionaries pay off exactly there: each document is too small to
	// establish its own history.
	var samples [][]byte
	for i := 0; i < 1000; i++ {
		samples = append(samples, []byte(fmt.Sprintf(
			`{"id":%d,"status":"ok","payload":"user event %d"}`, i, i)))
	}
	dictContent := zstdstream.BuildDict(samples, 16*1024)
	if dictContent == nil {
		log.Fatal("dictionary training produced no dictionary")
	}

	dict, err := zstdstream.NewDict(dictContent)
	if err != nil {
		log.Fatalf("NewDict failed: %v", err)
	}
	defer dict.Release()
	fmt.Printf("Dictionary: %d bytes, ID %d\n", len(dictContent), dict.ID())

	doc := []byte(`{"id":12345,"status":"ok","payload":"user event 12345"}`)

	plain := zstdstream.Compress(nil, doc)
	withDict, err := zstdstream.CompressDict(nil, doc, dict)
	if err != nil {
		log.Fatalf("CompressDict failed: %v", err)
	}
	fmt.Printf("Compressed %d bytes: %d without dictionary, %d with\n",
		len(doc), len(plain), len(withDict))

	// The frame header records which dictionary it needs.
	fmt.Printf("Frame dictionary ID: %d\n", zstdstream.GetFrameDictID(withDict))

	restored, err := zstdstream.DecompressDict(nil, withDict, dict)
	if err != nil {
		log.Fatalf("DecompressDict failed: %v", err)
	}

	if bytes.Equal(restored, doc) {
		fmt.Println("\n✓ Success: Data matches after dictionary compression/decompression")
	} else {
		fmt.Println("\n✗ Error: Data mismatch after dictionary compression/decompression")
	}
}
