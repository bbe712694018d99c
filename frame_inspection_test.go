package zstdstream

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetFrameContentSize(t *testing.T) {
	t.Run("Recorded", func(t *testing.T) {
		for _, size := range []int{0, 11, 4096, 128 * 1024} {
			t.Run(fmt.Sprintf("size_%d", size), func(t *testing.T) {
				frame := Compress(nil, newTestData(size))
				got, err := GetFrameContentSize(frame)
				if err != nil {
					t.Fatalf("unexpected error reading content size: %s", err)
				}
				if got != uint64(size) {
					t.Fatalf("unexpected content size; got %d; want %d", got, size)
				}
			})
		}
	})

	t.Run("StreamingUnknown", func(t *testing.T) {
		// A frame started without a pledged size records no content size
		// in its header.
		c := mustCompressor(t, 3)
		head, err := c.Compress(newTestData(4096), ActionContinue)
		if err != nil {
			t.Fatalf("unexpected error on streaming compress: %s", err)
		}
		tail, err := c.Finish()
		if err != nil {
			t.Fatalf("unexpected error finishing frame: %s", err)
		}
		frame := append(head, tail...)

		_, err = GetFrameContentSize(frame)
		if !errors.Is(err, ErrContentSizeUnknown) {
			t.Fatalf("expected ErrContentSizeUnknown; got %v", err)
		}

		// The frame itself is intact.
		plain, err := Decompress(nil, frame)
		if err != nil {
			t.Fatalf("unexpected error decompressing unpledged frame: %s", err)
		}
		if len(plain) != 4096 {
			t.Fatalf("unexpected decompressed length: %d", len(plain))
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := GetFrameContentSize([]byte("this is not a frame header"))
		var ee *EngineError
		if !errors.As(err, &ee) {
			t.Fatalf("expected an EngineError; got %v", err)
		}
		if ee.Code != ErrorCodePrefixUnknown {
			t.Fatalf("unexpected error code; got %d; want %d", ee.Code, ErrorCodePrefixUnknown)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := GetFrameContentSize(nil)
		if !IsCorruption(err) {
			t.Fatalf("expected a corruption error for empty input; got %v", err)
		}
	})
}

func TestGetFrameCompressedSize(t *testing.T) {
	t.Run("WholeFrame", func(t *testing.T) {
		frame := Compress(nil, newTestData(8192))
		got, err := GetFrameCompressedSize(frame)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if got != uint64(len(frame)) {
			t.Fatalf("unexpected compressed size; got %d; want %d", got, len(frame))
		}
	})

	t.Run("WalkConcatenated", func(t *testing.T) {
		frameA := Compress(nil, newTestData(2048))
		frameB := Compress(nil, newRandomData(512))
		skip := skippableFrame([]byte("index v1"))

		var stream []byte
		stream = append(stream, frameA...)
		stream = append(stream, frameB...)
		stream = append(stream, skip...)

		wantSizes := []int{len(frameA), len(frameB), len(skip)}
		offset := 0
		for i, want := range wantSizes {
			got, err := GetFrameCompressedSize(stream[offset:])
			if err != nil {
				t.Fatalf("unexpected error at frame %d: %s", i, err)
			}
			if got != uint64(want) {
				t.Fatalf("unexpected size for frame %d; got %d; want %d", i, got, want)
			}
			offset += int(got)
		}
		if offset != len(stream) {
			t.Fatalf("frame walk ended at offset %d; want %d", offset, len(stream))
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		frame := Compress(nil, newTestData(2048))
		_, err := GetFrameCompressedSize(frame[:len(frame)-3])
		if !IsCorruption(err) {
			t.Fatalf("expected a corruption error for truncated frame; got %v", err)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := GetFrameCompressedSize(nil)
		if !IsCorruption(err) {
			t.Fatalf("expected a corruption error for empty input; got %v", err)
		}
	})
}

func TestGetFrameDictID(t *testing.T) {
	frame := Compress(nil, newTestData(1024))
	if id := GetFrameDictID(frame); id != 0 {
		t.Fatalf("unexpected dictionary ID on plain frame: %d", id)
	}
	if id := GetFrameDictID([]byte("garbage")); id != 0 {
		t.Fatalf("unexpected dictionary ID on garbage: %d", id)
	}
	if id := GetFrameDictID(nil); id != 0 {
		t.Fatalf("unexpected dictionary ID on empty input: %d", id)
	}
}

func TestGetFrameInfo(t *testing.T) {
	t.Run("Pledged", func(t *testing.T) {
		data := newTestData(4096)
		frame := Compress(nil, data)

		info, err := GetFrameInfo(frame)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !info.HasContentSize {
			t.Fatalf("content size missing from one-shot frame header")
		}
		if info.ContentSize != uint64(len(data)) {
			t.Fatalf("unexpected content size; got %d; want %d", info.ContentSize, len(data))
		}
		if info.CompressedSize != uint64(len(frame)) {
			t.Fatalf("unexpected compressed size; got %d; want %d", info.CompressedSize, len(frame))
		}
		if info.DictID != 0 {
			t.Fatalf("unexpected dictionary ID: %d", info.DictID)
		}
	})

	t.Run("Unpledged", func(t *testing.T) {
		c := mustCompressor(t, 0)
		head, err := c.Compress(newTestData(1024), ActionContinue)
		if err != nil {
			t.Fatalf("unexpected error on streaming compress: %s", err)
		}
		tail, err := c.Finish()
		if err != nil {
			t.Fatalf("unexpected error finishing frame: %s", err)
		}
		frame := append(head, tail...)

		info, err := GetFrameInfo(frame)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if info.HasContentSize {
			t.Fatalf("unpledged streaming frame should not record content size")
		}
		if info.ContentSize != 0 {
			t.Fatalf("content size must be zero when not recorded; got %d", info.ContentSize)
		}
		if info.CompressedSize != uint64(len(frame)) {
			t.Fatalf("unexpected compressed size; got %d; want %d", info.CompressedSize, len(frame))
		}
	})

	t.Run("Dictionary", func(t *testing.T) {
		dict := buildTestDict(t)
		data := newTestData(2048)
		frame, err := CompressDict(nil, data, dict)
		if err != nil {
			t.Fatalf("unexpected error compressing with dictionary: %s", err)
		}

		info, err := GetFrameInfo(frame)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if info.DictID != dict.ID() {
			t.Fatalf("unexpected dictionary ID; got %d; want %d", info.DictID, dict.ID())
		}
		if !info.HasContentSize || info.ContentSize != uint64(len(data)) {
			t.Fatalf("unexpected content size; got %d (recorded=%v); want %d",
				info.ContentSize, info.HasContentSize, len(data))
		}
	})

	t.Run("Garbage", func(t *testing.T) {
		if _, err := GetFrameInfo([]byte("definitely not zstd")); err == nil {
			t.Fatalf("expected an error for garbage input")
		}
	})
}

func TestFrameInspectionSkippable(t *testing.T) {
	skip := skippableFrame([]byte("sidecar metadata"))

	size, err := GetFrameContentSize(skip)
	if err != nil {
		t.Fatalf("unexpected error reading skippable content size: %s", err)
	}
	if size != 0 {
		t.Fatalf("skippable frame content size must be zero; got %d", size)
	}

	compressedSize, err := GetFrameCompressedSize(skip)
	if err != nil {
		t.Fatalf("unexpected error scanning skippable frame: %s", err)
	}
	if compressedSize != uint64(len(skip)) {
		t.Fatalf("unexpected skippable frame size; got %d; want %d", compressedSize, len(skip))
	}

	if id := GetFrameDictID(skip); id != 0 {
		t.Fatalf("unexpected dictionary ID on skippable frame: %d", id)
	}
}
