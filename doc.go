// Package zstdstream provides streaming Zstandard compression and
// decompression on top of the system libzstd.
//
// The core types are Compressor and Decompressor: explicit sessions that
// accept input in arbitrary chunks and hand back output either into
// caller-owned buffers of fixed capacity (CompressInto, DecompressInto,
// with backpressure reported through Result.Done) or into grown slices
// (Compress, Decompress). Sessions carry frames through a small
// lifecycle: parameters are adjustable until the first chunk, a finished
// frame parks the session until Reset, and Release frees the engine
// state.
//
// Around the sessions sit one-shot helpers (Compress, Decompress and
// their level and dictionary variants), io pumps (StreamCompress,
// StreamDecompress), io.Writer/io.Reader adapters (Writer, Reader),
// shared dictionaries (Dict, BuildDict) and frame header inspection
// (GetFrameInfo).
package zstdstream
