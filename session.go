package zstdstream

// Direction identifies which way a session transforms bytes.
type Direction int

const (
	DirCompress Direction = iota
	DirDecompress
)

func (d Direction) String() string {
	switch d {
	case DirCompress:
		return "compress"
	case DirDecompress:
		return "decompress"
	}
	return "unknown"
}

// Action tells a compression session what to do beyond consuming input.
type Action int

const (
	// ActionContinue consumes input opportunistically. The engine may
	// buffer data internally and emit nothing until a block fills.
	ActionContinue Action = iota

	// ActionFlush forces all data consumed so far out to a decodable
	// synchronization point without closing the frame.
	ActionFlush

	// ActionEnd closes the current frame, writing the epilogue and any
	// trailing integrity metadata. Once an End completes, the session is
	// FrameClosed and must be Reset before starting another frame.
	ActionEnd
)

func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "continue"
	case ActionFlush:
		return "flush"
	case ActionEnd:
		return "end"
	}
	return "unknown"
}

// directive maps an Action to the engine's ZSTD_EndDirective value.
func (a Action) directive() int { return int(a) }

// SessionState is the lifecycle position of a Compressor or Decompressor.
//
// Sessions are created Ready. The first data-bearing operation moves them
// to Streaming and locks parameters. Compression sessions become
// FrameClosed when an End action fully drains; single-frame decompression
// sessions become FrameClosed at the frame boundary. Reset returns a
// session to Ready with its parameters re-applied. Release moves it to
// Closed permanently.
type SessionState int32

const (
	StateReady SessionState = iota
	StateStreaming
	StateFrameClosed
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateStreaming:
		return "streaming"
	case StateFrameClosed:
		return "frame-closed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Result reports the outcome of one fixed-capacity streaming call.
//
// Done reports whether the requested work fully completed. Done == false
// is the backpressure signal, not an error: the output buffer filled
// before the engine finished, and the caller must drain it and call again
// (typically with the input that remains after Consumed bytes, or with no
// input at all) to collect the rest.
type Result struct {
	Consumed int  // input bytes consumed
	Produced int  // output bytes written
	Done     bool // requested action fully completed
}
