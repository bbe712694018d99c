package zstdstream

import (
	"errors"
	"runtime"
)

// DecompressorParams configures a new Decompressor. The zero value is a
// multi-frame session with default limits and no dictionary.
type DecompressorParams struct {
	// WindowLogMax caps the window size a frame may demand, as a power
	// of two. Frames beyond the cap fail instead of allocating. 0 keeps
	// the engine default.
	WindowLogMax int

	// SingleFrame stops decoding at the first frame boundary instead of
	// continuing into subsequent frames. Input past the boundary is
	// retained and reported by UnconsumedInput.
	SingleFrame bool

	// Dict attaches a shared dictionary. The session holds a reference
	// until Release. The dictionary stays attached across frames.
	Dict *Dict
}

// Decompressor is a streaming decompression session. It owns one engine
// handle exclusively and is not safe for concurrent use.
//
// By default consecutive frames in the input are decoded as one
// continuous stream and AtFrameEdge reports whether the consumed input
// ends on a frame boundary. With SingleFrame set, decoding stops at the
// first boundary: FrameDone flips to true, trailing input is preserved
// for UnconsumedInput, and the session must be Reset before decoding
// another frame.
type Decompressor struct {
	engine *decompressEngine
	state  SessionState
	dict   *Dict
	dd     *ddict

	singleFrame bool

	// atFrameEdge tracks whether everything consumed so far forms whole
	// frames. It starts true in multi-frame mode (zero input is a valid
	// empty stream) and false in single-frame mode (no frame seen yet).
	atFrameEdge bool

	// unconsumed holds a copy of the input bytes past the first frame
	// boundary in single-frame mode. Never aliases a caller buffer.
	unconsumed []byte
}

// NewDecompressor creates a multi-frame decompression session with
// default parameters.
func NewDecompressor() (*Decompressor, error) {
	return NewDecompressorParams(nil)
}

// NewDecompressorParams creates a decompression session from params. A
// nil params is equivalent to the zero value.
func NewDecompressorParams(params *DecompressorParams) (*Decompressor, error) {
	if params == nil {
		params = &DecompressorParams{}
	}
	engine, err := newDecompressEngine()
	if err != nil {
		return nil, err
	}

	d := &Decompressor{
		engine:      engine,
		state:       StateReady,
		singleFrame: params.SingleFrame,
		atFrameEdge: !params.SingleFrame,
	}

	ok := false
	defer func() {
		if !ok {
			d.engine.free()
			if d.dd != nil {
				d.dd.release()
			}
		}
	}()

	if params.WindowLogMax != 0 {
		v, err := validateDParameter("create decompressor", ZSTD_d_windowLogMax, params.WindowLogMax)
		if err != nil {
			return nil, err
		}
		if err := d.engine.setParameter(ZSTD_d_windowLogMax, v); err != nil {
			return nil, err
		}
	}
	if params.Dict != nil {
		dd, err := params.Dict.decompressionDict()
		if err != nil {
			return nil, err
		}
		d.dict = params.Dict
		d.dd = dd
		if err := d.engine.refDDict(dd); err != nil {
			return nil, err
		}
	}

	ok = true
	runtime.SetFinalizer(d, (*Decompressor).Release)
	GlobalMetrics.recordSessionCreated()
	return d, nil
}

// State returns the session's lifecycle state.
func (d *Decompressor) State() SessionState { return d.state }

// AtFrameEdge reports whether the input consumed so far ends exactly on
// a frame boundary. In multi-frame mode it is the end-of-stream check: a
// source that runs dry while AtFrameEdge is false was truncated
// mid-frame.
func (d *Decompressor) AtFrameEdge() bool { return d.atFrameEdge }

// FrameDone reports whether a single-frame session has fully decoded its
// frame. Always false in multi-frame mode.
func (d *Decompressor) FrameDone() bool { return d.state == StateFrameClosed }

// UnconsumedInput returns the input bytes a single-frame session
// received past the end of its frame. The slice is a copy owned by the
// session; it never aliases the buffer passed to Decompress.
func (d *Decompressor) UnconsumedInput() []byte { return d.unconsumed }

// SetParameter adjusts one engine parameter. Parameters are mutable only
// while the session is Ready: the first data-bearing operation locks
// them, and further attempts fail with a *StateError until Reset.
func (d *Decompressor) SetParameter(param DParameter, value int) error {
	const op = "set decompression parameter"
	if d.state != StateReady {
		return &StateError{Op: op, State: d.state, Reason: "parameters are locked after the first chunk"}
	}
	v, err := validateDParameter(op, param, value)
	if err != nil {
		return err
	}
	return d.engine.setParameter(param, v)
}

func (d *Decompressor) guardOp(op string) error {
	switch d.state {
	case StateClosed:
		return &StateError{Op: op, State: d.state, Reason: "session released"}
	case StateFrameClosed:
		return &StateError{Op: op, State: d.state, Reason: "frame complete; Reset the session before decoding more"}
	}
	return nil
}

// skipEngine reports whether a call can complete without touching the
// engine: at a frame edge with no new input there is nothing to decode,
// and invoking the engine anyway would make it demand a next frame
// header, wrongly clearing atFrameEdge.
func (d *Decompressor) skipEngine(inputLen int) bool {
	return !d.singleFrame && d.atFrameEdge && inputLen == 0
}

// drive is the decompression control loop. The output-full check runs
// before the input-exhausted check so that pending engine output is
// always drained ahead of asking for more input.
func (d *Decompressor) drive(cur *cursor, sink outputSink) (bool, error) {
	for {
		if cur.outputFull() && !sink.grow(cur) {
			return false, nil
		}
		status, err := d.engine.decompressChunk(cur)
		if err != nil {
			return false, err
		}
		switch status {
		case engineFrameComplete:
			d.atFrameEdge = true
			if d.singleFrame {
				d.state = StateFrameClosed
				d.retainTrailing(cur)
				return true, nil
			}
			if cur.inputExhausted() {
				return true, nil
			}
		case engineMoreOutput:
			d.atFrameEdge = false
		case engineActionComplete:
			d.atFrameEdge = false
			if cur.inputExhausted() {
				return true, nil
			}
		}
	}
}

// retainTrailing copies whatever follows the completed frame so the
// caller's buffer is not held past the call.
func (d *Decompressor) retainTrailing(cur *cursor) {
	if rest := cur.unconsumedInput(); len(rest) > 0 {
		d.unconsumed = append([]byte(nil), rest...)
	} else {
		d.unconsumed = nil
	}
}

func (d *Decompressor) finishOp(cur *cursor) {
	GlobalMetrics.recordDecompress(cur.stats.consumed, cur.stats.produced)
}

// handleEngineError reinitializes the engine session so the object stays
// usable, then decorates and returns the error. Corrupt input is never
// retried.
func (d *Decompressor) handleEngineError(err error, cur *cursor) error {
	var ee *EngineError
	if errors.As(err, &ee) {
		ee.withProgress(d.state, cur.stats.consumed, cur.stats.produced)
	}
	_ = d.engine.reset(resetSessionOnly)
	d.state = StateReady
	d.atFrameEdge = !d.singleFrame
	d.unconsumed = nil
	GlobalMetrics.recordDecompressError()
	return err
}

// Decompress consumes data and returns all output it yields, growing the
// result as needed. The returned slice is freshly allocated and owned by
// the caller.
//
// A compressed stream can expand enormously; callers that cannot trust
// the input to stay reasonable should use DecompressInto and cap the
// output themselves.
func (d *Decompressor) Decompress(data []byte) ([]byte, error) {
	if err := d.guardOp("decompress"); err != nil {
		return nil, err
	}
	if d.skipEngine(len(data)) {
		return nil, nil
	}
	d.state = StateStreaming
	cur := &cursor{in: data}
	sink := newGrowSink(cur, 0)
	_, err := d.drive(cur, sink)
	if err != nil {
		sink.discard(cur)
		return nil, d.handleEngineError(err, cur)
	}
	out := sink.finish(cur)
	d.finishOp(cur)
	return out, nil
}

// DecompressInto is the fixed-capacity variant: it fills dst and never
// allocates. When dst fills while the engine still holds decoded data,
// the Result carries Done == false and the caller must drain dst and
// call again with the input remaining after Result.Consumed bytes (an
// empty input is fine). Partial counts are also reported alongside
// errors.
func (d *Decompressor) DecompressInto(dst, data []byte) (Result, error) {
	if err := d.guardOp("decompress"); err != nil {
		return Result{}, err
	}
	if d.skipEngine(len(data)) {
		return Result{Done: true}, nil
	}
	d.state = StateStreaming
	cur := &cursor{in: data, out: dst}
	done, err := d.drive(cur, fixedSink{})
	res := Result{Consumed: cur.stats.consumed, Produced: cur.stats.produced, Done: done}
	if err != nil {
		return res, d.handleEngineError(err, cur)
	}
	d.finishOp(cur)
	return res, nil
}

// Reset reinitializes the session: a half-decoded frame is abandoned,
// retained trailing input is dropped, and the parameter set and attached
// dictionary survive.
func (d *Decompressor) Reset() error {
	const op = "reset decompressor"
	if d.state == StateClosed {
		return &StateError{Op: op, State: d.state, Reason: "session released"}
	}
	if err := d.engine.reset(resetSessionOnly); err != nil {
		return err
	}
	d.state = StateReady
	d.atFrameEdge = !d.singleFrame
	d.unconsumed = nil
	return nil
}

// Release frees the engine handle and drops the dictionary reference.
// Safe to call at any lifecycle point and safe to call more than once.
// The session is unusable afterwards.
func (d *Decompressor) Release() {
	if d.state == StateClosed {
		return
	}
	d.state = StateClosed
	d.engine.free()
	if d.dd != nil {
		d.dd.release()
		d.dd = nil
		d.dict = nil
	}
	d.unconsumed = nil
	runtime.SetFinalizer(d, nil)
	GlobalMetrics.recordSessionReleased()
}
