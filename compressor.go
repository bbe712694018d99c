package zstdstream

import (
	"errors"
	"runtime"
)

// CompressorParams configures a new Compressor. The zero value is a
// default-level, single-threaded session with no dictionary.
type CompressorParams struct {
	// Level is the compression level. 0 means DefaultCompressionLevel.
	// Out-of-range levels saturate at the engine bounds.
	Level int

	// WindowLog pins the match window to 2^WindowLog bytes. 0 lets the
	// level table decide.
	WindowLog int

	// Checksum appends a 4-byte content checksum to every frame, which
	// decompression then verifies.
	Checksum bool

	// NbWorkers moves compression work onto engine-internal threads.
	// 0 compresses on the calling thread. Calls remain synchronous
	// either way.
	NbWorkers int

	// PledgedSrcSize promises the exact total input size of the first
	// frame, letting the engine write it into the frame header and
	// verify it at End. 0 means unknown. The pledge applies to the
	// first frame only; use SetPledgedSrcSize after Reset for later
	// frames.
	PledgedSrcSize uint64

	// Dict attaches a shared dictionary. The session holds a reference
	// until Release.
	Dict *Dict
}

// Compressor is a streaming compression session. It owns one engine
// handle exclusively and is not safe for concurrent use.
//
// Feed data with Compress or CompressInto, using ActionFlush to force
// out a decodable sync point and ActionEnd to close the frame. After an
// End completes the session must be Reset before compressing again.
type Compressor struct {
	engine *compressEngine
	state  SessionState
	level  int
	dict   *Dict
	cd     *cdict

	// mt is set when the engine compresses on worker threads, in which
	// case output can materialize between calls and even an empty
	// Continue must poll for it.
	mt bool

	// enginePending records that the last call returned backpressure,
	// so the engine still holds produced-but-undelivered output.
	enginePending bool
	flushPending  bool
	endPending    bool
}

// NewCompressor creates a compression session at the given level.
func NewCompressor(level int) (*Compressor, error) {
	return NewCompressorParams(&CompressorParams{Level: level})
}

// NewCompressorParams creates a compression session from params. A nil
// params is equivalent to the zero value.
func NewCompressorParams(params *CompressorParams) (*Compressor, error) {
	if params == nil {
		params = &CompressorParams{}
	}
	engine, err := newCompressEngine()
	if err != nil {
		return nil, err
	}

	level := params.Level
	if level == 0 {
		level = DefaultCompressionLevel
	}
	c := &Compressor{
		engine: engine,
		state:  StateReady,
		level:  clampCompressionLevel(level),
	}

	ok := false
	defer func() {
		if !ok {
			c.engine.free()
			if c.cd != nil {
				c.cd.release()
			}
		}
	}()

	if err := c.engine.setParameter(ZSTD_c_compressionLevel, c.level); err != nil {
		return nil, err
	}
	if params.WindowLog != 0 {
		v, err := validateCParameter("create compressor", ZSTD_c_windowLog, params.WindowLog)
		if err != nil {
			return nil, err
		}
		if err := c.engine.setParameter(ZSTD_c_windowLog, v); err != nil {
			return nil, err
		}
	}
	if params.Checksum {
		if err := c.engine.setParameter(ZSTD_c_checksumFlag, 1); err != nil {
			return nil, err
		}
	}
	if params.NbWorkers != 0 {
		v, err := validateCParameter("create compressor", ZSTD_c_nbWorkers, params.NbWorkers)
		if err != nil {
			return nil, err
		}
		if err := c.engine.setParameter(ZSTD_c_nbWorkers, v); err != nil {
			return nil, err
		}
		c.mt = v > 0
	}
	if params.Dict != nil {
		cd, err := params.Dict.compressionDict(c.level)
		if err != nil {
			return nil, err
		}
		c.dict = params.Dict
		c.cd = cd
		if err := c.engine.refCDict(cd); err != nil {
			return nil, err
		}
	}
	if params.PledgedSrcSize != 0 {
		if err := validatePledgedSrcSize("create compressor", params.PledgedSrcSize); err != nil {
			return nil, err
		}
		if err := c.engine.setPledgedSrcSize(params.PledgedSrcSize); err != nil {
			return nil, err
		}
	}

	ok = true
	runtime.SetFinalizer(c, (*Compressor).Release)
	GlobalMetrics.recordSessionCreated()
	return c, nil
}

// State returns the session's lifecycle state.
func (c *Compressor) State() SessionState { return c.state }

// SetParameter adjusts one engine parameter. Parameters are mutable only
// while the session is Ready: the first data-bearing operation locks
// them, and further attempts fail with a *StateError until Reset.
func (c *Compressor) SetParameter(param CParameter, value int) error {
	const op = "set compression parameter"
	if c.state != StateReady {
		return &StateError{Op: op, State: c.state, Reason: "parameters are locked after the first chunk"}
	}
	v, err := validateCParameter(op, param, value)
	if err != nil {
		return err
	}
	if err := c.engine.setParameter(param, v); err != nil {
		return err
	}
	switch param {
	case ZSTD_c_compressionLevel:
		c.level = v
	case ZSTD_c_nbWorkers:
		c.mt = v > 0
	}
	return nil
}

// SetPledgedSrcSize promises the exact input size of the next frame.
// Valid only while the session is Ready; the pledge is consumed by the
// frame and must be renewed after Reset.
func (c *Compressor) SetPledgedSrcSize(size uint64) error {
	const op = "set pledged source size"
	if c.state != StateReady {
		return &StateError{Op: op, State: c.state, Reason: "pledged size must be set before the first chunk of a frame"}
	}
	if err := validatePledgedSrcSize(op, size); err != nil {
		return err
	}
	return c.engine.setPledgedSrcSize(size)
}

// The engine reserves the two largest uint64 values as sentinels for
// "unknown" and "error"; pledging them would silently disable the
// size check instead of arming it.
func validatePledgedSrcSize(op string, size uint64) error {
	if size >= ^uint64(0)-1 {
		return &ConfigError{Op: op, Param: "pledgedSrcSize", Reason: "size value is reserved by the engine"}
	}
	return nil
}

// guardOp rejects operations that are invalid for the current state.
// While a Flush or End is still draining, the caller may re-present
// unconsumed input, but may not weaken the action: that would drop the
// completion signal for output the engine still holds.
func (c *Compressor) guardOp(op string, action Action) error {
	switch c.state {
	case StateClosed:
		return &StateError{Op: op, State: c.state, Reason: "session released"}
	case StateFrameClosed:
		return &StateError{Op: op, State: c.state, Reason: "frame closed; Reset the session before starting a new frame"}
	}
	if c.endPending && action != ActionEnd {
		return &StateError{Op: op, State: c.state, Reason: "previous End still draining; repeat ActionEnd until it completes"}
	}
	if c.flushPending && action == ActionContinue {
		return &StateError{Op: op, State: c.state, Reason: "previous Flush still draining; repeat ActionFlush until it completes"}
	}
	return nil
}

// drive is the compression control loop: invoke the engine over the
// cursor until the action completes, growing the sink or returning
// backpressure whenever the output span fills.
//
// Continue is complete once the input is ingested; with worker threads
// the engine may then still be compressing in the background, and its
// output is picked up by the next call instead of stalling this one.
// Flush and End are complete only when the engine reports everything
// flushed.
func (c *Compressor) drive(cur *cursor, sink outputSink, action Action) (bool, error) {
	for {
		if cur.outputFull() && !sink.grow(cur) {
			return false, nil
		}
		status, err := c.engine.compressChunk(cur, action)
		if err != nil {
			return false, err
		}
		if action == ActionContinue {
			if cur.inputExhausted() && !cur.outputFull() {
				return true, nil
			}
		} else if status == engineActionComplete {
			return true, nil
		}
	}
}

func (c *Compressor) finishOp(action Action, done bool, cur *cursor) {
	c.enginePending = !done
	c.flushPending = action == ActionFlush && !done
	c.endPending = action == ActionEnd && !done
	if done && action == ActionEnd {
		c.state = StateFrameClosed
	}
	GlobalMetrics.recordCompress(cur.stats.consumed, cur.stats.produced)
}

// handleEngineError reinitializes the engine session so the object stays
// usable for a new frame, then decorates and returns the error. The
// failed call is never retried.
func (c *Compressor) handleEngineError(err error, cur *cursor) error {
	var ee *EngineError
	if errors.As(err, &ee) {
		ee.withProgress(c.state, cur.stats.consumed, cur.stats.produced)
	}
	_ = c.engine.reset(resetSessionOnly)
	c.state = StateReady
	c.enginePending = false
	c.flushPending = false
	c.endPending = false
	GlobalMetrics.recordCompressError()
	return err
}

// Compress consumes data under the given action and returns all output
// it produces, growing the result as needed. The returned slice is
// freshly allocated and owned by the caller.
//
// With ActionContinue the engine may buffer input internally and return
// nothing; Flush or End force it out.
func (c *Compressor) Compress(data []byte, action Action) ([]byte, error) {
	if err := c.guardOp("compress", action); err != nil {
		return nil, err
	}
	if action == ActionContinue && len(data) == 0 && !c.enginePending && !c.mt {
		return nil, nil
	}
	c.state = StateStreaming
	cur := &cursor{in: data}
	sink := newGrowSink(cur, 0)
	_, err := c.drive(cur, sink, action)
	if err != nil {
		sink.discard(cur)
		return nil, c.handleEngineError(err, cur)
	}
	out := sink.finish(cur)
	c.finishOp(action, true, cur)
	return out, nil
}

// Flush forces out everything consumed so far to a decodable sync point
// without closing the frame. A second Flush with no new input in between
// produces no output.
func (c *Compressor) Flush() ([]byte, error) {
	return c.Compress(nil, ActionFlush)
}

// Finish closes the current frame and returns its trailing bytes. The
// session transitions to FrameClosed and must be Reset before reuse.
func (c *Compressor) Finish() ([]byte, error) {
	return c.Compress(nil, ActionEnd)
}

// CompressInto is the fixed-capacity variant: it fills dst and never
// allocates. When dst fills before the engine finishes, the Result
// carries Done == false and the caller must drain dst and call again
// with the input remaining after Result.Consumed bytes (an empty input
// is fine) under the same action. Partial counts are also reported
// alongside errors, so no byte is ever silently dropped.
func (c *Compressor) CompressInto(dst, data []byte, action Action) (Result, error) {
	if err := c.guardOp("compress", action); err != nil {
		return Result{}, err
	}
	if action == ActionContinue && len(data) == 0 && !c.enginePending && !c.mt {
		return Result{Done: true}, nil
	}
	c.state = StateStreaming
	cur := &cursor{in: data, out: dst}
	done, err := c.drive(cur, fixedSink{}, action)
	res := Result{Consumed: cur.stats.consumed, Produced: cur.stats.produced, Done: done}
	if err != nil {
		return res, c.handleEngineError(err, cur)
	}
	c.finishOp(action, done, cur)
	return res, nil
}

// Reset reinitializes the session for a new independent frame. The
// parameter set survives; a pledged source size does not. Resetting
// while a Flush or End is still draining fails with a *StateError, since
// that would silently drop produced bytes.
func (c *Compressor) Reset() error {
	const op = "reset compressor"
	if c.state == StateClosed {
		return &StateError{Op: op, State: c.state, Reason: "session released"}
	}
	if c.endPending || c.flushPending {
		return &StateError{Op: op, State: c.state, Reason: "output still pending from an unfinished Flush or End"}
	}
	if err := c.engine.reset(resetSessionOnly); err != nil {
		return err
	}
	c.state = StateReady
	c.enginePending = false
	return nil
}

// Release frees the engine handle and drops the dictionary reference.
// Safe to call at any lifecycle point, including with an End half
// drained, and safe to call more than once. The session is unusable
// afterwards.
func (c *Compressor) Release() {
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	c.engine.free()
	if c.cd != nil {
		c.cd.release()
		c.cd = nil
		c.dict = nil
	}
	runtime.SetFinalizer(c, nil)
	GlobalMetrics.recordSessionReleased()
}
