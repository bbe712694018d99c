package zstdstream

// cursor tracks one streaming call's progress across repeated engine
// invocations: a read-only input view with its consumption offset and a
// writable output view with its fill offset. It performs offset
// bookkeeping only; offsets never move backwards and never pass the end
// of their span.
type cursor struct {
	in    []byte // input not yet consumed
	out   []byte // current output span
	fill  int    // bytes of out already written
	stats struct {
		consumed int // total input consumed this call
		produced int // total output produced this call
	}
}

func (c *cursor) remainingInput() int  { return len(c.in) }
func (c *cursor) remainingOutput() int { return len(c.out) - c.fill }

func (c *cursor) inputExhausted() bool { return len(c.in) == 0 }
func (c *cursor) outputFull() bool     { return c.fill == len(c.out) }

func (c *cursor) unconsumedInput() []byte { return c.in }
func (c *cursor) unfilledOutput() []byte  { return c.out[c.fill:] }

func (c *cursor) advanceInput(n int) {
	if n < 0 || n > len(c.in) {
		panic("zstdstream: cursor input advance out of range")
	}
	c.in = c.in[n:]
	c.stats.consumed += n
}

func (c *cursor) advanceOutput(n int) {
	if n < 0 || n > c.remainingOutput() {
		panic("zstdstream: cursor output advance out of range")
	}
	c.fill += n
	c.stats.produced += n
}

// outputSink decides what happens when the cursor's output span fills.
// The two strategies are fixed (caller-owned memory, report backpressure)
// and growing (session-owned memory, extend and keep going). The driver
// only ever calls grow; it never inspects the sink's dynamic type.
type outputSink interface {
	// grow gives the cursor a fresh output span and reports true, or
	// reports false when the sink cannot extend and the driver must
	// return backpressure to the caller.
	grow(cur *cursor) bool
}

// fixedSink is the caller-owned buffer strategy: capacity is whatever the
// caller handed in, and filling it is the backpressure condition.
type fixedSink struct{}

func (fixedSink) grow(*cursor) bool { return false }

// Auto-grow block schedule: start small, double per block up to the step
// cap, then grow linearly. Blocks live in the shared buffer pool.
const (
	growInitialBlockSize = 64 * 1024
	growMaxBlockSize     = 32 * 1024 * 1024
)

// growSink is the session-owned auto-growing strategy. Output accumulates
// in a chain of pooled blocks; every archived block is completely full,
// so the total produced count is the sum of archived block lengths plus
// the current fill.
type growSink struct {
	blocks    [][]byte // archived, completely filled blocks
	blockSize int      // size of the most recently allocated block
}

// newGrowSink mounts the first output block onto the cursor. sizeHint,
// when positive, sizes the first block so that a caller who knows the
// final output size gets a single block and a single copy.
func newGrowSink(cur *cursor, sizeHint int) *growSink {
	size := growInitialBlockSize
	if sizeHint > 0 {
		size = sizeHint
	}
	s := &growSink{blockSize: size}
	cur.out = GetBuffer(size)
	cur.fill = 0
	return s
}

func (s *growSink) grow(cur *cursor) bool {
	s.blocks = append(s.blocks, cur.out)
	switch {
	case s.blockSize >= growMaxBlockSize:
		s.blockSize = growMaxBlockSize
	case s.blockSize*2 > growMaxBlockSize:
		s.blockSize = growMaxBlockSize
	default:
		s.blockSize *= 2
	}
	cur.out = GetBuffer(s.blockSize)
	cur.fill = 0
	return true
}

// finish assembles all produced bytes into one exactly-sized slice and
// returns every block to the pool.
func (s *growSink) finish(cur *cursor) []byte {
	out := make([]byte, cur.stats.produced)
	off := 0
	for _, b := range s.blocks {
		off += copy(out[off:], b)
		PutBuffer(b)
	}
	copy(out[off:], cur.out[:cur.fill])
	PutBuffer(cur.out)
	s.blocks = nil
	cur.out = nil
	cur.fill = 0
	return out
}

// discard returns all blocks to the pool without assembling a result.
// Used on error paths.
func (s *growSink) discard(cur *cursor) {
	for _, b := range s.blocks {
		PutBuffer(b)
	}
	if cur.out != nil {
		PutBuffer(cur.out)
	}
	s.blocks = nil
	cur.out = nil
	cur.fill = 0
}
