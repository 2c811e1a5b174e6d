package cmt

// MaxSupportedDepth bounds the tree height. The change log replay locates
// the divergence level of two leaf indices with 32 bit arithmetic, which
// is only sound for depths below 31.
const MaxSupportedDepth = 30

// ConcurrentMerkleTree is a fixed capacity merkle tree over 1<<maxDepth
// opaque 32 byte leaves, with a ring buffer of the change logs for the
// last maxBufferSize mutations. See the package documentation for the
// model; see New for the construction constraints.
//
// The zero value is an uninitialized tree with no backing storage; use
// New, or UnmarshalBinary on a serialized tree.
type ConcurrentMerkleTree struct {
	maxDepth      int
	maxBufferSize int

	// sequenceNumber is the logical mutation clock; it advances by
	// exactly one per successful mutation and never decreases.
	sequenceNumber uint64
	// activeIndex is the ring slot of the most recently written change
	// log.
	activeIndex uint64
	// bufferSize counts the live change log entries. It grows to
	// maxBufferSize and then stays there forever.
	bufferSize uint64

	changeLogs     []ChangeLog
	rightmostProof Path
}

// New allocates an uninitialized tree. maxDepth fixes the leaf capacity
// at 1<<maxDepth and maxBufferSize fixes how many change logs are
// retained, bounding how stale a submitted proof may be. maxBufferSize
// must be a power of two: the ring cursor wraps with a bit mask, not
// modulo arithmetic, and the constraint is enforced here rather than
// silently worked around.
//
// Both values are fixed for the life of the tree. The backing slices are
// allocated once and never resized, keeping the structure's size
// deterministic for the storage layout in codec.go.
func New(maxDepth, maxBufferSize int) (*ConcurrentMerkleTree, error) {
	if err := checkBounds(maxDepth, maxBufferSize); err != nil {
		return nil, err
	}
	t := &ConcurrentMerkleTree{
		maxDepth:       maxDepth,
		maxBufferSize:  maxBufferSize,
		changeLogs:     make([]ChangeLog, maxBufferSize),
		rightmostProof: newPath(maxDepth),
	}
	for i := range t.changeLogs {
		t.changeLogs[i] = newChangeLog(maxDepth)
	}
	return t, nil
}

func checkBounds(maxDepth, maxBufferSize int) error {
	if maxDepth < 1 || maxDepth > MaxSupportedDepth {
		return ErrDepthOutOfRange
	}
	if maxBufferSize < 1 || !isPow2(uint(maxBufferSize)) {
		return ErrBufferSizeNotPowerOfTwo
	}
	return nil
}

// IsInitialized reports whether the tree has left the uninitialized
// state. There is no separate state bit: a tree is initialized iff any of
// the book keeping counters has ever advanced, which Initialize
// guarantees by setting bufferSize to one.
func (t *ConcurrentMerkleTree) IsInitialized() bool {
	return !(t.bufferSize == 0 && t.sequenceNumber == 0 && t.activeIndex == 0)
}

// Root returns the current root of the tree, or the zero Node for a tree
// with no backing storage.
func (t *ConcurrentMerkleTree) Root() Node {
	if len(t.changeLogs) == 0 {
		return Node{}
	}
	return t.changeLogs[t.activeIndex].Root
}

// Seq returns the tree's mutation clock: the count of successful
// mutations applied since initialization.
func (t *ConcurrentMerkleTree) Seq() uint64 { return t.sequenceNumber }

// MaxDepth returns the tree height fixed at construction.
func (t *ConcurrentMerkleTree) MaxDepth() int { return t.maxDepth }

// MaxBufferSize returns the change log ring capacity fixed at
// construction.
func (t *ConcurrentMerkleTree) MaxBufferSize() int { return t.maxBufferSize }

// BufferSize returns the count of live change log entries.
func (t *ConcurrentMerkleTree) BufferSize() uint64 { return t.bufferSize }

// RightmostIndex returns the number of leaves ever appended, which is
// also the index of the next free slot.
func (t *ConcurrentMerkleTree) RightmostIndex() uint32 {
	return t.rightmostProof.Index
}

// RightmostProof returns a copy of the tree's proof to the most recently
// appended leaf.
func (t *ConcurrentMerkleTree) RightmostProof() Path {
	return clonePath(t.rightmostProof)
}

// CurrentChangeLog returns a copy of the change log written by the most
// recent mutation. For an uninitialized tree it is the zero entry.
func (t *ConcurrentMerkleTree) CurrentChangeLog() ChangeLog {
	if len(t.changeLogs) == 0 {
		return ChangeLog{}
	}
	cl := t.changeLogs[t.activeIndex]
	return ChangeLog{
		Root:  cl.Root,
		Path:  append([]Node(nil), cl.Path...),
		Index: cl.Index,
	}
}

func (t *ConcurrentMerkleTree) checkLeafIndex(leafIndex uint32) error {
	if uint64(leafIndex) >= uint64(1)<<uint(t.maxDepth) {
		return ErrLeafIndexOutOfBounds
	}
	return nil
}

func (t *ConcurrentMerkleTree) mask() uint64 {
	return uint64(t.maxBufferSize - 1)
}

// advanceBuffer moves the ring cursor to the slot for the next change log
// and ticks the mutation clock. The clock saturates rather than wrapping:
// rolling back to all-zero counters would make the tree appear
// uninitialized.
func (t *ConcurrentMerkleTree) advanceBuffer() {
	t.activeIndex = (t.activeIndex + 1) & t.mask()
	if t.bufferSize < uint64(t.maxBufferSize) {
		t.bufferSize++
	}
	if t.sequenceNumber != ^uint64(0) {
		t.sequenceNumber++
	}
}
