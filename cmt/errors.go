package cmt

import "errors"

// Every failure an operation can report is one of these values, or wraps
// one of them. The tree never retries and never panics on an operation
// path; callers route on the error kind.
var (
	// ErrTreeNotInitialized is returned by every operation invoked before
	// Initialize or InitializeWithRoot has succeeded.
	ErrTreeNotInitialized = errors.New("tree is not initialized")

	// ErrTreeAlreadyInitialized rejects a second initialization; the
	// transition to the initialized state is irreversible.
	ErrTreeAlreadyInitialized = errors.New("tree is already initialized")

	// ErrTreeNonEmpty is returned by ProveTreeIsEmpty when any leaf has
	// been written.
	ErrTreeNonEmpty = errors.New("tree root is not the canonical empty root")

	// ErrLeafIndexOutOfBounds covers both an index beyond the tree's
	// capacity and, for update operations, an index beyond the rightmost
	// appended leaf.
	ErrLeafIndexOutOfBounds = errors.New("leaf index is out of bounds")

	// ErrCannotAppendEmptyNode rejects appending the reserved Empty
	// value, which must keep meaning 'no leaf here yet'.
	ErrCannotAppendEmptyNode = errors.New("cannot append the reserved empty node")

	// ErrTreeFull is returned by Append once every one of the 1<<maxDepth
	// leaf slots has been written.
	ErrTreeFull = errors.New("tree is at leaf capacity")

	// ErrRootNotFound means the claimed root has aged out of the change
	// log buffer (or never was a root) and inference was not permitted;
	// the caller must resubmit with a proof against a fresher root.
	ErrRootNotFound = errors.New("root not found in change log buffer")

	// ErrLeafContentsModified means fast-forwarding discovered that an
	// intervening mutation rewrote the target leaf. Fatal for SetLeaf and
	// ProveLeaf; FillEmptyOrAppend converts it into an Append.
	ErrLeafContentsModified = errors.New("leaf contents were modified since the proof was issued")

	// ErrInvalidProof means the fast-forwarded proof failed to recompute
	// the current root.
	ErrInvalidProof = errors.New("proof failed to verify against the current root")

	// ErrDepthOutOfRange rejects construction outside
	// 1..MaxSupportedDepth. Depths of 31 and beyond would break the 32
	// bit index arithmetic the change log replay depends on.
	ErrDepthOutOfRange = errors.New("max depth must be between 1 and 30")

	// ErrBufferSizeNotPowerOfTwo rejects ring capacities that defeat the
	// mask based circular indexing.
	ErrBufferSizeNotPowerOfTwo = errors.New("max buffer size must be a power of two")
)
