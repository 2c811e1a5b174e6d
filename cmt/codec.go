package cmt

// The tree persists into a single contiguous byte buffer, typically a
// ledger account's data region owned by the hosting program. There is no
// self describing envelope: the layout is a fixed 32 byte start header
// followed by the change log records and the rightmost path, all sizes
// derivable from the header alone. Unlike the reinterpret-in-place
// layouts common in systems language hosts, loading here is an explicit,
// validated reconstruction: every invariant the in-memory structure
// relies on is re-checked before any field is trusted.
import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Start header layout. The value is big endian throughout.
	//
	// .     | version | depth | reserved | buffer cap | sequence | active | count |
	// bytes | 2       | 1     | 1        |      4     |     8    |    8   |   8   |
	//
	// Shifting the version field left in a future layout yields a
	// numerically larger header for all subsequent versions, so the
	// reserved byte can be consumed without ambiguity.
	headerVersionFirstByte   = 0
	headerVersionEnd         = headerVersionFirstByte + 2
	headerDepthByte          = headerVersionEnd
	headerBufferCapFirstByte = 4
	headerBufferCapEnd       = headerBufferCapFirstByte + 4
	headerSequenceFirstByte  = headerBufferCapEnd
	headerSequenceEnd        = headerSequenceFirstByte + 8
	headerActiveFirstByte    = headerSequenceEnd
	headerActiveEnd          = headerActiveFirstByte + 8
	headerCountFirstByte     = headerActiveEnd
	headerCountEnd           = headerCountFirstByte + 8
	headerSize               = headerCountEnd

	// Each change log record is root | path | index, and the trailing
	// path record is proof | leaf | index.
	indexSize = 4

	treeCurrentVersion = uint16(0)
)

var (
	ErrStartHeaderMissing = errors.New("the start header for the tree is missing")
	ErrUnsupportedVersion = errors.New("the tree layout version is not supported")
	ErrDataLengthMismatch = errors.New("the data length does not match the header")
	ErrCountersInvalid    = errors.New("the tree counters violate the buffer bounds")
)

func changeLogRecordSize(maxDepth int) int {
	return NodeSize + maxDepth*NodeSize + indexSize
}

func pathRecordSize(maxDepth int) int {
	return maxDepth*NodeSize + NodeSize + indexSize
}

// SerializedSize returns the exact byte length of a tree with the given
// construction parameters. Hosts size their backing buffers with this.
func SerializedSize(maxDepth, maxBufferSize int) int {
	return headerSize + maxBufferSize*changeLogRecordSize(maxDepth) + pathRecordSize(maxDepth)
}

// MarshalBinary encodes the tree in the account layout described above.
func (t *ConcurrentMerkleTree) MarshalBinary() ([]byte, error) {
	data := make([]byte, SerializedSize(t.maxDepth, t.maxBufferSize))

	binary.BigEndian.PutUint16(data[headerVersionFirstByte:headerVersionEnd], treeCurrentVersion)
	data[headerDepthByte] = uint8(t.maxDepth)
	binary.BigEndian.PutUint32(data[headerBufferCapFirstByte:headerBufferCapEnd], uint32(t.maxBufferSize))
	binary.BigEndian.PutUint64(data[headerSequenceFirstByte:headerSequenceEnd], t.sequenceNumber)
	binary.BigEndian.PutUint64(data[headerActiveFirstByte:headerActiveEnd], t.activeIndex)
	binary.BigEndian.PutUint64(data[headerCountFirstByte:headerCountEnd], t.bufferSize)

	off := headerSize
	for i := range t.changeLogs {
		cl := &t.changeLogs[i]
		off += copy(data[off:], cl.Root[:])
		for level := range cl.Path {
			off += copy(data[off:], cl.Path[level][:])
		}
		binary.BigEndian.PutUint32(data[off:], cl.Index)
		off += indexSize
	}
	for level := range t.rightmostProof.Proof {
		off += copy(data[off:], t.rightmostProof.Proof[level][:])
	}
	off += copy(data[off:], t.rightmostProof.Leaf[:])
	binary.BigEndian.PutUint32(data[off:], t.rightmostProof.Index)

	return data, nil
}

// UnmarshalBinary reconstructs the tree field by field from data,
// re-validating the construction bounds and counter invariants before
// accepting any of it. The receiver's previous contents are discarded.
func (t *ConcurrentMerkleTree) UnmarshalBinary(data []byte) error {
	if len(data) < headerSize {
		return ErrStartHeaderMissing
	}
	if v := binary.BigEndian.Uint16(data[headerVersionFirstByte:headerVersionEnd]); v != treeCurrentVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedVersion, v)
	}
	maxDepth := int(data[headerDepthByte])
	maxBufferSize := int(binary.BigEndian.Uint32(data[headerBufferCapFirstByte:headerBufferCapEnd]))
	if err := checkBounds(maxDepth, maxBufferSize); err != nil {
		return err
	}
	if len(data) != SerializedSize(maxDepth, maxBufferSize) {
		return fmt.Errorf("%w: have %d, want %d",
			ErrDataLengthMismatch, len(data), SerializedSize(maxDepth, maxBufferSize))
	}

	sequenceNumber := binary.BigEndian.Uint64(data[headerSequenceFirstByte:headerSequenceEnd])
	activeIndex := binary.BigEndian.Uint64(data[headerActiveFirstByte:headerActiveEnd])
	bufferSize := binary.BigEndian.Uint64(data[headerCountFirstByte:headerCountEnd])
	if activeIndex >= uint64(maxBufferSize) || bufferSize > uint64(maxBufferSize) {
		return ErrCountersInvalid
	}

	fresh, err := New(maxDepth, maxBufferSize)
	if err != nil {
		return err
	}
	fresh.sequenceNumber = sequenceNumber
	fresh.activeIndex = activeIndex
	fresh.bufferSize = bufferSize

	off := headerSize
	for i := range fresh.changeLogs {
		cl := &fresh.changeLogs[i]
		off += copy(cl.Root[:], data[off:])
		for level := range cl.Path {
			off += copy(cl.Path[level][:], data[off:])
		}
		cl.Index = binary.BigEndian.Uint32(data[off:])
		off += indexSize
	}
	for level := range fresh.rightmostProof.Proof {
		off += copy(fresh.rightmostProof.Proof[level][:], data[off:])
	}
	off += copy(fresh.rightmostProof.Leaf[:], data[off:])
	fresh.rightmostProof.Index = binary.BigEndian.Uint32(data[off:])

	if uint64(fresh.rightmostProof.Index) > uint64(1)<<uint(maxDepth) {
		return ErrCountersInvalid
	}

	*t = *fresh
	return nil
}
