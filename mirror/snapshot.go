package mirror

// A snapshot captures only the leaf level plus a 32 byte header; the
// interior nodes are cheaper to recompute on load than to store. The
// header is big endian with the same reserved-space conventions as the
// concurrent tree's account layout.
import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/merkleroll/go-merkleroll/cmt"
)

const (
	// Snapshot header layout.
	//
	// .     | version | depth | reserved | sequence | reserved |
	// bytes | 2       | 1     | 5        |     8    |    16    |
	snapshotVersionFirstByte  = 0
	snapshotVersionEnd        = snapshotVersionFirstByte + 2
	snapshotDepthByte         = snapshotVersionEnd
	snapshotSequenceFirstByte = 8
	snapshotSequenceEnd       = snapshotSequenceFirstByte + 8
	snapshotHeaderSize        = 32

	snapshotCurrentVersion = uint16(0)
)

var (
	ErrSnapshotHeaderMissing = errors.New("the snapshot header is missing")
	ErrSnapshotVersion       = errors.New("the snapshot layout version is not supported")
	ErrSnapshotLength        = errors.New("the snapshot length does not match its depth")
	ErrSnapshotDepth         = errors.New("the snapshot depth is out of range")
)

// MarshalSnapshot encodes the mirror's leaves, tagged with the sequence
// number of the concurrent tree mutation the mirror has applied up to.
func MarshalSnapshot(t *Tree, seq uint64) []byte {
	leaves := t.levels[0]
	data := make([]byte, snapshotHeaderSize+len(leaves)*cmt.NodeSize)
	binary.BigEndian.PutUint16(data[snapshotVersionFirstByte:snapshotVersionEnd], snapshotCurrentVersion)
	data[snapshotDepthByte] = uint8(t.depth)
	binary.BigEndian.PutUint64(data[snapshotSequenceFirstByte:snapshotSequenceEnd], seq)
	off := snapshotHeaderSize
	for i := range leaves {
		off += copy(data[off:], leaves[i][:])
	}
	return data
}

// UnmarshalSnapshot validates and decodes a stored snapshot, rebuilding
// the interior nodes from the leaves.
func UnmarshalSnapshot(data []byte) (*Tree, uint64, error) {
	if len(data) < snapshotHeaderSize {
		return nil, 0, ErrSnapshotHeaderMissing
	}
	if v := binary.BigEndian.Uint16(data[snapshotVersionFirstByte:snapshotVersionEnd]); v != snapshotCurrentVersion {
		return nil, 0, fmt.Errorf("%w: version %d", ErrSnapshotVersion, v)
	}
	depth := int(data[snapshotDepthByte])
	if depth < 1 || depth > cmt.MaxSupportedDepth {
		return nil, 0, ErrSnapshotDepth
	}
	if len(data) != snapshotHeaderSize+(1<<uint(depth))*cmt.NodeSize {
		return nil, 0, ErrSnapshotLength
	}
	seq := binary.BigEndian.Uint64(data[snapshotSequenceFirstByte:snapshotSequenceEnd])

	t := New(depth)
	off := snapshotHeaderSize
	for i := uint32(0); i < uint32(1)<<uint(depth); i++ {
		var leaf cmt.Node
		off += copy(leaf[:], data[off:])
		if leaf != cmt.Empty {
			t.SetLeaf(i, leaf)
		}
	}
	return t, seq, nil
}
