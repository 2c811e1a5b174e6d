package mirror

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrSnapshotNotFound = errors.New("no snapshot stored for the requested tree and sequence number")
	ErrSnapshotExists   = errors.New("a snapshot already exists for the requested tree and sequence number")
)

// ObjectReader reads stored snapshots. Snapshots are keyed by the owning
// tree's identity and the sequence number of the mutation they capture.
type ObjectReader interface {
	// HeadSeq returns the highest sequence number with a stored snapshot
	// for treeID, or ErrSnapshotNotFound when none exist.
	HeadSeq(ctx context.Context, treeID uuid.UUID) (uint64, error)
	// SnapshotRead returns the raw snapshot bytes for (treeID, seq).
	SnapshotRead(ctx context.Context, treeID uuid.UUID, seq uint64) ([]byte, error)
}

// ObjectWriter stores snapshots. Snapshots are immutable: with
// failIfExists set, writing an already-present (treeID, seq) pair must
// fail with ErrSnapshotExists rather than overwrite.
type ObjectWriter interface {
	Put(ctx context.Context, treeID uuid.UUID, seq uint64, data []byte, failIfExists bool) error
}

type ObjectReaderWriter interface {
	ObjectReader
	ObjectWriter
}
