package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	snapshotNameFmt = "%016d.snap"
	snapshotExt     = ".snap"
)

// DirStore keeps snapshots in a local directory tree, one directory per
// tree identity:
//
//	<root>/trees/<tree id>/0000000000000042.snap
//
// The zero padded decimal sequence number makes lexical and numeric
// ordering agree, so the head snapshot is simply the last name in the
// directory listing.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) treeDir(treeID uuid.UUID) string {
	return filepath.Join(s.root, "trees", treeID.String())
}

func (s *DirStore) snapshotPath(treeID uuid.UUID, seq uint64) string {
	return filepath.Join(s.treeDir(treeID), fmt.Sprintf(snapshotNameFmt, seq))
}

// HeadSeq scans the tree's directory for the highest stored sequence
// number.
func (s *DirStore) HeadSeq(ctx context.Context, treeID uuid.UUID) (uint64, error) {
	entries, err := os.ReadDir(s.treeDir(treeID))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, ErrSnapshotNotFound
	}
	if err != nil {
		return 0, err
	}
	found := false
	var head uint64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		seq, err := strconv.ParseUint(strings.TrimSuffix(name, snapshotExt), 10, 64)
		if err != nil {
			continue
		}
		if !found || seq > head {
			found = true
			head = seq
		}
	}
	if !found {
		return 0, ErrSnapshotNotFound
	}
	return head, nil
}

func (s *DirStore) SnapshotRead(ctx context.Context, treeID uuid.UUID, seq uint64) ([]byte, error) {
	data, err := os.ReadFile(s.snapshotPath(treeID, seq))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	return data, err
}

// Put writes the snapshot for (treeID, seq). The way to spell 'fail
// without modifying anything if the snapshot exists' for a local store
// is O_EXCL; remote stores use their conditional write primitives for
// the same guarantee.
func (s *DirStore) Put(ctx context.Context, treeID uuid.UUID, seq uint64, data []byte, failIfExists bool) error {
	if err := os.MkdirAll(s.treeDir(treeID), 0o755); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if failIfExists {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(s.snapshotPath(treeID, seq), flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return ErrSnapshotExists
	}
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
