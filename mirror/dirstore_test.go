package mirror_test

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"
	"gotest.tools/v3/assert"

	"github.com/merkleroll/go-merkleroll/mirror"
	"github.com/merkleroll/go-merkleroll/treetesting"
)

func TestDirStorePutAndRead(t *testing.T) {
	c, _, _ := treetesting.NewTestContext(t, treetesting.TestConfig{Seed: 30, Depth: 3, BufferSize: 8})
	store := mirror.NewDirStore(t.TempDir())
	treeID := c.RandomTreeID()
	ctx := context.Background()

	_, err := store.HeadSeq(ctx, treeID)
	assert.ErrorIs(t, err, mirror.ErrSnapshotNotFound)
	_, err = store.SnapshotRead(ctx, treeID, 1)
	assert.ErrorIs(t, err, mirror.ErrSnapshotNotFound)

	assert.NilError(t, store.Put(ctx, treeID, 1, []byte("one"), true))
	assert.NilError(t, store.Put(ctx, treeID, 12, []byte("twelve"), true))
	assert.NilError(t, store.Put(ctx, treeID, 3, []byte("three"), true))

	head, err := store.HeadSeq(ctx, treeID)
	assert.NilError(t, err)
	assert.Equal(t, uint64(12), head)

	data, err := store.SnapshotRead(ctx, treeID, 3)
	assert.NilError(t, err)
	assert.Equal(t, "three", string(data))

	// a second tree's snapshots are invisible to the first
	other := c.RandomTreeID()
	assert.NilError(t, store.Put(ctx, other, 99, []byte("other"), true))
	head, err = store.HeadSeq(ctx, treeID)
	assert.NilError(t, err)
	assert.Equal(t, uint64(12), head)
}

func TestDirStorePutFailIfExists(t *testing.T) {
	c, _, _ := treetesting.NewTestContext(t, treetesting.TestConfig{Seed: 31, Depth: 3, BufferSize: 8})
	store := mirror.NewDirStore(t.TempDir())
	treeID := c.RandomTreeID()
	ctx := context.Background()

	assert.NilError(t, store.Put(ctx, treeID, 7, []byte("first"), true))
	err := store.Put(ctx, treeID, 7, []byte("second"), true)
	assert.ErrorIs(t, err, mirror.ErrSnapshotExists)

	// the losing write must not have clobbered the stored bytes
	data, err := store.SnapshotRead(ctx, treeID, 7)
	assert.NilError(t, err)
	assert.Equal(t, "first", string(data))

	// without the guard the write replaces
	assert.NilError(t, store.Put(ctx, treeID, 7, []byte("second"), false))
	data, err = store.SnapshotRead(ctx, treeID, 7)
	assert.NilError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestCommitterCommitAndLatest(t *testing.T) {
	c, _, m := treetesting.NewTestContext(t, treetesting.TestConfig{Seed: 32, Depth: 4, BufferSize: 8})
	store := mirror.NewDirStore(t.TempDir())
	committer := mirror.NewCommitter(
		mirror.CommitterConfig{TreeID: c.RandomTreeID()},
		zaptest.NewLogger(t),
		store,
	)
	ctx := context.Background()

	_, _, err := committer.Latest(ctx)
	assert.ErrorIs(t, err, mirror.ErrSnapshotNotFound)

	for i := uint32(0); i < 6; i++ {
		m.SetLeaf(i, c.RandomLeaf())
		assert.NilError(t, committer.Commit(ctx, m, uint64(i+1)))
	}

	latest, seq, err := committer.Latest(ctx)
	assert.NilError(t, err)
	assert.Equal(t, uint64(6), seq)
	assert.Equal(t, m.Root(), latest.Root())

	// committing the same seq twice is a replay and must fail
	err = committer.Commit(ctx, m, 6)
	assert.ErrorIs(t, err, mirror.ErrSnapshotExists)
}
