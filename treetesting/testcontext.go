// Package treetesting provides shared setup for tests exercising the
// concurrent tree against its mirror.
package treetesting

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/merkleroll/go-merkleroll/cmt"
	"github.com/merkleroll/go-merkleroll/mirror"
)

type TestContext struct {
	T   *testing.T
	Log *zap.Logger
	Rng *rand.Rand
}

type TestConfig struct {
	// Seed fixes the RNG so that generated leaves are the same from run
	// to run.
	Seed       int64
	Depth      int
	BufferSize int
}

// NewTestContext builds a concurrent tree and a matching all-empty
// mirror, both of cfg.Depth.
func NewTestContext(t *testing.T, cfg TestConfig) (TestContext, *cmt.ConcurrentMerkleTree, *mirror.Tree) {
	c := TestContext{
		T:   t,
		Log: zaptest.NewLogger(t),
		Rng: rand.New(rand.NewSource(cfg.Seed)),
	}
	tree, err := cmt.New(cfg.Depth, cfg.BufferSize)
	require.NoError(t, err)
	return c, tree, mirror.New(cfg.Depth)
}

// RandomLeaf returns a pseudo random non-empty leaf.
func (c *TestContext) RandomLeaf() cmt.Node {
	var n cmt.Node
	c.Rng.Read(n[:])
	return n
}

func (c *TestContext) RandomLeaves(count int) []cmt.Node {
	leaves := make([]cmt.Node, count)
	for i := range leaves {
		leaves[i] = c.RandomLeaf()
	}
	return leaves
}

// RandomTreeID returns a tree identity drawn from the seeded RNG so
// store layouts are reproducible across runs.
func (c *TestContext) RandomTreeID() uuid.UUID {
	id, err := uuid.NewRandomFromReader(c.Rng)
	require.NoError(c.T, err)
	return id
}
