package cmt

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLeaf(rng *rand.Rand) Node {
	var n Node
	rng.Read(n[:])
	return n
}

func TestMarshalRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tr, err := New(4, 8)
	require.NoError(t, err)
	_, err = tr.Initialize()
	require.NoError(t, err)
	for i := 0; i < 11; i++ {
		_, err = tr.Append(testLeaf(rng))
		require.NoError(t, err)
	}

	data, err := tr.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, SerializedSize(4, 8), len(data))

	var restored ConcurrentMerkleTree
	require.NoError(t, restored.UnmarshalBinary(data))
	require.Equal(t, tr, &restored)

	// the restored tree accepts further mutations
	root, err := restored.Append(testLeaf(rng))
	require.NoError(t, err)
	want, err := tr.Append(testLeaf(rng))
	require.NoError(t, err)
	require.Equal(t, want, root)
}

func TestMarshalRoundTripUninitialized(t *testing.T) {
	tr, err := New(3, 2)
	require.NoError(t, err)
	data, err := tr.MarshalBinary()
	require.NoError(t, err)

	var restored ConcurrentMerkleTree
	require.NoError(t, restored.UnmarshalBinary(data))
	require.False(t, restored.IsInitialized())
	require.Equal(t, tr, &restored)
}

func TestUnmarshalRejectsBadData(t *testing.T) {
	tr, err := New(4, 8)
	require.NoError(t, err)
	_, err = tr.Initialize()
	require.NoError(t, err)
	good, err := tr.MarshalBinary()
	require.NoError(t, err)

	corrupt := func(mutate func(data []byte)) error {
		data := append([]byte(nil), good...)
		mutate(data)
		var restored ConcurrentMerkleTree
		return restored.UnmarshalBinary(data)
	}

	var restored ConcurrentMerkleTree
	assert.ErrorIs(t, restored.UnmarshalBinary(good[:16]), ErrStartHeaderMissing)
	assert.ErrorIs(t, restored.UnmarshalBinary(good[:100]), ErrDataLengthMismatch)

	assert.ErrorIs(t, corrupt(func(data []byte) {
		binary.BigEndian.PutUint16(data[:2], 7)
	}), ErrUnsupportedVersion)

	assert.ErrorIs(t, corrupt(func(data []byte) {
		data[headerDepthByte] = 0
	}), ErrDepthOutOfRange)
	assert.ErrorIs(t, corrupt(func(data []byte) {
		data[headerDepthByte] = 31
	}), ErrDepthOutOfRange)

	assert.ErrorIs(t, corrupt(func(data []byte) {
		binary.BigEndian.PutUint32(data[headerBufferCapFirstByte:], 6)
	}), ErrBufferSizeNotPowerOfTwo)

	assert.ErrorIs(t, corrupt(func(data []byte) {
		binary.BigEndian.PutUint64(data[headerActiveFirstByte:], 8)
	}), ErrCountersInvalid)
	assert.ErrorIs(t, corrupt(func(data []byte) {
		binary.BigEndian.PutUint64(data[headerCountFirstByte:], 9)
	}), ErrCountersInvalid)

	// rightmost index beyond the leaf capacity, in the trailing record
	assert.ErrorIs(t, corrupt(func(data []byte) {
		binary.BigEndian.PutUint32(data[len(data)-indexSize:], 17)
	}), ErrCountersInvalid)
}

func TestSerializedSize(t *testing.T) {
	// header + 8 changelogs of (root + 4 path nodes + index) + rightmost
	// (4 proof nodes + leaf + index)
	want := 32 + 8*(32+4*32+4) + (4*32 + 32 + 4)
	require.Equal(t, want, SerializedSize(4, 8))
}
