package seal_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"

	"github.com/merkleroll/go-merkleroll/cmt"
	"github.com/merkleroll/go-merkleroll/seal"
	"github.com/merkleroll/go-merkleroll/treetesting"
)

func newSignerVerifier(t *testing.T) (cose.Signer, cose.Verifier) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	require.NoError(t, err)
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, key.Public())
	require.NoError(t, err)
	return signer, verifier
}

func TestSignAndVerify(t *testing.T) {
	c, tr, _ := treetesting.NewTestContext(t, treetesting.TestConfig{Seed: 50, Depth: 4, BufferSize: 8})
	_, err := tr.Initialize()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = tr.Append(c.RandomLeaf())
		require.NoError(t, err)
	}
	root := tr.Root()
	treeID := c.RandomTreeID()

	signer, verifier := newSignerVerifier(t)
	rs, err := seal.NewRootSigner("seal-test")
	require.NoError(t, err)

	state := seal.TreeState{
		Seq:       tr.Seq(),
		Root:      root[:],
		Timestamp: time.Now().UnixMilli(),
		TreeID:    treeID[:],
	}
	data, err := rs.Sign1(signer, []byte("key-1"), state, nil)
	require.NoError(t, err)

	verified, err := seal.VerifySigned(data, verifier, root, nil)
	require.NoError(t, err)
	assert.Equal(t, state.Seq, verified.Seq)
	assert.Equal(t, root[:], verified.Root)
	assert.Equal(t, state.Timestamp, verified.Timestamp)
	assert.Equal(t, treeID[:], verified.TreeID)
}

func TestVerifyRejectsWrongRoot(t *testing.T) {
	c, tr, _ := treetesting.NewTestContext(t, treetesting.TestConfig{Seed: 51, Depth: 4, BufferSize: 8})
	_, err := tr.Initialize()
	require.NoError(t, err)
	_, err = tr.Append(c.RandomLeaf())
	require.NoError(t, err)
	root := tr.Root()

	signer, verifier := newSignerVerifier(t)
	rs, err := seal.NewRootSigner("seal-test")
	require.NoError(t, err)

	data, err := rs.Sign1(signer, nil, seal.TreeState{Seq: tr.Seq(), Root: root[:]}, nil)
	require.NoError(t, err)

	_, err = seal.VerifySigned(data, verifier, cmt.EmptyNode(4), nil)
	require.ErrorIs(t, err, seal.ErrSealVerifyFailed)
}

func TestStoredSealCarriesNoRoot(t *testing.T) {
	c, tr, _ := treetesting.NewTestContext(t, treetesting.TestConfig{Seed: 52, Depth: 4, BufferSize: 8})
	_, err := tr.Initialize()
	require.NoError(t, err)
	_, err = tr.Append(c.RandomLeaf())
	require.NoError(t, err)
	root := tr.Root()

	signer, _ := newSignerVerifier(t)
	rs, err := seal.NewRootSigner("seal-test")
	require.NoError(t, err)

	data, err := rs.Sign1(signer, nil, seal.TreeState{Seq: 1, Root: root[:]}, nil)
	require.NoError(t, err)

	var msg cose.Sign1Message
	require.NoError(t, msg.UnmarshalCBOR(data))
	var carried seal.TreeState
	require.NoError(t, cbor.Unmarshal(msg.Payload, &carried))
	assert.Nil(t, carried.Root)
	assert.Equal(t, uint64(1), carried.Seq)
}

func TestVerifyRejectsAttachedRoot(t *testing.T) {
	// a message whose payload still carries a root is malformed: it
	// bypasses the detached root discipline
	signer, verifier := newSignerVerifier(t)

	root := cmt.EmptyNode(4)
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	require.NoError(t, err)
	payload, err := encMode.Marshal(seal.TreeState{Seq: 1, Root: root[:]})
	require.NoError(t, err)

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: signer.Algorithm(),
			},
		},
		Payload: payload,
	}
	require.NoError(t, msg.Sign(rand.Reader, nil, signer))
	data, err := msg.MarshalCBOR()
	require.NoError(t, err)

	_, err = seal.VerifySigned(data, verifier, root, nil)
	require.ErrorIs(t, err, seal.ErrSealRootAttached)
}
