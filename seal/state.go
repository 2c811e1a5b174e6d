// Package seal produces and verifies signed checkpoints of a concurrent
// merkle tree's state.
//
// A checkpoint is a COSE Sign1 message over the CBOR encoding of
// TreeState. Publishing one commits the signer to the tree's root at a
// specific point on its mutation clock: any later attempt to rewrite
// history has to contradict a checkpoint that cannot be re-signed. The
// root is detached from the published payload so verifiers are forced to
// obtain it from the tree (or its mirror) rather than trusting the
// checkpoint alone.
package seal

import (
	"github.com/fxamacker/cbor/v2"
)

// TreeState is the signed payload: where the tree's mutation clock stood
// and the root it had there.
type TreeState struct {
	// Seq is the tree's sequence number at the time of sealing. Roots
	// can repeat (set a leaf back to its old value); the clock cannot.
	Seq  uint64 `cbor:"1,keyasint"`
	Root []byte `cbor:"2,keyasint,omitempty"`
	// Timestamp is unix milliseconds read when the seal was produced,
	// allowing the same (Seq, Root) to be re-sealed distinguishably.
	Timestamp int64 `cbor:"3,keyasint"`
	// TreeID identifies which tree this state belongs to, typically the
	// mirror's tree identity.
	TreeID []byte `cbor:"4,keyasint,omitempty"`
}

// codec returns the deterministic CBOR modes used for the signed
// payload. Determinism matters: verification re-encodes the state to
// reattach the detached root, and that encoding must reproduce the
// signed bytes exactly.
func codec() (cbor.EncMode, cbor.DecMode, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, nil, err
	}
	decMode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, nil, err
	}
	return encMode, decMode, nil
}
