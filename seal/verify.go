package seal

import (
	"errors"

	"github.com/veraison/go-cose"

	"github.com/merkleroll/go-merkleroll/cmt"
)

var (
	ErrSealVerifyFailed = errors.New("seal signature verification failed")
	ErrSealRootAttached = errors.New("a stored seal must not carry its root")
)

// VerifySigned checks a sealed checkpoint against the root the verifier
// read from the tree. The stored message carries the state with the root
// detached; the supplied root is re-attached and the signature verified
// over the reconstruction, so the seal only verifies for the exact root
// the signer committed to.
func VerifySigned(data []byte, verifier cose.Verifier, root cmt.Node, external []byte) (TreeState, error) {
	encMode, decMode, err := codec()
	if err != nil {
		return TreeState{}, err
	}

	var msg cose.Sign1Message
	if err = msg.UnmarshalCBOR(data); err != nil {
		return TreeState{}, err
	}

	var state TreeState
	if err = decMode.Unmarshal(msg.Payload, &state); err != nil {
		return TreeState{}, err
	}
	if state.Root != nil {
		return TreeState{}, ErrSealRootAttached
	}
	state.Root = root[:]

	if msg.Payload, err = encMode.Marshal(state); err != nil {
		return TreeState{}, err
	}
	if err = msg.Verify(external, verifier); err != nil {
		return TreeState{}, errors.Join(ErrSealVerifyFailed, err)
	}
	return state, nil
}
