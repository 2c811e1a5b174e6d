package seal

import (
	"crypto/rand"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

// RootSigner seals tree states on behalf of one issuer. The signature
// commits the issuer to the sealed state; produce a seal only after
// checking the state is consistent with the previously sealed one.
type RootSigner struct {
	issuer  string
	encMode cbor.EncMode
}

// HeaderLabelIssuer is the protected header carrying the sealing
// identity, in the CWT claims style.
const HeaderLabelIssuer = int64(391)

func NewRootSigner(issuer string) (RootSigner, error) {
	encMode, _, err := codec()
	if err != nil {
		return RootSigner{}, err
	}
	return RootSigner{issuer: issuer, encMode: encMode}, nil
}

// Sign1 seals state, returning the CBOR encoded COSE Sign1 message. The
// signature is produced over the full state, after which the root is
// purposefully detached from the carried payload: verifiers must fetch
// the root from the log itself and supply it to VerifySigned.
func (rs RootSigner) Sign1(signer cose.Signer, keyID []byte, state TreeState, external []byte) ([]byte, error) {
	payload, err := rs.encMode.Marshal(state)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: signer.Algorithm(),
				HeaderLabelIssuer:         rs.issuer,
			},
			Unprotected: cose.UnprotectedHeader{
				cose.HeaderLabelKeyID: keyID,
			},
		},
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, signer); err != nil {
		return nil, err
	}

	state.Root = nil
	if msg.Payload, err = rs.encMode.Marshal(state); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}
