// Package signer binds issued credentials to a verifiable origin by
// signing them with the mesh control plane's ML-DSA key.
package signer

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"meshguard/internal/domain"
	"meshguard/internal/pqc"
)

// tokenPayload is the canonical signing input. CBOR keeps the encoding
// deterministic across processes.
type tokenPayload struct {
	Token  string `cbor:"1,keyasint"`
	MeshID string `cbor:"2,keyasint"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// PQSigner signs tokens with a dedicated ML-DSA key pair.
type PQSigner struct {
	backend *pqc.Backend
	key     pqc.KeyPair
}

// New generates the signing key pair on the given backend.
func New(backend *pqc.Backend) (*PQSigner, error) {
	key, err := backend.GenerateSigKeyPair()
	if err != nil {
		return nil, fmt.Errorf("signer keygen: %w", err)
	}
	return &PQSigner{backend: backend, key: key}, nil
}

// PublicKey returns the verification key for distribution to nodes.
func (s *PQSigner) PublicKey() []byte {
	return append([]byte(nil), s.key.Public...)
}

// SignToken implements domain.TokenSigner.
func (s *PQSigner) SignToken(token string, meshID domain.MeshID) (domain.SignedToken, error) {
	payload, err := encMode.Marshal(tokenPayload{Token: token, MeshID: meshID.String()})
	if err != nil {
		return domain.SignedToken{}, fmt.Errorf("token payload: %w", err)
	}
	sig, err := s.backend.Sign(s.key.Private, payload)
	if err != nil {
		return domain.SignedToken{}, fmt.Errorf("token sign: %w", err)
	}
	return domain.SignedToken{
		Token:     token,
		Signature: hex.EncodeToString(sig),
		Algorithm: s.key.Algorithm.String(),
	}, nil
}

// Verify checks a signed token against a verification key.
func (s *PQSigner) Verify(st domain.SignedToken, meshID domain.MeshID, public []byte) bool {
	payload, err := encMode.Marshal(tokenPayload{Token: st.Token, MeshID: meshID.String()})
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(st.Signature)
	if err != nil {
		return false
	}
	return s.backend.Verify(public, payload, sig)
}

var _ domain.TokenSigner = (*PQSigner)(nil)
