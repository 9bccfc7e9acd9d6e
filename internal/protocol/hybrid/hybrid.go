package hybrid

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"meshguard/internal/crypto"
	"meshguard/internal/pqc"
	"meshguard/internal/util/memzero"
)

// SecretSize is the length of every derived secret.
const SecretSize = 32

// HKDF labels. The classical and combined derivations use distinct info
// strings so the two stages can never be confused.
var (
	infoClassical = []byte("meshguard-classical-secret")
	infoCombined  = []byte("meshguard-combined-secret")
)

// KeyPair is a classical and a PQC key pair under one logical identity,
// joined by a single key_id over both public keys.
type KeyPair struct {
	ClassicalPublic  crypto.X25519Public
	ClassicalPrivate crypto.X25519Private
	PQ               pqc.KeyPair
	KeyID            string
}

// Ciphertext carries both halves of one encapsulation. The combined secret
// derived from it must never be logged or persisted.
type Ciphertext struct {
	// Classical is the encapsulator's ephemeral X25519 public key.
	Classical []byte `json:"classical_ciphertext"`
	// PQ is the ML-KEM ciphertext.
	PQ []byte `json:"pq_ciphertext"`
}

// Exchange performs hybrid encapsulation over a bound PQC backend.
type Exchange struct {
	backend *pqc.Backend
}

// New returns an Exchange over the given backend.
func New(backend *pqc.Backend) *Exchange { return &Exchange{backend: backend} }

// GenerateKeyPair produces both halves of a hybrid identity.
func (e *Exchange) GenerateKeyPair() (KeyPair, error) {
	pq, err := e.backend.GenerateKEMKeyPair()
	if err != nil {
		return KeyPair{}, err
	}
	cPriv, cPub, err := crypto.GenerateX25519()
	if err != nil {
		return KeyPair{}, fmt.Errorf("classical keygen: %w", err)
	}
	joined := append(append([]byte(nil), cPub.Slice()...), pq.Public...)
	return KeyPair{
		ClassicalPublic:  cPub,
		ClassicalPrivate: cPriv,
		PQ:               pq,
		KeyID:            crypto.KeyID(joined),
	}, nil
}

// Encapsulate derives a combined secret for the peer identified by its
// classical and PQC public keys. The ephemeral classical key is consumed
// inside this call and wiped before return.
func (e *Exchange) Encapsulate(peerClassical crypto.X25519Public, peerPQ []byte) ([]byte, Ciphertext, error) {
	pqSecret, pqCT, err := e.backend.Encapsulate(peerPQ)
	if err != nil {
		return nil, Ciphertext{}, err
	}
	defer memzero.Zero(pqSecret)

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, Ciphertext{}, fmt.Errorf("ephemeral keygen: %w", err)
	}
	dh, err := crypto.DH(ephPriv, peerClassical)
	memzero.Zero(ephPriv.Slice())
	if err != nil {
		return nil, Ciphertext{}, fmt.Errorf("classical exchange: %w", err)
	}

	combined, err := combine(pqSecret, dh[:])
	memzero.Zero(dh[:])
	if err != nil {
		return nil, Ciphertext{}, err
	}
	ct := Ciphertext{
		Classical: append([]byte(nil), ephPub.Slice()...),
		PQ:        pqCT,
	}
	return combined, ct, nil
}

// Decapsulate recovers the combined secret from a hybrid ciphertext using
// the recipient's long-term private keys.
func (e *Exchange) Decapsulate(ct Ciphertext, classicalPriv crypto.X25519Private, pqPriv []byte) ([]byte, error) {
	pqSecret, err := e.backend.Decapsulate(pqPriv, ct.PQ)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(pqSecret)

	ephPub, err := crypto.X25519PublicFromBytes(ct.Classical)
	if err != nil {
		return nil, fmt.Errorf("classical ciphertext: %w", err)
	}
	dh, err := crypto.DH(classicalPriv, ephPub)
	if err != nil {
		return nil, fmt.Errorf("classical exchange: %w", err)
	}
	combined, err := combine(pqSecret, dh[:])
	memzero.Zero(dh[:])
	return combined, err
}

// combine derives the channel secret from both half-secrets. The classical
// half is first stretched under its own label, then both halves feed the
// combined derivation.
func combine(pqSecret, rawClassical []byte) ([]byte, error) {
	classical := make([]byte, SecretSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, rawClassical, nil, infoClassical), classical); err != nil {
		return nil, fmt.Errorf("classical kdf: %w", err)
	}
	defer memzero.Zero(classical)

	ikm := append(append([]byte(nil), pqSecret...), classical...)
	defer memzero.Zero(ikm)

	combined := make([]byte, SecretSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, nil, infoCombined), combined); err != nil {
		return nil, fmt.Errorf("combined kdf: %w", err)
	}
	return combined, nil
}
