package pqc

import (
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/sign"

	"meshguard/internal/crypto"
	"meshguard/internal/domain"
)

// KeyPair holds one generated key pair. The private key is exclusively
// owned by the node that generated it and never leaves the process
// unencrypted.
type KeyPair struct {
	Public    []byte
	Private   []byte
	Algorithm Algorithm
	KeyID     string
}

// Backend binds one KEM and one signature scheme at construction. All
// operations are synchronous and pure with respect to their inputs.
type Backend struct {
	kemAlg Algorithm
	sigAlg Algorithm
	kem    kem.Scheme
	sig    sign.Scheme
}

// NewBackend resolves algorithm names (canonical or legacy aliases) and
// binds the provider schemes. Bad names fail with domain.ErrConfiguration;
// a provider without the scheme fails with domain.ErrBackendUnavailable.
func NewBackend(kemName, sigName string) (*Backend, error) {
	kemAlg, err := ParseAlgorithm(kemName)
	if err != nil {
		return nil, err
	}
	if !kemAlg.IsKEM() {
		return nil, fmt.Errorf("%w: %s is not a KEM", domain.ErrConfiguration, kemAlg)
	}
	sigAlg, err := ParseAlgorithm(sigName)
	if err != nil {
		return nil, err
	}
	if !sigAlg.IsSignature() {
		return nil, fmt.Errorf("%w: %s is not a signature scheme", domain.ErrConfiguration, sigAlg)
	}

	ks := kemScheme(kemAlg)
	ss := sigScheme(sigAlg)
	if ks == nil || ss == nil {
		return nil, fmt.Errorf("%w: provider lacks %s/%s", domain.ErrBackendUnavailable, kemAlg, sigAlg)
	}
	return &Backend{kemAlg: kemAlg, sigAlg: sigAlg, kem: ks, sig: ss}, nil
}

// KEMAlgorithm returns the bound KEM identifier.
func (b *Backend) KEMAlgorithm() Algorithm { return b.kemAlg }

// SigAlgorithm returns the bound signature identifier.
func (b *Backend) SigAlgorithm() Algorithm { return b.sigAlg }

// GenerateKEMKeyPair generates a key pair for key encapsulation.
func (b *Backend) GenerateKEMKeyPair() (KeyPair, error) {
	pub, priv, err := b.kem.GenerateKeyPair()
	if err != nil {
		return KeyPair{}, fmt.Errorf("kem keygen: %w", err)
	}
	pubRaw, err := pub.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("kem public marshal: %w", err)
	}
	privRaw, err := priv.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("kem private marshal: %w", err)
	}
	return KeyPair{
		Public:    pubRaw,
		Private:   privRaw,
		Algorithm: b.kemAlg,
		KeyID:     crypto.KeyID(pubRaw),
	}, nil
}

// Encapsulate produces a shared secret and a ciphertext for the holder of
// peerPublic.
func (b *Backend) Encapsulate(peerPublic []byte) (sharedSecret, ciphertext []byte, err error) {
	pub, err := b.kem.UnmarshalBinaryPublicKey(peerPublic)
	if err != nil {
		return nil, nil, fmt.Errorf("kem public unmarshal: %w", err)
	}
	ct, ss, err := b.kem.Encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulate: %w", err)
	}
	return ss, ct, nil
}

// Decapsulate recovers the shared secret from a ciphertext.
func (b *Backend) Decapsulate(private, ciphertext []byte) ([]byte, error) {
	priv, err := b.kem.UnmarshalBinaryPrivateKey(private)
	if err != nil {
		return nil, fmt.Errorf("kem private unmarshal: %w", err)
	}
	ss, err := b.kem.Decapsulate(priv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}
	return ss, nil
}

// GenerateSigKeyPair generates a signature key pair.
func (b *Backend) GenerateSigKeyPair() (KeyPair, error) {
	pub, priv, err := b.sig.GenerateKey()
	if err != nil {
		return KeyPair{}, fmt.Errorf("sig keygen: %w", err)
	}
	pubRaw, err := pub.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("sig public marshal: %w", err)
	}
	privRaw, err := priv.MarshalBinary()
	if err != nil {
		return KeyPair{}, fmt.Errorf("sig private marshal: %w", err)
	}
	return KeyPair{
		Public:    pubRaw,
		Private:   privRaw,
		Algorithm: b.sigAlg,
		KeyID:     crypto.KeyID(pubRaw),
	}, nil
}

// Sign signs message with the given private key.
func (b *Backend) Sign(private, message []byte) ([]byte, error) {
	priv, err := b.sig.UnmarshalBinaryPrivateKey(private)
	if err != nil {
		return nil, fmt.Errorf("sig private unmarshal: %w", err)
	}
	return b.sig.Sign(priv, message, nil), nil
}

// Verify reports whether signature is valid for message under public.
// Malformed keys verify as false; verification never errors.
func (b *Backend) Verify(public, message, signature []byte) bool {
	pub, err := b.sig.UnmarshalBinaryPublicKey(public)
	if err != nil {
		return false
	}
	return b.sig.Verify(pub, message, signature, nil)
}
