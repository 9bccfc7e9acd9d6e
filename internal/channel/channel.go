package channel

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"

	"meshguard/internal/domain"
	"meshguard/internal/util/memzero"
)

const (
	// NonceSize is generous enough that random nonces never collide within
	// a channel's lifetime.
	NonceSize = 24
	// TagSize is the keyed BLAKE3 output length.
	TagSize = 32

	tagKeyContext = "meshguard 2025-11-02 channel tag key"
)

// Store maps peer identifiers to established channel secrets. One entry
// per peer; Establish overwrites any prior entry.
type Store struct {
	mu      sync.Mutex
	secrets map[string][]byte
	logger  *slog.Logger
}

// NewStore returns an empty peer key store. A nil logger falls back to
// slog.Default().
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{secrets: make(map[string][]byte), logger: logger}
}

// Establish records the channel secret for a peer, replacing any previous
// one. The store keeps its own copy.
func (s *Store) Establish(peerID string, secret []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.secrets[peerID]; ok {
		memzero.Zero(old)
	}
	s.secrets[peerID] = append([]byte(nil), secret...)
	s.logger.Info("secure channel established", "peer", peerID)
}

// Close drops the channel for a peer, wiping the stored secret.
func (s *Store) Close(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.secrets[peerID]; ok {
		memzero.Zero(old)
		delete(s.secrets, peerID)
	}
}

// Peers returns the identifiers with an established channel.
func (s *Store) Peers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.secrets))
	for id := range s.secrets {
		out = append(out, id)
	}
	return out
}

func (s *Store) secret(peerID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.secrets[peerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSharedKey, peerID)
	}
	return append([]byte(nil), sec...), nil
}

// Encrypt seals plaintext for a peer with an established channel.
func (s *Store) Encrypt(peerID string, plaintext []byte) ([]byte, error) {
	secret, err := s.secret(peerID)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(secret)

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	ct := make([]byte, len(plaintext))
	xorKeystream(ct, plaintext, secret, nonce)

	out := make([]byte, 0, NonceSize+len(ct)+TagSize)
	out = append(out, nonce...)
	out = append(out, ct...)
	out = append(out, computeTag(secret, nonce, ct)...)
	return out, nil
}

// Decrypt opens a sealed payload from a peer. The tag is verified before
// any plaintext is derived.
func (s *Store) Decrypt(peerID string, sealed []byte) ([]byte, error) {
	secret, err := s.secret(peerID)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(secret)

	if len(sealed) < NonceSize+TagSize {
		return nil, fmt.Errorf("%w: payload too short", domain.ErrIntegrity)
	}
	nonce := sealed[:NonceSize]
	ct := sealed[NonceSize : len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	if subtle.ConstantTimeCompare(tag, computeTag(secret, nonce, ct)) != 1 {
		return nil, fmt.Errorf("%w: tag mismatch from %s", domain.ErrIntegrity, peerID)
	}
	pt := make([]byte, len(ct))
	xorKeystream(pt, ct, secret, nonce)
	return pt, nil
}

// xorKeystream XORs src with a SHAKE256 stream seeded by (secret, nonce).
func xorKeystream(dst, src, secret, nonce []byte) {
	shake := sha3.NewShake256()
	shake.Write(secret)
	shake.Write(nonce)
	stream := make([]byte, len(src))
	shake.Read(stream)
	for i := range src {
		dst[i] = src[i] ^ stream[i]
	}
	memzero.Zero(stream)
}

// computeTag returns the keyed BLAKE3 tag over nonce || ciphertext. The
// tag key is derived from the channel secret under a fixed context, so the
// keystream and the tag never share key material directly.
func computeTag(secret, nonce, ct []byte) []byte {
	tagKey := make([]byte, 32)
	blake3.DeriveKey(tagKeyContext, secret, tagKey)
	defer memzero.Zero(tagKey)

	h, err := blake3.NewKeyed(tagKey)
	if err != nil {
		// NewKeyed only fails on a wrong key length, which is impossible
		// for the fixed-size derivation above.
		panic(err)
	}
	h.Write(nonce)
	h.Write(ct)
	return h.Sum(nil)[:TagSize]
}
