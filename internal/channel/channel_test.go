package channel_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"meshguard/internal/channel"
	"meshguard/internal/domain"
)

func testSecret(t *testing.T) []byte {
	t.Helper()
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return secret
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	s := channel.NewStore(nil)
	s.Establish("peer-a", testSecret(t))

	for _, pt := range [][]byte{
		[]byte("telemetry frame"),
		{},
		bytes.Repeat([]byte{0xAA}, 4096),
	} {
		sealed, err := s.Encrypt("peer-a", pt)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		got, err := s.Decrypt("peer-a", sealed)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if !bytes.Equal(pt, got) {
			t.Fatalf("round trip mismatch for %d bytes", len(pt))
		}
	}
}

func TestDecrypt_BitFlipAnywhereFails(t *testing.T) {
	s := channel.NewStore(nil)
	s.Establish("peer-a", testSecret(t))

	sealed, err := s.Encrypt("peer-a", []byte("sensor reading 42"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Nonce, ciphertext and tag regions each get one flipped bit.
	for _, idx := range []int{0, channel.NonceSize + 2, len(sealed) - 1} {
		tampered := append([]byte(nil), sealed...)
		tampered[idx] ^= 0x01
		if _, err := s.Decrypt("peer-a", tampered); !errors.Is(err, domain.ErrIntegrity) {
			t.Fatalf("flip at %d: expected ErrIntegrity, got %v", idx, err)
		}
	}
}

func TestDecrypt_TruncatedPayload(t *testing.T) {
	s := channel.NewStore(nil)
	s.Establish("peer-a", testSecret(t))

	if _, err := s.Decrypt("peer-a", make([]byte, channel.NonceSize+channel.TagSize-1)); !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for short payload, got %v", err)
	}
}

func TestUnknownPeer_NoSharedKey(t *testing.T) {
	s := channel.NewStore(nil)

	if _, err := s.Encrypt("ghost", []byte("x")); !errors.Is(err, domain.ErrNoSharedKey) {
		t.Fatalf("Encrypt: expected ErrNoSharedKey, got %v", err)
	}
	if _, err := s.Decrypt("ghost", make([]byte, 64)); !errors.Is(err, domain.ErrNoSharedKey) {
		t.Fatalf("Decrypt: expected ErrNoSharedKey, got %v", err)
	}
}

func TestEstablish_OverwritesSecret(t *testing.T) {
	s := channel.NewStore(nil)
	s.Establish("peer-a", testSecret(t))

	sealed, err := s.Encrypt("peer-a", []byte("before rekey"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	s.Establish("peer-a", testSecret(t))
	if _, err := s.Decrypt("peer-a", sealed); !errors.Is(err, domain.ErrIntegrity) {
		t.Fatalf("old ciphertext accepted after rekey: %v", err)
	}
}

func TestClose_DropsChannel(t *testing.T) {
	s := channel.NewStore(nil)
	s.Establish("peer-a", testSecret(t))
	s.Establish("peer-b", testSecret(t))

	s.Close("peer-a")
	if _, err := s.Encrypt("peer-a", []byte("x")); !errors.Is(err, domain.ErrNoSharedKey) {
		t.Fatalf("expected ErrNoSharedKey after Close, got %v", err)
	}
	if peers := s.Peers(); len(peers) != 1 || peers[0] != "peer-b" {
		t.Fatalf("unexpected peers: %v", peers)
	}
}

func TestEncrypt_NonceVariesPerCall(t *testing.T) {
	s := channel.NewStore(nil)
	s.Establish("peer-a", testSecret(t))

	a, err := s.Encrypt("peer-a", []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := s.Encrypt("peer-a", []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if bytes.Equal(a[:channel.NonceSize], b[:channel.NonceSize]) {
		t.Fatal("nonce reused across calls")
	}
}
