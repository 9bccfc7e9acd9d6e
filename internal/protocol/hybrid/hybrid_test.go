package hybrid_test

import (
	"bytes"
	"testing"

	"meshguard/internal/pqc"
	"meshguard/internal/protocol/hybrid"
)

func newExchange(t *testing.T) *hybrid.Exchange {
	t.Helper()
	backend, err := pqc.NewBackend("ML-KEM-768", "ML-DSA-65")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return hybrid.New(backend)
}

func TestEncapsulateDecapsulate_RoundTrip(t *testing.T) {
	ex := newExchange(t)
	bob, err := ex.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	secret, ct, err := ex.Encapsulate(bob.ClassicalPublic, bob.PQ.Public)
	if err != nil {
		t.Fatalf("Encapsulate: %v", err)
	}
	if len(secret) != hybrid.SecretSize {
		t.Fatalf("secret size %d, want %d", len(secret), hybrid.SecretSize)
	}

	got, err := ex.Decapsulate(ct, bob.ClassicalPrivate, bob.PQ.Private)
	if err != nil {
		t.Fatalf("Decapsulate: %v", err)
	}
	if !bytes.Equal(secret, got) {
		t.Fatal("combined secrets differ")
	}
}

func TestEncapsulate_FreshEphemeralPerCall(t *testing.T) {
	ex := newExchange(t)
	bob, err := ex.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}

	s1, ct1, err := ex.Encapsulate(bob.ClassicalPublic, bob.PQ.Public)
	if err != nil {
		t.Fatalf("Encapsulate: %v", err)
	}
	s2, ct2, err := ex.Encapsulate(bob.ClassicalPublic, bob.PQ.Public)
	if err != nil {
		t.Fatalf("Encapsulate: %v", err)
	}
	if bytes.Equal(s1, s2) {
		t.Fatal("two encapsulations produced the same secret")
	}
	if bytes.Equal(ct1.Classical, ct2.Classical) {
		t.Fatal("ephemeral classical key reused")
	}
}

func TestDecapsulate_TamperedCiphertext(t *testing.T) {
	ex := newExchange(t)
	bob, err := ex.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	secret, ct, err := ex.Encapsulate(bob.ClassicalPublic, bob.PQ.Public)
	if err != nil {
		t.Fatalf("Encapsulate: %v", err)
	}

	// ML-KEM rejects implicitly: a tampered ciphertext decapsulates to an
	// unrelated secret rather than an error.
	ct.PQ[0] ^= 0x01
	got, err := ex.Decapsulate(ct, bob.ClassicalPrivate, bob.PQ.Private)
	if err == nil && bytes.Equal(secret, got) {
		t.Fatal("tampered ciphertext yielded the original secret")
	}
}

func TestGenerateKeyPair_DistinctKeyIDs(t *testing.T) {
	ex := newExchange(t)
	a, err := ex.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	b, err := ex.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if a.KeyID == "" || a.KeyID == b.KeyID {
		t.Fatalf("key ids not distinct: %q vs %q", a.KeyID, b.KeyID)
	}
}
