package crypto_test

import (
	"testing"

	"meshguard/internal/crypto"
)

func TestDH_SharedSecretAgrees(t *testing.T) {
	aPriv, aPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	bPriv, bPub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}

	ab, err := crypto.DH(aPriv, bPub)
	if err != nil {
		t.Fatalf("DH: %v", err)
	}
	ba, err := crypto.DH(bPriv, aPub)
	if err != nil {
		t.Fatalf("DH: %v", err)
	}
	if ab != ba {
		t.Fatal("shared secrets disagree")
	}
}

func TestGenerateX25519_ClampsPrivate(t *testing.T) {
	priv, _, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	if priv[0]&7 != 0 {
		t.Fatal("low bits not cleared")
	}
	if priv[31]&128 != 0 || priv[31]&64 == 0 {
		t.Fatal("high bits not clamped")
	}
}

func TestX25519PublicFromBytes_Length(t *testing.T) {
	if _, err := crypto.X25519PublicFromBytes(make([]byte, 31)); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := crypto.X25519PublicFromBytes(make([]byte, 32)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKeyID_StableAndDistinct(t *testing.T) {
	a := crypto.KeyID([]byte("public key material"))
	if a != crypto.KeyID([]byte("public key material")) {
		t.Fatal("key id not deterministic")
	}
	if len(a) != 32 {
		t.Fatalf("key id length %d, want 32 hex chars", len(a))
	}
	if a == crypto.KeyID([]byte("other material")) {
		t.Fatal("distinct inputs collided")
	}
}
