package pqc_test

import (
	"bytes"
	"errors"
	"testing"

	"meshguard/internal/domain"
	"meshguard/internal/pqc"
)

func TestParseAlgorithm_LegacyAliases(t *testing.T) {
	cases := map[string]pqc.Algorithm{
		"Kyber512":    pqc.MLKEM512,
		"Kyber768":    pqc.MLKEM768,
		"Kyber1024":   pqc.MLKEM1024,
		"Dilithium2":  pqc.MLDSA44,
		"Dilithium3":  pqc.MLDSA65,
		"Dilithium5":  pqc.MLDSA87,
		"ML-KEM-768":  pqc.MLKEM768,
		"ML-DSA-87":   pqc.MLDSA87,
	}
	for name, want := range cases {
		got, err := pqc.ParseAlgorithm(name)
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseAlgorithm(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseAlgorithm_Unknown(t *testing.T) {
	_, err := pqc.ParseAlgorithm("RSA-2048")
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewBackend_RejectsWrongKind(t *testing.T) {
	if _, err := pqc.NewBackend("ML-DSA-65", "ML-DSA-65"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("signature scheme accepted as KEM: %v", err)
	}
	if _, err := pqc.NewBackend("ML-KEM-768", "ML-KEM-768"); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("KEM accepted as signature scheme: %v", err)
	}
}

func TestKEM_RoundTrip_AllLevels(t *testing.T) {
	for _, kem := range []string{"ML-KEM-512", "ML-KEM-768", "ML-KEM-1024"} {
		b, err := pqc.NewBackend(kem, "ML-DSA-65")
		if err != nil {
			t.Fatalf("NewBackend(%s): %v", kem, err)
		}
		kp, err := b.GenerateKEMKeyPair()
		if err != nil {
			t.Fatalf("GenerateKEMKeyPair: %v", err)
		}
		if kp.KeyID == "" {
			t.Fatal("empty key id")
		}

		ss1, ct, err := b.Encapsulate(kp.Public)
		if err != nil {
			t.Fatalf("Encapsulate: %v", err)
		}
		ss2, err := b.Decapsulate(kp.Private, ct)
		if err != nil {
			t.Fatalf("Decapsulate: %v", err)
		}
		if !bytes.Equal(ss1, ss2) {
			t.Fatalf("%s: shared secrets differ", kem)
		}
	}
}

func TestSign_VerifyAndTamper(t *testing.T) {
	b, err := pqc.NewBackend("ML-KEM-768", "ML-DSA-65")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	kp, err := b.GenerateSigKeyPair()
	if err != nil {
		t.Fatalf("GenerateSigKeyPair: %v", err)
	}

	msg := []byte("mesh beacon payload")
	sig, err := b.Sign(kp.Private, msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !b.Verify(kp.Public, msg, sig) {
		t.Fatal("valid signature rejected")
	}

	sig[0] ^= 0x01
	if b.Verify(kp.Public, msg, sig) {
		t.Fatal("tampered signature accepted")
	}
	sig[0] ^= 0x01
	if b.Verify(kp.Public, []byte("other message"), sig) {
		t.Fatal("signature accepted for wrong message")
	}
}
