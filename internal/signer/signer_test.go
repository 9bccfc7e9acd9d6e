package signer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"meshguard/internal/pqc"
	"meshguard/internal/signer"
)

func TestSignToken_VerifyRoundTrip(t *testing.T) {
	backend, err := pqc.NewBackend("ML-KEM-768", "ML-DSA-65")
	require.NoError(t, err)
	s, err := signer.New(backend)
	require.NoError(t, err)

	signed, err := s.SignToken("join_abc123", "mesh-1")
	require.NoError(t, err)
	require.Equal(t, "join_abc123", signed.Token)
	require.Equal(t, "ML-DSA-65", signed.Algorithm)
	require.NotEmpty(t, signed.Signature)

	require.True(t, s.Verify(signed, "mesh-1", s.PublicKey()))
}

func TestVerify_RejectsWrongMeshAndTamper(t *testing.T) {
	backend, err := pqc.NewBackend("ML-KEM-768", "ML-DSA-65")
	require.NoError(t, err)
	s, err := signer.New(backend)
	require.NoError(t, err)

	signed, err := s.SignToken("join_abc123", "mesh-1")
	require.NoError(t, err)

	// The mesh id is part of the signed payload.
	require.False(t, s.Verify(signed, "mesh-2", s.PublicKey()))

	tampered := signed
	tampered.Token = "join_other"
	require.False(t, s.Verify(tampered, "mesh-1", s.PublicKey()))

	garbled := signed
	garbled.Signature = "zz" + signed.Signature[2:]
	require.False(t, s.Verify(garbled, "mesh-1", s.PublicKey()))
}

func TestVerify_RejectsForeignKey(t *testing.T) {
	backend, err := pqc.NewBackend("ML-KEM-768", "ML-DSA-65")
	require.NoError(t, err)
	a, err := signer.New(backend)
	require.NoError(t, err)
	b, err := signer.New(backend)
	require.NoError(t, err)

	signed, err := a.SignToken("tok", "mesh-1")
	require.NoError(t, err)
	require.False(t, a.Verify(signed, "mesh-1", b.PublicKey()))
}
