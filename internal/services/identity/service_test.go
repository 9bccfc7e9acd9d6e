package identity_test

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"meshguard/internal/domain"
	"meshguard/internal/pqc"
	identitysvc "meshguard/internal/services/identity"
)

func newNode(t *testing.T, nodeID string) *identitysvc.Service {
	t.Helper()
	backend, err := pqc.NewBackend("ML-KEM-768", "ML-DSA-65")
	require.NoError(t, err)
	svc, err := identitysvc.New(nodeID, backend, nil)
	require.NoError(t, err)
	return svc
}

func TestPublicKeys_Exported(t *testing.T) {
	svc := newNode(t, "node-a")
	keys := svc.PublicKeys()

	require.Equal(t, "node-a", keys.NodeID)
	require.Equal(t, "ML-KEM-768", keys.KEMAlgorithm)
	require.Equal(t, "ML-DSA-65", keys.SigAlgorithm)
	require.NotEmpty(t, keys.KeyID)

	for _, enc := range []string{keys.KEMPublicKey, keys.SigPublicKey, keys.ClassicalPublic} {
		raw, err := hex.DecodeString(enc)
		require.NoError(t, err)
		require.NotEmpty(t, raw)
	}
}

func TestChannel_TwoNodeRoundTrip(t *testing.T) {
	alice := newNode(t, "node-alice")
	bob := newNode(t, "node-bob")

	secretA, ct, err := alice.EstablishChannel("node-bob", bob.PublicKeys())
	require.NoError(t, err)
	secretB, err := bob.AcceptChannel("node-alice", ct)
	require.NoError(t, err)
	require.True(t, bytes.Equal(secretA, secretB))

	sealed, err := alice.EncryptForPeer("node-bob", []byte("route update"))
	require.NoError(t, err)
	pt, err := bob.DecryptFromPeer("node-alice", sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("route update"), pt)

	// And the reverse direction over the same secret.
	sealed, err = bob.EncryptForPeer("node-alice", []byte("ack"))
	require.NoError(t, err)
	pt, err = alice.DecryptFromPeer("node-bob", sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("ack"), pt)
}

func TestChannel_CloseForcesReestablish(t *testing.T) {
	alice := newNode(t, "node-alice")
	bob := newNode(t, "node-bob")

	_, ct, err := alice.EstablishChannel("node-bob", bob.PublicKeys())
	require.NoError(t, err)
	_, err = bob.AcceptChannel("node-alice", ct)
	require.NoError(t, err)

	alice.CloseChannel("node-bob")
	_, err = alice.EncryptForPeer("node-bob", []byte("x"))
	require.True(t, errors.Is(err, domain.ErrNoSharedKey))
}

func TestChannel_BadPeerKeysRejected(t *testing.T) {
	alice := newNode(t, "node-alice")
	peer := alice.PublicKeys()
	peer.ClassicalPublic = "not hex"

	_, _, err := alice.EstablishChannel("node-x", peer)
	require.True(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestBeacon_SignVerifyAndTamper(t *testing.T) {
	alice := newNode(t, "node-alice")
	bob := newNode(t, "node-bob")

	b := alice.NewBeacon(7, []byte("pos=3,4"))
	data, err := identitysvc.EncodeBeacon(b)
	require.NoError(t, err)
	sig, err := alice.SignBeacon(data)
	require.NoError(t, err)

	alicePub, err := hex.DecodeString(alice.PublicKeys().SigPublicKey)
	require.NoError(t, err)
	require.True(t, bob.VerifyBeacon(data, sig, alicePub))

	tampered := append([]byte(nil), data...)
	tampered[len(tampered)-1] ^= 0x01
	require.False(t, bob.VerifyBeacon(tampered, sig, alicePub))

	decoded, err := identitysvc.DecodeBeacon(data)
	require.NoError(t, err)
	require.Equal(t, b, decoded)
}
