package identity

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"

	"meshguard/internal/channel"
	"meshguard/internal/crypto"
	"meshguard/internal/domain"
	"meshguard/internal/pqc"
	"meshguard/internal/protocol/hybrid"
)

// Service is one node's mesh-security instance.
type Service struct {
	nodeID   string
	backend  *pqc.Backend
	exchange *hybrid.Exchange

	keys    hybrid.KeyPair
	sigKeys pqc.KeyPair

	channels *channel.Store
	logger   *slog.Logger
}

// New generates fresh long-term key material on the given backend.
func New(nodeID string, backend *pqc.Backend, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ex := hybrid.New(backend)
	keys, err := ex.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("hybrid keygen: %w", err)
	}
	sigKeys, err := backend.GenerateSigKeyPair()
	if err != nil {
		return nil, fmt.Errorf("sig keygen: %w", err)
	}
	logger.Info("node identity ready",
		"node", nodeID,
		"kem", backend.KEMAlgorithm().String(),
		"sig", backend.SigAlgorithm().String(),
		"key_id", keys.KeyID,
	)
	return &Service{
		nodeID:   nodeID,
		backend:  backend,
		exchange: ex,
		keys:     keys,
		sigKeys:  sigKeys,
		channels: channel.NewStore(logger),
		logger:   logger,
	}, nil
}

// Restore rebuilds a Service from previously stored key material.
func Restore(nodeID string, backend *pqc.Backend, keys hybrid.KeyPair, sigKeys pqc.KeyPair, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		nodeID:   nodeID,
		backend:  backend,
		exchange: hybrid.New(backend),
		keys:     keys,
		sigKeys:  sigKeys,
		channels: channel.NewStore(logger),
		logger:   logger,
	}
}

// NodeID returns the owning node's identifier.
func (s *Service) NodeID() string { return s.nodeID }

// Keys returns the node's long-term hybrid key pair for persistence.
func (s *Service) Keys() hybrid.KeyPair { return s.keys }

// SigKeys returns the node's beacon-signing key pair for persistence.
func (s *Service) SigKeys() pqc.KeyPair { return s.sigKeys }

// PublicKeys exports the node's advertised key material.
func (s *Service) PublicKeys() domain.PublicKeySet {
	return domain.PublicKeySet{
		NodeID:          s.nodeID,
		KEMPublicKey:    hex.EncodeToString(s.keys.PQ.Public),
		SigPublicKey:    hex.EncodeToString(s.sigKeys.Public),
		ClassicalPublic: hex.EncodeToString(s.keys.ClassicalPublic.Slice()),
		KEMAlgorithm:    s.backend.KEMAlgorithm().String(),
		SigAlgorithm:    s.backend.SigAlgorithm().String(),
		KeyID:           s.keys.KeyID,
	}
}

// EstablishChannel encapsulates against a peer's advertised keys and
// stores the resulting secret, overwriting any prior entry for that peer.
// The returned ciphertext is for delivery to the peer; the secret is also
// returned per the channel contract and must never be logged or persisted.
func (s *Service) EstablishChannel(peerID string, peer domain.PublicKeySet) ([]byte, hybrid.Ciphertext, error) {
	pqPub, err := hex.DecodeString(peer.KEMPublicKey)
	if err != nil {
		return nil, hybrid.Ciphertext{}, fmt.Errorf("%w: kem public key of %s", domain.ErrInvalidCredential, peerID)
	}
	classicalRaw, err := hex.DecodeString(peer.ClassicalPublic)
	if err != nil {
		return nil, hybrid.Ciphertext{}, fmt.Errorf("%w: classical public key of %s", domain.ErrInvalidCredential, peerID)
	}
	classical, err := crypto.X25519PublicFromBytes(classicalRaw)
	if err != nil {
		return nil, hybrid.Ciphertext{}, fmt.Errorf("%w: classical public key of %s", domain.ErrInvalidCredential, peerID)
	}

	secret, ct, err := s.exchange.Encapsulate(classical, pqPub)
	if err != nil {
		return nil, hybrid.Ciphertext{}, err
	}
	s.channels.Establish(peerID, secret)
	return secret, ct, nil
}

// AcceptChannel is the responder side: it decapsulates a peer's hybrid
// ciphertext with our long-term keys and stores the shared secret.
func (s *Service) AcceptChannel(peerID string, ct hybrid.Ciphertext) ([]byte, error) {
	secret, err := s.exchange.Decapsulate(ct, s.keys.ClassicalPrivate, s.keys.PQ.Private)
	if err != nil {
		return nil, err
	}
	s.channels.Establish(peerID, secret)
	return secret, nil
}

// CloseChannel drops the channel with a peer, e.g. after an integrity
// failure forces re-establishment.
func (s *Service) CloseChannel(peerID string) { s.channels.Close(peerID) }

// EncryptForPeer seals plaintext for a peer with an established channel.
func (s *Service) EncryptForPeer(peerID string, plaintext []byte) ([]byte, error) {
	return s.channels.Encrypt(peerID, plaintext)
}

// DecryptFromPeer opens a sealed payload from a peer.
func (s *Service) DecryptFromPeer(peerID string, sealed []byte) ([]byte, error) {
	return s.channels.Decrypt(peerID, sealed)
}

// Beacon is a signed liveness announcement.
type Beacon struct {
	NodeID    string `cbor:"1,keyasint"`
	Sequence  uint64 `cbor:"2,keyasint"`
	Timestamp int64  `cbor:"3,keyasint"`
	Payload   []byte `cbor:"4,keyasint,omitempty"`
}

// NewBeacon builds a beacon for this node with the current time.
func (s *Service) NewBeacon(sequence uint64, payload []byte) Beacon {
	return Beacon{
		NodeID:    s.nodeID,
		Sequence:  sequence,
		Timestamp: time.Now().Unix(),
		Payload:   payload,
	}
}

// SignBeacon signs raw beacon data with the node's ML-DSA key.
func (s *Service) SignBeacon(data []byte) ([]byte, error) {
	return s.backend.Sign(s.sigKeys.Private, data)
}

// VerifyBeacon checks a peer's signature over beacon data.
func (s *Service) VerifyBeacon(data, sig, peerSigPublic []byte) bool {
	return s.backend.Verify(peerSigPublic, data, sig)
}

// EncodeBeacon serializes a beacon for signing or transport.
func EncodeBeacon(b Beacon) ([]byte, error) {
	return cbor.Marshal(b)
}

// DecodeBeacon parses a serialized beacon.
func DecodeBeacon(data []byte) (Beacon, error) {
	var b Beacon
	if err := cbor.Unmarshal(data, &b); err != nil {
		return Beacon{}, fmt.Errorf("beacon decode: %w", err)
	}
	return b, nil
}
