package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"meshguard/internal/crypto"
	"meshguard/internal/pqc"
	"meshguard/internal/protocol/hybrid"
	"meshguard/internal/services/mesh"
)

const (
	registryFile = "registry.json"
	identityFile = "identity.enc"
)

// NodeIdentity is the serialized form of a node's long-term key material.
// It only ever exists on disk inside the encrypted envelope.
type NodeIdentity struct {
	NodeID           string   `json:"node_id"`
	KEMAlgorithm     string   `json:"kem_algorithm"`
	SigAlgorithm     string   `json:"sig_algorithm"`
	ClassicalPublic  [32]byte `json:"classical_public"`
	ClassicalPrivate [32]byte `json:"classical_private"`
	PQPublic         []byte   `json:"pq_public"`
	PQPrivate        []byte   `json:"pq_private"`
	SigPublic        []byte   `json:"sig_public"`
	SigPrivate       []byte   `json:"sig_private"`
	KeyID            string   `json:"key_id"`
}

// Keys rebuilds the in-memory key pairs from the stored record.
func (n NodeIdentity) Keys() (hybrid.KeyPair, pqc.KeyPair, error) {
	kemAlg, err := pqc.ParseAlgorithm(n.KEMAlgorithm)
	if err != nil {
		return hybrid.KeyPair{}, pqc.KeyPair{}, err
	}
	sigAlg, err := pqc.ParseAlgorithm(n.SigAlgorithm)
	if err != nil {
		return hybrid.KeyPair{}, pqc.KeyPair{}, err
	}
	keys := hybrid.KeyPair{
		ClassicalPublic:  crypto.X25519Public(n.ClassicalPublic),
		ClassicalPrivate: crypto.X25519Private(n.ClassicalPrivate),
		PQ: pqc.KeyPair{
			Public:    append([]byte(nil), n.PQPublic...),
			Private:   append([]byte(nil), n.PQPrivate...),
			Algorithm: kemAlg,
			KeyID:     crypto.KeyID(n.PQPublic),
		},
		KeyID: n.KeyID,
	}
	sigKeys := pqc.KeyPair{
		Public:    append([]byte(nil), n.SigPublic...),
		Private:   append([]byte(nil), n.SigPrivate...),
		Algorithm: sigAlg,
		KeyID:     crypto.KeyID(n.SigPublic),
	}
	return keys, sigKeys, nil
}

// FileStore persists the registry snapshot and the node identity under
// one directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the directory if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

var _ mesh.SnapshotStore = (*FileStore)(nil)

// SaveRegistry writes the registry snapshot atomically.
func (s *FileStore) SaveRegistry(snap mesh.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.dir, registryFile), snap, 0o600)
}

// LoadRegistry reads the registry snapshot. A missing file is not an
// error; ok is false.
func (s *FileStore) LoadRegistry() (mesh.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap mesh.Snapshot
	found, err := readJSON(filepath.Join(s.dir, registryFile), &snap)
	if err != nil {
		return mesh.Snapshot{}, false, err
	}
	return snap, found, nil
}

// SaveNodeIdentity seals the node's key material under the passphrase.
func (s *FileStore) SaveNodeIdentity(passphrase string, id NodeIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	N, r, p := scryptParamsDefault()
	sealed, err := sealEnvelope(passphrase, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, identityFile), sealed, 0o600)
}

// LoadNodeIdentity opens the sealed key material. A missing file is not
// an error; ok is false.
func (s *FileStore) LoadNodeIdentity(passphrase string) (NodeIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(filepath.Join(s.dir, identityFile))
	if os.IsNotExist(err) {
		return NodeIdentity{}, false, nil
	}
	if err != nil {
		return NodeIdentity{}, false, err
	}
	raw, err := openEnvelope(passphrase, sealed)
	if err != nil {
		return NodeIdentity{}, false, err
	}
	var id NodeIdentity
	if err := json.Unmarshal(raw, &id); err != nil {
		return NodeIdentity{}, false, err
	}
	return id, true, nil
}
