package app

import (
	"strings"

	"github.com/google/uuid"

	identitysvc "meshguard/internal/services/identity"
	"meshguard/internal/store"
)

// OpenNodeIdentity loads the sealed node identity from the store, or
// generates and seals a fresh one when none exists yet. A stored identity
// keeps its original node ID; nodeID only seeds a fresh one.
func (w *Wire) OpenNodeIdentity(nodeID, passphrase string) (*identitysvc.Service, error) {
	rec, ok, err := w.Store.LoadNodeIdentity(passphrase)
	if err != nil {
		return nil, err
	}
	if ok {
		keys, sigKeys, err := rec.Keys()
		if err != nil {
			return nil, err
		}
		return identitysvc.Restore(rec.NodeID, w.Backend, keys, sigKeys, w.Logger), nil
	}

	if nodeID == "" {
		nodeID = "node-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	svc, err := identitysvc.New(nodeID, w.Backend, w.Logger)
	if err != nil {
		return nil, err
	}
	keys := svc.Keys()
	sigKeys := svc.SigKeys()
	rec = store.NodeIdentity{
		NodeID:           svc.NodeID(),
		KEMAlgorithm:     w.Backend.KEMAlgorithm().String(),
		SigAlgorithm:     w.Backend.SigAlgorithm().String(),
		ClassicalPublic:  [32]byte(keys.ClassicalPublic),
		ClassicalPrivate: [32]byte(keys.ClassicalPrivate),
		PQPublic:         keys.PQ.Public,
		PQPrivate:        keys.PQ.Private,
		SigPublic:        sigKeys.Public,
		SigPrivate:       sigKeys.Private,
		KeyID:            keys.KeyID,
	}
	if err := w.Store.SaveNodeIdentity(passphrase, rec); err != nil {
		return nil, err
	}
	return svc, nil
}
