package mesh

import (
	"meshguard/internal/domain"
)

// Snapshot is the registry's durable form. Everything in it is a deep
// copy; loading one never aliases live service state.
type Snapshot struct {
	Meshes []MeshSnapshot `json:"meshes"`
}

// MeshSnapshot captures one mesh's full registry state.
type MeshSnapshot struct {
	Mesh     domain.Mesh           `json:"mesh"`
	Approved []domain.MeshNode     `json:"approved"`
	Pending  []domain.MeshNode     `json:"pending"`
	Revoked  []domain.Tombstone    `json:"revoked"`
	Tokens   []domain.ReissueToken `json:"tokens"`
	Policies []domain.ACLPolicy    `json:"policies"`
}

// SnapshotStore persists registry snapshots between process runs.
type SnapshotStore interface {
	SaveRegistry(Snapshot) error
	LoadRegistry() (Snapshot, bool, error)
}

// snapshotLocked copies the registry into a Snapshot. Callers hold s.mu.
func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{Meshes: make([]MeshSnapshot, 0, len(s.meshes))}
	for _, ms := range s.meshes {
		m := MeshSnapshot{Mesh: ms.mesh}
		for _, n := range ms.approved {
			m.Approved = append(m.Approved, copyNode(n))
		}
		for _, n := range ms.pending {
			m.Pending = append(m.Pending, copyNode(n))
		}
		for _, t := range ms.revoked {
			tomb := *t
			tomb.Tags = append([]string(nil), t.Tags...)
			m.Revoked = append(m.Revoked, tomb)
		}
		for _, tok := range ms.tokens {
			m.Tokens = append(m.Tokens, *tok)
		}
		m.Policies = append(m.Policies, ms.policies...)
		snap.Meshes = append(snap.Meshes, m)
	}
	return snap
}

// restore rebuilds the in-memory registry from a snapshot. Only called
// from New, before the service is shared.
func (s *Service) restore(snap Snapshot) {
	for _, m := range snap.Meshes {
		ms := &meshState{
			mesh:     m.Mesh,
			approved: make(map[domain.NodeID]*domain.MeshNode, len(m.Approved)),
			pending:  make(map[domain.NodeID]*domain.MeshNode, len(m.Pending)),
			revoked:  make(map[domain.NodeID]*domain.Tombstone, len(m.Revoked)),
			tokens:   make(map[string]*domain.ReissueToken, len(m.Tokens)),
			policies: append([]domain.ACLPolicy(nil), m.Policies...),
		}
		for i := range m.Approved {
			n := m.Approved[i]
			ms.approved[n.ID] = &n
		}
		for i := range m.Pending {
			n := m.Pending[i]
			ms.pending[n.ID] = &n
		}
		for i := range m.Revoked {
			t := m.Revoked[i]
			ms.revoked[t.NodeID] = &t
		}
		for i := range m.Tokens {
			t := m.Tokens[i]
			ms.tokens[t.Token] = &t
		}
		s.meshes[m.Mesh.ID] = ms
	}
}

func copyNode(n *domain.MeshNode) domain.MeshNode {
	out := *n
	out.Tags = append([]string(nil), n.Tags...)
	return out
}
