package mesh

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"meshguard/internal/acl"
	"meshguard/internal/domain"
)

// ListPending returns the nodes awaiting approval, oldest request first.
func (s *Service) ListPending(meshID domain.MeshID) ([]domain.MeshNode, error) {
	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	out := make([]domain.MeshNode, 0, len(ms.pending))
	for _, n := range ms.pending {
		out = append(out, *n)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out, nil
}

// NodeList is the unified node view: approved, pending and revoked
// together, with counts by status.
type NodeList struct {
	Nodes    []NodeSummary             `json:"nodes"`
	ByStatus map[domain.LifecycleState]int `json:"by_status"`
}

// NodeSummary is one row of the unified node view.
type NodeSummary struct {
	NodeID      domain.NodeID         `json:"node_id"`
	State       domain.LifecycleState `json:"state"`
	DeviceClass domain.DeviceClass    `json:"device_class"`
	Profile     domain.ACLProfile     `json:"acl_profile,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Reason      string                `json:"reason,omitempty"`
}

// ListNodes returns all nodes, optionally filtered to one state.
func (s *Service) ListNodes(meshID domain.MeshID, filter domain.LifecycleState) (NodeList, error) {
	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return NodeList{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	list := NodeList{ByStatus: make(map[domain.LifecycleState]int)}
	for _, n := range ms.approved {
		list.Nodes = append(list.Nodes, NodeSummary{
			NodeID: n.ID, State: domain.StateApproved, DeviceClass: n.DeviceClass,
			Profile: n.Profile, Tags: append([]string(nil), n.Tags...),
		})
	}
	for _, n := range ms.pending {
		list.Nodes = append(list.Nodes, NodeSummary{
			NodeID: n.ID, State: domain.StatePending, DeviceClass: n.DeviceClass,
			Tags: append([]string(nil), n.Tags...),
		})
	}
	for _, t := range ms.revoked {
		list.Nodes = append(list.Nodes, NodeSummary{
			NodeID: t.NodeID, State: domain.StateRevoked, DeviceClass: t.DeviceClass,
			Profile: t.Profile, Tags: append([]string(nil), t.Tags...), Reason: t.Reason,
		})
	}
	s.mu.Unlock()

	for _, n := range list.Nodes {
		list.ByStatus[n.State]++
	}
	if filter != "" {
		kept := list.Nodes[:0]
		for _, n := range list.Nodes {
			if n.State == filter {
				kept = append(kept, n)
			}
		}
		list.Nodes = kept
	}
	sort.Slice(list.Nodes, func(i, j int) bool { return list.Nodes[i].NodeID < list.Nodes[j].NodeID })
	return list, nil
}

// AddPolicy appends an ACL rule. Policies keep insertion order for audit
// display; order never changes the verdict.
func (s *Service) AddPolicy(ctx context.Context, meshID domain.MeshID, actor, sourceTag, targetTag string, action domain.Action) (domain.ACLPolicy, error) {
	p := domain.ACLPolicy{
		ID:        "pol-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6],
		SourceTag: sourceTag,
		TargetTag: targetTag,
		Action:    action,
		CreatedAt: s.clock.Now().UTC(),
	}

	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return domain.ACLPolicy{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	ms.policies = append(ms.policies, p)
	s.persistLocked()
	s.mu.Unlock()

	s.record(ctx, meshID, actor, "POLICY_CREATED",
		fmt.Sprintf("%s: %s -> %s (%s)", p.ID, sourceTag, targetTag, action))
	return p, nil
}

// Policies returns the mesh's rules in insertion order.
func (s *Service) Policies(meshID domain.MeshID) ([]domain.ACLPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.meshes[meshID]
	if !ok {
		return nil, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	return append([]domain.ACLPolicy(nil), ms.policies...), nil
}

// PeerDecision is one entry of a node's per-peer decision map.
type PeerDecision struct {
	Action    domain.Action `json:"action"`
	Reason    domain.Reason `json:"reason"`
	MatchedID []string      `json:"matched_policy_ids,omitempty"`
}

// NodeConfig is what an approved node fetches to enforce policy locally.
type NodeConfig struct {
	MeshID     domain.MeshID           `json:"mesh_id"`
	NodeID     domain.NodeID           `json:"node_id"`
	Tags       []string                `json:"node_tags"`
	Profile    domain.ACLProfile       `json:"acl_profile"`
	PQCProfile PQCProfile              `json:"pqc_profile"`
	Policies   []domain.ACLPolicy      `json:"policies"`
	Decisions  map[domain.NodeID]PeerDecision `json:"policy_decisions"`
	Allowed    []domain.NodeID         `json:"allowed_peers"`
	Denied     []domain.NodeID         `json:"denied_peers"`
}

// NodeConfig evaluates the ACL for an approved node against every peer.
// Revoked peers are always denied regardless of tag match.
func (s *Service) NodeConfig(meshID domain.MeshID, nodeID domain.NodeID) (NodeConfig, error) {
	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return NodeConfig{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	if _, revoked := ms.revoked[nodeID]; revoked {
		s.mu.Unlock()
		return NodeConfig{}, fmt.Errorf("%w: node %s is revoked", domain.ErrConflict, nodeID)
	}
	node, ok := ms.approved[nodeID]
	if !ok {
		s.mu.Unlock()
		return NodeConfig{}, fmt.Errorf("%w: approved node %s", domain.ErrNotFound, nodeID)
	}

	// Snapshot under the lock, evaluate on the copies.
	cfg := NodeConfig{
		MeshID:     meshID,
		NodeID:     nodeID,
		Tags:       append([]string(nil), node.Tags...),
		Profile:    node.Profile,
		PQCProfile: ProfileFor(node.DeviceClass),
		Policies:   append([]domain.ACLPolicy(nil), ms.policies...),
		Decisions:  make(map[domain.NodeID]PeerDecision),
	}
	type peer struct {
		id   domain.NodeID
		tags []string
	}
	peers := make([]peer, 0, len(ms.approved))
	for id, p := range ms.approved {
		if id == nodeID {
			continue
		}
		peers = append(peers, peer{id: id, tags: append([]string(nil), p.Tags...)})
	}
	revoked := make([]domain.NodeID, 0, len(ms.revoked))
	for id := range ms.revoked {
		revoked = append(revoked, id)
	}
	s.mu.Unlock()

	for _, p := range peers {
		d := acl.Evaluate(cfg.Tags, p.tags, cfg.Policies, cfg.Profile)
		cfg.Decisions[p.id] = PeerDecision{Action: d.Action, Reason: d.Reason, MatchedID: policyIDs(d.Matched)}
		if d.Action == domain.ActionAllow {
			cfg.Allowed = append(cfg.Allowed, p.id)
		} else {
			cfg.Denied = append(cfg.Denied, p.id)
		}
	}
	for _, id := range revoked {
		d := acl.PeerRevoked()
		cfg.Decisions[id] = PeerDecision{Action: d.Action, Reason: d.Reason}
		cfg.Denied = append(cfg.Denied, id)
	}
	sort.Slice(cfg.Allowed, func(i, j int) bool { return cfg.Allowed[i] < cfg.Allowed[j] })
	sort.Slice(cfg.Denied, func(i, j int) bool { return cfg.Denied[i] < cfg.Denied[j] })
	return cfg, nil
}

// CheckAccess evaluates the ACL for one ordered pair of nodes. A revoked
// party forces a deny; a party that is pending is denied as not approved.
func (s *Service) CheckAccess(meshID domain.MeshID, sourceID, targetID domain.NodeID) (domain.Decision, error) {
	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return domain.Decision{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	lookup := func(id domain.NodeID) (*domain.MeshNode, bool, bool) {
		if n, ok := ms.approved[id]; ok {
			return n, true, false
		}
		_, revoked := ms.revoked[id]
		_, pending := ms.pending[id]
		return nil, pending || revoked, revoked
	}
	src, srcKnown, srcRevoked := lookup(sourceID)
	tgt, tgtKnown, tgtRevoked := lookup(targetID)
	if !srcKnown || !tgtKnown {
		s.mu.Unlock()
		return domain.Decision{}, fmt.Errorf("%w: node pair %s -> %s", domain.ErrNotFound, sourceID, targetID)
	}
	if srcRevoked || tgtRevoked {
		s.mu.Unlock()
		return acl.PeerRevoked(), nil
	}
	if src == nil || tgt == nil {
		s.mu.Unlock()
		return domain.Decision{Action: domain.ActionDeny, Reason: domain.ReasonNotApproved}, nil
	}
	srcTags := append([]string(nil), src.Tags...)
	tgtTags := append([]string(nil), tgt.Tags...)
	policies := append([]domain.ACLPolicy(nil), ms.policies...)
	profile := src.Profile
	s.mu.Unlock()

	return acl.Evaluate(srcTags, tgtTags, policies, profile), nil
}

func policyIDs(policies []domain.ACLPolicy) []string {
	if len(policies) == 0 {
		return nil
	}
	out := make([]string, len(policies))
	for i, p := range policies {
		out[i] = p.ID
	}
	return out
}
