package mesh

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"meshguard/internal/domain"
)

// RegisterRequest is a joining node's enrollment presentation, validated
// exhaustively here and never re-validated piecemeal inside the core.
type RegisterRequest struct {
	NodeID      string                     `json:"node_id,omitempty"`
	Credential  string                     `json:"credential"`
	DeviceClass domain.DeviceClass         `json:"device_class"`
	PublicKeys  domain.PublicKeySet        `json:"public_keys"`
	Attestation domain.AttestationMetadata `json:"attestation"`
}

// RegisterResult reports the enrollment outcome.
type RegisterResult struct {
	NodeID         domain.NodeID         `json:"node_id"`
	State          domain.LifecycleState `json:"state"`
	EnrollmentMode domain.EnrollmentMode `json:"enrollment_mode"`
	SecurityLevel  domain.SecurityLevel  `json:"security_level"`
}

// Register admits a node into the pending set. The credential must be the
// mesh's current, unexpired join credential, or an unused, unexpired,
// node-bound reissue token. A revoked node presenting the general join
// credential is rejected; only its reissue token re-admits it, and it
// still requires explicit re-approval.
func (s *Service) Register(ctx context.Context, meshID domain.MeshID, req RegisterRequest) (RegisterResult, error) {
	now := s.clock.Now().UTC()

	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return RegisterResult{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}

	nodeID := domain.NodeID(req.NodeID)
	if nodeID == "" {
		nodeID = domain.NodeID("node-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}

	mode := domain.EnrollJoinCredential
	if req.Credential == ms.mesh.JoinCredential {
		if !now.Before(ms.mesh.JoinExpiresAt) {
			s.mu.Unlock()
			return RegisterResult{}, fmt.Errorf("%w: join credential for mesh %s", domain.ErrExpiredCredential, meshID)
		}
	} else {
		tok, ok := ms.tokens[req.Credential]
		switch {
		case !ok:
			s.mu.Unlock()
			return RegisterResult{}, fmt.Errorf("%w: enrollment credential", domain.ErrInvalidCredential)
		case tok.Used:
			s.mu.Unlock()
			return RegisterResult{}, fmt.Errorf("%w: reissue token already used", domain.ErrInvalidCredential)
		case !now.Before(tok.ExpiresAt):
			s.mu.Unlock()
			return RegisterResult{}, fmt.Errorf("%w: reissue token for %s", domain.ErrExpiredCredential, tok.NodeID)
		case req.NodeID != "" && nodeID != tok.NodeID:
			s.mu.Unlock()
			return RegisterResult{}, fmt.Errorf("%w: reissue token is bound to another node", domain.ErrInvalidCredential)
		}
		nodeID = tok.NodeID
		tok.Used = true
		mode = domain.EnrollReissueToken
	}

	if _, revoked := ms.revoked[nodeID]; revoked && mode != domain.EnrollReissueToken {
		s.mu.Unlock()
		return RegisterResult{}, fmt.Errorf("%w: node %s is revoked, a reissue token is required", domain.ErrInvalidCredential, nodeID)
	}
	if _, exists := ms.approved[nodeID]; exists {
		s.mu.Unlock()
		return RegisterResult{}, fmt.Errorf("%w: node %s already approved", domain.ErrConflict, nodeID)
	}
	if _, exists := ms.pending[nodeID]; exists {
		s.mu.Unlock()
		return RegisterResult{}, fmt.Errorf("%w: node %s already pending", domain.ErrConflict, nodeID)
	}

	level := domain.LevelSoftwareOnly
	if s.attest != nil {
		result, err := s.attest.ValidateNode(req.Attestation)
		if err != nil {
			s.logger.Warn("attestation validator failed, defaulting to software-only",
				"node", nodeID.String(), "error", err)
		} else {
			level = result.SecurityLevel
		}
	}

	node := &domain.MeshNode{
		ID:             nodeID,
		DeviceClass:    req.DeviceClass,
		State:          domain.StatePending,
		EnrollmentMode: mode,
		SecurityLevel:  level,
		PublicKeys:     req.PublicKeys,
		RequestedAt:    now,
	}
	// A re-enrolling node keeps its prior tags and profile visible to the
	// approver; the tombstone itself stays until approval.
	if tomb, ok := ms.revoked[nodeID]; ok {
		node.Tags = append([]string(nil), tomb.Tags...)
		node.Profile = tomb.Profile
		if node.DeviceClass == "" {
			node.DeviceClass = tomb.DeviceClass
		}
	}
	ms.pending[nodeID] = node
	s.persistLocked()
	s.mu.Unlock()

	s.record(ctx, meshID, nodeID.String(), "NODE_REGISTERED",
		fmt.Sprintf("Node %s pending approval (%s, %s)", nodeID, mode, level))
	return RegisterResult{
		NodeID:         nodeID,
		State:          domain.StatePending,
		EnrollmentMode: mode,
		SecurityLevel:  level,
	}, nil
}

// JoinArtifact is the signed proof of approval a node presents to peers.
type JoinArtifact struct {
	MeshID     domain.MeshID      `json:"mesh_id"`
	NodeID     domain.NodeID      `json:"node_id"`
	Profile    domain.ACLProfile  `json:"acl_profile"`
	Tags       []string           `json:"tags"`
	ApprovedAt time.Time          `json:"approved_at"`
	Credential domain.SignedToken `json:"credential"`
}

// artifactPayload is the CBOR signing input for a join artifact.
type artifactPayload struct {
	MeshID     string   `cbor:"1,keyasint"`
	NodeID     string   `cbor:"2,keyasint"`
	Profile    string   `cbor:"3,keyasint"`
	Tags       []string `cbor:"4,keyasint"`
	ApprovedAt int64    `cbor:"5,keyasint"`
}

// Approve moves a pending node into the approved set, assigns its ACL
// metadata, and returns the signed join artifact. Two concurrent
// approvals of one node cannot both succeed.
func (s *Service) Approve(ctx context.Context, meshID domain.MeshID, nodeID domain.NodeID, actor string, profile domain.ACLProfile, tags []string) (JoinArtifact, error) {
	if profile == "" {
		profile = domain.ProfileDefault
	}
	now := s.clock.Now().UTC()

	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return JoinArtifact{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	node, ok := ms.pending[nodeID]
	if !ok {
		s.mu.Unlock()
		if _, approved := ms.approved[nodeID]; approved {
			return JoinArtifact{}, fmt.Errorf("%w: node %s already approved", domain.ErrConflict, nodeID)
		}
		return JoinArtifact{}, fmt.Errorf("%w: pending node %s", domain.ErrNotFound, nodeID)
	}
	delete(ms.pending, nodeID)
	delete(ms.revoked, nodeID)

	node.State = domain.StateApproved
	node.Profile = profile
	if tags != nil {
		node.Tags = append([]string(nil), tags...)
	}
	node.ApprovedAt = now
	ms.approved[nodeID] = node
	finalTags := append([]string(nil), node.Tags...)
	s.persistLocked()
	s.mu.Unlock()

	payload, err := cbor.Marshal(artifactPayload{
		MeshID:     meshID.String(),
		NodeID:     nodeID.String(),
		Profile:    string(profile),
		Tags:       finalTags,
		ApprovedAt: now.Unix(),
	})
	if err != nil {
		return JoinArtifact{}, fmt.Errorf("join artifact encode: %w", err)
	}
	signed, err := s.signer.SignToken(base64.RawURLEncoding.EncodeToString(payload), meshID)
	if err != nil {
		return JoinArtifact{}, fmt.Errorf("join artifact sign: %w", err)
	}

	s.record(ctx, meshID, actor, "NODE_APPROVED",
		fmt.Sprintf("Approved %s with profile %s", nodeID, profile))
	return JoinArtifact{
		MeshID:     meshID,
		NodeID:     nodeID,
		Profile:    profile,
		Tags:       finalTags,
		ApprovedAt: now,
		Credential: signed,
	}, nil
}

// Revoke removes an approved node and tombstones it with reason, actor
// and timestamp. A revoked node cannot rejoin via the general join
// credential.
func (s *Service) Revoke(ctx context.Context, meshID domain.MeshID, nodeID domain.NodeID, actor, reason string) error {
	if reason == "" {
		reason = "manual_revoke"
	}
	now := s.clock.Now().UTC()

	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	node, ok := ms.approved[nodeID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: approved node %s", domain.ErrNotFound, nodeID)
	}
	delete(ms.approved, nodeID)
	delete(ms.pending, nodeID)
	ms.revoked[nodeID] = &domain.Tombstone{
		NodeID:      nodeID,
		Reason:      reason,
		RevokedBy:   actor,
		RevokedAt:   now,
		Tags:        append([]string(nil), node.Tags...),
		Profile:     node.Profile,
		DeviceClass: node.DeviceClass,
	}
	s.persistLocked()
	s.mu.Unlock()

	s.record(ctx, meshID, actor, "NODE_REVOKED",
		fmt.Sprintf("Revoked %s: %s", nodeID, reason))
	return nil
}

// ReissueToken issues a fresh one-time enrollment token for a revoked
// node, invalidating any prior unused token for that node. Last writer
// wins: concurrent calls leave exactly one live token.
func (s *Service) ReissueToken(ctx context.Context, meshID domain.MeshID, nodeID domain.NodeID, actor string, ttl time.Duration) (domain.ReissueToken, domain.SignedToken, error) {
	ttl = clampTTL(ttl, MinReissueTTL, MaxReissueTTL, DefaultReissueTTL)
	now := s.clock.Now().UTC()
	token := randomToken()

	s.mu.Lock()
	ms, ok := s.meshes[meshID]
	if !ok {
		s.mu.Unlock()
		return domain.ReissueToken{}, domain.SignedToken{}, fmt.Errorf("%w: mesh %s", domain.ErrNotFound, meshID)
	}
	if _, revoked := ms.revoked[nodeID]; !revoked {
		s.mu.Unlock()
		return domain.ReissueToken{}, domain.SignedToken{}, fmt.Errorf("%w: node %s is not revoked", domain.ErrConflict, nodeID)
	}
	for existing, meta := range ms.tokens {
		if meta.NodeID == nodeID {
			delete(ms.tokens, existing)
		}
	}
	issued := &domain.ReissueToken{
		Token:     token,
		NodeID:    nodeID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	ms.tokens[token] = issued
	out := *issued
	s.persistLocked()
	s.mu.Unlock()

	signed, err := s.signer.SignToken(token, meshID)
	if err != nil {
		return domain.ReissueToken{}, domain.SignedToken{}, fmt.Errorf("sign reissue token: %w", err)
	}
	s.record(ctx, meshID, actor, "NODE_TOKEN_REISSUED",
		fmt.Sprintf("Reissue token for %s, expires %s", nodeID, out.ExpiresAt.Format(time.RFC3339)))
	return out, signed, nil
}
