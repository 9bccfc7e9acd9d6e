package domain

import (
	"fmt"
	"time"
)

// Action is the verdict side of a policy rule or decision.
type Action string

const (
	ActionAllow Action = "allow"
	ActionDeny  Action = "deny"
)

// ParseAction validates a policy action at the boundary.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAllow, ActionDeny:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: unknown policy action %q", ErrConfiguration, s)
}

// ACLPolicy is one tag-based allow/deny rule. Policies are kept in
// insertion order for audit display; order never changes the verdict.
type ACLPolicy struct {
	ID        string    `json:"policy_id"`
	SourceTag string    `json:"source_tag"`
	TargetTag string    `json:"target_tag"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// Reason explains a decision for audit and operator display.
type Reason string

const (
	ReasonIsolated    Reason = "acl_profile_isolated"
	ReasonExplicitDeny Reason = "explicit_deny"
	ReasonExplicitAllow Reason = "explicit_allow"
	ReasonLegacyOpenMesh Reason = "legacy_open_mesh"
	ReasonDefaultDeny Reason = "default_deny_zero_trust"
	ReasonPeerRevoked Reason = "peer_revoked"
	ReasonNotApproved Reason = "node_not_approved"
)

// Decision is the outcome of evaluating one ordered pair of nodes.
type Decision struct {
	Action  Action      `json:"action"`
	Reason  Reason      `json:"reason"`
	Matched []ACLPolicy `json:"matched_rules"`
}
