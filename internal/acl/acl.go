package acl

import (
	"slices"

	"meshguard/internal/domain"
)

// Evaluate decides whether a source node may exchange traffic with a
// target node. Priority order:
//
//  1. An isolated profile denies unconditionally, ignoring all policies.
//  2. Among policies matching both tag sets, any deny wins.
//  3. Otherwise a matching allow permits.
//  4. A default-profile mesh with no policies at all stays open
//     (bootstrapping fallback).
//  5. Otherwise deny: once any policy exists the posture is zero trust.
//
// Matched rules are returned in policy insertion order for audit display;
// order never changes the verdict.
func Evaluate(sourceTags, targetTags []string, policies []domain.ACLPolicy, profile domain.ACLProfile) domain.Decision {
	if profile == domain.ProfileIsolated {
		return domain.Decision{Action: domain.ActionDeny, Reason: domain.ReasonIsolated}
	}

	var matched []domain.ACLPolicy
	for _, p := range policies {
		if ruleMatches(sourceTags, targetTags, p) {
			matched = append(matched, p)
		}
	}

	for _, p := range matched {
		if p.Action == domain.ActionDeny {
			return domain.Decision{Action: domain.ActionDeny, Reason: domain.ReasonExplicitDeny, Matched: matched}
		}
	}
	for _, p := range matched {
		if p.Action == domain.ActionAllow {
			return domain.Decision{Action: domain.ActionAllow, Reason: domain.ReasonExplicitAllow, Matched: matched}
		}
	}

	if len(policies) == 0 && profile == domain.ProfileDefault {
		return domain.Decision{Action: domain.ActionAllow, Reason: domain.ReasonLegacyOpenMesh}
	}
	return domain.Decision{Action: domain.ActionDeny, Reason: domain.ReasonDefaultDeny}
}

// PeerRevoked is the decision applied to any pair whose target is revoked,
// overriding tag matching entirely.
func PeerRevoked() domain.Decision {
	return domain.Decision{Action: domain.ActionDeny, Reason: domain.ReasonPeerRevoked}
}

// ruleMatches reports whether p applies to the pair. "*" on either side
// matches any tag set.
func ruleMatches(sourceTags, targetTags []string, p domain.ACLPolicy) bool {
	return tagMatches(sourceTags, p.SourceTag) && tagMatches(targetTags, p.TargetTag)
}

func tagMatches(tags []string, rule string) bool {
	return rule == "*" || slices.Contains(tags, rule)
}
