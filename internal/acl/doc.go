// Package acl evaluates tag-based allow/deny policy for ordered pairs of
// mesh nodes. Evaluation is a pure function of its inputs with
// deny-priority and default-deny semantics; the only open posture is the
// bootstrapping fallback for a default-profile mesh with no policies at
// all.
package acl
