// Package mesh implements the node-lifecycle manager and policy registry:
// a per-mesh state machine tracking nodes through pending, approved and
// revoked states, with one-time reissue tokens for re-enrollment and
// insertion-ordered ACL policies consulted by the decision engine.
//
// The registry is process-wide mutable state shared across concurrent
// callers. Every read-modify-write sequence (register, approve, revoke,
// reissue, rotate, policy mutation) runs under a single registry mutex;
// queries copy snapshots under the same lock and work on the copies.
// Credential and token expiry is evaluated at use time against an
// injectable clock.
package mesh
