// Package commands defines the meshguard CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init               Create or load the local node identity
//   - provision          Create a mesh with a fresh join credential
//   - rotate-credential  Replace a mesh's join credential
//   - register           Enroll this node into a mesh (pending approval)
//   - pending            List nodes awaiting approval
//   - approve            Approve a pending node and assign ACL metadata
//   - revoke             Revoke an approved node
//   - reissue            Issue a one-time re-enrollment token
//   - policy             Add or list ACL policies
//   - check              Evaluate access for one node pair
//   - node-config        Print a node's policy decision map
//   - nodes              List all nodes with lifecycle state
//   - audit              Print recent audit events for a mesh
//   - status             Summarize a mesh
//
// # Implementation
//
// The root command builds a dependency graph (PQC backend, token signer,
// file store, audit sinks, mesh registry) before any subcommand runs, so
// handlers share one wired app context.
package commands
