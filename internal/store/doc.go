// Package store provides file-based persistence for the trust core.
//
// Two kinds of data are persisted: the registry snapshot (meshes, nodes,
// tombstones, tokens and policies) as plain JSON, and the node's long-term
// key material as a passphrase-encrypted envelope. All writes go through a
// temp file and rename so a crashed write never leaves a torn file. All
// methods are concurrency-safe via internal locking.
package store
