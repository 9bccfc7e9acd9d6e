// Package identity owns a node's long-term key material: the hybrid
// (X25519 + ML-KEM) identity, the ML-DSA beacon-signing pair, and the
// per-peer channel store built on top of them.
//
// One Service instance belongs to one node. It exports the node's public
// keys for registration, stands up secure channels against peers'
// advertised keys, seals and opens application payloads, and signs the
// liveness beacons peers use to authenticate gossip.
package identity
