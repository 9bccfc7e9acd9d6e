// Package hybrid composes one classical X25519 exchange and one ML-KEM
// exchange into a single combined secret, so that breaking either primitive
// alone does not break the channel.
//
// # Flows
//
// Encapsulation:
//  1. Encapsulate against the peer's ML-KEM public key.
//  2. Generate a fresh ephemeral X25519 key pair, compute DH against the
//     peer's long-term classical public key, and wipe the ephemeral private
//     key. Ephemeral reuse across calls is structurally impossible.
//  3. Derive combined = HKDF(pq_secret || classical_secret).
//
// Decapsulation is the exact inverse and needs both the long-term classical
// private key and the long-term ML-KEM private key of the recipient.
//
// The HKDF composition is the single trust boundary: corruption or
// truncation of either half-secret makes the combined secret unrecoverable.
package hybrid
