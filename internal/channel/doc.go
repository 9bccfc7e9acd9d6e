// Package channel keeps per-peer symmetric secrets and performs
// authenticated encryption of application payloads over them.
//
// The cipher is a SHAKE256 keystream seeded by (secret, nonce), XORed
// against the payload, with a keyed BLAKE3 tag over (nonce, ciphertext).
// Wire format: nonce || ciphertext || tag. Decryption recomputes the tag
// first and fails closed with domain.ErrIntegrity on any mismatch; no
// plaintext is ever produced from a ciphertext that fails the tag.
//
// The store is owned by a single node instance and guarded by a local
// mutex; entries are overwritten, never appended, on re-establishment.
package channel
