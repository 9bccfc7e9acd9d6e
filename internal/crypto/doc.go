// Package crypto exposes the classical primitives used by meshguard.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Content-hash key identifiers for public keys (KeyID)
//
// All functions return fixed-size array types to avoid accidental
// reallocations. Callers should treat returned secrets as sensitive and rely
// on memzero.Zero when practical to reduce their lifetime in memory.
package crypto
