// Package pqc wraps the post-quantum KEM and signature provider behind a
// small backend contract: keypair generation, encapsulate/decapsulate, and
// sign/verify.
//
// Algorithms are selected by name once, at construction. Every accepted
// name — including pre-standardization aliases such as Kyber768 and
// Dilithium3 — normalizes to exactly one canonical identifier at that
// boundary, so nothing downstream branches on strings again. Unknown names
// fail construction with domain.ErrConfiguration; a provider without the
// requested scheme fails with domain.ErrBackendUnavailable rather than
// silently degrading to a non-PQC mode.
package pqc
