package domain

import "errors"

// Error taxonomy for the trust core. Callers match with errors.Is; the
// concrete messages wrap these sentinels with operation context.
var (
	// ErrConfiguration reports a bad algorithm or profile name at
	// construction time. Fatal, never retried.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrBackendUnavailable reports a missing cryptographic provider.
	// Construction fails fast rather than degrading to a non-PQC mode.
	ErrBackendUnavailable = errors.New("crypto backend unavailable")

	// ErrIntegrity reports a tag or signature mismatch. The channel must be
	// considered compromised and re-established before retrying.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrNoSharedKey reports encrypt/decrypt against a peer with no
	// established channel. A protocol-ordering bug, not a security event.
	ErrNoSharedKey = errors.New("no shared key for peer")

	// ErrNotFound reports an unknown mesh, node, or policy.
	ErrNotFound = errors.New("not found")

	// ErrExpiredCredential reports a join credential or reissue token past
	// its expiry. Distinct from ErrInvalidCredential so operators can tell
	// expiry from tampering.
	ErrExpiredCredential = errors.New("credential expired")

	// ErrInvalidCredential reports a credential that does not match the
	// mesh join credential or any live reissue token.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrConflict reports an operation against a node in the wrong
	// lifecycle state, e.g. approving an already-approved node.
	ErrConflict = errors.New("conflicting state")
)
