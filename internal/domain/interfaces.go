package domain

import "context"

// AuditSink records control-plane events. Calls are fire-and-forget: the
// lifecycle manager logs sink errors but never fails the triggering
// operation because of one.
type AuditSink interface {
	Record(ctx context.Context, meshID MeshID, actor, event, details string) error
}

// TokenSigner binds issued credentials to a verifiable origin.
type TokenSigner interface {
	SignToken(token string, meshID MeshID) (SignedToken, error)
}

// AttestationMetadata is what a registering node presents about its
// hardware. Quote verification internals live behind the collaborator.
type AttestationMetadata struct {
	HardwareID      string `json:"hardware_id,omitempty"`
	EnclaveEnabled  bool   `json:"enclave_enabled,omitempty"`
	AttestationData []byte `json:"attestation_data,omitempty"`
}

// AttestationResult is the collaborator's verdict, consulted once at
// registration to stamp the node's security level.
type AttestationResult struct {
	IsTrusted     bool          `json:"is_trusted"`
	SecurityLevel SecurityLevel `json:"security_level"`
}

// AttestationValidator is the hardware-attestation collaborator.
type AttestationValidator interface {
	ValidateNode(meta AttestationMetadata) (AttestationResult, error)
}
