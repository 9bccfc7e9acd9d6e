// Package attest supplies the hardware-attestation collaborator consulted
// once at registration to stamp a node's security level. Quote
// verification internals stay behind the interface; the default validator
// grades on the metadata a node presents.
package attest

import "meshguard/internal/domain"

// Heuristic grades attestation metadata without verifying quotes:
// an enclave with a hardware identity rates HARDWARE_ENCLAVE, a bare
// hardware identity rates HARDWARE_BACKED, anything else SOFTWARE_ONLY.
type Heuristic struct{}

// ValidateNode implements domain.AttestationValidator.
func (Heuristic) ValidateNode(meta domain.AttestationMetadata) (domain.AttestationResult, error) {
	switch {
	case meta.EnclaveEnabled && meta.HardwareID != "":
		return domain.AttestationResult{IsTrusted: true, SecurityLevel: domain.LevelHardwareEnclave}, nil
	case meta.HardwareID != "":
		return domain.AttestationResult{IsTrusted: true, SecurityLevel: domain.LevelHardwareBacked}, nil
	}
	return domain.AttestationResult{IsTrusted: false, SecurityLevel: domain.LevelSoftwareOnly}, nil
}

var _ domain.AttestationValidator = Heuristic{}
