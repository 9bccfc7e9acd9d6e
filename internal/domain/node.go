package domain

import (
	"fmt"
	"time"
)

// MeshID identifies a mesh in the registry.
type MeshID string

// String returns the string form of the mesh identifier.
func (m MeshID) String() string { return string(m) }

// NodeID identifies a node within a mesh.
type NodeID string

// String returns the string form of the node identifier.
func (n NodeID) String() string { return string(n) }

// LifecycleState tracks a node through the enrollment state machine.
type LifecycleState string

const (
	StatePending  LifecycleState = "pending"
	StateApproved LifecycleState = "approved"
	StateRevoked  LifecycleState = "revoked"
)

// ACLProfile selects the access posture applied to a node during policy
// evaluation.
type ACLProfile string

const (
	ProfileDefault  ACLProfile = "default"
	ProfileStrict   ACLProfile = "strict"
	ProfileIsolated ACLProfile = "isolated"
)

// ParseACLProfile validates a profile name at the boundary.
func ParseACLProfile(s string) (ACLProfile, error) {
	switch ACLProfile(s) {
	case ProfileDefault, ProfileStrict, ProfileIsolated:
		return ACLProfile(s), nil
	case "":
		return ProfileDefault, nil
	}
	return "", fmt.Errorf("%w: unknown acl profile %q", ErrConfiguration, s)
}

// DeviceClass categorizes a node's hardware footprint and selects its
// PQC algorithm profile.
type DeviceClass string

const (
	ClassEdge    DeviceClass = "edge"
	ClassSensor  DeviceClass = "sensor"
	ClassDrone   DeviceClass = "drone"
	ClassGateway DeviceClass = "gateway"
	ClassServer  DeviceClass = "server"
)

// SecurityLevel is the attestation outcome stamped on a node at
// registration time. It is not re-verified by the trust core afterwards.
type SecurityLevel string

const (
	LevelSoftwareOnly    SecurityLevel = "SOFTWARE_ONLY"
	LevelHardwareBacked  SecurityLevel = "HARDWARE_BACKED"
	LevelHardwareEnclave SecurityLevel = "HARDWARE_ENCLAVE"
)

// EnrollmentMode records which credential path admitted a node.
type EnrollmentMode string

const (
	EnrollJoinCredential EnrollmentMode = "join_credential"
	EnrollReissueToken   EnrollmentMode = "reissue_token"
)

// PublicKeySet is a node's advertised public key material, hex encoded for
// transport. key_id correlates keys across the mesh; it is never a trust
// input.
type PublicKeySet struct {
	NodeID          string `json:"node_id"`
	KEMPublicKey    string `json:"kem_public_key"`
	SigPublicKey    string `json:"sig_public_key"`
	ClassicalPublic string `json:"classical_public_key"`
	KEMAlgorithm    string `json:"kem_algorithm"`
	SigAlgorithm    string `json:"sig_algorithm"`
	KeyID           string `json:"key_id"`
}

// MeshNode is a mesh participant in pending or approved state.
type MeshNode struct {
	ID             NodeID         `json:"node_id"`
	DeviceClass    DeviceClass    `json:"device_class"`
	Tags           []string       `json:"tags"`
	Profile        ACLProfile     `json:"acl_profile"`
	SecurityLevel  SecurityLevel  `json:"security_level"`
	State          LifecycleState `json:"state"`
	EnrollmentMode EnrollmentMode `json:"enrollment_mode"`
	PublicKeys     PublicKeySet   `json:"public_keys"`
	RequestedAt    time.Time      `json:"requested_at"`
	ApprovedAt     time.Time      `json:"approved_at,omitempty"`
}

// Tombstone retains a revoked node's metadata for audit after it is removed
// from active routing.
type Tombstone struct {
	NodeID      NodeID      `json:"node_id"`
	Reason      string      `json:"reason"`
	RevokedBy   string      `json:"revoked_by"`
	RevokedAt   time.Time   `json:"revoked_at"`
	Tags        []string    `json:"tags"`
	Profile     ACLProfile  `json:"acl_profile"`
	DeviceClass DeviceClass `json:"device_class"`
}

// Mesh is the registry record for one mesh network, including its current
// join credential. The credential's expiry is evaluated at use time.
type Mesh struct {
	ID             MeshID    `json:"mesh_id"`
	Name           string    `json:"name"`
	OwnerID        string    `json:"owner_id"`
	CreatedAt      time.Time `json:"created_at"`
	JoinCredential string    `json:"join_credential"`
	JoinIssuedAt   time.Time `json:"join_issued_at"`
	JoinExpiresAt  time.Time `json:"join_expires_at"`
}
