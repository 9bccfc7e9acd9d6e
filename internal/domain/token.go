package domain

import "time"

// ReissueToken is a one-time, node-bound credential permitting a revoked
// node to re-enroll without the general join credential. At most one unused
// token exists per node; issuing a new one replaces the old.
type ReissueToken struct {
	Token     string    `json:"token"`
	NodeID    NodeID    `json:"node_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

// SignedToken binds a credential to a verifiable origin via the token
// signing collaborator.
type SignedToken struct {
	Token     string `json:"token"`
	Signature string `json:"signature"`
	Algorithm string `json:"algorithm"`
}
