package crypto

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// keyIDBytes is the truncation applied to the public-key content hash.
// 16 bytes (32 hex chars) keeps collisions negligible at mesh scale.
const keyIDBytes = 16

// KeyID returns the truncated BLAKE3 content hash of a public key. It is
// used for correlation and display, never for trust decisions.
func KeyID(pub []byte) string {
	sum := blake3.Sum256(pub)
	return hex.EncodeToString(sum[:keyIDBytes])
}
