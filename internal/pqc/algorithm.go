package pqc

import (
	"fmt"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/kem/mlkem/mlkem512"
	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"

	"meshguard/internal/domain"
)

// Algorithm is a canonical NIST algorithm identifier. The zero value is
// invalid.
type Algorithm uint8

const (
	algorithmInvalid Algorithm = iota

	// Key encapsulation (FIPS 203, ML-KEM).
	MLKEM512
	MLKEM768
	MLKEM1024

	// Digital signatures (FIPS 204, ML-DSA).
	MLDSA44
	MLDSA65
	MLDSA87
)

// String returns the canonical NIST name.
func (a Algorithm) String() string {
	switch a {
	case MLKEM512:
		return "ML-KEM-512"
	case MLKEM768:
		return "ML-KEM-768"
	case MLKEM1024:
		return "ML-KEM-1024"
	case MLDSA44:
		return "ML-DSA-44"
	case MLDSA65:
		return "ML-DSA-65"
	case MLDSA87:
		return "ML-DSA-87"
	}
	return "invalid"
}

// MarshalText encodes the canonical NIST name.
func (a Algorithm) MarshalText() ([]byte, error) {
	if a == algorithmInvalid || a > MLDSA87 {
		return nil, fmt.Errorf("%w: invalid algorithm %d", domain.ErrConfiguration, a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText accepts canonical names and deprecated aliases.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsKEM reports whether a names a key-encapsulation mechanism.
func (a Algorithm) IsKEM() bool {
	return a == MLKEM512 || a == MLKEM768 || a == MLKEM1024
}

// IsSignature reports whether a names a signature scheme.
func (a Algorithm) IsSignature() bool {
	return a == MLDSA44 || a == MLDSA65 || a == MLDSA87
}

// algorithmNames maps every accepted spelling, including deprecated
// aliases kept so persisted configuration referencing old names keeps
// working, to one canonical variant.
var algorithmNames = map[string]Algorithm{
	"ML-KEM-512":  MLKEM512,
	"ML-KEM-768":  MLKEM768,
	"ML-KEM-1024": MLKEM1024,
	"Kyber512":    MLKEM512,
	"Kyber768":    MLKEM768,
	"Kyber1024":   MLKEM1024,

	"ML-DSA-44":  MLDSA44,
	"ML-DSA-65":  MLDSA65,
	"ML-DSA-87":  MLDSA87,
	"Dilithium2": MLDSA44,
	"Dilithium3": MLDSA65,
	"Dilithium5": MLDSA87,
}

// ParseAlgorithm normalizes an algorithm name to its canonical identifier.
func ParseAlgorithm(name string) (Algorithm, error) {
	if a, ok := algorithmNames[name]; ok {
		return a, nil
	}
	return algorithmInvalid, fmt.Errorf("%w: unknown algorithm %q", domain.ErrConfiguration, name)
}

// kemScheme resolves the provider scheme for a KEM algorithm. A nil return
// means the provider does not offer the scheme.
func kemScheme(a Algorithm) kem.Scheme {
	switch a {
	case MLKEM512:
		return mlkem512.Scheme()
	case MLKEM768:
		return mlkem768.Scheme()
	case MLKEM1024:
		return mlkem1024.Scheme()
	}
	return nil
}

// sigScheme resolves the provider scheme for a signature algorithm.
func sigScheme(a Algorithm) sign.Scheme {
	switch a {
	case MLDSA44:
		return mldsa44.Scheme()
	case MLDSA65:
		return mldsa65.Scheme()
	case MLDSA87:
		return mldsa87.Scheme()
	}
	return nil
}
