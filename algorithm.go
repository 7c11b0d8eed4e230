package hashsession

import (
	"fmt"
	"strings"

	"github.com/opd-ai/go-hashsession/internal"
)

// Algorithm selects the hash construction a Manager's engines run.
type Algorithm int

const (
	// Skein is Skein-512 for outputs up to 64 bytes and Skein-1024 for
	// outputs of 65 to 1024 bytes. This is the default.
	Skein Algorithm = iota

	// SHA3 is FIPS 202 SHA-3 (28, 32, 48 or 64 byte output).
	SHA3

	// Keccak is the legacy Keccak padding used by Ethereum (32 or 64 bytes).
	Keccak

	// Shake256 is the SHAKE256 extendable-output function.
	Shake256

	// Blake2b is BLAKE2b with its native 1-64 byte output.
	Blake2b

	// Blake2bLong is the Argon2 variable-length BLAKE2b construction.
	Blake2bLong

	// Blake3 is BLAKE3 read through its extendable output.
	Blake3
)

var algorithmNames = map[Algorithm]string{
	Skein:       "skein",
	SHA3:        "sha3",
	Keccak:      "keccak",
	Shake256:    "shake256",
	Blake2b:     "blake2b",
	Blake2bLong: "blake2b-long",
	Blake3:      "blake3",
}

// String returns the canonical lowercase name of the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Valid reports whether a names a built-in algorithm.
func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

// ParseAlgorithm returns the algorithm with the given name (case-insensitive).
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range algorithmNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("hashsession: unknown algorithm %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("hashsession: invalid algorithm: %v", a)
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// streamConstructor returns the internal primitive behind a.
func (a Algorithm) streamConstructor() func(size int) (internal.Stream, error) {
	switch a {
	case Skein:
		return internal.NewSkein
	case SHA3:
		return internal.NewSHA3
	case Keccak:
		return internal.NewKeccak
	case Shake256:
		return internal.NewShake256
	case Blake2b:
		return internal.NewBlake2b
	case Blake2bLong:
		return internal.NewBlake2bLong
	case Blake3:
		return internal.NewBlake3
	default:
		return nil
	}
}
