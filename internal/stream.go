// Package internal provides the digest primitives behind the session engines.
// This package wraps golang.org/x/crypto, github.com/aead/skein and
// github.com/zeebo/blake3 behind one incremental interface.
package internal

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a primitive cannot produce digests of the
// requested length.
var ErrInvalidSize = errors.New("invalid digest size")

// Stream is an incremental digest with a fixed output length.
type Stream interface {
	// Write absorbs p. It never returns an error.
	Write(p []byte) (int, error)

	// Sum writes Size() bytes of digest into out without disturbing the
	// absorbed state. out must be at least Size() bytes.
	Sum(out []byte)

	// Size returns the configured output length in bytes.
	Size() int
}

// checkSize validates size against the inclusive range [min, max].
func checkSize(name string, size, min, max int) error {
	if size < min || size > max {
		return fmt.Errorf("%s: %w: %d (want %d..%d)", name, ErrInvalidSize, size, min, max)
	}
	return nil
}
