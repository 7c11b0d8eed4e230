package internal

import (
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// ShakeMaxSize bounds the SHAKE256 output length.
const ShakeMaxSize = 1024

type sha3Stream struct {
	h    hash.Hash
	size int
}

// NewSHA3 creates a FIPS 202 SHA-3 stream. Only the four standard sizes
// (28, 32, 48 and 64 bytes) are supported.
func NewSHA3(size int) (Stream, error) {
	var h hash.Hash
	switch size {
	case 28:
		h = sha3.New224()
	case 32:
		h = sha3.New256()
	case 48:
		h = sha3.New384()
	case 64:
		h = sha3.New512()
	default:
		return nil, fmt.Errorf("sha3: %w: %d (want 28, 32, 48 or 64)", ErrInvalidSize, size)
	}
	return &sha3Stream{h: h, size: size}, nil
}

// NewKeccak creates a legacy (pre-FIPS padding) Keccak stream of 32 or 64
// bytes, as used by Ethereum.
func NewKeccak(size int) (Stream, error) {
	var h hash.Hash
	switch size {
	case 32:
		h = sha3.NewLegacyKeccak256()
	case 64:
		h = sha3.NewLegacyKeccak512()
	default:
		return nil, fmt.Errorf("keccak: %w: %d (want 32 or 64)", ErrInvalidSize, size)
	}
	return &sha3Stream{h: h, size: size}, nil
}

func (s *sha3Stream) Write(p []byte) (int, error) { return s.h.Write(p) }

func (s *sha3Stream) Sum(out []byte) {
	var buf [64]byte
	copy(out[:s.size], s.h.Sum(buf[:0]))
}

func (s *sha3Stream) Size() int { return s.size }

type shakeStream struct {
	h    sha3.ShakeHash
	size int
}

// NewShake256 creates a SHAKE256 stream squeezing size bytes.
func NewShake256(size int) (Stream, error) {
	if err := checkSize("shake256", size, 1, ShakeMaxSize); err != nil {
		return nil, err
	}
	return &shakeStream{h: sha3.NewShake256(), size: size}, nil
}

func (s *shakeStream) Write(p []byte) (int, error) { return s.h.Write(p) }

// Sum squeezes from a clone; reading a ShakeHash switches it to the
// squeezing phase.
func (s *shakeStream) Sum(out []byte) {
	s.h.Clone().Read(out[:s.size])
}

func (s *shakeStream) Size() int { return s.size }
