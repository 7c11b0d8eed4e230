package internal

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Blake2bMaxLongSize bounds the variable-length BLAKE2b output.
const Blake2bMaxLongSize = 1024

// blake2bStream is plain BLAKE2b with a native output length (1-64 bytes).
type blake2bStream struct {
	h    hash.Hash
	size int
}

// NewBlake2b creates a BLAKE2b stream producing size bytes.
func NewBlake2b(size int) (Stream, error) {
	if err := checkSize("blake2b", size, 1, blake2b.Size); err != nil {
		return nil, err
	}
	h, err := blake2b.New(size, nil)
	if err != nil {
		return nil, err
	}
	return &blake2bStream{h: h, size: size}, nil
}

func (b *blake2bStream) Write(p []byte) (int, error) { return b.h.Write(p) }

func (b *blake2bStream) Sum(out []byte) {
	var buf [blake2b.Size]byte
	copy(out[:b.size], b.h.Sum(buf[:0]))
}

func (b *blake2bStream) Size() int { return b.size }

// blake2bLongStream is the Argon2 variable-length BLAKE2b construction
// (H' in the Argon2 paper), computed incrementally.
//
// The output length is absorbed as a 4-byte little-endian prefix before any
// message bytes, so the prefix is written once at construction and every
// later Write streams straight into the underlying hasher.
type blake2bLongStream struct {
	h    hash.Hash
	size int
}

// NewBlake2bLong creates a variable-length BLAKE2b stream producing size
// bytes (1..Blake2bMaxLongSize).
func NewBlake2bLong(size int) (Stream, error) {
	if err := checkSize("blake2b-long", size, 1, Blake2bMaxLongSize); err != nil {
		return nil, err
	}

	inner := size
	if size > blake2b.Size {
		inner = blake2b.Size
	}
	h, err := blake2b.New(inner, nil)
	if err != nil {
		return nil, err
	}

	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(size))
	h.Write(prefix[:])

	return &blake2bLongStream{h: h, size: size}, nil
}

func (b *blake2bLongStream) Write(p []byte) (int, error) { return b.h.Write(p) }

func (b *blake2bLongStream) Size() int { return b.size }

func (b *blake2bLongStream) Sum(out []byte) {
	out = out[:b.size]

	// Short output: a single BLAKE2b of the requested size
	if b.size <= blake2b.Size {
		var buf [blake2b.Size]byte
		copy(out, b.h.Sum(buf[:0]))
		return
	}

	// V1 = BLAKE2b-512(prefix || message); emit its first half
	v := b.h.Sum(nil)
	copied := copy(out, v[:32])

	// Chain V_i = BLAKE2b(V_{i-1}), 32 bytes at a time, until the final
	// block which is produced at exactly the remaining length
	for copied < b.size {
		remaining := b.size - copied

		outSize, toCopy := blake2b.Size, 32
		if remaining <= blake2b.Size {
			outSize, toCopy = remaining, remaining
		}

		h, _ := blake2b.New(outSize, nil)
		h.Write(v)
		v = h.Sum(nil)

		copy(out[copied:], v[:toCopy])
		copied += toCopy
	}
}
