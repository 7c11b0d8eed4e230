package abi

import (
	"sort"
	"sync"
)

const (
	// PageSize is the linear memory page size (64 KiB).
	PageSize = 64 * 1024

	// alignment of every block returned by Malloc.
	alignment = 8

	// heapBase is the first allocatable address; address 0 stays the null
	// pointer.
	heapBase = alignment
)

// span is a free byte range of linear memory.
type span struct {
	off, len uint32
}

// Memory is a fixed-size linear address space with a first-fit
// allocator. Addresses are offsets into the space; 0 is null.
type Memory struct {
	mu     sync.Mutex
	buf    []byte
	free   []span            // sorted by offset, never adjacent
	blocks map[uint32]uint32 // live block address -> size
	inUse  uint32
}

// NewMemory creates a linear memory of pages × PageSize bytes.
func NewMemory(pages int) *Memory {
	size := uint32(pages) * PageSize
	return &Memory{
		buf:    make([]byte, size),
		free:   []span{{off: heapBase, len: size - heapBase}},
		blocks: make(map[uint32]uint32),
	}
}

// Size returns the size of the address space in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.buf))
}

// Malloc reserves n bytes and returns their address, or 0 when no free
// range is large enough. Malloc(0) still returns a unique address.
func (m *Memory) Malloc(n uint32) uint32 {
	size := alignUp(n)
	if size == 0 {
		// n == 0, or n so large that rounding overflowed
		if n != 0 {
			return 0
		}
		size = alignment
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, s := range m.free {
		if s.len < size {
			continue
		}

		ptr := s.off
		if s.len == size {
			m.free = append(m.free[:i], m.free[i+1:]...)
		} else {
			m.free[i] = span{off: s.off + size, len: s.len - size}
		}

		m.blocks[ptr] = size
		m.inUse += size
		clear(m.buf[ptr : ptr+size])
		return ptr
	}
	return 0
}

// Free returns the block at ptr. Freeing 0, an address Malloc never
// returned, or an already freed block is a no-op.
func (m *Memory) Free(ptr uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size, ok := m.blocks[ptr]
	if !ok {
		return
	}
	delete(m.blocks, ptr)
	m.inUse -= size

	// Insert in offset order, then merge with the neighbours
	i := sort.Search(len(m.free), func(i int) bool { return m.free[i].off > ptr })
	m.free = append(m.free, span{})
	copy(m.free[i+1:], m.free[i:])
	m.free[i] = span{off: ptr, len: size}

	if i+1 < len(m.free) && m.free[i].off+m.free[i].len == m.free[i+1].off {
		m.free[i].len += m.free[i+1].len
		m.free = append(m.free[:i+1], m.free[i+2:]...)
	}
	if i > 0 && m.free[i-1].off+m.free[i-1].len == m.free[i].off {
		m.free[i-1].len += m.free[i].len
		m.free = append(m.free[:i], m.free[i+1:]...)
	}
}

// InUse returns the number of bytes held by live blocks.
func (m *Memory) InUse() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inUse
}

// Blocks returns the number of live blocks.
func (m *Memory) Blocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}

// Span returns the n bytes at ptr as a slice aliasing linear memory, or
// false if the range is null or leaves the address space. A zero-length
// range at any in-bounds address is valid.
func (m *Memory) Span(ptr, n uint32) ([]byte, bool) {
	if ptr == 0 {
		return nil, false
	}
	end := uint64(ptr) + uint64(n)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[ptr:end:end], true
}

// Write copies p into linear memory at ptr. It reports false, writing
// nothing, if the range is out of bounds.
func (m *Memory) Write(ptr uint32, p []byte) bool {
	dst, ok := m.Span(ptr, uint32(len(p)))
	if !ok || uint64(len(p)) > uint64(len(m.buf)) {
		return false
	}
	copy(dst, p)
	return true
}

// Read returns a copy of the n bytes at ptr, or nil if the range is out
// of bounds.
func (m *Memory) Read(ptr, n uint32) []byte {
	src, ok := m.Span(ptr, n)
	if !ok {
		return nil
	}
	out := make([]byte, n)
	copy(out, src)
	return out
}

// alignUp rounds n up to the allocation alignment; 0 signals overflow.
func alignUp(n uint32) uint32 {
	return (n + alignment - 1) &^ (alignment - 1)
}
