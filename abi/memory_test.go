package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMallocFree(t *testing.T) {
	mem := NewMemory(1)
	require.Equal(t, uint32(PageSize), mem.Size())

	a := mem.Malloc(10)
	b := mem.Malloc(1)
	c := mem.Malloc(0)
	require.NotZero(t, a)
	require.NotZero(t, b)
	require.NotZero(t, c)

	assert.Zero(t, a%alignment)
	assert.Zero(t, b%alignment)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Equal(t, 3, mem.Blocks())
	assert.Equal(t, uint32(16+8+8), mem.InUse())

	mem.Free(b)
	mem.Free(b) // double free is a no-op
	mem.Free(0)
	mem.Free(12345)
	assert.Equal(t, 2, mem.Blocks())

	// b's hole is reused first-fit
	assert.Equal(t, b, mem.Malloc(8))

	mem.Free(a)
	mem.Free(b)
	mem.Free(c)
	assert.Zero(t, mem.InUse())
	assert.Zero(t, mem.Blocks())

	// Everything coalesced back into one range
	require.Len(t, mem.free, 1)
	assert.Equal(t, span{off: heapBase, len: PageSize - heapBase}, mem.free[0])
}

func TestMemoryExhaustion(t *testing.T) {
	mem := NewMemory(1)

	big := mem.Malloc(PageSize - heapBase)
	require.NotZero(t, big)
	assert.Zero(t, mem.Malloc(1))

	mem.Free(big)
	assert.NotZero(t, mem.Malloc(1))

	assert.Zero(t, mem.Malloc(PageSize))
	assert.Zero(t, mem.Malloc(^uint32(0)))
}

func TestMemoryMallocZeroes(t *testing.T) {
	mem := NewMemory(1)

	p := mem.Malloc(32)
	require.True(t, mem.Write(p, []byte("dirty dirty dirty dirty dirty!!!")))
	mem.Free(p)

	q := mem.Malloc(32)
	require.Equal(t, p, q)
	assert.Equal(t, make([]byte, 32), mem.Read(q, 32))
}

func TestMemorySpanBounds(t *testing.T) {
	mem := NewMemory(1)

	_, ok := mem.Span(0, 4)
	assert.False(t, ok, "null pointer")

	_, ok = mem.Span(PageSize-4, 8)
	assert.False(t, ok, "range past the end")

	_, ok = mem.Span(^uint32(0), ^uint32(0))
	assert.False(t, ok, "overflowing range")

	s, ok := mem.Span(PageSize-4, 4)
	assert.True(t, ok)
	assert.Len(t, s, 4)
	assert.Equal(t, 4, cap(s), "span must not reach past its range")

	s, ok = mem.Span(100, 0)
	assert.True(t, ok)
	assert.Empty(t, s)

	assert.False(t, mem.Write(PageSize-1, []byte("xy")))
	assert.Nil(t, mem.Read(PageSize-1, 2))
}
