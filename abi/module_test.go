package abi

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-hashsession"
)

// Skein-512-512 known answers from the Skein 1.3 test vectors.
const (
	skeinEmpty = "bc5b4c50925519c290cc634277ae3d6257212395cba733bbad37a4af0fa06af41fca7903d06564fea7a2d3730dbdb80c1f85562dfcc070334ea4d1d9e72cba7a"
	skeinFF    = "71b7bce6fe6452227b9ced6014249e5bf9a9754c3ad618ccc4e0aae16b316cc8ca698d864307ed3e80b6ef1570812ac5272dc409b5a012df2a579102f340617a"
)

func newTestModule(t *testing.T, mutate func(c *hashsession.Config)) *Module {
	t.Helper()

	config := hashsession.DefaultConfig()
	config.MemoryPages = 1
	if mutate != nil {
		mutate(&config)
	}

	mod, err := New(config)
	require.NoError(t, err)
	t.Cleanup(func() { mod.Close() })
	return mod
}

// hostDigest drives the module the way a host binding does: copy the input
// into linear memory, update, finalize into a module buffer, copy out and
// free everything.
func hostDigest(t *testing.T, mod *Module, size int32, chunks ...[]byte) []byte {
	t.Helper()

	h := mod.Create(size)
	require.NotZero(t, h, "create failed with status %d", mod.LastError())

	for _, chunk := range chunks {
		ptr := mod.Malloc(uint32(len(chunk)))
		require.NotZero(t, ptr)
		require.True(t, mod.Memory().Write(ptr, chunk))
		mod.Update(h, ptr, uint32(len(chunk)))
		require.Equal(t, StatusOK, mod.LastError())
		mod.Free(ptr)
	}

	out := mod.Malloc(uint32(size))
	require.NotZero(t, out)
	mod.Final(h, out)
	require.Equal(t, StatusOK, mod.LastError())
	digest := mod.Memory().Read(out, uint32(size))
	mod.Free(out)

	mod.Cleanup(h)
	require.Equal(t, StatusOK, mod.LastError())
	return digest
}

func TestModuleRoundTrip(t *testing.T) {
	mod := newTestModule(t, nil)

	got := hostDigest(t, mod, 64, []byte{0xff})
	assert.Equal(t, skeinFF, hex.EncodeToString(got))

	chunked := hostDigest(t, mod, 64, []byte(""), []byte{0xff}, []byte(""))
	assert.Equal(t, skeinFF, hex.EncodeToString(chunked))

	empty := hostDigest(t, mod, 64)
	assert.Equal(t, skeinEmpty, hex.EncodeToString(empty))

	wide := hostDigest(t, mod, 128, []byte("abc"))
	assert.Len(t, wide, 128)

	// Nothing leaked on either side of the boundary
	assert.Zero(t, mod.Memory().Blocks())
	assert.Zero(t, mod.Manager().Live())
}

func TestModuleInvalidHandle(t *testing.T) {
	mod := newTestModule(t, nil)

	buf := mod.Malloc(64)
	require.True(t, mod.Memory().Write(buf, make([]byte, 64)))

	for _, h := range []uint64{0, 1, 0xdeadbeef} {
		mod.Update(h, buf, 64)
		assert.Equal(t, StatusInvalidHandle, mod.LastError())

		mod.Final(h, buf)
		assert.Equal(t, StatusInvalidHandle, mod.LastError())
		assert.Equal(t, make([]byte, 64), mod.Memory().Read(buf, 64), "final wrote through an invalid handle")

		mod.Cleanup(h)
		assert.Equal(t, StatusInvalidHandle, mod.LastError())
	}
}

func TestModuleUseAfterCleanup(t *testing.T) {
	mod := newTestModule(t, nil)

	h := mod.Create(32)
	require.NotZero(t, h)
	mod.Cleanup(h)
	assert.Equal(t, StatusOK, mod.LastError())

	mod.Cleanup(h)
	assert.Equal(t, StatusInvalidHandle, mod.LastError())

	ptr := mod.Malloc(1)
	mod.Update(h, ptr, 1)
	assert.Equal(t, StatusInvalidHandle, mod.LastError())
}

func TestModuleOutOfBounds(t *testing.T) {
	mod := newTestModule(t, nil)

	h := mod.Create(32)
	require.NotZero(t, h)

	mod.Update(h, PageSize-2, 4)
	assert.Equal(t, StatusOutOfBounds, mod.LastError())

	mod.Update(h, 0, 4)
	assert.Equal(t, StatusOutOfBounds, mod.LastError())

	// Zero-length updates never look at the pointer
	mod.Update(h, 0, 0)
	assert.Equal(t, StatusOK, mod.LastError())

	mod.Final(h, PageSize-16)
	assert.Equal(t, StatusOutOfBounds, mod.LastError())
	assert.Equal(t, hashsession.PhaseCreated, mod.Manager().Phase(hashsession.Handle(h)))

	mod.Cleanup(h)
}

func TestModuleCreateFailures(t *testing.T) {
	mod := newTestModule(t, func(c *hashsession.Config) { c.MaxSessions = 1 })

	assert.Zero(t, mod.Create(0))
	assert.Equal(t, StatusUnsupportedSize, mod.LastError())

	assert.Zero(t, mod.Create(-32))
	assert.Equal(t, StatusUnsupportedSize, mod.LastError())

	h := mod.Create(32)
	require.NotZero(t, h)
	assert.Equal(t, StatusOK, mod.LastError())

	assert.Zero(t, mod.Create(32))
	assert.Equal(t, StatusExhausted, mod.LastError())

	mod.Cleanup(h)
	require.NoError(t, mod.Close())

	assert.Zero(t, mod.Create(32))
	assert.Equal(t, StatusClosed, mod.LastError())
}

func TestModuleFinalizeTwice(t *testing.T) {
	mod := newTestModule(t, nil)

	h := mod.Create(64)
	ptr := mod.Malloc(1)
	mod.Memory().Write(ptr, []byte{0xff})
	mod.Update(h, ptr, 1)

	out := mod.Malloc(64)
	mod.Final(h, out)
	first := mod.Memory().Read(out, 64)

	mod.Update(h, ptr, 1)
	assert.Equal(t, StatusFinalized, mod.LastError())

	// A finalized session is reported as such whatever the range
	mod.Update(h, PageSize-2, 4)
	assert.Equal(t, StatusFinalized, mod.LastError())

	mod.Final(h, out)
	assert.Equal(t, StatusOK, mod.LastError())
	assert.Equal(t, first, mod.Memory().Read(out, 64))
	assert.Equal(t, skeinFF, hex.EncodeToString(first))

	mod.Cleanup(h)
}

func TestModuleStatusComesFromItsOwnCall(t *testing.T) {
	mod := newTestModule(t, nil)
	mgr := mod.Manager()

	// Misuse of the manager directly does not leak into the module status
	mgr.Absorb(hashsession.NullHandle, []byte("x"))
	require.ErrorIs(t, mgr.LastError(), hashsession.ErrInvalidHandle)

	h := mod.Create(32)
	require.NotZero(t, h)
	assert.Equal(t, StatusOK, mod.LastError())

	// and module calls neither clear nor set the manager's diagnostic
	mod.Update(0, 0, 0)
	assert.Equal(t, StatusInvalidHandle, mod.LastError())
	assert.ErrorIs(t, mgr.LastError(), hashsession.ErrInvalidHandle)

	mgr.ClearError()
	mod.Cleanup(0)
	assert.Equal(t, StatusInvalidHandle, mod.LastError())
	assert.NoError(t, mgr.LastError())

	mod.Cleanup(h)
	assert.Equal(t, StatusOK, mod.LastError())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusOK, statusOf(nil))
	assert.Equal(t, StatusShortBuffer, statusOf(hashsession.ErrShortBuffer))
	assert.Equal(t, StatusUnknown, statusOf(assert.AnError))
}
